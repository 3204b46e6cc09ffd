// pkg/provider/hertz.go
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"TripRadar/pkg/model"
)

// HertzAdapter Hertz租车数据源适配器
type HertzAdapter struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// hertzResponse 租车报价响应
type hertzResponse struct {
	Vehicles []struct {
		Model      string  `json:"model"`
		TotalPrice float64 `json:"total_price"`
	} `json:"vehicles"`
}

// NewHertzAdapter 创建Hertz适配器
func NewHertzAdapter(apiKey, baseURL string, timeout time.Duration) *HertzAdapter {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HertzAdapter{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (h *HertzAdapter) Name() string {
	return "hertz"
}

// Search 查询租车报价
func (h *HertzAdapter) Search(ctx context.Context, alert *model.PriceAlert) ([]Offer, error) {
	if alert.Car == nil {
		return nil, &FetchError{Provider: h.Name(), Reason: "提醒缺少租车搜索条件"}
	}

	params := url.Values{}
	params.Set("pickup", alert.Car.PickupLocation)
	if alert.Car.DropoffLocation != "" {
		params.Set("dropoff", alert.Car.DropoffLocation)
	}
	params.Set("pickup_date", alert.Car.PickupDate)
	params.Set("dropoff_date", alert.Car.DropoffDate)

	reqURL := fmt.Sprintf("%s/v1/vehicles/search?%s", h.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{Provider: h.Name(), Reason: "创建HTTP请求失败", Err: err}
	}
	req.Header.Set("X-API-Key", h.apiKey)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Provider: h.Name(), Reason: "执行HTTP请求失败", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Provider: h.Name(), Reason: fmt.Sprintf("API返回非200状态码: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Provider: h.Name(), Reason: "读取响应体失败", Err: err}
	}

	var carResp hertzResponse
	if err := json.Unmarshal(body, &carResp); err != nil {
		return nil, &FetchError{Provider: h.Name(), Reason: "解析响应失败", Err: err}
	}

	offers := make([]Offer, 0, len(carResp.Vehicles))
	for _, v := range carResp.Vehicles {
		offers = append(offers, Offer{Price: v.TotalPrice, Description: v.Model})
	}
	return offers, nil
}
