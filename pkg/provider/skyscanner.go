// pkg/provider/skyscanner.go
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"TripRadar/pkg/model"
)

// SkyscannerAdapter Skyscanner机票数据源适配器
// Amadeus 失败后的回退数据源
type SkyscannerAdapter struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// skyscannerResponse 航班报价响应
type skyscannerResponse struct {
	Quotes []struct {
		MinPrice float64 `json:"MinPrice"`
		Direct   bool    `json:"Direct"`
	} `json:"Quotes"`
}

// NewSkyscannerAdapter 创建Skyscanner适配器
func NewSkyscannerAdapter(apiKey, baseURL string, timeout time.Duration) *SkyscannerAdapter {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &SkyscannerAdapter{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *SkyscannerAdapter) Name() string {
	return "skyscanner"
}

// Search 查询航班报价
func (s *SkyscannerAdapter) Search(ctx context.Context, alert *model.PriceAlert) ([]Offer, error) {
	if alert.Flight == nil {
		return nil, &FetchError{Provider: s.Name(), Reason: "提醒缺少机票搜索条件"}
	}

	params := url.Values{}
	params.Set("apiKey", s.apiKey)
	params.Set("adults", strconv.Itoa(max(alert.Flight.Passengers, 1)))

	reqURL := fmt.Sprintf("%s/browsequotes/v1.0/US/USD/en-US/%s/%s/%s?%s",
		s.baseURL,
		url.PathEscape(alert.Flight.From),
		url.PathEscape(alert.Flight.To),
		url.PathEscape(alert.Flight.DepartDate),
		params.Encode(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{Provider: s.Name(), Reason: "创建HTTP请求失败", Err: err}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Provider: s.Name(), Reason: "执行HTTP请求失败", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Provider: s.Name(), Reason: fmt.Sprintf("API返回非200状态码: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Provider: s.Name(), Reason: "读取响应体失败", Err: err}
	}

	var quoteResp skyscannerResponse
	if err := json.Unmarshal(body, &quoteResp); err != nil {
		return nil, &FetchError{Provider: s.Name(), Reason: "解析响应失败", Err: err}
	}

	offers := make([]Offer, 0, len(quoteResp.Quotes))
	for _, q := range quoteResp.Quotes {
		offers = append(offers, Offer{Price: q.MinPrice})
	}
	return offers, nil
}
