// pkg/provider/amadeus.go
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
	"sync"
	"time"

	"TripRadar/pkg/model"
)

// AmadeusAdapter Amadeus机票数据源适配器
// 使用 client_credentials 流程获取访问令牌，令牌懒加载并复用
type AmadeusAdapter struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	tokenURL   string
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// amadeusTokenResponse OAuth令牌响应
type amadeusTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// amadeusOffersResponse 航班报价响应
type amadeusOffersResponse struct {
	Data []struct {
		ID    string `json:"id"`
		Price struct {
			GrandTotal string `json:"grandTotal"`
		} `json:"price"`
	} `json:"data"`
}

// NewAmadeusAdapter 创建Amadeus适配器
func NewAmadeusAdapter(apiKey, apiSecret, baseURL string, timeout time.Duration) *AmadeusAdapter {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &AmadeusAdapter{
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokenURL:   strings.TrimRight(baseURL, "/") + "/v1/security/oauth2/token",
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (a *AmadeusAdapter) Name() string {
	return "amadeus"
}

// Search 查询航班报价
func (a *AmadeusAdapter) Search(ctx context.Context, alert *model.PriceAlert) ([]Offer, error) {
	if alert.Flight == nil {
		return nil, &FetchError{Provider: a.Name(), Reason: "提醒缺少机票搜索条件"}
	}

	token, err := a.authenticate(ctx)
	if err != nil {
		return nil, &FetchError{Provider: a.Name(), Reason: "认证失败", Err: err}
	}

	// 构建请求参数
	params := url.Values{}
	params.Set("originLocationCode", alert.Flight.From)
	params.Set("destinationLocationCode", alert.Flight.To)
	params.Set("departureDate", alert.Flight.DepartDate)
	if alert.Flight.ReturnDate != "" {
		params.Set("returnDate", alert.Flight.ReturnDate)
	}
	adults := alert.Flight.Passengers
	if adults <= 0 {
		adults = 1
	}
	params.Set("adults", strconv.Itoa(adults))

	reqURL := fmt.Sprintf("%s/v2/shopping/flight-offers?%s", a.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{Provider: a.Name(), Reason: "创建HTTP请求失败", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Provider: a.Name(), Reason: "执行HTTP请求失败", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Provider: a.Name(), Reason: fmt.Sprintf("API返回非200状态码: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Provider: a.Name(), Reason: "读取响应体失败", Err: err}
	}

	var offersResp amadeusOffersResponse
	if err := json.Unmarshal(body, &offersResp); err != nil {
		return nil, &FetchError{Provider: a.Name(), Reason: "解析响应失败", Err: err}
	}

	offers := make([]Offer, 0, len(offersResp.Data))
	for _, item := range offersResp.Data {
		price, err := strconv.ParseFloat(item.Price.GrandTotal, 64)
		if err != nil {
			continue
		}
		offers = append(offers, Offer{Price: price, Description: item.ID})
	}
	return offers, nil
}

// authenticate 获取或复用访问令牌
func (a *AmadeusAdapter) authenticate(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Before(a.tokenExpiry) {
		return a.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", a.apiKey)
	form.Set("client_secret", a.apiSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("创建令牌请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("请求令牌失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("令牌接口返回非200状态码: %d", resp.StatusCode)
	}

	var tokenResp amadeusTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("解析令牌响应失败: %w", err)
	}

	a.accessToken = tokenResp.AccessToken
	// 提前一分钟过期，避免边界上用到失效令牌
	a.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - time.Minute)
	return a.accessToken, nil
}
