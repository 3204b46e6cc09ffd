// pkg/provider/booking.go
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

// BookingAdapter Booking.com酒店数据源适配器
type BookingAdapter struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// bookingResponse 酒店报价响应
type bookingResponse struct {
	Result []struct {
		HotelName string  `json:"hotel_name"`
		MinPrice  float64 `json:"min_total_price"`
	} `json:"result"`
}

// NewBookingAdapter 创建Booking.com适配器
func NewBookingAdapter(apiKey, baseURL string, timeout time.Duration) *BookingAdapter {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &BookingAdapter{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (b *BookingAdapter) Name() string {
	return "booking"
}

// Search 查询酒店报价
func (b *BookingAdapter) Search(ctx context.Context, alert *model.PriceAlert) ([]Offer, error) {
	if alert.Hotel == nil {
		return nil, &FetchError{Provider: b.Name(), Reason: "提醒缺少酒店搜索条件"}
	}

	params := url.Values{}
	params.Set("dest", alert.Hotel.Destination)
	params.Set("checkin_date", alert.Hotel.CheckIn)
	params.Set("checkout_date", alert.Hotel.CheckOut)
	params.Set("adults", strconv.Itoa(max(alert.Hotel.Guests, 1)))
	params.Set("rooms", strconv.Itoa(max(alert.Hotel.Rooms, 1)))

	reqURL := fmt.Sprintf("%s/v1/hotels/search?%s", b.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{Provider: b.Name(), Reason: "创建HTTP请求失败", Err: err}
	}
	req.Header.Set("X-API-Key", b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Provider: b.Name(), Reason: "执行HTTP请求失败", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Provider: b.Name(), Reason: fmt.Sprintf("API返回非200状态码: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Provider: b.Name(), Reason: "读取响应体失败", Err: err}
	}

	var hotelResp bookingResponse
	if err := json.Unmarshal(body, &hotelResp); err != nil {
		return nil, &FetchError{Provider: b.Name(), Reason: "解析响应失败", Err: err}
	}

	offers := make([]Offer, 0, len(hotelResp.Result))
	for _, h := range hotelResp.Result {
		offers = append(offers, Offer{Price: h.MinPrice, Description: h.HotelName})
	}
	return offers, nil
}
