// pkg/notify/sms.go
package notify

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"TripRadar/pkg/config"
)

// TwilioSMSSender 基于Twilio REST API的短信发送器
type TwilioSMSSender struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	httpClient *http.Client
}

// twilioResponse Twilio接口响应
type twilioResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Message string `json:"message"` // 出错时的说明
}

// NewTwilioSMSSender 创建Twilio短信发送器
func NewTwilioSMSSender(cfg *config.Config) *TwilioSMSSender {
	return &TwilioSMSSender{
		accountSID: cfg.Twilio.AccountSID,
		authToken:  cfg.Twilio.AuthToken,
		fromNumber: cfg.Twilio.FromNumber,
		baseURL:    strings.TrimRight(cfg.Twilio.BaseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send 发送短信
func (t *TwilioSMSSender) Send(to, body string) error {
	if t.accountSID == "" || t.authToken == "" {
		return fmt.Errorf("Twilio未配置")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.fromNumber)
	form.Set("Body", body)

	reqURL := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, t.accountSID)
	req, err := http.NewRequest(http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("执行HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应体失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var twResp twilioResponse
		if err := json.Unmarshal(respBody, &twResp); err == nil && twResp.Message != "" {
			return fmt.Errorf("Twilio返回错误: %s", twResp.Message)
		}
		return fmt.Errorf("Twilio返回非2xx状态码: %d", resp.StatusCode)
	}

	return nil
}

// MockSMSSender 模拟短信发送器，开发环境使用
type MockSMSSender struct{}

func NewMockSMSSender() *MockSMSSender {
	return &MockSMSSender{}
}

func (m *MockSMSSender) Send(to, body string) error {
	log.Printf("[模拟短信] 收件人 %s: %s", to, body)
	return nil
}
