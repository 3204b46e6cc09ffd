// pkg/notify/email.go
package notify

import (
	"fmt"
	"log"
	"net/smtp"

	"TripRadar/pkg/config"
)

// SMTPEmailSender 基于SMTP的邮件发送器
type SMTPEmailSender struct {
	host string
	port int
	user string
	pass string
	from string
}

// NewSMTPEmailSender 创建SMTP邮件发送器
func NewSMTPEmailSender(cfg *config.Config) *SMTPEmailSender {
	return &SMTPEmailSender{
		host: cfg.SMTP.Host,
		port: cfg.SMTP.Port,
		user: cfg.SMTP.User,
		pass: cfg.SMTP.Pass,
		from: cfg.SMTP.From,
	}
}

// Send 发送邮件
func (s *SMTPEmailSender) Send(to, subject, body string) error {
	if s.host == "" {
		return fmt.Errorf("SMTP未配置")
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.user, s.pass, s.host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}

// MockEmailSender 模拟邮件发送器，开发环境使用
type MockEmailSender struct{}

func NewMockEmailSender() *MockEmailSender {
	return &MockEmailSender{}
}

func (m *MockEmailSender) Send(to, subject, body string) error {
	log.Printf("[模拟邮件] 收件人 %s 主题 %s\n%s", to, subject, body)
	return nil
}
