// pkg/notify/dispatcher.go
package notify

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"TripRadar/pkg/model"
)

// Channel 通知渠道
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// ChannelsFor 根据用户偏好展开渠道列表
func ChannelsFor(via model.NotifyVia) []Channel {
	switch via {
	case model.NotifyViaSMS:
		return []Channel{ChannelSMS}
	case model.NotifyViaBoth:
		return []Channel{ChannelEmail, ChannelSMS}
	default:
		return []Channel{ChannelEmail}
	}
}

// EmailSender 邮件发送接口
type EmailSender interface {
	Send(to, subject, body string) error
}

// SMSSender 短信发送接口
type SMSSender interface {
	Send(to, body string) error
}

// Recorder 通知记录存储接口
type Recorder interface {
	SaveNotification(rec *model.NotificationRecord) error
}

// ChannelResult 单渠道发送结果
type ChannelResult struct {
	Channel Channel `json:"channel"`
	Success bool    `json:"success"`
	Reason  string  `json:"reason,omitempty"`
}

// DispatchReport 一次触发通知的分发报告
type DispatchReport struct {
	AlertID string          `json:"alert_id"`
	Results []ChannelResult `json:"results"`
}

// SuccessCount 成功渠道数
func (r DispatchReport) SuccessCount() int {
	count := 0
	for _, res := range r.Results {
		if res.Success {
			count++
		}
	}
	return count
}

// Dispatcher 通知分发器
// 各渠道独立并发尝试，单渠道失败不影响其他渠道
type Dispatcher struct {
	email    EmailSender
	sms      SMSSender
	recorder Recorder
	appURL   string
}

// NewDispatcher 创建通知分发器，recorder 可以为空
func NewDispatcher(email EmailSender, sms SMSSender, recorder Recorder, appURL string) *Dispatcher {
	return &Dispatcher{
		email:    email,
		sms:      sms,
		recorder: recorder,
		appURL:   appURL,
	}
}

// Send 向指定渠道发送降价通知
func (d *Dispatcher) Send(alert *model.PriceAlert, oldPrice *float64, newPrice float64, channels []Channel) DispatchReport {
	report := DispatchReport{
		AlertID: alert.ID,
		Results: make([]ChannelResult, len(channels)),
	}

	var wg sync.WaitGroup
	for i, ch := range channels {
		wg.Add(1)
		go func(idx int, channel Channel) {
			defer wg.Done()
			report.Results[idx] = d.sendOne(alert, oldPrice, newPrice, channel)
		}(i, ch)
	}
	wg.Wait()

	log.Printf("提醒 %s: %d/%d 个渠道通知成功", alert.ID, report.SuccessCount(), len(channels))
	return report
}

// sendOne 发送单个渠道并落通知记录
func (d *Dispatcher) sendOne(alert *model.PriceAlert, oldPrice *float64, newPrice float64, channel Channel) ChannelResult {
	result := ChannelResult{Channel: channel}
	var content string

	switch channel {
	case ChannelEmail:
		subject := fmt.Sprintf("🎯 降价提醒: %s 价格达标了！", kindLabel(alert.Kind))
		content = d.formatEmailBody(alert, oldPrice, newPrice)
		if err := d.email.Send(alert.Email, subject, content); err != nil {
			result.Reason = err.Error()
		} else {
			result.Success = true
		}
	case ChannelSMS:
		if alert.Phone == "" {
			result.Reason = "no phone on file"
			break
		}
		content = d.formatSMSBody(alert, oldPrice, newPrice)
		if err := d.sms.Send(alert.Phone, content); err != nil {
			result.Reason = err.Error()
		} else {
			result.Success = true
		}
	default:
		result.Reason = fmt.Sprintf("不支持的通知渠道: %s", channel)
	}

	if !result.Success {
		log.Printf("提醒 %s 渠道 %s 发送失败: %s", alert.ID, channel, result.Reason)
	}

	d.record(alert, channel, content, result)
	return result
}

// record 保存通知记录，记录失败只打日志，不影响分发结果
func (d *Dispatcher) record(alert *model.PriceAlert, channel Channel, content string, result ChannelResult) {
	if d.recorder == nil {
		return
	}

	rec := &model.NotificationRecord{
		UserID:  alert.UserID,
		AlertID: alert.ID,
		Channel: string(channel),
		Content: content,
		Error:   result.Reason,
	}
	if result.Success {
		now := time.Now()
		rec.Status = "sent"
		rec.SentAt = &now
	} else {
		rec.Status = "failed"
	}

	if err := d.recorder.SaveNotification(rec); err != nil {
		log.Printf("保存通知记录失败: %v", err)
	}
}

// formatEmailBody 格式化邮件内容
func (d *Dispatcher) formatEmailBody(alert *model.PriceAlert, oldPrice *float64, newPrice float64) string {
	var b strings.Builder

	b.WriteString("🎉 好消息！您的降价提醒触发了！\n\n")
	b.WriteString(fmt.Sprintf("%s %s：%s\n", kindEmoji(alert.Kind), kindLabel(alert.Kind), alert.Describe()))
	b.WriteString(fmt.Sprintf("🎯 目标价：$%.2f\n", alert.TargetPrice))
	b.WriteString(fmt.Sprintf("💰 当前价：$%.2f\n", newPrice))
	b.WriteString(savingsLine(oldPrice, newPrice))

	switch alert.Kind {
	case model.AlertKindFlight:
		if alert.Flight != nil {
			returnDate := alert.Flight.ReturnDate
			if returnDate == "" {
				returnDate = "单程"
			}
			b.WriteString(fmt.Sprintf("\n✈️ 行程详情：\n  出发：%s\n  返程：%s\n  乘客：%d\n  舱位：%s\n",
				alert.Flight.DepartDate, returnDate, max(alert.Flight.Passengers, 1), alert.Flight.Class))
		}
	case model.AlertKindHotel:
		if alert.Hotel != nil {
			b.WriteString(fmt.Sprintf("\n🏨 入住详情：\n  入住：%s\n  退房：%s\n  客人：%d\n  房间：%d\n",
				alert.Hotel.CheckIn, alert.Hotel.CheckOut, max(alert.Hotel.Guests, 1), max(alert.Hotel.Rooms, 1)))
		}
	case model.AlertKindCar:
		if alert.Car != nil {
			b.WriteString(fmt.Sprintf("\n🚗 租车详情：\n  取车：%s\n  还车：%s\n",
				alert.Car.PickupDate, alert.Car.DropoffDate))
		}
	}

	if d.appURL != "" {
		b.WriteString(fmt.Sprintf("\n立即预订：%s\n", d.appURL))
	}
	b.WriteString(fmt.Sprintf("\n⏰ 触发时间：%s\n", time.Now().Format("2006-01-02 15:04:05")))

	return b.String()
}

// formatSMSBody 格式化短信内容，保持简短但带上行程日期
func (d *Dispatcher) formatSMSBody(alert *model.PriceAlert, oldPrice *float64, newPrice float64) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🎯 降价提醒: %s (%s) 当前价 $%.2f，目标价 $%.2f。",
		kindLabel(alert.Kind), tripSummary(alert), newPrice, alert.TargetPrice))
	if line := savingsLine(oldPrice, newPrice); line != "" {
		b.WriteString(strings.TrimSuffix(strings.TrimPrefix(line, "📉 "), "\n"))
		b.WriteString("。")
	}
	if d.appURL != "" {
		b.WriteString(fmt.Sprintf(" 立即预订: %s", d.appURL))
	}

	return b.String()
}

// tripSummary 行程描述加上关键日期，短信里也要能看出是哪一程
func tripSummary(alert *model.PriceAlert) string {
	switch alert.Kind {
	case model.AlertKindFlight:
		if alert.Flight != nil {
			return fmt.Sprintf("%s，%s 出发", alert.Describe(), alert.Flight.DepartDate)
		}
	case model.AlertKindHotel:
		if alert.Hotel != nil {
			return fmt.Sprintf("%s，%s 入住", alert.Describe(), alert.Hotel.CheckIn)
		}
	case model.AlertKindCar:
		if alert.Car != nil {
			return fmt.Sprintf("%s，%s 取车", alert.Describe(), alert.Car.PickupDate)
		}
	}
	return alert.Describe()
}

// savingsLine 计算节省金额与折扣比例，旧价缺失或为零时省略
func savingsLine(oldPrice *float64, newPrice float64) string {
	if oldPrice == nil || *oldPrice <= 0 {
		return ""
	}
	diff := *oldPrice - newPrice
	pct := diff / *oldPrice * 100
	return fmt.Sprintf("📉 为您节省：$%.2f (%.1f%% off)\n", diff, pct)
}

func kindLabel(kind model.AlertKind) string {
	switch kind {
	case model.AlertKindFlight:
		return "机票"
	case model.AlertKindHotel:
		return "酒店"
	case model.AlertKindCar:
		return "租车"
	default:
		return string(kind)
	}
}

func kindEmoji(kind model.AlertKind) string {
	switch kind {
	case model.AlertKindFlight:
		return "✈️"
	case model.AlertKindHotel:
		return "🏨"
	case model.AlertKindCar:
		return "🚗"
	default:
		return "🔔"
	}
}
