package notify

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TripRadar/pkg/model"
	"TripRadar/pkg/repository"
)

// fakeEmailSender 记录每次调用，可配置失败
type fakeEmailSender struct {
	mu    sync.Mutex
	sent  []string
	bodys []string
	err   error
}

func (f *fakeEmailSender) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	f.bodys = append(f.bodys, body)
	return nil
}

type fakeSMSSender struct {
	mu    sync.Mutex
	sent  []string
	bodys []string
	err   error
}

func (f *fakeSMSSender) Send(to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	f.bodys = append(f.bodys, body)
	return nil
}

func triggeredAlert() *model.PriceAlert {
	return &model.PriceAlert{
		ID:     "alert_001",
		UserID: "user_001",
		Kind:   model.AlertKindFlight,
		Flight: &model.FlightCriteria{
			From:       "JFK",
			To:         "LAX",
			DepartDate: "2024-03-15",
		},
		TargetPrice: 250,
		Email:       "user@example.com",
		Phone:       "+15551234567",
		NotifyVia:   model.NotifyViaBoth,
	}
}

func TestChannelsFor(t *testing.T) {
	assert.Equal(t, []Channel{ChannelEmail}, ChannelsFor(model.NotifyViaEmail))
	assert.Equal(t, []Channel{ChannelSMS}, ChannelsFor(model.NotifyViaSMS))
	assert.Equal(t, []Channel{ChannelEmail, ChannelSMS}, ChannelsFor(model.NotifyViaBoth))
	// 未设置偏好时默认邮件
	assert.Equal(t, []Channel{ChannelEmail}, ChannelsFor(""))
}

func TestDispatcherSend(t *testing.T) {
	t.Run("BothChannelsSucceed", func(t *testing.T) {
		email := &fakeEmailSender{}
		sms := &fakeSMSSender{}
		d := NewDispatcher(email, sms, nil, "http://localhost:3000")

		alert := triggeredAlert()
		report := d.Send(alert, nil, 230, ChannelsFor(alert.NotifyVia))

		assert.Equal(t, 2, report.SuccessCount())
		assert.Equal(t, []string{"user@example.com"}, email.sent)
		assert.Equal(t, []string{"+15551234567"}, sms.sent)
	})

	t.Run("MissingPhoneDoesNotBlockEmail", func(t *testing.T) {
		email := &fakeEmailSender{}
		sms := &fakeSMSSender{}
		d := NewDispatcher(email, sms, nil, "")

		alert := triggeredAlert()
		alert.Phone = ""
		report := d.Send(alert, nil, 230, ChannelsFor(alert.NotifyVia))

		require.Len(t, report.Results, 2)
		assert.Equal(t, 1, report.SuccessCount())
		for _, res := range report.Results {
			if res.Channel == ChannelSMS {
				assert.False(t, res.Success)
				assert.Equal(t, "no phone on file", res.Reason)
			} else {
				assert.True(t, res.Success)
			}
		}
		assert.Empty(t, sms.sent)
		assert.Len(t, email.sent, 1)
	})

	t.Run("EmailFailureDoesNotBlockSMS", func(t *testing.T) {
		email := &fakeEmailSender{err: errors.New("SMTP连接被拒绝")}
		sms := &fakeSMSSender{}
		d := NewDispatcher(email, sms, nil, "")

		alert := triggeredAlert()
		report := d.Send(alert, nil, 230, ChannelsFor(alert.NotifyVia))

		assert.Equal(t, 1, report.SuccessCount())
		assert.Len(t, sms.sent, 1)
		for _, res := range report.Results {
			if res.Channel == ChannelEmail {
				assert.False(t, res.Success)
				assert.Contains(t, res.Reason, "SMTP")
			}
		}
	})

	t.Run("SavingsShownWhenOldPriceKnown", func(t *testing.T) {
		email := &fakeEmailSender{}
		d := NewDispatcher(email, &fakeSMSSender{}, nil, "")

		alert := triggeredAlert()
		old := 300.0
		d.Send(alert, &old, 240, []Channel{ChannelEmail})

		require.Len(t, email.bodys, 1)
		assert.Contains(t, email.bodys[0], "$60.00")
		assert.Contains(t, email.bodys[0], "20.0%")
	})

	t.Run("SavingsOmittedOnFirstCheck", func(t *testing.T) {
		email := &fakeEmailSender{}
		d := NewDispatcher(email, &fakeSMSSender{}, nil, "")

		d.Send(triggeredAlert(), nil, 240, []Channel{ChannelEmail})

		require.Len(t, email.bodys, 1)
		assert.False(t, strings.Contains(email.bodys[0], "节省"))
	})

	t.Run("SMSIncludesTripDate", func(t *testing.T) {
		sms := &fakeSMSSender{}
		d := NewDispatcher(&fakeEmailSender{}, sms, nil, "")

		alert := triggeredAlert()
		d.Send(alert, nil, 230, []Channel{ChannelSMS})

		require.Len(t, sms.bodys, 1)
		assert.Contains(t, sms.bodys[0], "JFK → LAX")
		assert.Contains(t, sms.bodys[0], "2024-03-15")

		hotel := &model.PriceAlert{
			ID:     "alert_002",
			UserID: "user_001",
			Kind:   model.AlertKindHotel,
			Hotel: &model.HotelCriteria{
				Destination: "Miami, FL",
				CheckIn:     "2024-04-10",
				CheckOut:    "2024-04-15",
			},
			TargetPrice: 200,
			Email:       "user@example.com",
			Phone:       "+15551234567",
		}
		d.Send(hotel, nil, 180, []Channel{ChannelSMS})

		require.Len(t, sms.bodys, 2)
		assert.Contains(t, sms.bodys[1], "Miami, FL")
		assert.Contains(t, sms.bodys[1], "2024-04-10")
	})

	t.Run("RecordsSavedPerChannel", func(t *testing.T) {
		repo := repository.NewRepository()
		d := NewDispatcher(&fakeEmailSender{}, &fakeSMSSender{}, repo, "")

		alert := triggeredAlert()
		alert.Phone = ""
		d.Send(alert, nil, 230, ChannelsFor(alert.NotifyVia))

		records := repo.GetNotifications(alert.ID)
		require.Len(t, records, 2)

		byChannel := make(map[string]*model.NotificationRecord)
		for _, rec := range records {
			byChannel[rec.Channel] = rec
		}
		require.Contains(t, byChannel, "email")
		require.Contains(t, byChannel, "sms")
		assert.Equal(t, "sent", byChannel["email"].Status)
		assert.NotNil(t, byChannel["email"].SentAt)
		assert.Equal(t, "failed", byChannel["sms"].Status)
		assert.Equal(t, "no phone on file", byChannel["sms"].Error)
		assert.Nil(t, byChannel["sms"].SentAt)
	})
}

func TestSavingsLine(t *testing.T) {
	old := 300.0
	assert.Equal(t, "📉 为您节省：$60.00 (20.0% off)\n", savingsLine(&old, 240))

	zero := 0.0
	assert.Empty(t, savingsLine(&zero, 240))
	assert.Empty(t, savingsLine(nil, 240))
}
