// pkg/model/quote.go
package model

import (
	"errors"
	"time"
)

// PriceQuote 一次价格观测结果，取所有报价中的最低价
type PriceQuote struct {
	Price      float64   `json:"price"`
	OfferCount int       `json:"offerCount"`
	FetchedAt  time.Time `json:"fetchedAt"`
}

// RunResult 一次检查中单个提醒的结果摘要
type RunResult struct {
	AlertID      string  `json:"alertId"`
	Triggered    bool    `json:"triggered"`
	CurrentPrice float64 `json:"currentPrice,omitempty"`
	TargetPrice  float64 `json:"targetPrice,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// AlertTriggeredEvent 触发事件，发布到消息总线供下游消费
type AlertTriggeredEvent struct {
	AlertID     string    `json:"alert_id"`
	UserID      string    `json:"user_id"`
	Kind        AlertKind `json:"kind"`
	Description string    `json:"description"`
	OldPrice    *float64  `json:"old_price"`
	NewPrice    float64   `json:"new_price"`
	TargetPrice float64   `json:"target_price"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// ValidationError 创建提醒时的输入校验错误，对应 HTTP 400
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ErrAlertNotFound 提醒不存在或不属于当前用户，对应 HTTP 404
var ErrAlertNotFound = errors.New("价格提醒不存在")
