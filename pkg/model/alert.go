// pkg/model/alert.go
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AlertKind 提醒类型枚举
type AlertKind string

const (
	AlertKindFlight AlertKind = "flight" // 机票
	AlertKindHotel  AlertKind = "hotel"  // 酒店
	AlertKindCar    AlertKind = "car"    // 租车
)

// NotifyVia 通知渠道偏好
type NotifyVia string

const (
	NotifyViaEmail NotifyVia = "email"
	NotifyViaSMS   NotifyVia = "sms"
	NotifyViaBoth  NotifyVia = "both"
)

// FlightCriteria 机票搜索条件
type FlightCriteria struct {
	From       string `json:"from"`
	To         string `json:"to"`
	DepartDate string `json:"departDate"`
	ReturnDate string `json:"returnDate,omitempty"` // 为空表示单程
	Passengers int    `json:"passengers,omitempty"`
	Class      string `json:"class,omitempty"`
}

// HotelCriteria 酒店搜索条件
type HotelCriteria struct {
	Destination string `json:"destination"`
	CheckIn     string `json:"checkIn"`
	CheckOut    string `json:"checkOut"`
	Guests      int    `json:"guests,omitempty"`
	Rooms       int    `json:"rooms,omitempty"`
	StarRating  string `json:"starRating,omitempty"`
}

// CarCriteria 租车搜索条件
type CarCriteria struct {
	PickupLocation  string `json:"pickupLocation"`
	DropoffLocation string `json:"dropoffLocation,omitempty"`
	PickupDate      string `json:"pickupDate"`
	DropoffDate     string `json:"dropoffDate"`
}

// PriceAlert 价格提醒
// Kind 决定哪个条件子记录被填充，三者有且只有一个非空
type PriceAlert struct {
	ID              string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string          `gorm:"type:varchar(64);not null;index" json:"userId"`
	Kind            AlertKind       `gorm:"type:varchar(10);not null;index" json:"type"`
	Flight          *FlightCriteria `gorm:"type:jsonb;serializer:json" json:"route,omitempty"`
	Hotel           *HotelCriteria  `gorm:"type:jsonb;serializer:json" json:"hotel,omitempty"`
	Car             *CarCriteria    `gorm:"type:jsonb;serializer:json" json:"car,omitempty"`
	TargetPrice     float64         `gorm:"type:decimal(10,2);not null" json:"targetPrice"`
	CurrentPrice    *float64        `gorm:"type:decimal(10,2)" json:"currentPrice"` // 首次检查前为空
	Email           string          `gorm:"not null" json:"email"`
	Phone           string          `json:"phone,omitempty"`
	NotifyVia       NotifyVia       `gorm:"type:varchar(10);default:'email'" json:"notificationPreference"`
	Active          bool            `gorm:"default:true;index" json:"active"`
	CreatedAt       time.Time       `json:"createdAt"`
	LastCheckedAt   time.Time       `json:"lastChecked"`
	LastTriggeredAt *time.Time      `json:"lastTriggered"`
	TriggerCount    int             `gorm:"default:0" json:"triggerCount"`
}

func (a *PriceAlert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

func (PriceAlert) TableName() string {
	return "price_alerts"
}

// Validate 校验创建时的必填字段
// 条件子记录必须与 Kind 匹配，不允许同时填充多个
func (a *PriceAlert) Validate() error {
	if a.Kind == "" || a.TargetPrice == 0 || a.Email == "" {
		return &ValidationError{Message: "缺少必填字段: type, targetPrice, email"}
	}
	if a.TargetPrice <= 0 {
		return &ValidationError{Message: "targetPrice 必须为正数"}
	}

	switch a.Kind {
	case AlertKindFlight:
		if a.Flight == nil || a.Flight.From == "" || a.Flight.To == "" || a.Flight.DepartDate == "" {
			return &ValidationError{Message: "缺少必填的机票信息"}
		}
		if a.Hotel != nil || a.Car != nil {
			return &ValidationError{Message: "机票提醒不允许携带其他类型的条件"}
		}
	case AlertKindHotel:
		if a.Hotel == nil || a.Hotel.Destination == "" || a.Hotel.CheckIn == "" || a.Hotel.CheckOut == "" {
			return &ValidationError{Message: "缺少必填的酒店信息"}
		}
		if a.Flight != nil || a.Car != nil {
			return &ValidationError{Message: "酒店提醒不允许携带其他类型的条件"}
		}
	case AlertKindCar:
		if a.Car == nil || a.Car.PickupLocation == "" || a.Car.PickupDate == "" || a.Car.DropoffDate == "" {
			return &ValidationError{Message: "缺少必填的租车信息"}
		}
		if a.Flight != nil || a.Hotel != nil {
			return &ValidationError{Message: "租车提醒不允许携带其他类型的条件"}
		}
	default:
		return &ValidationError{Message: fmt.Sprintf("不支持的提醒类型: %s", a.Kind)}
	}

	switch a.NotifyVia {
	case "", NotifyViaEmail, NotifyViaSMS, NotifyViaBoth:
	default:
		return &ValidationError{Message: fmt.Sprintf("不支持的通知偏好: %s", a.NotifyVia)}
	}

	return nil
}

// Describe 返回提醒的行程描述，用于通知内容和日志
func (a *PriceAlert) Describe() string {
	switch a.Kind {
	case AlertKindFlight:
		if a.Flight != nil {
			return fmt.Sprintf("%s → %s", a.Flight.From, a.Flight.To)
		}
	case AlertKindHotel:
		if a.Hotel != nil {
			return a.Hotel.Destination
		}
	case AlertKindCar:
		if a.Car != nil {
			return a.Car.PickupLocation
		}
	}
	return string(a.Kind)
}

// RecordCheck 记录一次未触发的价格检查
func (a *PriceAlert) RecordCheck(price float64, now time.Time) {
	a.CurrentPrice = &price
	a.LastCheckedAt = now
}

// RecordTrigger 记录一次触发，触发计数只增不减
func (a *PriceAlert) RecordTrigger(price float64, now time.Time) {
	a.CurrentPrice = &price
	a.LastCheckedAt = now
	a.LastTriggeredAt = &now
	a.TriggerCount++
}
