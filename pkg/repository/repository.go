// pkg/repository/repository.go
package repository

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"TripRadar/pkg/model"
)

// Repository 内存版价格提醒仓库
// 读写都返回副本，调用方拿到的是快照，不会被后续写入影响
type Repository struct {
	alerts        map[string]*model.PriceAlert
	notifications []*model.NotificationRecord
	mutex         sync.RWMutex
}

// NewRepository 创建新的内存仓库
func NewRepository() *Repository {
	return &Repository{
		alerts:        make(map[string]*model.PriceAlert),
		notifications: make([]*model.NotificationRecord, 0),
	}
}

func (r *Repository) Create(alert *model.PriceAlert) error {
	if err := alert.Validate(); err != nil {
		return err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now()
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.NotifyVia == "" {
		alert.NotifyVia = model.NotifyViaEmail
	}
	alert.CreatedAt = now
	alert.LastCheckedAt = now
	alert.LastTriggeredAt = nil
	alert.TriggerCount = 0

	r.alerts[alert.ID] = cloneAlert(alert)
	return nil
}

func (r *Repository) Get(id, userID string) (*model.PriceAlert, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	alert, exists := r.alerts[id]
	if !exists || alert.UserID != userID {
		return nil, model.ErrAlertNotFound
	}
	return cloneAlert(alert), nil
}

func (r *Repository) ListByUser(userID string) ([]*model.PriceAlert, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*model.PriceAlert, 0)
	for _, alert := range r.alerts {
		if alert.UserID == userID {
			result = append(result, cloneAlert(alert))
		}
	}

	// 创建时间倒序，最新的在前
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *Repository) ListActive() ([]*model.PriceAlert, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*model.PriceAlert, 0)
	for _, alert := range r.alerts {
		if alert.Active {
			result = append(result, cloneAlert(alert))
		}
	}

	// 创建时间正序，保证每轮检查的遍历顺序稳定
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *Repository) SetActive(id, userID string, active bool) (*model.PriceAlert, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	alert, exists := r.alerts[id]
	if !exists || alert.UserID != userID {
		return nil, model.ErrAlertNotFound
	}

	alert.Active = active
	alert.LastCheckedAt = time.Now()
	return cloneAlert(alert), nil
}

func (r *Repository) Delete(id, userID string) (*model.PriceAlert, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	alert, exists := r.alerts[id]
	if !exists || alert.UserID != userID {
		return nil, model.ErrAlertNotFound
	}

	delete(r.alerts, id)
	return alert, nil
}

func (r *Repository) RecordCheck(id string, price float64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	alert, exists := r.alerts[id]
	if !exists {
		return model.ErrAlertNotFound
	}

	alert.RecordCheck(price, time.Now())
	return nil
}

func (r *Repository) RecordTrigger(id string, price float64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	alert, exists := r.alerts[id]
	if !exists {
		return model.ErrAlertNotFound
	}

	alert.RecordTrigger(price, time.Now())
	return nil
}

func (r *Repository) SaveNotification(rec *model.NotificationRecord) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.CreatedAt = time.Now()
	stored := *rec
	r.notifications = append(r.notifications, &stored)
	return nil
}

// GetNotifications 获取提醒的全部通知记录，测试与排查用
func (r *Repository) GetNotifications(alertID string) []*model.NotificationRecord {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*model.NotificationRecord, 0)
	for _, rec := range r.notifications {
		if rec.AlertID == alertID {
			copied := *rec
			result = append(result, &copied)
		}
	}
	return result
}

// cloneAlert 深拷贝提醒，条件子记录也一并复制
func cloneAlert(alert *model.PriceAlert) *model.PriceAlert {
	copied := *alert
	if alert.Flight != nil {
		f := *alert.Flight
		copied.Flight = &f
	}
	if alert.Hotel != nil {
		h := *alert.Hotel
		copied.Hotel = &h
	}
	if alert.Car != nil {
		c := *alert.Car
		copied.Car = &c
	}
	if alert.CurrentPrice != nil {
		p := *alert.CurrentPrice
		copied.CurrentPrice = &p
	}
	if alert.LastTriggeredAt != nil {
		t := *alert.LastTriggeredAt
		copied.LastTriggeredAt = &t
	}
	return &copied
}
