// pkg/database/alert.go
package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"TripRadar/pkg/model"
)

// AlertDB 价格提醒的数据库存储，实现 repository.Store
type AlertDB struct {
	db *gorm.DB
}

func (p *PostgresDB) Alerts() *AlertDB {
	return &AlertDB{db: p.db}
}

func (a *AlertDB) Create(alert *model.PriceAlert) error {
	if err := alert.Validate(); err != nil {
		return err
	}

	now := time.Now()
	if alert.NotifyVia == "" {
		alert.NotifyVia = model.NotifyViaEmail
	}
	alert.CreatedAt = now
	alert.LastCheckedAt = now
	alert.LastTriggeredAt = nil
	alert.TriggerCount = 0

	if err := a.db.Create(alert).Error; err != nil {
		return fmt.Errorf("保存价格提醒失败: %w", err)
	}
	return nil
}

func (a *AlertDB) Get(id, userID string) (*model.PriceAlert, error) {
	var alert model.PriceAlert
	err := a.db.First(&alert, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrAlertNotFound
		}
		return nil, fmt.Errorf("获取价格提醒失败: %w", err)
	}
	return &alert, nil
}

func (a *AlertDB) ListByUser(userID string) ([]*model.PriceAlert, error) {
	var alerts []*model.PriceAlert
	err := a.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("查询用户价格提醒失败: %w", err)
	}
	return alerts, nil
}

func (a *AlertDB) ListActive() ([]*model.PriceAlert, error) {
	var alerts []*model.PriceAlert
	err := a.db.Where("active = ?", true).
		Order("created_at ASC").
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("查询激活提醒失败: %w", err)
	}
	return alerts, nil
}

func (a *AlertDB) SetActive(id, userID string, active bool) (*model.PriceAlert, error) {
	alert, err := a.Get(id, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"active":          active,
		"last_checked_at": time.Now(),
	}
	if err := a.db.Model(&model.PriceAlert{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新提醒状态失败: %w", err)
	}

	alert.Active = active
	alert.LastCheckedAt = updates["last_checked_at"].(time.Time)
	return alert, nil
}

func (a *AlertDB) Delete(id, userID string) (*model.PriceAlert, error) {
	alert, err := a.Get(id, userID)
	if err != nil {
		return nil, err
	}

	if err := a.db.Delete(&model.PriceAlert{}, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("删除价格提醒失败: %w", err)
	}
	return alert, nil
}

func (a *AlertDB) RecordCheck(id string, price float64) error {
	err := a.db.Model(&model.PriceAlert{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_price":   price,
			"last_checked_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("记录价格检查失败: %w", err)
	}
	return nil
}

func (a *AlertDB) RecordTrigger(id string, price float64) error {
	now := time.Now()
	err := a.db.Model(&model.PriceAlert{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_price":     price,
			"last_checked_at":   now,
			"last_triggered_at": now,
			"trigger_count":     gorm.Expr("trigger_count + 1"),
		}).Error
	if err != nil {
		return fmt.Errorf("记录触发失败: %w", err)
	}
	return nil
}
