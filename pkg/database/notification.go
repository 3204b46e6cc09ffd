// pkg/database/notification.go
package database

import (
	"fmt"

	"TripRadar/pkg/model"
)

func (a *AlertDB) SaveNotification(rec *model.NotificationRecord) error {
	if err := a.db.Create(rec).Error; err != nil {
		return fmt.Errorf("保存通知记录失败: %w", err)
	}
	return nil
}

// GetNotifications 获取提醒的全部通知记录
func (a *AlertDB) GetNotifications(alertID string, limit int) ([]*model.NotificationRecord, error) {
	var records []*model.NotificationRecord
	err := a.db.Where("alert_id = ?", alertID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("查询通知记录失败: %w", err)
	}
	return records, nil
}
