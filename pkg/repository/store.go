// pkg/repository/store.go
package repository

import (
	"TripRadar/pkg/model"
)

// Store 价格提醒存储接口
// 内存实现（Repository）用于开发与测试，数据库实现见 pkg/database
type Store interface {
	// Create 校验并保存新提醒，分配 ID 与创建时间
	Create(alert *model.PriceAlert) error
	// Get 按 ID 获取提醒，按 userID 做归属校验
	Get(id, userID string) (*model.PriceAlert, error)
	// ListByUser 获取用户的全部提醒，按创建时间倒序
	ListByUser(userID string) ([]*model.PriceAlert, error)
	// ListActive 获取所有激活的提醒，仅供调度器使用，不做归属过滤
	ListActive() ([]*model.PriceAlert, error)
	// SetActive 切换激活状态并刷新 lastChecked
	SetActive(id, userID string, active bool) (*model.PriceAlert, error)
	// Delete 删除提醒并返回删除前的快照
	Delete(id, userID string) (*model.PriceAlert, error)
	// RecordCheck 更新当前价格与检查时间
	RecordCheck(id string, price float64) error
	// RecordTrigger 更新价格、时间戳并递增触发计数
	RecordTrigger(id string, price float64) error
	// SaveNotification 保存单渠道通知记录
	SaveNotification(rec *model.NotificationRecord) error
}
