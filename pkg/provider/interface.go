package provider

import (
	"context"
	"fmt"

	"TripRadar/pkg/model"
)

// Offer 数据源返回的单条报价
type Offer struct {
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
}

// Searcher 单个价格数据源的搜索接口
// 实现必须是无副作用的纯查询，可以安全重复调用
type Searcher interface {
	Name() string
	Search(ctx context.Context, alert *model.PriceAlert) ([]Offer, error)
}

// FetchError 价格查询失败
// 调度器按提醒隔离此类错误，不在本轮内重试
type FetchError struct {
	Provider string
	Reason   string
	Err      error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("数据源 %s 查询失败: %s: %v", e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("数据源 %s 查询失败: %s", e.Provider, e.Reason)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
