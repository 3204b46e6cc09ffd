// pkg/provider/chain.go
package provider

import (
	"context"
	"fmt"
	"log"
	"strings"

	"TripRadar/pkg/model"
)

// FallbackChain 按顺序尝试多个数据源，成功即停止
// 机票查询先走 Amadeus，失败再走 Skyscanner
type FallbackChain struct {
	name      string
	searchers []Searcher
}

// NewFallbackChain 创建数据源回退链
func NewFallbackChain(name string, searchers ...Searcher) *FallbackChain {
	return &FallbackChain{name: name, searchers: searchers}
}

func (c *FallbackChain) Name() string {
	return c.name
}

// Search 依次尝试每个数据源，全部失败时汇总错误
func (c *FallbackChain) Search(ctx context.Context, alert *model.PriceAlert) ([]Offer, error) {
	if len(c.searchers) == 0 {
		return nil, &FetchError{Provider: c.name, Reason: "未配置任何数据源"}
	}

	var reasons []string
	for _, s := range c.searchers {
		offers, err := s.Search(ctx, alert)
		if err == nil {
			return offers, nil
		}
		log.Printf("数据源 %s 查询失败，尝试下一个: %v", s.Name(), err)
		reasons = append(reasons, fmt.Sprintf("%s: %v", s.Name(), err))

		// 上下文已取消时不再尝试后续数据源
		if ctx.Err() != nil {
			break
		}
	}

	return nil, &FetchError{
		Provider: c.name,
		Reason:   fmt.Sprintf("所有数据源均失败: %s", strings.Join(reasons, "; ")),
	}
}
