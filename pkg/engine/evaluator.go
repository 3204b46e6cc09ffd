// pkg/engine/evaluator.go
package engine

import (
	"TripRadar/pkg/model"
)

// Outcome 一次触发评估的结果
// Triggered 为真时 OldPrice/NewPrice 供通知使用，OldPrice 首次检查前为空
type Outcome struct {
	Triggered bool
	OldPrice  *float64
	NewPrice  float64
}

// Evaluate 评估报价是否触发提醒
// 纯函数，不修改提醒状态；边界为闭区间，价格等于目标价也触发
// 状态更新（recordTrigger/recordCheck）由调用方根据返回值执行
func Evaluate(alert *model.PriceAlert, quote model.PriceQuote) Outcome {
	if quote.Price <= alert.TargetPrice {
		return Outcome{
			Triggered: true,
			OldPrice:  alert.CurrentPrice,
			NewPrice:  quote.Price,
		}
	}
	return Outcome{
		Triggered: false,
		NewPrice:  quote.Price,
	}
}
