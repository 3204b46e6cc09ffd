// pkg/provider/gateway.go
package provider

import (
	"context"
	"fmt"
	"time"

	"TripRadar/pkg/config"
	"TripRadar/pkg/model"
)

// Gateway 价格数据源网关
// 按提醒类型分发到对应数据源，把报价列表归一化为单个最低价
type Gateway struct {
	searchers map[model.AlertKind]Searcher
}

// NewGateway 创建价格网关
func NewGateway(flight, hotel, car Searcher) *Gateway {
	return &Gateway{
		searchers: map[model.AlertKind]Searcher{
			model.AlertKindFlight: flight,
			model.AlertKindHotel:  hotel,
			model.AlertKindCar:    car,
		},
	}
}

// NewGatewayFromConfig 按配置组装全部数据源
func NewGatewayFromConfig(cfg *config.Config) *Gateway {
	p := cfg.Providers
	flight := NewFallbackChain("flight",
		NewAmadeusAdapter(p.Amadeus.APIKey, p.Amadeus.APISecret, p.Amadeus.BaseURL, p.Amadeus.Timeout),
		NewSkyscannerAdapter(p.Skyscanner.APIKey, p.Skyscanner.BaseURL, p.Skyscanner.Timeout),
	)
	hotel := NewBookingAdapter(p.Booking.APIKey, p.Booking.BaseURL, p.Booking.Timeout)
	car := NewHertzAdapter(p.Hertz.APIKey, p.Hertz.BaseURL, p.Hertz.Timeout)
	return NewGateway(flight, hotel, car)
}

// FetchLowestPrice 查询当前最低价
// 无结果或数据源失败都返回 FetchError，重试交给下一轮调度
func (g *Gateway) FetchLowestPrice(ctx context.Context, alert *model.PriceAlert) (model.PriceQuote, error) {
	searcher, exists := g.searchers[alert.Kind]
	if !exists || searcher == nil {
		return model.PriceQuote{}, &FetchError{
			Provider: string(alert.Kind),
			Reason:   fmt.Sprintf("不支持的提醒类型: %s", alert.Kind),
		}
	}

	offers, err := searcher.Search(ctx, alert)
	if err != nil {
		return model.PriceQuote{}, err
	}
	if len(offers) == 0 {
		return model.PriceQuote{}, &FetchError{Provider: searcher.Name(), Reason: "未找到任何报价"}
	}

	lowest := offers[0].Price
	for _, offer := range offers[1:] {
		if offer.Price < lowest {
			lowest = offer.Price
		}
	}

	return model.PriceQuote{
		Price:      lowest,
		OfferCount: len(offers),
		FetchedAt:  time.Now(),
	}, nil
}
