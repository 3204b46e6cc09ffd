// pkg/scheduler/scheduler.go
package scheduler

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"TripRadar/pkg/engine"
	"TripRadar/pkg/model"
	"TripRadar/pkg/notify"
	"TripRadar/pkg/repository"
)

// ErrRunInProgress 已有一轮检查在进行中，新请求被合并跳过
var ErrRunInProgress = errors.New("价格检查已在进行中")

// PriceFetcher 价格查询接口，由 provider.Gateway 实现
type PriceFetcher interface {
	FetchLowestPrice(ctx context.Context, alert *model.PriceAlert) (model.PriceQuote, error)
}

// Notifier 通知分发接口，由 notify.Dispatcher 实现
type Notifier interface {
	Send(alert *model.PriceAlert, oldPrice *float64, newPrice float64, channels []notify.Channel) notify.DispatchReport
}

// EventPublisher 触发事件发布接口，由 messaging.NATSClient 实现
type EventPublisher interface {
	PublishAlertTriggered(event model.AlertTriggeredEvent) error
}

// Scheduler 价格检查调度器
// 定时（默认每天9:00）或按需触发一轮检查，同一时刻最多一轮在跑
type Scheduler struct {
	store      repository.Store
	fetcher    PriceFetcher
	dispatcher Notifier
	publisher  EventPublisher // 可为空，为空时不发布事件

	cron    *cron.Cron
	running atomic.Bool

	checkDelay   time.Duration // 相邻提醒之间的间隔，保护外部数据源
	fetchTimeout time.Duration // 单次价格查询超时
}

// NewScheduler 创建价格检查调度器
func NewScheduler(store repository.Store, fetcher PriceFetcher, dispatcher Notifier, publisher EventPublisher, checkDelay, fetchTimeout time.Duration) *Scheduler {
	if checkDelay == 0 {
		checkDelay = 2 * time.Second
	}
	if fetchTimeout == 0 {
		fetchTimeout = 10 * time.Second
	}
	return &Scheduler{
		store:        store,
		fetcher:      fetcher,
		dispatcher:   dispatcher,
		publisher:    publisher,
		checkDelay:   checkDelay,
		fetchTimeout: fetchTimeout,
	}
}

// Start 启动定时任务
func (s *Scheduler) Start(cronSpec, timezone string) error {
	loc := time.Local
	if timezone != "" {
		parsed, err := time.LoadLocation(timezone)
		if err != nil {
			log.Printf("警告: 加载时区 %s 失败，使用本地时区: %v", timezone, err)
		} else {
			loc = parsed
		}
	}

	s.cron = cron.New(cron.WithLocation(loc))
	_, err := s.cron.AddFunc(cronSpec, func() {
		log.Println("开始定时价格检查...")
		results, err := s.RunNow(context.Background())
		if err != nil {
			if errors.Is(err, ErrRunInProgress) {
				log.Println("上一轮价格检查尚未结束，本次定时触发跳过")
				return
			}
			log.Printf("定时价格检查失败: %v", err)
			return
		}
		log.Printf("定时价格检查完成，共处理 %d 个提醒", len(results))
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("价格检查定时任务已启动: %s (%s)", cronSpec, loc)
	return nil
}

// Stop 停止定时任务，不打断进行中的一轮
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Running 当前是否有一轮检查在进行中
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// RunNow 立即执行一轮价格检查
// 工作集在开始时由 ListActive 固定，之后新建或激活的提醒不参与本轮
// 单个提醒的失败被隔离记录，不会中断整轮
func (s *Scheduler) RunNow(ctx context.Context) ([]model.RunResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	alerts, err := s.store.ListActive()
	if err != nil {
		return nil, err
	}
	log.Printf("开始检查 %d 个激活的提醒...", len(alerts))

	results := make([]model.RunResult, 0, len(alerts))
	for i, alert := range alerts {
		// 取消信号在两个提醒之间生效，不打断进行中的查询
		if ctx.Err() != nil {
			log.Printf("价格检查被取消，已处理 %d/%d 个提醒", i, len(alerts))
			break
		}

		results = append(results, s.checkOne(ctx, alert))

		// 相邻提醒之间留出间隔，避免打爆外部数据源
		if i < len(alerts)-1 {
			time.Sleep(s.checkDelay)
		}
	}

	log.Printf("价格检查完成，共处理 %d 个提醒", len(results))
	return results, nil
}

// checkOne 检查单个提醒并应用评估结果
func (s *Scheduler) checkOne(ctx context.Context, alert *model.PriceAlert) model.RunResult {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	quote, err := s.fetcher.FetchLowestPrice(fetchCtx, alert)
	if err != nil {
		// 查询失败不改动提醒状态，下一轮自然重试
		log.Printf("提醒 %s 价格查询失败: %v", alert.ID, err)
		return model.RunResult{AlertID: alert.ID, Error: err.Error()}
	}

	outcome := engine.Evaluate(alert, quote)
	result := model.RunResult{
		AlertID:      alert.ID,
		Triggered:    outcome.Triggered,
		CurrentPrice: quote.Price,
		TargetPrice:  alert.TargetPrice,
	}

	if !outcome.Triggered {
		if err := s.store.RecordCheck(alert.ID, quote.Price); err != nil {
			log.Printf("提醒 %s 记录检查失败: %v", alert.ID, err)
		}
		return result
	}

	log.Printf("提醒 %s 触发: $%.2f <= $%.2f", alert.ID, quote.Price, alert.TargetPrice)

	// 先落库再通知，通知失败不回滚触发状态
	if err := s.store.RecordTrigger(alert.ID, quote.Price); err != nil {
		log.Printf("提醒 %s 记录触发失败: %v", alert.ID, err)
	}

	s.dispatcher.Send(alert, outcome.OldPrice, outcome.NewPrice, notify.ChannelsFor(alert.NotifyVia))

	if s.publisher != nil {
		event := model.AlertTriggeredEvent{
			AlertID:     alert.ID,
			UserID:      alert.UserID,
			Kind:        alert.Kind,
			Description: alert.Describe(),
			OldPrice:    outcome.OldPrice,
			NewPrice:    outcome.NewPrice,
			TargetPrice: alert.TargetPrice,
			TriggeredAt: time.Now(),
		}
		if err := s.publisher.PublishAlertTriggered(event); err != nil {
			log.Printf("发布触发事件失败: %v", err)
		}
	}

	return result
}
