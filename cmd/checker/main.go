// cmd/checker 手动执行一轮价格检查，运维排查用
package main

import (
	"context"
	"log"
	"os"

	"TripRadar/pkg/config"
	"TripRadar/pkg/database"
	"TripRadar/pkg/messaging"
	"TripRadar/pkg/notify"
	"TripRadar/pkg/provider"
	"TripRadar/pkg/repository"
	"TripRadar/pkg/scheduler"
)

func main() {
	log.Println("启动手动价格检查...")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v\n", err)
	}

	var store repository.Store
	if cfg.Database.Postgres.Host != "" {
		db, err := database.NewPostgresDB(cfg)
		if err != nil {
			log.Fatalf("连接数据库失败: %v\n", err)
		}
		defer db.Close()
		store = db.Alerts()
	} else {
		log.Println("未配置数据库，使用内存仓库（无提醒可查）")
		store = repository.NewRepository()
	}

	var publisher scheduler.EventPublisher
	if cfg.NATS.URL != "" {
		natsClient, err := messaging.NewNATSClient(cfg.NATS.URL)
		if err != nil {
			log.Fatalf("连接NATS失败: %v\n", err)
		}
		defer natsClient.Close()
		publisher = natsClient
	}

	gateway := provider.NewGatewayFromConfig(cfg)

	var email notify.EmailSender = notify.NewMockEmailSender()
	if cfg.SMTP.Host != "" {
		email = notify.NewSMTPEmailSender(cfg)
	}
	var sms notify.SMSSender = notify.NewMockSMSSender()
	if cfg.Twilio.AccountSID != "" {
		sms = notify.NewTwilioSMSSender(cfg)
	}
	dispatcher := notify.NewDispatcher(email, sms, store, cfg.App.URL)

	sched := scheduler.NewScheduler(store, gateway, dispatcher, publisher,
		cfg.Alerts.CheckDelay, cfg.Alerts.FetchTimeout)

	results, err := sched.RunNow(context.Background())
	if err != nil {
		log.Fatalf("价格检查失败: %v\n", err)
	}

	for _, result := range results {
		if result.Error != "" {
			log.Printf("提醒 %s 检查失败: %s", result.AlertID, result.Error)
			continue
		}
		log.Printf("提醒 %s: 当前价 $%.2f 目标价 $%.2f 触发=%v",
			result.AlertID, result.CurrentPrice, result.TargetPrice, result.Triggered)
	}
	log.Printf("手动价格检查完成，共处理 %d 个提醒", len(results))
}
