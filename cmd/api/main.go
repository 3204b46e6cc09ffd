package main

import (
	"errors"
	"log"
	"os"
	"time"

	"TripRadar/pkg/api"
	"TripRadar/pkg/config"
	"TripRadar/pkg/database"
	"TripRadar/pkg/messaging"
	"TripRadar/pkg/monitor"
	"TripRadar/pkg/notify"
	"TripRadar/pkg/provider"
	"TripRadar/pkg/repository"
	"TripRadar/pkg/scheduler"
)

func main() {
	log.Println("启动价格提醒服务...")

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v\n", err)
	}

	// 创建监控器
	mon := monitor.NewMonitor(func(component, status, message string) {
		log.Printf("组件 %s 状态变为 %s: %s", component, status, message)
	})

	// 存储层：配置了数据库用Postgres，否则退回内存仓库
	var store repository.Store
	if cfg.Database.Postgres.Host != "" {
		db, err := database.NewPostgresDB(cfg)
		if err != nil {
			log.Fatalf("连接数据库失败: %v\n", err)
		}
		defer db.Close()
		store = db.Alerts()

		mon.RegisterComponent("database")
		go checkPeriodically(mon, "database", db.Ping, 5*time.Minute)
	} else {
		log.Println("未配置数据库，使用内存仓库")
		store = repository.NewRepository()
	}

	// 连接NATS，未配置时跳过事件发布
	var publisher scheduler.EventPublisher
	if cfg.NATS.URL != "" {
		natsClient, err := messaging.NewNATSClient(cfg.NATS.URL)
		if err != nil {
			log.Fatalf("连接NATS失败: %v\n", err)
		}
		defer natsClient.Close()
		publisher = natsClient

		mon.RegisterComponent("nats")
		go checkPeriodically(mon, "nats", func() error {
			if !natsClient.IsConnected() {
				return errNATSDisconnected
			}
			return nil
		}, 5*time.Minute)
	} else {
		log.Println("未配置NATS，跳过触发事件发布")
	}

	// 价格数据源网关
	gateway := provider.NewGatewayFromConfig(cfg)

	// 通知渠道：未配置时用模拟发送器
	var email notify.EmailSender = notify.NewMockEmailSender()
	if cfg.SMTP.Host != "" {
		email = notify.NewSMTPEmailSender(cfg)
	}
	var sms notify.SMSSender = notify.NewMockSMSSender()
	if cfg.Twilio.AccountSID != "" {
		sms = notify.NewTwilioSMSSender(cfg)
	}
	dispatcher := notify.NewDispatcher(email, sms, store, cfg.App.URL)

	// 创建并启动调度器
	sched := scheduler.NewScheduler(store, gateway, dispatcher, publisher,
		cfg.Alerts.CheckDelay, cfg.Alerts.FetchTimeout)
	if err := sched.Start(cfg.Alerts.CronSpec, cfg.Alerts.Timezone); err != nil {
		log.Fatalf("启动调度器失败: %v\n", err)
	}
	defer sched.Stop()

	// 创建并启动API服务器
	handlers := api.NewHandlers(store, sched, mon)
	server := api.NewServer(cfg.API.Port)
	server.SetupRoutes(handlers)
	server.Start()
}

var errNATSDisconnected = errors.New("NATS连接已断开")

// checkPeriodically 定期探测组件健康状态
func checkPeriodically(mon *monitor.Monitor, component string, probe func() error, interval time.Duration) {
	mon.CheckComponent(component, probe)
	ticker := time.NewTicker(interval)
	for range ticker.C {
		mon.CheckComponent(component, probe)
	}
}
