// cmd/monitor 消费触发事件并监控各服务健康状态
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TripRadar/pkg/config"
	"TripRadar/pkg/messaging"
	"TripRadar/pkg/model"
	"TripRadar/pkg/monitor"
)

func main() {
	log.Println("启动监控服务...")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v\n", err)
	}

	if cfg.NATS.URL == "" {
		log.Fatalln("监控服务需要配置NATS")
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("连接NATS失败: %v\n", err)
	}
	defer natsClient.Close()

	// 消费触发事件
	err = natsClient.SubscribeAlertTriggered("monitor-triggered", func(event model.AlertTriggeredEvent) {
		log.Printf("收到触发事件: 提醒=%s 用户=%s 类型=%s 行程=%s 新价=$%.2f 目标价=$%.2f",
			event.AlertID, event.UserID, event.Kind, event.Description,
			event.NewPrice, event.TargetPrice)
	})
	if err != nil {
		log.Fatalf("订阅触发事件失败: %v\n", err)
	}

	// 定期检查API服务健康状态
	mon := monitor.NewMonitor(func(component, status, message string) {
		log.Printf("组件 %s 状态变为 %s: %s", component, status, message)
	})
	mon.RegisterComponent("api")
	mon.StartChecking("api", "http://localhost:"+cfg.API.Port+"/health", 5*time.Minute)

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("正在关闭监控服务...")
}
