package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// Server API服务器
type Server struct {
	router *gin.Engine
	srv    *http.Server
}

// NewServer 创建新的API服务器
func NewServer(port string) *Server {
	router := gin.New()

	// 设置中间件
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	return &Server{
		router: router,
		srv:    srv,
	}
}

// SetupRoutes 设置路由
func (s *Server) SetupRoutes(handlers *Handlers) {
	// 健康检查
	s.router.GET("/health", handlers.HealthCheck)
	s.router.GET("/ready", handlers.ReadinessCheck)

	// 价格提醒路由组
	alerts := s.router.Group("/api/price-alerts")
	alerts.Use(logPriceAlertRequest())
	{
		alerts.GET("/my-alerts", handlers.GetMyAlerts)
		alerts.POST("/create", handlers.CreatePriceAlert)
		alerts.PATCH("/:id/toggle", handlers.ToggleAlert)
		alerts.DELETE("/:id", handlers.DeleteAlert)

		// 管理用：立即检查全部激活提醒
		alerts.POST("/check-prices", handlers.CheckAllActivePrices)
	}
}

// logPriceAlertRequest 价格提醒请求日志中间件
func logPriceAlertRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		log.Printf("[%s] Price Alert API: %s %s", time.Now().Format(time.RFC3339), c.Request.Method, c.Request.URL.Path)
		c.Next()
	}
}

// Start 启动服务器
func (s *Server) Start() {
	// 在goroutine中启动服务器
	go func() {
		log.Printf("API服务器启动在 %s\n", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("启动服务器失败: %v\n", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("正在关闭服务器...")

	// 设置超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 优雅关闭
	if err := s.srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务器关闭失败: %v\n", err)
	}

	log.Println("服务器已关闭")
}

// Router 返回底层路由，测试用
func (s *Server) Router() *gin.Engine {
	return s.router
}
