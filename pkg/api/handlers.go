package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"TripRadar/pkg/model"
	"TripRadar/pkg/monitor"
	"TripRadar/pkg/repository"
	"TripRadar/pkg/scheduler"
)

// Handlers API处理程序
type Handlers struct {
	store     repository.Store
	scheduler *scheduler.Scheduler
	monitor   *monitor.Monitor
}

// NewHandlers 创建新的API处理程序，monitor 可为空
func NewHandlers(store repository.Store, sched *scheduler.Scheduler, mon *monitor.Monitor) *Handlers {
	return &Handlers{
		store:     store,
		scheduler: sched,
		monitor:   mon,
	}
}

// currentUserID 获取当前用户标识
// 认证在网关层完成，这里只读透传的请求头，缺省为演示用户
func currentUserID(c *gin.Context) string {
	if userID := c.GetHeader("X-User-ID"); userID != "" {
		return userID
	}
	return "user_001"
}

// HealthCheck 健康检查处理程序
func (h *Handlers) HealthCheck(c *gin.Context) {
	if h.monitor != nil {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"components": h.monitor.GetAllStatus(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ReadinessCheck 就绪检查处理程序
func (h *Handlers) ReadinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// GetMyAlerts 获取当前用户的全部提醒
func (h *Handlers) GetMyAlerts(c *gin.Context) {
	alerts, err := h.store.ListByUser(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "获取价格提醒失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    alerts,
	})
}

// CreateAlertRequest 创建提醒请求
type CreateAlertRequest struct {
	Type                   model.AlertKind       `json:"type"`
	Route                  *model.FlightCriteria `json:"route"`
	Hotel                  *model.HotelCriteria  `json:"hotel"`
	Car                    *model.CarCriteria    `json:"car"`
	TargetPrice            float64               `json:"targetPrice"`
	CurrentPrice           *float64              `json:"currentPrice"`
	Email                  string                `json:"email"`
	Phone                  string                `json:"phone"`
	NotificationPreference model.NotifyVia       `json:"notificationPreference"`
	Active                 *bool                 `json:"active"`
}

// CreatePriceAlert 创建价格提醒
func (h *Handlers) CreatePriceAlert(c *gin.Context) {
	var req CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "无效的请求参数: " + err.Error(),
		})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	alert := &model.PriceAlert{
		UserID:       currentUserID(c),
		Kind:         req.Type,
		Flight:       req.Route,
		Hotel:        req.Hotel,
		Car:          req.Car,
		TargetPrice:  req.TargetPrice,
		CurrentPrice: req.CurrentPrice,
		Email:        req.Email,
		Phone:        req.Phone,
		NotifyVia:    req.NotificationPreference,
		Active:       active,
	}

	if err := h.store.Create(alert); err != nil {
		var validationErr *model.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": validationErr.Message,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "创建价格提醒失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"alertId": alert.ID,
			"alert":   alert,
		},
	})
}

// ToggleAlertRequest 切换激活状态请求
type ToggleAlertRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// ToggleAlert 切换提醒激活状态
func (h *Handlers) ToggleAlert(c *gin.Context) {
	var req ToggleAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "无效的请求参数: " + err.Error(),
		})
		return
	}

	alert, err := h.store.SetActive(c.Param("id"), currentUserID(c), *req.Active)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    alert,
	})
}

// DeleteAlert 删除价格提醒
func (h *Handlers) DeleteAlert(c *gin.Context) {
	alert, err := h.store.Delete(c.Param("id"), currentUserID(c))
	if err != nil {
		h.respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    alert,
	})
}

// CheckAllActivePrices 立即执行一轮价格检查（管理用）
func (h *Handlers) CheckAllActivePrices(c *gin.Context) {
	results, err := h.scheduler.RunNow(c.Request.Context())
	if err != nil {
		if errors.Is(err, scheduler.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "价格检查已在进行中",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "价格检查失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    results,
	})
}

// respondStoreError 把存储层错误转换为HTTP响应
func (h *Handlers) respondStoreError(c *gin.Context, err error) {
	if errors.Is(err, model.ErrAlertNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "价格提醒不存在",
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"message": "操作失败",
	})
}
