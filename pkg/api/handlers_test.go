package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TripRadar/pkg/model"
	"TripRadar/pkg/notify"
	"TripRadar/pkg/repository"
	"TripRadar/pkg/scheduler"
)

// stubFetcher 固定返回一个低于目标价的报价
type stubFetcher struct {
	price float64
}

func (s *stubFetcher) FetchLowestPrice(ctx context.Context, alert *model.PriceAlert) (model.PriceQuote, error) {
	return model.PriceQuote{Price: s.price, OfferCount: 1, FetchedAt: time.Now()}, nil
}

type stubNotifier struct{}

func (stubNotifier) Send(alert *model.PriceAlert, oldPrice *float64, newPrice float64, channels []notify.Channel) notify.DispatchReport {
	return notify.DispatchReport{AlertID: alert.ID}
}

func newTestServer(t *testing.T, repo *repository.Repository) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sched := scheduler.NewScheduler(repo, &stubFetcher{price: 180}, stubNotifier{}, nil, time.Millisecond, time.Second)
	server := NewServer("0")
	server.SetupRoutes(NewHandlers(repo, sched, nil))
	return server
}

func doRequest(server *Server, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)
	return w
}

func createBody() map[string]any {
	return map[string]any{
		"type": "flight",
		"route": map[string]any{
			"from":       "JFK",
			"to":         "LAX",
			"departDate": "2024-03-15",
		},
		"targetPrice":            250,
		"email":                  "user@example.com",
		"notificationPreference": "email",
	}
}

func TestCreatePriceAlert(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := repository.NewRepository()
		server := newTestServer(t, repo)

		w := doRequest(server, http.MethodPost, "/api/price-alerts/create", createBody(), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool `json:"success"`
			Data    struct {
				AlertID string           `json:"alertId"`
				Alert   model.PriceAlert `json:"alert"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Data.AlertID)
		assert.Equal(t, "user_001", resp.Data.Alert.UserID)
		assert.True(t, resp.Data.Alert.Active)
	})

	t.Run("UserIDFromHeader", func(t *testing.T) {
		repo := repository.NewRepository()
		server := newTestServer(t, repo)

		w := doRequest(server, http.MethodPost, "/api/price-alerts/create", createBody(),
			map[string]string{"X-User-ID": "user_042"})
		require.Equal(t, http.StatusOK, w.Code)

		alerts, err := repo.ListByUser("user_042")
		require.NoError(t, err)
		assert.Len(t, alerts, 1)
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		repo := repository.NewRepository()
		server := newTestServer(t, repo)

		body := createBody()
		body["targetPrice"] = -10
		w := doRequest(server, http.MethodPost, "/api/price-alerts/create", body, nil)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.NotEmpty(t, resp.Message)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		repo := repository.NewRepository()
		server := newTestServer(t, repo)

		req := httptest.NewRequest(http.MethodPost, "/api/price-alerts/create", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		server.Router().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetMyAlerts(t *testing.T) {
	repo := repository.NewRepository()
	server := newTestServer(t, repo)

	require.Equal(t, http.StatusOK,
		doRequest(server, http.MethodPost, "/api/price-alerts/create", createBody(), nil).Code)
	require.Equal(t, http.StatusOK,
		doRequest(server, http.MethodPost, "/api/price-alerts/create", createBody(),
			map[string]string{"X-User-ID": "user_042"}).Code)

	w := doRequest(server, http.MethodGet, "/api/price-alerts/my-alerts", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool               `json:"success"`
		Data    []model.PriceAlert `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	// 只返回当前用户的提醒
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "user_001", resp.Data[0].UserID)
}

func TestToggleAlert(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := repository.NewRepository()
		server := newTestServer(t, repo)

		created := doRequest(server, http.MethodPost, "/api/price-alerts/create", createBody(), nil)
		require.Equal(t, http.StatusOK, created.Code)
		var createResp struct {
			Data struct {
				AlertID string `json:"alertId"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(created.Body.Bytes(), &createResp))

		w := doRequest(server, http.MethodPatch, "/api/price-alerts/"+createResp.Data.AlertID+"/toggle",
			map[string]any{"active": false}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool             `json:"success"`
			Data    model.PriceAlert `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Data.Active)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := repository.NewRepository()
		server := newTestServer(t, repo)

		w := doRequest(server, http.MethodPatch, "/api/price-alerts/missing/toggle",
			map[string]any{"active": false}, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("MissingActiveField", func(t *testing.T) {
		repo := repository.NewRepository()
		server := newTestServer(t, repo)

		w := doRequest(server, http.MethodPatch, "/api/price-alerts/missing/toggle",
			map[string]any{}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteAlert(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := repository.NewRepository()
		server := newTestServer(t, repo)

		created := doRequest(server, http.MethodPost, "/api/price-alerts/create", createBody(), nil)
		var createResp struct {
			Data struct {
				AlertID string `json:"alertId"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(created.Body.Bytes(), &createResp))

		w := doRequest(server, http.MethodDelete, "/api/price-alerts/"+createResp.Data.AlertID, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		// 再次删除返回404
		w = doRequest(server, http.MethodDelete, "/api/price-alerts/"+createResp.Data.AlertID, nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("OtherUsersAlertIsInvisible", func(t *testing.T) {
		repo := repository.NewRepository()
		server := newTestServer(t, repo)

		created := doRequest(server, http.MethodPost, "/api/price-alerts/create", createBody(), nil)
		var createResp struct {
			Data struct {
				AlertID string `json:"alertId"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(created.Body.Bytes(), &createResp))

		w := doRequest(server, http.MethodDelete, "/api/price-alerts/"+createResp.Data.AlertID, nil,
			map[string]string{"X-User-ID": "user_042"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCheckAllActivePrices(t *testing.T) {
	repo := repository.NewRepository()
	server := newTestServer(t, repo)

	require.Equal(t, http.StatusOK,
		doRequest(server, http.MethodPost, "/api/price-alerts/create", createBody(), nil).Code)

	w := doRequest(server, http.MethodPost, "/api/price-alerts/check-prices", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool              `json:"success"`
		Data    []model.RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.True(t, resp.Data[0].Triggered)
	assert.Equal(t, 180.0, resp.Data[0].CurrentPrice)
}

func TestHealthCheck(t *testing.T) {
	repo := repository.NewRepository()
	server := newTestServer(t, repo)

	w := doRequest(server, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
