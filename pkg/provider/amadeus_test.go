package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAmadeusTestServer(t *testing.T, tokenCalls *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenCalls, 1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "test_key", r.PostForm.Get("client_id"))
		fmt.Fprint(w, `{"access_token":"token_abc","expires_in":1799}`)
	})
	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token_abc", r.Header.Get("Authorization"))
		assert.Equal(t, "JFK", r.URL.Query().Get("originLocationCode"))
		assert.Equal(t, "LAX", r.URL.Query().Get("destinationLocationCode"))
		assert.Equal(t, "1", r.URL.Query().Get("adults"))
		fmt.Fprint(w, `{"data":[
			{"id":"offer_1","price":{"grandTotal":"245.80"}},
			{"id":"offer_2","price":{"grandTotal":"312.40"}},
			{"id":"offer_3","price":{"grandTotal":"not-a-number"}}
		]}`)
	})
	return httptest.NewServer(mux)
}

func TestAmadeusAdapterSearch(t *testing.T) {
	var tokenCalls int32
	server := newAmadeusTestServer(t, &tokenCalls)
	defer server.Close()

	adapter := NewAmadeusAdapter("test_key", "test_secret", server.URL, time.Second)

	offers, err := adapter.Search(context.Background(), testFlightAlert())
	require.NoError(t, err)
	// 无法解析价格的报价被跳过
	require.Len(t, offers, 2)
	assert.Equal(t, 245.80, offers[0].Price)
	assert.Equal(t, "offer_1", offers[0].Description)

	// 第二次查询复用缓存的令牌
	_, err = adapter.Search(context.Background(), testFlightAlert())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))
}

func TestAmadeusAdapterAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	adapter := NewAmadeusAdapter("bad_key", "bad_secret", server.URL, time.Second)

	_, err := adapter.Search(context.Background(), testFlightAlert())
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "amadeus", ferr.Provider)
	assert.Contains(t, ferr.Reason, "认证失败")
}

func TestAmadeusAdapterMissingCriteria(t *testing.T) {
	adapter := NewAmadeusAdapter("key", "secret", "http://localhost", time.Second)

	alert := testFlightAlert()
	alert.Flight = nil
	_, err := adapter.Search(context.Background(), alert)
	var ferr *FetchError
	assert.ErrorAs(t, err, &ferr)
}
