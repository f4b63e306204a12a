// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/laundrytrack/internal/api"
	"github.com/taibuivan/laundrytrack/internal/laundry/batch"
	"github.com/taibuivan/laundrytrack/internal/laundry/library"
	"github.com/taibuivan/laundrytrack/internal/laundry/notify"
	"github.com/taibuivan/laundrytrack/internal/laundry/tag"
	"github.com/taibuivan/laundrytrack/internal/platform/config"
	"github.com/taibuivan/laundrytrack/internal/platform/constants"
	"github.com/taibuivan/laundrytrack/internal/platform/kv"
	"github.com/taibuivan/laundrytrack/internal/platform/objectstore"
	"github.com/taibuivan/laundrytrack/internal/platform/sec"
	"github.com/taibuivan/laundrytrack/internal/users/auth"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// newLocalServer wires the whole API over in-memory storage.
func newLocalServer(t *testing.T) http.Handler {
	t.Helper()

	store, err := kv.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	photos, err := objectstore.NewFileStore(t.TempDir(), "http://localhost/photos")
	require.NoError(t, err)

	tokens, err := sec.NewEphemeralTokenService(constants.AuthIssuer)
	require.NoError(t, err)

	notifier := notify.NewNotifier(notify.NewMemoryFeed(constants.NotificationFeedSize))
	clothes := library.NewLibrary(library.NewLocalRepository(store), photos, notifier)
	batches := batch.NewStore(batch.NewLocalRepository(store), notifier, batch.DefaultOptions())
	clothes.AddPhotoReferences(batches)

	liveness, readiness := api.NewHealthHandlers([]api.HealthCheck{
		{Name: "badger", Check: func(context.Context) error { return store.Ping() }},
	}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{ServerPort: "0", Environment: "development", StorageMode: config.StorageLocal}
	server := api.NewServer(ctx, cfg, discardLogger(), tokens, api.Handlers{
		Liveness:      liveness,
		Readiness:     readiness,
		Auth:          auth.NewHandler(auth.NewService(auth.NewLocalUserRepository(store), auth.NewLocalSessionRepository(store), tokens), false),
		Batches:       batch.NewHandler(batches, clothes),
		Tags:          tag.NewHandler(tag.NewRegistry(tag.NewLocalRepository(store), notifier)),
		Clothes:       library.NewHandler(clothes),
		Notifications: notify.NewHandler(notifier),
		Photos:        photos.Handler(),
	})
	return server.Handler()
}

func call(t *testing.T, handler http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func data(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestServer_Health(t *testing.T) {
	handler := newLocalServer(t)

	assert.Equal(t, http.StatusOK, call(t, handler, http.MethodGet, "/health", "", "").Code)

	recorder := call(t, handler, http.MethodGet, "/ready", "", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ready", data(t, recorder)["status"])
}

func TestReadiness_Degraded(t *testing.T) {
	_, readiness := api.NewHealthHandlers([]api.HealthCheck{
		{Name: "postgres", Check: func(context.Context) error { return nil }},
		{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
	}, discardLogger())

	recorder := httptest.NewRecorder()
	readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Equal(t, "degraded", data(t, recorder)["status"])
}

func TestServer_RequiresAuth(t *testing.T) {
	handler := newLocalServer(t)

	for _, path := range []string{"/api/v1/batches", "/api/v1/stats", "/api/v1/tags", "/api/v1/clothes", "/api/v1/notifications"} {
		assert.Equal(t, http.StatusUnauthorized, call(t, handler, http.MethodGet, path, "", "").Code, path)
	}
}

func TestServer_LaundryFlow(t *testing.T) {
	handler := newLocalServer(t)
	credentials := `{"email":"ana@example.com","password":"correct-horse"}`

	require.Equal(t, http.StatusCreated, call(t, handler, http.MethodPost, "/api/v1/auth/register", "", credentials).Code)

	recorder := call(t, handler, http.MethodPost, "/api/v1/auth/login", "", credentials)
	require.Equal(t, http.StatusOK, recorder.Code)
	token, _ := data(t, recorder)["access_token"].(string)
	require.NotEmpty(t, token)

	recorder = call(t, handler, http.MethodGet, "/api/v1/auth/me", token, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ana@example.com", data(t, recorder)["email"])

	recorder = call(t, handler, http.MethodPost, "/api/v1/batches", token, `{"name":"Weekend"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)
	batchID, _ := data(t, recorder)["id"].(string)

	recorder = call(t, handler, http.MethodPost, "/api/v1/batches/"+batchID+"/items", token,
		`{"photo":"https://cdn.test/shirt.jpg","tag":"shirt"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)
	itemID, _ := data(t, recorder)["id"].(string)

	recorder = call(t, handler, http.MethodPost, "/api/v1/batches/"+batchID+"/items/"+itemID+"/toggle", token, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, data(t, recorder)["is_received"])

	recorder = call(t, handler, http.MethodGet, "/api/v1/stats", token, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	stats := data(t, recorder)
	assert.EqualValues(t, 1, stats["total_items"])
	assert.EqualValues(t, 1, stats["received"])

	recorder = call(t, handler, http.MethodGet, "/api/v1/tags/display?value=shirt", token, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Shirt", data(t, recorder)["label"])
}
