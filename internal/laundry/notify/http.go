// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/laundrytrack/internal/platform/constants"
	requestutil "github.com/taibuivan/laundrytrack/internal/platform/request"
	"github.com/taibuivan/laundrytrack/internal/platform/respond"
)

// Handler exposes the caller's notification feed.
type Handler struct {
	notifier *Notifier
}

// NewHandler constructs a notification [Handler].
func NewHandler(notifier *Notifier) *Handler {
	return &Handler{notifier: notifier}
}

// Routes returns the notification endpoints. Mount behind RequireAuth.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.list)
	return router
}

/*
GET /api/v1/notifications.

Request:
  - limit: int (default and maximum: the feed size)

Response:
  - 200: []Notification, newest first
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	limit := constants.NotificationFeedSize
	if parsed, err := strconv.Atoi(request.URL.Query().Get("limit")); err == nil && parsed > 0 && parsed < limit {
		limit = parsed
	}

	notifications, err := handler.notifier.Recent(request.Context(), userID, limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, notifications)
}
