// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package batch

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/laundrytrack/internal/laundry/library"
	requestutil "github.com/taibuivan/laundrytrack/internal/platform/request"
	"github.com/taibuivan/laundrytrack/internal/platform/respond"
)

// ClothSource looks up catalog entries for the from-library endpoint.
type ClothSource interface {
	Get(ctx context.Context, userID, id string) (library.ClothesItem, error)
}

// Handler implements the HTTP layer of batches.
type Handler struct {
	store   *Store
	clothes ClothSource
}

// NewHandler constructs a batch [Handler].
func NewHandler(store *Store, clothes ClothSource) *Handler {
	return &Handler{store: store, clothes: clothes}
}

// Routes returns the /batches endpoints. Mount behind RequireAuth.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listBatches)
	router.Post("/", handler.createBatch)

	router.Route("/{batchID}", func(r chi.Router) {
		r.Get("/", handler.getBatch)
		r.Delete("/", handler.deleteBatch)
		r.Post("/uncheck-reset", handler.resetUncheckCount)

		r.Post("/items", handler.addCloth)
		r.Post("/items/from-library/{clothID}", handler.addLibraryCloth)
		r.Delete("/items/{itemID}", handler.removeCloth)
		r.Post("/items/{itemID}/toggle", handler.toggleCloth)
	})

	return router
}

// # Request / Response

// CreateBatchRequest is the body of POST /batches.
type CreateBatchRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// BatchResponse is a batch with its received and pending counts. Syncing
// maps the ids of items with a toggle in flight to its phase.
type BatchResponse struct {
	LaundryBatch
	Received int              `json:"received"`
	Pending  int              `json:"pending"`
	Syncing  map[string]Phase `json:"syncing,omitempty"`
}

func (handler *Handler) batchResponse(userID string, batch LaundryBatch) BatchResponse {
	received, pending := batch.Counts()
	return BatchResponse{
		LaundryBatch: batch,
		Received:     received,
		Pending:      pending,
		Syncing:      handler.store.Syncing(userID, batch.ID),
	}
}

// # Handlers

/*
GET /api/v1/batches.

Request:
  - refresh: bool (reload from storage before answering)

Response:
  - 200: []BatchResponse, newest first
*/
func (handler *Handler) listBatches(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var batches []LaundryBatch
	if requestutil.QueryBool(request, "refresh") {
		batches, err = handler.store.Refetch(request.Context(), userID)
	} else {
		batches, err = handler.store.ListBatches(request.Context(), userID)
	}
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	response := make([]BatchResponse, len(batches))
	for i, batch := range batches {
		response[i] = handler.batchResponse(userID, batch)
	}
	respond.OK(writer, response)
}

func (handler *Handler) createBatch(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateBatchRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	batch, err := handler.store.CreateBatch(request.Context(), userID, input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, handler.batchResponse(userID, batch))
}

/*
GET /api/v1/batches/{batchID}.

Request:
  - status: string (all, pending, received)
  - tag: string (built-in value or custom tag id)

Response:
  - 200: BatchResponse; items are filtered, counts cover the whole batch
  - 404: unknown batch
*/
func (handler *Handler) getBatch(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	status, err := ParseStatusFilter(request.URL.Query().Get(FieldStatus))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	batch, err := handler.store.RequireBatch(request.Context(), userID, requestutil.ID(request, "batchID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	response := handler.batchResponse(userID, batch)
	response.Items = FilterItems(batch.Items, status, request.URL.Query().Get(FieldTag))
	respond.OK(writer, response)
}

func (handler *Handler) deleteBatch(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.store.DeleteBatch(request.Context(), userID, requestutil.ID(request, "batchID")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

/*
POST /api/v1/batches/{batchID}/items.

Request:
  - NewCloth (photo is a base64 image data URL or an http(s) URL)

Response:
  - 201: ClothItem
*/
func (handler *Handler) addCloth(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input NewCloth
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.store.AddClothToBatch(request.Context(), userID, requestutil.ID(request, "batchID"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, item)
}

func (handler *Handler) addLibraryCloth(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	cloth, err := handler.clothes.Get(request.Context(), userID, requestutil.ID(request, "clothID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.store.AddLibraryClothToBatch(request.Context(), userID, requestutil.ID(request, "batchID"), cloth)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, item)
}

func (handler *Handler) removeCloth(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.store.RemoveClothFromBatch(request.Context(), userID,
		requestutil.ID(request, "batchID"), requestutil.ID(request, "itemID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

/*
POST /api/v1/batches/{batchID}/items/{itemID}/toggle.

Response:
  - 200: ClothItem
  - 422: the item reached its uncheck limit
*/
func (handler *Handler) toggleCloth(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.store.ToggleClothReceived(request.Context(), userID,
		requestutil.ID(request, "batchID"), requestutil.ID(request, "itemID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, item)
}

func (handler *Handler) resetUncheckCount(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	batchID := requestutil.ID(request, "batchID")
	if err := handler.store.ResetUncheckCount(request.Context(), userID, batchID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	batch, err := handler.store.RequireBatch(request.Context(), userID, batchID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, handler.batchResponse(userID, batch))
}

// GetStats serves GET /api/v1/stats.
func (handler *Handler) GetStats(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	stats, err := handler.store.Stats(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stats)
}
