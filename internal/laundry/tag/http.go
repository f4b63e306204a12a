// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/laundrytrack/internal/platform/request"
	"github.com/taibuivan/laundrytrack/internal/platform/respond"
)

// Handler implements the HTTP layer of the tag registry.
type Handler struct {
	registry *Registry
}

// NewHandler constructs a tag [Handler].
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// Routes returns the tag endpoints. Mount behind RequireAuth.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listOptions)
	router.Post("/", handler.createTag)
	router.Get("/display", handler.display)
	router.Delete("/{tagID}", handler.deleteTag)

	return router
}

// CreateTagRequest is the body of POST /tags.
type CreateTagRequest struct {
	Name  string `json:"name" validate:"required,max=120"`
	Emoji string `json:"emoji" validate:"max=32"`
}

/*
GET /api/v1/tags.

Response:
  - 200: []TagOption (built-ins first, then custom tags)
*/
func (handler *Handler) listOptions(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if requestutil.QueryBool(request, "refresh") {
		if _, err := handler.registry.Refetch(request.Context(), userID); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	options, err := handler.registry.GetAllTagOptions(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, options)
}

/*
POST /api/v1/tags.

Request:
  - CreateTagRequest

Response:
  - 201: CustomTag
  - 409: a tag with the same name exists
*/
func (handler *Handler) createTag(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateTagRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	customTag, err := handler.registry.AddCustomTag(request.Context(), userID, input.Name, input.Emoji)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, customTag)
}

/*
GET /api/v1/tags/display?value=.

Response:
  - 200: TagDisplay (always resolves)
*/
func (handler *Handler) display(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.registry.GetTagDisplay(request.Context(), userID, request.URL.Query().Get(FieldValue)))
}

/*
DELETE /api/v1/tags/{tagID}.

Response:
  - 204: deleted
  - 404: no such custom tag
*/
func (handler *Handler) deleteTag(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.registry.DeleteCustomTag(request.Context(), userID, requestutil.ID(request, "tagID")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
