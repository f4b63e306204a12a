// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/laundrytrack/internal/platform/request"
	"github.com/taibuivan/laundrytrack/internal/platform/respond"
)

// Handler implements the HTTP layer of the clothes library.
type Handler struct {
	library *Library
}

// NewHandler constructs a library [Handler].
func NewHandler(library *Library) *Handler {
	return &Handler{library: library}
}

// Routes returns the /clothes endpoints. Mount behind RequireAuth.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listClothes)
	router.Post("/", handler.addCloth)
	router.Get("/{clothID}", handler.getCloth)
	router.Patch("/{clothID}", handler.updateCloth)
	router.Delete("/{clothID}", handler.deleteCloth)

	return router
}

// AddClothRequest is the body of POST /clothes.
type AddClothRequest struct {
	Photo string `json:"photo" validate:"required"`
	Label string `json:"label" validate:"max=100"`
	Tag   string `json:"tag" validate:"required,max=64"`
}

/*
GET /api/v1/clothes.

Request:
  - refresh: bool (reload from storage before answering)

Response:
  - 200: []ClothesItem, newest first
*/
func (handler *Handler) listClothes(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var items []ClothesItem
	if requestutil.QueryBool(request, "refresh") {
		items, err = handler.library.Refetch(request.Context(), userID)
	} else {
		items, err = handler.library.List(request.Context(), userID)
	}
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, items)
}

/*
POST /api/v1/clothes.

Request:
  - AddClothRequest (photo is a base64 image data URL)

Response:
  - 201: ClothesItem
  - 400: invalid photo or missing tag
  - 502: photo upload failed
*/
func (handler *Handler) addCloth(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input AddClothRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.library.AddCloth(request.Context(), userID, input.Photo, input.Label, input.Tag)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, item)
}

func (handler *Handler) getCloth(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.library.Get(request.Context(), userID, requestutil.ID(request, "clothID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, item)
}

/*
PATCH /api/v1/clothes/{clothID}.

Description: Applies photo, then label, then tag. A failing step aborts the
remaining ones; earlier steps stay applied.

Request:
  - ClothPatch

Response:
  - 200: ClothesItem
*/
func (handler *Handler) updateCloth(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch ClothPatch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.library.UpdateCloth(request.Context(), userID, requestutil.ID(request, "clothID"), patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, item)
}

func (handler *Handler) deleteCloth(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.library.DeleteCloth(request.Context(), userID, requestutil.ID(request, "clothID")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
