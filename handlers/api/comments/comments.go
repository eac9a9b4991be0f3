package comments

import (
	"drawshare/handlers/httpx"
	"drawshare/middleware"
	"drawshare/services"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func HandleCreate(comments *services.Comments, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := httpx.ReadPayload(w, r, maxBytes)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}

		comment, err := comments.Create(r.Context(), middleware.Caller(r.Context()), payload.Get("body"), payload.Get("drawing"))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, r, http.StatusCreated, map[string]interface{}{"comment": comment})
	}
}

func HandleListByDrawing(comments *services.Comments) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := comments.ListByDrawing(r.Context(), chi.URLParam(r, "drawingId"))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, r, http.StatusOK, map[string]interface{}{"comments": list})
	}
}

func HandleDelete(comments *services.Comments) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := comments.Delete(r.Context(), middleware.Caller(r.Context()), chi.URLParam(r, "id")); err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.Message(w, r, http.StatusOK, "Deleted comment.")
	}
}
