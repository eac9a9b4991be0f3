package drawings

import (
	"drawshare/handlers/httpx"
	"drawshare/middleware"
	"drawshare/services"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func input(payload *httpx.Payload) services.DrawingInput {
	return services.DrawingInput{
		Title:       payload.Get("title"),
		Description: payload.Get("description"),
		ImgJSON:     payload.Get("imgJSON"),
		Image:       payload.Image,
	}
}

func HandleCreate(drawings *services.Drawings, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := httpx.ReadPayload(w, r, maxBytes)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}

		drawing, err := drawings.Create(r.Context(), middleware.Caller(r.Context()), input(payload))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, r, http.StatusCreated, map[string]interface{}{"drawing": drawing})
	}
}

// HandleList lists drawings, filtered by the optional search query.
func HandleList(drawings *services.Drawings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := drawings.List(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, r, http.StatusOK, map[string]interface{}{"drawings": list})
	}
}

func HandleGet(drawings *services.Drawings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drawing, err := drawings.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, r, http.StatusOK, map[string]interface{}{"drawing": drawing})
	}
}

func HandleListByUser(drawings *services.Drawings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := drawings.ListByArtist(r.Context(), chi.URLParam(r, "uid"))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, r, http.StatusOK, map[string]interface{}{"drawings": list})
	}
}

func HandleUpdate(drawings *services.Drawings, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := httpx.ReadPayload(w, r, maxBytes)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}

		drawing, err := drawings.Update(r.Context(), middleware.Caller(r.Context()), chi.URLParam(r, "id"), input(payload))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, r, http.StatusOK, map[string]interface{}{"drawing": drawing})
	}
}

func HandleDelete(drawings *services.Drawings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := drawings.Delete(r.Context(), middleware.Caller(r.Context()), chi.URLParam(r, "id")); err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.Message(w, r, http.StatusOK, "Deleted drawing.")
	}
}

// HandleLike adds a like. It does not require a session.
func HandleLike(drawings *services.Drawings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drawing, err := drawings.Like(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, r, http.StatusOK, map[string]interface{}{"drawing": drawing})
	}
}
