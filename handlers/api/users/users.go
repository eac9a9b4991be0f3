package users

import (
	"drawshare/auth"
	"drawshare/core"
	"drawshare/handlers/httpx"
	"drawshare/middleware"
	"drawshare/services"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Session issues the cookie that carries the session token.
type Session struct {
	Issuer *auth.Issuer
	// Secure sets the Secure cookie attribute.
	Secure bool
}

func (s Session) start(w http.ResponseWriter, user *core.User) error {
	token, _, err := s.Issuer.Issue(user.ID)
	if err != nil {
		return core.Upstream("Could not log you in, please try again later.", err)
	}
	auth.SetSessionCookie(w, token, s.Issuer.TTL(), s.Secure)
	return nil
}

func HandleSignup(users *services.Users, session Session, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := httpx.ReadPayload(w, r, maxBytes)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}

		user, err := users.Signup(r.Context(), services.SignupInput{
			Username: payload.Get("username"),
			Email:    payload.Get("email"),
			Password: payload.Get("password"),
			Image:    payload.Image,
		})
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		if err := session.start(w, user); err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, r, http.StatusCreated, map[string]interface{}{"user": user})
	}
}

func HandleLogin(users *services.Users, session Session, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := httpx.ReadPayload(w, r, maxBytes)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}

		user, err := users.Login(r.Context(), payload.Get("email"), payload.Get("password"))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		if err := session.start(w, user); err != nil {
			httpx.Error(w, r, err)
			return
		}
		logrus.WithField("user_id", user.ID).Info("User logged in")
		httpx.JSON(w, r, http.StatusOK, map[string]interface{}{"user": user})
	}
}

// HandleLogout clears the cookie and revokes the token it carried, if any.
func HandleLogout(session Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token, ok := auth.SessionToken(r); ok {
			if err := session.Issuer.Revoke(r.Context(), token); err != nil {
				httpx.Error(w, r, err)
				return
			}
		}
		auth.ClearSessionCookie(w, session.Secure)
		httpx.Message(w, r, http.StatusOK, "Logged out successfully.")
	}
}

func HandleList(users *services.Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := users.List(r.Context())
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, r, http.StatusOK, map[string]interface{}{"users": list})
	}
}

func HandleGet(users *services.Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := users.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, r, http.StatusOK, map[string]interface{}{"user": user})
	}
}

func HandleUpdate(users *services.Users, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := httpx.ReadPayload(w, r, maxBytes)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}

		user, err := users.Update(r.Context(), middleware.Caller(r.Context()), services.UpdateInput{
			Username: payload.Optional("username"),
			Email:    payload.Optional("email"),
			Password: payload.Optional("password"),
			Image:    payload.Image,
		})
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, r, http.StatusOK, map[string]interface{}{"user": user})
	}
}

func HandleFollow(follows *services.Follows, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := httpx.ReadPayload(w, r, maxBytes)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}

		user, err := follows.Follow(r.Context(), middleware.Caller(r.Context()), payload.Get("followId"))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, r, http.StatusOK, map[string]interface{}{"user": user})
	}
}

func HandleUnfollow(follows *services.Follows, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := httpx.ReadPayload(w, r, maxBytes)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}

		user, err := follows.Unfollow(r.Context(), middleware.Caller(r.Context()), payload.Get("followId"))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, r, http.StatusOK, map[string]interface{}{"user": user})
	}
}
