package middleware

import (
	"context"
	"drawshare/auth"
	"drawshare/core"
	"drawshare/stores/memory"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*auth.Issuer, core.Store, http.Handler) {
	t.Helper()
	store := memory.NewDocumentStore()
	issuer := auth.NewIssuer([]byte("test-secret"), time.Hour, memory.NewDenylist())
	handler := AuthJWT(issuer, store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := Caller(r.Context())
		w.Write([]byte(caller.ID))
	}))
	return issuer, store, handler
}

func request(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/drawings", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	return req
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["message"]
}

func TestAuthJWT_ResolvesCaller(t *testing.T) {
	issuer, store, handler := setup(t)
	user := &core.User{Username: "lulu", Email: "lulu@x.com", Password: "hash"}
	require.NoError(t, store.InsertUser(context.Background(), user))
	token, _, err := issuer.Issue(user.ID)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request(token))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID, rec.Body.String())
}

func TestAuthJWT_MissingCookie(t *testing.T) {
	_, _, handler := setup(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request(""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, please log in.", message(t, rec))
}

func TestAuthJWT_InvalidToken(t *testing.T) {
	_, _, handler := setup(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request("garbage"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, invalid token.", message(t, rec))
}

func TestAuthJWT_RevokedToken(t *testing.T) {
	issuer, store, handler := setup(t)
	user := &core.User{Username: "lulu", Email: "lulu@x.com", Password: "hash"}
	require.NoError(t, store.InsertUser(context.Background(), user))
	token, _, err := issuer.Issue(user.ID)
	require.NoError(t, err)
	require.NoError(t, issuer.Revoke(context.Background(), token))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request(token))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_UnknownUser(t *testing.T) {
	issuer, _, handler := setup(t)
	token, _, err := issuer.Issue("deleted-user")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request(token))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, invalid token.", message(t, rec))
}

func TestCaller_Empty(t *testing.T) {
	assert.Nil(t, Caller(context.Background()))
	u := &core.User{ID: "u1"}
	assert.Same(t, u, Caller(WithCaller(context.Background(), u)))
}
