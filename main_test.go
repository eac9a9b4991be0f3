package main

import (
	"bytes"
	"context"
	"drawshare/auth"
	"drawshare/core"
	"drawshare/handlers/api/users"
	"drawshare/media"
	"drawshare/services"
	"drawshare/stores/filesystem"
	"drawshare/stores/memory"
	redisstore "drawshare/stores/redis"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type client struct {
	t      *testing.T
	server http.Handler
	cookie *http.Cookie
}

func newTestServer(t *testing.T) (*client, *memory.BlobStore) {
	t.Helper()
	store := memory.NewDocumentStore()
	blobs := memory.NewBlobStore("http://localhost:5000")
	r := setupRouter(deps{
		store:    store,
		services: services.New(store, media.NewCoordinator(blobs)),
		session: users.Session{
			Issuer: auth.NewIssuer([]byte("test-secret"), time.Hour, memory.NewDenylist()),
			Secure: false,
		},
		uploads:  uploadsHandler(blobs),
		maxBytes: 1 << 20,
		origins:  []string{"http://*"},
	})
	return &client{t: t, server: r}, blobs
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.server.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == auth.CookieName {
			if ck.MaxAge < 0 {
				c.cookie = nil
			} else {
				c.cookie = ck
			}
		}
	}
	return rec
}

func (c *client) json(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, key string, v interface{}) {
	t.Helper()
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NoError(t, json.Unmarshal(body[key], v))
}

func TestRouter_Health(t *testing.T) {
	c, _ := newTestServer(t)
	rec := c.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_UnknownRoute(t *testing.T) {
	c, _ := newTestServer(t)
	rec := c.do(httptest.NewRequest(http.MethodGet, "/api/nothing-here", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Could not find this route."}`, rec.Body.String())
}

func TestRouter_ProtectedRoutesNeedSession(t *testing.T) {
	c, _ := newTestServer(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/drawings"},
		{http.MethodPatch, "/api/drawings/x"},
		{http.MethodDelete, "/api/drawings/x"},
		{http.MethodPost, "/api/comments"},
		{http.MethodDelete, "/api/comments/x"},
		{http.MethodPatch, "/api/users/follow"},
		{http.MethodPatch, "/api/users/user/update"},
	} {
		rec := c.json(tc.method, tc.path, `{}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
		assert.JSONEq(t, `{"message":"Not authorized, please log in."}`, rec.Body.String())
	}
}

func TestRouter_FullFlow(t *testing.T) {
	alice, blobs := newTestServer(t)
	bob := &client{t: t, server: alice.server}

	rec := alice.json(http.MethodPost, "/api/users/signup", `{"username":"alice","email":"alice@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var a core.User
	decodeInto(t, rec, "user", &a)
	require.NotNil(t, alice.cookie)

	rec = bob.json(http.MethodPost, "/api/users/signup", `{"username":"bob","email":"bob@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var b core.User
	decodeInto(t, rec, "user", &b)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Three little pigs"))
	require.NoError(t, mw.WriteField("description", "pink"))
	fw, err := mw.CreateFormFile("image", "pigs.png")
	require.NoError(t, err)
	_, err = fw.Write(pngData)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/drawings", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec = alice.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var d core.Drawing
	decodeInto(t, rec, "drawing", &d)

	// The image is served back from the uploads route.
	rec = alice.do(httptest.NewRequest(http.MethodGet, strings.TrimPrefix(d.ImgURL, "http://localhost:5000"), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pngData, rec.Body.Bytes())

	rec = bob.json(http.MethodPost, "/api/comments", `{"body":"oink","drawing":"`+d.ID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = bob.json(http.MethodPatch, "/api/users/follow", `{"followId":"`+a.ID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = bob.do(httptest.NewRequest(http.MethodPatch, "/api/drawings/"+d.ID+"/like", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = bob.do(httptest.NewRequest(http.MethodDelete, "/api/drawings/"+d.ID, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "only the artist may delete")

	rec = alice.do(httptest.NewRequest(http.MethodGet, "/api/drawings/"+d.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var detail core.DrawingDetail
	decodeInto(t, rec, "drawing", &detail)
	assert.Equal(t, 1, detail.LikeCount)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "bob", detail.Comments[0].Author.Username)

	rec = alice.do(httptest.NewRequest(http.MethodGet, "/api/users/"+a.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var refreshed core.User
	decodeInto(t, rec, "user", &refreshed)
	assert.Equal(t, []string{b.ID}, refreshed.Followers)
	assert.Equal(t, []string{d.ID}, refreshed.Drawings)

	rec = alice.do(httptest.NewRequest(http.MethodDelete, "/api/drawings/"+d.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, blobs.Len())

	rec = alice.do(httptest.NewRequest(http.MethodGet, "/api/comments/drawing/"+d.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_LogoutRevokesSession(t *testing.T) {
	c, _ := newTestServer(t)
	rec := c.json(http.MethodPost, "/api/users/signup", `{"username":"a","email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	stolen := c.cookie

	rec = c.do(httptest.NewRequest(http.MethodPost, "/api/users/logout", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, c.cookie)

	replay := &client{t: t, server: c.server, cookie: stolen}
	rec = replay.json(http.MethodPatch, "/api/users/user/update", `{"username":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Not authorized, invalid token."}`, rec.Body.String())
}

func TestUploads_FilesystemServesFilesWithoutListing(t *testing.T) {
	blobs, err := filesystem.NewBlobStore(t.TempDir(), "http://localhost:5000")
	require.NoError(t, err)
	require.NoError(t, blobs.Put(context.Background(), "abc123", pngData, "image/png"))

	store := memory.NewDocumentStore()
	c := &client{t: t, server: setupRouter(deps{
		store:    store,
		services: services.New(store, media.NewCoordinator(blobs)),
		session: users.Session{
			Issuer: auth.NewIssuer([]byte("test-secret"), time.Hour, memory.NewDenylist()),
		},
		uploads:  uploadsHandler(blobs),
		maxBytes: 1 << 20,
		origins:  []string{"http://*"},
	})}

	rec := c.do(httptest.NewRequest(http.MethodGet, "/uploads/abc123", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pngData, rec.Body.Bytes())

	rec = c.do(httptest.NewRequest(http.MethodGet, "/uploads/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "abc123")

	rec = c.do(httptest.NewRequest(http.MethodGet, "/uploads/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadsHandler_ObjectStorageHasNone(t *testing.T) {
	assert.Nil(t, uploadsHandler(nil))
}

func TestCloseDenylist(t *testing.T) {
	s := miniredis.RunT(t)
	denylist, err := redisstore.NewDenylist("redis://" + s.Addr())
	require.NoError(t, err)

	closeDenylist(denylist)
	_, err = denylist.IsRevoked(context.Background(), "jti")
	assert.Error(t, err, "client is closed")

	closeDenylist(memory.NewDenylist())
}
