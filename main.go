package main

import (
	"context"
	"crypto/rand"
	"drawshare/auth"
	"drawshare/config"
	"drawshare/core"
	"drawshare/handlers/api/comments"
	"drawshare/handlers/api/drawings"
	"drawshare/handlers/api/users"
	"drawshare/handlers/httpx"
	authMiddleware "drawshare/middleware"
	"drawshare/media"
	"drawshare/services"
	"drawshare/stores"
	"drawshare/stores/memory"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type deps struct {
	store    core.Store
	services *services.Services
	session  users.Session
	uploads  http.Handler
	maxBytes int64
	origins  []string
}

func setupRouter(d deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Origin", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(httpx.NotFound)
	r.MethodNotAllowed(httpx.MethodNotAllowed)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.uploads != nil {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", d.uploads))
	}

	protect := authMiddleware.AuthJWT(d.session.Issuer, d.store)
	svc := d.services

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/signup", users.HandleSignup(svc.Users, d.session, d.maxBytes))
			r.Post("/login", users.HandleLogin(svc.Users, d.session, d.maxBytes))
			r.Post("/logout", users.HandleLogout(d.session))
			r.Get("/", users.HandleList(svc.Users))
			r.Get("/{id}", users.HandleGet(svc.Users))

			r.Group(func(r chi.Router) {
				r.Use(protect)
				r.Patch("/user/update", users.HandleUpdate(svc.Users, d.maxBytes))
				r.Patch("/follow", users.HandleFollow(svc.Follows, d.maxBytes))
				r.Patch("/unfollow", users.HandleUnfollow(svc.Follows, d.maxBytes))
			})
		})

		r.Route("/drawings", func(r chi.Router) {
			r.Get("/", drawings.HandleList(svc.Drawings))
			r.Get("/user/{uid}", drawings.HandleListByUser(svc.Drawings))
			r.Get("/{id}", drawings.HandleGet(svc.Drawings))
			r.Patch("/{id}/like", drawings.HandleLike(svc.Drawings))

			r.Group(func(r chi.Router) {
				r.Use(protect)
				r.Post("/", drawings.HandleCreate(svc.Drawings, d.maxBytes))
				r.Patch("/{id}", drawings.HandleUpdate(svc.Drawings, d.maxBytes))
				r.Delete("/{id}", drawings.HandleDelete(svc.Drawings))
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/drawing/{drawingId}", comments.HandleListByDrawing(svc.Comments))

			r.Group(func(r chi.Router) {
				r.Use(protect)
				r.Post("/", comments.HandleCreate(svc.Comments, d.maxBytes))
				r.Delete("/{id}", comments.HandleDelete(svc.Comments))
			})
		})
	})

	return r
}

// uploadsHandler serves images for blob stores that live in this process.
// Object storage backends hand out their own URLs.
func uploadsHandler(blobs core.BlobStore) http.Handler {
	switch b := blobs.(type) {
	case *memory.BlobStore:
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, contentType, ok := b.Get(r.URL.Path)
			if !ok {
				httpx.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", contentType)
			w.Write(data)
		})
	case interface{ BasePath() string }:
		files := http.FileServer(http.Dir(b.BasePath()))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// No directory listings: they would expose every stored key.
			if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
				httpx.NotFound(w, r)
				return
			}
			files.ServeHTTP(w, r)
		})
	default:
		return nil
	}
}

// closeDenylist releases the revocation list's connection, if it has one.
func closeDenylist(denylist core.TokenDenylist) {
	c, ok := denylist.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		logrus.WithError(err).Warn("Failed to close token denylist")
	}
}

func jwtSecret(cfg config.Config) []byte {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret)
	}
	logrus.Warn("JWT_SECRET is not set, using a random secret; sessions will not survive a restart")
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		logrus.Fatalf("Failed to generate JWT secret: %v", err)
	}
	return secret
}

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	listenAddress := flag.String("listen", ":5000", "The address to listen on.")
	logLevel := flag.String("loglevel", "info", "The log level (debug, info, warn, error).")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	cfg := config.Load()
	ctx := context.Background()

	store, err := stores.GetStore(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open document store")
	}
	defer store.Close()

	blobs, err := stores.GetBlobStore(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open blob store")
	}
	denylist, err := stores.GetDenylist(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open token denylist")
	}
	defer closeDenylist(denylist)

	r := setupRouter(deps{
		store:    store,
		services: services.New(store, media.NewCoordinator(blobs)),
		session: users.Session{
			Issuer: auth.NewIssuer(jwtSecret(cfg), cfg.TokenTTL, denylist),
			Secure: !cfg.Development,
		},
		uploads:  uploadsHandler(blobs),
		maxBytes: cfg.MaxUploadBytes,
		origins:  cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:              *listenAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logrus.WithField("addr", *listenAddress).Info("starting server")
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	logrus.Debug("Server is running in the background")
	waitForShutdown(server)
}

func waitForShutdown(server *http.Server) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs

	logrus.WithField("signal", sig).Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Graceful shutdown failed")
	}
	logrus.Info("Server stopped")
}
