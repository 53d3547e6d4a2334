package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mtyhostal/apiserver/config"
	"github.com/mtyhostal/apiserver/internal/auth"
	"github.com/mtyhostal/apiserver/internal/db"
	"github.com/mtyhostal/apiserver/internal/handlers"
	"github.com/mtyhostal/apiserver/internal/services"
	"github.com/mtyhostal/apiserver/internal/storage"
	"github.com/mtyhostal/apiserver/internal/store"
	"github.com/mtyhostal/apiserver/types"
	"github.com/sirupsen/logrus"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
}

// New constructs a Server with all dependencies wired from config.
func New(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*Server, error) {
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, errors.New("JWT secret is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	backend, err := newStorageBackend(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	objectStorage := storage.NewStorage(backend)
	if err := objectStorage.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	residenceRepo := store.NewResidenceRepository(dbConn)
	imageRepo := store.NewImageRepository(dbConn)
	cityRepo := store.NewCityRepository(dbConn)
	reservationRepo := store.NewReservationRepository(dbConn)

	imageStore := services.NewObjectImageStore(objectStorage)
	userService := services.NewUserService(userRepo, imageStore)
	residenceService := services.NewResidenceService(residenceRepo, imageRepo, cityRepo, userRepo, imageStore)
	reservationService := services.NewReservationService(reservationRepo, residenceRepo)

	issuer := auth.NewIssuer(cfg.JWT)
	verifier := auth.NewVerifier(cfg.JWT)
	requireAuth := auth.RequireAuth(verifier)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		requestLogger(logger),
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/usuario", func(r chi.Router) {
		handlers.UsuarioRouter(r, userService, issuer, verifier, cfg.DefaultProfilePhotoURL)
	})
	router.Route("/residencias", func(r chi.Router) {
		handlers.ResidenciaRouter(r, residenceService, verifier)
	})
	router.Route("/ciudades", func(r chi.Router) {
		handlers.CiudadRouter(r, residenceService)
	})
	router.Route("/reservaciones", func(r chi.Router) {
		handlers.ReservacionRouter(r, reservationService, verifier)
	})

	residenciaHandler := handlers.NewResidenciaHandler(residenceService)
	reservacionHandler := handlers.NewReservacionHandler(reservationService)
	router.With(requireAuth, auth.RequireRole(types.RoleHost)).
		Get("/mis-residencias", residenciaHandler.ListOwn)
	router.With(requireAuth, auth.RequireRole(types.RoleGuest)).
		Get("/mis-reservaciones", reservacionHandler.ListOwn)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
	}, nil
}

func newStorageBackend(ctx context.Context, cfg config.StorageConfig) (storage.ObjectStorage, error) {
	switch cfg.Backend {
	case "", "minio":
		return storage.NewMinioClient(cfg.Minio, cfg.PublicBaseURL)
	case "gcs":
		return storage.NewGCSClient(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// requestLogger logs one structured line per request.
func requestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("request")
		})
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
