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
	"github.com/go-chi/cors"
	"github.com/launchhub-app/apiserver/config"
	"github.com/launchhub-app/apiserver/internal/auth"
	"github.com/launchhub-app/apiserver/internal/db"
	"github.com/launchhub-app/apiserver/internal/handlers"
	"github.com/launchhub-app/apiserver/internal/mq"
	"github.com/launchhub-app/apiserver/internal/services"
	"github.com/launchhub-app/apiserver/internal/storage"
	"github.com/launchhub-app/apiserver/internal/store"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	events     *mq.EventPublisher
	logger     *zap.Logger
}

// New constructs a Server wired against the configured backends.
// Stripe, the identity provider, media storage and the event broker are
// all optional: a missing configuration disables the feature instead of
// failing startup.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	jwtSecret := strings.TrimSpace(cfg.Auth.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	events, err := newEventPublisher(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	media, err := newMediaStore(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	var verifier *auth.ProviderVerifier
	if strings.TrimSpace(cfg.Firebase.ProjectID) != "" {
		verifier, err = auth.NewProviderVerifier(ctx, cfg.Firebase)
		if err != nil {
			_ = dbConn.Close()
			return nil, err
		}
	} else {
		logger.Warn("identity provider not configured; accepting client-asserted emails")
	}

	productRepo := store.NewProductRepository(dbConn)
	userRepo := store.NewUserRepository(dbConn)
	reviewRepo := store.NewReviewRepository(dbConn)
	couponRepo := store.NewCouponRepository(dbConn)

	productService := services.NewProductService(productRepo, events, logger)
	userService := services.NewUserService(userRepo, logger)
	reviewService := services.NewReviewService(reviewRepo)
	couponService := services.NewCouponService(couponRepo)
	billingService := services.NewBillingService(cfg.Stripe, couponService)

	authMiddleware := handlers.RequireAuth(jwtSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		requestLogger(logger),
		middleware.Timeout(60*time.Second),
		cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)

	router.Get("/healthz", handlers.Healthz)
	handlers.AuthRouter(router, userService, verifier, jwtSecret)
	handlers.ProductRouter(router, productService, userService, authMiddleware)
	handlers.ReviewRouter(router, reviewService, productService, userService, authMiddleware)
	handlers.UserRouter(router, userService, authMiddleware)
	handlers.CouponRouter(router, couponService, userService, authMiddleware)
	handlers.BillingRouter(router, billingService, userService, authMiddleware)
	handlers.MediaRouter(router, productService, media, authMiddleware)

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
		events:     events,
		logger:     logger,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.events != nil {
		_ = s.events.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}

func newEventPublisher(ctx context.Context, cfg config.MQConfig) (*mq.EventPublisher, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "":
		return nil, nil
	case "rabbitmq":
		backend, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("init rabbitmq: %w", err)
		}
		return mq.NewEventPublisher(backend), nil
	case "pubsub":
		backend, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, fmt.Errorf("init pubsub: %w", err)
		}
		return mq.NewEventPublisher(backend), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
	}
}

func newMediaStore(ctx context.Context, cfg config.StorageConfig) (*storage.MediaStore, error) {
	var backend storage.ObjectStorage
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "":
		return nil, nil
	case "minio":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("init minio: %w", err)
		}
		backend = client
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, fmt.Errorf("init gcs: %w", err)
		}
		backend = client
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	media := storage.NewMediaStore(backend)
	if err := media.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure media bucket: %w", err)
	}
	return media, nil
}
