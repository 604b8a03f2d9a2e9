package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	fulfillmentservice "creatorflow/contexts/campaign-fulfillment/fulfillment-service"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/services"
	"creatorflow/internal/platform/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "creatorflow/internal/platform/httpserver/docs"
)

const (
	moduleName = "internal/platform/httpserver"
	basePath   = "/fulfillment/v1"
)

// Options configures the HTTP surface. JWTSecret switches actor resolution
// from trusted headers to signed bearer tokens.
type Options struct {
	Addr         string
	JWTSecret    string
	MaxUpload    int64
	Changes      *ChangeHub
	Logger       *slog.Logger
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Server struct {
	router      chi.Router
	logger      *slog.Logger
	addr        string
	fulfillment fulfillmentservice.Module
	auth        AuthConfig
	maxUpload   int64
	changes     *ChangeHub
	http        *http.Server
}

func New(fulfillment fulfillmentservice.Module, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := opts.Addr
	if addr == "" {
		addr = ":8080"
	}
	maxUpload := opts.MaxUpload
	if maxUpload <= 0 {
		maxUpload = services.DefaultMaxUploadBytes
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 5 * time.Minute
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Minute
	}

	s := &Server{
		router:      chi.NewRouter(),
		logger:      logger,
		addr:        addr,
		fulfillment: fulfillment,
		auth:        AuthConfig{JWTSecret: opts.JWTSecret},
		maxUpload:   maxUpload,
		changes:     opts.Changes,
	}
	s.registerRoutes()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
	}
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context, shutdownTimeout time.Duration) error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", moduleName,
		"layer", "platform",
		"addr", s.addr,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", moduleName,
		"layer", "platform",
	)
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(telemetry.Middleware(routePattern))
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route(basePath, func(r chi.Router) {
		r.Use(s.auth.Middleware)

		r.Post("/applications/{application_id}/approve", s.handleApproveApplication)
		r.Post("/applications/{application_id}/reject", s.handleRejectApplication)
		r.Post("/campaigns/{campaign_id}/products", s.handleAddProduct)

		r.Get("/shipments/status", s.handleGetShipmentStatus)
		r.Post("/shipments/{shipment_id}/address", s.handleSubmitAddress)
		r.Post("/shipments/{shipment_id}/ship", s.handleMarkShipped)
		r.Post("/shipments/{shipment_id}/deliver", s.handleConfirmDelivery)
		r.Post("/shipments/{shipment_id}/issue", s.handleFlagIssue)

		r.Get("/tasks/{task_id}", s.handleGetTask)
		r.Get("/tasks/{task_id}/can-transition", s.handleCanTransition)
		r.Post("/tasks/{task_id}/start", s.handleStartWork)
		r.Post("/tasks/{task_id}/dispute", s.handleOpenDispute)
		r.Post("/tasks/{task_id}/uploads", s.handleUploadContent)
		r.Post("/tasks/{task_id}/revisions", s.handleRequestRevision)
		r.Post("/tasks/{task_id}/approve", s.handleApproveContent)

		r.Get("/payments", s.handleListPayments)
		r.Post("/payments/{payment_id}/paid", s.handleMarkPaid)
		r.Post("/payouts", s.handleCreateBatchPayout)
		r.Get("/payouts/{batch_id}", s.handleGetBatchPayout)

		if s.changes != nil {
			r.Get("/changes", s.changes.ServeHTTP)
		}
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request served",
			"event", "http_request_served",
			"module", moduleName,
			"layer", "platform",
			"method", r.Method,
			"route", routePattern(r),
			"status", ww.Status(),
			"duration_ms", time.Since(started).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
