package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kubev2v/rvtools-summary/internal/config"
	"github.com/kubev2v/rvtools-summary/internal/handlers/validator"
	"github.com/kubev2v/rvtools-summary/internal/lifecycle"
	"github.com/kubev2v/rvtools-summary/pkg/log"
	"github.com/kubev2v/rvtools-summary/pkg/metrics"
	"github.com/kubev2v/rvtools-summary/pkg/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg        *config.Config
	listener   net.Listener
	state      *State
	classifier *lifecycle.Classifier
	registerer prometheus.Registerer
}

// New returns a new instance of the summary API server.
func New(
	cfg *config.Config,
	listener net.Listener,
	state *State,
	classifier *lifecycle.Classifier,
) *Server {
	return &Server{
		cfg:        cfg,
		listener:   listener,
		state:      state,
		classifier: classifier,
		registerer: prometheus.DefaultRegisterer,
	}
}

// WithRegisterer replaces the registry receiving the request metrics.
func (s *Server) WithRegisterer(reg prometheus.Registerer) *Server {
	s.registerer = reg
	return s
}

// Handler builds the router serving the REST API.
func (s *Server) Handler() (http.Handler, error) {
	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server", s.cfg.Service.LatencyBuckets)
	if err := metricMiddleware.Register(s.registerer); err != nil {
		return nil, fmt.Errorf("failed to register request metrics: %w", err)
	}

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.Service.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowedHeaders: []string{"*"},
			ExposedHeaders: []string{requestid.Header},
			MaxAge:         300,
		}),
		requestid.Middleware,
		log.ConditionalLogger(s.cfg.Service.LogLevel, zap.L(), "api_server"),
		chiMiddleware.Recoverer,
	)

	v := validator.NewValidator()
	if err := v.Register(validator.NewQueryValidationRules()...); err != nil {
		return nil, err
	}

	h := &handler{
		state:     s.state,
		table:     s.classifier.Table(),
		validator: v,
		lifecycle: lifecycleDefaults{
			mode:            s.classifier.Mode(),
			warningMonths:   s.classifier.WarningMonths(),
			incrementMonths: s.cfg.Lifecycle.ForecastIncrementMonths,
			steps:           s.cfg.Lifecycle.ForecastSteps,
		},
		maxFiles:  s.cfg.Analysis.MaxFiles,
		maxUpload: s.cfg.Service.MaxUploadMiB << 20,
	}
	h.register(router)

	return router, nil
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	router, err := s.Handler()
	if err != nil {
		return err
	}
	srv := http.Server{Addr: s.cfg.Service.Address, Handler: router}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}
