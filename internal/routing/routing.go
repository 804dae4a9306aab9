package routing

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"authgateway/pkg/gateway"
	"authgateway/pkg/handlers"
	"authgateway/pkg/middleware"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 120 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func InitRoutes(r *mux.Router, gw *gateway.Gateway, db handlers.Pinger, logger *slog.Logger) {
	healthHandler := handlers.NewHealthHandler(db, logger)
	userHandler := handlers.NewUserHandler(logger)

	/* -+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+ */

	api := r.PathPrefix("/api").Subrouter()
	userRouter := api.PathPrefix("/user").Subrouter()

	r.HandleFunc("/", handlers.Root(logger)).Methods("GET").Name("root")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET").Name("metrics")

	/* auth engine */
	api.PathPrefix("/auth/").Handler(gw.Bridge()).Methods("GET", "POST").Name("auth")

	/* health routers */
	api.HandleFunc("/health", healthHandler.Health).Methods("GET").Name("health")
	api.HandleFunc("/health/detailed", healthHandler.Detailed).Methods("GET").Name("health-detailed")

	/* user routers */
	userRouter.Handle("/me", gw.RequireAuth(http.HandlerFunc(userHandler.Me))).Methods("GET").Name("me")
	userRouter.Handle("/profile", gw.OptionalAuth(http.HandlerFunc(userHandler.Profile))).Methods("GET").Name("profile")
	userRouter.Handle("/dashboard", gw.RequireAuth(http.HandlerFunc(userHandler.Dashboard))).Methods("GET").Name("dashboard")

	r.Use(middleware.Metrics)
}

// ServeFallback answers unmatched paths and methods with JSON errors.
func ServeFallback(r *mux.Router, logger *slog.Logger) {
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFallback(w, logger, http.StatusNotFound, `{"error":"Not Found","code":"NOT_FOUND"}`)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFallback(w, logger, http.StatusMethodNotAllowed, `{"error":"Method Not Allowed","code":"METHOD_NOT_ALLOWED"}`)
	})
}

func writeFallback(w http.ResponseWriter, logger *slog.Logger, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body + "\n")); err != nil {
		logger.Error("failed to write fallback JSON", slog.Int("status", status), slog.Any("error", err))
	}
}

// Handler wraps the router in the process-wide middleware. CORS sits
// outside the router so preflight requests never reach route matching.
func Handler(r *mux.Router, clientOrigins []string, logger *slog.Logger) (http.Handler, error) {
	cors, err := middleware.CORS(clientOrigins, logger)
	if err != nil {
		return nil, err
	}
	var h http.Handler = r
	h = cors(h)
	h = middleware.AccessLog(logger)(h)
	h = middleware.Panic(logger)(h)
	return h, nil
}

// StartServer serves h on addr until ctx is cancelled, then drains
// in-flight requests.
func StartServer(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
