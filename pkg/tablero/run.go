package tablero

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Init initializes the backing store, creating an empty document if none
// exists yet. Idempotent; Run calls it on startup so a fresh deployment
// needs no separate provisioning step.
func (a *App) Init(ctx context.Context) error {
	if err := a.store.Ensure(ctx); err != nil {
		return fmt.Errorf("ensure store: %w", err)
	}
	return nil
}

// Router builds the HTTP routes for the board API:
//
//	GET    /health                  - liveness marker + current time
//	GET    /statuses                - the fixed ordered status set
//	GET    /events                  - websocket stream of board events
//	GET    /tasks                   - list tasks
//	POST   /tasks                   - create task
//	GET    /tasks/{id}              - get task
//	PUT    /tasks/{id}              - partial update (merge semantics)
//	PATCH  /tasks/{id}/status       - set status
//	DELETE /tasks/{id}              - delete task
//	GET    /responsibles            - list responsibles
//	POST   /responsibles            - create responsible
//	PUT    /responsibles/{id}       - partial update
//	DELETE /responsibles/{id}       - delete responsible
//
// Exposed separately from Run so handler tests can mount the full route
// table on an httptest server.
//
// CORS wraps the router from the outside so preflight OPTIONS requests are
// answered even though no route matches them.
func (a *App) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(requestLogMiddleware(a.logger))

	router.HandleFunc("/health", a.handleHealth).Methods("GET")
	router.HandleFunc("/statuses", a.handleListStatuses).Methods("GET")
	router.Handle("/events", a.hub).Methods("GET")

	router.HandleFunc("/tasks", a.handleListTasks).Methods("GET")
	router.HandleFunc("/tasks", a.handleCreateTask).Methods("POST")
	router.HandleFunc("/tasks/{id}", a.handleGetTask).Methods("GET")
	router.HandleFunc("/tasks/{id}", a.handleUpdateTask).Methods("PUT")
	router.HandleFunc("/tasks/{id}/status", a.handleSetTaskStatus).Methods("PATCH")
	router.HandleFunc("/tasks/{id}", a.handleDeleteTask).Methods("DELETE")

	router.HandleFunc("/responsibles", a.handleListResponsibles).Methods("GET")
	router.HandleFunc("/responsibles", a.handleCreateResponsible).Methods("POST")
	router.HandleFunc("/responsibles/{id}", a.handleUpdateResponsible).Methods("PUT")
	router.HandleFunc("/responsibles/{id}", a.handleDeleteResponsible).Methods("DELETE")

	return corsMiddleware(router)
}

// Run initializes the store and serves the board API until the context is
// cancelled or the server fails. On cancellation it shuts down gracefully,
// allowing in-flight requests up to 5 seconds to complete.
func (a *App) Run(ctx context.Context, cmd *RunCommand) error {
	if err := a.Init(ctx); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%s", a.config.ServerPort)
	server := &http.Server{
		Addr:    addr,
		Handler: a.Router(),
	}

	a.logger.Info().
		Str("addr", addr).
		Str("store", a.config.StoreKind).
		Str("data", a.config.DataPath).
		Msg("starting board API server")

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

// corsMiddleware applies a permissive CORS policy: any origin may call the
// API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogMiddleware logs one line per request with method, path, status,
// and duration.
func requestLogMiddleware(logger zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack forwards to the wrapped writer so the websocket upgrade on /events
// still works through the logging middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return h.Hijack()
}
