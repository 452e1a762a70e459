// Package web exposes the annotation operations as a JSON HTTP API. The
// caller's identity arrives in the X-Annotator-Id header, set by an
// upstream auth layer; this package performs no authentication itself.
package web

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alignlab/entalign/internal/corpus"
	"github.com/alignlab/entalign/internal/match"
)

// NewServer creates and configures the HTTP server for the alignment API.
func NewServer(db *sql.DB, store *corpus.Store, engine *match.Engine, version, bind string, port int) *http.Server {
	h := &Handlers{
		db:      db,
		store:   store,
		engine:  engine,
		version: version,
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /healthz", h.HandleHealth)
	mux.HandleFunc("GET /texts", h.HandleTexts)
	mux.HandleFunc("GET /texts/{text_id}", h.HandleTextDetail)
	mux.HandleFunc("GET /texts/{text_id}/categories", h.HandleCategories)
	mux.HandleFunc("POST /align", h.HandleAlign)
	mux.HandleFunc("POST /annotations", h.HandleSubmit)
	mux.HandleFunc("GET /annotations", h.HandleList)
	mux.HandleFunc("DELETE /annotations/{id}", h.HandleDelete)

	handler := securityHeaders(mux)

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", bind, port),
		Handler: handler,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Printf("entalign API listening at http://%s", srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Printf("WARNING: Server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
