// Package server exposes the name service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/go-chi/chi/v5"

	"github.com/tranvictor/uns/expiration"
	"github.com/tranvictor/uns/namehash"
	"github.com/tranvictor/uns/nameservice"
)

const (
	MAX_RESOLVE_MANY = 500
	// MAX_REQUEST_BODY bounds request bodies, enough for MAX_RESOLVE_MANY
	// names of maximum length.
	MAX_REQUEST_BODY = 256 << 10
)

type Server struct {
	svc     *nameservice.Service
	tracker *expiration.Tracker
	l       log.Logger
}

// New serves svc. tracker is optional, without it the expiration routes
// are not mounted.
func New(svc *nameservice.Service, tracker *expiration.Tracker) *Server {
	return &Server{svc: svc, tracker: tracker, l: log.New("component", "server")}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.healthz)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/resolve/{name}", s.resolve)
		r.Get("/resolve/{name}/metadata", s.resolveWithMetadata)
		r.Post("/resolve-many", s.resolveMany)
		r.Get("/reverse/{address}", s.reverse)
		r.Get("/records/{name}", s.records)
		r.Get("/text/{name}/{key}", s.text)
		r.Get("/avatar/{name}", s.avatar)
		r.Get("/suggest/{prefix}", s.suggest)
		r.Get("/cache/stats", s.cacheStats)
		r.Delete("/cache", s.clearCache)
		if s.tracker != nil {
			r.Get("/expirations", s.listExpirations)
			r.Put("/expirations/{name}", s.track)
			r.Delete("/expirations/{name}", s.untrack)
			r.Post("/expirations/{name}/renewed", s.renewed)
		}
	})
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.l.Info("Listening", "addr", addr)
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("Couldn't write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, nameservice.ErrInvalidInput), errors.Is(err, namehash.ErrInvalidName):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, expiration.ErrNotTracked):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, nameservice.ErrDisposed):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		s.l.Warn("Request failed", "err", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}

func notFound(w http.ResponseWriter, what string) {
	writeError(w, http.StatusNotFound, fmt.Errorf("%s not found", what))
}

func options(r *http.Request) (nameservice.Options, error) {
	opts := nameservice.Options{}
	q := r.URL.Query()
	if v := q.Get("chainId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, fmt.Errorf("%w: chainId %q", nameservice.ErrInvalidInput, v)
		}
		opts.ChainID = id
	}
	if v := q.Get("coinType"); v != "" {
		ct, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return opts, fmt.Errorf("%w: coinType %q", nameservice.ErrInvalidInput, v)
		}
		coin := uint32(ct)
		opts.CoinType = &coin
	}
	if v := q.Get("nocache"); v != "" {
		noCache, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("%w: nocache %q", nameservice.ErrInvalidInput, v)
		}
		opts.NoCache = noCache
	}
	return opts, nil
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"resolvers": s.svc.Resolvers(),
	})
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	opts, err := options(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	name := chi.URLParam(r, "name")
	res, err := s.svc.Resolve(r.Context(), name, opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	if res == nil {
		notFound(w, name)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) resolveWithMetadata(w http.ResponseWriter, r *http.Request) {
	opts, err := options(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	name := chi.URLParam(r, "name")
	res, err := s.svc.ResolveWithMetadata(r.Context(), name, opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	if res == nil {
		notFound(w, name)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type resolveManyRequest struct {
	Names    []string `json:"names"`
	ChainID  uint64   `json:"chainId"`
	CoinType *uint32  `json:"coinType"`
	NoCache  bool     `json:"nocache"`
}

func (s *Server) resolveMany(w http.ResponseWriter, r *http.Request) {
	var req resolveManyRequest
	r.Body = http.MaxBytesReader(w, r.Body, MAX_REQUEST_BODY)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("body larger than %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding body: %w", err))
		return
	}
	if len(req.Names) > MAX_RESOLVE_MANY {
		writeError(w, http.StatusBadRequest, fmt.Errorf("at most %d names per request", MAX_RESOLVE_MANY))
		return
	}
	result, err := s.svc.ResolveMany(r.Context(), req.Names, nameservice.Options{
		ChainID:  req.ChainID,
		CoinType: req.CoinType,
		NoCache:  req.NoCache,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": result})
}

func (s *Server) reverse(w http.ResponseWriter, r *http.Request) {
	opts, err := options(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	address := chi.URLParam(r, "address")
	name, err := s.svc.ReverseResolve(r.Context(), address, opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	if name == "" {
		notFound(w, address)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"address": address, "name": name})
}

func (s *Server) records(w http.ResponseWriter, r *http.Request) {
	opts, err := options(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	name := chi.URLParam(r, "name")
	records, err := s.svc.GetRecords(r.Context(), name, opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	if records == nil {
		notFound(w, name)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) text(w http.ResponseWriter, r *http.Request) {
	opts, err := options(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	name, key := chi.URLParam(r, "name"), chi.URLParam(r, "key")
	value, err := s.svc.GetText(r.Context(), name, key, opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	if value == "" {
		notFound(w, key)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "key": key, "value": value})
}

func (s *Server) avatar(w http.ResponseWriter, r *http.Request) {
	opts, err := options(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	name := chi.URLParam(r, "name")
	value, err := s.svc.GetAvatar(r.Context(), name, opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	if value == "" {
		notFound(w, "avatar")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "avatar": value})
}

func (s *Server) suggest(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": s.svc.Suggest(chi.URLParam(r, "prefix"), limit)})
}

func (s *Server) cacheStats(w http.ResponseWriter, r *http.Request) {
	stats := s.svc.GetCacheStats()
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":   stats,
		"hitRate": stats.HitRate(),
	})
}

func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	switch scope := r.URL.Query().Get("scope"); scope {
	case "":
		s.svc.ClearCache()
	case "forward":
		s.svc.ClearForwardCache()
	case "reverse":
		s.svc.ClearReverseCache()
	case "records":
		s.svc.ClearRecordsCache()
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown scope %q", scope))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listExpirations(w http.ResponseWriter, r *http.Request) {
	records, err := s.tracker.Records(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *Server) track(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Track(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) untrack(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Untrack(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) renewed(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.MarkRenewed(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
