package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/kpozdnikin/nft-history/internal/domain"
	"github.com/kpozdnikin/nft-history/internal/service"
	"github.com/kpozdnikin/nft-history/internal/view"
)

// LookupFactory returns a fresh lookup session. Each request gets its own.
type LookupFactory func() *service.Lookup

type LookupHTTPHandler struct {
	newLookup LookupFactory
	renderer  *view.HTMLRenderer
	metrics   http.Handler
	log       zerolog.Logger
}

func NewLookupHTTPHandler(newLookup LookupFactory, renderer *view.HTMLRenderer, metrics http.Handler, log zerolog.Logger) *LookupHTTPHandler {
	return &LookupHTTPHandler{
		newLookup: newLookup,
		renderer:  renderer,
		metrics:   metrics,
		log:       log.With().Str("component", "http").Logger(),
	}
}

func (h *LookupHTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", h.Page)
	r.Get("/health", h.HealthCheck)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/chains", h.GetChains)
		r.Get("/nfts/{chain}/{contract}/{tokenID}", h.GetNFT)
	})

	return r
}

// Page renders the lookup page. A lookup runs only when the form was
// submitted, i.e. the query carries a contract or token_id parameter.
func (h *LookupHTTPHandler) Page(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	lookup := h.newLookup()
	if chain := query.Get("chain"); chain != "" {
		lookup.SetChain(domain.Chain(chain))
	}
	lookup.SetContract(query.Get("contract"))
	lookup.SetTokenID(query.Get("token_id"))

	state := lookup.Snapshot()
	if query.Has("contract") || query.Has("token_id") {
		state = lookup.Fetch(r.Context())
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, state); err != nil {
		h.log.Error().Err(err).Msg("rendering page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

type lookupResponse struct {
	Chain     domain.Chain      `json:"chain"`
	Contract  string            `json:"contract"`
	TokenID   string            `json:"token_id"`
	NFT       *domain.NFT       `json:"nft"`
	Transfers []domain.Transfer `json:"transfers"`
	Error     string            `json:"error,omitempty"`
}

// GetNFT runs a lookup and returns the result state as JSON. Provider
// failures are reported in the error field, not as an HTTP status.
func (h *LookupHTTPHandler) GetNFT(w http.ResponseWriter, r *http.Request) {
	lookup := h.newLookup()
	lookup.SetChain(domain.Chain(chi.URLParam(r, "chain")))
	lookup.SetContract(chi.URLParam(r, "contract"))
	lookup.SetTokenID(chi.URLParam(r, "tokenID"))

	state := lookup.Fetch(r.Context())
	respondJSON(w, http.StatusOK, lookupResponse{
		Chain:     state.Form.Chain,
		Contract:  state.Form.Contract,
		TokenID:   state.Form.TokenID,
		NFT:       state.Result.NFT,
		Transfers: state.Result.Transfers,
		Error:     state.Result.Error,
	})
}

func (h *LookupHTTPHandler) GetChains(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"chains":  domain.SupportedChains,
		"default": domain.DefaultChain,
	})
}

func (h *LookupHTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (h *LookupHTTPHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		h.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
