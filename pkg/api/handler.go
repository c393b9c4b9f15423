package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/hazyhaar/icdterms/pkg/kit"
	"github.com/hazyhaar/icdterms/pkg/termdb"
)

// NewRouter returns an http.Handler with all term-lookup API routes.
func NewRouter(reg *termdb.Registry) http.Handler {
	mux := http.NewServeMux()
	h := &handler{
		lookupTerm:  lookupTermEndpoint(reg),
		lookupBatch: lookupBatchEndpoint(reg),
		expandTerm:  expandTermEndpoint(reg),
		listTables:  listTablesEndpoint(reg),
		reg:         reg,
	}

	mux.HandleFunc("GET /v1/lookup/batch", methodNotAllowed) // prevent GET on batch
	mux.HandleFunc("POST /v1/lookup/batch", h.handleLookupBatch)
	mux.HandleFunc("GET /v1/lookup/{term}", h.handleLookupTerm)
	mux.HandleFunc("GET /v1/expand/{term}", h.handleExpandTerm)
	mux.HandleFunc("GET /v1/tables", h.handleListTables)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	return cors(mux)
}

type handler struct {
	lookupTerm  kit.Endpoint
	lookupBatch kit.Endpoint
	expandTerm  kit.Endpoint
	listTables  kit.Endpoint
	reg         *termdb.Registry
}

// --- lookup single term ---

func (h *handler) handleLookupTerm(w http.ResponseWriter, r *http.Request) {
	term := r.PathValue("term")
	if term == "" {
		writeError(w, http.StatusBadRequest, "missing term")
		return
	}

	resp, err := h.lookupTerm(r.Context(), &lookupTermReq{
		Term: term,
		Opts: parseOpts(r),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- lookup batch ---

type httpBatchRequest struct {
	Terms    []string `json:"terms"`
	Catalogs []string `json:"catalogs,omitempty"`
	Versions []string `json:"versions,omitempty"`
	Tables   []string `json:"tables,omitempty"`
}

func (h *handler) handleLookupBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024) // 64 KiB max
	var req httpBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.lookupBatch(r.Context(), &lookupBatchReq{
		Terms: req.Terms,
		Opts: &termdb.LookupOptions{
			Catalogs: req.Catalogs,
			Versions: req.Versions,
			Tables:   req.Tables,
		},
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- expand term ---

func (h *handler) handleExpandTerm(w http.ResponseWriter, r *http.Request) {
	term := r.PathValue("term")
	if term == "" {
		writeError(w, http.StatusBadRequest, "missing term")
		return
	}

	maxVariants := 0
	if v := r.URL.Query().Get("max_variants"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid max_variants")
			return
		}
		maxVariants = n
	}

	resp, err := h.expandTerm(r.Context(), &expandTermReq{
		Term:        term,
		Opts:        parseOpts(r),
		MaxVariants: maxVariants,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- list tables ---

func (h *handler) handleListTables(w http.ResponseWriter, r *http.Request) {
	resp, err := h.listTables(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status     string `json:"status"`
	Tables     int    `json:"tables"`
	TotalTerms int    `json:"total_terms"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Tables:     h.reg.TableCount(),
		TotalTerms: h.reg.TotalTerms(),
	})
}

// --- helpers ---

func parseOpts(r *http.Request) *termdb.LookupOptions {
	opts := &termdb.LookupOptions{}
	if v := r.URL.Query().Get("catalogs"); v != "" {
		opts.Catalogs = strings.Split(v, ",")
	}
	if v := r.URL.Query().Get("versions"); v != "" {
		opts.Versions = strings.Split(v, ",")
	}
	if v := r.URL.Query().Get("tables"); v != "" {
		opts.Tables = strings.Split(v, ",")
	}
	return opts
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
