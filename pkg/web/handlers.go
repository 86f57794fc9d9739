package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rhobs/kubeqa/pkg/agent"
	"github.com/rhobs/kubeqa/pkg/catalog"
	"github.com/rhobs/kubeqa/pkg/compose"
	"github.com/rhobs/kubeqa/pkg/resultutil"
)

const (
	sessionCookie = "kubeqa_session"
	sessionHeader = "X-Session-Id"
	probeTimeout  = 5 * time.Second
)

type handlers struct {
	manager *agent.Manager
	prober  Prober
	logger  *slog.Logger
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	SessionID string `json:"session_id"`
	resultutil.AnswerOutput
}

type historyResponse struct {
	SessionID string              `json:"session_id"`
	Entries   []agent.HistoryItem `json:"entries"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Cluster  string `json:"cluster"`
	Error    string `json:"error,omitempty"`
	Mode     string `json:"mode"`
	Strategy string `json:"strategy"`
	Sessions int    `json:"sessions"`
}

// session resolves the caller's session from the header or cookie and echoes
// its id back.
func (h *handlers) session(w http.ResponseWriter, r *http.Request) *agent.Session {
	id := r.Header.Get(sessionHeader)
	if id == "" {
		if c, err := r.Cookie(sessionCookie); err == nil {
			id = c.Value
		}
	}
	s, created := h.manager.Session(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    s.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	w.Header().Set(sessionHeader, s.ID())
	return s
}

func (h *handlers) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "No query provided")
		return
	}

	s := h.session(w, r)
	resp := s.Answer(r.Context(), req.Query)
	respondJSON(w, http.StatusOK, queryResponse{
		SessionID:    s.ID(),
		AnswerOutput: resultutil.NewAnswerOutput(resp),
	})
}

func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	limit := catalog.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	s := h.session(w, r)
	respondJSON(w, http.StatusOK, historyResponse{
		SessionID: s.ID(),
		Entries:   agent.Summarize(s.RecentHistory(limit)),
	})
}

func (h *handlers) examples(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"examples": compose.Examples()})
}

func (h *handlers) operations(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"operations": h.manager.Engine().Catalog().Describe()})
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	engine := h.manager.Engine()
	resp := healthResponse{
		Status:   "healthy",
		Cluster:  "connected",
		Mode:     engine.Mode(),
		Strategy: engine.Strategy(),
		Sessions: h.manager.Len(),
	}
	status := http.StatusOK
	if h.prober != nil {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()
		if err := h.prober.Ping(ctx); err != nil {
			h.logger.Warn("Cluster health probe failed", "error", err)
			resp.Status = "unhealthy"
			resp.Cluster = "disconnected"
			resp.Error = err.Error()
			status = http.StatusServiceUnavailable
		}
	} else {
		resp.Cluster = "unknown"
	}
	respondJSON(w, status, resp)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
