package cli

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/mchmarny/passcheck/pkg/reference"
	"github.com/mchmarny/passcheck/pkg/strength"
)

const maxRequestBytes = 64 << 10

type api struct {
	cfg  *appConfig
	eval *strength.Evaluator
	sets *reference.Sets
}

// EvaluateRequest is the body of POST /api/evaluate.
type EvaluateRequest struct {
	Password string `json:"password"`
	Created  string `json:"created,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (a *api) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"version":    version,
		"common":     a.sets.Common.Len(),
		"dictionary": a.sets.Dictionary.Len(),
	})
}

func (a *api) categoriesHandler(w http.ResponseWriter, _ *http.Request) {
	cats := a.eval.Categories()
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": cats,
		"total":      strength.TotalWeight(cats),
	})
}

func (a *api) evaluateHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := parseCreated(req.Created)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := a.eval.Evaluate(r.Context(), req.Password, created)
	if err != nil {
		slog.Error("evaluation failed", "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, strength.ErrOracle) {
			status = http.StatusBadGateway
		}
		writeError(w, status, "evaluation failed")
		return
	}

	recordEvaluation(a.cfg, sourceAPI, utf8.RuneCountInString(req.Password), res)
	writeJSON(w, http.StatusOK, res)
}
