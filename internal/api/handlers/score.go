package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wonny/ipo-scorecard/internal/contracts"
	"github.com/wonny/ipo-scorecard/internal/decision"
	"github.com/wonny/ipo-scorecard/pkg/logger"
)

const maxScoreBody = 1 << 20

// Evaluator runs metrics and decision on already-extracted rows
type Evaluator interface {
	Evaluate(rows []contracts.FinancialRow) contracts.Scorecard
}

// ScoreHandler exposes the deterministic core
type ScoreHandler struct {
	evaluator Evaluator
	engine    *decision.Engine
	source    string
	logger    *logger.Logger
}

// NewScoreHandler creates a new score handler; source names where the scoring config came from
func NewScoreHandler(evaluator Evaluator, engine *decision.Engine, source string, log *logger.Logger) *ScoreHandler {
	return &ScoreHandler{
		evaluator: evaluator,
		engine:    engine,
		source:    source,
		logger:    log,
	}
}

// ScoreRequest is the body of POST /api/score
type ScoreRequest struct {
	Financials []contracts.FinancialRow `json:"financials"`
}

// Score computes metrics and verdict for the posted rows
// POST /api/score
func (h *ScoreHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxScoreBody)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	respondJSON(w, http.StatusOK, h.evaluator.Evaluate(req.Financials))
}

// ScoringConfigResponse describes the active rulebook
type ScoringConfigResponse struct {
	Source string          `json:"source"`
	Hash   string          `json:"hash"`
	Config decision.Config `json:"config"`
}

// GetConfig returns the active scoring config and its hash
// GET /api/scoring/config
func (h *ScoreHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.engine.Config()
	hash, err := decision.Hash(&cfg)
	if err != nil {
		h.logger.WithContext(r.Context()).WithError(err).Error("Failed to hash scoring config")
		respondError(w, http.StatusInternalServerError, "Failed to hash scoring config")
		return
	}

	respondJSON(w, http.StatusOK, ScoringConfigResponse{
		Source: h.source,
		Hash:   hash,
		Config: cfg,
	})
}
