package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/uoscommunity/scorebot/internal/domain"
	"github.com/uoscommunity/scorebot/internal/score"
)

// BalanceComputer builds balance reports.
type BalanceComputer interface {
	Compute(ctx context.Context, accountName string) (domain.BalanceReport, error)
}

// ScoreProvider resolves display scores.
type ScoreProvider interface {
	GetScore(ctx context.Context, accountName string) (domain.Score, error)
}

// AccountLister reads the linked-account directory.
type AccountLister interface {
	List(ctx context.Context) ([]domain.LinkedAccount, error)
	Count(ctx context.Context) (int, error)
}

// Exporter writes a balance export of every linked account.
type Exporter interface {
	Export(ctx context.Context) (int, error)
}

// Handler provides HTTP endpoints for balances, scores and the account directory.
type Handler struct {
	balances BalanceComputer
	scores   ScoreProvider
	accounts AccountLister
	exporter Exporter
}

// NewHandler creates a new API handler. exporter may be nil when no export target is configured.
func NewHandler(balances BalanceComputer, scores ScoreProvider, accounts AccountLister, exporter Exporter) *Handler {
	return &Handler{
		balances: balances,
		scores:   scores,
		accounts: accounts,
		exporter: exporter,
	}
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetBalance handles GET /api/v1/balances/{account}.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("account")
	if !domain.ValidAccountName(name) {
		writeError(w, http.StatusBadRequest, "account name must be exactly 12 characters")
		return
	}

	report, err := h.balances.Compute(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			slog.Error("malformed balance data", "account", name, "error", err)
			writeError(w, http.StatusBadGateway, "could not compute balance")
			return
		}
		slog.Error("failed to compute balance", "account", name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GetScore handles GET /api/v1/scores/{account}.
func (h *Handler) GetScore(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("account")
	if !domain.ValidAccountName(name) {
		writeError(w, http.StatusBadRequest, "account name must be exactly 12 characters")
		return
	}

	s, err := h.scores.GetScore(r.Context(), name)
	if err != nil {
		if errors.Is(err, score.ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		slog.Error("failed to get score", "account", name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

type accountsResponse struct {
	Count    int                    `json:"count"`
	Accounts []domain.LinkedAccount `json:"accounts"`
}

// ListAccounts handles GET /api/v1/accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		slog.Error("failed to list accounts", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if accounts == nil {
		accounts = []domain.LinkedAccount{}
	}
	count, err := h.accounts.Count(r.Context())
	if err != nil {
		slog.Error("failed to count accounts", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, accountsResponse{Count: count, Accounts: accounts})
}

// RunExport handles POST /api/v1/exports.
func (h *Handler) RunExport(w http.ResponseWriter, r *http.Request) {
	rows, err := h.exporter.Export(r.Context())
	if err != nil {
		slog.Error("failed to run export", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to run export")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"rows": rows})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
