// Package api provides the HTTP handlers for previewing and committing
// session settlements and for reading the cumulative ledger.
//
// Settling is two-phase: a preview computes the report and parks it under a
// preview id, and only an explicit commit of that id writes to the ledger.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/balance"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/ledger"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/metrics"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/model"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/roster"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/settlement"
)

// DefaultPreviewTTL is how long an uncommitted preview stays committable.
const DefaultPreviewTTL = 15 * time.Minute

// ExportFilename is suggested to browsers downloading the ledger.
const ExportFilename = "poker_ledger.csv"

// Settings are the defaults applied to previews that do not override them.
// Zero values fall back to the package defaults. A nil Policy means
// balance.DefaultPolicy; a non-nil one is used as given, even 0/0.
type Settings struct {
	ExchangeRatio decimal.Decimal
	TotalFee      decimal.Decimal
	Policy        *balance.Policy
	PreviewTTL    time.Duration
	Now           func() time.Time
}

type pendingPreview struct {
	report  *model.SettlementReport
	expires time.Time
}

// Service handles settlement and ledger requests. Previews live in memory
// only; a restart drops them, which at worst means re-running a preview.
type Service struct {
	ledger     *ledger.Ledger
	ratio      decimal.Decimal
	fee        decimal.Decimal
	policy     balance.Policy
	previewTTL time.Duration
	now        func() time.Time

	mu      sync.Mutex
	pending map[string]pendingPreview

	hub *Hub // optional
}

// NewService creates a settlement service on top of l.
// Pass nil for hub if WebSocket broadcasting is not needed.
func NewService(l *ledger.Ledger, set Settings, hub *Hub) *Service {
	s := &Service{
		ledger:     l,
		ratio:      set.ExchangeRatio,
		fee:        set.TotalFee,
		policy:     balance.DefaultPolicy(),
		previewTTL: set.PreviewTTL,
		now:        set.Now,
		pending:    make(map[string]pendingPreview),
		hub:        hub,
	}
	if !s.ratio.IsPositive() {
		s.ratio = settlement.DefaultExchangeRatio
	}
	if set.Policy != nil {
		s.policy = *set.Policy
	}
	if s.previewTTL <= 0 {
		s.previewTTL = DefaultPreviewTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// --- Request/Response types ---

// PreviewRequest is the JSON body for POST /settlements/preview.
type PreviewRequest struct {
	ExchangeRatio decimal.NullDecimal `json:"exchange_ratio"` // absent → service default
	TotalFee      decimal.NullDecimal `json:"total_fee"`      // absent → service default
	Entries       []model.PlayerEntry `json:"entries"`
}

// PreviewResponse carries the computed report. PreviewID is empty when the
// report is rejected and therefore cannot be committed.
type PreviewResponse struct {
	PreviewID string                  `json:"preview_id,omitempty"`
	ExpiresAt *time.Time              `json:"expires_at,omitempty"`
	Report    *model.SettlementReport `json:"report"`
}

// CommitResponse is returned once a preview has been written to the ledger.
type CommitResponse struct {
	SettlementID string               `json:"settlement_id"`
	Records      []model.LedgerRecord `json:"records"`
}

// --- HTTP Handlers ---

// Preview handles POST /api/v1/settlements/preview
func (s *Service) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := roster.Validate(req.Entries); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ratio, fee := s.ratio, s.fee
	if req.ExchangeRatio.Valid {
		ratio = req.ExchangeRatio.Decimal
	}
	if req.TotalFee.Valid {
		fee = req.TotalFee.Decimal
	}
	calc, err := settlement.NewCalculator(ratio, fee, s.policy)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	report := calc.Settle(req.Entries)
	metrics.SettlementsTotal.WithLabelValues(string(report.BalanceStatus)).Inc()
	metrics.BalanceResidual.Observe(report.BalanceResidual.Abs().InexactFloat64())

	resp := PreviewResponse{Report: report}
	if report.Committable() {
		now := s.now()
		expires := now.Add(s.previewTTL)
		resp.PreviewID = uuid.New().String()
		resp.ExpiresAt = &expires

		s.mu.Lock()
		s.pruneLocked(now)
		s.pending[resp.PreviewID] = pendingPreview{report: report, expires: expires}
		s.mu.Unlock()
	}

	slog.Info("settlement previewed",
		"preview_id", resp.PreviewID,
		"status", report.BalanceStatus,
		"residual", report.BalanceResidual.String(),
		"lines", len(report.Lines),
		"ratio", ratio.String(),
		"fee", fee.String(),
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Commit handles POST /api/v1/settlements/{previewID}/commit
// A preview can be committed exactly once, before it expires.
func (s *Service) Commit(w http.ResponseWriter, r *http.Request) {
	previewID := chi.URLParam(r, "previewID")

	// Held across the ledger write so a double submit cannot commit twice.
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[previewID]
	if !ok {
		writeError(w, "unknown or already committed preview: "+previewID, http.StatusConflict)
		return
	}
	if !s.now().Before(p.expires) {
		delete(s.pending, previewID)
		writeError(w, "preview expired: "+previewID, http.StatusConflict)
		return
	}

	records, err := s.ledger.Commit(r.Context(), p.report)
	if errors.Is(err, balance.ErrBalanceRejected) {
		delete(s.pending, previewID)
		writeError(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		slog.Error("settlement commit failed", "preview_id", previewID, "err", err)
		writeError(w, "failed to write ledger", http.StatusInternalServerError)
		return
	}
	delete(s.pending, previewID)

	resp := CommitResponse{
		SettlementID: uuid.New().String(),
		Records:      records,
	}

	slog.Info("settlement committed",
		"settlement_id", resp.SettlementID,
		"preview_id", previewID,
		"records", len(records),
		"residual", p.report.BalanceResidual.String(),
	)

	if s.hub != nil {
		s.hub.Broadcast(Event{
			Type:         EventSettlementCommitted,
			SettlementID: resp.SettlementID,
			Records:      len(records),
			Status:       p.report.BalanceStatus,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// ListRecords handles GET /api/v1/ledger
func (s *Service) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.ledger.ReadAll(r.Context())
	if err != nil {
		slog.Error("read ledger failed", "err", err)
		writeError(w, "failed to read ledger", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// Leaderboard handles GET /api/v1/leaderboard
func (s *Service) Leaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := s.ledger.Leaderboard(r.Context())
	if err != nil {
		slog.Error("leaderboard failed", "err", err)
		writeError(w, "failed to read ledger", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(board)
}

// Export handles GET /api/v1/ledger/export
// The body is byte-identical to the CSV ledger file.
func (s *Service) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.ledger.Export(r.Context(), &buf); err != nil {
		slog.Error("export failed", "err", err)
		writeError(w, "failed to export ledger", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	w.Write(buf.Bytes())
}

// Purge handles DELETE /api/v1/ledger
// Confirmation is the client's job; this endpoint purges unconditionally.
func (s *Service) Purge(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Purge(r.Context()); err != nil {
		slog.Error("purge failed", "err", err)
		writeError(w, "failed to purge ledger", http.StatusInternalServerError)
		return
	}

	if s.hub != nil {
		s.hub.Broadcast(Event{Type: EventLedgerPurged})
	}
	w.WriteHeader(http.StatusNoContent)
}

// pruneLocked drops expired previews. Caller holds s.mu.
func (s *Service) pruneLocked(now time.Time) {
	for id, p := range s.pending {
		if !now.Before(p.expires) {
			delete(s.pending, id)
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
