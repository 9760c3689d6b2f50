package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/vitos/crypto_dashboard/internal/domain"
	"go.uber.org/zap"
)

type settingsRequest struct {
	DisplayCurrency *string `json:"display_currency"`
	TimeRange       *string `json:"time_range"`
}

// handleSettings applies display currency and time range changes. Both are
// validated before either is applied; the time range goes first so a failed
// resize never leaves a switched currency behind.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var (
		code domain.CurrencyCode
		tr   domain.TimeRange
	)
	if req.DisplayCurrency != nil {
		code = domain.ParseCurrency(*req.DisplayCurrency)
		if !s.market.Rates().Has(code) {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %s", domain.ErrUnknownCurrency, code))
			return
		}
	}
	if req.TimeRange != nil {
		var err error
		tr, err = domain.ParseTimeRange(strings.ToLower(strings.TrimSpace(*req.TimeRange)))
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	if err := s.market.ApplySettings(code, tr); err != nil {
		s.logger.Error("Failed to apply settings",
			zap.String("display_currency", string(code)),
			zap.String("time_range", string(tr)),
			zap.Error(err),
		)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.logger.Info("Settings updated",
		zap.String("display_currency", string(s.market.DisplayCurrency())),
		zap.String("time_range", string(s.market.TimeRange())),
	)
	view := s.market.View()
	s.stream.Broadcast()
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !s.market.RefreshNow() {
		s.writeJSON(w, http.StatusConflict, map[string]bool{"started": false})
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]bool{"started": true})
}
