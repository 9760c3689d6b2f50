package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vitos/crypto_dashboard/internal/domain"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

type pricesResponse struct {
	Currency domain.CurrencyInfo      `json:"currency"`
	Prices   []domain.NormalizedPrice `json:"prices"`
}

type seriesResponse struct {
	ID        string               `json:"id"`
	TimeRange domain.TimeRange     `json:"time_range"`
	Points    []domain.SeriesPoint `json:"points"`
}

type currencyRate struct {
	domain.CurrencyInfo
	Rate float64 `json:"rate"`
}

type currenciesResponse struct {
	Base       domain.CurrencyCode `json:"base"`
	Display    domain.CurrencyCode `json:"display"`
	Currencies []currencyRate      `json:"currencies"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.market.View())
}

// handlePrices normalizes every asset into ?currency=, defaulting to the
// display currency. Unknown currencies still answer 200 with N/A rows.
func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	code := s.market.DisplayCurrency()
	if q := r.URL.Query().Get("currency"); q != "" {
		code = domain.ParseCurrency(q)
	}
	s.writeJSON(w, http.StatusOK, pricesResponse{
		Currency: domain.LookupCurrency(code),
		Prices:   s.market.PricesIn(code),
	})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	points, err := s.market.SeriesSnapshot(id)
	if errors.Is(err, domain.ErrUnknownSeries) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.logger.Error("Failed to read series", zap.String("series", id), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, seriesResponse{ID: id, TimeRange: s.market.TimeRange(), Points: points})
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	rates := s.market.Rates()
	infos := s.market.Currencies()
	out := currenciesResponse{
		Base:       rates.Base(),
		Display:    s.market.DisplayCurrency(),
		Currencies: make([]currencyRate, 0, len(infos)),
	}
	for _, info := range infos {
		rate, err := rates.Rate(info.Code)
		if err != nil {
			continue
		}
		out.Currencies = append(out.Currencies, currencyRate{CurrencyInfo: info, Rate: rate})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.market.Health())
}
