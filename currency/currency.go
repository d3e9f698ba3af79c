// Package currency converts amounts between currency codes using a rate
// table kept against a single base currency (USD). The table starts from seed
// rates and is refreshed from an external source at most once per hour; when
// the source is unreachable the last good rates keep serving.
package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"
)

const (
	defaultSourceURL = "https://api.exchangerate-api.com/v4/latest/USD"
	refreshTTL       = time.Hour
)

var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Rate is one row of the table, expressed against the base currency.
type Rate struct {
	Code   string  `json:"code"`
	Rate   float64 `json:"rate"`
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
}

// Conversion is the result of a convert call. Rate is the effective cross
// rate target/source, not the two base legs.
type Conversion struct {
	From            string  `json:"from"`
	To              string  `json:"to"`
	Amount          float64 `json:"amount"`
	ConvertedAmount float64 `json:"convertedAmount"`
	Rate            float64 `json:"rate"`
}

// Service holds the mutable rate table. It is safe for concurrent use; two
// requests may both decide to refresh, which is harmless since a refresh is
// idempotent and failures are non-fatal.
type Service struct {
	mu         sync.RWMutex
	rates      map[string]Rate
	lastUpdate time.Time

	// Injected so refresh races and staleness are testable in isolation.
	SourceURL string
	Client    *http.Client
	Now       func() time.Time
}

func New() *Service {
	s := &Service{
		rates:     make(map[string]Rate),
		SourceURL: defaultSourceURL,
		Client:    &http.Client{Timeout: 10 * time.Second},
		Now:       time.Now,
	}
	for _, r := range seedRates() {
		s.rates[r.Code] = r
	}
	return s
}

// seedRates is the table served before the first successful refresh.
func seedRates() []Rate {
	return []Rate{
		{Code: "USD", Rate: 1, Symbol: "$", Name: "US Dollar"},
		{Code: "EUR", Rate: 0.85, Symbol: "€", Name: "Euro"},
		{Code: "GBP", Rate: 0.73, Symbol: "£", Name: "British Pound"},
		{Code: "JPY", Rate: 110, Symbol: "¥", Name: "Japanese Yen"},
		{Code: "CAD", Rate: 1.25, Symbol: "C$", Name: "Canadian Dollar"},
		{Code: "AUD", Rate: 1.35, Symbol: "A$", Name: "Australian Dollar"},
		{Code: "CHF", Rate: 0.92, Symbol: "Fr", Name: "Swiss Franc"},
		{Code: "CNY", Rate: 6.45, Symbol: "¥", Name: "Chinese Yuan"},
	}
}

// Convert converts amount between two codes, refreshing the table first when
// it has gone stale. A refresh failure is logged by the caller's transport
// and otherwise ignored: conversion proceeds on the cached table.
func (s *Service) Convert(ctx context.Context, amount float64, from, to string) (Conversion, error) {
	if s.stale() {
		// Best effort; stale rates still serve.
		_ = s.Refresh(ctx)
	}

	s.mu.RLock()
	fromRate, okFrom := s.rates[from]
	toRate, okTo := s.rates[to]
	s.mu.RUnlock()
	if !okFrom || !okTo {
		return Conversion{}, fmt.Errorf("%w: %s or %s", ErrUnsupportedCurrency, from, to)
	}

	usdAmount := amount / fromRate.Rate
	return Conversion{
		From:            from,
		To:              to,
		Amount:          amount,
		ConvertedAmount: usdAmount * toRate.Rate,
		Rate:            toRate.Rate / fromRate.Rate,
	}, nil
}

func (s *Service) stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate.IsZero() || s.Now().Sub(s.lastUpdate) > refreshTTL
}

// Refresh pulls the latest base-currency table from the source. Only codes
// already present in the table are updated; unknown codes stay unsupported
// and non-positive rates are discarded.
func (s *Service) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.SourceURL, nil)
	if err != nil {
		return err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rate source returned %d", resp.StatusCode)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return err
	}

	s.mu.Lock()
	for code, rate := range payload.Rates {
		if rate <= 0 {
			// A zero or negative rate would poison every conversion
			// through that code.
			continue
		}
		if existing, ok := s.rates[code]; ok {
			existing.Rate = rate
			s.rates[code] = existing
		}
	}
	s.lastUpdate = s.Now()
	s.mu.Unlock()
	return nil
}

// Supported returns the table sorted by currency name.
func (s *Service) Supported() []Rate {
	s.mu.RLock()
	out := make([]Rate, 0, len(s.rates))
	for _, r := range s.rates {
		out = append(out, r)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Symbol returns the display symbol for a code, or the code itself when
// unknown.
func (s *Service) Symbol(code string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.rates[code]; ok {
		return r.Symbol
	}
	return code
}
