package expense

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// manualEntry mirrors the JSON object accepted as manual input.
// Amount is kept raw so both numbers and numeric strings are accepted.
type manualEntry struct {
	Description string          `json:"description"`
	Amount      json.RawMessage `json:"amount"`
	Currency    string          `json:"currency"`
	Date        string          `json:"date"`
	Store       string          `json:"store"`
}

// ParseManualEntry interprets free text as a JSON expense object. Text
// that does not start with "{" is wrapped in braces first, so users may
// type bare key/value pairs like `"amount": 5, "description": "Coffee"`.
// description and a numeric amount are required; currency, date and store
// are optional.
func ParseManualEntry(text string) (Entry, error) {
	raw := strings.TrimSpace(text)
	if !strings.HasPrefix(raw, "{") {
		raw = "{" + raw + "}"
	}

	var m manualEntry
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if strings.TrimSpace(m.Description) == "" {
		return Entry{}, fmt.Errorf("%w: description", ErrMissingField)
	}
	amount, err := parseAmount(m.Amount)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Description: strings.TrimSpace(m.Description),
		Amount:      amount,
		Currency:    strings.ToUpper(strings.TrimSpace(m.Currency)),
		Date:        strings.TrimSpace(m.Date),
		Store:       strings.TrimSpace(m.Store),
	}, nil
}

func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.Zero, fmt.Errorf("%w: amount", ErrMissingField)
	}
	// Accept quoted amounts like "5.00" as well as plain numbers.
	s = strings.Trim(s, `"`)
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if amount.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return amount, nil
}

// ParseRates parses conversion-rate configuration given as comma-separated
// CODE=rate pairs, e.g. "MKD=61.5,USD=1.09". Rates must be positive.
func ParseRates(s string) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal)
	s = strings.TrimSpace(s)
	if s == "" {
		return rates, nil
	}
	for _, pair := range strings.Split(s, ",") {
		code, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("invalid rate %q: want CODE=rate", pair)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid rate %q: %w", pair, err)
		}
		if rate.Sign() <= 0 {
			return nil, fmt.Errorf("invalid rate %q: rate must be positive", pair)
		}
		rates[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return rates, nil
}
