package expense

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds the read-only normalization settings loaded once at
// process start.
type Config struct {
	// DefaultCurrency is assumed for entries that carry no currency.
	DefaultCurrency string
	// SettlementCurrency is the currency all amounts are converted into.
	SettlementCurrency string
	// SourceID is the ledger account all withdrawals are drawn from.
	SourceID string
	// Rates maps a source currency to its value in units per one
	// settlement-currency unit (e.g. MKD -> 61.5 means 61.5 MKD = 1 EUR).
	Rates map[string]decimal.Decimal
}

// Normalizer converts expense entries into ledger-ready records.
type Normalizer struct {
	cfg Config
}

// NewNormalizer creates a Normalizer. Currency codes in the config are
// uppercased so lookups are case-insensitive.
func NewNormalizer(cfg Config) *Normalizer {
	cfg.DefaultCurrency = strings.ToUpper(strings.TrimSpace(cfg.DefaultCurrency))
	cfg.SettlementCurrency = strings.ToUpper(strings.TrimSpace(cfg.SettlementCurrency))
	rates := make(map[string]decimal.Decimal, len(cfg.Rates))
	for code, rate := range cfg.Rates {
		rates[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	cfg.Rates = rates
	return &Normalizer{cfg: cfg}
}

// Normalize converts entries into a SubmissionBatch. It is a pure
// function of its inputs and the configuration; now supplies the date for
// entries that have none. Batches with more than one record get the first
// record's destination name as their group title.
func (n *Normalizer) Normalize(entries []Entry, now time.Time) (*SubmissionBatch, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrMissingField)
	}

	records := make([]LedgerRecord, 0, len(entries))
	for i, entry := range entries {
		record, err := n.normalizeEntry(entry, now)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		records = append(records, record)
	}

	batch := &SubmissionBatch{Records: records}
	if len(records) > 1 {
		batch.GroupTitle = records[0].DestinationName
	}
	return batch, nil
}

func (n *Normalizer) normalizeEntry(entry Entry, now time.Time) (LedgerRecord, error) {
	description := strings.TrimSpace(entry.Description)
	if description == "" {
		return LedgerRecord{}, fmt.Errorf("%w: description", ErrMissingField)
	}
	if entry.Amount.Sign() <= 0 {
		return LedgerRecord{}, fmt.Errorf("%w: %s", ErrInvalidAmount, entry.Amount)
	}

	currency := strings.ToUpper(strings.TrimSpace(entry.Currency))
	if currency == "" {
		currency = n.cfg.DefaultCurrency
	}

	amount := entry.Amount
	if currency != n.cfg.SettlementCurrency {
		rate, ok := n.cfg.Rates[currency]
		if !ok {
			return LedgerRecord{}, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, currency)
		}
		converted := amount.Div(rate)
		slog.Info("Converting amount",
			"amount", amount,
			"currency", currency,
			"converted", converted.StringFixed(2),
			"settlement_currency", n.cfg.SettlementCurrency,
		)
		// Every converted entry keeps its original amount in the
		// description, regardless of source currency.
		description = fmt.Sprintf("%s (Orig: %s %s)", description, amount, currency)
		amount = converted
		currency = n.cfg.SettlementCurrency
	}

	return LedgerRecord{
		Type:            "withdrawal",
		Date:            resolveDate(entry.Date, now),
		Amount:          amount.StringFixed(2),
		Description:     description,
		SourceID:        n.cfg.SourceID,
		DestinationName: destinationName(entry.Store),
		CurrencyCode:    currency,
	}, nil
}

// dateFormats are the formats accepted for entry dates, tried in order.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
}

// resolveDate returns the entry date normalized to YYYY-MM-DD, or today's
// date in UTC when the entry has none or it cannot be parsed.
func resolveDate(date string, now time.Time) string {
	date = strings.TrimSpace(date)
	for _, format := range dateFormats {
		if d, err := time.Parse(format, date); err == nil {
			return d.Format("2006-01-02")
		}
	}
	return now.UTC().Format("2006-01-02")
}

func destinationName(store string) string {
	store = strings.TrimSpace(store)
	if store == "" {
		return "Manual Entry"
	}
	return store
}
