package expense

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mjovanovik/firefly-receipt-bot/internal/extraction"
)

// Ledger submits a normalized batch to the ledger service.
type Ledger interface {
	SubmitTransactions(batch *SubmissionBatch) error
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Result summarizes a processed submission for reply rendering.
type Result struct {
	Store string
	Batch *SubmissionBatch
}

// Service turns inbound images and text into submitted ledger batches.
type Service struct {
	extractor  extraction.Extractor
	ledger     Ledger
	normalizer *Normalizer
	timeSource TimeSource
}

// NewService creates a new Service with the real clock
func NewService(extractor extraction.Extractor, ledger Ledger, normalizer *Normalizer) *Service {
	return NewServiceWithDeps(extractor, ledger, normalizer, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with a custom time source for testing
func NewServiceWithDeps(extractor extraction.Extractor, ledger Ledger, normalizer *Normalizer, timeSrc TimeSource) *Service {
	return &Service{
		extractor:  extractor,
		ledger:     ledger,
		normalizer: normalizer,
		timeSource: timeSrc,
	}
}

// ProcessImage extracts a receipt from image data, normalizes its line
// items and submits them as one batch.
func (s *Service) ProcessImage(imageData []byte, contentType string) (*Result, error) {
	receipt, err := s.extractor.ExtractReceipt(imageData, contentType)
	if err != nil {
		slog.Error("Failed to extract receipt",
			"content_type", contentType,
			"image_size", len(imageData),
			"error", err,
		)
		return nil, fmt.Errorf("extracting receipt: %w", err)
	}

	entries := entriesFromReceipt(receipt)
	return s.submit(receipt.StoreName, entries)
}

// ProcessText parses manual text input as a single expense entry,
// normalizes it and submits it.
func (s *Service) ProcessText(text string) (*Result, error) {
	entry, err := ParseManualEntry(text)
	if err != nil {
		slog.Error("Failed to parse manual input", "error", err)
		return nil, err
	}
	return s.submit(entry.Store, []Entry{entry})
}

func (s *Service) submit(store string, entries []Entry) (*Result, error) {
	batch, err := s.normalizer.Normalize(entries, s.timeSource.Now())
	if err != nil {
		return nil, fmt.Errorf("normalizing entries: %w", err)
	}
	if err := s.ledger.SubmitTransactions(batch); err != nil {
		return nil, fmt.Errorf("submitting transactions: %w", err)
	}
	return &Result{Store: store, Batch: batch}, nil
}

// entriesFromReceipt converts extracted receipt data into expense
// entries. Items without their own currency inherit the receipt-level
// currency; the receipt's date and store apply to every item.
func entriesFromReceipt(receipt *extraction.ReceiptData) []Entry {
	entries := make([]Entry, 0, len(receipt.Items))
	for _, item := range receipt.Items {
		currency := item.Currency
		if currency == "" {
			currency = receipt.Currency
		}
		entries = append(entries, Entry{
			Description: item.Description,
			Amount:      decimal.NewFromFloat(item.Amount),
			Currency:    currency,
			Date:        receipt.Date,
			Store:       receipt.StoreName,
		})
	}
	return entries
}
