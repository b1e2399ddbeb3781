package extraction

import "errors"

// ErrExtractionFailed indicates that the model response could not be
// turned into a complete, valid receipt.
var ErrExtractionFailed = errors.New("could not extract receipt data")

// Item is one line item extracted from a receipt.
type Item struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency,omitempty"` // 3-letter ISO code, may be empty
}

// ReceiptData contains structured information extracted from a receipt.
type ReceiptData struct {
	StoreName string `json:"store_name"`
	Date      string `json:"date"`               // ISO 8601 format
	Currency  string `json:"currency,omitempty"` // receipt-level currency if items omit one
	Items     []Item `json:"items"`
}

// Extractor defines the interface for receipt extraction operations
type Extractor interface {
	// ExtractReceipt analyzes a receipt image/PDF and extracts its line items
	ExtractReceipt(imageData []byte, contentType string) (*ReceiptData, error)
	// Close closes the extractor and releases resources
	Close() error
}
