package expense

import "github.com/shopspring/decimal"

// Entry is a single expense to record, produced by receipt extraction or
// by manual text input. An Entry is never mutated after construction.
type Entry struct {
	Description string
	Amount      decimal.Decimal
	Currency    string // 3-letter ISO code; empty means the configured default
	Date        string // YYYY-MM-DD; empty means today
	Store       string
}

// LedgerRecord is one transaction split in the ledger API's wire format.
type LedgerRecord struct {
	Type            string `json:"type"`
	Date            string `json:"date"`
	Amount          string `json:"amount"` // fixed two decimal places
	Description     string `json:"description"`
	SourceID        string `json:"source_id"`
	DestinationName string `json:"destination_name"`
	CurrencyCode    string `json:"currency_code"`
}

// SubmissionBatch is an ordered sequence of records submitted to the
// ledger in a single request. GroupTitle is set only when the batch holds
// more than one record.
type SubmissionBatch struct {
	Records    []LedgerRecord
	GroupTitle string
}
