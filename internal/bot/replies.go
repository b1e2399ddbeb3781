package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mjovanovik/firefly-receipt-bot/internal/expense"
	"github.com/mjovanovik/firefly-receipt-bot/internal/extraction"
	"github.com/mjovanovik/firefly-receipt-bot/internal/firefly"
)

const (
	startReply = "I am your expense tracker bot.\n" +
		"1. Send me a PHOTO of a receipt to parse it with AI.\n" +
		"2. Send me JSON text to manually add an entry."

	unknownCommandReply = "Unknown command. Send /start for usage."

	processingReply = "Processing receipt with AI..."

	unsupportedDocumentReply = "I can only read image or PDF documents."
)

// receiptReply renders a successfully submitted receipt batch.
func receiptReply(result *expense.Result) string {
	var sb strings.Builder
	sb.WriteString("Processed & Saved:\n")
	if result.Store != "" {
		fmt.Fprintf(&sb, "Store: %s\n", result.Store)
	}
	for _, record := range result.Batch.Records {
		fmt.Fprintf(&sb, "- %s: %s %s\n", record.Description, record.Amount, record.CurrencyCode)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// manualReply renders a successfully submitted manual entry.
func manualReply(result *expense.Result) string {
	record := result.Batch.Records[0]
	return fmt.Sprintf("Saved: %s - %s %s", record.Description, record.Amount, record.CurrencyCode)
}

// failureReply maps an error to a user-facing plain-text message. Every
// failure that means the expense was not recorded says so explicitly.
func failureReply(err error) string {
	switch {
	case errors.Is(err, expense.ErrInvalidInput):
		return "Invalid JSON format. Please try again."
	case errors.Is(err, expense.ErrMissingField):
		return "Error: input must include 'amount' and 'description'."
	case errors.Is(err, expense.ErrInvalidAmount):
		return "Error: 'amount' must be a positive number."
	case errors.Is(err, expense.ErrUnsupportedCurrency):
		return "Error: no conversion rate is configured for that currency. The expense was NOT saved."
	case errors.Is(err, extraction.ErrExtractionFailed):
		return "Failed to process receipt. Ensure the photo is clear."
	case errors.Is(err, firefly.ErrCredentialsMissing):
		return "Ledger credentials are missing. The expense was NOT saved."
	}

	var remoteErr *firefly.RemoteError
	if errors.As(err, &remoteErr) {
		return fmt.Sprintf("The ledger rejected the expense (status %d). It was NOT saved.", remoteErr.Status)
	}
	return "An error occurred. The expense was NOT saved."
}
