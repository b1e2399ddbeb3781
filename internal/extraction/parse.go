package extraction

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// parseReceiptJSON parses the model's JSON response into a ReceiptData,
// rejecting anything structurally incomplete so a half-populated receipt
// never reaches the normalizer.
func parseReceiptJSON(text string, now time.Time) (*ReceiptData, error) {
	text = strings.TrimSpace(text)

	// Remove markdown code blocks if present
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("%w: no JSON object found in response", ErrExtractionFailed)
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("%w: invalid JSON object in response", ErrExtractionFailed)
	}
	text = text[startIdx : endIdx+1]

	var data ReceiptData
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling json: %v", ErrExtractionFailed, err)
	}

	if len(data.Items) == 0 {
		return nil, fmt.Errorf("%w: no line items in response", ErrExtractionFailed)
	}
	for i, item := range data.Items {
		if strings.TrimSpace(item.Description) == "" {
			return nil, fmt.Errorf("%w: item %d has no description", ErrExtractionFailed, i+1)
		}
		if item.Amount <= 0 {
			return nil, fmt.Errorf("%w: item %d has no amount", ErrExtractionFailed, i+1)
		}
		data.Items[i].Description = strings.TrimSpace(item.Description)
		data.Items[i].Currency = strings.ToUpper(strings.TrimSpace(item.Currency))
	}

	data.Date = normalizeDate(data.Date, now)
	data.Currency = strings.ToUpper(strings.TrimSpace(data.Currency))

	data.StoreName = strings.TrimSpace(data.StoreName)
	if data.StoreName == "" {
		data.StoreName = "Unknown Store"
	}

	return &data, nil
}

// normalizeDate converts common date formats to YYYY-MM-DD, falling back
// to today's date when the model returned nothing usable.
func normalizeDate(date string, now time.Time) string {
	date = strings.TrimSpace(date)
	formats := []string{
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
		"02-01-2006",
	}
	for _, format := range formats {
		if d, err := time.Parse(format, date); err == nil {
			return d.Format("2006-01-02")
		}
	}
	return now.UTC().Format("2006-01-02")
}
