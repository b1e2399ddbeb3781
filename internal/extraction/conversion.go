package extraction

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// receiptPrompt is the shared prompt used by all LLM providers for
// extracting receipt data
const receiptPrompt = `You are an accountant analyzing a receipt or invoice. Carefully read all text in the image and extract the following information:

1. **Store/Business Name**: Look for the merchant name at the top of the receipt, usually the largest text or in a header.

2. **Date**: Find the transaction or purchase date and convert it to ISO 8601 format (YYYY-MM-DD).

3. **Line Items**: Every purchased item with its description and price. Extract only the numeric value of each price.

4. **Currency**: If a currency symbol or abbreviation is visible (like "den", "MKD", "EUR", the euro sign, or "$"), convert it to the 3-letter ISO code (e.g. MKD, EUR, USD). Set it per item when items differ, otherwise set the receipt-level currency. If no currency is visible, leave it null.

Return ONLY valid JSON in this exact format:
{
  "store_name": "Store Name",
  "date": "YYYY-MM-DD",
  "currency": "EUR",
  "items": [
    {"description": "Item description", "amount": 0.00, "currency": null}
  ]
}

Important:
- The date must be in YYYY-MM-DD format
- Amounts must be numbers (not strings)
- Currency codes must be 3-letter ISO codes or null
- If you cannot find a field, use null for that field
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

// pdfToImage renders the first page of a PDF as a PNG image. Receipts
// are almost always single page.
func pdfToImage(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// imageToPNG converts any supported image format to PNG
func imageToPNG(imageData []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	// HEIC/HEIF (common on iPhones) is not supported by the standard
	// image package
	if isHEICFormat(imageData) || isHEICMimeType(mimeType) {
		img, err = heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding image (supported formats: JPEG, PNG, GIF, HEIC, HEIF, PDF): %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEICFormat checks the data for an ftyp box with a HEIC-related brand
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// prepareImageData converts the input to PNG so every provider receives a
// format it understands. Returns the PNG data.
func prepareImageData(imageData []byte, contentType string) ([]byte, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	switch {
	case mimeType == "application/pdf":
		return pdfToImage(imageData)
	case mimeType == "image/png" && !isHEICFormat(imageData):
		return imageData, nil
	default:
		return imageToPNG(imageData, mimeType)
	}
}
