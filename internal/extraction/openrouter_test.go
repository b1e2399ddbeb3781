package extraction

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// onePixelPNG returns a minimal valid PNG so image preparation succeeds
func onePixelPNG() []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	return buf.Bytes()
}

var _ = Describe("OpenRouter", func() {
	var (
		server       *httptest.Server
		responseBody string
		status       int
		gotPath      string
		gotAuth      string
		gotRequest   map[string]any
		extractor    *OpenRouter
		data         *ReceiptData
		err          error
	)

	BeforeEach(func() {
		status = http.StatusOK
		gotRequest = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &gotRequest)
			w.WriteHeader(status)
			w.Write([]byte(responseBody))
		}))

		var initErr error
		extractor, initErr = NewOpenRouterWithBaseURL(server.URL, "test-key", "test-model")
		Expect(initErr).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		data, err = extractor.ExtractReceipt(onePixelPNG(), "image/png")
	})

	When("the model returns valid receipt JSON", func() {
		BeforeEach(func() {
			content := `{"store_name": "Cafe", "date": "2024-01-15", "items": [{"description": "Coffee", "amount": 2.5}]}`
			payload, _ := json.Marshal(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"content": content}},
				},
			})
			responseBody = string(payload)
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should call the chat completions endpoint with bearer auth", func() {
			Expect(gotPath).To(Equal("/chat/completions"))
			Expect(gotAuth).To(Equal("Bearer test-key"))
		})

		It("should send the configured model", func() {
			Expect(gotRequest["model"]).To(Equal("test-model"))
		})

		It("should return the parsed receipt", func() {
			Expect(data.StoreName).To(Equal("Cafe"))
			Expect(data.Items).To(HaveLen(1))
		})
	})

	When("the API returns an error status", func() {
		BeforeEach(func() {
			status = http.StatusTooManyRequests
			responseBody = `{"error": "rate limited"}`
		})

		It("should surface the status and body", func() {
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("429"))
			Expect(err.Error()).To(ContainSubstring("rate limited"))
		})
	})

	When("the response has no choices", func() {
		BeforeEach(func() {
			responseBody = `{"choices": []}`
		})

		It("should fail extraction", func() {
			Expect(err).To(MatchError(ErrExtractionFailed))
		})
	})

	When("the model returns garbage", func() {
		BeforeEach(func() {
			payload, _ := json.Marshal(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"content": "sorry, I cannot read this"}},
				},
			})
			responseBody = string(payload)
		})

		It("should fail extraction", func() {
			Expect(err).To(MatchError(ErrExtractionFailed))
		})
	})
})

var _ = Describe("NewOpenRouter", func() {
	It("should require an API key", func() {
		_, err := NewOpenRouter("", "test-model")
		Expect(err).To(HaveOccurred())
	})
})
