package expense_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/mjovanovik/firefly-receipt-bot/internal/expense"
)

var _ = Describe("ParseManualEntry", func() {
	var (
		text  string
		entry expense.Entry
		err   error
	)

	JustBeforeEach(func() {
		entry, err = expense.ParseManualEntry(text)
	})

	When("parsing a full JSON object", func() {
		BeforeEach(func() {
			text = `{"amount": 5.00, "description": "Coffee", "currency": "eur", "date": "2024-01-15", "store": "Cafe"}`
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should populate every field", func() {
			Expect(entry.Description).To(Equal("Coffee"))
			Expect(entry.Amount).To(Equal(decimal.RequireFromString("5.00")))
			Expect(entry.Currency).To(Equal("EUR"))
			Expect(entry.Date).To(Equal("2024-01-15"))
			Expect(entry.Store).To(Equal("Cafe"))
		})
	})

	When("parsing bare key/value pairs without braces", func() {
		BeforeEach(func() {
			text = `"amount": "5.00", "description": "Coffee"`
		})

		It("should wrap the input in braces and parse it", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Description).To(Equal("Coffee"))
		})

		It("should accept a quoted numeric amount", func() {
			Expect(entry.Amount).To(Equal(decimal.RequireFromString("5.00")))
		})
	})

	When("the description is missing", func() {
		BeforeEach(func() {
			text = `{"amount": 5.00}`
		})

		It("should reject the input", func() {
			Expect(err).To(MatchError(expense.ErrMissingField))
		})
	})

	When("the amount is missing", func() {
		BeforeEach(func() {
			text = `{"description": "Coffee"}`
		})

		It("should reject the input", func() {
			Expect(err).To(MatchError(expense.ErrMissingField))
		})
	})

	When("the amount is null", func() {
		BeforeEach(func() {
			text = `{"amount": null, "description": "Coffee"}`
		})

		It("should reject the input", func() {
			Expect(err).To(MatchError(expense.ErrMissingField))
		})
	})

	When("the amount is not numeric", func() {
		BeforeEach(func() {
			text = `{"amount": "five", "description": "Coffee"}`
		})

		It("should reject the input", func() {
			Expect(err).To(MatchError(expense.ErrInvalidAmount))
		})
	})

	When("the input is not valid JSON", func() {
		BeforeEach(func() {
			text = `amount 5 description Coffee`
		})

		It("should reject the input", func() {
			Expect(err).To(MatchError(expense.ErrInvalidInput))
		})
	})
})

var _ = Describe("ParseRates", func() {
	It("should parse comma-separated pairs", func() {
		rates, err := expense.ParseRates("MKD=61.5,USD=1.09")
		Expect(err).NotTo(HaveOccurred())
		Expect(rates).To(HaveLen(2))
		Expect(rates["MKD"]).To(Equal(decimal.RequireFromString("61.5")))
		Expect(rates["USD"]).To(Equal(decimal.RequireFromString("1.09")))
	})

	It("should uppercase currency codes", func() {
		rates, err := expense.ParseRates("mkd=61.5")
		Expect(err).NotTo(HaveOccurred())
		Expect(rates).To(HaveKey("MKD"))
	})

	It("should tolerate whitespace around pairs", func() {
		rates, err := expense.ParseRates(" MKD = 61.5 , USD = 1.09 ")
		Expect(err).NotTo(HaveOccurred())
		Expect(rates).To(HaveLen(2))
	})

	It("should return an empty map for empty input", func() {
		rates, err := expense.ParseRates("")
		Expect(err).NotTo(HaveOccurred())
		Expect(rates).To(BeEmpty())
	})

	It("should reject pairs without an equals sign", func() {
		_, err := expense.ParseRates("MKD")
		Expect(err).To(HaveOccurred())
	})

	It("should reject non-numeric rates", func() {
		_, err := expense.ParseRates("MKD=sixty")
		Expect(err).To(HaveOccurred())
	})

	It("should reject non-positive rates", func() {
		_, err := expense.ParseRates("MKD=0")
		Expect(err).To(HaveOccurred())
	})
})
