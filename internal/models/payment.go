package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how the customer pays
type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentPayPal PaymentMethod = "paypal"
	PaymentFPX    PaymentMethod = "fpx"
	PaymentTNG    PaymentMethod = "tng"
)

// PaymentMethods lists the supported methods in display order
var PaymentMethods = []PaymentMethod{PaymentCard, PaymentPayPal, PaymentFPX, PaymentTNG}

// Label returns the name printed on the order confirmation
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCard:
		return "Credit Card"
	case PaymentPayPal:
		return "PayPal"
	case PaymentFPX:
		return "FPX Online Banking"
	case PaymentTNG:
		return "Touch 'n Go eWallet"
	default:
		return string(m)
	}
}

// IsValid reports whether the method is one we accept
func (m PaymentMethod) IsValid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// CardDetails holds what the card form collects
type CardDetails struct {
	CardNumber     string `json:"cardNumber"`
	ExpiryDate     string `json:"expiryDate"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholderName"`
}

var (
	cardNumberRegex = regexp.MustCompile(`^\d{16}$`)
	// MM/YY
	cardExpiryRegex = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cardCVVRegex    = regexp.MustCompile(`^\d{3,4}$`)
)

// Validate returns field errors for the card form
func (c CardDetails) Validate() ValidationErrors {
	errs := ValidationErrors{}

	number := strings.ReplaceAll(c.CardNumber, " ", "")
	if !cardNumberRegex.MatchString(number) {
		errs.Add("cardNumber", "Please enter a valid card number")
	}

	if len(c.ExpiryDate) != 5 || !cardExpiryRegex.MatchString(c.ExpiryDate) {
		errs.Add("expiryDate", "Please enter a valid expiry date")
	}

	if !cardCVVRegex.MatchString(c.CVV) {
		errs.Add("cvv", "Please enter a valid CVV")
	}

	if strings.TrimSpace(c.CardholderName) == "" {
		errs.Add("cardholderName", "Please enter the cardholder name")
	}

	return errs
}

// PaymentResult represents the outcome of a processed payment
type PaymentResult struct {
	PaymentID     string          `json:"paymentId"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transactionId"`
	ProcessedAt   time.Time       `json:"processedAt"`
}
