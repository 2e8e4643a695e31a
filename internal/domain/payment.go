package domain

import (
	"strings"
	"unicode"
)

type PaymentMethodType string

const PaymentMethodCard PaymentMethodType = "card"

type PaymentMethod struct {
	ID        int64             `json:"id"`
	Type      PaymentMethodType `json:"type"`
	Last4     string            `json:"last4"`
	Expiry    string            `json:"expiry"`
	IsDefault bool              `json:"is_default"`
}

type PaymentMode string

const (
	PaymentModeCard PaymentMode = "card"
	PaymentModeCash PaymentMode = "cash"
)

func ParsePaymentMode(s string) (PaymentMode, bool) {
	switch PaymentMode(s) {
	case PaymentModeCard, PaymentModeCash:
		return PaymentMode(s), true
	default:
		return "", false
	}
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

type Payment struct {
	ID            int64         `json:"id"`
	Amount        float64       `json:"amount"`
	Mode          PaymentMode   `json:"mode"`
	Status        PaymentStatus `json:"status"`
	Date          string        `json:"date"`
	AppointmentID int64         `json:"appointment_id"`
}

// AddCardRequest is the payload of POST /payment-methods.
type AddCardRequest struct {
	CardNumber string `json:"card_number"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

// Complete reports whether every field is filled in. No format checks.
func (r AddCardRequest) Complete() bool {
	return strings.TrimSpace(r.CardNumber) != "" && strings.TrimSpace(r.Expiry) != "" && strings.TrimSpace(r.CVV) != ""
}

// PaymentRequest is the payload of POST /payments.
type PaymentRequest struct {
	AppointmentID int64       `json:"appointment_id"`
	Amount        float64     `json:"amount"`
	Mode          PaymentMode `json:"mode"`
	CardID        int64       `json:"card_id,omitempty"`
}

// Last4 returns the last four digits of a card number, ignoring separators.
func Last4(cardNumber string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, cardNumber)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// SetDefault marks id as the only default method. Methods are returned in
// their original order; an unknown id clears every default.
func SetDefault(methods []PaymentMethod, id int64) []PaymentMethod {
	out := make([]PaymentMethod, len(methods))
	for i, m := range methods {
		m.IsDefault = m.ID == id
		out[i] = m
	}
	return out
}

// NewCardMethod builds the method stored for a freshly added card. It is the
// default only when it is the first method of the list.
func NewCardMethod(id int64, req AddCardRequest, existing int) PaymentMethod {
	return PaymentMethod{
		ID:        id,
		Type:      PaymentMethodCard,
		Last4:     Last4(req.CardNumber),
		Expiry:    strings.TrimSpace(req.Expiry),
		IsDefault: existing == 0,
	}
}
