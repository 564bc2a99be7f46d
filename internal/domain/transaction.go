package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	// Credit is money coming into the account.
	Credit TransactionType = "credit"
	// Debit is money leaving the account.
	Debit TransactionType = "debit"
)

// Normalize lowercases and trims the type so "DEBIT " and "debit" compare equal.
func (t TransactionType) Normalize() TransactionType {
	return TransactionType(strings.ToLower(strings.TrimSpace(string(t))))
}

// DefaultCurrency is the display currency used until a statement says otherwise.
const DefaultCurrency = "USD"

// Transaction represents one statement line as returned by the analytics backend.
// Values are never patched in place; the dashboard replaces the whole list.
type Transaction struct {
	Date        Date             `json:"date"`               // calendar date, time of day dropped
	Description string           `json:"description"`        // raw statement text
	Amount      decimal.Decimal  `json:"amount"`             // always non-negative, direction is in Type
	Type        TransactionType  `json:"type"`               // "credit" or "debit"
	Category    string           `json:"category,omitempty"` // assigned by the backend categorizer
	Currency    string           `json:"currency,omitempty"` // ISO code, may be empty
	Balance     *decimal.Decimal `json:"balance,omitempty"`  // running balance when the statement has one
}

// Date is a calendar date. The backend serializes dates either as
// "2024-01-15" or as a full ISO datetime "2024-01-15T00:00:00".
type Date struct {
	civil.Date
}

// NewDate builds a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{civil.Date{Year: year, Month: time.Month(month), Day: day}}
}

// ParseDate parses "YYYY-MM-DD", ignoring any time suffix.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		s = s[:10]
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return Date{}, fmt.Errorf("ParseDate: %w", err)
	}
	return Date{d}, nil
}

// UnmarshalJSON accepts a date or datetime string.
func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON writes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Date.String())
}
