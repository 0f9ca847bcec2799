package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents an ISO 4217 currency code.
type Currency string

const (
	USD Currency = "USD" // US Dollar (default)
	EUR Currency = "EUR" // Euro
	GBP Currency = "GBP" // British Pound
	TRY Currency = "TRY" // Turkish Lira
	CNY Currency = "CNY" // Chinese Yuan
	JPY Currency = "JPY" // Japanese Yen
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = USD

func (c Currency) String() string {
	return string(c)
}

// Money is an immutable monetary amount in a single currency. All arithmetic
// returns new values; operations that mix currencies fail rather than coerce.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a Money with the given amount and currency.
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromFloat creates Money from a float64 value.
func NewMoneyFromFloat(amount float64, currency Currency) (Money, error) {
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

// NewMoneyFromString creates Money from a decimal string.
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d, currency)
}

// Zero returns a zero amount in the given currency.
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsPositive() bool        { return m.amount.IsPositive() }
func (m Money) IsNegative() bool        { return m.amount.IsNegative() }

// SameCurrency reports whether both values share a currency.
func (m Money) SameCurrency(other Money) bool {
	return m.currency == other.currency
}

func (m Money) guardCurrency(op string, other Money) error {
	if m.currency != other.currency {
		return fmt.Errorf("cannot %s money with different currencies: %s and %s", op, m.currency, other.currency)
	}
	return nil
}

// with returns a copy of m holding amount, preserving the currency.
func (m Money) with(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: m.currency}
}

// Add returns the sum. Fails when currencies differ.
func (m Money) Add(other Money) (Money, error) {
	if err := m.guardCurrency("add", other); err != nil {
		return Money{}, err
	}
	return m.with(m.amount.Add(other.amount)), nil
}

// MustAdd is Add that panics on currency mismatch.
func (m Money) MustAdd(other Money) Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Subtract returns the difference. Fails when currencies differ.
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.guardCurrency("subtract", other); err != nil {
		return Money{}, err
	}
	return m.with(m.amount.Sub(other.amount)), nil
}

// MustSubtract is Subtract that panics on currency mismatch.
func (m Money) MustSubtract(other Money) Money {
	result, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Multiply scales the amount by factor.
func (m Money) Multiply(factor decimal.Decimal) Money {
	return m.with(m.amount.Mul(factor))
}

// Negate reverses the sign.
func (m Money) Negate() Money {
	return m.with(m.amount.Neg())
}

// Abs returns the absolute value.
func (m Money) Abs() Money {
	return m.with(m.amount.Abs())
}

// Round rounds to the given number of decimal places.
func (m Money) Round(places int32) Money {
	return m.with(m.amount.Round(places))
}

// Equals reports whether amount and currency both match.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// compare returns the sign of m relative to other, failing on mixed currencies.
func (m Money) compare(other Money) (int, error) {
	if err := m.guardCurrency("compare", other); err != nil {
		return 0, err
	}
	return m.amount.Cmp(other.amount), nil
}

func (m Money) LessThan(other Money) (bool, error) {
	cmp, err := m.compare(other)
	return cmp < 0, err
}

func (m Money) LessThanOrEqual(other Money) (bool, error) {
	cmp, err := m.compare(other)
	return cmp <= 0, err
}

func (m Money) GreaterThan(other Money) (bool, error) {
	cmp, err := m.compare(other)
	return cmp > 0, err
}

func (m Money) GreaterThanOrEqual(other Money) (bool, error) {
	cmp, err := m.compare(other)
	return cmp >= 0, err
}

// Min returns the smaller of a and b. Fails when currencies differ.
func Min(a, b Money) (Money, error) {
	less, err := a.LessThanOrEqual(b)
	if err != nil {
		return Money{}, err
	}
	if less {
		return a, nil
	}
	return b, nil
}

// String formats the amount with two decimal places and the currency code.
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}

// Float64 returns the amount as a float64 (may lose precision).
func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

type moneyJSON struct {
	Amount   string   `json:"amount"`
	Currency Currency `json:"currency"`
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		Amount:   m.amount.String(),
		Currency: m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler for API request binding.
// Fields are assigned directly without the NewMoney factory; an empty
// currency surfaces as an error on the first arithmetic operation.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(v.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.amount = amount
	m.currency = v.Currency
	return nil
}

// Value implements driver.Valuer. Only the amount is stored; the currency
// lives in its own column.
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan implements sql.Scanner. Only the amount is scanned; the currency
// defaults to DefaultCurrency unless already set by the caller.
func (m *Money) Scan(value any) error {
	if value == nil {
		m.amount = decimal.Zero
		m.currency = DefaultCurrency
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}

	amount, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	m.amount = amount
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}

// CalculatePercentage returns percent of the amount.
func (m Money) CalculatePercentage(percent decimal.Decimal) Money {
	return m.with(m.amount.Mul(percent).Div(decimal.NewFromInt(100)))
}

// ApplyDiscount reduces the amount by a percentage discount.
func (m Money) ApplyDiscount(discountPercent decimal.Decimal) Money {
	discount := m.CalculatePercentage(discountPercent)
	return m.with(m.amount.Sub(discount.amount))
}
