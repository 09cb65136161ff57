package models

import (
	"database/sql/driver"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Cents is an amount of Demoday funding in hundredths of a unit
type Cents int64

// CentsPerUnit is the number of cents in one funding unit
const CentsPerUnit = 100

// MaxAngelBalance is the largest grant whose full payout at the top multiplier still fits in int64
const MaxAngelBalance Cents = math.MaxInt64 / Cents(TopMultiplier)

// UnitsToCents converts whole funding units to cents
func UnitsToCents(units int64) Cents {
	return Cents(units * CentsPerUnit)
}

// AngelBalanceFromUnits converts a configured grant to cents.
// It reports false for non-positive grants and grants above MaxAngelBalance.
func AngelBalanceFromUnits(units int64) (Cents, bool) {
	if units <= 0 || units > int64(MaxAngelBalance/CentsPerUnit) {
		return 0, false
	}
	return UnitsToCents(units), true
}

// CentsFromDecimal converts a decimal amount into cents.
// It reports false when the amount has more than 2 fractional digits or does not fit into cents.
func CentsFromDecimal(d decimal.Decimal) (Cents, bool) {
	if !d.Equal(d.Truncate(2)) {
		return 0, false
	}
	shifted := d.Shift(2).BigInt()
	if !shifted.IsInt64() {
		return 0, false
	}
	return Cents(shifted.Int64()), true
}

// Decimal returns the amount in funding units
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String formats the amount with exactly two fractional digits
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// MarshalJSON encodes the amount as a decimal string in funding units
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON accepts a decimal string or number in funding units
func (c *Cents) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	cents, ok := CentsFromDecimal(d)
	if !ok {
		return fmt.Errorf("amount %s has more than 2 decimal places", d.String())
	}
	*c = cents
	return nil
}

// Value stores the amount as a BIGINT of cents
func (c Cents) Value() (driver.Value, error) {
	return int64(c), nil
}

// Scan reads a BIGINT of cents
func (c *Cents) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*c = Cents(v)
	case int32:
		*c = Cents(v)
	case nil:
		*c = 0
	default:
		return fmt.Errorf("cannot scan %T into Cents", src)
	}
	return nil
}
