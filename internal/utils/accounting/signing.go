package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Direction indicates whether an entry moves money into or out of an account.
type Direction string

const (
	Inflow  Direction = "INFLOW"
	Outflow Direction = "OUTFLOW"
)

// Classify derives the direction and unsigned magnitude from a signed amount.
func Classify(signed decimal.Decimal) (Direction, decimal.Decimal) {
	if signed.IsNegative() {
		return Outflow, signed.Neg()
	}
	return Inflow, signed
}

// ValidateAmount checks an entry amount: non-zero, at most 2 decimal digits.
func ValidateAmount(signed decimal.Decimal) error {
	if signed.IsZero() {
		return fmt.Errorf("entry amount must not be zero")
	}
	if signed.Exponent() < -2 {
		return fmt.Errorf("entry amount %s exceeds 2-digit decimal precision", signed)
	}
	return nil
}
