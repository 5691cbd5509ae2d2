package trader

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidStep     = errors.New("step size must be > 0")
	ErrInvalidPrice    = errors.New("entry price must be > 0")
	ErrInvalidNotional = errors.New("notional must be > 0")
)

// RoundStepDecimal rounds value to the nearest multiple of step.
// Ties go to the even multiple (banker's rounding). The arithmetic is done
// in decimal so the result is an exact multiple of step.
func RoundStepDecimal(value, step float64) (decimal.Decimal, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidStep, step)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return decimal.Zero, fmt.Errorf("cannot round %v", value)
	}
	s := decimal.NewFromFloat(step)
	steps := decimal.NewFromFloat(value).Div(s).RoundBank(0)
	return steps.Mul(s), nil
}

// RoundStep is RoundStepDecimal for callers that want a float.
func RoundStep(value, step float64) (float64, error) {
	d, err := RoundStepDecimal(value, step)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// ComputeQuantity sizes an order from a fixed notional:
// quantity = round_step(notional / entry, step).
// A zero result is returned without error; the caller decides how to reject it.
func ComputeQuantity(entry, notional, step float64) (decimal.Decimal, error) {
	if !(entry > 0) || math.IsInf(entry, 0) {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidPrice, entry)
	}
	if !(notional > 0) || math.IsInf(notional, 0) {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidNotional, notional)
	}
	return RoundStepDecimal(notional/entry, step)
}
