// Package pricing holds the fixed jar-size price table and computes the
// authoritative charge for an order. Whatever amount the storefront sends
// along is advisory only; this package is the single source of truth.
package pricing

import (
	"errors"
	"math"
	"strconv"
)

// Unit prices in KES per jar size. Static for the process lifetime.
var jarPrices = map[string]float64{
	"250g": 300,
	"500g": 550,
	"1kg":  1000,
}

// ErrInvalidOrder is returned for an unknown jar size or a quantity that
// does not parse as a finite number greater than zero.
var ErrInvalidOrder = errors.New("pricing: invalid jar size or quantity")

// Calculate returns unitPrice(jarSize) * quantity.
// The quantity arrives as a form string, so it is parsed here.
func Calculate(jarSize, quantity string) (float64, error) {
	unit, ok := jarPrices[jarSize]
	if !ok {
		return 0, ErrInvalidOrder
	}

	qty, err := strconv.ParseFloat(quantity, 64)
	if err != nil || math.IsNaN(qty) || math.IsInf(qty, 0) || qty <= 0 {
		return 0, ErrInvalidOrder
	}

	return unit * qty, nil
}
