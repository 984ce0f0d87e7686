// Package currency formats monetary amounts for notification text.
// Amounts are decimal.Decimal throughout to avoid floating-point drift.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCode is used when a budget or user carries no currency.
const DefaultCode = "USD"

type info struct {
	symbol       string
	places       int32
	symbolBefore bool
}

var currencies = map[string]info{
	"USD": {symbol: "$", places: 2, symbolBefore: true},
	"EUR": {symbol: "€", places: 2},
	"GBP": {symbol: "£", places: 2, symbolBefore: true},
	"JPY": {symbol: "¥", places: 0, symbolBefore: true},
	"VND": {symbol: "₫", places: 0},
	"CAD": {symbol: "$", places: 2, symbolBefore: true},
	"AUD": {symbol: "$", places: 2, symbolBefore: true},
	"CHF": {symbol: "CHF ", places: 2, symbolBefore: true},
}

// IsSupported reports whether code has formatting rules.
func IsSupported(code string) bool {
	_, ok := currencies[strings.ToUpper(code)]
	return ok
}

// Format renders amount using the currency's symbol and decimal places.
// Unknown codes fall back to "<amount> <CODE>" with two decimals.
func Format(amount decimal.Decimal, code string) string {
	if code == "" {
		code = DefaultCode
	}
	code = strings.ToUpper(code)

	c, ok := currencies[code]
	if !ok {
		return amount.StringFixed(2) + " " + code
	}

	value := amount.Round(c.places).StringFixed(c.places)
	if c.symbolBefore {
		if strings.HasPrefix(value, "-") {
			return "-" + c.symbol + strings.TrimPrefix(value, "-")
		}
		return c.symbol + value
	}
	return value + c.symbol
}
