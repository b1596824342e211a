package utils

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// RoundCents rounds a currency amount to two decimal places
func RoundCents(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value).Round(2)
}

// FormatBRL formats an amount the way statements print it, e.g. "R$\u00a01.506,07"
func FormatBRL(value float64) string {
	return FormatBRLDecimal(RoundCents(value))
}

// FormatBRLDecimal formats an already rounded amount in pt-BR notation.
// The currency symbol is followed by a no-break space.
func FormatBRLDecimal(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	p := message.NewPrinter(language.BrazilianPortuguese)
	return sign + "R$\u00a0" + p.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
}

// FormatPercent formats a decimal fraction as a percentage with four places, e.g. "0,3715%"
func FormatPercent(fraction float64) string {
	pct := decimal.NewFromFloat(fraction).Mul(decimal.NewFromInt(100)).Round(4)
	p := message.NewPrinter(language.BrazilianPortuguese)
	return p.Sprint(number.Decimal(pct.InexactFloat64(), number.Scale(4))) + "%"
}

// FormatDate formats a calendar date as dd/mm/yyyy, or "-" when unset
func FormatDate(d civil.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.In(time.UTC).Format("02/01/2006")
}
