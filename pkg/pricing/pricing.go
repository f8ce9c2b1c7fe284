// Package pricing derives the checkout figures for a cart. Amounts keep full
// decimal precision; rounding to cents happens only in FormatUSD.
package pricing

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Skotchmaster/artisan_shop/pkg/cart"
)

var (
	FlatShipping = decimal.NewFromInt(10)
	TaxRate      = decimal.RequireFromString("0.08")
)

type Summary struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shipping"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// FromSubtotal applies the flat shipping rate and the 8% tax. Shipping is
// charged even for an empty cart.
func FromSubtotal(subtotal decimal.Decimal) Summary {
	tax := subtotal.Mul(TaxRate)
	return Summary{
		Subtotal:   subtotal,
		Shipping:   FlatShipping,
		Tax:        tax,
		GrandTotal: subtotal.Add(FlatShipping).Add(tax),
	}
}

func Summarize(items []cart.LineItem) Summary {
	return FromSubtotal(cart.Total(items))
}

var (
	usd      = message.NewPrinter(language.AmericanEnglish)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// FormatUSD renders an amount as US dollars, e.g. $1,234.50. The amount is
// rounded half away from zero to cents and never passes through float64.
func FormatUSD(d decimal.Decimal) string {
	r := d.Round(2)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Neg()
	}
	whole := r.Truncate(0)
	cents := r.Sub(whole).Shift(2).IntPart()
	return sign + "$" + groupDollars(whole) + usd.Sprintf(".%02d", cents)
}

// groupDollars adds thousands separators to a non-negative whole amount.
func groupDollars(whole decimal.Decimal) string {
	if whole.LessThanOrEqual(maxInt64) {
		return usd.Sprintf("%d", whole.IntPart())
	}
	digits := whole.String()
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	var b strings.Builder
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

type Display struct {
	Subtotal   string `json:"subtotal"`
	Shipping   string `json:"shipping"`
	Tax        string `json:"tax"`
	GrandTotal string `json:"grand_total"`
}

func (s Summary) Display() Display {
	return Display{
		Subtotal:   FormatUSD(s.Subtotal),
		Shipping:   FormatUSD(s.Shipping),
		Tax:        FormatUSD(s.Tax),
		GrandTotal: FormatUSD(s.GrandTotal),
	}
}
