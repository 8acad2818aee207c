package sale

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

type LinePricing struct {
	Quantity        int64
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal
}

type LineTotals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

type Totals struct {
	Lines          []LineTotals
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// ComputeTotals prices every line and sums the header. Each line amount is rounded to cents
// before it is summed, so the header always equals the sum of its lines.
func ComputeTotals(lines []LinePricing) Totals {
	t := Totals{
		Lines:          make([]LineTotals, len(lines)),
		Subtotal:       decimal.Zero,
		DiscountAmount: decimal.Zero,
		TaxAmount:      decimal.Zero,
		Total:          decimal.Zero,
	}
	for i, l := range lines {
		subtotal := l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)).Round(2)
		discount := subtotal.Mul(l.DiscountPercent).Div(hundred).Round(2)
		tax := subtotal.Sub(discount).Mul(l.TaxPercent).Div(hundred).Round(2)
		lt := LineTotals{
			Subtotal:       subtotal,
			DiscountAmount: discount,
			TaxAmount:      tax,
			Total:          subtotal.Sub(discount).Add(tax),
		}
		t.Lines[i] = lt
		t.Subtotal = t.Subtotal.Add(lt.Subtotal)
		t.DiscountAmount = t.DiscountAmount.Add(lt.DiscountAmount)
		t.TaxAmount = t.TaxAmount.Add(lt.TaxAmount)
		t.Total = t.Total.Add(lt.Total)
	}
	return t
}

// ProRata is the share of lineTotal for qty out of sold units, rounded to cents.
func ProRata(lineTotal decimal.Decimal, qty, sold int64) decimal.Decimal {
	if sold == 0 {
		return decimal.Zero
	}
	return lineTotal.Mul(decimal.NewFromInt(qty)).Div(decimal.NewFromInt(sold)).Round(2)
}
