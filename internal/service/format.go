package service

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatRupiah renders an amount as whole Rupiah with dot grouping, e.g. Rp1.234.568.
func FormatRupiah(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	if rounded.IsNegative() {
		return "-Rp" + humanize.FormatFloat("#.###,", rounded.Neg().InexactFloat64())
	}
	return "Rp" + humanize.FormatFloat("#.###,", rounded.InexactFloat64())
}
