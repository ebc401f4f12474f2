package earnings

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var inr = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders amount in whole rupees with Indian digit grouping,
// e.g. 1234567.6 -> "₹12,34,568".
func FormatINR(amount float64) string {
	return "₹" + GroupIndian(amount)
}

// GroupIndian rounds amount half away from zero and groups the digits the
// en-IN way: the last three together, then pairs.
func GroupIndian(amount float64) string {
	n := math.Round(Amount(amount))
	return inr.Sprint(number.Decimal(n, number.MaxFractionDigits(0)))
}
