package currency

import (
	"fmt"
	"math"
	"strings"
)

// Currencies quoted without minor units.
var zeroDecimal = map[string]bool{
	"IDR": true,
	"JPY": true,
	"KRW": true,
	"VND": true,
	"CLP": true,
	"ISK": true,
}

// Format renders an amount as "EUR 1,234.50". Zero-decimal currencies are
// rounded; IDR keeps its local "." grouping.
func Format(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "IDR" {
		return FormatIDR(amount)
	}

	negative := amount < 0
	if negative {
		amount = -amount
	}

	var intStr, frac string
	if zeroDecimal[code] {
		intStr = fmt.Sprintf("%.0f", math.Round(amount))
	} else {
		s := fmt.Sprintf("%.2f", math.Round(amount*100)/100)
		intStr, frac = s[:len(s)-3], s[len(s)-3:]
	}

	result := addThousandsSeparator(intStr, ",") + frac
	if code != "" {
		result = code + " " + result
	}
	if negative {
		result = "-" + result
	}

	return result
}

func FormatIDR(amount float64) string {
	rounded := math.Round(amount)

	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	intStr := fmt.Sprintf("%.0f", rounded)
	formatted := addThousandsSeparator(intStr, ".")

	result := "IDR " + formatted
	if negative {
		result = "-" + result
	}

	return result
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
