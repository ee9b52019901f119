package chain

import (
	"math/big"
	"strings"
)

// ScaleDown returns value / 10^decimals as an exact rational.
func ScaleDown(value *big.Int, decimals uint8) *big.Rat {
	if value == nil {
		return new(big.Rat)
	}
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Rat).SetFrac(value, denom)
}

// FormatAmount renders r with up to prec fractional digits, trimming trailing zeros.
func FormatAmount(r *big.Rat, prec int) string {
	if r == nil {
		return "0"
	}
	text := r.FloatString(prec)
	if strings.Contains(text, ".") {
		text = strings.TrimRight(text, "0")
		text = strings.TrimSuffix(text, ".")
	}
	if text == "-0" {
		return "0"
	}
	return text
}
