package util

import "github.com/shopspring/decimal"

// OrZero treats an absent sum as zero.
func OrZero(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}

// SumOrZero adds sums from the store, counting absent ones as zero.
// Every aggregate goes through here before any arithmetic.
func SumOrZero(values ...decimal.NullDecimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(OrZero(v))
	}
	return total
}

// FloorZero returns v, or zero when v is negative.
func FloorZero(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
