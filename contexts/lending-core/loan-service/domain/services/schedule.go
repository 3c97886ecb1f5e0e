package services

import "github.com/shopspring/decimal"

var one = decimal.NewFromInt(1)

// MonthlyPayment derives the fixed annuity installment for a loan:
//
//	P * r * (1+r)^n / ((1+r)^n - 1)
//
// where r is the monthly rate and n the term in months. A zero rate degrades
// to straight-line principal division. The result is rounded to cents with
// banker's rounding.
func MonthlyPayment(principal decimal.Decimal, annualRatePercent float64, termMonths int) decimal.Decimal {
	if termMonths <= 0 {
		return decimal.Zero
	}
	months := decimal.NewFromInt(int64(termMonths))
	if annualRatePercent == 0 {
		return principal.Div(months).RoundBank(2)
	}

	monthlyRate := decimal.NewFromFloat(annualRatePercent).Div(decimal.NewFromInt(1200))
	growth := one.Add(monthlyRate).Pow(months)
	return principal.
		Mul(monthlyRate).
		Mul(growth).
		Div(growth.Sub(one)).
		RoundBank(2)
}
