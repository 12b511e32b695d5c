package fees

import "github.com/shopspring/decimal"

// ProportionalFee charges a fixed fraction of the fill's notional value,
// fee = quantity * price * rate.
type ProportionalFee struct {
	rate float64
}

// NewProportionalFee creates a proportional fee model with the given rate.
func NewProportionalFee(rate float64) *ProportionalFee {
	return &ProportionalFee{rate: rate}
}

func (f *ProportionalFee) Calculate(quantity float64, price float64) float64 {
	notional := decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(price))
	fee, _ := notional.Mul(decimal.NewFromFloat(f.rate)).Float64()

	return fee
}
