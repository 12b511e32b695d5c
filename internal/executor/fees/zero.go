package fees

// ZeroFee implements Model with no commission.
type ZeroFee struct{}

// NewZeroFee creates a fee model that always returns 0.
func NewZeroFee() *ZeroFee {
	return &ZeroFee{}
}

func (f *ZeroFee) Calculate(quantity float64, price float64) float64 {
	return 0.0
}
