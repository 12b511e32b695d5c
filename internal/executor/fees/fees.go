// Package fees models the commission charged by the simulated venue on each fill.
package fees

type Model interface {
	// Calculate returns the fee in quote currency for a fill of the given
	// quantity at the given price.
	Calculate(quantity float64, price float64) float64
}

type ModelName string

const (
	ModelProportional ModelName = "proportional"
	ModelZero         ModelName = "zero"
)

var AllModels = []any{
	ModelProportional,
	ModelZero,
}

// GetFeeModel returns the fee model for the given name. Unknown names default
// to zero fees.
func GetFeeModel(name ModelName, rate float64) Model {
	switch name {
	case ModelProportional:
		return NewProportionalFee(rate)
	case ModelZero:
		return NewZeroFee()
	default:
		return NewZeroFee()
	}
}
