package types

import "github.com/moznion/go-optional"

type ExecutionStatus string

const (
	// ExecutionStatusRejected means the signal failed validation. No order was created.
	ExecutionStatusRejected ExecutionStatus = "REJECTED"
	// ExecutionStatusHandled means a HOLD signal was acknowledged. No order was created.
	ExecutionStatusHandled ExecutionStatus = "HANDLED"
	// ExecutionStatusSubmitted means the order is resting at the venue unfilled.
	ExecutionStatusSubmitted ExecutionStatus = "SUBMITTED"
	// ExecutionStatusFilled means the order filled and the position ledger was updated.
	ExecutionStatusFilled ExecutionStatus = "FILLED"
)

// ExecutionResult is the value returned by ExecuteSignal. Business-rule
// failures are represented here, never as errors.
type ExecutionResult struct {
	// OrderID is empty for REJECTED and HANDLED outcomes.
	OrderID optional.Option[string] `yaml:"order_id" json:"order_id"`
	Status  ExecutionStatus         `yaml:"status" json:"status"`
	// Reason explains rejections and HOLD acknowledgements.
	Reason string `yaml:"reason" json:"reason"`
}

type CancelStatus string

const (
	CancelStatusCancelled      CancelStatus = "CANCELLED"
	CancelStatusNotFound       CancelStatus = "NOT_FOUND"
	CancelStatusNotCancellable CancelStatus = "NOT_CANCELLABLE"
)

// CancelResult is the value returned by CancelOrder.
type CancelResult struct {
	OrderID string       `yaml:"order_id" json:"order_id"`
	Status  CancelStatus `yaml:"status" json:"status"`
	// OrderStatus echoes the order's current lifecycle status when the order
	// exists.
	OrderStatus optional.Option[OrderStatus] `yaml:"order_status" json:"order_status"`
	Reason      string                       `yaml:"reason" json:"reason"`
}
