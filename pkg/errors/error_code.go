package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidSignal        ErrorCode = 102
	ErrCodeInvalidOrder         ErrorCode = 103
	ErrCodeMissingParameter     ErrorCode = 104

	// Order lifecycle errors (200-299)
	ErrCodeOrderNotFound       ErrorCode = 200
	ErrCodeOrderNotCancellable ErrorCode = 201
	ErrCodeMissingFillPrice    ErrorCode = 202

	// Position errors (300-399)
	ErrCodePositionNotFound ErrorCode = 300

	// Journal errors (400-499)
	ErrCodeJournalInitFailed   ErrorCode = 400
	ErrCodeJournalWriteFailed  ErrorCode = 401
	ErrCodeJournalQueryFailed  ErrorCode = 402
	ErrCodeJournalExportFailed ErrorCode = 403

	// Market data errors (500-599)
	ErrCodeMarketDataFetchFailed ErrorCode = 500
	ErrCodeInvalidTimeframe      ErrorCode = 501
	ErrCodeNoMarketData          ErrorCode = 502

	// Regime classification errors (600-699)
	ErrCodeClassificationFailed ErrorCode = 600

	// Strategy errors (700-799)
	ErrCodeUnknownStrategy       ErrorCode = 700
	ErrCodeStrategyConfigInvalid ErrorCode = 701
)
