package errors

// ErrorCode identifies a class of failure. Codes are stable strings and are
// logged as the error_code field.
type ErrorCode string

// Error is a coded error. WithMessage and WithData return copies, leaving
// the receiver untouched. Unwrap exposes the wrapped cause so HasCode, Is
// and As can walk through nested coded errors.
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
}

// Factory creates coded errors; Wrap keeps err as the cause.
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
