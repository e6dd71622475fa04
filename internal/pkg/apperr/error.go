package apperr

// BaseError is the contract every typed error in this service satisfies.
type BaseError interface {
	error
	Code() string
	Message() string
	Cause() error
}
