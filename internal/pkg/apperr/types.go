package apperr

import "fmt"

const (
	invalidArgumentCode = "INVALID_ARGUMENT"
	notFoundCode        = "NOT_FOUND"
	internalErrorCode   = "INTERNAL_ERROR"
	validationCode      = "VALIDATION_ERROR"
	backendCode         = "BACKEND_ERROR"
	reportStoreCode     = "REPORT_STORE_ERROR"
	publishCode         = "PUBLISH_ERROR"
	conformanceCode     = "CONFORMANCE_ERROR"
)

type messageCause struct {
	Msg   string
	Cause error
}

func (e *messageCause) Message() string   { return e.Msg }
func (e *messageCause) CauseError() error { return e.Cause }
func (e *messageCause) Unwrap() error     { return e.Cause }

func formatError(code, msg string, cause error) string {
	if cause != nil {
		return fmt.Sprintf("[%s] %s: %v", code, msg, cause)
	}
	return fmt.Sprintf("[%s] %s", code, msg)
}

type InvalidArgErr struct {
	messageCause
}

func NewInvalidArgErr(msg string, cause error) *InvalidArgErr {
	return &InvalidArgErr{messageCause: messageCause{Msg: msg, Cause: cause}}
}

func (e *InvalidArgErr) Error() string { return formatError(invalidArgumentCode, e.Msg, e.Cause) }
func (e *InvalidArgErr) Code() string  { return invalidArgumentCode }

type NotFoundErr struct {
	messageCause
}

func NewNotFoundErr(msg string, cause error) *NotFoundErr {
	return &NotFoundErr{messageCause: messageCause{Msg: msg, Cause: cause}}
}

func (e *NotFoundErr) Error() string { return formatError(notFoundCode, e.Msg, e.Cause) }
func (e *NotFoundErr) Code() string  { return notFoundCode }

type InternalErr struct {
	messageCause
}

func NewInternalErr(msg string, cause error) *InternalErr {
	return &InternalErr{messageCause: messageCause{Msg: msg, Cause: cause}}
}

func (e *InternalErr) Error() string { return formatError(internalErrorCode, e.Msg, e.Cause) }
func (e *InternalErr) Code() string  { return internalErrorCode }

// ValidationErr reports a chain object that failed outbound schema
// validation. The message names the offending field, the expected shape,
// and the actual value; nested field context accumulates through Cause.
type ValidationErr struct {
	messageCause
}

func NewValidationErr(msg string, cause error) *ValidationErr {
	return &ValidationErr{messageCause: messageCause{Msg: msg, Cause: cause}}
}

func (e *ValidationErr) Error() string { return formatError(validationCode, e.Msg, e.Cause) }
func (e *ValidationErr) Code() string  { return validationCode }

type BackendErr struct {
	messageCause
}

func NewBackendErr(msg string, cause error) *BackendErr {
	return &BackendErr{messageCause: messageCause{Msg: msg, Cause: cause}}
}

func (e *BackendErr) Error() string { return formatError(backendCode, e.Msg, e.Cause) }
func (e *BackendErr) Code() string  { return backendCode }

type ReportStoreErr struct {
	messageCause
}

func NewReportStoreErr(msg string, cause error) *ReportStoreErr {
	return &ReportStoreErr{messageCause: messageCause{Msg: msg, Cause: cause}}
}

func (e *ReportStoreErr) Error() string { return formatError(reportStoreCode, e.Msg, e.Cause) }
func (e *ReportStoreErr) Code() string  { return reportStoreCode }

type PublishErr struct {
	messageCause
}

func NewPublishErr(msg string, cause error) *PublishErr {
	return &PublishErr{messageCause: messageCause{Msg: msg, Cause: cause}}
}

func (e *PublishErr) Error() string { return formatError(publishCode, e.Msg, e.Cause) }
func (e *PublishErr) Code() string  { return publishCode }

type ConformanceErr struct {
	messageCause
}

func NewConformanceErr(msg string, cause error) *ConformanceErr {
	return &ConformanceErr{messageCause: messageCause{Msg: msg, Cause: cause}}
}

func (e *ConformanceErr) Error() string { return formatError(conformanceCode, e.Msg, e.Cause) }
func (e *ConformanceErr) Code() string  { return conformanceCode }
