package domain

import (
	"errors"
	"fmt"
)

// Operation error codes. They are stable and part of the public contract.
const (
	CodeSampleData      = 1
	CodeSurveyResponses = 2
	CodeSendSMS         = 3
	CodeNotFound        = 4
	CodeValidNumber     = 5
	CodeVariants        = 6
	CodeSearch          = 7
)

// Platform messages. The vendor tag prefixes every platform-originated message.
const (
	VendorTag         = "私有平台："
	MessageSuccess    = "success"
	MessageUnknown    = "未知异常"
	MessageMalformed  = "返回数据格式异常"
	networkMessageFmt = "发生网络异常（%d）"
)

// NetworkMessage renders the vendor-tagged transport failure message
func NetworkMessage(status int) string {
	return VendorTag + fmt.Sprintf(networkMessageFmt, status)
}

// ServiceError is a business or transport failure of one operation. It is an
// outcome, not a bug: callers switch on Code.
type ServiceError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	return fmt.Sprintf("code %d: %s", e.Code, e.Message)
}

// NewServiceError creates a new ServiceError
func NewServiceError(code int, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// ValidationError represents input validation errors. It is returned before
// any network call is made.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// ConfigError reports an invalid configuration value
type ConfigError struct {
	Key    string
	Reason string
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Key, e.Reason)
}

// AsServiceError unwraps err into a *ServiceError
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsValidationError reports whether err is, or wraps, a *ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
