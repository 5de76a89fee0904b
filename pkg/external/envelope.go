package external

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/openbge-client/internal/domain"
)

// Statuses synthesized for failures that carry no HTTP response
const (
	StatusDefault = http.StatusInternalServerError
	StatusTimeout = http.StatusRequestTimeout
)

// RawResponse is what the transport got back from the platform
type RawResponse struct {
	StatusCode int
	Body       []byte
}

// Envelope is the uniform outcome of one platform call
type Envelope struct {
	IsError bool
	Message string
	Result  json.RawMessage // set only on success
}

// businessResponse is the platform's response body
type businessResponse struct {
	Code json.RawMessage `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// Normalize classifies a transport outcome. It never fails: every input maps
// to an envelope.
func Normalize(resp *RawResponse, err error) Envelope {
	if err != nil {
		return transportFailure(statusOf(resp, err))
	}
	if resp == nil {
		return transportFailure(StatusDefault)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return transportFailure(resp.StatusCode)
	}

	var body businessResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return Envelope{IsError: true, Message: domain.VendorTag + domain.MessageUnknown}
	}

	if isSuccessCode(body.Code) {
		return Envelope{Message: domain.MessageSuccess, Result: body.Data}
	}

	msg := body.Msg
	if msg == "" {
		msg = domain.MessageUnknown
	}
	return Envelope{IsError: true, Message: domain.VendorTag + msg}
}

// Err converts a failed envelope into a ServiceError with the operation code
func (e Envelope) Err(code int) *domain.ServiceError {
	if !e.IsError {
		return nil
	}
	return domain.NewServiceError(code, e.Message)
}

func transportFailure(status int) Envelope {
	return Envelope{IsError: true, Message: domain.NetworkMessage(status)}
}

// statusOf resolves the status reported for a failed call. Timeouts always
// map to 408 regardless of the underlying cause.
func statusOf(resp *RawResponse, err error) int {
	if IsTimeout(err) {
		return StatusTimeout
	}

	var se *StatusError
	if errors.As(err, &se) && se.StatusCode > 0 {
		return se.StatusCode
	}
	if resp != nil && resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode
	}
	return StatusDefault
}

// IsTimeout reports whether err describes a timeout
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

// isSuccessCode accepts 0 sent as a number or numeric string
func isSuccessCode(raw json.RawMessage) bool {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" {
		return false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil && n == 0
}

// StatusError carries an HTTP status out of the transport
type StatusError struct {
	StatusCode int
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return "platform returned status " + strconv.Itoa(e.StatusCode)
}
