package external

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/openbge-client/internal/domain"
)

// newCircuitBreaker builds the breaker guarding platform calls. It returns nil
// when the breaker is disabled.
func newCircuitBreaker(config domain.CircuitBreakerConfig, logger *logrus.Logger) *gobreaker.CircuitBreaker {
	if !config.Enabled {
		return nil
	}

	// Set default circuit breaker configuration
	if config.MaxRequests == 0 {
		config.MaxRequests = 3
	}
	if config.Interval == 0 {
		config.Interval = 30 * time.Second
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "OpenBGE",
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// only transport failures and 5xx count against the platform
			var se *StatusError
			if errors.As(err, &se) {
				return se.StatusCode < 500
			}
			return err == nil
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit_breaker": name,
				"from_state":      from.String(),
				"to_state":        to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
}

// guard runs call through the breaker when one is configured. Responses with
// an HTTP status are always handed back to the caller.
func guard(cb *gobreaker.CircuitBreaker, call func() (*RawResponse, error)) (*RawResponse, error) {
	if cb == nil {
		return call()
	}

	var resp *RawResponse
	_, err := cb.Execute(func() (interface{}, error) {
		r, err := call()
		if err != nil {
			return nil, err
		}
		resp = r
		if r.StatusCode >= 400 {
			return r, &StatusError{StatusCode: r.StatusCode}
		}
		return r, nil
	})

	if resp != nil {
		return resp, nil
	}
	return nil, err
}
