package unifiedllm

import "fmt"

// SDKError is the base error type for all unified LLM errors.
type SDKError struct {
	Message string
	Cause   error
}

func (e *SDKError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SDKError) Unwrap() error {
	return e.Cause
}

// ProviderError represents an error returned by an LLM provider.
type ProviderError struct {
	SDKError
	Provider   string
	StatusCode int
	ErrorCode  string
	Retryable  bool
	RetryAfter *float64
	Raw        map[string]interface{}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("[%s] %s (status=%d, retryable=%v)", e.Provider, e.Message, e.StatusCode, e.Retryable)
}

// Concrete provider error types, one struct per error kind named in
// spec §7. Kind is carried by the Go type itself, not a string tag.

type AuthenticationError struct{ ProviderError }
type AccessDeniedError struct{ ProviderError }
type NotFoundError struct{ ProviderError }
type InvalidRequestError struct{ ProviderError } // kind: APIError (non-retryable request shape)
type RateLimitError struct {
	ProviderError
}                                            // kind: RateLimited
type ServerError struct{ ProviderError }     // kind: ServerError, status>=500
type OverloadedError struct{ ProviderError } // kind: Overloaded, HTTP 529
type ContentFilterError struct{ ProviderError }
type ContextLengthError struct{ ProviderError }
type QuotaExceededError struct{ ProviderError }
type APIError struct{ ProviderError } // kind: APIError, catch-all non-2xx

// Non-provider errors.

type RequestTimeoutError struct{ SDKError } // kind: Timeout
type AbortedError struct{ SDKError }        // kind: Aborted (cancellation)
type NetworkError struct{ SDKError }        // kind: NetworkError
type DecodingErrorType struct{ SDKError }   // kind: DecodingError
type NoProviderError struct{ SDKError }     // kind: NoProvider
type InvalidToolCallError struct{ SDKError }
type NoObjectGeneratedError struct{ SDKError }
type ConfigurationError struct{ SDKError }

// ErrorFromStatusCode maps an HTTP status code to the appropriate
// error type, per spec §7's status-to-kind table: 400/422 →
// InvalidRequest, 401 → Authentication, 403 → AccessDenied, 404 →
// NotFound, 408 → RequestTimeout, 413 → ContextLength, 429 →
// RateLimited, 529 → Overloaded, other >=500 → ServerError, else
// APIError.
func ErrorFromStatusCode(statusCode int, message, provider, errorCode string, raw map[string]interface{}, retryAfter *float64) error {
	pe := ProviderError{
		SDKError:   SDKError{Message: message},
		Provider:   provider,
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Raw:        raw,
		RetryAfter: retryAfter,
	}

	switch statusCode {
	case 400, 422:
		pe.Retryable = false
		return &InvalidRequestError{ProviderError: pe}
	case 401:
		pe.Retryable = false
		return &AuthenticationError{ProviderError: pe}
	case 403:
		pe.Retryable = false
		return &AccessDeniedError{ProviderError: pe}
	case 404:
		pe.Retryable = false
		return &NotFoundError{ProviderError: pe}
	case 408:
		pe.Retryable = true
		return &RequestTimeoutError{SDKError: SDKError{Message: message}}
	case 413:
		pe.Retryable = false
		return &ContextLengthError{ProviderError: pe}
	case 429:
		pe.Retryable = true
		return &RateLimitError{ProviderError: pe}
	case 529:
		pe.Retryable = true
		return &OverloadedError{ProviderError: pe}
	default:
		if statusCode >= 500 {
			pe.Retryable = true
			return &ServerError{ProviderError: pe}
		}
		pe.Retryable = false
		return &APIError{ProviderError: pe}
	}
}

// IsRetryable returns true if the error is safe to retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch e := err.(type) {
	case *ProviderError:
		return e.Retryable
	case *AuthenticationError:
		return false
	case *AccessDeniedError:
		return false
	case *NotFoundError:
		return false
	case *InvalidRequestError:
		return false
	case *ContextLengthError:
		return false
	case *QuotaExceededError:
		return false
	case *ContentFilterError:
		return false
	case *ConfigurationError:
		return false
	case *APIError:
		return false
	case *AbortedError:
		return false
	case *NoProviderError:
		return false
	case *DecodingErrorType:
		return false
	case *RateLimitError:
		return true
	case *ServerError:
		return true
	case *OverloadedError:
		return true
	case *NetworkError:
		return true
	case *RequestTimeoutError:
		return true
	default:
		// Unknown errors default to retryable, matching the host's
		// ability to retry at its discretion for NetworkError-shaped
		// failures it hasn't classified yet.
		return true
	}
}
