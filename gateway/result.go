package gateway

import "net/http"

// Kind tags the outcome of a gateway request.
type Kind int

const (
	// Success is a 2xx response, possibly after one refresh and retry.
	Success Kind = iota
	// RefreshError means the backend answered 401 and the refresh that
	// followed failed. The session has been cleared and no retry was made.
	RefreshError
	// RequestError is a transport failure or a non-2xx response.
	RequestError
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case RefreshError:
		return "refresh_error"
	case RequestError:
		return "request_error"
	default:
		return "unknown"
	}
}

// Result is the outcome of Gateway.Request. Err is nil only for Success;
// non-2xx responses carry an *errors.RequestFailed.
type Result struct {
	Kind   Kind
	Status int
	Body   []byte
	Header http.Header
	Err    error
}

func (r Result) OK() bool {
	return r.Kind == Success
}
