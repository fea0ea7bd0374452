package distance

import "fmt"

// Failure reasons reported by RoutingError. They double as metric labels.
const (
	ReasonNoCredential  = "no_credential"
	ReasonTransport     = "transport"
	ReasonHTTPStatus    = "http_status"
	ReasonDecode        = "decode"
	ReasonStatus        = "status"
	ReasonEmpty         = "empty"
	ReasonElementStatus = "element_status"
	ReasonCircuitOpen   = "circuit_open"
)

// RoutingError describes why the routing service could not measure a distance.
// It is always absorbed by the Resolver, which falls back to haversine.
type RoutingError struct {
	Reason string
	Status string // service status string, when one was returned
	Err    error
}

func (e *RoutingError) Error() string {
	msg := "routing " + e.Reason
	if e.Status != "" {
		msg += fmt.Sprintf(" (status %s)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RoutingError) Unwrap() error {
	return e.Err
}

// countsAgainstService reports whether the error says something about the
// health of the routing service rather than about one destination.
func (e *RoutingError) countsAgainstService() bool {
	switch e.Reason {
	case ReasonElementStatus, ReasonNoCredential:
		return false
	default:
		return true
	}
}
