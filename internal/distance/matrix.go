package distance

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"time"

	httpclient "github.com/nutrisense/store-service/internal/http"
	"github.com/nutrisense/store-service/internal/http/ratelimit"

	"github.com/nutrisense/store-service/internal/geo"
)

const statusOK = "OK"

// MatrixConfig configures the distance-matrix client.
type MatrixConfig struct {
	BaseURL           string
	APIKey            string
	Mode              string // driving, walking, bicycling, transit
	Timeout           time.Duration
	RequestsPerSecond float64
}

// MatrixClient queries a Google-style distance-matrix endpoint for a single
// origin/destination pair. It makes exactly one attempt per call.
type MatrixClient struct {
	client  *httpclient.Client
	baseURL string
	apiKey  string
	mode    string
}

// NewMatrixClient creates a distance-matrix client. Without a credential
// every call fails with ReasonNoCredential.
func NewMatrixClient(cfg MatrixConfig) *MatrixClient {
	mode := cfg.Mode
	if mode == "" {
		mode = "driving"
	}
	return &MatrixClient{
		client:  httpclient.NewClient(ratelimit.SingleAttempt(cfg.RequestsPerSecond), cfg.Timeout),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		mode:    mode,
	}
}

type matrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance *struct {
				Value float64 `json:"value"` // meters
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

// Distance returns the travel distance in kilometers. Every failure is a
// *RoutingError.
func (m *MatrixClient) Distance(ctx context.Context, origin, destination geo.Coordinate) (float64, error) {
	if m.apiKey == "" {
		return 0, &RoutingError{Reason: ReasonNoCredential}
	}

	q := url.Values{}
	q.Set("origins", origin.String())
	q.Set("destinations", destination.String())
	q.Set("mode", m.mode)
	q.Set("key", m.apiKey)

	body, err := m.client.GetBytes(ctx, m.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		var fetchErr *ratelimit.FetchRetryError
		if errors.As(err, &fetchErr) && fetchErr.LastStatus != 0 {
			return 0, &RoutingError{Reason: ReasonHTTPStatus, Err: err}
		}
		return 0, &RoutingError{Reason: ReasonTransport, Err: err}
	}

	return parseMatrix(body)
}

func parseMatrix(body []byte) (float64, error) {
	var res matrixResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return 0, &RoutingError{Reason: ReasonDecode, Err: err}
	}

	if res.Status != statusOK {
		var cause error
		if res.ErrorMessage != "" {
			cause = errors.New(res.ErrorMessage)
		}
		return 0, &RoutingError{Reason: ReasonStatus, Status: res.Status, Err: cause}
	}

	if len(res.Rows) == 0 || len(res.Rows[0].Elements) == 0 {
		return 0, &RoutingError{Reason: ReasonEmpty}
	}

	el := res.Rows[0].Elements[0]
	if el.Status != statusOK {
		return 0, &RoutingError{Reason: ReasonElementStatus, Status: el.Status}
	}
	if el.Distance == nil {
		return 0, &RoutingError{Reason: ReasonEmpty, Status: el.Status}
	}
	if el.Distance.Value < 0 {
		return 0, &RoutingError{Reason: ReasonDecode, Err: errors.New("negative distance")}
	}

	return el.Distance.Value / 1000.0, nil
}
