package estimator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ride-share/internal/domain/geo"
	"ride-share/internal/ports"
)

// OSRM performs route duration lookups against an OSRM HTTP server.
type OSRM struct {
	endpoint string
	client   *http.Client
}

func NewOSRM(endpoint string, timeout time.Duration) *OSRM {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &OSRM{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
	}
}

// TravelTime queries /route/v1/driving between the two points.
func (o *OSRM) TravelTime(ctx context.Context, from, to geo.Point) (time.Duration, error) {
	// OSRM takes lon,lat pairs
	url := fmt.Sprintf("%s/route/v1/driving/%.6f,%.6f;%.6f,%.6f?overview=false",
		o.endpoint, from.Longitude, from.Latitude, to.Longitude, to.Latitude)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("osrm request: %w", err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("osrm call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("osrm status %d", resp.StatusCode)
	}

	var out struct {
		Code   string `json:"code"`
		Routes []struct {
			Duration float64 `json:"duration"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("osrm decode: %w", err)
	}
	if out.Code != "Ok" || len(out.Routes) == 0 {
		return 0, fmt.Errorf("osrm no route: %s", out.Code)
	}
	return time.Duration(out.Routes[0].Duration * float64(time.Second)).Round(time.Second), nil
}

var _ ports.TravelEstimator = (*OSRM)(nil)
