package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/philosophercode/travelback-sub000/internal/photo"
)

// geocodeConfidence is assigned to reverse-geocoded candidates; GPS fixes
// are positionally reliable even when the place description is coarse.
const geocodeConfidence = 0.9

// Geocoder resolves coordinates into a named location. A nil location with a
// nil error means no match, which is not a failure.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (*photo.Location, error)
}

// NominatimClient reverse-geocodes against a Nominatim-compatible HTTP API.
type NominatimClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewNominatimClient(baseURL string) *NominatimClient {
	return &NominatimClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *NominatimClient) ReverseGeocode(ctx context.Context, lat, lon float64) (*photo.Location, error) {
	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", fmt.Sprintf("%f", lat))
	query.Set("lon", fmt.Sprintf("%f", lon))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+query.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "creating geocode request")
	}
	req.Header.Set("User-Agent", "travelback/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "calling geocode API")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "reading geocode response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode API returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Error       string `json:"error"`
		DisplayName string `json:"display_name"`
		Address     struct {
			Country       string `json:"country"`
			City          string `json:"city"`
			Town          string `json:"town"`
			Village       string `json:"village"`
			Suburb        string `json:"suburb"`
			Neighbourhood string `json:"neighbourhood"`
			Tourism       string `json:"tourism"`
			Attraction    string `json:"attraction"`
		} `json:"address"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "decoding geocode response")
	}
	if parsed.Error != "" {
		// Nominatim reports "unable to geocode" as an error field, not a
		// failure status.
		return nil, nil
	}

	loc := photo.Location{
		Latitude:     lat,
		Longitude:    lon,
		Country:      parsed.Address.Country,
		City:         firstNonEmpty(parsed.Address.City, parsed.Address.Town, parsed.Address.Village),
		Neighborhood: firstNonEmpty(parsed.Address.Suburb, parsed.Address.Neighbourhood),
		Landmark:     firstNonEmpty(parsed.Address.Attraction, parsed.Address.Tourism),
		Address:      parsed.DisplayName,
		Provenance:   photo.ProvenanceGeocoding,
		Confidence:   geocodeConfidence,
	}
	return &loc, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
