package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/philosophercode/travelback-sub000/internal/photo"
)

func nominatimServer(t *testing.T, status int, body string) *NominatimClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("format"); got != "jsonv2" {
			t.Errorf("unexpected format %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "travelback/1.0" {
			t.Errorf("unexpected user agent %q", got)
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return NewNominatimClient(srv.URL)
}

func TestReverseGeocode(t *testing.T) {
	client := nominatimServer(t, http.StatusOK, `{
		"display_name": "5 Avenue Anatole France, Paris, France",
		"address": {
			"country": "France",
			"city": "Paris",
			"suburb": "Gros-Caillou",
			"tourism": "Eiffel Tower"
		}
	}`)

	loc, err := client.ReverseGeocode(context.Background(), 48.8584, 2.2945)
	if err != nil {
		t.Fatalf("reverse geocode: %v", err)
	}
	if loc == nil {
		t.Fatalf("expected a location")
	}
	if loc.Country != "France" || loc.City != "Paris" || loc.Neighborhood != "Gros-Caillou" || loc.Landmark != "Eiffel Tower" {
		t.Fatalf("unexpected location %+v", loc)
	}
	if loc.Address != "5 Avenue Anatole France, Paris, France" {
		t.Fatalf("unexpected address %q", loc.Address)
	}
	if loc.Latitude != 48.8584 || loc.Longitude != 2.2945 {
		t.Fatalf("expected input coordinates echoed, got %v,%v", loc.Latitude, loc.Longitude)
	}
	if loc.Provenance != photo.ProvenanceGeocoding || loc.Confidence != 0.9 {
		t.Fatalf("unexpected provenance/confidence %s/%v", loc.Provenance, loc.Confidence)
	}
}

func TestReverseGeocodeTownFallback(t *testing.T) {
	client := nominatimServer(t, http.StatusOK, `{
		"address": {"country": "France", "town": "Gordes"}
	}`)

	loc, err := client.ReverseGeocode(context.Background(), 43.9113, 5.2003)
	if err != nil {
		t.Fatalf("reverse geocode: %v", err)
	}
	if loc.City != "Gordes" {
		t.Fatalf("expected town as city, got %q", loc.City)
	}
}

func TestReverseGeocodeNoMatch(t *testing.T) {
	client := nominatimServer(t, http.StatusOK, `{"error": "Unable to geocode"}`)

	loc, err := client.ReverseGeocode(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("expected no error for a miss, got %v", err)
	}
	if loc != nil {
		t.Fatalf("expected nil location, got %+v", loc)
	}
}

func TestReverseGeocodeNotFoundStatus(t *testing.T) {
	client := nominatimServer(t, http.StatusNotFound, "")

	loc, err := client.ReverseGeocode(context.Background(), 0, 0)
	if err != nil || loc != nil {
		t.Fatalf("expected nil,nil for 404, got %+v, %v", loc, err)
	}
}

func TestReverseGeocodeServerError(t *testing.T) {
	client := nominatimServer(t, http.StatusInternalServerError, "boom")

	if _, err := client.ReverseGeocode(context.Background(), 0, 0); err == nil {
		t.Fatalf("expected error for server failure")
	}
}

func TestReverseGeocodeMalformedBody(t *testing.T) {
	client := nominatimServer(t, http.StatusOK, "not json")

	if _, err := client.ReverseGeocode(context.Background(), 0, 0); err == nil {
		t.Fatalf("expected decode error")
	}
}
