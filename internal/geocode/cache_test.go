package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/philosophercode/travelback-sub000/internal/photo"
)

var errGeocode = errors.New("geocode error")

type stubGeocoder struct {
	loc   *photo.Location
	err   error
	calls int
}

func (s *stubGeocoder) ReverseGeocode(_ context.Context, lat, lon float64) (*photo.Location, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.loc == nil {
		return nil, nil
	}
	loc := *s.loc
	loc.Latitude = lat
	loc.Longitude = lon
	return &loc, nil
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCachedGeocoderCachesHits(t *testing.T) {
	inner := &stubGeocoder{loc: &photo.Location{
		Country: "France", City: "Paris",
		Provenance: photo.ProvenanceGeocoding, Confidence: 0.9,
	}}
	cached := NewCachedGeocoder(inner, testRedis(t))

	first, err := cached.ReverseGeocode(context.Background(), 48.8584, 2.2945)
	if err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	second, err := cached.ReverseGeocode(context.Background(), 48.8584, 2.2945)
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}

	if inner.calls != 1 {
		t.Fatalf("expected 1 inner call, got %d", inner.calls)
	}
	if first.City != "Paris" || second.City != "Paris" {
		t.Fatalf("unexpected results %+v / %+v", first, second)
	}
}

func TestCachedGeocoderKeyTruncation(t *testing.T) {
	inner := &stubGeocoder{loc: &photo.Location{Country: "France", City: "Paris"}}
	cached := NewCachedGeocoder(inner, testRedis(t))

	// Within ~11 m the key collapses to the same entry.
	if _, err := cached.ReverseGeocode(context.Background(), 48.85840, 2.29450); err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	if _, err := cached.ReverseGeocode(context.Background(), 48.858404, 2.294504); err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected shared cache entry, got %d inner calls", inner.calls)
	}

	if _, err := cached.ReverseGeocode(context.Background(), 48.9, 2.3); err != nil {
		t.Fatalf("distinct lookup: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected distinct coordinates to miss, got %d inner calls", inner.calls)
	}
}

func TestCachedGeocoderDoesNotCacheMisses(t *testing.T) {
	inner := &stubGeocoder{} // always nil,nil
	cached := NewCachedGeocoder(inner, testRedis(t))

	for i := 0; i < 2; i++ {
		loc, err := cached.ReverseGeocode(context.Background(), 0, 0)
		if err != nil || loc != nil {
			t.Fatalf("lookup %d: expected nil,nil, got %+v, %v", i, loc, err)
		}
	}
	if inner.calls != 2 {
		t.Fatalf("expected misses to pass through, got %d inner calls", inner.calls)
	}
}

func TestCachedGeocoderPropagatesErrors(t *testing.T) {
	inner := &stubGeocoder{err: errGeocode}
	cached := NewCachedGeocoder(inner, testRedis(t))

	if _, err := cached.ReverseGeocode(context.Background(), 0, 0); !errors.Is(err, errGeocode) {
		t.Fatalf("expected inner error, got %v", err)
	}
}

func TestCachedGeocoderNilRedisPassesThrough(t *testing.T) {
	inner := &stubGeocoder{loc: &photo.Location{Country: "France"}}
	cached := NewCachedGeocoder(inner, nil)

	for i := 0; i < 2; i++ {
		if _, err := cached.ReverseGeocode(context.Background(), 1, 1); err != nil {
			t.Fatalf("lookup %d: %v", i, err)
		}
	}
	if inner.calls != 2 {
		t.Fatalf("expected every lookup to pass through, got %d inner calls", inner.calls)
	}
}

func TestCachedGeocoderIgnoresCorruptEntries(t *testing.T) {
	inner := &stubGeocoder{loc: &photo.Location{Country: "France", City: "Paris"}}
	rdb := testRedis(t)
	cached := NewCachedGeocoder(inner, rdb)

	if err := rdb.Set(context.Background(), cacheKey(1, 1), "not json", 0).Err(); err != nil {
		t.Fatalf("seeding corrupt entry: %v", err)
	}

	loc, err := cached.ReverseGeocode(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if loc == nil || loc.City != "Paris" {
		t.Fatalf("expected fresh lookup past corrupt entry, got %+v", loc)
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 inner call, got %d", inner.calls)
	}

	// The corrupt entry is overwritten with the fresh result.
	raw, err := rdb.Get(context.Background(), cacheKey(1, 1)).Bytes()
	if err != nil {
		t.Fatalf("reading cache: %v", err)
	}
	var stored photo.Location
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("expected JSON entry after refresh: %v", err)
	}
}
