package pipeline

import (
	"context"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/philosophercode/travelback-sub000/internal/ai"
	"github.com/philosophercode/travelback-sub000/internal/photo"
	"github.com/philosophercode/travelback-sub000/internal/shared/geo"
	"github.com/philosophercode/travelback-sub000/internal/trip"
)

// ComposeItineraries narrates every day bucket that has at least one
// described photo and upserts the result. Days are dispatched concurrently
// without a limit (day counts are small) and all are allowed to settle. A
// failed day is logged and skipped; the stage errors only when every day
// fails.
func (p *Pipeline) ComposeItineraries(ctx context.Context, t trip.Trip, days []Day) ([]trip.Itinerary, error) {
	eligible := make([]Day, 0, len(days))
	for _, day := range days {
		if dayHasDescription(day) {
			eligible = append(eligible, day)
		}
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	var (
		mu          sync.Mutex
		itineraries []trip.Itinerary
		failedDays  []int
	)

	var g errgroup.Group
	for _, day := range eligible {
		day := day
		g.Go(func() error {
			it, err := p.composeDay(ctx, t, day)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				zap.L().Warn("day narration failed",
					zap.String("trip_id", t.ID),
					zap.Int("day", day.Number),
					zap.Error(err),
				)
				failedDays = append(failedDays, day.Number)
				return nil
			}
			itineraries = append(itineraries, it)
			return nil
		})
	}
	_ = g.Wait()

	if len(itineraries) == 0 {
		return nil, eris.Errorf("all %d day narrations failed", len(failedDays))
	}
	if len(failedDays) > 0 {
		zap.L().Warn("some day narrations failed",
			zap.String("trip_id", t.ID),
			zap.Ints("days", failedDays),
		)
	}

	sort.Slice(itineraries, func(a, b int) bool {
		return itineraries[a].DayNumber < itineraries[b].DayNumber
	})
	return itineraries, nil
}

func (p *Pipeline) composeDay(ctx context.Context, t trip.Trip, day Day) (trip.Itinerary, error) {
	narrative, err := p.narrator.NarrateDay(ctx, dayContext(t, day))
	if err != nil {
		return trip.Itinerary{}, err
	}

	it, err := p.trips.UpsertItinerary(ctx, trip.Itinerary{
		TripID:     t.ID,
		DayNumber:  day.Number,
		Date:       day.Date,
		Title:      narrative.Title,
		Summary:    narrative.Summary,
		PhotoCount: len(day.Photos),
	})
	if err != nil {
		return trip.Itinerary{}, eris.Wrap(err, "saving itinerary")
	}
	return it, nil
}

// ComposeOverview rolls the completed day itineraries into one trip-level
// narrative and persists it. At least one completed day is required.
func (p *Pipeline) ComposeOverview(ctx context.Context, t trip.Trip, itineraries []trip.Itinerary) (string, error) {
	if len(itineraries) == 0 {
		return "", eris.New("no completed day itineraries to summarize")
	}

	days := make([]ai.DaySummary, 0, len(itineraries))
	for _, it := range itineraries {
		days = append(days, ai.DaySummary{DayNumber: it.DayNumber, Title: it.Title, Summary: it.Summary})
	}

	overview, err := p.narrator.SummarizeTrip(ctx, t.Name, days)
	if err != nil {
		return "", err
	}
	if err := p.trips.SetOverview(ctx, t.ID, overview); err != nil {
		return "", eris.Wrap(err, "saving overview")
	}
	return overview, nil
}

func dayHasDescription(day Day) bool {
	for _, ph := range day.Photos {
		if ph.Description != nil {
			return true
		}
	}
	return false
}

func dayContext(t trip.Trip, day Day) ai.DayContext {
	moments := make([]ai.Moment, 0, len(day.Photos))
	for _, ph := range day.Photos {
		if ph.Description == nil {
			continue
		}
		m := ai.Moment{Caption: ph.Description.Caption, Place: placeName(ph.Location)}
		if ph.CapturedAt != nil {
			m.Time = *ph.CapturedAt
		}
		moments = append(moments, m)
	}
	return ai.DayContext{
		TripName:   t.Name,
		DayNumber:  day.Number,
		Date:       day.Date,
		Moments:    moments,
		DistanceKm: dayDistanceKm(day.Photos),
	}
}

// dayDistanceKm estimates the distance covered as the pairwise haversine sum
// across consecutive photos with coordinates.
func dayDistanceKm(photos []photo.Photo) float64 {
	total := 0.0
	var prev *photo.Location
	for _, ph := range photos {
		loc := photoCoordinates(ph)
		if loc == nil {
			continue
		}
		if prev != nil {
			total += geo.HaversineKm(prev.Latitude, prev.Longitude, loc.Latitude, loc.Longitude)
		}
		prev = loc
	}
	return total
}

func photoCoordinates(ph photo.Photo) *photo.Location {
	if ph.Location != nil {
		return ph.Location
	}
	if ph.Latitude != nil && ph.Longitude != nil {
		return &photo.Location{Latitude: *ph.Latitude, Longitude: *ph.Longitude}
	}
	return nil
}

func placeName(loc *photo.Location) string {
	if loc == nil {
		return ""
	}
	switch {
	case loc.Landmark != "":
		return loc.Landmark
	case loc.Neighborhood != "" && loc.City != "":
		return loc.Neighborhood + ", " + loc.City
	case loc.City != "":
		return loc.City
	default:
		return loc.Country
	}
}
