package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/philosophercode/travelback-sub000/internal/ai"
	"github.com/philosophercode/travelback-sub000/internal/geocode"
	"github.com/philosophercode/travelback-sub000/internal/photo"
	"github.com/philosophercode/travelback-sub000/internal/stream"
	"github.com/philosophercode/travelback-sub000/internal/trip"
)

// TripStore is the trip-level persistence the pipeline depends on.
type TripStore interface {
	GetTrip(ctx context.Context, id string) (trip.Trip, error)
	SetStatus(ctx context.Context, id, status, message string) error
	SetOverview(ctx context.Context, id, overview string) error
	SetNarrationState(ctx context.Context, id, state string) error
	UpsertItinerary(ctx context.Context, it trip.Itinerary) (trip.Itinerary, error)
}

// PhotoStore is the photo-level persistence the pipeline depends on.
type PhotoStore interface {
	ListByTrip(ctx context.Context, tripID string) ([]photo.Photo, error)
	SetStatus(ctx context.Context, id, status, message string) error
	SaveDescription(ctx context.Context, id string, d photo.Description) error
	SaveLocation(ctx context.Context, id string, l photo.Location) error
	ClearDayNumbers(ctx context.Context, tripID string) error
	AssignDay(ctx context.Context, id string, day int) error
}

// ImageStore reads stored photo bytes.
type ImageStore interface {
	Open(name string) (io.ReadSeekCloser, error)
}

// Describer is the photo description oracle.
type Describer interface {
	DescribePhoto(ctx context.Context, image []byte, hint string) (photo.Description, error)
}

// LocationDetector is the vision-based location oracle. A nil location with
// a nil error means no confident match.
type LocationDetector interface {
	DetectLocation(ctx context.Context, image []byte) (*photo.Location, error)
}

// Narrator writes day and trip narratives.
type Narrator interface {
	NarrateDay(ctx context.Context, day ai.DayContext) (ai.DayNarrative, error)
	SummarizeTrip(ctx context.Context, tripName string, days []ai.DaySummary) (string, error)
}

// Publisher is the progress event sink; delivery is fire-and-forget.
type Publisher interface {
	Publish(tripID string, event stream.Event)
}

// Pipeline drives a trip through enrichment, clustering, itinerary
// composition and overview synthesis, persisting after every phase.
type Pipeline struct {
	trips       TripStore
	photos      PhotoStore
	images      ImageStore
	describer   Describer
	detector    LocationDetector
	geocoder    geocode.Geocoder
	narrator    Narrator
	bus         Publisher
	concurrency int
}

func New(trips TripStore, photos PhotoStore, images ImageStore, describer Describer, detector LocationDetector, geocoder geocode.Geocoder, narrator Narrator, bus Publisher, concurrency int) *Pipeline {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Pipeline{
		trips:       trips,
		photos:      photos,
		images:      images,
		describer:   describer,
		detector:    detector,
		geocoder:    geocoder,
		narrator:    narrator,
		bus:         bus,
		concurrency: concurrency,
	}
}

// Run processes the trip end to end. Any fatal error marks the trip failed,
// emits a terminal status event and is returned to the caller. The caller
// must guarantee a single in-flight run per trip.
func (p *Pipeline) Run(ctx context.Context, tripID string) error {
	log := zap.L().With(zap.String("trip_id", tripID))

	t, err := p.trips.GetTrip(ctx, tripID)
	if err != nil {
		return eris.Wrap(err, "loading trip")
	}

	if err := p.process(ctx, t, log); err != nil {
		log.Error("trip processing failed", zap.Error(err))
		if stErr := p.trips.SetStatus(ctx, t.ID, trip.StatusFailed, err.Error()); stErr != nil {
			log.Warn("failed to mark trip failed", zap.Error(stErr))
		}
		p.publishStatus(t.ID, trip.StatusFailed, err.Error())
		return err
	}
	return nil
}

func (p *Pipeline) process(ctx context.Context, t trip.Trip, log *zap.Logger) error {
	photos, err := p.photos.ListByTrip(ctx, t.ID)
	if err != nil {
		return eris.Wrap(err, "listing photos")
	}
	if len(photos) == 0 {
		return eris.New("trip has no photos to process")
	}

	if err := p.trips.SetStatus(ctx, t.ID, trip.StatusProcessing, ""); err != nil {
		return eris.Wrap(err, "marking trip processing")
	}
	p.publishStatus(t.ID, trip.StatusProcessing, "")
	log.Info("trip processing started", zap.Int("photos", len(photos)))

	if err := p.enrichPhotos(ctx, t.ID, photos); err != nil {
		return err
	}

	p.publishProgress(t.ID, "clustering", "grouping photos into days")
	days, err := p.ClusterDays(ctx, t.ID)
	if err != nil {
		return err
	}

	p.publishProgress(t.ID, "itineraries", "writing day itineraries")
	itineraries, err := p.ComposeItineraries(ctx, t, days)
	if err != nil {
		return err
	}

	p.publishProgress(t.ID, "overview", "writing trip overview")
	overview, err := p.ComposeOverview(ctx, t, itineraries)
	if err != nil {
		return err
	}

	if err := p.trips.SetStatus(ctx, t.ID, trip.StatusCompleted, ""); err != nil {
		return eris.Wrap(err, "marking trip completed")
	}
	p.publishStatus(t.ID, trip.StatusCompleted, "")
	p.publishSummary(t, len(photos), overview, itineraries)
	p.startNarration(ctx, t, log)

	log.Info("trip processing complete", zap.Int("days", len(itineraries)))
	return nil
}

// enrichPhotos runs the photos phase: bounded-concurrency enrichment with
// per-photo failure isolation. The phase fails only when every photo fails.
func (p *Pipeline) enrichPhotos(ctx context.Context, tripID string, photos []photo.Photo) error {
	pending := make([]photo.Photo, 0, len(photos))
	for _, ph := range photos {
		if ph.Status != photo.StatusCompleted {
			pending = append(pending, ph)
		}
	}
	if len(pending) == 0 {
		p.publishProgress(tripID, "photos", "all photos already enriched")
		return nil
	}

	errs, ctxErr := RunBatches(ctx, len(pending), p.concurrency, func(ctx context.Context, i int) error {
		return p.enrichPhoto(ctx, pending[i])
	}, func(completed, total int) {
		p.bus.Publish(tripID, stream.Event{Type: stream.EventProgress, Data: stream.ProgressData{
			Step:      "photos",
			Total:     total,
			Completed: completed,
			Message:   fmt.Sprintf("enriched %d of %d photos", completed, total),
		}})
	})
	if ctxErr != nil {
		return eris.Wrap(ctxErr, "photo enrichment cancelled")
	}

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed == len(pending) {
		return eris.Errorf("all %d photos failed enrichment", failed)
	}
	if failed > 0 {
		zap.L().Warn("some photos failed enrichment",
			zap.String("trip_id", tripID),
			zap.Int("failed", failed),
			zap.Int("total", len(pending)),
		)
	}
	return nil
}

func (p *Pipeline) startNarration(ctx context.Context, t trip.Trip, log *zap.Logger) {
	if !t.NarrationRequested {
		return
	}
	// Narration failures never un-complete the trip.
	if err := p.trips.SetNarrationState(ctx, t.ID, trip.NarrationReady); err != nil {
		log.Warn("narration init failed", zap.Error(err))
		return
	}
	p.bus.Publish(t.ID, stream.Event{Type: stream.EventNarrationStarted, Data: stream.NarrationData{
		Message: "narration wizard is ready",
	}})
}

func (p *Pipeline) publishStatus(tripID, status, message string) {
	p.bus.Publish(tripID, stream.Event{Type: stream.EventStatus, Data: stream.StatusData{
		Status:  status,
		Message: message,
	}})
}

func (p *Pipeline) publishProgress(tripID, step, message string) {
	p.bus.Publish(tripID, stream.Event{Type: stream.EventProgress, Data: stream.ProgressData{
		Step:    step,
		Message: message,
	}})
}

func (p *Pipeline) publishSummary(t trip.Trip, totalPhotos int, overview string, itineraries []trip.Itinerary) {
	days := make([]stream.SummaryDay, 0, len(itineraries))
	for _, it := range itineraries {
		days = append(days, stream.SummaryDay{
			DayNumber: it.DayNumber,
			Date:      it.Date.Format("2006-01-02"),
			Title:     it.Title,
		})
	}
	p.bus.Publish(t.ID, stream.Event{Type: stream.EventSummary, Data: stream.SummaryData{
		TripID:      t.ID,
		Name:        t.Name,
		Status:      trip.StatusCompleted,
		TotalPhotos: totalPhotos,
		TotalDays:   len(itineraries),
		Overview:    overview,
		Days:        days,
	}})
}
