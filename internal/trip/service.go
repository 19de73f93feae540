package trip

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/philosophercode/travelback-sub000/internal/db"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) CreateTrip(ctx context.Context, input Trip) (Trip, error) {
	input.ID = uuid.NewString()
	input.Status = StatusNotStarted
	input.NarrationState = NarrationNone
	row := s.db.QueryRow(ctx, `
		INSERT INTO trips (id, name, description, start_date, end_date, narration_requested)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at
	`, input.ID, input.Name, input.Description, input.StartDate, input.EndDate, input.NarrationRequested)
	if err := row.Scan(&input.CreatedAt, &input.UpdatedAt); err != nil {
		return Trip{}, err
	}
	return input, nil
}

func (s *Service) GetTrip(ctx context.Context, id string) (Trip, error) {
	row := s.db.QueryRow(ctx, tripColumns+` WHERE id=$1`, id)
	return scanTrip(row)
}

func (s *Service) ListTrips(ctx context.Context) ([]Trip, error) {
	rows, err := s.db.Query(ctx, tripColumns+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// DeleteTrip removes the trip row (photos and itineraries cascade) and
// returns the stored file names of its photos so the caller can remove them
// from storage.
func (s *Service) DeleteTrip(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT stored_name FROM photos WHERE trip_id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM trips WHERE id=$1`, id); err != nil {
		return nil, err
	}
	return names, nil
}

// SetStatus updates the processing status. Entering `processing` stamps
// processing_started_at for the staleness sweep.
func (s *Service) SetStatus(ctx context.Context, id, status, message string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE trips
		SET status=$2,
		    status_message=NULLIF($3,''),
		    processing_started_at=CASE WHEN $2='processing' THEN now() ELSE processing_started_at END,
		    updated_at=now()
		WHERE id=$1
	`, id, status, message)
	return err
}

func (s *Service) SetOverview(ctx context.Context, id, overview string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE trips SET overview=$2, updated_at=now()
		WHERE id=$1
	`, id, overview)
	return err
}

func (s *Service) SetNarrationState(ctx context.Context, id, state string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE trips SET narration_state=$2, updated_at=now()
		WHERE id=$1
	`, id, state)
	return err
}

// SweepStale force-fails trips stuck in processing longer than the given
// window. Returns the number of trips swept.
func (s *Service) SweepStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE trips
		SET status='failed', status_message='processing timed out', updated_at=now()
		WHERE status='processing' AND processing_started_at < now() - make_interval(secs => $1)
	`, olderThan.Seconds())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Service) UpsertItinerary(ctx context.Context, it Itinerary) (Itinerary, error) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO itineraries (id, trip_id, day_number, date, title, summary, photo_count)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (trip_id, day_number) DO UPDATE
		SET date=EXCLUDED.date, title=EXCLUDED.title, summary=EXCLUDED.summary,
		    photo_count=EXCLUDED.photo_count, updated_at=now()
		RETURNING id, created_at, updated_at
	`, it.ID, it.TripID, it.DayNumber, it.Date, it.Title, it.Summary, it.PhotoCount)
	if err := row.Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return Itinerary{}, err
	}
	return it, nil
}

func (s *Service) Itineraries(ctx context.Context, tripID string) ([]Itinerary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, trip_id, day_number, date, title, summary, photo_count, created_at, updated_at
		FROM itineraries WHERE trip_id=$1
		ORDER BY day_number
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Itinerary
	for rows.Next() {
		var it Itinerary
		if err := rows.Scan(&it.ID, &it.TripID, &it.DayNumber, &it.Date, &it.Title, &it.Summary, &it.PhotoCount, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const tripColumns = `
	SELECT id, name, description, start_date, end_date, status, COALESCE(status_message,''),
	       narration_requested, narration_state, COALESCE(overview,''), processing_started_at, created_at, updated_at
	FROM trips`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (Trip, error) {
	var t Trip
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.StartDate, &t.EndDate, &t.Status, &t.StatusMessage,
		&t.NarrationRequested, &t.NarrationState, &t.Overview, &t.ProcessingStartedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Trip{}, err
	}
	return t, nil
}
