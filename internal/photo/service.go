package photo

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/philosophercode/travelback-sub000/internal/db"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, input Photo) (Photo, error) {
	input.ID = uuid.NewString()
	if input.Status == "" {
		input.Status = StatusPending
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO photos (id, trip_id, stored_name, original_name, content_type, size_bytes, captured_at, latitude, longitude, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at
	`, input.ID, input.TripID, input.StoredName, input.OriginalName, input.ContentType, input.SizeBytes,
		input.CapturedAt, input.Latitude, input.Longitude, input.Status)
	if err := row.Scan(&input.CreatedAt, &input.UpdatedAt); err != nil {
		return Photo{}, err
	}
	return input, nil
}

func (s *Service) Get(ctx context.Context, id string) (Photo, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, trip_id, stored_name, original_name, content_type, size_bytes, captured_at, latitude, longitude,
		       status, COALESCE(status_message,''), description, location, day_number, created_at, updated_at
		FROM photos WHERE id=$1
	`, id)
	return scanPhoto(row)
}

func (s *Service) ListByTrip(ctx context.Context, tripID string) ([]Photo, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, trip_id, stored_name, original_name, content_type, size_bytes, captured_at, latitude, longitude,
		       status, COALESCE(status_message,''), description, location, day_number, created_at, updated_at
		FROM photos WHERE trip_id=$1
		ORDER BY captured_at NULLS LAST, created_at
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (s *Service) SetStatus(ctx context.Context, id, status, message string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE photos SET status=$2, status_message=NULLIF($3,''), updated_at=now()
		WHERE id=$1
	`, id, status, message)
	return err
}

func (s *Service) SaveDescription(ctx context.Context, id string, d Description) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		UPDATE photos SET description=$2, updated_at=now()
		WHERE id=$1
	`, id, payload)
	return err
}

func (s *Service) SaveLocation(ctx context.Context, id string, l Location) error {
	payload, err := json.Marshal(l)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		UPDATE photos SET location=$2, updated_at=now()
		WHERE id=$1
	`, id, payload)
	return err
}

func (s *Service) ClearDayNumbers(ctx context.Context, tripID string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE photos SET day_number=NULL, updated_at=now()
		WHERE trip_id=$1
	`, tripID)
	return err
}

func (s *Service) AssignDay(ctx context.Context, id string, day int) error {
	_, err := s.db.Exec(ctx, `
		UPDATE photos SET day_number=$2, updated_at=now()
		WHERE id=$1
	`, id, day)
	return err
}

func (s *Service) CountByTrip(ctx context.Context, tripID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM photos WHERE trip_id=$1`, tripID).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row rowScanner) (Photo, error) {
	var p Photo
	var descJSON, locJSON []byte
	if err := row.Scan(&p.ID, &p.TripID, &p.StoredName, &p.OriginalName, &p.ContentType, &p.SizeBytes,
		&p.CapturedAt, &p.Latitude, &p.Longitude, &p.Status, &p.StatusMessage,
		&descJSON, &locJSON, &p.DayNumber, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Photo{}, err
	}
	if len(descJSON) > 0 {
		var d Description
		if err := json.Unmarshal(descJSON, &d); err != nil {
			return Photo{}, err
		}
		p.Description = &d
	}
	if len(locJSON) > 0 {
		var l Location
		if err := json.Unmarshal(locJSON, &l); err != nil {
			return Photo{}, err
		}
		p.Location = &l
	}
	return p, nil
}
