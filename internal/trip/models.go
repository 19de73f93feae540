package trip

import "time"

const (
	StatusNotStarted = "not_started"
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

const (
	NarrationNone  = "none"
	NarrationReady = "ready"
)

type Trip struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Description         string     `json:"description"`
	StartDate           *time.Time `json:"start_date,omitempty"`
	EndDate             *time.Time `json:"end_date,omitempty"`
	Status              string     `json:"status"`
	StatusMessage       string     `json:"status_message,omitempty"`
	NarrationRequested  bool       `json:"narration_requested"`
	NarrationState      string     `json:"narration_state"`
	Overview            string     `json:"overview,omitempty"`
	ProcessingStartedAt *time.Time `json:"processing_started_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

type Itinerary struct {
	ID         string    `json:"id"`
	TripID     string    `json:"trip_id"`
	DayNumber  int       `json:"day_number"`
	Date       time.Time `json:"date"`
	Title      string    `json:"title"`
	Summary    string    `json:"summary"`
	PhotoCount int       `json:"photo_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
