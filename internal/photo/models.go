package photo

import "time"

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

const (
	ProvenanceExif      = "exif"
	ProvenanceGeocoding = "geocoding"
	ProvenanceLLMVisual = "llm_visual"
)

type Photo struct {
	ID            string       `json:"id"`
	TripID        string       `json:"trip_id"`
	StoredName    string       `json:"-"`
	OriginalName  string       `json:"original_name"`
	ContentType   string       `json:"content_type"`
	SizeBytes     int64        `json:"size_bytes"`
	CapturedAt    *time.Time   `json:"captured_at,omitempty"`
	Latitude      *float64     `json:"latitude,omitempty"`
	Longitude     *float64     `json:"longitude,omitempty"`
	Status        string       `json:"status"`
	StatusMessage string       `json:"status_message,omitempty"`
	Description   *Description `json:"description,omitempty"`
	Location      *Location    `json:"location,omitempty"`
	DayNumber     *int         `json:"day_number,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Description is the validated output of the photo description oracle.
type Description struct {
	Caption string   `json:"caption"`
	Scene   string   `json:"scene,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// Location is a geographic candidate or reconciled result. Coordinates are
// never persisted without a provenance tag.
type Location struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Country      string  `json:"country,omitempty"`
	City         string  `json:"city,omitempty"`
	Neighborhood string  `json:"neighborhood,omitempty"`
	Landmark     string  `json:"landmark,omitempty"`
	Address      string  `json:"address,omitempty"`
	Provenance   string  `json:"provenance"`
	Confidence   float64 `json:"confidence"`
}

// HasPlaceName reports whether the location names at least a city or country.
func (l Location) HasPlaceName() bool {
	return l.City != "" || l.Country != ""
}
