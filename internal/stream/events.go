package stream

const (
	EventConnected        = "connected"
	EventStatus           = "status"
	EventProgress         = "progress"
	EventSummary          = "summary"
	EventNarrationStarted = "narration_started"
)

// Event is the JSON envelope sent to progress subscribers. Events are
// ephemeral: only currently-connected subscribers see them.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type ConnectedData struct {
	TripID  string `json:"tripId"`
	Message string `json:"message"`
}

type StatusData struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type ProgressData struct {
	Step      string `json:"step"`
	Total     int    `json:"total,omitempty"`
	Completed int    `json:"completed,omitempty"`
	Message   string `json:"message"`
}

type SummaryData struct {
	TripID      string       `json:"tripId"`
	Name        string       `json:"name"`
	Status      string       `json:"status"`
	TotalPhotos int          `json:"totalPhotos"`
	TotalDays   int          `json:"totalDays"`
	Overview    string       `json:"overview"`
	Days        []SummaryDay `json:"days"`
}

type SummaryDay struct {
	DayNumber int    `json:"dayNumber"`
	Date      string `json:"date"`
	Title     string `json:"title"`
}

type NarrationData struct {
	Message string `json:"message"`
}
