package loadgen

import "time"

// Config holds configuration for a load generation run.
type Config struct {
	BaseURL   string        // Base URL of the service
	NumEvents int           // Number of events to generate
	NumUsers  int           // Number of distinct users to spread events over
	Workers   int           // Number of concurrent workers
	Timeout   time.Duration // HTTP request timeout
	WaitAfter time.Duration // How long to wait for async processing
	LogFile   string        // Log file for run output
	Verbose   bool          // Enable verbose logging
}

// Event mirrors the JSON schema for POST /events.
type Event struct {
	EventID    string  `json:"event_id"`
	UserID     string  `json:"user_id"`
	Kind       string  `json:"kind"`
	Metric     int64   `json:"metric"`
	Rate       float64 `json:"rate"`
	Trials     int64   `json:"trials"`
	OccurredAt string  `json:"occurred_at"`
}

// Entry mirrors one row of a rankings response.
type Entry struct {
	Rank   int     `json:"rank"`
	UserID string  `json:"user_id"`
	Score  float64 `json:"score"`
	Name   string  `json:"name"`
}

// Rankings mirrors the GET /rankings/{kind} response.
type Rankings struct {
	TopList []Entry `json:"top_list"`
	Myself  *Entry  `json:"myself"`
}

// AckResponse represents the response from event submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds run statistics.
type Stats struct {
	EventsGenerated  int
	EventsSubmitted  int
	EventsSuccessful int
	EventsDuplicate  int
	EventsFailed     int
	BoardsVerified   int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
