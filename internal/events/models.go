package events

const (
	IngestionMessageKind string = "rvsummary.events.ingestion"
)

type IngestionStatus string

const (
	IngestionSucceeded IngestionStatus = "succeeded"
	IngestionFailed    IngestionStatus = "failed"
)

// IngestionEvent describes the outcome of one ingestion cycle.
type IngestionEvent struct {
	SummaryID string          `json:"summary_id,omitempty"`
	Status    IngestionStatus `json:"status"`
	Sources   []string        `json:"sources"`
	TotalVMs  int             `json:"total_vms"`
	Hosts     int             `json:"hosts"`
	Tables    int             `json:"tables"`
	Skipped   int             `json:"skipped"`
	Error     string          `json:"error,omitempty"`
}
