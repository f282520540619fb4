package types

import (
	"time"

	"github.com/kubev2v/rvtools-summary/internal/lifecycle"
	"github.com/kubev2v/rvtools-summary/internal/rvtools"
	"github.com/kubev2v/rvtools-summary/internal/summary"
)

type ReportRenderer interface {
	Render(data *ReportData) (string, error)
	SupportedFormat() ReportFormat
}

type ReportFormat string

const (
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatJSON ReportFormat = "json"
	ReportFormatYAML ReportFormat = "yaml"
)

type ReportOptions struct {
	IncludeDiagnostics bool
	IncludeVMs         bool
}

// ReportData bundles everything an export may show. Lifecycle parts are optional.
type ReportData struct {
	Summary     *summary.Summary          `json:"summary,omitempty"`
	Diagnostics []rvtools.Diagnostic      `json:"diagnostics,omitempty"`
	Density     []summary.DensityBucket   `json:"density,omitempty"`
	Assessment  *summary.RatioAssessment  `json:"assessment,omitempty"`
	Support     *lifecycle.SupportReport  `json:"support,omitempty"`
	Timeline    []lifecycle.TimelinePoint `json:"timeline,omitempty"`
	Forecast    []lifecycle.AssetForecast `json:"forecast,omitempty"`
	Options     ReportOptions             `json:"-"`
	GeneratedAt time.Time                 `json:"generatedAt"`
}
