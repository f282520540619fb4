package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kubev2v/rvtools-summary/internal/report/csv"
	"github.com/kubev2v/rvtools-summary/internal/report/types"
	"github.com/kubev2v/rvtools-summary/internal/rvtools"
	"github.com/kubev2v/rvtools-summary/internal/summary"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"
)

const (
	jsonFormat = "json"
	yamlFormat = "yaml"
	csvFormat  = "csv"

	dateLayout = "2006-01-02"
)

var (
	legalOutputTypes  = []string{jsonFormat, yamlFormat, csvFormat}
	legalSupportModes = []string{"standard", "extended"}
	legalEventOutputs = []string{"log", "stdout"}
)

func outputHelp() string {
	return fmt.Sprintf("Output format. One of: (%s). Defaults to a table.", strings.Join(legalOutputTypes, ", "))
}

// ingest runs one ingestion cycle over paths and aggregates the result.
func ingest(ctx context.Context, opts summary.Options, paths []string) (*summary.Summary, *rvtools.IngestResult, error) {
	result, err := rvtools.IngestFiles(ctx, paths...)
	if err != nil {
		return nil, nil, err
	}
	s, err := summary.Build(result.Buckets, opts)
	if err != nil {
		return nil, nil, err
	}
	zap.S().Named("summary").Debugf("built summary: %d VMs, %d hosts", s.KPI.TotalVMs, s.KPI.Hosts)
	return s, result, nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	at, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must use the YYYY-MM-DD layout: %w", err)
	}
	return at, nil
}

// writeReport renders data in one of the structured output formats.
func writeReport(w io.Writer, data *types.ReportData, output string) error {
	switch output {
	case jsonFormat:
		marshalled, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling report: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", string(marshalled))
		return err
	case yamlFormat:
		marshalled, err := yaml.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshalling report: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s", string(marshalled))
		return err
	case csvFormat:
		content, err := csv.NewRenderer().Render(data)
		if err != nil {
			return fmt.Errorf("rendering csv report: %w", err)
		}
		_, err = io.WriteString(w, content)
		return err
	default:
		return fmt.Errorf("unsupported output format %q", output)
	}
}
