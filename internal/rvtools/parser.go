package rvtools

import (
	"context"
	"fmt"
	"time"

	"github.com/kubev2v/rvtools-summary/pkg/metrics"
	"go.uber.org/zap"
)

// IngestResult is the outcome of one successful ingestion cycle.
type IngestResult struct {
	Buckets     *Buckets
	Diagnostics []Diagnostic
}

// Ingest reads all sources and merges their tables into fresh buckets.
// Sources are decoded concurrently but merged one at a time in the order
// given. Any source failure fails the whole cycle and no result is returned.
func Ingest(ctx context.Context, sources ...Source) (*IngestResult, error) {
	start := time.Now()

	if len(sources) == 0 {
		metrics.IncreaseIngestionsTotalMetric(metrics.IngestionFailed)
		return nil, fmt.Errorf("no input files")
	}

	zap.S().Named("rvtools").Infof("Reading %d files", len(sources))
	decoded, err := ReadSources(ctx, sources)
	if err != nil {
		metrics.IncreaseIngestionsTotalMetric(metrics.IngestionFailed)
		return nil, fmt.Errorf("ingestion failed: %w", err)
	}

	acc := NewAccumulator()
	for _, tables := range decoded {
		for _, table := range tables {
			acc.Add(table)
		}
	}

	metrics.IncreaseIngestionsTotalMetric(metrics.IngestionSucceeded)
	metrics.ObserveIngestionDuration(time.Since(start))
	zap.S().Named("rvtools").Infof("Ingested %d tables: %d vInfo rows, %d vHost rows",
		len(acc.Diagnostics()), acc.Buckets().Count(VMInfo), acc.Buckets().Count(HostInfo))

	return &IngestResult{
		Buckets:     acc.Buckets(),
		Diagnostics: acc.Diagnostics(),
	}, nil
}

// IngestFiles is Ingest over paths on disk.
func IngestFiles(ctx context.Context, paths ...string) (*IngestResult, error) {
	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		sources = append(sources, FileSource(p))
	}
	return Ingest(ctx, sources...)
}
