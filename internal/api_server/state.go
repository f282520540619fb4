package apiserver

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kubev2v/rvtools-summary/internal/events"
	"github.com/kubev2v/rvtools-summary/internal/lifecycle"
	"github.com/kubev2v/rvtools-summary/internal/rvtools"
	"github.com/kubev2v/rvtools-summary/internal/summary"
	"github.com/kubev2v/rvtools-summary/pkg/metrics"
	"go.uber.org/zap"
)

// Snapshot is the outcome of one successful ingestion cycle. ID and LoadedAt
// identify the cycle; the Summary depends on the input only.
type Snapshot struct {
	ID          uuid.UUID
	Summary     *summary.Summary
	Diagnostics []rvtools.Diagnostic
	Sources     []string
	LoadedAt    time.Time
}

// EventPublisher receives one event per ingestion cycle.
type EventPublisher interface {
	Publish(kind string, payload any) error
}

// State holds the snapshot currently served. A failed load leaves it unchanged.
type State struct {
	current atomic.Pointer[Snapshot]
	loadMu  sync.Mutex
	opts    summary.Options
	events  EventPublisher
}

func NewState(opts summary.Options) *State {
	return &State{opts: opts}
}

func (s *State) WithEvents(p EventPublisher) *State {
	s.events = p
	return s
}

func (s *State) Current() (*Snapshot, bool) {
	snap := s.current.Load()
	return snap, snap != nil
}

// Load runs a full ingestion cycle and publishes its summary on success.
func (s *State) Load(ctx context.Context, sources ...rvtools.Source) (*Snapshot, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	names := make([]string, 0, len(sources))
	for _, src := range sources {
		names = append(names, src.Name)
	}

	result, err := rvtools.Ingest(ctx, sources...)
	if err != nil {
		s.publish(events.IngestionEvent{Status: events.IngestionFailed, Sources: names, Error: err.Error()})
		return nil, err
	}
	sum, err := summary.Build(result.Buckets, s.opts)
	if err != nil {
		err = fmt.Errorf("aggregation failed: %w", err)
		s.publish(events.IngestionEvent{Status: events.IngestionFailed, Sources: names, Error: err.Error()})
		return nil, err
	}

	snap := &Snapshot{
		ID:          uuid.New(),
		Summary:     sum,
		Diagnostics: result.Diagnostics,
		Sources:     names,
		LoadedAt:    time.Now().UTC(),
	}
	s.current.Store(snap)
	zap.S().Named("api_server").Infof("serving summary %s from %v", snap.ID, names)

	event := events.IngestionEvent{
		SummaryID: snap.ID.String(),
		Status:    events.IngestionSucceeded,
		Sources:   names,
		TotalVMs:  sum.KPI.TotalVMs,
		Hosts:     sum.KPI.Hosts,
		Tables:    len(result.Diagnostics),
	}
	for _, d := range result.Diagnostics {
		if d.Skipped {
			event.Skipped++
		}
	}
	s.publish(event)
	return snap, nil
}

func (s *State) publish(event events.IngestionEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(events.IngestionMessageKind, event); err != nil {
		zap.S().Named("api_server").Warnf("failed to publish ingestion event: %v", err)
	}
}

// Stats adapts the current snapshot for the inventory metrics collector.
func (s *State) Stats(classifier *lifecycle.Classifier) metrics.StatsProvider {
	return func() (metrics.InventoryStats, bool) {
		snap, ok := s.Current()
		if !ok {
			return metrics.InventoryStats{}, false
		}
		sum := snap.Summary

		stats := metrics.InventoryStats{
			TotalVMs:      sum.KPI.TotalVMs,
			ActiveVMs:     sum.KPI.ActiveVMs,
			Hosts:         sum.KPI.Hosts,
			Clusters:      sum.KPI.Clusters,
			VCPUs:         sum.KPI.TotalVCPUs,
			PhysicalCores: sum.KPI.PhysicalCores,
			VMsByOS:       make(map[string]int, len(sum.OperatingSystems)),
			AssetsByState: make(map[string]int, len(lifecycle.Statuses)),
		}
		for _, e := range sum.OperatingSystems {
			stats.VMsByOS[e.Key] = e.Count
		}

		report := classifier.Report(lifecycle.AssetsFromSummary(sum), time.Now())
		for _, status := range lifecycle.Statuses {
			stats.AssetsByState[string(status)] = report.Totals.Get(status)
		}
		return stats, true
	}
}
