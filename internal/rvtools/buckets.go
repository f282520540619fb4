package rvtools

import (
	"github.com/kubev2v/rvtools-summary/pkg/metrics"
	"go.uber.org/zap"
)

const columnSampleSize = 8

// Buckets holds the rows of every recognized table, grouped by entity type.
type Buckets struct {
	rows map[EntityType][]Row
}

func NewBuckets() *Buckets {
	return &Buckets{rows: make(map[EntityType][]Row)}
}

// Rows returns the accumulated rows of the given type in insertion order.
func (b *Buckets) Rows(entity EntityType) []Row {
	return b.rows[entity]
}

func (b *Buckets) Count(entity EntityType) int {
	return len(b.rows[entity])
}

func (b *Buckets) VMs() []Row        { return b.Rows(VMInfo) }
func (b *Buckets) Hosts() []Row      { return b.Rows(HostInfo) }
func (b *Buckets) Disks() []Row      { return b.Rows(DiskInfo) }
func (b *Buckets) Datastores() []Row { return b.Rows(DatastoreInfo) }

// Diagnostic reports how one input table was routed.
type Diagnostic struct {
	Label   string     `json:"label"`
	Entity  EntityType `json:"entity"`
	Skipped bool       `json:"skipped"`
	Columns []string   `json:"columns"`
	Rows    int        `json:"rows"`
}

// Accumulator routes tables into Buckets. It is not safe for concurrent use.
type Accumulator struct {
	buckets     *Buckets
	diagnostics []Diagnostic
}

func NewAccumulator() *Accumulator {
	return &Accumulator{buckets: NewBuckets()}
}

// Add classifies a table using the columns of its first row and appends all
// rows to the matching bucket. Empty tables are ignored and report false.
func (a *Accumulator) Add(table Table) (Diagnostic, bool) {
	if table.Empty() {
		return Diagnostic{}, false
	}

	columns := table.Rows[0].Columns()
	entity := Classify(columns)

	sample := columns
	if len(sample) > columnSampleSize {
		sample = sample[:columnSampleSize]
	}
	diagnostic := Diagnostic{
		Label:   table.Label,
		Entity:  entity,
		Skipped: entity == Unrecognized,
		Columns: append([]string(nil), sample...),
		Rows:    len(table.Rows),
	}
	a.diagnostics = append(a.diagnostics, diagnostic)
	metrics.IncreaseTablesTotalMetric(entity.String())

	if diagnostic.Skipped {
		zap.S().Named("rvtools").Warnf("[skip] %s (columns: %v)", table.Label, diagnostic.Columns)
		return diagnostic, true
	}

	a.buckets.rows[entity] = append(a.buckets.rows[entity], table.Rows...)
	zap.S().Named("rvtools").Infof("[%s] <- %s (%d rows)", entity, table.Label, len(table.Rows))
	return diagnostic, true
}

func (a *Accumulator) Buckets() *Buckets {
	return a.buckets
}

func (a *Accumulator) Diagnostics() []Diagnostic {
	return a.diagnostics
}
