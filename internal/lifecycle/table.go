package lifecycle

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"sigs.k8s.io/yaml"
)

const dateLayout = "2006-01-02"

var ErrInvalidTable = errors.New("invalid lifecycle table")

//go:embed data/eol.yaml
var defaultTableData []byte

// Record holds the support end dates of one platform key. Aliases of the same
// platform share a Platform name, the first key of their dataset entry.
type Record struct {
	Key      string    `json:"key"`
	Platform string    `json:"platform"`
	Standard time.Time `json:"standard"`
	Extended time.Time `json:"extended"`
}

func (r Record) EndDate(mode Mode) time.Time {
	if mode == Extended {
		return r.Extended
	}
	return r.Standard
}

type tableFile struct {
	Version string       `json:"version"`
	Records []tableEntry `json:"records"`
}

type tableEntry struct {
	Keys     []string `json:"keys"`
	Standard string   `json:"standard"`
	Extended string   `json:"extended"`
}

// Table is immutable lifecycle reference data. Records are kept longest key first.
type Table struct {
	version string
	records []Record
}

// NewTable validates records and builds a Table. Keys are lowercased and must be
// unique. A record without a Platform is its own platform.
func NewTable(version string, records []Record) (*Table, error) {
	seen := make(map[string]struct{}, len(records))
	sorted := make([]Record, 0, len(records))
	for _, r := range records {
		key := strings.ToLower(strings.TrimSpace(r.Key))
		if key == "" {
			return nil, fmt.Errorf("%w: empty key", ErrInvalidTable)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalidTable, key)
		}
		if r.Standard.IsZero() {
			return nil, fmt.Errorf("%w: key %q has no standard end date", ErrInvalidTable, key)
		}
		if r.Extended.IsZero() {
			r.Extended = r.Standard
		}
		seen[key] = struct{}{}
		r.Key = key
		r.Platform = strings.ToLower(strings.TrimSpace(r.Platform))
		if r.Platform == "" {
			r.Platform = key
		}
		sorted = append(sorted, r)
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i].Key) != len(sorted[j].Key) {
			return len(sorted[i].Key) > len(sorted[j].Key)
		}
		return sorted[i].Key < sorted[j].Key
	})
	return &Table{version: version, records: sorted}, nil
}

// ParseTable decodes a yaml or json lifecycle dataset.
func ParseTable(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}

	var records []Record
	for i, entry := range file.Records {
		standard, err := parseDate(entry.Standard)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrInvalidTable, i, err)
		}
		extended := standard
		if entry.Extended != "" {
			if extended, err = parseDate(entry.Extended); err != nil {
				return nil, fmt.Errorf("%w: record %d: %w", ErrInvalidTable, i, err)
			}
		}
		if len(entry.Keys) == 0 {
			return nil, fmt.Errorf("%w: record %d has no keys", ErrInvalidTable, i)
		}
		for _, key := range entry.Keys {
			records = append(records, Record{Key: key, Platform: entry.Keys[0], Standard: standard, Extended: extended})
		}
	}
	return NewTable(file.Version, records)
}

func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lifecycle table: %w", err)
	}
	return ParseTable(data)
}

// DefaultTable returns the dataset shipped with the binary.
func DefaultTable() *Table {
	t, err := ParseTable(defaultTableData)
	if err != nil {
		panic(fmt.Errorf("internal error: %w", err))
	}
	return t
}

func (t *Table) Version() string {
	return t.version
}

func (t *Table) Records() []Record {
	return append([]Record(nil), t.records...)
}

// Lookup returns the record with the longest key contained in descriptor.
func (t *Table) Lookup(descriptor string) (Record, bool) {
	d := strings.ToLower(descriptor)
	if strings.TrimSpace(d) == "" {
		return Record{}, false
	}
	for _, r := range t.records {
		if strings.Contains(d, r.Key) {
			return r, true
		}
	}
	return Record{}, false
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
