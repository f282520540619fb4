package lifecycle

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	OK           Status = "ok"
	ToBeUpgraded Status = "toBeUpgraded"
	NotSupported Status = "notSupported"
	Unknown      Status = "unknown"
)

// Statuses lists every status, healthiest first.
var Statuses = []Status{OK, ToBeUpgraded, NotSupported, Unknown}

type Mode string

const (
	Standard Mode = "standard"
	Extended Mode = "extended"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", Standard:
		return Standard, nil
	case Extended:
		return Extended, nil
	}
	return "", fmt.Errorf("unknown support mode %q", s)
}

const DefaultWarningMonths = 6

type Options struct {
	Mode          Mode
	WarningMonths int
}

// Classifier resolves platform descriptors against a Table and classifies support status.
type Classifier struct {
	table         *Table
	mode          Mode
	warningMonths int
}

func NewClassifier(table *Table, opts Options) *Classifier {
	if table == nil {
		table = DefaultTable()
	}
	if opts.Mode == "" {
		opts.Mode = Standard
	}
	if opts.WarningMonths < 0 {
		opts.WarningMonths = DefaultWarningMonths
	}
	return &Classifier{
		table:         table,
		mode:          opts.Mode,
		warningMonths: opts.WarningMonths,
	}
}

func (c *Classifier) Mode() Mode {
	return c.mode
}

func (c *Classifier) WarningMonths() int {
	return c.warningMonths
}

func (c *Classifier) Table() *Table {
	return c.table
}

// EndDate returns the end of support for descriptor in the classifier's mode.
func (c *Classifier) EndDate(descriptor string) (time.Time, bool) {
	r, ok := c.table.Lookup(descriptor)
	if !ok {
		return time.Time{}, false
	}
	return r.EndDate(c.mode), true
}

func (c *Classifier) Classify(descriptor string, at time.Time) Status {
	end, ok := c.EndDate(descriptor)
	return ClassifyEndDate(end, ok, at, c.warningMonths)
}

// ClassifyEndDate maps an end date to a status at instant at:
// OK when end is after at plus the warning window, ToBeUpgraded when it falls
// inside the window, NotSupported once at has reached it.
func ClassifyEndDate(end time.Time, known bool, at time.Time, warningMonths int) Status {
	if !known {
		return Unknown
	}
	switch {
	case end.After(at.AddDate(0, warningMonths, 0)):
		return OK
	case end.After(at):
		return ToBeUpgraded
	default:
		return NotSupported
	}
}
