package rvtools

import "strings"

type EntityType int

const (
	Unrecognized EntityType = iota
	VMInfo
	HostInfo
	DiskInfo
	DatastoreInfo
	CPUInfo
	MemoryInfo
	NetworkInfo
)

var entityNames = map[EntityType]string{
	Unrecognized:  "unrecognized",
	VMInfo:        "vInfo",
	HostInfo:      "vHost",
	DiskInfo:      "vDisk",
	DatastoreInfo: "vDatastore",
	CPUInfo:       "vCPU",
	MemoryInfo:    "vMemory",
	NetworkInfo:   "vNetwork",
}

func (e EntityType) String() string {
	if name, ok := entityNames[e]; ok {
		return name
	}
	return entityNames[Unrecognized]
}

func (e EntityType) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

type columnSet map[string]struct{}

func newColumnSet(columns []string) columnSet {
	set := make(columnSet, len(columns))
	for _, c := range columns {
		set[strings.TrimSpace(c)] = struct{}{}
	}
	return set
}

func (s columnSet) has(column string) bool {
	_, ok := s[column]
	return ok
}

func (s columnSet) hasAny(columns ...string) bool {
	for _, c := range columns {
		if s.has(c) {
			return true
		}
	}
	return false
}

type classificationRule struct {
	entity EntityType
	match  func(columnSet) bool
}

// classificationRules are evaluated top to bottom and the first match wins.
// A vCPU sheet that also carries a Memory column is therefore a vInfo table,
// and a vMemory sheet is only reached when no CPUs column is present.
var classificationRules = []classificationRule{
	{
		entity: VMInfo,
		match: func(c columnSet) bool {
			return c.has("VM") && c.has("CPUs") && c.hasAny("Memory", "Memory MiB")
		},
	},
	{
		entity: HostInfo,
		match: func(c columnSet) bool {
			return c.hasAny("# CPU", "#CPU") && c.hasAny("# Cores", "Cores per CPU")
		},
	},
	{
		entity: DiskInfo,
		match: func(c columnSet) bool {
			return c.has("VM") && c.hasAny("Disk", "Disk Key") && c.has("Capacity MiB")
		},
	},
	{
		entity: DatastoreInfo,
		match: func(c columnSet) bool {
			return c.has("Capacity MiB") && !c.has("VM") &&
				c.hasAny("Name", "Datastore", "Free space MiB", "Free MiB")
		},
	},
	{
		entity: CPUInfo,
		match: func(c columnSet) bool {
			return c.has("VM") && c.has("CPUs") && c.has("Sockets")
		},
	},
	{
		entity: MemoryInfo,
		match: func(c columnSet) bool {
			return c.has("VM") && c.has("Size MiB") && !c.has("CPUs")
		},
	},
	{
		entity: NetworkInfo,
		match: func(c columnSet) bool {
			return c.has("VM") && c.has("Network") && c.hasAny("Mac Address", "Adapter")
		},
	},
}

// Classify returns the entity type of a table from its column names.
func Classify(columns []string) EntityType {
	set := newColumnSet(columns)
	for _, rule := range classificationRules {
		if rule.match(set) {
			return rule.entity
		}
	}
	return Unrecognized
}

// ClassificationOrder lists the recognized entity types in priority order.
func ClassificationOrder() []EntityType {
	order := make([]EntityType, 0, len(classificationRules))
	for _, rule := range classificationRules {
		order = append(order, rule.entity)
	}
	return order
}
