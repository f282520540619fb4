package lifecycle

import (
	"sort"
	"time"

	"github.com/kubev2v/rvtools-summary/internal/rvtools"
)

const unmatchedPlatformLength = 30

// Counts tallies assets per status.
type Counts struct {
	OK           int `json:"ok"`
	ToBeUpgraded int `json:"toBeUpgraded"`
	NotSupported int `json:"notSupported"`
	Unknown      int `json:"unknown"`
}

func (c *Counts) Add(status Status, n int) {
	switch status {
	case OK:
		c.OK += n
	case ToBeUpgraded:
		c.ToBeUpgraded += n
	case NotSupported:
		c.NotSupported += n
	default:
		c.Unknown += n
	}
}

func (c Counts) Get(status Status) int {
	switch status {
	case OK:
		return c.OK
	case ToBeUpgraded:
		return c.ToBeUpgraded
	case NotSupported:
		return c.NotSupported
	default:
		return c.Unknown
	}
}

func (c Counts) Total() int {
	return c.OK + c.ToBeUpgraded + c.NotSupported + c.Unknown
}

// platform is the resolved identity shared by every asset of a group.
type platform struct {
	family  Family
	name    string
	record  Record
	matched bool
}

func (p platform) key() string {
	return string(p.family) + "/" + p.name
}

type assetGroup struct {
	platform platform
	assets   []Asset
}

func (c *Classifier) resolve(a Asset) platform {
	r, ok := c.table.Lookup(a.Descriptor)
	if ok {
		return platform{family: a.Family, name: r.Platform, record: r, matched: true}
	}
	return platform{family: a.Family, name: rvtools.Truncate(a.Descriptor, unmatchedPlatformLength, unmatchedPlatformLength)}
}

// group buckets assets by resolved platform, keeping first-seen order.
func (c *Classifier) group(assets []Asset) []*assetGroup {
	index := make(map[string]*assetGroup)
	var groups []*assetGroup
	for _, a := range assets {
		p := c.resolve(a)
		g, ok := index[p.key()]
		if !ok {
			g = &assetGroup{platform: p}
			index[p.key()] = g
			groups = append(groups, g)
		}
		g.assets = append(g.assets, a)
	}
	return groups
}

func (c *Classifier) classifyPlatform(p platform, at time.Time) Status {
	return ClassifyEndDate(p.record.EndDate(c.mode), p.matched, at, c.warningMonths)
}

type Group struct {
	Key      string     `json:"key"`
	Family   Family     `json:"family"`
	Platform string     `json:"platform"`
	Matched  bool       `json:"matched"`
	EndDate  *time.Time `json:"endDate,omitempty"`
	Status   Status     `json:"status"`
	Assets   int        `json:"assets"`
	VMs      int        `json:"vms"`
	Hosts    int        `json:"hosts"`
}

type FamilyCounts struct {
	Family Family `json:"family"`
	Counts Counts `json:"counts"`
}

type SupportReport struct {
	At            time.Time      `json:"at"`
	Mode          Mode           `json:"mode"`
	WarningMonths int            `json:"warningMonths"`
	TableVersion  string         `json:"tableVersion"`
	Totals        Counts         `json:"totals"`
	Families      []FamilyCounts `json:"families"`
	Groups        []Group        `json:"groups"`
}

var familyOrder = []Family{Windows, Linux, ESX, OtherFamily}

// Report classifies assets at one instant. Assets sharing a platform are classified once.
func (c *Classifier) Report(assets []Asset, at time.Time) *SupportReport {
	report := &SupportReport{
		At:            at,
		Mode:          c.mode,
		WarningMonths: c.warningMonths,
		TableVersion:  c.table.Version(),
		Groups:        []Group{},
	}

	byFamily := make(map[Family]*Counts)
	for _, f := range familyOrder {
		byFamily[f] = &Counts{}
	}

	for _, g := range c.group(assets) {
		status := c.classifyPlatform(g.platform, at)
		out := Group{
			Key:      g.platform.key(),
			Family:   g.platform.family,
			Platform: g.platform.name,
			Matched:  g.platform.matched,
			Status:   status,
			Assets:   len(g.assets),
		}
		if g.platform.matched {
			end := g.platform.record.EndDate(c.mode)
			out.EndDate = &end
		}
		for _, a := range g.assets {
			if a.Kind == HostAsset {
				out.Hosts++
			} else {
				out.VMs++
			}
		}
		report.Groups = append(report.Groups, out)
		report.Totals.Add(status, out.Assets)

		fc, ok := byFamily[g.platform.family]
		if !ok {
			fc = &Counts{}
			byFamily[g.platform.family] = fc
		}
		fc.Add(status, out.Assets)
	}

	for _, f := range familyOrder {
		report.Families = append(report.Families, FamilyCounts{Family: f, Counts: *byFamily[f]})
	}

	sort.SliceStable(report.Groups, func(i, j int) bool {
		if report.Groups[i].Assets != report.Groups[j].Assets {
			return report.Groups[i].Assets > report.Groups[j].Assets
		}
		return report.Groups[i].Key < report.Groups[j].Key
	})
	return report
}

type TimelinePoint struct {
	At     time.Time `json:"at"`
	Counts Counts    `json:"counts"`
}

// Timeline classifies every asset at every instant.
func (c *Classifier) Timeline(assets []Asset, instants []time.Time) []TimelinePoint {
	groups := c.group(assets)
	points := make([]TimelinePoint, 0, len(instants))
	for _, at := range instants {
		point := TimelinePoint{At: at}
		for _, g := range groups {
			point.Counts.Add(c.classifyPlatform(g.platform, at), len(g.assets))
		}
		points = append(points, point)
	}
	return points
}

type AssetForecast struct {
	Asset
	Platform string     `json:"platform"`
	EndDate  *time.Time `json:"endDate,omitempty"`
	Statuses []Status   `json:"statuses"`
}

// Forecast returns the status of each asset at each instant, in asset order.
func (c *Classifier) Forecast(assets []Asset, instants []time.Time) []AssetForecast {
	forecasts := make([]AssetForecast, 0, len(assets))
	for _, a := range assets {
		p := c.resolve(a)
		f := AssetForecast{Asset: a, Platform: p.name, Statuses: make([]Status, 0, len(instants))}
		if p.matched {
			end := p.record.EndDate(c.mode)
			f.EndDate = &end
		}
		for _, at := range instants {
			f.Statuses = append(f.Statuses, c.classifyPlatform(p, at))
		}
		forecasts = append(forecasts, f)
	}
	return forecasts
}

// ForecastInstants returns base followed by steps instants spaced incrementMonths apart.
func ForecastInstants(base time.Time, incrementMonths, steps int) []time.Time {
	if steps < 0 {
		steps = 0
	}
	instants := make([]time.Time, 0, steps+1)
	for i := 0; i <= steps; i++ {
		instants = append(instants, base.AddDate(0, i*incrementMonths, 0))
	}
	return instants
}
