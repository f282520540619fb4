package summary

type Assessment string

const (
	AssessmentConservative Assessment = "conservative"
	AssessmentModerate     Assessment = "moderate"
	AssessmentAggressive   Assessment = "aggressive"

	AssessmentLowDensity      Assessment = "low"
	AssessmentModerateDensity Assessment = "moderate"
	AssessmentHighDensity     Assessment = "high"
)

type RatioAssessment struct {
	CPU     Assessment `json:"cpu"`
	Memory  Assessment `json:"memory"`
	Density Assessment `json:"density"`
}

type threshold struct {
	below float64
	label Assessment
}

var (
	cpuThresholds = []threshold{
		{below: 4, label: AssessmentConservative},
		{below: 8, label: AssessmentModerate},
	}
	memoryThresholds = []threshold{
		{below: 1.2, label: AssessmentConservative},
		{below: 2.0, label: AssessmentModerate},
	}
	densityThresholds = []threshold{
		{below: 20, label: AssessmentLowDensity},
		{below: 40, label: AssessmentModerateDensity},
	}
)

func assess(value float64, thresholds []threshold, otherwise Assessment) Assessment {
	for _, t := range thresholds {
		if value < t.below {
			return t.label
		}
	}
	return otherwise
}

// AssessRatios labels the overcommit ratios of a summary.
func AssessRatios(r Ratios) RatioAssessment {
	return RatioAssessment{
		CPU:     assess(r.CoreToVCPU, cpuThresholds, AssessmentAggressive),
		Memory:  assess(r.VRAMToPRAM, memoryThresholds, AssessmentAggressive),
		Density: assess(r.VMDensity, densityThresholds, AssessmentHighDensity),
	}
}
