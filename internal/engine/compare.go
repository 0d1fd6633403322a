package engine

import (
	"fmt"

	"github.com/piwi3910/PanelCut/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.PanelSettings
}

// ComparisonResult holds the build result and computed statistics for a
// single scenario.
type ComparisonResult struct {
	Scenario       ComparisonScenario
	Result         model.BuildResult
	Err            error
	ScoreCuts      int
	PerforatedCuts int
	Perforations   int
	Tabs           int
	Conflicts      int
}

// CompareScenarios builds the panel for each scenario and returns the
// results in scenario order. A scenario whose settings block the build
// carries the error instead of a result.
func CompareScenarios(scenarios []ComparisonScenario, boards []model.Board, holes []model.Hole) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		result, err := New(scenario.Settings).Build(boards, holes, BuildOptions{})
		if err != nil {
			results = append(results, ComparisonResult{Scenario: scenario, Err: err})
			continue
		}

		results = append(results, ComparisonResult{
			Scenario:       scenario,
			Result:         result,
			ScoreCuts:      result.ScoreCount(),
			PerforatedCuts: result.PerforatedCount(),
			Perforations:   len(result.Perforations),
			Tabs:           len(result.Tabs),
			Conflicts:      len(result.Conflicts),
		})
	}

	return results
}

// BuildDefaultScenarios generates one scenario per cut method, starting with
// the current settings, plus what-if variations of the v-cut merge and the
// spacing.
func BuildDefaultScenarios(base model.PanelSettings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: base,
		},
	}

	for _, m := range model.CutMethods {
		if m == base.CutMethod {
			continue
		}
		alt := base
		alt.CutMethod = m
		scenarios = append(scenarios, ComparisonScenario{
			Name:     m.String(),
			Settings: alt,
		})
	}

	// Scenario: keep every score line separate
	if base.MergeVCuts {
		noMerge := base
		noMerge.MergeVCuts = false
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "No V-cut Merge",
			Settings: noMerge,
		})
	}

	// Scenario: double the spacing for wider tabs
	if base.Spacing > 0 {
		wide := base
		wide.Spacing = base.Spacing * 2
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Spacing %.1fmm (double)", wide.Spacing),
			Settings: wide,
		})
	}

	return scenarios
}
