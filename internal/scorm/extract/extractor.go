// Package extract locates and normalizes assessment content. Four
// independent strategies run over the same archive; their findings are
// unioned, never deduplicated, on the assumption that a missed assessment
// costs more than a duplicate finding.
package extract

import (
	"github.com/mind-engage/scorminspect/internal/scorm"
)

// Input is the shared read-only view every extractor scans.
type Input struct {
	Archive   *scorm.Archive
	Inventory scorm.ContentInventory

	// ManifestXML is the raw manifest text; empty when the package has
	// no parseable manifest.
	ManifestXML string
}

// Extractor is one assessment-location strategy. Implementations must be
// total: a file that cannot be parsed is skipped, never an error, so one
// bad file cannot abort the scan of the rest.
type Extractor interface {
	Strategy() scorm.Strategy
	Extract(in Input) []scorm.Assessment
}

// pipeline order is fixed; output order follows it.
var pipeline = []Extractor{
	interchangeXML{},
	htmlHeuristic{},
	scriptHeuristic{},
	manifestInteractions{},
}

// Run executes every strategy in order and merges the results. A
// strategy contributes one Assessment per source file that yielded at
// least one question; files with zero questions contribute nothing.
func Run(in Input) []scorm.Assessment {
	var out []scorm.Assessment
	for _, e := range pipeline {
		for _, a := range e.Extract(in) {
			if a.QuestionCount == 0 {
				continue
			}
			out = append(out, a)
		}
	}
	return out
}
