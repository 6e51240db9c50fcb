package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mind-engage/scorminspect/internal/scorm"
)

// scriptHeuristic scans script files for question-looking string
// literals. This is a best-effort classifier, not a parser: the pattern
// families are tuned to authoring-tool output seen in the wild and
// intentionally favor recall over precision. It hides behind the same
// Extractor interface as the rigorous XML strategy so a real JS AST walk
// could replace it without touching callers.
type scriptHeuristic struct{}

func (scriptHeuristic) Strategy() scorm.Strategy { return scorm.StrategyScript }

// vendor marker substrings that unlock the tool-specific families
var vendorMarkers = []string{"storyline", "articulate", "captivate", "ispring", "lectora"}

type scriptPattern struct {
	name       string
	re         *regexp.Regexp
	vendorOnly bool
}

var scriptPatterns = []scriptPattern{
	// authoring-tool object literals: {"question": "..."} and friends
	{name: "vendor-json-key", vendorOnly: true,
		re: regexp.MustCompile(`(?i)"(?:question|questiontext|title)"\s*:\s*"((?:[^"\\]|\\.)+)"`)},
	{name: "vendor-js-key", vendorOnly: true,
		re: regexp.MustCompile(`(?i)'(?:question|questiontext|title)'\s*:\s*'((?:[^'\\]|\\.)+)'`)},
	// generic key/value literals
	{name: "generic-double",
		re: regexp.MustCompile(`(?i)(?:question|prompt|query)\s*[:=]\s*"((?:[^"\\]|\\.)+)"`)},
	{name: "generic-single",
		re: regexp.MustCompile(`(?i)(?:question|prompt|query)\s*[:=]\s*'((?:[^'\\]|\\.)+)'`)},
}

// generic captures must exceed this length and contain a question mark;
// shorter literals are overwhelmingly variable names and UI labels.
const minScriptLiteral = 20

func (scriptHeuristic) Extract(in Input) []scorm.Assessment {
	var out []scorm.Assessment
	for _, path := range in.Inventory.JavaScript {
		e, ok := in.Archive.Lookup(path)
		if !ok {
			continue
		}
		text, err := e.Text()
		if err != nil {
			continue
		}
		questions := scriptQuestions(text)
		if len(questions) == 0 {
			continue
		}
		out = append(out, scorm.Assessment{
			SourceFile:    path,
			Strategy:      scorm.StrategyScript,
			QuestionCount: len(questions),
			Questions:     questions,
		})
	}
	return out
}

func scriptQuestions(text string) []scorm.Question {
	lower := strings.ToLower(text)
	vendor := ""
	for _, m := range vendorMarkers {
		if strings.Contains(lower, m) {
			vendor = m
			break
		}
	}

	seen := map[string]bool{}
	var out []scorm.Question
	for _, p := range scriptPatterns {
		if p.vendorOnly && vendor == "" {
			continue
		}
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			lit := collapseSpace(unescapeJS(m[1]))
			if !usableScriptLiteral(lit, p.vendorOnly) || seen[lit] {
				continue
			}
			seen[lit] = true
			q := scorm.Question{
				ID:   fmt.Sprintf("script-q%d", len(out)+1),
				Kind: scorm.KindUnknown,
				Text: lit,
				Meta: map[string]string{"pattern": p.name},
			}
			if vendor != "" {
				q.Meta["vendor"] = vendor
			}
			out = append(out, q)
		}
	}
	return out
}

func usableScriptLiteral(lit string, vendorOnly bool) bool {
	if !strings.Contains(lit, "?") {
		return false
	}
	if vendorOnly {
		return len(lit) > minQuestionText
	}
	return len(lit) > minScriptLiteral
}

var jsEscape = strings.NewReplacer(`\"`, `"`, `\'`, `'`, `\\`, `\`, `\n`, " ", `\t`, " ")

func unescapeJS(s string) string { return jsEscape.Replace(s) }
