package extract

import (
	"fmt"
	"strings"

	"github.com/mind-engage/scorminspect/internal/scorm"
)

// manifestInteractions reads cmi.interactions-style records that some
// authoring tools embed directly in the manifest. These mirror the
// runtime interaction model, so the type vocabulary differs from every
// other strategy and goes through a fixed lookup table.
type manifestInteractions struct{}

func (manifestInteractions) Strategy() scorm.Strategy { return scorm.StrategyManifest }

var interactionKinds = map[string]scorm.QuestionKind{
	"choice":          scorm.KindMultipleChoice,
	"multiple_choice": scorm.KindMultipleChoice,
	"true-false":      scorm.KindTrueFalse,
	"true_false":      scorm.KindTrueFalse,
	"fill-in":         scorm.KindFillInBlank,
	"fill_in":         scorm.KindFillInBlank,
	"matching":        scorm.KindMatching,
	"performance":     scorm.KindEssay,
	"essay":           scorm.KindEssay,
}

func (manifestInteractions) Extract(in Input) []scorm.Assessment {
	if in.ManifestXML == "" {
		return nil
	}
	root, err := parseXMLTree(in.ManifestXML)
	if err != nil {
		return nil
	}
	// matches <interaction> and vendor-prefixed variants, but not the
	// plural container element wrapping them
	nodes := root.descendants(func(n *xmlNode) bool {
		local := n.local()
		return strings.Contains(local, "interaction") && !strings.HasSuffix(local, "interactions")
	})
	var questions []scorm.Question
	for i, n := range nodes {
		q := scorm.Question{
			ID:   n.attr("id"),
			Kind: scorm.KindUnknown,
		}
		if q.ID == "" {
			q.ID = fmt.Sprintf("interaction-%d", i+1)
		}
		if k, ok := interactionKinds[strings.ToLower(n.attr("type"))]; ok {
			q.Kind = k
		}
		for _, d := range n.descendants(localIs("description")) {
			if t := collapseSpace(d.text()); t != "" {
				q.Text = t
				break
			}
		}
		if q.Text == "" {
			q.Text = fmt.Sprintf("Interaction %d", i+1)
		}
		var correct []string
		for _, c := range n.descendants(func(n *xmlNode) bool {
			return strings.Contains(n.local(), "correct_response") ||
				strings.Contains(n.local(), "correctresponse")
		}) {
			if t := collapseSpace(c.text()); t != "" {
				correct = append(correct, t)
			}
		}
		if len(correct) > 0 {
			q.CorrectAnswer = correct
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil
	}
	return []scorm.Assessment{{
		SourceFile:    scorm.ManifestName,
		Strategy:      scorm.StrategyManifest,
		QuestionCount: len(questions),
		Questions:     questions,
	}}
}
