package extract

import (
	"fmt"
	"strings"

	"github.com/mind-engage/scorminspect/internal/scorm"
)

// interchangeXML handles QTI-like question interchange documents: any
// archive entry whose name mentions qti or carries a .xml extension is a
// candidate. Non-question XML is common in these archives, so a file
// that fails to parse or yields no items is skipped silently.
type interchangeXML struct{}

func (interchangeXML) Strategy() scorm.Strategy { return scorm.StrategyInterchangeXML }

func (interchangeXML) Extract(in Input) []scorm.Assessment {
	var out []scorm.Assessment
	for _, e := range in.Archive.Entries() {
		name := strings.ToLower(e.Name())
		if e.Name() == scorm.ManifestName {
			continue
		}
		if !strings.Contains(name, "qti") && !strings.HasSuffix(name, ".xml") {
			continue
		}
		text, err := e.Text()
		if err != nil {
			continue
		}
		root, err := parseXMLTree(text)
		if err != nil {
			continue
		}
		questions := itemsToQuestions(root)
		if len(questions) == 0 {
			continue
		}
		out = append(out, scorm.Assessment{
			SourceFile:    e.Name(),
			Strategy:      scorm.StrategyInterchangeXML,
			QuestionCount: len(questions),
			Questions:     questions,
		})
	}
	return out
}

func itemsToQuestions(root *xmlNode) []scorm.Question {
	items := root.findAll(localIs("assessmentItem", "item"))
	if len(items) == 0 && localIs("assessmentItem", "item")(root) {
		items = []*xmlNode{root}
	}
	var out []scorm.Question
	for i, it := range items {
		q := itemToQuestion(it, i)
		// an item with no usable text is dropped, not recorded empty
		if q.Text == "" {
			continue
		}
		out = append(out, q)
	}
	return out
}

func itemToQuestion(it *xmlNode, idx int) scorm.Question {
	q := scorm.Question{
		ID:   it.attr("identifier"),
		Kind: scorm.KindUnknown,
	}
	if q.ID == "" {
		q.ID = it.attr("ident")
	}
	if q.ID == "" {
		q.ID = fmt.Sprintf("item-%d", idx+1)
	}

	// question text: item body / presentation with the interaction
	// subtrees (and their choice labels) cut out, then title attribute
	for _, body := range it.descendants(localIs("itemBody", "presentation")) {
		if t := collapseSpace(body.textExcept(isInteractionNode)); t != "" {
			q.Text = t
			break
		}
	}
	if q.Text == "" {
		q.Text = collapseSpace(it.attr("title"))
	}

	for _, c := range it.descendants(localIs("simpleChoice", "response_label")) {
		if t := collapseSpace(c.text()); t != "" {
			q.Options = append(q.Options, t)
		}
	}

	if correct := correctValues(it); len(correct) > 0 {
		if len(correct) == 1 {
			q.CorrectAnswer = correct[0]
		} else {
			q.CorrectAnswer = correct
		}
	}

	q.Kind = interactionKind(it, len(q.Options))
	return q
}

func isInteractionNode(n *xmlNode) bool {
	local := n.local()
	return strings.Contains(local, "interaction") ||
		local == "response_lid" || local == "response_str"
}

func correctValues(it *xmlNode) []string {
	var out []string
	for _, decl := range it.descendants(localIs("responseDeclaration")) {
		for _, cr := range decl.descendants(localIs("correctResponse")) {
			for _, v := range cr.descendants(localIs("value")) {
				if t := collapseSpace(v.text()); t != "" {
					out = append(out, t)
				}
			}
		}
	}
	// QTI 1.x puts the key inside respcondition/varequal instead
	if len(out) == 0 {
		for _, v := range it.descendants(localIs("varequal")) {
			if t := collapseSpace(v.text()); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

// interactionKind maps interaction tag-name substrings to a question
// kind, the same sniffing the rest of the corpus applies to item bodies.
func interactionKind(it *xmlNode, optionCount int) scorm.QuestionKind {
	multi := false
	for _, decl := range it.descendants(localIs("responseDeclaration", "response_lid")) {
		card := strings.ToLower(decl.attr("cardinality")) + strings.ToLower(decl.attr("rcardinality"))
		if strings.Contains(card, "multiple") {
			multi = true
		}
	}
	var kinds []scorm.QuestionKind
	for _, n := range it.descendants(func(n *xmlNode) bool { return true }) {
		local := n.local()
		switch {
		case strings.Contains(local, "interaction") && strings.Contains(local, "choice"),
			local == "response_lid":
			if multi {
				kinds = append(kinds, scorm.KindMultipleSelect)
			} else {
				kinds = append(kinds, scorm.KindMultipleChoice)
			}
		case strings.Contains(local, "interaction") && strings.Contains(local, "match"):
			kinds = append(kinds, scorm.KindMatching)
		case strings.Contains(local, "interaction") && strings.Contains(local, "text"):
			kinds = append(kinds, scorm.KindTextInput)
		}
	}
	if len(kinds) > 0 {
		return kinds[0]
	}
	if optionCount > 0 {
		if multi {
			return scorm.KindMultipleSelect
		}
		return scorm.KindMultipleChoice
	}
	return scorm.KindUnknown
}
