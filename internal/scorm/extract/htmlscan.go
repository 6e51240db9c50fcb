package extract

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/mind-engage/scorminspect/internal/scorm"
)

// htmlHeuristic scans markup files for quiz-looking fragments. A cheap
// lexical keyword check gates the full DOM parse so ordinary content
// pages cost one strings.Contains each.
type htmlHeuristic struct{}

func (htmlHeuristic) Strategy() scorm.Strategy { return scorm.StrategyHTML }

var quizKeywords = []string{"quiz", "assessment", "question", "test", "exam"}

// minQuestionText filters decorative fragments (icons, numbering).
const minQuestionText = 10

func (htmlHeuristic) Extract(in Input) []scorm.Assessment {
	var out []scorm.Assessment
	for _, path := range in.Inventory.HTML {
		e, ok := in.Archive.Lookup(path)
		if !ok {
			continue
		}
		text, err := e.Text()
		if err != nil {
			continue
		}
		lower := strings.ToLower(text)
		hit := false
		for _, kw := range quizKeywords {
			if strings.Contains(lower, kw) {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		doc, err := html.Parse(strings.NewReader(text))
		if err != nil {
			continue
		}
		questions := htmlQuestions(doc)
		if len(questions) == 0 {
			continue
		}
		out = append(out, scorm.Assessment{
			SourceFile:    path,
			Strategy:      scorm.StrategyHTML,
			QuestionCount: len(questions),
			Questions:     questions,
		})
	}
	return out
}

func htmlQuestions(doc *html.Node) []scorm.Question {
	var out []scorm.Question
	for i, n := range questionNodes(doc) {
		q := htmlQuestion(n, i)
		if len(q.Text) < minQuestionText {
			continue
		}
		out = append(out, q)
	}
	return out
}

// questionNodes selects elements whose class or id contains "question",
// or that carry an explicit data-question marker. A match swallows its
// subtree so nested wrappers do not yield duplicates.
func questionNodes(root *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && isQuestionNode(n) {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func isQuestionNode(n *html.Node) bool {
	if htmlAttr(n, "data-question") != "" {
		return true
	}
	marker := strings.ToLower(htmlAttr(n, "class") + " " + htmlAttr(n, "id"))
	return strings.Contains(marker, "question")
}

func htmlQuestion(n *html.Node, idx int) scorm.Question {
	q := scorm.Question{
		ID:   htmlAttr(n, "id"),
		Kind: scorm.KindUnknown,
		Text: questionText(n),
	}
	if q.ID == "" {
		q.ID = fmt.Sprintf("html-q%d", idx+1)
	}

	inputs := elementNodes(n, atom.Input, atom.Textarea)
	radios, checks := 0, 0
	var correct string
	for _, in := range inputs {
		switch strings.ToLower(htmlAttr(in, "type")) {
		case "radio":
			radios++
			q.Options = appendOption(q.Options, inputLabel(in))
		case "checkbox":
			checks++
			q.Options = appendOption(q.Options, inputLabel(in))
		}
		if htmlAttr(in, "checked") != "" || hasBoolAttr(in, "checked") {
			correct = htmlAttr(in, "value")
		}
	}
	if len(q.Options) == 0 {
		q.Options = fallbackOptions(n)
	}

	if correct == "" {
		correct = htmlAttr(n, "data-correct")
	}
	if correct == "" {
		correct = htmlAttr(n, "data-answer")
	}
	if correct != "" {
		q.CorrectAnswer = correct
	}
	if pts := htmlAttr(n, "data-points"); pts != "" {
		if f, err := strconv.ParseFloat(pts, 64); err == nil {
			q.Points = f
		}
	}

	switch {
	case radios > 0:
		q.Kind = scorm.KindMultipleChoice
	case checks > 0:
		q.Kind = scorm.KindMultipleSelect
	case len(elementNodes(n, atom.Textarea)) > 0:
		q.Kind = scorm.KindEssay
	case hasTextInput(n):
		q.Kind = scorm.KindTextInput
	}
	return q
}

// questionText is the element's visible text only: prompt plus any
// inline fragments, with script/style subtrees dropped.
func questionText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return collapseSpace(b.String())
}

func elementNodes(root *html.Node, atoms ...atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range atoms {
				if n.DataAtom == a {
					out = append(out, n)
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// inputLabel is the text of the input's enclosing or adjacent label,
// falling back to whatever text trails the input inside its parent.
func inputLabel(in *html.Node) string {
	for p := in.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.DataAtom == atom.Label {
			return questionText(p)
		}
	}
	for s := in.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode && s.DataAtom == atom.Label {
			return questionText(s)
		}
		if s.Type == html.TextNode && strings.TrimSpace(s.Data) != "" {
			return collapseSpace(s.Data)
		}
	}
	if in.Parent != nil {
		return questionText(in.Parent)
	}
	return ""
}

// fallbackOptions covers markup without form controls: list items, then
// elements classed option/choice.
func fallbackOptions(n *html.Node) []string {
	var out []string
	for _, li := range elementNodes(n, atom.Li) {
		out = appendOption(out, questionText(li))
	}
	if len(out) > 0 {
		return out
	}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			cls := strings.ToLower(htmlAttr(n, "class"))
			if strings.Contains(cls, "option") || strings.Contains(cls, "choice") {
				out = appendOption(out, questionText(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func hasTextInput(n *html.Node) bool {
	for _, in := range elementNodes(n, atom.Input) {
		t := strings.ToLower(htmlAttr(in, "type"))
		if t == "" || t == "text" {
			return true
		}
	}
	return false
}

func appendOption(opts []string, s string) []string {
	if s = collapseSpace(s); s != "" {
		opts = append(opts, s)
	}
	return opts
}

func htmlAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func hasBoolAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return true
		}
	}
	return false
}
