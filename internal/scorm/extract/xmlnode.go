package extract

import (
	"encoding/xml"
	"strings"
)

// xmlNode is a schema-free XML tree. The interchange and interaction
// extractors face several incompatible dialects, so they walk a generic
// tree by local name instead of committing to one struct shape.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []xmlNode  `xml:",any"`
	Chardata string     `xml:",chardata"`
}

func parseXMLTree(text string) (*xmlNode, error) {
	var root xmlNode
	if err := xml.Unmarshal([]byte(text), &root); err != nil {
		return nil, err
	}
	return &root, nil
}

func (n *xmlNode) local() string { return strings.ToLower(n.XMLName.Local) }

func (n *xmlNode) attr(name string) string {
	for _, a := range n.Attrs {
		if strings.EqualFold(a.Name.Local, name) {
			return a.Value
		}
	}
	return ""
}

// text concatenates all character data under the node, space-joined.
func (n *xmlNode) text() string {
	parts := []string{strings.TrimSpace(n.Chardata)}
	for i := range n.Children {
		parts = append(parts, n.Children[i].text())
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// textExcept is text with matching subtrees skipped entirely.
func (n *xmlNode) textExcept(skip func(*xmlNode) bool) string {
	parts := []string{strings.TrimSpace(n.Chardata)}
	for i := range n.Children {
		c := &n.Children[i]
		if skip(c) {
			continue
		}
		parts = append(parts, c.textExcept(skip))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// findAll walks depth-first in document order collecting matching nodes.
// When a node matches, its subtree is not descended further; the callers
// treat a match as one self-contained record.
func (n *xmlNode) findAll(match func(*xmlNode) bool) []*xmlNode {
	var out []*xmlNode
	for i := range n.Children {
		c := &n.Children[i]
		if match(c) {
			out = append(out, c)
			continue
		}
		out = append(out, c.findAll(match)...)
	}
	return out
}

// descendants collects every matching node, including inside matches.
func (n *xmlNode) descendants(match func(*xmlNode) bool) []*xmlNode {
	var out []*xmlNode
	for i := range n.Children {
		c := &n.Children[i]
		if match(c) {
			out = append(out, c)
		}
		out = append(out, c.descendants(match)...)
	}
	return out
}

func localIs(names ...string) func(*xmlNode) bool {
	return func(n *xmlNode) bool {
		for _, name := range names {
			if n.local() == strings.ToLower(name) {
				return true
			}
		}
		return false
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
