package scorm

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Manifest is the canonical interpretation of an imsmanifest.xml.
type Manifest struct {
	Version   Version
	Title     string
	Metadata  Metadata
	Structure []StructureNode
	Resources []Resource

	// RawXML is the manifest text as found in the archive; the
	// interaction extractor re-scans it for gradable interaction records.
	RawXML string
}

// Wire shapes. Tags carry no namespace on purpose: authoring tools mix
// imscp/adlcp/lom namespaces freely and local-name matching is the only
// thing that works across all of them.
type manifestXML struct {
	XMLName  xml.Name   `xml:"manifest"`
	Attrs    []xml.Attr `xml:",any,attr"`
	Metadata struct {
		Schema        string      `xml:"schema"`
		SchemaVersion string      `xml:"schemaversion"`
		Description   mixedText   `xml:"lom>general>description"`
		Keywords      []mixedText `xml:"lom>general>keyword"`
		Duration      mixedText   `xml:"lom>technical>duration"`
	} `xml:"metadata"`
	Organizations struct {
		Default string            `xml:"default,attr"`
		Orgs    []organizationXML `xml:"organization"`
	} `xml:"organizations"`
	Resources []resourceXML `xml:"resources>resource"`
}

type organizationXML struct {
	Identifier string    `xml:"identifier,attr"`
	Title      string    `xml:"title"`
	Items      []itemXML `xml:"item"`
}

type itemXML struct {
	Identifier    string    `xml:"identifier,attr"`
	IdentifierRef string    `xml:"identifierref,attr"`
	Title         string    `xml:"title"`
	Items         []itemXML `xml:"item"`
}

type resourceXML struct {
	Identifier string `xml:"identifier,attr"`
	Type       string `xml:"type,attr"`
	Href       string `xml:"href,attr"`
	Files      []struct {
		Href string `xml:"href,attr"`
	} `xml:"file"`
}

// mixedText flattens an element whose text may sit directly in chardata
// or inside nested langstring/string wrappers (LOM 1.2 vs 2004).
type mixedText struct {
	Chardata string      `xml:",chardata"`
	Nested   []mixedText `xml:",any"`
}

func (t mixedText) text() string {
	parts := []string{strings.TrimSpace(t.Chardata)}
	for _, n := range t.Nested {
		parts = append(parts, n.text())
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// ParseManifest interprets manifest XML into a canonical Manifest.
// Absent attributes come back as empty strings, never as missing fields,
// so downstream string matching stays total.
func ParseManifest(text string) (*Manifest, error) {
	var raw manifestXML
	if err := xml.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestMalformed, err)
	}

	mf := &Manifest{
		Version: detectVersion(raw),
		Metadata: Metadata{
			Description: raw.Metadata.Description.text(),
			Duration:    raw.Metadata.Duration.text(),
		},
		RawXML: text,
	}
	for _, k := range raw.Metadata.Keywords {
		if s := k.text(); s != "" {
			mf.Metadata.Keywords = append(mf.Metadata.Keywords, s)
		}
	}

	if len(raw.Organizations.Orgs) > 0 {
		org := raw.Organizations.Orgs[0]
		mf.Title = strings.TrimSpace(org.Title)
		for _, it := range org.Items {
			mf.Structure = append(mf.Structure, buildNode(it, 0))
		}
	}

	for _, r := range raw.Resources {
		res := Resource{
			Identifier: r.Identifier,
			Type:       r.Type,
			Href:       r.Href,
		}
		for _, f := range r.Files {
			res.Files = append(res.Files, f.Href)
		}
		mf.Resources = append(mf.Resources, res)
	}
	return mf, nil
}

func buildNode(it itemXML, depth int) StructureNode {
	n := StructureNode{
		Identifier:    it.Identifier,
		IdentifierRef: it.IdentifierRef,
		Title:         strings.TrimSpace(it.Title),
		Depth:         depth,
	}
	for _, child := range it.Items {
		n.Children = append(n.Children, buildNode(child, depth+1))
	}
	return n
}

// detectVersion checks schemaversion text first, then the root element's
// namespace declarations. Undetermined is a valid state, not an error.
func detectVersion(raw manifestXML) Version {
	sv := raw.Metadata.SchemaVersion
	switch {
	case strings.Contains(sv, "2004"):
		return Version2004
	case strings.Contains(sv, "1.2"):
		return Version12
	}
	decls := []string{raw.XMLName.Space}
	for _, a := range raw.Attrs {
		decls = append(decls, a.Value)
	}
	for _, d := range decls {
		if strings.Contains(d, "2004") {
			return Version2004
		}
		if strings.Contains(d, "1.2") || strings.Contains(d, "1p2") {
			return Version12
		}
	}
	return VersionUnknown
}
