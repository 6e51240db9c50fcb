// Package repair validates a package archive and applies a best-effort,
// deterministic set of fixes. It operates on a working copy: the caller's
// input bytes are never mutated, and in the repaired archive only the
// manifest entry ever differs from the original.
package repair

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/mind-engage/scorminspect/internal/scorm"
)

// Common runtime shims shipped by the major authoring tools. Absence is
// advisory only; plenty of hand-rolled packages run without one.
var runtimeFiles = []string{
	"APIWrapper.js",
	"SCOFunctions.js",
	"SCORM_API_wrapper.js",
	"scormdriver.js",
	"scormfunctions.js",
}

type state struct {
	ar *scorm.Archive

	manifestText string // working manifest, possibly synthesized or patched
	dropEntry    string // odd-case manifest entry superseded by the canonical name
	parsedOK     bool

	issues   []string
	fixes    []string
	warnings []string
}

func (s *state) issue(format string, args ...interface{}) {
	s.issues = append(s.issues, fmt.Sprintf(format, args...))
}
func (s *state) fix(format string, args ...interface{}) {
	s.fixes = append(s.fixes, fmt.Sprintf(format, args...))
}
func (s *state) warn(format string, args ...interface{}) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

// Run validates the archive and repairs what it can. It never fails on
// package defects; the only error is unreadable (non-ZIP) input, for
// which no repair is attempted.
func Run(data []byte) (scorm.RepairResult, error) {
	ar, err := scorm.OpenArchive(data)
	if err != nil {
		return scorm.RepairResult{}, err
	}
	s := &state{ar: ar}

	s.checkManifestPresence()
	s.checkWellFormed()
	s.checkResources()
	s.checkEntryPoints()
	s.checkRuntimeFiles()
	s.checkContentPresence()

	res := scorm.RepairResult{
		Success:  len(s.issues) == 0,
		Issues:   s.issues,
		Fixes:    s.fixes,
		Warnings: s.warnings,
	}
	if len(s.fixes) > 0 {
		repaired, err := s.rebuild()
		if err != nil {
			res.Success = false
			res.Issues = append(res.Issues, "could not write repaired archive: "+err.Error())
		} else {
			res.RepairedArchive = repaired
		}
	}
	return res, nil
}

// checkManifestPresence resolves the manifest by exact name, then
// case-insensitively, then synthesizes a minimal SCORM-1.2-shaped one
// from the first markup file.
func (s *state) checkManifestPresence() {
	if e, ok := s.ar.Lookup(scorm.ManifestName); ok {
		if text, err := e.Text(); err == nil {
			s.manifestText = text
		} else {
			s.issue("manifest entry unreadable: %v", err)
		}
		return
	}
	if e, ok := s.ar.LookupFold(scorm.ManifestName); ok {
		if text, err := e.Text(); err == nil {
			s.manifestText = text
			s.dropEntry = e.Name()
			s.fix("renamed %s to canonical %s", e.Name(), scorm.ManifestName)
		} else {
			s.issue("manifest entry unreadable: %v", err)
		}
		return
	}
	if first := s.firstMarkup(); first != "" {
		s.manifestText = synthesizeManifest(first)
		s.fix("synthesized missing %s with entry point %s", scorm.ManifestName, first)
		return
	}
	s.issue("manifest missing and no markup file available to synthesize one")
}

// checkWellFormed re-parses after two deterministic textual repairs:
// unescaped ampersands and stray close tags after self-closing elements.
func (s *state) checkWellFormed() {
	if s.manifestText == "" {
		return
	}
	if wellFormed(s.manifestText) {
		s.parsedOK = true
		return
	}
	repaired := escapeBareAmpersands(s.manifestText)
	repaired = collapseDanglingClose(repaired)
	if wellFormed(repaired) {
		s.manifestText = repaired
		s.parsedOK = true
		s.fix("repaired malformed manifest XML (escaped ampersands, normalized self-closing tags)")
		return
	}
	// keep going with whatever later checks can still do
	s.issue("manifest is not well-formed XML and textual repair did not help")
}

func (s *state) checkResources() {
	if !s.parsedOK {
		return
	}
	mf, err := scorm.ParseManifest(s.manifestText)
	if err != nil {
		return
	}
	if len(mf.Resources) == 0 {
		s.warn("manifest declares no resources")
	}
}

// checkEntryPoints confirms each declared href resolves to an archive
// entry. If nothing resolves, the first markup file is patched into the
// manifest as a synthetic first resource.
func (s *state) checkEntryPoints() {
	if !s.parsedOK {
		return
	}
	mf, err := scorm.ParseManifest(s.manifestText)
	if err != nil {
		return
	}
	declared, resolved := 0, 0
	for _, r := range mf.Resources {
		if r.Href == "" {
			continue
		}
		declared++
		if _, ok := s.ar.Lookup(r.Href); ok {
			resolved++
			continue
		}
		if e, ok := s.ar.LookupFold(r.Href); ok {
			resolved++
			s.warn("entry point %s resolves only case-insensitively (archive has %s)", r.Href, e.Name())
			continue
		}
		s.issue("Entry point not found: %s", r.Href)
		if alt := s.suggestAlternative(r.Href); alt != "" {
			s.warn("similar markup file for %s: %s", r.Href, alt)
		}
	}
	if declared > 0 && resolved == 0 {
		if first := s.firstMarkup(); first != "" {
			s.manifestText = insertResource(s.manifestText, first)
			s.fix("patched synthetic entry point %s into manifest resources", first)
		}
	}
}

func (s *state) checkRuntimeFiles() {
	for _, name := range runtimeFiles {
		for _, e := range s.ar.Entries() {
			if strings.EqualFold(path.Base(e.Name()), name) {
				return
			}
		}
	}
	s.warn("no common SCORM runtime script found (looked for %s)", strings.Join(runtimeFiles, ", "))
}

func (s *state) checkContentPresence() {
	if s.firstMarkup() == "" {
		s.issue("package contains no viewable markup content")
	}
}

func (s *state) firstMarkup() string {
	for _, e := range s.ar.Entries() {
		if scorm.Classify(e.Name()) == scorm.CategoryMarkup {
			return e.Name()
		}
	}
	return ""
}

// suggestAlternative matches the broken href's filename stem against
// markup files anywhere in the archive.
func (s *state) suggestAlternative(href string) string {
	stem := strings.ToLower(strings.TrimSuffix(path.Base(href), path.Ext(href)))
	if stem == "" {
		return ""
	}
	for _, e := range s.ar.Entries() {
		if scorm.Classify(e.Name()) != scorm.CategoryMarkup {
			continue
		}
		got := strings.ToLower(strings.TrimSuffix(path.Base(e.Name()), path.Ext(e.Name())))
		if got == stem {
			return e.Name()
		}
	}
	return ""
}

// rebuild copies every original entry verbatim and replaces only the
// manifest with the working text.
func (s *state) rebuild() ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, e := range s.ar.Entries() {
		if e.Name() == scorm.ManifestName || (s.dropEntry != "" && e.Name() == s.dropEntry) {
			continue
		}
		data, err := e.Bytes()
		if err != nil {
			return nil, fmt.Errorf("copy %s: %w", e.Name(), err)
		}
		w, err := zw.Create(e.Name())
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
	}
	w, err := zw.Create(scorm.ManifestName)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, s.manifestText); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

/* ---------------- textual XML repair helpers ---------------- */

func wellFormed(text string) bool {
	dec := xml.NewDecoder(strings.NewReader(text))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return true
		}
		if err != nil {
			return false
		}
	}
}

var xmlEntityRe = regexp.MustCompile(`^&(?:amp|lt|gt|quot|apos|#[0-9]+|#x[0-9a-fA-F]+);`)

func escapeBareAmpersands(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] != '&' {
			b.WriteByte(text[i])
			continue
		}
		if loc := xmlEntityRe.FindStringIndex(text[i:]); loc != nil {
			b.WriteString(text[i : i+loc[1]])
			i += loc[1] - 1
			continue
		}
		b.WriteString("&amp;")
	}
	return b.String()
}

var danglingCloseRe = regexp.MustCompile(`<([A-Za-z][\w.:-]*)([^<>]*)/>\s*</([A-Za-z][\w.:-]*)>`)

// collapseDanglingClose rewrites `<tag/></tag>` pairs, a malformation a
// few authoring tools emit, into a single self-closing element.
func collapseDanglingClose(text string) string {
	return danglingCloseRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := danglingCloseRe.FindStringSubmatch(m)
		if sub[1] == sub[3] {
			return "<" + sub[1] + sub[2] + "/>"
		}
		return m
	})
}

/* ---------------- manifest synthesis and patching ---------------- */

func synthesizeManifest(href string) string {
	title := strings.TrimSuffix(path.Base(href), path.Ext(href))
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<manifest identifier="synthesized.manifest" version="1.1"
    xmlns="http://www.imsproject.org/xsd/imscp_rootv1p1p2"
    xmlns:adlcp="http://www.adlnet.org/xsd/adlcp_rootv1p2">
  <metadata>
    <schema>ADL SCORM</schema>
    <schemaversion>1.2</schemaversion>
  </metadata>
  <organizations default="ORG-1">
    <organization identifier="ORG-1">
      <title>%s</title>
      <item identifier="ITEM-1" identifierref="RES-1">
        <title>%s</title>
      </item>
    </organization>
  </organizations>
  <resources>
    <resource identifier="RES-1" type="webcontent" adlcp:scormtype="sco" href="%s">
      <file href="%s"/>
    </resource>
  </resources>
</manifest>
`, xmlEscape(title), xmlEscape(title), xmlEscape(href), xmlEscape(href))
}

var resourcesOpenRe = regexp.MustCompile(`(?i)<resources[^>]*>`)

// insertResource places a synthetic webcontent resource first in the
// resources section, creating the section when it is absent entirely.
func insertResource(text, href string) string {
	res := fmt.Sprintf(`<resource identifier="RES-REPAIR-1" type="webcontent" href="%s"><file href="%s"/></resource>`,
		xmlEscape(href), xmlEscape(href))
	if loc := resourcesOpenRe.FindStringIndex(text); loc != nil {
		return text[:loc[1]] + res + text[loc[1]:]
	}
	if i := strings.LastIndex(text, "</manifest>"); i >= 0 {
		return text[:i] + "<resources>" + res + "</resources>" + text[i:]
	}
	return text + "<resources>" + res + "</resources>"
}

func xmlEscape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
