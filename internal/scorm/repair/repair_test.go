package repair

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/mind-engage/scorminspect/internal/scorm"
)

func zipFixture(t *testing.T, files [][2]string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, f := range files {
		w, err := zw.Create(f[0])
		if err != nil {
			t.Fatalf("create %s: %v", f[0], err)
		}
		if _, err := w.Write([]byte(f[1])); err != nil {
			t.Fatalf("write %s: %v", f[0], err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const healthyManifest = `<?xml version="1.0"?>
<manifest identifier="m1">
  <metadata><schemaversion>1.2</schemaversion></metadata>
  <organizations><organization identifier="ORG-1">
    <title>Course</title>
    <item identifier="I1" identifierref="R1"><title>Lesson</title></item>
  </organization></organizations>
  <resources>
    <resource identifier="R1" type="webcontent" href="index.html"><file href="index.html"/></resource>
  </resources>
</manifest>`

func TestHealthyPackage(t *testing.T) {
	data := zipFixture(t, [][2]string{
		{scorm.ManifestName, healthyManifest},
		{"index.html", "<html></html>"},
		{"APIWrapper.js", "// scorm api shim"},
	})
	res, err := Run(data)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Success || len(res.Issues) != 0 || len(res.Fixes) != 0 {
		t.Fatalf("result = %+v", res)
	}
	if res.RepairedArchive != nil {
		t.Fatalf("healthy package must not produce a repaired archive")
	}
}

func TestUnreadableArchive(t *testing.T) {
	_, err := Run([]byte("not a zip"))
	if !errors.Is(err, scorm.ErrArchiveUnreadable) {
		t.Fatalf("expected ErrArchiveUnreadable, got %v", err)
	}
}

// A missing manifest is synthesized from the first markup file.
func TestSynthesizesManifest(t *testing.T) {
	data := zipFixture(t, [][2]string{
		{"lesson1.html", "<html><body>Lesson 1</body></html>"},
	})
	res, err := Run(data)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Success {
		t.Fatalf("issues = %v", res.Issues)
	}
	if len(res.Fixes) != 1 {
		t.Fatalf("fixes = %v", res.Fixes)
	}
	if res.RepairedArchive == nil {
		t.Fatalf("expected a repaired archive")
	}

	ar, err := scorm.OpenArchive(res.RepairedArchive)
	if err != nil {
		t.Fatalf("open repaired: %v", err)
	}
	m, ok := ar.Manifest()
	if !ok {
		t.Fatalf("repaired archive misses %s", scorm.ManifestName)
	}
	text, _ := m.Text()
	mf, err := scorm.ParseManifest(text)
	if err != nil {
		t.Fatalf("parse synthesized: %v", err)
	}
	if mf.Version != scorm.Version12 {
		t.Fatalf("synthesized version = %s", mf.Version)
	}
	if len(mf.Resources) != 1 || mf.Resources[0].Href != "lesson1.html" {
		t.Fatalf("synthesized resources = %+v", mf.Resources)
	}
}

func TestCaseInsensitiveManifestRename(t *testing.T) {
	data := zipFixture(t, [][2]string{
		{"IMSManifest.XML", healthyManifest},
		{"index.html", "<html></html>"},
	})
	res, err := Run(data)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Success || len(res.Fixes) != 1 {
		t.Fatalf("result = %+v", res)
	}
	ar, _ := scorm.OpenArchive(res.RepairedArchive)
	if _, ok := ar.Lookup(scorm.ManifestName); !ok {
		t.Fatalf("canonical manifest missing after rename")
	}
	if _, ok := ar.Lookup("IMSManifest.XML"); ok {
		t.Fatalf("odd-case manifest should have been renamed away")
	}
}

func TestRepairsMalformedXML(t *testing.T) {
	broken := strings.Replace(healthyManifest, "<title>Course</title>", "<title>Q &amp; A & more</title>", 1)
	data := zipFixture(t, [][2]string{
		{scorm.ManifestName, broken},
		{"index.html", "<html></html>"},
	})
	res, err := Run(data)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Success {
		t.Fatalf("issues = %v", res.Issues)
	}
	if len(res.Fixes) != 1 || !strings.Contains(res.Fixes[0], "malformed") {
		t.Fatalf("fixes = %v", res.Fixes)
	}
	ar, _ := scorm.OpenArchive(res.RepairedArchive)
	m, _ := ar.Manifest()
	text, _ := m.Text()
	mf, err := scorm.ParseManifest(text)
	if err != nil {
		t.Fatalf("repaired manifest still malformed: %v", err)
	}
	if mf.Title != "Q & A & more" {
		t.Fatalf("title = %q", mf.Title)
	}
}

// When no declared href resolves, the first markup file is patched in as
// a synthetic first resource.
func TestPatchesSyntheticEntryPoint(t *testing.T) {
	broken := strings.Replace(healthyManifest, `href="index.html"`, `href="gone.html"`, 1)
	broken = strings.Replace(broken, `<file href="index.html"/>`, `<file href="gone.html"/>`, 1)
	data := zipFixture(t, [][2]string{
		{scorm.ManifestName, broken},
		{"start.html", "<html></html>"},
	})
	res, err := Run(data)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// the dangling href stays an unresolved issue even though launch was
	// restored with a synthetic resource
	if res.Success {
		t.Fatalf("expected unresolved issue for gone.html")
	}
	found := false
	for _, s := range res.Issues {
		if strings.Contains(s, "Entry point not found: gone.html") {
			found = true
		}
	}
	if !found {
		t.Fatalf("issues = %v", res.Issues)
	}
	if len(res.Fixes) != 1 {
		t.Fatalf("fixes = %v", res.Fixes)
	}
	ar, _ := scorm.OpenArchive(res.RepairedArchive)
	m, _ := ar.Manifest()
	text, _ := m.Text()
	mf, err := scorm.ParseManifest(text)
	if err != nil {
		t.Fatalf("parse patched: %v", err)
	}
	if len(mf.Resources) != 2 || mf.Resources[0].Href != "start.html" {
		t.Fatalf("patched resources = %+v", mf.Resources)
	}
}

func TestEntryPointSuggestion(t *testing.T) {
	broken := strings.Replace(healthyManifest, `href="index.html"`, `href="content/index.html"`, 1)
	data := zipFixture(t, [][2]string{
		{scorm.ManifestName, broken},
		{"index.html", "<html></html>"},
	})
	res, err := Run(data)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	found := false
	for _, s := range res.Warnings {
		if strings.Contains(s, "index.html") && strings.Contains(s, "similar") {
			found = true
		}
	}
	if !found {
		t.Fatalf("warnings = %v", res.Warnings)
	}
}

// No href resolves and no markup exists: terminal, nothing repairable.
func TestNoContentIsTerminal(t *testing.T) {
	broken := strings.Replace(healthyManifest, `href="index.html"`, `href="missing.html"`, 1)
	data := zipFixture(t, [][2]string{
		{scorm.ManifestName, broken},
		{"notes.txt", "no markup here"},
	})
	res, err := Run(data)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Success || len(res.Fixes) != 0 || res.RepairedArchive != nil {
		t.Fatalf("result = %+v", res)
	}
	wantIssues := 2 // unresolved entry point + no viewable content
	if len(res.Issues) != wantIssues {
		t.Fatalf("issues = %v", res.Issues)
	}
}

func TestMissingRuntimeFilesIsAdvisory(t *testing.T) {
	data := zipFixture(t, [][2]string{
		{scorm.ManifestName, healthyManifest},
		{"index.html", "<html></html>"},
	})
	res, err := Run(data)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Success {
		t.Fatalf("advisory check must not fail the package: %+v", res)
	}
	found := false
	for _, s := range res.Warnings {
		if strings.Contains(s, "runtime script") {
			found = true
		}
	}
	if !found {
		t.Fatalf("warnings = %v", res.Warnings)
	}
}

// Running the repairer on its own output applies no further fixes.
func TestRepairIdempotent(t *testing.T) {
	data := zipFixture(t, [][2]string{
		{"lesson1.html", "<html><body>Lesson 1</body></html>"},
	})
	first, err := Run(data)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.RepairedArchive == nil {
		t.Fatalf("expected repaired archive")
	}
	second, err := Run(first.RepairedArchive)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.Success || len(second.Fixes) != 0 {
		t.Fatalf("second pass = %+v", second)
	}
}
