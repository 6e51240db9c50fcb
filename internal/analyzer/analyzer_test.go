package analyzer

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"reflect"
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

const courseManifest = `<?xml version="1.0"?>
<manifest identifier="course-1">
  <metadata>
    <schema>ADL SCORM</schema>
    <schemaversion>2004 3rd Edition</schemaversion>
  </metadata>
  <organizations default="ORG-1">
    <organization identifier="ORG-1">
      <title>Astronomy 101</title>
      <item identifier="I1" identifierref="R1"><title>Intro</title></item>
      <item identifier="I2" identifierref="R2"><title>Quiz</title></item>
    </organization>
  </organizations>
  <resources>
    <resource identifier="R1" type="webcontent" href="index.html">
      <file href="index.html"/>
    </resource>
    <resource identifier="R2" type="webcontent" href="quiz.html">
      <file href="quiz.html"/>
    </resource>
  </resources>
</manifest>`

func courseArchive(t *testing.T) []byte {
	return zipFixture(t, [][2]string{
		{scorm.ManifestName, courseManifest},
		{"index.html", "<html><body>Welcome</body></html>"},
		{"quiz.html", `<html><body><h1>Quiz</h1>
<div class="question"><p>Which planet is closest to the sun?</p>
<ul><li>Mercury</li><li>Venus</li></ul></div>
</body></html>`},
		{"media/intro.mp4", "not really video"},
	})
}

func TestAnalyzeCourse(t *testing.T) {
	pa, err := Analyze(context.Background(), courseArchive(t))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if pa.Format != "SCORM" || pa.Version != scorm.Version2004 {
		t.Fatalf("format/version = %s/%s", pa.Format, pa.Version)
	}
	if pa.Title != "Astronomy 101" {
		t.Fatalf("title = %q", pa.Title)
	}
	if len(pa.Structure) != 2 {
		t.Fatalf("structure = %+v", pa.Structure)
	}
	if pa.Structure[0].Title != "Intro" || pa.Structure[1].Title != "Quiz" {
		t.Fatalf("structure order = %+v", pa.Structure)
	}
	want := []string{"index.html", "quiz.html"}
	if !reflect.DeepEqual(pa.EntryPoints, want) {
		t.Fatalf("entry points = %v", pa.EntryPoints)
	}
	if len(pa.Content.HTML) != 2 || len(pa.Content.Video) != 1 {
		t.Fatalf("inventory = %+v", pa.Content)
	}
	if pa.Content.Video[0].Data == nil {
		t.Fatalf("media payload not materialized")
	}
	if len(pa.Assessments) != 1 {
		t.Fatalf("assessments = %+v", pa.Assessments)
	}
	a := pa.Assessments[0]
	if a.SourceFile != "quiz.html" || a.Strategy != scorm.StrategyHTML {
		t.Fatalf("assessment = %+v", a)
	}
	if len(pa.Warnings) != 0 {
		t.Fatalf("warnings = %v", pa.Warnings)
	}
}

// The same bytes always yield the same analysis.
func TestAnalyzeDeterministic(t *testing.T) {
	data := courseArchive(t)
	first, err := Analyze(context.Background(), data)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	second, err := Analyze(context.Background(), data)
	if err != nil {
		t.Fatalf("analyze again: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("analysis is not deterministic")
	}
}

func TestAnalyzeFatalTaxonomy(t *testing.T) {
	cases := []struct {
		name string
		data func(t *testing.T) []byte
		want error
	}{
		{"garbage bytes", func(t *testing.T) []byte {
			return []byte("definitely not a zip")
		}, scorm.ErrArchiveUnreadable},
		{"no manifest", func(t *testing.T) []byte {
			return zipFixture(t, [][2]string{{"index.html", "<html></html>"}})
		}, scorm.ErrManifestMissing},
		{"odd-case manifest is still missing", func(t *testing.T) []byte {
			return zipFixture(t, [][2]string{
				{"IMSMANIFEST.XML", courseManifest},
				{"index.html", "<html></html>"},
			})
		}, scorm.ErrManifestMissing},
		{"malformed manifest", func(t *testing.T) []byte {
			return zipFixture(t, [][2]string{
				{scorm.ManifestName, "<manifest><organizations></manifest>"},
			})
		}, scorm.ErrManifestMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Analyze(context.Background(), tc.data(t))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestAnalyzeDegradesToWarnings(t *testing.T) {
	manifest := strings.Replace(courseManifest, `identifierref="R2"`, `identifierref="R9"`, 1)
	manifest = strings.Replace(manifest, `href="quiz.html"`, `href="gone.html"`, 1)
	data := zipFixture(t, [][2]string{
		{scorm.ManifestName, manifest},
		{"index.html", "<html></html>"},
	})
	pa, err := Analyze(context.Background(), data)
	if err != nil {
		t.Fatalf("defects below the fatal taxonomy must not fail: %v", err)
	}
	if !reflect.DeepEqual(pa.EntryPoints, []string{"index.html"}) {
		t.Fatalf("entry points = %v", pa.EntryPoints)
	}
	var missingRef, missingHref bool
	for _, w := range pa.Warnings {
		if strings.Contains(w, "undeclared resource R9") {
			missingRef = true
		}
		if strings.Contains(w, "missing entry point gone.html") {
			missingHref = true
		}
	}
	if !missingRef || !missingHref {
		t.Fatalf("warnings = %v", pa.Warnings)
	}
}
