package scorm

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

// zipFixture builds an in-memory archive; order of entries is the order
// of the pairs.
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

func TestOpenArchiveRejectsGarbage(t *testing.T) {
	_, err := OpenArchive([]byte("this is not a zip"))
	if !errors.Is(err, ErrArchiveUnreadable) {
		t.Fatalf("expected ErrArchiveUnreadable, got %v", err)
	}
}

func TestArchiveLookup(t *testing.T) {
	data := zipFixture(t, [][2]string{
		{"imsmanifest.xml", "<manifest/>"},
		{"content/Index.HTML", "<html></html>"},
	})
	ar, err := OpenArchive(data)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := ar.Lookup("content/Index.HTML"); !ok {
		t.Fatalf("exact lookup failed")
	}
	if _, ok := ar.Lookup("content/index.html"); ok {
		t.Fatalf("exact lookup should be case-sensitive")
	}
	e, ok := ar.LookupFold("CONTENT/index.html")
	if !ok || e.Name() != "content/Index.HTML" {
		t.Fatalf("fold lookup failed, got %v %v", e, ok)
	}
	if m, ok := ar.Manifest(); !ok || m.Name() != ManifestName {
		t.Fatalf("manifest lookup failed")
	}
}

func TestEntryLazyMaterialization(t *testing.T) {
	data := zipFixture(t, [][2]string{{"a.txt", "hello"}})
	ar, err := OpenArchive(data)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	e := ar.Entries()[0]
	if e.Size() != 5 {
		t.Fatalf("size = %d, want 5", e.Size())
	}
	text, err := e.Text()
	if err != nil || text != "hello" {
		t.Fatalf("text = %q, %v", text, err)
	}
}
