package scorm

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ManifestName is the canonical manifest entry name at the package root.
const ManifestName = "imsmanifest.xml"

// Archive is a read-only view over a ZIP package held in memory.
// Entry order follows the ZIP central directory.
type Archive struct {
	entries []*Entry
	byName  map[string]*Entry
}

// Entry is one named file inside the archive. Payloads are materialized
// lazily: Bytes/Text decompress on call, not at open time.
type Entry struct {
	name string
	file *zip.File
}

func (e *Entry) Name() string { return e.name }

// Size is the declared uncompressed size.
func (e *Entry) Size() int64 { return int64(e.file.UncompressedSize64) }

func (e *Entry) Bytes() ([]byte, error) {
	rc, err := e.file.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry %q: %w", e.name, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read entry %q: %w", e.name, err)
	}
	return b, nil
}

func (e *Entry) Text() (string, error) {
	b, err := e.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// OpenArchive opens a ZIP byte buffer. Directories are dropped; names are
// slash-normalized. Corrupt input maps to ErrArchiveUnreadable.
func OpenArchive(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveUnreadable, err)
	}
	ar := &Archive{byName: map[string]*Entry{}}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := filepath.ToSlash(f.Name)
		e := &Entry{name: name, file: f}
		ar.entries = append(ar.entries, e)
		ar.byName[name] = e
	}
	return ar, nil
}

// Entries returns all file entries in archive order.
func (a *Archive) Entries() []*Entry { return a.entries }

// Lookup finds an entry by exact name.
func (a *Archive) Lookup(name string) (*Entry, bool) {
	e, ok := a.byName[filepath.ToSlash(name)]
	return e, ok
}

// LookupFold finds an entry by case-insensitive name. First match in
// archive order wins.
func (a *Archive) LookupFold(name string) (*Entry, bool) {
	want := strings.ToLower(filepath.ToSlash(name))
	for _, e := range a.entries {
		if strings.ToLower(e.name) == want {
			return e, true
		}
	}
	return nil, false
}

// Manifest returns the package manifest entry, exact-name lookup only.
// The repairer owns the case-insensitive fallback.
func (a *Archive) Manifest() (*Entry, bool) { return a.Lookup(ManifestName) }
