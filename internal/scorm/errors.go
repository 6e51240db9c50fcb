package scorm

import "errors"

var (
	// ErrArchiveUnreadable means the input is not a readable ZIP. Fatal;
	// no repair is attempted.
	ErrArchiveUnreadable = errors.New("archive unreadable")

	// ErrManifestMissing means no imsmanifest.xml entry exists. The
	// repairer can often synthesize one; the interpreter cannot.
	ErrManifestMissing = errors.New("imsmanifest.xml not found")

	// ErrManifestMalformed means the manifest exists but is not
	// well-formed XML. Route such packages through the repairer first.
	ErrManifestMalformed = errors.New("manifest is not well-formed XML")
)
