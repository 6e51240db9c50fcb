package scorm

import (
	"context"
	"mime"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Category is one content bucket of the classifier.
type Category string

const (
	CategoryMarkup Category = "html"
	CategoryVideo  Category = "video"
	CategoryAudio  Category = "audio"
	CategoryImage  Category = "images"
	CategoryScript Category = "javascript"
	CategoryStyle  Category = "css"
	CategoryOther  Category = "other"
)

// Extension lists, matched case-insensitively. Evaluation follows
// categoryOrder so an extension shared across lists (ogg) lands in
// exactly one bucket.
var (
	markupExts = []string{"html", "htm"}
	videoExts  = []string{"mp4", "webm", "ogg", "ogv", "mov", "avi", "wmv", "flv", "m4v"}
	audioExts  = []string{"mp3", "wav", "ogg", "m4a", "aac", "wma", "flac"}
	imageExts  = []string{"jpg", "jpeg", "png", "gif", "svg", "webp", "bmp", "ico"}
	scriptExts = []string{"js"}
	styleExts  = []string{"css"}

	categoryOrder = []struct {
		cat  Category
		exts []string
	}{
		{CategoryMarkup, markupExts},
		{CategoryVideo, videoExts},
		{CategoryAudio, audioExts},
		{CategoryImage, imageExts},
		{CategoryScript, scriptExts},
		{CategoryStyle, styleExts},
	}
)

// Classify assigns one path to one category.
func Classify(p string) Category {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(p)), ".")
	for _, c := range categoryOrder {
		for _, e := range c.exts {
			if ext == e {
				return c.cat
			}
		}
	}
	return CategoryOther
}

// mediaMime covers the classifier's media extensions explicitly; the
// platform mime table varies across hosts and the archive format itself
// declares no types, so best-effort here must still be deterministic.
var mediaMime = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".ogg":  "video/ogg",
	".ogv":  "video/ogg",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".m4v":  "video/x-m4v",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".wma":  "audio/x-ms-wma",
	".flac": "audio/flac",
}

func mimeFor(p string) string {
	ext := strings.ToLower(path.Ext(p))
	if t, ok := mediaMime[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// BuildInventory partitions every file entry into exactly one bucket and
// materializes video/audio payloads. Materialization runs one task per
// media entry; bucket order is stitched from archive order afterwards, so
// output is deterministic regardless of task completion order. An entry
// that fails to decompress is kept with a nil payload and reported in the
// returned warnings rather than failing the whole inventory.
func BuildInventory(ctx context.Context, ar *Archive) (ContentInventory, []string) {
	var inv ContentInventory

	type mediaSlot struct {
		entry *Entry
		cat   Category
		mf    MediaFile
		err   error
	}
	var slots []*mediaSlot

	for _, e := range ar.Entries() {
		cat := Classify(e.Name())
		switch cat {
		case CategoryMarkup:
			inv.HTML = append(inv.HTML, e.Name())
		case CategoryVideo, CategoryAudio:
			slots = append(slots, &mediaSlot{entry: e, cat: cat})
		case CategoryImage:
			inv.Images = append(inv.Images, e.Name())
		case CategoryScript:
			inv.JavaScript = append(inv.JavaScript, e.Name())
		case CategoryStyle:
			inv.CSS = append(inv.CSS, e.Name())
		default:
			if e.Name() == ManifestName {
				continue
			}
			inv.Other = append(inv.Other, e.Name())
		}
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, s := range slots {
		s := s
		g.Go(func() error {
			data, err := s.entry.Bytes()
			s.mf = MediaFile{
				Path:     s.entry.Name(),
				Size:     s.entry.Size(),
				MimeType: mimeFor(s.entry.Name()),
				Data:     data,
			}
			s.err = err
			return nil
		})
	}
	_ = g.Wait()

	var warnings []string
	for _, s := range slots {
		if s.err != nil {
			warnings = append(warnings, "could not read media entry "+s.entry.Name()+": "+s.err.Error())
		}
		if s.cat == CategoryVideo {
			inv.Video = append(inv.Video, s.mf)
		} else {
			inv.Audio = append(inv.Audio, s.mf)
		}
	}
	return inv, warnings
}
