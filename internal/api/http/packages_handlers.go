package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mind-engage/scorminspect/internal/analyzer"
	"github.com/mind-engage/scorminspect/internal/pkgstore"
	"github.com/mind-engage/scorminspect/internal/scorm"
	"github.com/mind-engage/scorminspect/internal/storage"
)

// POST /packages (multipart: file=package.zip)
func UploadPackageHandler(store pkgstore.Store, bs storage.BlobStore, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", 400)
			return
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}

		pa, err := analyzer.Analyze(r.Context(), data)
		if err != nil {
			http.Error(w, "analyze: "+err.Error(), analyzeStatus(err))
			return
		}

		id := uuid.NewString()
		if _, err := bs.Put("packages/"+id+".zip", readerOf(data)); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		rec := pkgstore.Record{
			ID:         id,
			FileName:   hdr.Filename,
			UploadedAt: time.Now().Unix(),
			Analysis:   pa,
		}
		if err := store.Put(r.Context(), rec); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rec)
	}
}

// GET /packages?q=&limit=&offset=
func ListPackagesHandler(store pkgstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := pkgstore.ListOpts{Q: r.URL.Query().Get("q")}
		opts.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
		opts.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
		sums, err := store.List(r.Context(), opts)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if sums == nil {
			sums = []pkgstore.Summary{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sums)
	}
}

// GET /packages/{id}
func GetPackageHandler(store pkgstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, pkgstore.ErrNotFound) {
				http.Error(w, "not found", 404)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rec)
	}
}

// analyzeStatus maps the fatal taxonomy to response codes: unreadable or
// manifest-broken input is the client's problem, not ours.
func analyzeStatus(err error) int {
	switch {
	case errors.Is(err, scorm.ErrArchiveUnreadable),
		errors.Is(err, scorm.ErrManifestMissing),
		errors.Is(err, scorm.ErrManifestMalformed):
		return 422
	default:
		return 500
	}
}
