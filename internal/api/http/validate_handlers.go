package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mind-engage/scorminspect/internal/pkgstore"
	"github.com/mind-engage/scorminspect/internal/scorm"
	"github.com/mind-engage/scorminspect/internal/scorm/repair"
	"github.com/mind-engage/scorminspect/internal/storage"
)

// POST /packages/validate (multipart: file=package.zip)
// Returns the RepairResult report; the repaired archive, when one was
// produced, is fetched through the repair endpoint instead.
func ValidatePackageHandler(maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, name, ok := readUpload(w, r, maxBytes)
		if !ok {
			return
		}
		res, err := repair.Run(data)
		if err != nil {
			http.Error(w, "validate: "+err.Error(), 422)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			FileName string `json:"file_name"`
			scorm.RepairResult
			Repaired bool `json:"repaired_archive_available"`
		}{name, res, len(res.RepairedArchive) > 0})
	}
}

// POST /packages/validate/repair (multipart: file=package.zip)
// Streams the repaired archive back; 409 when nothing needed fixing.
func RepairPackageHandler(maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, name, ok := readUpload(w, r, maxBytes)
		if !ok {
			return
		}
		res, err := repair.Run(data)
		if err != nil {
			http.Error(w, "repair: "+err.Error(), 422)
			return
		}
		if len(res.RepairedArchive) == 0 {
			http.Error(w, "no fixes applied", 409)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="repaired-`+name+`"`)
		_, _ = io.Copy(w, bytes.NewReader(res.RepairedArchive))
	}
}

// POST /packages/{id}/validate
// Re-runs the validator against the stored archive and records the report.
func ValidateStoredPackageHandler(store pkgstore.Store, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := store.Get(r.Context(), id); err != nil {
			if errors.Is(err, pkgstore.ErrNotFound) {
				http.Error(w, "not found", 404)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		rc, err := bs.Get("packages/" + id + ".zip")
		if err != nil {
			http.Error(w, "archive unavailable", 404)
			return
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		res, err := repair.Run(data)
		if err != nil {
			http.Error(w, "validate: "+err.Error(), 422)
			return
		}
		rep := pkgstore.RepairReport{
			ID:        uuid.NewString(),
			PackageID: id,
			Success:   res.Success,
			Report:    &res,
			CreatedAt: time.Now().Unix(),
		}
		if err := store.SaveReport(r.Context(), rep); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rep)
	}
}

// GET /packages/{id}/reports
func ListRepairReportsHandler(store pkgstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reps, err := store.Reports(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if reps == nil {
			reps = []pkgstore.RepairReport{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reps)
	}
}

func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	f, hdr, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file required", 400)
		return nil, "", false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		http.Error(w, err.Error(), 400)
		return nil, "", false
	}
	return data, hdr.Filename, true
}

func readerOf(b []byte) io.Reader { return bytes.NewReader(b) }
