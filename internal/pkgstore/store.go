// Package pkgstore persists analyzed packages for the gateway. Analyses
// are stored whole as JSON; the service never queries inside them.
package pkgstore

import (
	"context"
	"errors"

	"github.com/mind-engage/scorminspect/internal/scorm"
)

var ErrNotFound = errors.New("package not found")

// Record is one analyzed upload.
type Record struct {
	ID         string                 `json:"id"`
	FileName   string                 `json:"file_name"`
	UploadedAt int64                  `json:"uploaded_at"`
	Analysis   *scorm.PackageAnalysis `json:"analysis"`
}

// Summary is the list-view projection of a Record.
type Summary struct {
	ID              string        `json:"id"`
	FileName        string        `json:"file_name"`
	Title           string        `json:"title"`
	Version         scorm.Version `json:"version"`
	AssessmentCount int           `json:"assessment_count"`
	UploadedAt      int64         `json:"uploaded_at"`
}

// RepairReport ties one validator run to a stored package.
type RepairReport struct {
	ID        string              `json:"id"`
	PackageID string              `json:"package_id"`
	Success   bool                `json:"success"`
	Report    *scorm.RepairResult `json:"report"`
	CreatedAt int64               `json:"created_at"`
}

type ListOpts struct {
	Q      string
	Limit  int
	Offset int
}

type Store interface {
	Put(ctx context.Context, rec Record) error
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, opts ListOpts) ([]Summary, error)

	// SaveReport fails with ErrNotFound when the package does not exist.
	SaveReport(ctx context.Context, rep RepairReport) error
	Reports(ctx context.Context, packageID string) ([]RepairReport, error)
}

func summarize(rec Record) Summary {
	s := Summary{
		ID:         rec.ID,
		FileName:   rec.FileName,
		UploadedAt: rec.UploadedAt,
	}
	if rec.Analysis != nil {
		s.Title = rec.Analysis.Title
		s.Version = rec.Analysis.Version
		s.AssessmentCount = len(rec.Analysis.Assessments)
	}
	return s
}
