package pkgstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mind-engage/scorminspect/internal/db"
	"github.com/mind-engage/scorminspect/internal/scorm"
)

func analysisFixture(title string, assessments int) *scorm.PackageAnalysis {
	pa := &scorm.PackageAnalysis{
		Format:  "SCORM",
		Version: scorm.Version2004,
		Title:   title,
	}
	for i := 0; i < assessments; i++ {
		pa.Assessments = append(pa.Assessments, scorm.Assessment{
			SourceFile:    fmt.Sprintf("quiz%d.html", i),
			Strategy:      scorm.StrategyHTML,
			QuestionCount: 1,
			Questions:     []scorm.Question{{ID: "q1", Kind: scorm.KindUnknown, Text: "?"}},
		})
	}
	return pa
}

func sqliteStore(t *testing.T) Store {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	dbh, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return NewSQLStore(dbh, "sqlite")
}

// Both implementations run the same behavioral suite.
func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqliteStore(t),
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := Record{
				ID:         "p1",
				FileName:   "course.zip",
				UploadedAt: 100,
				Analysis:   analysisFixture("Astronomy 101", 2),
			}
			if err := st.Put(ctx, rec); err != nil {
				t.Fatalf("put: %v", err)
			}
			got, err := st.Get(ctx, "p1")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.FileName != "course.zip" || got.Analysis == nil || got.Analysis.Title != "Astronomy 101" {
				t.Fatalf("got = %+v", got)
			}
			if len(got.Analysis.Assessments) != 2 {
				t.Fatalf("assessments = %+v", got.Analysis.Assessments)
			}
		})
	}
}

func TestGetMissing(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := st.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

func TestPutIsUpsert(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := Record{ID: "p1", FileName: "a.zip", UploadedAt: 1, Analysis: analysisFixture("A", 0)}
			if err := st.Put(ctx, rec); err != nil {
				t.Fatalf("put: %v", err)
			}
			rec.FileName = "b.zip"
			rec.Analysis = analysisFixture("B", 1)
			if err := st.Put(ctx, rec); err != nil {
				t.Fatalf("second put: %v", err)
			}
			got, err := st.Get(ctx, "p1")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.FileName != "b.zip" || got.Analysis.Title != "B" {
				t.Fatalf("got = %+v", got)
			}
		})
	}
}

func TestListFilterAndOrder(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed := []Record{
				{ID: "a", FileName: "intro.zip", UploadedAt: 10, Analysis: analysisFixture("Astronomy Intro", 0)},
				{ID: "b", FileName: "quiz.zip", UploadedAt: 30, Analysis: analysisFixture("Astronomy Quiz", 3)},
				{ID: "c", FileName: "biology.zip", UploadedAt: 20, Analysis: analysisFixture("Biology", 1)},
			}
			for _, rec := range seed {
				if err := st.Put(ctx, rec); err != nil {
					t.Fatalf("put %s: %v", rec.ID, err)
				}
			}

			all, err := st.List(ctx, ListOpts{})
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(all) != 3 || all[0].ID != "b" || all[1].ID != "c" || all[2].ID != "a" {
				t.Fatalf("order = %+v", all)
			}
			if all[0].AssessmentCount != 3 {
				t.Fatalf("summary = %+v", all[0])
			}

			astro, err := st.List(ctx, ListOpts{Q: "Astronomy"})
			if err != nil {
				t.Fatalf("filtered list: %v", err)
			}
			if len(astro) != 2 {
				t.Fatalf("filtered = %+v", astro)
			}

			paged, err := st.List(ctx, ListOpts{Limit: 1, Offset: 1})
			if err != nil {
				t.Fatalf("paged list: %v", err)
			}
			if len(paged) != 1 || paged[0].ID != "c" {
				t.Fatalf("paged = %+v", paged)
			}
		})
	}
}

func TestRepairReports(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := Record{ID: "p1", FileName: "a.zip", UploadedAt: 1, Analysis: analysisFixture("A", 0)}
			if err := st.Put(ctx, rec); err != nil {
				t.Fatalf("put: %v", err)
			}

			orphan := RepairReport{ID: "r0", PackageID: "ghost", CreatedAt: 1}
			if err := st.SaveReport(ctx, orphan); !errors.Is(err, ErrNotFound) {
				t.Fatalf("orphan report err = %v", err)
			}

			reps := []RepairReport{
				{ID: "r1", PackageID: "p1", Success: false, CreatedAt: 10,
					Report: &scorm.RepairResult{Issues: []string{"Entry point not found: x.html"}}},
				{ID: "r2", PackageID: "p1", Success: true, CreatedAt: 20,
					Report: &scorm.RepairResult{Success: true, Fixes: []string{"synthesized missing imsmanifest.xml with entry point x.html"}}},
			}
			for _, rep := range reps {
				if err := st.SaveReport(ctx, rep); err != nil {
					t.Fatalf("save %s: %v", rep.ID, err)
				}
			}

			got, err := st.Reports(ctx, "p1")
			if err != nil {
				t.Fatalf("reports: %v", err)
			}
			if len(got) != 2 || got[0].ID != "r2" || got[1].ID != "r1" {
				t.Fatalf("reports = %+v", got)
			}
			if got[1].Report == nil || len(got[1].Report.Issues) != 1 {
				t.Fatalf("report payload = %+v", got[1].Report)
			}

			none, err := st.Reports(ctx, "p2")
			if err != nil {
				t.Fatalf("reports for empty package: %v", err)
			}
			if len(none) != 0 {
				t.Fatalf("none = %+v", none)
			}
		})
	}
}
