package pkgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/mind-engage/scorminspect/internal/scorm"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) Put(ctx context.Context, rec Record) error {
	aj, err := json.Marshal(rec.Analysis)
	if err != nil {
		return err
	}
	title, version := "", string(scorm.VersionUnknown)
	if rec.Analysis != nil {
		title = rec.Analysis.Title
		version = string(rec.Analysis.Version)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO packages (id,file_name,title,version,analysis_json,uploaded_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET file_name=EXCLUDED.file_name, title=EXCLUDED.title,
			version=EXCLUDED.version, analysis_json=EXCLUDED.analysis_json`,
		rec.ID, rec.FileName, title, version, string(aj), rec.UploadedAt)
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,file_name,analysis_json,uploaded_at FROM packages WHERE id=$1`, id)
	var rec Record
	var aj string
	if err := row.Scan(&rec.ID, &rec.FileName, &aj, &rec.UploadedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(aj), &rec.Analysis); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *SQLStore) SaveReport(ctx context.Context, rep RepairReport) error {
	rj, err := json.Marshal(rep.Report)
	if err != nil {
		return err
	}
	var one int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM packages WHERE id=$1`, rep.PackageID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO repair_reports (id,package_id,success,report_json,created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		rep.ID, rep.PackageID, rep.Success, string(rj), rep.CreatedAt)
	return err
}

func (s *SQLStore) Reports(ctx context.Context, packageID string) ([]RepairReport, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,package_id,success,report_json,created_at
		FROM repair_reports WHERE package_id=$1
		ORDER BY created_at DESC, id ASC`, packageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RepairReport
	for rows.Next() {
		var rep RepairReport
		var rj string
		if err := rows.Scan(&rep.ID, &rep.PackageID, &rep.Success, &rj, &rep.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(rj), &rep.Report); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Summary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,file_name,title,version,analysis_json,uploaded_at
		FROM packages
		WHERE ($1 = '' OR title LIKE '%'||$1||'%' OR file_name LIKE '%'||$1||'%')
		ORDER BY uploaded_at DESC, id ASC
		LIMIT $2 OFFSET $3`,
		opts.Q, limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var aj string
		if err := rows.Scan(&sum.ID, &sum.FileName, &sum.Title, &sum.Version, &aj, &sum.UploadedAt); err != nil {
			return nil, err
		}
		var pa scorm.PackageAnalysis
		if err := json.Unmarshal([]byte(aj), &pa); err == nil {
			sum.AssessmentCount = len(pa.Assessments)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
