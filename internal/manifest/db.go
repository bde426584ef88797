// Package manifest records runs and exported frames in a SQLite database
// so a capture session can be audited after the fact.
package manifest

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrUnknownRun is returned for operations on a run ID that was never started.
var ErrUnknownRun = errors.New("manifest: unknown run")

type DB struct {
	*sql.DB
}

// Open opens (or creates) the manifest at path and migrates it to the
// latest schema.
func Open(path string) (*DB, error) {
	// Pragmas in the DSN apply to every pooled connection.
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}

	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// RunInfo describes one invocation of the pipeline.
type RunInfo struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	CameraURI   string
	Calibration string
	Width       int
	Height      int
	Focal       float64
	Baseline    float64
	SkipFrames  int
	ExportTime  bool
	OutputDir   string

	FramesExported int
}

// FrameRecord is one exported frame with its depth summary.
type FrameRecord struct {
	RunID     string
	Seq       uint64
	Index     string
	Timestamp float64
	DepthPath string
	GreyPath  string

	TotalPixels int
	ValidPixels int
	MinDepth    float64
	MaxDepth    float64
	MeanDepth   float64
	StdDev      float64
}

// StartRun inserts a run and returns its generated ID.
func (db *DB) StartRun(info RunInfo) (string, error) {
	id := uuid.NewString()
	if info.StartedAt.IsZero() {
		info.StartedAt = time.Now()
	}
	if info.OutputDir == "" {
		info.OutputDir = "."
	}
	_, err := db.Exec(`
		INSERT INTO runs (
			run_id, started_at_ns, camera_uri, calibration, width, height,
			focal, baseline, skip_frames, export_time, output_dir
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, info.StartedAt.UnixNano(), info.CameraURI, info.Calibration, info.Width, info.Height,
		info.Focal, info.Baseline, info.SkipFrames, boolToInt(info.ExportTime), info.OutputDir,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return id, nil
}

// RecordFrame stores an exported frame and bumps the run's frame count.
func (db *DB) RecordFrame(f FrameRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE runs SET frames_exported = frames_exported + 1 WHERE run_id = ?`, f.RunID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRun, f.RunID)
	}

	_, err = tx.Exec(`
		INSERT INTO frames (
			run_id, seq, frame_index, timestamp, depth_path, grey_path,
			total_pixels, valid_pixels, min_depth, max_depth, mean_depth, stddev_depth
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.RunID, int64(f.Seq), f.Index, f.Timestamp, f.DepthPath, f.GreyPath,
		f.TotalPixels, f.ValidPixels, f.MinDepth, f.MaxDepth, f.MeanDepth, f.StdDev,
	)
	if err != nil {
		return fmt.Errorf("failed to insert frame %d: %w", f.Seq, err)
	}
	return tx.Commit()
}

// FinishRun stamps the end time of a run.
func (db *DB) FinishRun(runID string, at time.Time) error {
	res, err := db.Exec(`UPDATE runs SET finished_at_ns = ? WHERE run_id = ?`, at.UnixNano(), runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}
	return nil
}

// Run returns the stored description of a run.
func (db *DB) Run(runID string) (RunInfo, error) {
	var (
		info       RunInfo
		started    int64
		finished   sql.NullInt64
		exportTime int
	)
	err := db.QueryRow(`
		SELECT run_id, started_at_ns, finished_at_ns, camera_uri, calibration, width, height,
		       focal, baseline, skip_frames, export_time, output_dir, frames_exported
		FROM runs WHERE run_id = ?`, runID).Scan(
		&info.ID, &started, &finished, &info.CameraURI, &info.Calibration, &info.Width, &info.Height,
		&info.Focal, &info.Baseline, &info.SkipFrames, &exportTime, &info.OutputDir, &info.FramesExported,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}
	if err != nil {
		return RunInfo{}, err
	}
	info.StartedAt = time.Unix(0, started)
	if finished.Valid {
		info.FinishedAt = time.Unix(0, finished.Int64)
	}
	info.ExportTime = exportTime != 0
	return info, nil
}

// Frames returns the frames of a run in capture order.
func (db *DB) Frames(runID string) ([]FrameRecord, error) {
	rows, err := db.Query(`
		SELECT run_id, seq, frame_index, timestamp, depth_path, grey_path,
		       total_pixels, valid_pixels, min_depth, max_depth, mean_depth, stddev_depth
		FROM frames WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FrameRecord
	for rows.Next() {
		var (
			f   FrameRecord
			seq int64
		)
		if err := rows.Scan(&f.RunID, &seq, &f.Index, &f.Timestamp, &f.DepthPath, &f.GreyPath,
			&f.TotalPixels, &f.ValidPixels, &f.MinDepth, &f.MaxDepth, &f.MeanDepth, &f.StdDev); err != nil {
			return nil, err
		}
		f.Seq = uint64(seq)
		out = append(out, f)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
