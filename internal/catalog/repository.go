package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type Repository interface {
	UpsertVideo(ctx context.Context, v *Video) error
	GetVideo(ctx context.Context, id string) (*Video, error)
	ListVideos(ctx context.Context) ([]*Video, error)
	UpdateVideoOffset(ctx context.Context, id, timecodeOffset string) error
	DeleteVideo(ctx context.Context, id string) error

	ReplaceScenes(ctx context.Context, videoID string, scenes []*Scene) error
	GetScene(ctx context.Context, pk int64) (*Scene, error)
	ListScenesByVideo(ctx context.Context, videoID string) ([]*Scene, error)
	UpdateSceneText(ctx context.Context, pk int64, description string) error
	DeleteScenes(ctx context.Context, pks []int64) (int64, error)

	ReplaceTranscriptions(ctx context.Context, videoID string, trans []*Transcription) error
	ListTranscriptionsByScene(ctx context.Context, scenePK int64) ([]*Transcription, error)

	GetSceneExportRows(ctx context.Context, pks []int64) ([]*SceneExportRow, error)

	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobs(ctx context.Context, limit int) ([]*Job, error)
	ListPendingJobs(ctx context.Context) ([]*Job, error)
	UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error
	UpdateJobProgress(ctx context.Context, id string, progress int) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) UpsertVideo(ctx context.Context, v *Video) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO videos (id, filename, filepath, timecode_offset, duration_seconds, frame_rate, creation_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			filepath = excluded.filepath,
			timecode_offset = excluded.timecode_offset,
			duration_seconds = excluded.duration_seconds,
			frame_rate = excluded.frame_rate,
			creation_time = excluded.creation_time
	`, v.ID, v.Filename, v.Filepath, nullString(v.TimecodeOffset), nullFloat(v.DurationSeconds),
		nullFloat(v.FrameRate), nullString(v.CreationTime), v.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetVideo(ctx context.Context, id string) (*Video, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, filename, filepath, timecode_offset, duration_seconds, frame_rate, creation_time, created_at
		FROM videos WHERE id = ?
	`, id)
	return scanVideo(row)
}

func (r *SQLiteRepository) ListVideos(ctx context.Context) ([]*Video, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, filename, filepath, timecode_offset, duration_seconds, frame_rate, creation_time, created_at
		FROM videos ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []*Video
	for rows.Next() {
		v, err := scanVideoRow(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (r *SQLiteRepository) UpdateVideoOffset(ctx context.Context, id, timecodeOffset string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE videos SET timecode_offset = ? WHERE id = ?", nullString(timecodeOffset), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("video not found: %s", id)
	}
	return nil
}

func (r *SQLiteRepository) DeleteVideo(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM videos WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) ReplaceScenes(ctx context.Context, videoID string, scenes []*Scene) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM scenes WHERE video_id = ?", videoID); err != nil {
		return err
	}
	for _, s := range scenes {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO scenes (video_id, scene_id, start_timecode, end_timecode, description, keyframe_path, preview_path)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, videoID, s.SceneID, s.StartTimecode, s.EndTimecode,
			nullString(s.Description), nullString(s.KeyframePath), nullString(s.PreviewPath))
		if err != nil {
			return err
		}
		s.PK, _ = res.LastInsertId()
		s.VideoID = videoID
	}
	return tx.Commit()
}

func (r *SQLiteRepository) GetScene(ctx context.Context, pk int64) (*Scene, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, video_id, scene_id, start_timecode, end_timecode, description, keyframe_path, preview_path
		FROM scenes WHERE id = ?
	`, pk)
	return scanScene(row)
}

func (r *SQLiteRepository) ListScenesByVideo(ctx context.Context, videoID string) ([]*Scene, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, video_id, scene_id, start_timecode, end_timecode, description, keyframe_path, preview_path
		FROM scenes WHERE video_id = ? ORDER BY scene_id
	`, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scenes []*Scene
	for rows.Next() {
		s, err := scanSceneRow(rows)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, s)
	}
	return scenes, rows.Err()
}

func (r *SQLiteRepository) UpdateSceneText(ctx context.Context, pk int64, description string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE scenes SET description = ? WHERE id = ?", nullString(description), pk)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("scene not found: %d", pk)
	}
	return nil
}

func (r *SQLiteRepository) DeleteScenes(ctx context.Context, pks []int64) (int64, error) {
	if len(pks) == 0 {
		return 0, nil
	}
	query := fmt.Sprintf("DELETE FROM scenes WHERE id IN (%s)", placeholders(len(pks)))
	res, err := r.db.ExecContext(ctx, query, int64Args(pks)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) ReplaceTranscriptions(ctx context.Context, videoID string, trans []*Transcription) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM transcriptions WHERE video_id = ?", videoID); err != nil {
		return err
	}
	for _, t := range trans {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO transcriptions (scene_pk, video_id, start_timecode, end_timecode, transcription)
			VALUES (?, ?, ?, ?, ?)
		`, t.ScenePK, videoID, t.StartTimecode, t.EndTimecode, nullString(t.Text))
		if err != nil {
			return err
		}
		t.ID, _ = res.LastInsertId()
		t.VideoID = videoID
	}
	return tx.Commit()
}

func (r *SQLiteRepository) ListTranscriptionsByScene(ctx context.Context, scenePK int64) ([]*Transcription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, scene_pk, video_id, start_timecode, end_timecode, transcription
		FROM transcriptions WHERE scene_pk = ? ORDER BY start_timecode
	`, scenePK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trans []*Transcription
	for rows.Next() {
		var t Transcription
		var text sql.NullString
		if err := rows.Scan(&t.ID, &t.ScenePK, &t.VideoID, &t.StartTimecode, &t.EndTimecode, &text); err != nil {
			return nil, err
		}
		t.Text = text.String
		trans = append(trans, &t)
	}
	return trans, rows.Err()
}

// GetSceneExportRows returns the selected scenes joined with clip metadata,
// preserving the caller's selection order.
func (r *SQLiteRepository) GetSceneExportRows(ctx context.Context, pks []int64) ([]*SceneExportRow, error) {
	if len(pks) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT s.id, s.video_id, s.scene_id, s.start_timecode, s.end_timecode,
		       v.filename, v.timecode_offset, v.duration_seconds, v.frame_rate
		FROM scenes s
		JOIN videos v ON s.video_id = v.id
		WHERE s.id IN (%s)
	`, placeholders(len(pks)))

	rows, err := r.db.QueryContext(ctx, query, int64Args(pks)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byPK := make(map[int64]*SceneExportRow, len(pks))
	for rows.Next() {
		var row SceneExportRow
		var offset sql.NullString
		var duration, frameRate sql.NullFloat64
		if err := rows.Scan(&row.ScenePK, &row.VideoID, &row.SceneID, &row.StartTimecode,
			&row.EndTimecode, &row.VideoFilename, &offset, &duration, &frameRate); err != nil {
			return nil, err
		}
		row.TimecodeOffset = offset.String
		row.DurationSeconds = duration.Float64
		row.FrameRate = frameRate.Float64
		byPK[row.ScenePK] = &row
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Selection order is meaningful: it defines the record timeline.
	ordered := make([]*SceneExportRow, 0, len(pks))
	for _, pk := range pks {
		if row, ok := byPK[pk]; ok {
			ordered = append(ordered, row)
		}
	}
	return ordered, nil
}

func (r *SQLiteRepository) CreateJob(ctx context.Context, job *Job) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, type, status, path, progress, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, job.ID, job.Type, job.Status, nullString(job.Path), job.Progress, nullString(job.Error),
		job.CreatedAt.Format(time.RFC3339), job.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetJob(ctx context.Context, id string) (*Job, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, type, status, path, progress, error, created_at, updated_at
		FROM jobs WHERE id = ?
	`, id)
	return scanJob(row)
}

func (r *SQLiteRepository) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, status, path, progress, error, created_at, updated_at
		FROM jobs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (r *SQLiteRepository) ListPendingJobs(ctx context.Context) ([]*Job, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, status, path, progress, error, created_at, updated_at
		FROM jobs WHERE status = ? ORDER BY created_at
	`, JobStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (r *SQLiteRepository) UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?",
		status, nullString(errorMsg), time.Now().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) UpdateJobProgress(ctx context.Context, id string, progress int) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE jobs SET progress = ?, updated_at = ? WHERE id = ?",
		progress, time.Now().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row *sql.Row) (*Video, error) {
	v, err := scanVideoRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return v, err
}

func scanVideoRow(row rowScanner) (*Video, error) {
	var v Video
	var offset, creation sql.NullString
	var duration, frameRate sql.NullFloat64
	var createdAt string
	if err := row.Scan(&v.ID, &v.Filename, &v.Filepath, &offset, &duration, &frameRate, &creation, &createdAt); err != nil {
		return nil, err
	}
	v.TimecodeOffset = offset.String
	v.DurationSeconds = duration.Float64
	v.FrameRate = frameRate.Float64
	v.CreationTime = creation.String
	v.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &v, nil
}

func scanScene(row *sql.Row) (*Scene, error) {
	s, err := scanSceneRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func scanSceneRow(row rowScanner) (*Scene, error) {
	var s Scene
	var desc, keyframe, preview sql.NullString
	if err := row.Scan(&s.PK, &s.VideoID, &s.SceneID, &s.StartTimecode, &s.EndTimecode, &desc, &keyframe, &preview); err != nil {
		return nil, err
	}
	s.Description = desc.String
	s.KeyframePath = keyframe.String
	s.PreviewPath = preview.String
	return &s, nil
}

func scanJob(row *sql.Row) (*Job, error) {
	j, err := scanJobRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return j, err
}

func scanJobRow(row rowScanner) (*Job, error) {
	var j Job
	var path, errMsg sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(&j.ID, &j.Type, &j.Status, &path, &j.Progress, &errMsg, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	j.Path = path.String
	j.Error = errMsg.String
	j.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	j.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &j, nil
}

func collectJobs(rows *sql.Rows) ([]*Job, error) {
	var jobs []*Job
	for rows.Next() {
		j, err := scanJobRow(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(vals []int64) []any {
	args := make([]any, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	return args
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: f != 0}
}
