package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shotlog/shotlog-agent/internal/db"
)

func setupTestDB(t *testing.T) (*db.DB, Repository) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	database, err := db.New(dbPath, nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	repo := NewRepository(database.Conn())
	return database, repo
}

func testVideo(id string) *Video {
	return &Video{
		ID:              id,
		Filename:        id + ".MP4",
		Filepath:        "/media/" + id + ".MP4",
		TimecodeOffset:  "01:00:00:00",
		DurationSeconds: 120.5,
		FrameRate:       59.94,
		CreationTime:    "2026-08-12T10:30:00Z",
		CreatedAt:       time.Now(),
	}
}

func TestRepository_UpsertVideo(t *testing.T) {
	database, repo := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()

	v := testVideo("GH010001")
	if err := repo.UpsertVideo(ctx, v); err != nil {
		t.Fatalf("UpsertVideo() error = %v", err)
	}

	got, err := repo.GetVideo(ctx, "GH010001")
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if got.Filename != "GH010001.MP4" {
		t.Errorf("Filename = %s, want GH010001.MP4", got.Filename)
	}
	if got.FrameRate != 59.94 {
		t.Errorf("FrameRate = %v, want 59.94", got.FrameRate)
	}

	// Re-import updates in place rather than duplicating.
	v.TimecodeOffset = "02:00:00:00"
	if err := repo.UpsertVideo(ctx, v); err != nil {
		t.Fatalf("UpsertVideo() second call error = %v", err)
	}
	videos, err := repo.ListVideos(ctx)
	if err != nil {
		t.Fatalf("ListVideos() error = %v", err)
	}
	if len(videos) != 1 {
		t.Fatalf("ListVideos() returned %d videos, want 1", len(videos))
	}
	if videos[0].TimecodeOffset != "02:00:00:00" {
		t.Errorf("TimecodeOffset = %s, want 02:00:00:00", videos[0].TimecodeOffset)
	}
}

func TestRepository_GetVideo_NotFound(t *testing.T) {
	database, repo := setupTestDB(t)
	defer database.Close()

	got, err := repo.GetVideo(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetVideo() = %+v, want nil", got)
	}
}

func TestRepository_UpdateVideoOffset(t *testing.T) {
	database, repo := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()

	if err := repo.UpsertVideo(ctx, testVideo("GH010002")); err != nil {
		t.Fatalf("UpsertVideo() error = %v", err)
	}

	if err := repo.UpdateVideoOffset(ctx, "GH010002", "10:00:00:00"); err != nil {
		t.Fatalf("UpdateVideoOffset() error = %v", err)
	}
	got, _ := repo.GetVideo(ctx, "GH010002")
	if got.TimecodeOffset != "10:00:00:00" {
		t.Errorf("TimecodeOffset = %s, want 10:00:00:00", got.TimecodeOffset)
	}

	if err := repo.UpdateVideoOffset(ctx, "missing", "00:00:00:00"); err == nil {
		t.Error("UpdateVideoOffset() should return error for unknown video")
	}
}

func TestRepository_ReplaceScenes(t *testing.T) {
	database, repo := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()

	if err := repo.UpsertVideo(ctx, testVideo("GH010003")); err != nil {
		t.Fatalf("UpsertVideo() error = %v", err)
	}

	scenes := []*Scene{
		{SceneID: 1, StartTimecode: "00:00:00:00", EndTimecode: "00:00:05:00", Description: "opening"},
		{SceneID: 2, StartTimecode: "00:00:05:00", EndTimecode: "00:00:12:00"},
	}
	if err := repo.ReplaceScenes(ctx, "GH010003", scenes); err != nil {
		t.Fatalf("ReplaceScenes() error = %v", err)
	}
	for i, sc := range scenes {
		if sc.PK == 0 {
			t.Errorf("scenes[%d].PK not assigned", i)
		}
	}

	// A second replace drops the previous rows entirely.
	if err := repo.ReplaceScenes(ctx, "GH010003", scenes[:1]); err != nil {
		t.Fatalf("ReplaceScenes() second call error = %v", err)
	}
	got, err := repo.ListScenesByVideo(ctx, "GH010003")
	if err != nil {
		t.Fatalf("ListScenesByVideo() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ListScenesByVideo() returned %d scenes, want 1", len(got))
	}
	if got[0].Description != "opening" {
		t.Errorf("Description = %s, want opening", got[0].Description)
	}
}

func TestRepository_UpdateSceneText(t *testing.T) {
	database, repo := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()

	repo.UpsertVideo(ctx, testVideo("GH010004"))
	scenes := []*Scene{{SceneID: 1, StartTimecode: "00:00:00:00", EndTimecode: "00:00:02:00"}}
	repo.ReplaceScenes(ctx, "GH010004", scenes)

	if err := repo.UpdateSceneText(ctx, scenes[0].PK, "interview begins"); err != nil {
		t.Fatalf("UpdateSceneText() error = %v", err)
	}
	got, _ := repo.GetScene(ctx, scenes[0].PK)
	if got.Description != "interview begins" {
		t.Errorf("Description = %s, want interview begins", got.Description)
	}

	if err := repo.UpdateSceneText(ctx, 99999, "x"); err == nil {
		t.Error("UpdateSceneText() should return error for unknown scene")
	}
}

func TestRepository_DeleteScenes(t *testing.T) {
	database, repo := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()

	repo.UpsertVideo(ctx, testVideo("GH010005"))
	scenes := []*Scene{
		{SceneID: 1, StartTimecode: "00:00:00:00", EndTimecode: "00:00:02:00"},
		{SceneID: 2, StartTimecode: "00:00:02:00", EndTimecode: "00:00:04:00"},
		{SceneID: 3, StartTimecode: "00:00:04:00", EndTimecode: "00:00:06:00"},
	}
	repo.ReplaceScenes(ctx, "GH010005", scenes)

	deleted, err := repo.DeleteScenes(ctx, []int64{scenes[0].PK, scenes[2].PK, 99999})
	if err != nil {
		t.Fatalf("DeleteScenes() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("DeleteScenes() deleted = %d, want 2", deleted)
	}

	remaining, _ := repo.ListScenesByVideo(ctx, "GH010005")
	if len(remaining) != 1 || remaining[0].SceneID != 2 {
		t.Errorf("remaining scenes = %+v, want only scene 2", remaining)
	}
}

func TestRepository_DeleteScenes_Empty(t *testing.T) {
	database, repo := setupTestDB(t)
	defer database.Close()

	deleted, err := repo.DeleteScenes(context.Background(), nil)
	if err != nil {
		t.Fatalf("DeleteScenes() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("DeleteScenes() deleted = %d, want 0", deleted)
	}
}

func TestRepository_Transcriptions(t *testing.T) {
	database, repo := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()

	repo.UpsertVideo(ctx, testVideo("GH010006"))
	scenes := []*Scene{{SceneID: 1, StartTimecode: "00:00:00:00", EndTimecode: "00:00:10:00"}}
	repo.ReplaceScenes(ctx, "GH010006", scenes)

	trans := []*Transcription{
		{ScenePK: scenes[0].PK, StartTimecode: "00:00:01:00", EndTimecode: "00:00:03:00", Text: "hello"},
		{ScenePK: scenes[0].PK, StartTimecode: "00:00:04:00", EndTimecode: "00:00:06:00", Text: "world"},
	}
	if err := repo.ReplaceTranscriptions(ctx, "GH010006", trans); err != nil {
		t.Fatalf("ReplaceTranscriptions() error = %v", err)
	}

	got, err := repo.ListTranscriptionsByScene(ctx, scenes[0].PK)
	if err != nil {
		t.Fatalf("ListTranscriptionsByScene() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListTranscriptionsByScene() returned %d, want 2", len(got))
	}
	if got[0].Text != "hello" || got[1].Text != "world" {
		t.Errorf("transcriptions out of order: %s, %s", got[0].Text, got[1].Text)
	}
	if got[0].VideoID != "GH010006" {
		t.Errorf("VideoID = %s, want GH010006", got[0].VideoID)
	}
}

func TestRepository_DeleteVideoCascades(t *testing.T) {
	database, repo := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()

	repo.UpsertVideo(ctx, testVideo("GH010007"))
	scenes := []*Scene{{SceneID: 1, StartTimecode: "00:00:00:00", EndTimecode: "00:00:05:00"}}
	repo.ReplaceScenes(ctx, "GH010007", scenes)
	repo.ReplaceTranscriptions(ctx, "GH010007", []*Transcription{
		{ScenePK: scenes[0].PK, StartTimecode: "00:00:01:00", EndTimecode: "00:00:02:00", Text: "x"},
	})

	if err := repo.DeleteVideo(ctx, "GH010007"); err != nil {
		t.Fatalf("DeleteVideo() error = %v", err)
	}

	remaining, _ := repo.ListScenesByVideo(ctx, "GH010007")
	if len(remaining) != 0 {
		t.Errorf("scenes not cascaded: %d remain", len(remaining))
	}
	trans, _ := repo.ListTranscriptionsByScene(ctx, scenes[0].PK)
	if len(trans) != 0 {
		t.Errorf("transcriptions not cascaded: %d remain", len(trans))
	}
}

func TestRepository_GetSceneExportRows_PreservesSelectionOrder(t *testing.T) {
	database, repo := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()

	repo.UpsertVideo(ctx, testVideo("GH010008"))
	scenes := []*Scene{
		{SceneID: 1, StartTimecode: "00:00:00:00", EndTimecode: "00:00:02:00"},
		{SceneID: 2, StartTimecode: "00:00:02:00", EndTimecode: "00:00:04:00"},
		{SceneID: 3, StartTimecode: "00:00:04:00", EndTimecode: "00:00:06:00"},
	}
	repo.ReplaceScenes(ctx, "GH010008", scenes)

	// Reverse selection: the returned rows must keep the caller's order,
	// not the table order.
	pks := []int64{scenes[2].PK, scenes[0].PK}
	rows, err := repo.GetSceneExportRows(ctx, pks)
	if err != nil {
		t.Fatalf("GetSceneExportRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("GetSceneExportRows() returned %d rows, want 2", len(rows))
	}
	if rows[0].SceneID != 3 || rows[1].SceneID != 1 {
		t.Errorf("row order = [%d, %d], want [3, 1]", rows[0].SceneID, rows[1].SceneID)
	}
	if rows[0].VideoFilename != "GH010008.MP4" {
		t.Errorf("VideoFilename = %s, want GH010008.MP4", rows[0].VideoFilename)
	}
	if rows[0].TimecodeOffset != "01:00:00:00" {
		t.Errorf("TimecodeOffset = %s, want 01:00:00:00", rows[0].TimecodeOffset)
	}
	if rows[0].DurationSeconds != 120.5 {
		t.Errorf("DurationSeconds = %v, want 120.5", rows[0].DurationSeconds)
	}
}

func TestRepository_Jobs(t *testing.T) {
	database, repo := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()

	now := time.Now()
	job := &Job{
		ID:        NewID(),
		Type:      JobTypeImport,
		Status:    JobStatusPending,
		Path:      "/media/captures",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	pending, err := repo.ListPendingJobs(ctx)
	if err != nil {
		t.Fatalf("ListPendingJobs() error = %v", err)
	}
	if len(pending) != 1 || pending[0].ID != job.ID {
		t.Fatalf("ListPendingJobs() = %+v, want the created job", pending)
	}

	if err := repo.UpdateJobStatus(ctx, job.ID, JobStatusRunning, ""); err != nil {
		t.Fatalf("UpdateJobStatus() error = %v", err)
	}
	if err := repo.UpdateJobProgress(ctx, job.ID, 50); err != nil {
		t.Fatalf("UpdateJobProgress() error = %v", err)
	}

	got, err := repo.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if got.Status != JobStatusRunning {
		t.Errorf("Status = %s, want running", got.Status)
	}
	if got.Progress != 50 {
		t.Errorf("Progress = %d, want 50", got.Progress)
	}

	pending, _ = repo.ListPendingJobs(ctx)
	if len(pending) != 0 {
		t.Errorf("ListPendingJobs() returned %d after status change, want 0", len(pending))
	}
}

func TestRepository_Config(t *testing.T) {
	database, repo := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()

	got, err := repo.GetConfig(ctx, "missing_key")
	if err != nil {
		t.Fatalf("GetConfig() error = %v", err)
	}
	if got != "" {
		t.Errorf("GetConfig() = %q, want empty", got)
	}

	if err := repo.SetConfig(ctx, "auth_token", "abc123"); err != nil {
		t.Fatalf("SetConfig() error = %v", err)
	}
	if err := repo.SetConfig(ctx, "auth_token", "def456"); err != nil {
		t.Fatalf("SetConfig() overwrite error = %v", err)
	}
	got, _ = repo.GetConfig(ctx, "auth_token")
	if got != "def456" {
		t.Errorf("GetConfig() = %q, want def456", got)
	}
}
