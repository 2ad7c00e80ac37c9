package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CatalogService is the application-facing surface over the repository.
type CatalogService interface {
	ImportCaptures(ctx context.Context, root string) (*ImportResult, error)
	GetVideos(ctx context.Context) ([]*Video, error)
	GetVideo(ctx context.Context, id string) (*Video, error)
	SetVideoOffset(ctx context.Context, id, timecodeOffset string) error
	GetScenes(ctx context.Context, videoID string) ([]*Scene, error)
	GetScene(ctx context.Context, pk int64) (*Scene, error)
	EditSceneText(ctx context.Context, pk int64, description string) error
	RemoveScenes(ctx context.Context, pks []int64) (int64, error)
	GetTranscriptions(ctx context.Context, scenePK int64) ([]*Transcription, error)
	GetExportRows(ctx context.Context, pks []int64) ([]*SceneExportRow, error)
	EnqueueJob(ctx context.Context, jobType, path string) (*Job, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ImportResult summarizes one capture import run.
type ImportResult struct {
	Videos         int      `json:"videos"`
	Scenes         int      `json:"scenes"`
	Transcriptions int      `json:"transcriptions"`
	Errors         []string `json:"errors,omitempty"`
}

// captureDocument is the JSON layout produced by the capture tooling:
// one <video>_data.json per clip inside a <video>_captures directory.
type captureDocument struct {
	SourceFilepath string `json:"source_filepath"`
	Metadata       struct {
		DurationSeconds float64 `json:"duration_seconds"`
		FrameRate       float64 `json:"frame_rate"`
		CreationTimeUTC string  `json:"creation_time_utc"`
		TimecodeOffset  string  `json:"timecode_offset"`
	} `json:"metadata"`
	DetectedScenes []struct {
		SceneID       int    `json:"scene_id"`
		StartTimecode string `json:"start_timecode"`
		EndTimecode   string `json:"end_timecode"`
		Description   string `json:"description"`
	} `json:"detected_scenes"`
	FinalSegments []struct {
		SceneID       int    `json:"scene_id"`
		StartTimecode string `json:"start_timecode"`
		EndTimecode   string `json:"end_timecode"`
		Transcription string `json:"transcription"`
	} `json:"final_segments"`
}

const captureDocSuffix = "_data.json"

// ImportCaptures walks root for capture documents and loads each into the
// catalog. A bad document is recorded and skipped; the run continues.
func (s *Service) ImportCaptures(ctx context.Context, root string) (*ImportResult, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("import root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("import root is not a directory: %s", root)
	}

	var docs []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), captureDocSuffix) {
			docs = append(docs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	result := &ImportResult{}
	for _, path := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		scenes, trans, err := s.importOne(ctx, path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			if s.logger != nil {
				s.logger.Warn("capture import failed", "path", path, "error", err)
			}
			continue
		}
		result.Videos++
		result.Scenes += scenes
		result.Transcriptions += trans
	}

	if s.logger != nil {
		s.logger.Info("capture import finished",
			"root", root,
			"videos", result.Videos,
			"scenes", result.Scenes,
			"transcriptions", result.Transcriptions,
			"errors", len(result.Errors),
		)
	}
	return result, nil
}

func (s *Service) importOne(ctx context.Context, docPath string) (int, int, error) {
	data, err := os.ReadFile(docPath)
	if err != nil {
		return 0, 0, err
	}
	var doc captureDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, 0, fmt.Errorf("invalid capture document: %w", err)
	}

	videoID := strings.TrimSuffix(filepath.Base(docPath), captureDocSuffix)
	filename := filepath.Base(doc.SourceFilepath)
	if filename == "." || filename == "" {
		filename = videoID + ".MP4"
	}

	video := &Video{
		ID:              videoID,
		Filename:        filename,
		Filepath:        doc.SourceFilepath,
		TimecodeOffset:  doc.Metadata.TimecodeOffset,
		DurationSeconds: doc.Metadata.DurationSeconds,
		FrameRate:       doc.Metadata.FrameRate,
		CreationTime:    doc.Metadata.CreationTimeUTC,
		CreatedAt:       time.Now(),
	}
	if err := s.repo.UpsertVideo(ctx, video); err != nil {
		return 0, 0, err
	}

	scenes := make([]*Scene, 0, len(doc.DetectedScenes))
	for _, ds := range doc.DetectedScenes {
		scenes = append(scenes, &Scene{
			SceneID:       ds.SceneID,
			StartTimecode: ds.StartTimecode,
			EndTimecode:   ds.EndTimecode,
			Description:   ds.Description,
		})
	}
	if err := s.repo.ReplaceScenes(ctx, videoID, scenes); err != nil {
		return 0, 0, err
	}

	// Map segments onto their scene rows by scene ordinal.
	pkBySceneID := make(map[int]int64, len(scenes))
	for _, sc := range scenes {
		pkBySceneID[sc.SceneID] = sc.PK
	}

	trans := make([]*Transcription, 0, len(doc.FinalSegments))
	for _, seg := range doc.FinalSegments {
		pk, ok := pkBySceneID[seg.SceneID]
		if !ok {
			continue
		}
		trans = append(trans, &Transcription{
			ScenePK:       pk,
			StartTimecode: seg.StartTimecode,
			EndTimecode:   seg.EndTimecode,
			Text:          seg.Transcription,
		})
	}
	if err := s.repo.ReplaceTranscriptions(ctx, videoID, trans); err != nil {
		return 0, 0, err
	}

	return len(scenes), len(trans), nil
}

func (s *Service) GetVideos(ctx context.Context) ([]*Video, error) {
	return s.repo.ListVideos(ctx)
}

func (s *Service) GetVideo(ctx context.Context, id string) (*Video, error) {
	return s.repo.GetVideo(ctx, id)
}

func (s *Service) SetVideoOffset(ctx context.Context, id, timecodeOffset string) error {
	return s.repo.UpdateVideoOffset(ctx, id, timecodeOffset)
}

func (s *Service) GetScenes(ctx context.Context, videoID string) ([]*Scene, error) {
	return s.repo.ListScenesByVideo(ctx, videoID)
}

func (s *Service) GetScene(ctx context.Context, pk int64) (*Scene, error) {
	return s.repo.GetScene(ctx, pk)
}

func (s *Service) EditSceneText(ctx context.Context, pk int64, description string) error {
	return s.repo.UpdateSceneText(ctx, pk, description)
}

func (s *Service) RemoveScenes(ctx context.Context, pks []int64) (int64, error) {
	deleted, err := s.repo.DeleteScenes(ctx, pks)
	if err == nil && s.logger != nil {
		s.logger.Info("scenes deleted", "requested", len(pks), "deleted", deleted)
	}
	return deleted, err
}

func (s *Service) GetTranscriptions(ctx context.Context, scenePK int64) ([]*Transcription, error) {
	return s.repo.ListTranscriptionsByScene(ctx, scenePK)
}

func (s *Service) GetExportRows(ctx context.Context, pks []int64) ([]*SceneExportRow, error) {
	return s.repo.GetSceneExportRows(ctx, pks)
}

// EnqueueJob records a background job for the runner to pick up.
func (s *Service) EnqueueJob(ctx context.Context, jobType, path string) (*Job, error) {
	switch jobType {
	case JobTypeImport, JobTypeTelemetry:
	default:
		return nil, fmt.Errorf("unknown job type: %s", jobType)
	}

	now := time.Now()
	job := &Job{
		ID:        NewID(),
		Type:      jobType,
		Status:    JobStatusPending,
		Path:      path,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}
