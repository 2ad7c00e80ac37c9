package api

import (
	"time"

	"github.com/shotlog/shotlog-agent/internal/catalog"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type StatusResponse struct {
	State       string       `json:"state"`
	LastError   string       `json:"last_error,omitempty"`
	VideosCount int          `json:"videos_count"`
	JobsRunning int          `json:"jobs_running"`
	ActiveJob   *JobResponse `json:"active_job,omitempty"`
}

type VideoResponse struct {
	ID              string  `json:"id"`
	Filename        string  `json:"filename"`
	Filepath        string  `json:"filepath"`
	TimecodeOffset  string  `json:"timecode_offset,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	FrameRate       float64 `json:"frame_rate,omitempty"`
	CreationTime    string  `json:"creation_time,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

type VideosResponse struct {
	Videos []VideoResponse `json:"videos"`
}

type UpdateOffsetRequest struct {
	TimecodeOffset string `json:"timecode_offset"`
}

type SceneResponse struct {
	PK            int64  `json:"pk"`
	VideoID       string `json:"video_id"`
	SceneID       int    `json:"scene_id"`
	StartTimecode string `json:"start_timecode"`
	EndTimecode   string `json:"end_timecode"`
	Description   string `json:"description,omitempty"`
}

type ScenesResponse struct {
	Scenes []SceneResponse `json:"scenes"`
}

type UpdateSceneRequest struct {
	Description string `json:"description"`
}

type DeleteScenesRequest struct {
	ScenePKs []int64 `json:"scene_pks"`
}

type DeleteScenesResponse struct {
	Deleted int64 `json:"deleted"`
}

type TranscriptionResponse struct {
	ID            int64  `json:"id"`
	ScenePK       int64  `json:"scene_pk"`
	StartTimecode string `json:"start_timecode"`
	EndTimecode   string `json:"end_timecode"`
	Text          string `json:"transcription"`
}

type TranscriptionsResponse struct {
	Transcriptions []TranscriptionResponse `json:"transcriptions"`
}

type EnqueueRequest struct {
	Path string `json:"path"`
}

type EnqueueResponse struct {
	JobID string `json:"job_id"`
}

type JobResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Path      string `json:"path,omitempty"`
	Progress  int    `json:"progress"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type JobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

type ExportRequest struct {
	ScenePKs  []int64 `json:"scene_pks"`
	Title     string  `json:"title,omitempty"`
	FrameRate float64 `json:"frame_rate,omitempty"`
}

type CombinedExportResponse struct {
	EDL string `json:"edl"`
	SRT string `json:"srt"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func VideoToResponse(v *catalog.Video) VideoResponse {
	return VideoResponse{
		ID:              v.ID,
		Filename:        v.Filename,
		Filepath:        v.Filepath,
		TimecodeOffset:  v.TimecodeOffset,
		DurationSeconds: v.DurationSeconds,
		FrameRate:       v.FrameRate,
		CreationTime:    v.CreationTime,
		CreatedAt:       v.CreatedAt.Format(time.RFC3339),
	}
}

func SceneToResponse(s *catalog.Scene) SceneResponse {
	return SceneResponse{
		PK:            s.PK,
		VideoID:       s.VideoID,
		SceneID:       s.SceneID,
		StartTimecode: s.StartTimecode,
		EndTimecode:   s.EndTimecode,
		Description:   s.Description,
	}
}

func TranscriptionToResponse(t *catalog.Transcription) TranscriptionResponse {
	return TranscriptionResponse{
		ID:            t.ID,
		ScenePK:       t.ScenePK,
		StartTimecode: t.StartTimecode,
		EndTimecode:   t.EndTimecode,
		Text:          t.Text,
	}
}

func JobToResponse(j *catalog.Job) JobResponse {
	return JobResponse{
		ID:        j.ID,
		Type:      j.Type,
		Status:    j.Status,
		Path:      j.Path,
		Progress:  j.Progress,
		Error:     j.Error,
		CreatedAt: j.CreatedAt.Format(time.RFC3339),
		UpdatedAt: j.UpdatedAt.Format(time.RFC3339),
	}
}
