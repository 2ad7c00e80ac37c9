// Package catalog holds the footage review data model: imported videos,
// their detected scenes and transcriptions, and the background jobs that
// populate them.
package catalog

import (
	"crypto/rand"
	"fmt"
	"time"
)

// Video is one imported capture clip.
type Video struct {
	ID              string    `json:"id"`
	Filename        string    `json:"filename"`
	Filepath        string    `json:"filepath"`
	TimecodeOffset  string    `json:"timecode_offset,omitempty"`
	DurationSeconds float64   `json:"duration_seconds,omitempty"`
	FrameRate       float64   `json:"frame_rate,omitempty"`
	CreationTime    string    `json:"creation_time,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Scene is one detected scene within a video. PK is the database row id used
// for selection; SceneID is the scene's ordinal within its video.
type Scene struct {
	PK            int64  `json:"pk"`
	VideoID       string `json:"video_id"`
	SceneID       int    `json:"scene_id"`
	StartTimecode string `json:"start_timecode"`
	EndTimecode   string `json:"end_timecode"`
	Description   string `json:"description,omitempty"`
	KeyframePath  string `json:"keyframe_path,omitempty"`
	PreviewPath   string `json:"preview_path,omitempty"`
}

// Transcription is one speech segment attached to a scene.
type Transcription struct {
	ID            int64  `json:"id"`
	ScenePK       int64  `json:"scene_pk"`
	VideoID       string `json:"video_id"`
	StartTimecode string `json:"start_timecode"`
	EndTimecode   string `json:"end_timecode"`
	Text          string `json:"transcription"`
}

// SceneExportRow is a scene joined with its video's clip metadata, the shape
// the export engine consumes.
type SceneExportRow struct {
	ScenePK         int64
	VideoID         string
	SceneID         int
	StartTimecode   string
	EndTimecode     string
	VideoFilename   string
	TimecodeOffset  string
	DurationSeconds float64 // zero when unknown
	FrameRate       float64 // zero when unknown
}

const (
	JobTypeImport    = "import"
	JobTypeTelemetry = "telemetry_extract"

	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Job is one unit of background work (capture import or telemetry
// extraction). Path is the job's input directory.
type Job struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Path      string    `json:"path,omitempty"`
	Progress  int       `json:"progress"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewID returns a random 128-bit identifier in UUID-like formatting.
func NewID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:])
}
