package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shotlog/shotlog-agent/internal/catalog"
	"github.com/shotlog/shotlog-agent/internal/config"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))

		r.Get("/videos", listVideosHandler(cfg))
		r.Get("/videos/{id}", getVideoHandler(cfg))
		r.Patch("/videos/{id}/offset", updateOffsetHandler(cfg))
		r.Get("/videos/{id}/scenes", listScenesHandler(cfg))

		r.Patch("/scenes/{pk}", updateSceneHandler(cfg))
		r.Post("/scenes/delete", deleteScenesHandler(cfg))
		r.Get("/scenes/{pk}/transcriptions", listTranscriptionsHandler(cfg))
		r.Get("/scenes/{pk}/thumbnail", sceneThumbnailHandler(cfg))

		r.Post("/import", enqueueHandler(cfg, catalog.JobTypeImport))
		r.Post("/telemetry/extract", enqueueHandler(cfg, catalog.JobTypeTelemetry))
		r.Get("/jobs", listJobsHandler(cfg))
		r.Get("/jobs/{id}", getJobHandler(cfg))

		r.Post("/export/edl", exportEDLHandler(cfg))
		r.Post("/export/srt", exportSRTHandler(cfg))
		r.Post("/export/combined", exportCombinedHandler(cfg))

		r.Get("/playback/file", playbackHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  config.Version,
			UptimeS:  uptime,
			DeviceID: cfg.DeviceID,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		videos, _ := cfg.CatalogService.GetVideos(ctx)
		jobs, _ := cfg.Repository.ListJobs(ctx, 10)

		state := "idle"
		var activeJob *JobResponse
		jobsRunning := 0
		lastError := ""

		if cfg.Runner != nil && cfg.Runner.IsPaused() {
			state = "paused"
		}

		for _, j := range jobs {
			if j.Status == catalog.JobStatusRunning {
				state = "working"
				resp := JobToResponse(j)
				activeJob = &resp
				jobsRunning++
			}
			if j.Status == catalog.JobStatusFailed && lastError == "" {
				lastError = j.Error
			}
		}

		if lastError != "" && state == "idle" {
			state = "error"
		}

		WriteJSON(w, http.StatusOK, StatusResponse{
			State:       state,
			LastError:   lastError,
			VideosCount: len(videos),
			JobsRunning: jobsRunning,
			ActiveJob:   activeJob,
		})
	}
}

func listVideosHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videos, err := cfg.CatalogService.GetVideos(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list videos", "INTERNAL_ERROR")
			return
		}

		resp := VideosResponse{Videos: make([]VideoResponse, len(videos))}
		for i, v := range videos {
			resp.Videos[i] = VideoToResponse(v)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		video, err := cfg.CatalogService.GetVideo(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if video == nil {
			WriteError(w, http.StatusNotFound, "video not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, VideoToResponse(video))
	}
}

func updateOffsetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req UpdateOffsetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if err := cfg.CatalogService.SetVideoOffset(r.Context(), id, req.TimecodeOffset); err != nil {
			WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listScenesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID := chi.URLParam(r, "id")
		scenes, err := cfg.CatalogService.GetScenes(r.Context(), videoID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		resp := ScenesResponse{Scenes: make([]SceneResponse, len(scenes))}
		for i, s := range scenes {
			resp.Scenes[i] = SceneToResponse(s)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func updateSceneHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pk, err := strconv.ParseInt(chi.URLParam(r, "pk"), 10, 64)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid scene pk", "BAD_REQUEST")
			return
		}

		var req UpdateSceneRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if err := cfg.CatalogService.EditSceneText(r.Context(), pk, req.Description); err != nil {
			WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func deleteScenesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DeleteScenesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if len(req.ScenePKs) == 0 {
			WriteError(w, http.StatusBadRequest, "scene_pks must not be empty", "BAD_REQUEST")
			return
		}

		deleted, err := cfg.CatalogService.RemoveScenes(r.Context(), req.ScenePKs)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, DeleteScenesResponse{Deleted: deleted})
	}
}

func listTranscriptionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pk, err := strconv.ParseInt(chi.URLParam(r, "pk"), 10, 64)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid scene pk", "BAD_REQUEST")
			return
		}

		trans, err := cfg.CatalogService.GetTranscriptions(r.Context(), pk)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		resp := TranscriptionsResponse{Transcriptions: make([]TranscriptionResponse, len(trans))}
		for i, t := range trans {
			resp.Transcriptions[i] = TranscriptionToResponse(t)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func enqueueHandler(cfg ServerConfig, jobType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EnqueueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Path == "" {
			WriteError(w, http.StatusBadRequest, "path is required", "BAD_REQUEST")
			return
		}

		job, err := cfg.CatalogService.EnqueueJob(r.Context(), jobType, req.Path)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		WriteJSON(w, http.StatusAccepted, EnqueueResponse{JobID: job.ID})
	}
}

func listJobsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := cfg.Repository.ListJobs(r.Context(), 50)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list jobs", "INTERNAL_ERROR")
			return
		}

		resp := JobsResponse{Jobs: make([]JobResponse, len(jobs))}
		for i, j := range jobs {
			resp.Jobs[i] = JobToResponse(j)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getJobHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		job, err := cfg.Repository.GetJob(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if job == nil {
			WriteError(w, http.StatusNotFound, "job not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, JobToResponse(job))
	}
}

func sceneThumbnailHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.PlaybackServer == nil {
			WriteError(w, http.StatusNotFound, "playback not configured", "NOT_FOUND")
			return
		}

		pk, err := strconv.ParseInt(chi.URLParam(r, "pk"), 10, 64)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid scene pk", "BAD_REQUEST")
			return
		}

		scene, err := cfg.CatalogService.GetScene(r.Context(), pk)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if scene == nil || scene.KeyframePath == "" {
			WriteError(w, http.StatusNotFound, "no thumbnail for scene", "NOT_FOUND")
			return
		}

		if err := cfg.PlaybackServer.ServeFile(w, r, scene.KeyframePath); err != nil {
			cfg.Logger.Error("thumbnail error", "error", err, "scene_pk", pk)
		}
	}
}

func playbackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.PlaybackServer == nil {
			WriteError(w, http.StatusNotFound, "playback not configured", "NOT_FOUND")
			return
		}

		rel := r.URL.Query().Get("path")
		if rel == "" {
			WriteError(w, http.StatusBadRequest, "path is required", "BAD_REQUEST")
			return
		}

		if err := cfg.PlaybackServer.ServeFile(w, r, rel); err != nil {
			cfg.Logger.Error("playback error", "error", err, "path", rel)
		}
	}
}
