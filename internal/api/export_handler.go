package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shotlog/shotlog-agent/internal/export"
)

const maxTitleLen = 120

// parseExportRequest validates the request body and resolves the selected
// scenes, in selection order, into export inputs.
func parseExportRequest(cfg ServerConfig, w http.ResponseWriter, r *http.Request) ([]export.SceneWithCues, export.Options, bool) {
	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return nil, export.Options{}, false
	}

	if len(req.ScenePKs) == 0 {
		WriteError(w, http.StatusBadRequest, "scene_pks must not be empty", "BAD_REQUEST")
		return nil, export.Options{}, false
	}

	rows, err := cfg.CatalogService.GetExportRows(r.Context(), req.ScenePKs)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
		return nil, export.Options{}, false
	}
	if len(rows) == 0 {
		WriteError(w, http.StatusUnprocessableEntity, "no scenes could be resolved", "UNRESOLVABLE_SCENES")
		return nil, export.Options{}, false
	}

	scenes := make([]export.SceneWithCues, 0, len(rows))
	for _, row := range rows {
		sc := export.SceneWithCues{
			SceneClip: export.SceneClip{
				ScenePK:         row.ScenePK,
				Filename:        row.VideoFilename,
				StartTimecode:   row.StartTimecode,
				EndTimecode:     row.EndTimecode,
				TimecodeOffset:  row.TimecodeOffset,
				DurationSeconds: row.DurationSeconds,
			},
		}

		trans, err := cfg.CatalogService.GetTranscriptions(r.Context(), row.ScenePK)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return nil, export.Options{}, false
		}
		for _, t := range trans {
			sc.Cues = append(sc.Cues, export.Cue{
				StartTimecode: t.StartTimecode,
				EndTimecode:   t.EndTimecode,
				Text:          t.Text,
			})
		}
		scenes = append(scenes, sc)
	}

	sourceRate := req.FrameRate
	if sourceRate <= 0 {
		sourceRate = rows[0].FrameRate
	}

	opts := export.Options{
		Title:      export.SanitizeName(req.Title, maxTitleLen),
		SourceRate: sourceRate,
		RecordRate: cfg.ExportRate,
	}
	return scenes, opts, true
}

func writeDocument(w http.ResponseWriter, filename, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

func exportEDLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scenes, opts, ok := parseExportRequest(cfg, w, r)
		if !ok {
			return
		}

		clips := make([]export.SceneClip, len(scenes))
		for i, sc := range scenes {
			clips[i] = sc.SceneClip
		}

		edl := export.GenerateEDL(clips, opts)
		writeDocument(w, exportFilename(opts.Title, "edl"), edl)
	}
}

func exportSRTHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scenes, opts, ok := parseExportRequest(cfg, w, r)
		if !ok {
			return
		}

		// Subtitles are placed against the same record timeline the EDL
		// would describe, so the two documents always line up.
		_, srt := export.GenerateCombined(scenes, opts)
		writeDocument(w, exportFilename(opts.Title, "srt"), srt)
	}
}

func exportCombinedHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scenes, opts, ok := parseExportRequest(cfg, w, r)
		if !ok {
			return
		}

		edl, srt := export.GenerateCombined(scenes, opts)
		WriteJSON(w, http.StatusOK, CombinedExportResponse{EDL: edl, SRT: srt})
	}
}

func exportFilename(title, ext string) string {
	name := strings.ReplaceAll(export.SanitizeName(title, maxTitleLen), " ", "_")
	if name == "" {
		name = "shotlog_export"
	}
	return name + "." + ext
}
