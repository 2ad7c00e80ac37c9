package telemetry

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel capture parsing when the caller does not
// choose a limit.
const DefaultConcurrency = 4

// FileResult describes one processed capture file.
type FileResult struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path,omitempty"`
	FixCount   int    `json:"fix_count"`
}

// BatchResult summarizes one extraction run over a directory.
type BatchResult struct {
	Files       []FileResult `json:"files"`
	TotalFixes  int          `json:"total_fixes"`
	FilesWithNo int          `json:"files_without_fixes"`
}

// Extractor parses raw telemetry blobs from capture directories and writes
// the decoded fixes as JSON documents beside them. Each file is an
// independent immutable buffer, so files are processed in parallel.
type Extractor struct {
	logger      *slog.Logger
	concurrency int
}

func NewExtractor(logger *slog.Logger, concurrency int) *Extractor {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Extractor{logger: logger, concurrency: concurrency}
}

// ExtractDir finds every .bin file under dir, parses each, and writes
// <name>_gps.json next to files that contained fixes.
func (e *Extractor) ExtractDir(ctx context.Context, dir string) (*BatchResult, error) {
	paths, err := findCaptureBlobs(dir)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	result := &BatchResult{}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			fixes := Parse(data)

			fr := FileResult{Path: path, FixCount: len(fixes)}
			if len(fixes) > 0 {
				fr.OutputPath = outputPathFor(path)
				if err := Save(fr.OutputPath, fixes); err != nil {
					return err
				}
			} else if e.logger != nil {
				e.logger.Warn("no gps fixes in capture", "path", path)
			}

			mu.Lock()
			result.Files = append(result.Files, fr)
			result.TotalFixes += len(fixes)
			if len(fixes) == 0 {
				result.FilesWithNo++
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})

	if e.logger != nil {
		e.logger.Info("telemetry extraction finished",
			"dir", dir,
			"files", len(result.Files),
			"fixes", result.TotalFixes,
		)
	}
	return result, nil
}

func findCaptureBlobs(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".bin") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	return paths, nil
}

func outputPathFor(binPath string) string {
	stem := strings.TrimSuffix(binPath, filepath.Ext(binPath))
	return stem + "_gps.json"
}
