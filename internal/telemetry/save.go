package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Document is the JSON shape written next to each capture file.
type Document struct {
	TotalPoints int    `json:"total_points"`
	Timestamp   string `json:"timestamp"`
	GPSData     []Fix  `json:"gps_data"`
}

// Save writes fixes as an indented JSON document to path.
func Save(path string, fixes []Fix) error {
	if fixes == nil {
		fixes = []Fix{}
	}
	doc := Document{
		TotalPoints: len(fixes),
		Timestamp:   time.Now().Format(time.RFC3339),
		GPSData:     fixes,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode gps data: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write gps data: %w", err)
	}
	return nil
}
