// Package timecode converts between frame-based HH:MM:SS:FF timecodes and
// seconds, and lays scene intervals onto a sequential record timeline for
// edit list export.
//
// All interval arithmetic happens in seconds; timecode strings are a
// presentation format produced only at output boundaries. The frame rate is
// always an explicit parameter because the same footage is rendered at
// different rates by different consumers (30 for legacy display, 60 for
// DaVinci-bound EDLs).
//
// Conversion functions never fail: stored timecodes are known to contain gaps
// and malformed values, and exports are best-effort, so bad input maps to a
// documented zero default instead of an error.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// ZeroTimecode is returned for negative or non-finite seconds input.
	ZeroTimecode = "00:00:00:00"

	// ZeroSRTTimecode is the SRT equivalent of ZeroTimecode.
	ZeroSRTTimecode = "00:00:00,000"
)

// ToSeconds parses an HH:MM:SS:FF timecode at the given frame rate.
// Anything that is not four colon-separated integers yields 0.
func ToSeconds(tc string, frameRate float64) float64 {
	if tc == "" || frameRate <= 0 {
		return 0
	}
	parts := strings.Split(tc, ":")
	if len(parts) != 4 {
		return 0
	}
	var fields [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0
		}
		fields[i] = v
	}
	return float64(fields[0])*3600 +
		float64(fields[1])*60 +
		float64(fields[2]) +
		float64(fields[3])/frameRate
}

// FromSeconds renders seconds as an HH:MM:SS:FF timecode at the given frame
// rate. Rounding to whole frames happens first and all later arithmetic is
// integral, so the frame field is always in [0, frameRate).
func FromSeconds(seconds, frameRate float64) string {
	fps := int(frameRate)
	if fps < 1 || seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return ZeroTimecode
	}

	totalFrames := int(math.Round(seconds * frameRate))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps

	secs := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	mins := totalMinutes % 60
	hours := totalMinutes / 60

	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, mins, secs, frames)
}

// SRTFromSeconds renders seconds as an HH:MM:SS,mmm SRT timestamp.
func SRTFromSeconds(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return ZeroSRTTimecode
	}

	whole := int(seconds)
	ms := int(math.Round((seconds - float64(whole)) * 1000))
	if ms >= 1000 {
		whole++
		ms -= 1000
	}

	secs := whole % 60
	totalMinutes := whole / 60
	mins := totalMinutes % 60
	hours := totalMinutes / 60

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, mins, secs, ms)
}
