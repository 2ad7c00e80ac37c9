// Package telemetry decodes the proprietary box-based metadata stream
// embedded in camera captures and extracts GPS fix records from it.
//
// The container is a flat sequence of blocks: a four-byte ASCII tag, a
// big-endian uint32 payload size, the payload, then padding to the next
// 4-byte boundary. Only GPS5 payloads are interpreted; every other stream is
// skipped. Truncation anywhere is treated as the end of usable data, never an
// error: a partial capture still yields all fixes read up to that point.
package telemetry

import (
	"encoding/binary"
	"math"
)

const (
	headerSize = 8
	fixSize    = 20

	tagGPS = "GPS5"
)

// Fix is one GPS telemetry sample. Values are decoded from big-endian 32-bit
// floats in file order and never mutated afterwards.
type Fix struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Speed     float64 `json:"speed"`
	Speed3D   float64 `json:"speed3d"`
}

// Parse walks the container and returns all GPS fixes in file order. It is a
// pure function of the buffer and safe to run concurrently on different
// buffers.
func Parse(data []byte) []Fix {
	var fixes []Fix

	pos := 0
	for pos+headerSize <= len(data) {
		tag := data[pos : pos+4]
		if !isASCII(tag) {
			break
		}
		size := int(binary.BigEndian.Uint32(data[pos+4 : pos+8]))
		if size == 0 {
			break
		}
		pos += headerSize

		end := pos + size
		if end > len(data) {
			end = len(data)
		}
		if string(tag) == tagGPS {
			// A partial trailing record is discarded, not zero-padded.
			for pos+fixSize <= end {
				fixes = append(fixes, decodeFix(data[pos:pos+fixSize]))
				pos += fixSize
			}
		}
		pos = end

		// Container alignment rule.
		pos = (pos + 3) &^ 3
	}

	return fixes
}

func decodeFix(b []byte) Fix {
	return Fix{
		Latitude:  readFloat(b[0:4]),
		Longitude: readFloat(b[4:8]),
		Altitude:  readFloat(b[8:12]),
		Speed:     readFloat(b[12:16]),
		Speed3D:   readFloat(b[16:20]),
	}
}

func readFloat(b []byte) float64 {
	return float64(math.Float32frombits(binary.BigEndian.Uint32(b)))
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c > 0x7f {
			return false
		}
	}
	return true
}
