package timecode

import "math"

// Epsilon is the tolerance used for floating-point comparisons against clip
// boundaries. Accumulated seconds arithmetic lands arbitrarily close to exact
// frame edges, and a strict compare there flips the rounded frame count by one.
const Epsilon = 1e-9

// Interval is a scene's position within its source clip, in seconds.
// ClipDuration of zero or less means the clip length is unknown and no end
// clamping is applied.
type Interval struct {
	SourceStart  float64
	SourceEnd    float64
	Offset       float64
	ClipDuration float64
}

// Adjusted is an interval after offset application, clip clamping, and
// minimum-duration enforcement.
type Adjusted struct {
	Start      float64
	End        float64
	ClipEnd    float64
	HasClipEnd bool
}

// AdjustInterval applies the clip offset to an interval, clamps the end
// against the clip boundary, and guarantees a duration of at least one frame
// at the output rate. outputRate must be positive.
func AdjustInterval(iv Interval, outputRate float64) Adjusted {
	a := Adjusted{
		Start: iv.SourceStart + iv.Offset,
		End:   iv.SourceEnd + iv.Offset,
	}

	if iv.ClipDuration > 0 {
		a.HasClipEnd = true
		a.ClipEnd = iv.Offset + iv.ClipDuration
		// The camera clip ends here; never reference footage past it.
		if a.End > a.ClipEnd+Epsilon {
			a.End = a.ClipEnd
		}
	}

	minDuration := 1.0 / outputRate
	if a.End-a.Start < minDuration-Epsilon {
		a.End = a.Start + minDuration
		if a.HasClipEnd && a.End > a.ClipEnd {
			a.End = a.ClipEnd
		}
	}

	return a
}

// Duration returns the adjusted length, never negative.
func (a Adjusted) Duration() float64 {
	if a.End < a.Start {
		return 0
	}
	return a.End - a.Start
}

// OutPoint returns the end position prepared for display conversion. When the
// end sits within Epsilon of the clip boundary it is nudged just below it, so
// that frame rounding in FromSeconds cannot land one frame past the clip's
// actual last frame.
func (a Adjusted) OutPoint() float64 {
	out := a.End
	switch {
	case a.HasClipEnd && math.Abs(out-a.ClipEnd) < Epsilon:
		out -= Epsilon
	case out < Epsilon:
		out = 0
	}
	return out
}

// Event is an adjusted interval placed on the record timeline.
type Event struct {
	Adjusted
	RecordIn  float64
	RecordOut float64
}

// Timeline lays adjusted intervals end to end starting at zero. It is local
// to a single export call; concurrent exports each use their own Timeline.
type Timeline struct {
	cursor float64
}

// Place assigns the next gapless [recordIn, recordOut) window to an interval
// and advances the cursor by its duration.
func (t *Timeline) Place(a Adjusted) Event {
	ev := Event{
		Adjusted:  a,
		RecordIn:  t.cursor,
		RecordOut: t.cursor + a.Duration(),
	}
	t.cursor = ev.RecordOut
	return ev
}

// Cursor returns the current end of the record timeline.
func (t *Timeline) Cursor() float64 {
	return t.cursor
}

// PlaceCue positions a transcript cue inside its parent scene's record
// window. sceneSourceStart is the scene's source start before offset
// adjustment; cueStart and cueEnd are the cue's source positions parsed at
// the same frame rate. The cue keeps its offset relative to the scene start,
// is clamped into [RecordIn, RecordOut], and is stretched to at least one
// frame at the output rate; when the scene itself is shorter than that the
// cue is centered in it.
func PlaceCue(ev Event, sceneSourceStart, cueStart, cueEnd, outputRate float64) (float64, float64) {
	start := ev.RecordIn + (cueStart - sceneSourceStart)
	end := ev.RecordIn + (cueEnd - sceneSourceStart)

	// Tolerant clamp first, then a strict one, so values a hair outside the
	// window survive the first pass and still end up exactly inside it.
	start = math.Max(ev.RecordIn-Epsilon, start)
	end = math.Min(ev.RecordOut+Epsilon, end)
	start = math.Max(ev.RecordIn, start)
	end = math.Min(ev.RecordOut, end)

	minDuration := 1.0 / outputRate
	if end < start+minDuration-Epsilon {
		end = start + minDuration
		if end > ev.RecordOut {
			if ev.RecordOut-ev.RecordIn > minDuration {
				start = ev.RecordOut - minDuration
				end = ev.RecordOut
			} else {
				// Scene shorter than one frame of slack: center the cue.
				mid := (ev.RecordIn + ev.RecordOut) / 2
				start = math.Max(ev.RecordIn, mid-minDuration/2)
				end = math.Min(ev.RecordOut, mid+minDuration/2)
			}
		}
	}

	return start, end
}
