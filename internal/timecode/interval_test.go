package timecode

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestAdjustInterval_Offset(t *testing.T) {
	a := AdjustInterval(Interval{SourceStart: 10, SourceEnd: 20, Offset: 5}, 60)
	if a.Start != 15 || a.End != 25 {
		t.Fatalf("adjusted = [%v, %v], want [15, 25]", a.Start, a.End)
	}
	if a.HasClipEnd {
		t.Fatal("HasClipEnd = true for unknown clip duration")
	}
}

func TestAdjustInterval_ClampsToClipEnd(t *testing.T) {
	a := AdjustInterval(Interval{SourceStart: 10, SourceEnd: 20, Offset: 0, ClipDuration: 15}, 60)
	if a.End != 15 {
		t.Fatalf("End = %v, want 15 (clamped to clip end)", a.End)
	}
	if !a.HasClipEnd || a.ClipEnd != 15 {
		t.Fatalf("ClipEnd = %v (has=%v), want 15", a.ClipEnd, a.HasClipEnd)
	}
}

func TestAdjustInterval_ClampWithOffset(t *testing.T) {
	// Clip spans [30, 40) in offset time; a scene ending at 45 is cut at 40.
	a := AdjustInterval(Interval{SourceStart: 2, SourceEnd: 15, Offset: 30, ClipDuration: 10}, 60)
	if a.Start != 32 {
		t.Fatalf("Start = %v, want 32", a.Start)
	}
	if a.End != 40 {
		t.Fatalf("End = %v, want 40", a.End)
	}
}

func TestAdjustInterval_MinimumDuration(t *testing.T) {
	a := AdjustInterval(Interval{SourceStart: 10, SourceEnd: 10.001}, 60)
	if got, want := a.Duration(), 1.0/60; got < want-Epsilon {
		t.Fatalf("Duration = %v, want >= %v", got, want)
	}
}

func TestAdjustInterval_MinimumDurationReclamps(t *testing.T) {
	// Scene starts a hair before the clip end; the one-frame stretch would
	// push past the clip, so the end is clamped back to it.
	a := AdjustInterval(Interval{SourceStart: 9.999, SourceEnd: 9.999, ClipDuration: 10}, 60)
	if a.End > a.ClipEnd {
		t.Fatalf("End = %v exceeds clip end %v", a.End, a.ClipEnd)
	}
}

func TestAdjustInterval_EpsilonBeyondClipEndNotClamped(t *testing.T) {
	// An end within Epsilon of the boundary is treated as on it, not past it.
	clipEnd := 15.0
	a := AdjustInterval(Interval{SourceStart: 0, SourceEnd: clipEnd + Epsilon/2, ClipDuration: clipEnd}, 60)
	if a.End != clipEnd+Epsilon/2 {
		t.Fatalf("End = %v, unexpected clamp within epsilon", a.End)
	}
}

func TestOutPoint_NudgesAtClipBoundary(t *testing.T) {
	// An out point landing on an exact half-frame at the clip boundary must
	// not round one frame past the clip's last frame.
	clipEnd := (600.0 + 0.5) / 60.0
	a := AdjustInterval(Interval{SourceStart: 0, SourceEnd: 20, ClipDuration: clipEnd}, 60)
	if a.End != clipEnd {
		t.Fatalf("End = %v, want clamp to %v", a.End, clipEnd)
	}
	if got := FromSeconds(a.OutPoint(), 60); got != "00:00:10:00" {
		t.Fatalf("out timecode = %q, want %q", got, "00:00:10:00")
	}
}

func TestOutPoint_AwayFromBoundaryUnchanged(t *testing.T) {
	a := AdjustInterval(Interval{SourceStart: 0, SourceEnd: 5, ClipDuration: 100}, 60)
	if a.OutPoint() != a.End {
		t.Fatalf("OutPoint = %v, want %v", a.OutPoint(), a.End)
	}
}

func TestTimeline_Gapless(t *testing.T) {
	durations := []float64{2.0, 3.5, 1.0}
	var tl Timeline
	var got [][2]float64
	for _, d := range durations {
		ev := tl.Place(AdjustInterval(Interval{SourceStart: 100, SourceEnd: 100 + d}, 60))
		got = append(got, [2]float64{ev.RecordIn, ev.RecordOut})
	}

	want := [][2]float64{{0, 2.0}, {2.0, 5.5}, {5.5, 6.5}}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Fatalf("record windows mismatch (-want +got):\n%s", diff)
	}
	if tl.Cursor() != 6.5 {
		t.Fatalf("cursor = %v, want 6.5", tl.Cursor())
	}
}

func TestPlaceCue_RelativeToSceneStart(t *testing.T) {
	var tl Timeline
	// Scene source [100, 110) placed at record [0, 10).
	ev := tl.Place(AdjustInterval(Interval{SourceStart: 100, SourceEnd: 110}, 60))

	start, end := PlaceCue(ev, 100, 102, 104, 60)
	if math.Abs(start-2) > 1e-12 || math.Abs(end-4) > 1e-12 {
		t.Fatalf("cue = [%v, %v], want [2, 4]", start, end)
	}
}

func TestPlaceCue_ClampedToSceneWindow(t *testing.T) {
	var tl Timeline
	ev := tl.Place(AdjustInterval(Interval{SourceStart: 100, SourceEnd: 105}, 60))

	// Cue runs past the scene's end; it is cut at the record out point.
	start, end := PlaceCue(ev, 100, 103, 120, 60)
	if start < ev.RecordIn || end > ev.RecordOut {
		t.Fatalf("cue [%v, %v] outside scene window [%v, %v]", start, end, ev.RecordIn, ev.RecordOut)
	}
	if math.Abs(end-ev.RecordOut) > 1e-12 {
		t.Fatalf("end = %v, want clamp to %v", end, ev.RecordOut)
	}
}

func TestPlaceCue_MinimumDurationAnchoredAtSceneEnd(t *testing.T) {
	var tl Timeline
	ev := tl.Place(AdjustInterval(Interval{SourceStart: 100, SourceEnd: 105}, 60))

	// A zero-length cue at the scene end keeps one frame, pinned to the end.
	start, end := PlaceCue(ev, 100, 105, 105, 60)
	if got, want := end-start, 1.0/60; math.Abs(got-want) > 1e-9 {
		t.Fatalf("cue duration = %v, want %v", got, want)
	}
	if math.Abs(end-ev.RecordOut) > 1e-12 {
		t.Fatalf("end = %v, want %v", end, ev.RecordOut)
	}
}

func TestPlaceCue_ShortSceneCentersCue(t *testing.T) {
	// Scene shorter than one frame of slack beyond the minimum duration.
	var tl Timeline
	ev := tl.Place(AdjustInterval(Interval{SourceStart: 100, SourceEnd: 100.005}, 60))

	start, end := PlaceCue(ev, 100, 100.004, 100.004, 60)
	if start < ev.RecordIn-1e-12 || end > ev.RecordOut+1e-12 {
		t.Fatalf("cue [%v, %v] outside scene window [%v, %v]", start, end, ev.RecordIn, ev.RecordOut)
	}
	if end < start {
		t.Fatalf("cue end %v before start %v", end, start)
	}
}
