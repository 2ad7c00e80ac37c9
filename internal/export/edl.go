package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shotlog/shotlog-agent/internal/timecode"
)

// GenerateEDL renders the selected scenes as a CMX3600 edit decision list.
// Scenes are laid onto the record timeline in slice order; the record track
// is gapless regardless of the scenes' source positions.
func GenerateEDL(scenes []SceneClip, opts Options) string {
	opts = opts.withDefaults()

	var b strings.Builder
	writeEDLHeader(&b, opts.Title)

	var tl timecode.Timeline
	for i, sc := range scenes {
		ev := tl.Place(adjustScene(sc, opts))
		writeEvent(&b, i+1, sc.Filename, ev, opts.RecordRate)
	}
	return b.String()
}

// GenerateCombined renders an EDL and an SRT document from one shared record
// timeline, so subtitle timestamps line up with the cut sequence. Cues with
// empty text are dropped.
func GenerateCombined(scenes []SceneWithCues, opts Options) (edl, srt string) {
	opts = opts.withDefaults()

	var b strings.Builder
	writeEDLHeader(&b, opts.Title)

	var tl timecode.Timeline
	var placed []PlacedCue

	for i, sc := range scenes {
		ev := tl.Place(adjustScene(sc.SceneClip, opts))
		writeEvent(&b, i+1, sc.Filename, ev, opts.RecordRate)

		sceneSourceStart := timecode.ToSeconds(sc.StartTimecode, opts.SourceRate)
		for _, cue := range sc.Cues {
			if cue.Text == "" {
				continue
			}
			start, end := timecode.PlaceCue(ev,
				sceneSourceStart,
				timecode.ToSeconds(cue.StartTimecode, opts.SourceRate),
				timecode.ToSeconds(cue.EndTimecode, opts.SourceRate),
				opts.RecordRate,
			)
			placed = append(placed, PlacedCue{Start: start, End: end, Text: cue.Text})
		}
	}

	return b.String(), GenerateSRT(placed)
}

func writeEDLHeader(b *strings.Builder, title string) {
	fmt.Fprintf(b, "TITLE: %s\n", title)
	b.WriteString("FCM: NON-DROP FRAME\n\n")
}

func adjustScene(sc SceneClip, opts Options) timecode.Adjusted {
	return timecode.AdjustInterval(timecode.Interval{
		SourceStart:  timecode.ToSeconds(sc.StartTimecode, opts.SourceRate),
		SourceEnd:    timecode.ToSeconds(sc.EndTimecode, opts.SourceRate),
		Offset:       timecode.ToSeconds(sc.TimecodeOffset, opts.SourceRate),
		ClipDuration: sc.DurationSeconds,
	}, opts.RecordRate)
}

func writeEvent(b *strings.Builder, num int, filename string, ev timecode.Event, rate float64) {
	fmt.Fprintf(b, "%03d  %-8s V     C        %s %s %s %s\n",
		num,
		ReelName(filename),
		timecode.FromSeconds(ev.Start, rate),
		timecode.FromSeconds(ev.OutPoint(), rate),
		timecode.FromSeconds(ev.RecordIn, rate),
		timecode.FromSeconds(ev.RecordOut, rate),
	)
	fmt.Fprintf(b, "* FROM CLIP NAME: %s\n\n", filename)
}

// ReelName derives the CMX reel identifier from a clip filename: the
// uppercased stem truncated to 8 characters.
func ReelName(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	stem = strings.ToUpper(stem)
	if len(stem) > 8 {
		stem = stem[:8]
	}
	return stem
}
