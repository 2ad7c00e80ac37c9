package export

import (
	"fmt"
	"strings"

	"github.com/shotlog/shotlog-agent/internal/timecode"
)

// GenerateSRT renders placed cues as numbered SubRip blocks in slice order.
func GenerateSRT(cues []PlacedCue) string {
	var b strings.Builder
	for i, cue := range cues {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n",
			timecode.SRTFromSeconds(cue.Start),
			timecode.SRTFromSeconds(cue.End),
		)
		b.WriteString(cue.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}
