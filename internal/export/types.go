package export

// SceneClip is one selected scene joined with its parent video's clip
// metadata, as stored in the catalog. Timecodes are HH:MM:SS:FF strings;
// malformed values degrade to zero rather than failing the export.
type SceneClip struct {
	ScenePK         int64
	Filename        string
	StartTimecode   string
	EndTimecode     string
	TimecodeOffset  string
	DurationSeconds float64 // clip length; zero or less means unknown
}

// Cue is one transcript entry belonging to a scene.
type Cue struct {
	StartTimecode string
	EndTimecode   string
	Text          string
}

// SceneWithCues pairs a scene with its transcript entries for combined
// EDL+SRT export.
type SceneWithCues struct {
	SceneClip
	Cues []Cue
}

// PlacedCue is a cue already resolved onto the record timeline, in seconds.
type PlacedCue struct {
	Start float64
	End   float64
	Text  string
}

// Options control document generation. SourceRate parses the stored
// timecodes, RecordRate renders the EDL and bounds minimum durations; they
// are separate because legacy data mixes display rates.
type Options struct {
	Title      string
	SourceRate float64
	RecordRate float64
}

const (
	defaultTitle = "Shotlog Export"
	defaultRate  = 60.0
)

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = defaultTitle
	}
	if o.SourceRate <= 0 {
		o.SourceRate = defaultRate
	}
	if o.RecordRate <= 0 {
		o.RecordRate = o.SourceRate
	}
	return o
}
