package sequence

import "github.com/coreman2200/ledgfx/internal/effect"

// Keyframe is a value at time T (seconds). Ease shapes the segment that
// starts at this keyframe.
type Keyframe struct {
	T    float64 `json:"t"`
	V    float64 `json:"v"`
	Ease string  `json:"ease,omitempty"` // see Eases
}

// Envelope is a list of keyframes sorted by T. In JSON it is a plain array.
type Envelope struct {
	Keys []Keyframe
}

// Clip is one segment of a show: an animation with its color, speed and
// effect, held for DurationS seconds, optionally crossfading into the next
// clip over its last XFadeS seconds.
type Clip struct {
	Name      string      `json:"name"`
	Animation string      `json:"animation"`
	Color     string      `json:"color,omitempty"`
	Speed     uint8       `json:"speed,omitempty"`
	Effect    effect.Spec `json:"effect,omitempty"`
	DurationS float64     `json:"durationS"`
	XFadeS    float64     `json:"xFadeS,omitempty"`
	// Params automate numeric device controls over clip-local time,
	// e.g. "brightness" 0..255.
	Params map[string]Envelope `json:"params,omitempty"`
	// Bools are thresholded at 0.5, e.g. "visible".
	Bools map[string]Envelope `json:"bools,omitempty"`
}

// Program is a full sequence of clips.
type Program struct {
	Version string `json:"version"` // "seq.v1"
	Device  string `json:"device,omitempty"`
	Loop    bool   `json:"loop,omitempty"`
	Seed    int64  `json:"seed,omitempty"`
	Clips   []Clip `json:"clips"`
}

// PlayerState enumerates sequencer states.
type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
	Paused  PlayerState = "paused"
)

// Hooks are the callbacks the player drives. Any may be nil.
type Hooks struct {
	// Show makes c the active clip immediately.
	Show func(c Clip)
	// Arm prepares c for a crossfade from the active clip.
	Arm          func(c Clip)
	SetCrossfade func(alpha float64) // 0..1 from active to armed
	SetParam     func(name string, v float64)
	SetBool      func(name string, b bool)
	// Done is called when a non-looping program ends.
	Done func()
}

// Player owns the current Program timeline and uses Hooks to drive the engine.
type Player struct {
	State PlayerState

	prog Program
	nowS float64
	idx  int

	armedIndex int // -1 when nothing is armed
	armed      bool
	lastAlpha  float64

	hooks Hooks
}
