package sequence

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tanema/gween/ease"

	"github.com/coreman2200/ledgfx/internal/errs"
)

// Eases maps keyframe ease names to tween curves.
var Eases = map[string]ease.TweenFunc{
	"":            ease.Linear,
	"linear":      ease.Linear,
	"smooth":      ease.InOutQuad,
	"cubic":       ease.InOutCubic,
	"sine":        ease.InOutSine,
	"in":          ease.InQuad,
	"out":         ease.OutQuad,
	"bounce":      ease.OutBounce,
	"elastic":     ease.OutElastic,
	"exponential": ease.InOutExpo,
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func easeApply(kind string, u float64) float64 {
	fn, ok := Eases[kind]
	if !ok {
		fn = ease.Linear
	}
	return float64(fn(float32(u), 0, 1, 1))
}

// Eval returns the value at time t (seconds): 0 with no keys, the first or
// last value outside the keyed range, eased interpolation inside it.
func (e Envelope) Eval(t float64) float64 {
	n := len(e.Keys)
	if n == 0 {
		return 0
	}
	if t <= e.Keys[0].T {
		return e.Keys[0].V
	}
	if t >= e.Keys[n-1].T {
		return e.Keys[n-1].V
	}
	i := sort.Search(n, func(i int) bool { return e.Keys[i].T > t }) - 1
	a, b := e.Keys[i], e.Keys[i+1]
	den := b.T - a.T
	if den <= 0 {
		return b.V
	}
	u := easeApply(a.Ease, clamp01((t-a.T)/den))
	return a.V + (b.V-a.V)*u
}

// BoolEval thresholds the envelope at 0.5 into a boolean.
func (e Envelope) BoolEval(t float64) bool {
	return e.Eval(t) >= 0.5
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Keys == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e.Keys)
}

// UnmarshalJSON reads a keyframe array and sorts it by time.
func (e *Envelope) UnmarshalJSON(b []byte) error {
	var keys []Keyframe
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	for _, k := range keys {
		if _, ok := Eases[k.Ease]; !ok {
			return fmt.Errorf("ease %q: %w", k.Ease, errs.ErrNotFound)
		}
	}
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].T < keys[j].T })
	e.Keys = keys
	return nil
}
