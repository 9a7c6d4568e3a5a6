// Package store persists the per-device state that is restored at boot:
// the running animation, its color and speed, the effect, the displayed image
// and the device brightness.
package store

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/coreman2200/ledgfx/internal/effect"
	"github.com/coreman2200/ledgfx/internal/errs"
)

// Record is the persisted state of one device.
type Record struct {
	Device     string      `yaml:"device" json:"device"`
	Animation  string      `yaml:"animation,omitempty" json:"animation,omitempty"`
	Color      string      `yaml:"color,omitempty" json:"color,omitempty"` // #RRGGBB
	Speed      uint8       `yaml:"speed,omitempty" json:"speed,omitempty"`
	Effect     effect.Spec `yaml:"effect,omitempty" json:"effect,omitempty"`
	Image      string      `yaml:"image,omitempty" json:"image,omitempty"`
	Brightness uint8       `yaml:"brightness" json:"brightness"`
	Updated    time.Time   `yaml:"updated" json:"updated"`
}

// Store loads and saves device records. Load of an unknown device returns
// an error wrapping errs.ErrNotFound.
type Store interface {
	Load(device string) (Record, error)
	Save(r Record) error
	Close() error
}

// Open returns the backend named by kind ("yaml" or "sqlite") at path.
func Open(kind, path string) (Store, error) {
	switch strings.ToLower(kind) {
	case "yaml":
		return OpenYAML(path)
	case "sqlite":
		return OpenSQLite(path)
	}
	return nil, fmt.Errorf("store kind %q: %w", kind, errs.ErrUnsupported)
}

func validate(r Record) error {
	if r.Device == "" {
		return fmt.Errorf("record without device: %w", errs.ErrInvalidArgument)
	}
	return nil
}

func sortRecords(rs []Record) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].Device < rs[j].Device })
}
