package led

import (
	"errors"

	"github.com/coreman2200/ledgfx/internal/color"
)

// Multi writes every frame to all of its drivers.
type Multi []Driver

func (m Multi) Write(px []color.RGB) error {
	var errList []error
	for _, d := range m {
		if err := d.Write(px); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}

func (m Multi) Close() error {
	var errList []error
	for _, d := range m {
		if err := d.Close(); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}
