// Package sdcard exposes the brain's microSD slot. The slot is not a
// smart-port device, so there is no port claim here: calls forward
// straight to the vendor filesystem layer.
package sdcard

import (
	"github.com/pkg/errors"

	"go.viam.com/smartport/vexapi"
)

// ErrNotInstalled is returned when no card is present in the slot.
var ErrNotInstalled = errors.New("no sd card installed")

// An SDCard forwards microSD queries to the vendor layer.
type SDCard struct {
	api vexapi.SDCard
}

// New returns an accessor over the given vendor filesystem surface.
func New(api vexapi.SDCard) *SDCard {
	return &SDCard{api: api}
}

// Installed reports whether a card is present in the slot.
func (s *SDCard) Installed() bool {
	return s.api.Installed()
}

// ListFiles lists the entries under path on the card.
func (s *SDCard) ListFiles(path string) ([]string, error) {
	if !s.api.Installed() {
		return nil, ErrNotInstalled
	}
	files, err := s.api.ListFiles(path)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %q", path)
	}
	return files, nil
}
