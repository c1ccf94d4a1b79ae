// Package registry owns the smart-port table: which device is plugged
// into which port, and who currently holds exclusive access to it.
//
// The table has one slot per physical port. Device detection registers
// and deregisters descriptors as hardware presence changes; accessors
// take short-lived exclusive claims around each device read. Claims
// never wait: they either succeed immediately or fail immediately, and
// nothing may suspend while holding one.
package registry

import (
	"sync"
	"sync/atomic"

	"go.viam.com/smartport/vexapi"
)

// NumPorts is the number of physical smart ports on the brain. Port
// indices are zero-based here; the public accessor surface is one-based.
const NumPorts = 21

// A Device describes one registered smart device. The registry owns all
// descriptors; callers only see one for the duration of a claim and must
// not retain it past release.
type Device struct {
	port   int
	typ    DeviceType
	handle vexapi.Device

	// scratch is per-port storage that survives across claims, for
	// driver state that must be shared by every caller on the port
	// (e.g. inertial-sensor tare offsets). Only touched under claim.
	scratch interface{}
}

// Port returns the zero-based port the device is plugged into.
func (d *Device) Port() int { return d.port }

// Type returns the device's type tag.
func (d *Device) Type() DeviceType { return d.typ }

// Handle returns the opaque vendor handle.
func (d *Device) Handle() vexapi.Device { return d.handle }

// Scratch returns the per-port scratch value, nil if never set.
func (d *Device) Scratch() interface{} { return d.scratch }

// SetScratch replaces the per-port scratch value. Call only while the
// port is claimed.
func (d *Device) SetScratch(v interface{}) { d.scratch = v }

type slot struct {
	mu  sync.Mutex // guards dev
	dev *Device

	// claimed is the per-port exclusive-access flag. It is deliberately
	// separate from mu so a claim can outlive the slot lock without
	// blocking registration bookkeeping.
	claimed atomic.Bool
}

// A Registry is the fixed table mapping ports to device descriptors.
type Registry struct {
	slots [NumPorts]slot
}

// New returns an empty registry with every port unregistered.
func New() *Registry {
	return &Registry{}
}

// ValidPort reports whether port is a physical port index.
func ValidPort(port int) bool {
	return port >= 0 && port < NumPorts
}

// Register records a device at the given port, overwriting any prior
// descriptor. It is called by device detection whenever hardware
// presence changes. A claim outstanding on the port keeps its old
// descriptor; the new one becomes visible to the next claim.
func (r *Registry) Register(port int, typ DeviceType, handle vexapi.Device) error {
	if !ValidPort(port) {
		return newPortOutOfRangeError(port)
	}
	s := &r.slots[port]
	s.mu.Lock()
	s.dev = &Device{port: port, typ: typ, handle: handle}
	s.mu.Unlock()
	return nil
}

// Deregister clears the descriptor at the given port, typically on
// device unplug. Clearing an already-empty port is not an error.
func (r *Registry) Deregister(port int) error {
	if !ValidPort(port) {
		return newPortOutOfRangeError(port)
	}
	s := &r.slots[port]
	s.mu.Lock()
	s.dev = nil
	s.mu.Unlock()
	return nil
}

// Lookup returns the descriptor registered at the given port. The
// returned descriptor is only safe to use under a claim; prefer Claim
// unless you are the detection subsystem.
func (r *Registry) Lookup(port int) (*Device, error) {
	if !ValidPort(port) {
		return nil, newPortOutOfRangeError(port)
	}
	s := &r.slots[port]
	s.mu.Lock()
	dev := s.dev
	s.mu.Unlock()
	if dev == nil {
		return nil, newNoDeviceError(port)
	}
	return dev, nil
}

// TypeMatches reports whether the given port holds a live device of the
// given type.
func (r *Registry) TypeMatches(port int, typ DeviceType) bool {
	dev, err := r.Lookup(port)
	return err == nil && dev.typ == typ
}

// Claim takes exclusive access to the device at the given port after
// verifying it exists and matches the wanted type. It never blocks: if
// another claim is outstanding it fails with ErrPortClaimed and the
// caller decides whether to retry. Every successful Claim must be paired
// with a Release, on every path out of the operation.
func (r *Registry) Claim(port int, want DeviceType) (*Device, error) {
	if !ValidPort(port) {
		return nil, newPortOutOfRangeError(port)
	}
	s := &r.slots[port]
	s.mu.Lock()
	dev := s.dev
	s.mu.Unlock()
	if dev == nil || dev.typ == TypeNone {
		return nil, newNoDeviceError(port)
	}
	if dev.typ != want {
		return nil, newWrongDeviceError(port, want, dev.typ)
	}
	if !s.claimed.CompareAndSwap(false, true) {
		return nil, newPortClaimedError(port)
	}
	return dev, nil
}

// Release drops the exclusive claim on the given port. It is idempotent
// and safe to call on ports that were never claimed or are out of
// range, so cleanup paths can call it unconditionally.
func (r *Registry) Release(port int) {
	if !ValidPort(port) {
		return
	}
	r.slots[port].claimed.Store(false)
}
