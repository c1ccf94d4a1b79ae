package registry

import "math"

// Sentinel values the accessor layer returns on any failure. They are
// reserved values of the success type rather than a separate error
// channel; callers test against these directly.
var (
	// ErrInt32 is the integer failure sentinel.
	ErrInt32 int32 = math.MaxInt32
	// ErrFloat is the floating-point failure sentinel.
	ErrFloat = math.Inf(1)
)

// Success is the integer result of a write-style operation that worked.
const Success int32 = 1

// Do is the claim-read-release wrapper every accessor is built on. It
// claims the port, checks the claimed device's handle is an H, runs op,
// and releases the claim on the way out. Any failure short-circuits to
// fail, fully formed, without touching the handle. op must not suspend:
// the claim is held for its whole duration.
func Do[H any, T any](r *Registry, port int, want DeviceType, fail T, op func(dev *Device, h H) T) T {
	dev, err := r.Claim(port, want)
	if err != nil {
		return fail
	}
	defer r.Release(port)
	h, ok := dev.Handle().(H)
	if !ok {
		return fail
	}
	return op(dev, h)
}

// DoInt32 runs op under claim with the integer-sentinel convention.
func DoInt32[H any](r *Registry, port int, want DeviceType, op func(dev *Device, h H) int32) int32 {
	return Do(r, port, want, ErrInt32, op)
}

// DoFloat runs op under claim with the float-sentinel convention.
func DoFloat[H any](r *Registry, port int, want DeviceType, op func(dev *Device, h H) float64) float64 {
	return Do(r, port, want, ErrFloat, op)
}
