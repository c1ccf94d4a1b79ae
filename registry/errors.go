package registry

import "github.com/pkg/errors"

// The four ways a claim can fail. Callers branch on these with
// errors.Is; the public accessor layer collapses all of them into the
// sentinel value of whatever it returns.
var (
	// ErrPortOutOfRange means the port index is not a physical port.
	ErrPortOutOfRange = errors.New("port out of range")
	// ErrNoDevice means no device has ever been registered at the port.
	ErrNoDevice = errors.New("no device registered on port")
	// ErrWrongDevice means a device is present but of a different type
	// than the caller asked for.
	ErrWrongDevice = errors.New("wrong device type on port")
	// ErrPortClaimed means another claim on the port is outstanding.
	ErrPortClaimed = errors.New("port already claimed")
)

func newPortOutOfRangeError(port int) error {
	return errors.Wrapf(ErrPortOutOfRange, "port %d not in [0, %d)", port, NumPorts)
}

func newNoDeviceError(port int) error {
	return errors.Wrapf(ErrNoDevice, "port %d", port)
}

func newWrongDeviceError(port int, want, got DeviceType) error {
	return errors.Wrapf(ErrWrongDevice, "port %d has %s, want %s", port, got, want)
}

func newPortClaimedError(port int) error {
	return errors.Wrapf(ErrPortClaimed, "port %d", port)
}
