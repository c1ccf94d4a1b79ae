// Package vexapi declares the boundary to the vendor V5 device runtime.
//
// Everything below this boundary is opaque firmware: the interfaces here
// describe the calls the device layer is allowed to make against a handle
// it has claimed, and nothing else. Implementations come from the platform
// glue (or from test fakes); this module never constructs one itself.
package vexapi

// Device is an opaque handle to one plugged-in smart device. A handle is
// only usable while the port it lives on is claimed; callers type-assert
// it to the interface matching the port's device type.
type Device interface{}

// RawXYZ is a raw three-axis sample (gyro rate or acceleration).
type RawXYZ struct {
	X float64
	Y float64
	Z float64
}

// GPSAttitude is the full pose sample a GPS sensor reports: field
// position plus orientation, all in one device read.
type GPSAttitude struct {
	PositionX float64
	PositionY float64
	Pitch     float64
	Roll      float64
	Yaw       float64
}

// GPS is the vendor surface of the V5 GPS sensor.
type GPS interface {
	SetOrigin(x, y float64)
	Origin() (x, y float64)
	SetInitialPosition(x, y, heading float64)
	// SetDataRate sets the sample interval in milliseconds. The device only
	// honors multiples of its minimum interval; quantization happens above
	// this boundary.
	SetDataRate(intervalMS uint32)
	Error() float64
	Attitude() GPSAttitude
	// Degrees is the filtered heading in [0, 360).
	Degrees() float64
	// Heading is the raw, unfiltered heading.
	Heading() float64
	RawGyro() RawXYZ
	RawAccel() RawXYZ
}

// IMUAttitude is the euler-angle sample an inertial sensor reports.
type IMUAttitude struct {
	Pitch float64
	Roll  float64
	Yaw   float64
}

// IMUStatus is the raw status word of the inertial sensor. Bit 0 is the
// calibrating flag; bits 1-3 encode the physical mounting orientation.
type IMUStatus uint32

const (
	// IMUStatusCalibrating is set while a calibration pass is running.
	IMUStatusCalibrating IMUStatus = 0x01
	// IMUStatusError is the whole-word value reported when the status
	// itself could not be read.
	IMUStatusError IMUStatus = 0xFF
)

// Calibrating reports whether a calibration pass is currently running.
func (s IMUStatus) Calibrating() bool {
	return s&IMUStatusCalibrating != 0
}

// IMU is the vendor surface of the V5 inertial sensor.
type IMU interface {
	// Reset starts a calibration pass. The calibrating status bit is set
	// some time later by background processing, not synchronously.
	Reset()
	Status() IMUStatus
	Attitude() IMUAttitude
	// Heading is the unbounded accumulated rotation.
	Heading() float64
	// Degrees is the heading wrapped to [0, 360).
	Degrees() float64
	RawGyro() RawXYZ
	RawAccel() RawXYZ
	SetDataRate(intervalMS uint32)
}

// SDCard is the vendor surface of the brain's microSD slot. It is not a
// smart-port device and needs no port claim.
type SDCard interface {
	Installed() bool
	ListFiles(path string) ([]string, error)
}
