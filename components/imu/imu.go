// Package imu exposes the V5 inertial sensor: heading, rotation, euler
// angles, quaternion, and raw gyro/accelerometer samples.
//
// Like the GPS accessor, every call claims the sensor's port for its
// duration and reports failure through sentinels. The sensor carries
// per-port tare offsets so readings can be re-zeroed at runtime; the
// offsets live in the port registry, not in this struct, so every
// accessor on the port sees the same zero. While a calibration pass is
// running most data accessors return their sentinel instead of stale
// values.
package imu

import (
	"context"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"go.viam.com/smartport/registry"
	"go.viam.com/smartport/utils"
	"go.viam.com/smartport/vexapi"
)

const (
	// eulerLimit bounds pitch/roll/yaw targets and wraps euler readings.
	eulerLimit = 180
	// headingMax bounds heading targets and wraps heading readings.
	headingMax = 360

	minimumDataRateMS = 5

	resetPollInterval = 5 * time.Millisecond
	// resetFlagSetTimeout is how long we wait for background processing
	// to raise the calibrating flag after a reset request.
	resetFlagSetTimeout = time.Second
	// resetTimeout bounds the whole blocking calibration wait.
	// Calibration canonically takes 2s; 3s leaves margin.
	resetTimeout = 3 * time.Second
)

// EulerAngles is an attitude sample in degrees.
type EulerAngles struct {
	Pitch float64
	Roll  float64
	Yaw   float64
}

// A Quaternion is an attitude sample as a unit quaternion.
type Quaternion struct {
	X float64
	Y float64
	Z float64
	W float64
}

// Orientation is the sensor's physical mounting orientation, reported
// by calibration.
type Orientation int32

// All mounting orientations the sensor can report.
const (
	ZUp Orientation = iota
	ZDown
	XUp
	XDown
	YUp
	YDown

	// OrientationError is the sentinel when the status read failed.
	OrientationError Orientation = math.MaxInt32
)

// offsets is the per-port tare state, stored in registry scratch so all
// accessors on the port share it. Touched only under claim.
type offsets struct {
	heading  float64
	rotation float64
	pitch    float64
	roll     float64
	yaw      float64
}

func deviceOffsets(dev *registry.Device) *offsets {
	if o, ok := dev.Scratch().(*offsets); ok {
		return o
	}
	o := &offsets{}
	dev.SetScratch(o)
	return o
}

// An IMU reads one inertial sensor through the port registry.
type IMU struct {
	reg    *registry.Registry
	port   int
	logger golog.Logger
	clock  clock.Clock
}

// Option configures an IMU accessor.
type Option func(*IMU)

// WithClock swaps the wall clock used for calibration waits, for tests.
func WithClock(c clock.Clock) Option {
	return func(s *IMU) {
		s.clock = c
	}
}

// New returns an accessor for the inertial sensor on the given
// one-based port.
func New(reg *registry.Registry, port int, logger golog.Logger, opts ...Option) *IMU {
	s := &IMU{reg: reg, port: port, logger: logger, clock: clock.New()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *IMU) index() int {
	return s.port - 1
}

// Reset starts a calibration pass and returns once the sensor has
// acknowledged it by raising the calibrating flag, which background
// processing does some time after the request. Fails with
// registry.ErrInt32 if a pass is already running or the flag never
// appears within a second. Readings are unreliable until calibration
// finishes; see ResetBlocking to wait it out.
func (s *IMU) Reset(ctx context.Context) int32 {
	return s.reset(ctx, false)
}

// ResetBlocking starts a calibration pass and waits for it to complete,
// bounded by a 3 second overall timeout.
func (s *IMU) ResetBlocking(ctx context.Context) int32 {
	return s.reset(ctx, true)
}

func (s *IMU) reset(ctx context.Context, block bool) int32 {
	started := registry.DoInt32(s.reg, s.index(), registry.TypeIMU,
		func(_ *registry.Device, dev vexapi.IMU) int32 {
			if dev.Status().Calibrating() {
				return registry.ErrInt32
			}
			dev.Reset()
			return registry.Success
		})
	if started != registry.Success {
		return registry.ErrInt32
	}

	// The claim is dropped between polls so background processing can
	// touch the device.
	var elapsed time.Duration
	if !s.waitForCalibrating(ctx, true, resetFlagSetTimeout, &elapsed) {
		return registry.ErrInt32
	}
	if block && !s.waitForCalibrating(ctx, false, resetTimeout, &elapsed) {
		return registry.ErrInt32
	}
	return registry.Success
}

// waitForCalibrating polls the calibrating flag every resetPollInterval
// until it matches want or limit elapses. elapsed accumulates across
// calls so the flag-set wait and the completion wait share one budget.
func (s *IMU) waitForCalibrating(ctx context.Context, want bool, limit time.Duration, elapsed *time.Duration) bool {
	for {
		s.clock.Sleep(resetPollInterval)
		*elapsed += resetPollInterval
		if ctx.Err() != nil {
			return false
		}
		if *elapsed >= limit {
			s.logger.Warnw("inertial sensor calibration wait timed out", "port", s.port)
			return false
		}
		status := s.Status()
		if status == vexapi.IMUStatusError {
			return false
		}
		if status.Calibrating() == want {
			return true
		}
	}
}

// SetDataRate sets the sample interval in milliseconds, clamped up to
// the sensor's 5ms minimum and rounded down to a multiple of it.
func (s *IMU) SetDataRate(rateMS uint32) int32 {
	return registry.DoInt32(s.reg, s.index(), registry.TypeIMU,
		func(_ *registry.Device, dev vexapi.IMU) int32 {
			if dev.Status().Calibrating() {
				return registry.ErrInt32
			}
			if rateMS < minimumDataRateMS {
				rateMS = minimumDataRateMS
			} else {
				rateMS -= rateMS % minimumDataRateMS
			}
			dev.SetDataRate(rateMS)
			return registry.Success
		})
}

// Rotation returns the unbounded accumulated rotation, offset by any
// tare.
func (s *IMU) Rotation() float64 {
	return registry.DoFloat(s.reg, s.index(), registry.TypeIMU,
		func(dev *registry.Device, h vexapi.IMU) float64 {
			if h.Status().Calibrating() {
				return registry.ErrFloat
			}
			return h.Heading() + deviceOffsets(dev).rotation
		})
}

// Heading returns the tared heading wrapped to [0, 360).
func (s *IMU) Heading() float64 {
	return registry.DoFloat(s.reg, s.index(), registry.TypeIMU,
		func(dev *registry.Device, h vexapi.IMU) float64 {
			if h.Status().Calibrating() {
				return registry.ErrFloat
			}
			rtn := h.Degrees() + deviceOffsets(dev).heading
			return math.Mod(rtn+headingMax, headingMax)
		})
}

// Quaternion returns the tared attitude as a quaternion.
func (s *IMU) Quaternion() Quaternion {
	return registry.Do(s.reg, s.index(), registry.TypeIMU, errQuaternion(),
		func(dev *registry.Device, h vexapi.IMU) Quaternion {
			if h.Status().Calibrating() {
				return errQuaternion()
			}
			att := h.Attitude()
			o := deviceOffsets(dev)

			// apply the tare offsets to the euler angles, then convert
			roll := math.Mod(att.Roll+o.roll, 2*eulerLimit)
			yaw := math.Mod(att.Yaw+o.yaw, 2*eulerLimit)
			pitch := math.Mod(att.Pitch+o.pitch, 2*eulerLimit)

			cy := math.Cos(utils.DegToRad(yaw) * 0.5)
			sy := math.Sin(utils.DegToRad(yaw) * 0.5)
			cp := math.Cos(utils.DegToRad(pitch) * 0.5)
			sp := math.Sin(utils.DegToRad(pitch) * 0.5)
			cr := math.Cos(utils.DegToRad(roll) * 0.5)
			sr := math.Sin(utils.DegToRad(roll) * 0.5)

			return Quaternion{
				W: cr*cp*cy + sr*sp*sy,
				X: sr*cp*cy - cr*sp*sy,
				Y: cr*sp*cy + sr*cp*sy,
				Z: cr*cp*sy - sr*sp*cy,
			}
		})
}

// Euler returns the tared euler angles, each wrapped into (-360, 360).
func (s *IMU) Euler() EulerAngles {
	return registry.Do(s.reg, s.index(), registry.TypeIMU, errEuler(),
		func(dev *registry.Device, h vexapi.IMU) EulerAngles {
			if h.Status().Calibrating() {
				return errEuler()
			}
			att := h.Attitude()
			o := deviceOffsets(dev)
			return EulerAngles{
				Pitch: math.Mod(att.Pitch+o.pitch, 2*eulerLimit),
				Roll:  math.Mod(att.Roll+o.roll, 2*eulerLimit),
				Yaw:   math.Mod(att.Yaw+o.yaw, 2*eulerLimit),
			}
		})
}

// Pitch returns the tared pitch in degrees.
func (s *IMU) Pitch() float64 {
	return registry.DoFloat(s.reg, s.index(), registry.TypeIMU,
		func(dev *registry.Device, h vexapi.IMU) float64 {
			return math.Mod(h.Attitude().Pitch+deviceOffsets(dev).pitch, 2*eulerLimit)
		})
}

// Roll returns the tared roll in degrees.
func (s *IMU) Roll() float64 {
	return registry.DoFloat(s.reg, s.index(), registry.TypeIMU,
		func(dev *registry.Device, h vexapi.IMU) float64 {
			return math.Mod(h.Attitude().Roll+deviceOffsets(dev).roll, 2*eulerLimit)
		})
}

// Yaw returns the tared yaw in degrees.
func (s *IMU) Yaw() float64 {
	return registry.DoFloat(s.reg, s.index(), registry.TypeIMU,
		func(dev *registry.Device, h vexapi.IMU) float64 {
			return math.Mod(h.Attitude().Yaw+deviceOffsets(dev).yaw, 2*eulerLimit)
		})
}

// GyroRate returns the raw gyroscope rates, degrees per second per axis.
func (s *IMU) GyroRate() r3.Vector {
	return registry.Do(s.reg, s.index(), registry.TypeIMU, errVector(),
		func(_ *registry.Device, h vexapi.IMU) r3.Vector {
			if h.Status().Calibrating() {
				return errVector()
			}
			raw := h.RawGyro()
			return r3.Vector{X: raw.X, Y: raw.Y, Z: raw.Z}
		})
}

// Accel returns the raw accelerometer sample, g per axis.
func (s *IMU) Accel() r3.Vector {
	return registry.Do(s.reg, s.index(), registry.TypeIMU, errVector(),
		func(_ *registry.Device, h vexapi.IMU) r3.Vector {
			if h.Status().Calibrating() {
				return errVector()
			}
			raw := h.RawAccel()
			return r3.Vector{X: raw.X, Y: raw.Y, Z: raw.Z}
		})
}

// Status returns the raw device status word, vexapi.IMUStatusError on
// failure.
func (s *IMU) Status() vexapi.IMUStatus {
	return registry.Do(s.reg, s.index(), registry.TypeIMU, vexapi.IMUStatusError,
		func(_ *registry.Device, h vexapi.IMU) vexapi.IMUStatus {
			return h.Status()
		})
}

// PhysicalOrientation reports how the sensor is mounted, derived from
// the status word.
func (s *IMU) PhysicalOrientation() Orientation {
	status := s.Status()
	if status == vexapi.IMUStatusError {
		return OrientationError
	}
	return Orientation((status >> 1) & 7)
}

// Tare zeroes every reading at the sensor's current values.
func (s *IMU) Tare() int32 {
	return registry.DoInt32(s.reg, s.index(), registry.TypeIMU,
		func(dev *registry.Device, h vexapi.IMU) int32 {
			att := h.Attitude()
			o := deviceOffsets(dev)
			o.rotation = -h.Heading()
			o.heading = -h.Degrees()
			o.pitch = -att.Pitch
			o.roll = -att.Roll
			o.yaw = -att.Yaw
			return registry.Success
		})
}

// TareEuler zeroes pitch, roll, and yaw.
func (s *IMU) TareEuler() int32 {
	return s.SetEuler(EulerAngles{})
}

// TareHeading zeroes the heading.
func (s *IMU) TareHeading() int32 {
	return s.SetHeading(0)
}

// TareRotation zeroes the accumulated rotation.
func (s *IMU) TareRotation() int32 {
	return s.SetRotation(0)
}

// TarePitch zeroes the pitch.
func (s *IMU) TarePitch() int32 {
	return s.SetPitch(0)
}

// TareRoll zeroes the roll.
func (s *IMU) TareRoll() int32 {
	return s.SetRoll(0)
}

// TareYaw zeroes the yaw.
func (s *IMU) TareYaw() int32 {
	return s.SetYaw(0)
}

// SetRotation makes the current accumulated rotation read as target.
func (s *IMU) SetRotation(target float64) int32 {
	return registry.DoInt32(s.reg, s.index(), registry.TypeIMU,
		func(dev *registry.Device, h vexapi.IMU) int32 {
			if h.Status().Calibrating() {
				return registry.ErrInt32
			}
			deviceOffsets(dev).rotation = target - h.Heading()
			return registry.Success
		})
}

// SetHeading makes the current heading read as target, clamped to
// [0, 360].
func (s *IMU) SetHeading(target float64) int32 {
	return registry.DoInt32(s.reg, s.index(), registry.TypeIMU,
		func(dev *registry.Device, h vexapi.IMU) int32 {
			if h.Status().Calibrating() {
				return registry.ErrInt32
			}
			target = clamp(target, 0, headingMax)
			deviceOffsets(dev).heading = target - h.Degrees()
			return registry.Success
		})
}

// SetPitch makes the current pitch read as target, clamped to ±180.
func (s *IMU) SetPitch(target float64) int32 {
	return registry.DoInt32(s.reg, s.index(), registry.TypeIMU,
		func(dev *registry.Device, h vexapi.IMU) int32 {
			if h.Status().Calibrating() {
				return registry.ErrInt32
			}
			target = clamp(target, -eulerLimit, eulerLimit)
			deviceOffsets(dev).pitch = target - h.Attitude().Pitch
			return registry.Success
		})
}

// SetRoll makes the current roll read as target, clamped to ±180.
func (s *IMU) SetRoll(target float64) int32 {
	return registry.DoInt32(s.reg, s.index(), registry.TypeIMU,
		func(dev *registry.Device, h vexapi.IMU) int32 {
			if h.Status().Calibrating() {
				return registry.ErrInt32
			}
			target = clamp(target, -eulerLimit, eulerLimit)
			deviceOffsets(dev).roll = target - h.Attitude().Roll
			return registry.Success
		})
}

// SetYaw makes the current yaw read as target, clamped to ±180.
func (s *IMU) SetYaw(target float64) int32 {
	return registry.DoInt32(s.reg, s.index(), registry.TypeIMU,
		func(dev *registry.Device, h vexapi.IMU) int32 {
			if h.Status().Calibrating() {
				return registry.ErrInt32
			}
			target = clamp(target, -eulerLimit, eulerLimit)
			deviceOffsets(dev).yaw = target - h.Attitude().Yaw
			return registry.Success
		})
}

// SetEuler makes the current euler angles read as target, each axis
// clamped to ±180.
func (s *IMU) SetEuler(target EulerAngles) int32 {
	return registry.DoInt32(s.reg, s.index(), registry.TypeIMU,
		func(dev *registry.Device, h vexapi.IMU) int32 {
			att := h.Attitude()
			o := deviceOffsets(dev)
			o.pitch = clamp(target.Pitch, -eulerLimit, eulerLimit) - att.Pitch
			o.roll = clamp(target.Roll, -eulerLimit, eulerLimit) - att.Roll
			o.yaw = clamp(target.Yaw, -eulerLimit, eulerLimit) - att.Yaw
			return registry.Success
		})
}

func clamp(v, lo, hi float64) float64 {
	if v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}

func errEuler() EulerAngles {
	return EulerAngles{Pitch: registry.ErrFloat, Roll: registry.ErrFloat, Yaw: registry.ErrFloat}
}

func errQuaternion() Quaternion {
	return Quaternion{X: registry.ErrFloat, Y: registry.ErrFloat, Z: registry.ErrFloat, W: registry.ErrFloat}
}

func errVector() r3.Vector {
	return r3.Vector{X: registry.ErrFloat, Y: registry.ErrFloat, Z: registry.ErrFloat}
}
