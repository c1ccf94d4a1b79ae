// Package gps exposes the V5 GPS sensor: field position, orientation,
// and raw gyro/accelerometer samples.
//
// Accessors take a short exclusive claim on the sensor's port for each
// call and report failure through sentinel values rather than errors:
// floats come back as registry.ErrFloat, structs come back with every
// field set to it, and write-style calls return registry.ErrInt32. Ports
// are one-based here, matching the numbers printed on the brain.
package gps

import (
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"go.viam.com/smartport/registry"
	"go.viam.com/smartport/vexapi"
)

// minimumDataRateMS is the shortest sample interval the sensor supports.
const minimumDataRateMS = 5

// A Position is a field-coordinate pair in meters.
type Position struct {
	X float64
	Y float64
}

// An Orientation is the sensor's attitude in degrees.
type Orientation struct {
	Roll  float64
	Pitch float64
	Yaw   float64
}

// A Status is the full pose sample: position and orientation together,
// from a single device read.
type Status struct {
	X     float64
	Y     float64
	Pitch float64
	Roll  float64
	Yaw   float64
}

// A GPS reads one GPS sensor through the port registry.
type GPS struct {
	reg    *registry.Registry
	port   int
	logger golog.Logger
}

// New returns an accessor for the GPS sensor on the given one-based
// port. No hardware is touched until the first accessor call, so the
// device may be plugged in later.
func New(reg *registry.Registry, port int, logger golog.Logger) *GPS {
	return &GPS{reg: reg, port: port, logger: logger}
}

func (g *GPS) index() int {
	return g.port - 1
}

// Initialize sets the sensor's mounting offset and initial pose in one
// claim. Returns registry.Success or registry.ErrInt32.
func (g *GPS) Initialize(xInitial, yInitial, headingInitial, xOffset, yOffset float64) int32 {
	return registry.DoInt32(g.reg, g.index(), registry.TypeGPS,
		func(_ *registry.Device, dev vexapi.GPS) int32 {
			dev.SetOrigin(xOffset, yOffset)
			dev.SetInitialPosition(xInitial, yInitial, headingInitial)
			return registry.Success
		})
}

// SetOffset sets the sensor's mounting offset from the robot's center
// of rotation.
func (g *GPS) SetOffset(xOffset, yOffset float64) int32 {
	return registry.DoInt32(g.reg, g.index(), registry.TypeGPS,
		func(_ *registry.Device, dev vexapi.GPS) int32 {
			dev.SetOrigin(xOffset, yOffset)
			return registry.Success
		})
}

// Offset returns the sensor's mounting offset.
func (g *GPS) Offset() Position {
	return registry.Do(g.reg, g.index(), registry.TypeGPS, errPosition(),
		func(_ *registry.Device, dev vexapi.GPS) Position {
			x, y := dev.Origin()
			return Position{X: x, Y: y}
		})
}

// SetPosition tells the sensor where the robot currently is.
func (g *GPS) SetPosition(xInitial, yInitial, headingInitial float64) int32 {
	return registry.DoInt32(g.reg, g.index(), registry.TypeGPS,
		func(_ *registry.Device, dev vexapi.GPS) int32 {
			dev.SetInitialPosition(xInitial, yInitial, headingInitial)
			return registry.Success
		})
}

// SetDataRate sets the sample interval in milliseconds. The interval is
// clamped up to the sensor's 5ms minimum and rounded down to the
// nearest multiple of it.
func (g *GPS) SetDataRate(rateMS uint32) int32 {
	return registry.DoInt32(g.reg, g.index(), registry.TypeGPS,
		func(_ *registry.Device, dev vexapi.GPS) int32 {
			dev.SetDataRate(quantizeDataRate(rateMS))
			return registry.Success
		})
}

// Error returns the sensor's estimate of its own position error, in
// meters.
func (g *GPS) Error() float64 {
	return registry.DoFloat(g.reg, g.index(), registry.TypeGPS,
		func(_ *registry.Device, dev vexapi.GPS) float64 {
			return dev.Error()
		})
}

// Status returns position and orientation from a single device read.
func (g *GPS) Status() Status {
	return registry.Do(g.reg, g.index(), registry.TypeGPS, errStatus(),
		func(_ *registry.Device, dev vexapi.GPS) Status {
			data := dev.Attitude()
			return Status{
				X:     data.PositionX,
				Y:     data.PositionY,
				Pitch: data.Pitch,
				Roll:  data.Roll,
				Yaw:   data.Yaw,
			}
		})
}

// Position returns the robot's position on the field.
func (g *GPS) Position() Position {
	return registry.Do(g.reg, g.index(), registry.TypeGPS, errPosition(),
		func(_ *registry.Device, dev vexapi.GPS) Position {
			data := dev.Attitude()
			return Position{X: data.PositionX, Y: data.PositionY}
		})
}

// PositionX returns the X coordinate of the robot's position.
func (g *GPS) PositionX() float64 {
	return registry.DoFloat(g.reg, g.index(), registry.TypeGPS,
		func(_ *registry.Device, dev vexapi.GPS) float64 {
			return dev.Attitude().PositionX
		})
}

// PositionY returns the Y coordinate of the robot's position.
func (g *GPS) PositionY() float64 {
	return registry.DoFloat(g.reg, g.index(), registry.TypeGPS,
		func(_ *registry.Device, dev vexapi.GPS) float64 {
			return dev.Attitude().PositionY
		})
}

// Orientation returns roll, pitch, and yaw from a single device read.
func (g *GPS) Orientation() Orientation {
	return registry.Do(g.reg, g.index(), registry.TypeGPS, errOrientation(),
		func(_ *registry.Device, dev vexapi.GPS) Orientation {
			data := dev.Attitude()
			return Orientation{Roll: data.Roll, Pitch: data.Pitch, Yaw: data.Yaw}
		})
}

// Pitch returns the sensor's pitch in degrees.
func (g *GPS) Pitch() float64 {
	return registry.DoFloat(g.reg, g.index(), registry.TypeGPS,
		func(_ *registry.Device, dev vexapi.GPS) float64 {
			return dev.Attitude().Pitch
		})
}

// Roll returns the sensor's roll in degrees.
func (g *GPS) Roll() float64 {
	return registry.DoFloat(g.reg, g.index(), registry.TypeGPS,
		func(_ *registry.Device, dev vexapi.GPS) float64 {
			return dev.Attitude().Roll
		})
}

// Yaw returns the sensor's yaw in degrees.
func (g *GPS) Yaw() float64 {
	return registry.DoFloat(g.reg, g.index(), registry.TypeGPS,
		func(_ *registry.Device, dev vexapi.GPS) float64 {
			return dev.Attitude().Yaw
		})
}

// Heading returns the filtered heading in [0, 360).
func (g *GPS) Heading() float64 {
	return registry.DoFloat(g.reg, g.index(), registry.TypeGPS,
		func(_ *registry.Device, dev vexapi.GPS) float64 {
			return dev.Degrees()
		})
}

// RawHeading returns the unfiltered heading.
func (g *GPS) RawHeading() float64 {
	return registry.DoFloat(g.reg, g.index(), registry.TypeGPS,
		func(_ *registry.Device, dev vexapi.GPS) float64 {
			return dev.Heading()
		})
}

// GyroRate returns the raw gyroscope rates, degrees per second per axis.
func (g *GPS) GyroRate() r3.Vector {
	return registry.Do(g.reg, g.index(), registry.TypeGPS, errVector(),
		func(_ *registry.Device, dev vexapi.GPS) r3.Vector {
			raw := dev.RawGyro()
			return r3.Vector{X: raw.X, Y: raw.Y, Z: raw.Z}
		})
}

// GyroRateX returns the gyroscope rate about the X axis.
func (g *GPS) GyroRateX() float64 {
	return registry.DoFloat(g.reg, g.index(), registry.TypeGPS,
		func(_ *registry.Device, dev vexapi.GPS) float64 {
			return dev.RawGyro().X
		})
}

// GyroRateY returns the gyroscope rate about the Y axis.
func (g *GPS) GyroRateY() float64 {
	return registry.DoFloat(g.reg, g.index(), registry.TypeGPS,
		func(_ *registry.Device, dev vexapi.GPS) float64 {
			return dev.RawGyro().Y
		})
}

// GyroRateZ returns the gyroscope rate about the Z axis.
func (g *GPS) GyroRateZ() float64 {
	return registry.DoFloat(g.reg, g.index(), registry.TypeGPS,
		func(_ *registry.Device, dev vexapi.GPS) float64 {
			return dev.RawGyro().Z
		})
}

// Accel returns the raw accelerometer sample, g per axis.
func (g *GPS) Accel() r3.Vector {
	return registry.Do(g.reg, g.index(), registry.TypeGPS, errVector(),
		func(_ *registry.Device, dev vexapi.GPS) r3.Vector {
			raw := dev.RawAccel()
			return r3.Vector{X: raw.X, Y: raw.Y, Z: raw.Z}
		})
}

// AccelX returns acceleration along the X axis.
func (g *GPS) AccelX() float64 {
	return registry.DoFloat(g.reg, g.index(), registry.TypeGPS,
		func(_ *registry.Device, dev vexapi.GPS) float64 {
			return dev.RawAccel().X
		})
}

// AccelY returns acceleration along the Y axis.
func (g *GPS) AccelY() float64 {
	return registry.DoFloat(g.reg, g.index(), registry.TypeGPS,
		func(_ *registry.Device, dev vexapi.GPS) float64 {
			return dev.RawAccel().Y
		})
}

// AccelZ returns acceleration along the Z axis.
func (g *GPS) AccelZ() float64 {
	return registry.DoFloat(g.reg, g.index(), registry.TypeGPS,
		func(_ *registry.Device, dev vexapi.GPS) float64 {
			return dev.RawAccel().Z
		})
}

// quantizeDataRate clamps an interval to the sensor's minimum and rounds
// it down to the nearest multiple of that minimum.
func quantizeDataRate(rateMS uint32) uint32 {
	if rateMS < minimumDataRateMS {
		return minimumDataRateMS
	}
	return rateMS - rateMS%minimumDataRateMS
}

func errPosition() Position {
	return Position{X: registry.ErrFloat, Y: registry.ErrFloat}
}

func errOrientation() Orientation {
	return Orientation{Roll: registry.ErrFloat, Pitch: registry.ErrFloat, Yaw: registry.ErrFloat}
}

func errStatus() Status {
	return Status{
		X:     registry.ErrFloat,
		Y:     registry.ErrFloat,
		Pitch: registry.ErrFloat,
		Roll:  registry.ErrFloat,
		Yaw:   registry.ErrFloat,
	}
}

func errVector() r3.Vector {
	return r3.Vector{X: registry.ErrFloat, Y: registry.ErrFloat, Z: registry.ErrFloat}
}
