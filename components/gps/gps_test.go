package gps

import (
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/smartport/registry"
	"go.viam.com/smartport/vexapi"
)

type fakeGPS struct {
	originX, originY    float64
	initX, initY, initH float64
	dataRateMS          uint32
	err                 float64
	attitude            vexapi.GPSAttitude
	gyro                vexapi.RawXYZ
	accel               vexapi.RawXYZ

	attitudeReads int
	gyroReads     int
	accelReads    int
}

func (f *fakeGPS) SetOrigin(x, y float64) { f.originX, f.originY = x, y }
func (f *fakeGPS) Origin() (float64, float64) {
	return f.originX, f.originY
}

func (f *fakeGPS) SetInitialPosition(x, y, heading float64) {
	f.initX, f.initY, f.initH = x, y, heading
}
func (f *fakeGPS) SetDataRate(intervalMS uint32) { f.dataRateMS = intervalMS }
func (f *fakeGPS) Error() float64                { return f.err }

func (f *fakeGPS) Attitude() vexapi.GPSAttitude {
	f.attitudeReads++
	return f.attitude
}

func (f *fakeGPS) Degrees() float64 { return 90 }
func (f *fakeGPS) Heading() float64 { return 92.5 }

func (f *fakeGPS) RawGyro() vexapi.RawXYZ {
	f.gyroReads++
	return f.gyro
}

func (f *fakeGPS) RawAccel() vexapi.RawXYZ {
	f.accelReads++
	return f.accel
}

func setupGPS(t *testing.T) (*registry.Registry, *fakeGPS, *GPS) {
	t.Helper()
	reg := registry.New()
	fake := &fakeGPS{}
	test.That(t, reg.Register(0, registry.TypeGPS, fake), test.ShouldBeNil)
	return reg, fake, New(reg, 1, golog.NewTestLogger(t))
}

func TestDataRateQuantization(t *testing.T) {
	for _, tc := range []struct {
		requested uint32
		effective uint32
	}{
		{0, 5},
		{3, 5},
		{5, 5},
		{7, 5},
		{10, 10},
		{12, 10},
		{23, 20},
	} {
		test.That(t, quantizeDataRate(tc.requested), test.ShouldEqual, tc.effective)
	}

	_, fake, sensor := setupGPS(t)
	test.That(t, sensor.SetDataRate(23), test.ShouldEqual, registry.Success)
	test.That(t, fake.dataRateMS, test.ShouldEqual, 20)
	test.That(t, sensor.SetDataRate(0), test.ShouldEqual, registry.Success)
	test.That(t, fake.dataRateMS, test.ShouldEqual, 5)
}

func TestOffsetRoundTrip(t *testing.T) {
	_, _, sensor := setupGPS(t)

	test.That(t, sensor.SetOffset(3.0, -1.5), test.ShouldEqual, registry.Success)
	test.That(t, sensor.Offset(), test.ShouldResemble, Position{X: 3.0, Y: -1.5})
}

func TestInitialize(t *testing.T) {
	_, fake, sensor := setupGPS(t)

	test.That(t, sensor.Initialize(1, 2, 45, 0.1, 0.2), test.ShouldEqual, registry.Success)
	test.That(t, fake.initX, test.ShouldEqual, 1.0)
	test.That(t, fake.initY, test.ShouldEqual, 2.0)
	test.That(t, fake.initH, test.ShouldEqual, 45.0)
	test.That(t, fake.originX, test.ShouldEqual, 0.1)
	test.That(t, fake.originY, test.ShouldEqual, 0.2)

	test.That(t, sensor.SetPosition(5, 6, 90), test.ShouldEqual, registry.Success)
	test.That(t, fake.initX, test.ShouldEqual, 5.0)
}

func TestAttitudeFanOut(t *testing.T) {
	_, fake, sensor := setupGPS(t)
	fake.attitude = vexapi.GPSAttitude{PositionX: 1, PositionY: 2, Pitch: 3, Roll: 4, Yaw: 5}

	test.That(t, sensor.Position(), test.ShouldResemble, Position{X: 1, Y: 2})
	test.That(t, sensor.Orientation(), test.ShouldResemble, Orientation{Roll: 4, Pitch: 3, Yaw: 5})
	test.That(t, sensor.Status(), test.ShouldResemble, Status{X: 1, Y: 2, Pitch: 3, Roll: 4, Yaw: 5})

	// each decomposed getter performs its own device read
	reads := fake.attitudeReads
	test.That(t, sensor.PositionX(), test.ShouldEqual, 1.0)
	test.That(t, sensor.PositionY(), test.ShouldEqual, 2.0)
	test.That(t, sensor.Pitch(), test.ShouldEqual, 3.0)
	test.That(t, sensor.Roll(), test.ShouldEqual, 4.0)
	test.That(t, sensor.Yaw(), test.ShouldEqual, 5.0)
	test.That(t, fake.attitudeReads, test.ShouldEqual, reads+5)
}

func TestRawSamples(t *testing.T) {
	_, fake, sensor := setupGPS(t)
	fake.gyro = vexapi.RawXYZ{X: 0.1, Y: 0.2, Z: 0.3}
	fake.accel = vexapi.RawXYZ{X: -1, Y: -2, Z: -3}

	test.That(t, sensor.GyroRate(), test.ShouldResemble, r3.Vector{X: 0.1, Y: 0.2, Z: 0.3})
	test.That(t, sensor.GyroRateX(), test.ShouldEqual, 0.1)
	test.That(t, sensor.GyroRateY(), test.ShouldEqual, 0.2)
	test.That(t, sensor.GyroRateZ(), test.ShouldEqual, 0.3)
	test.That(t, sensor.Accel(), test.ShouldResemble, r3.Vector{X: -1, Y: -2, Z: -3})
	test.That(t, sensor.AccelX(), test.ShouldEqual, -1.0)
	test.That(t, sensor.AccelY(), test.ShouldEqual, -2.0)
	test.That(t, sensor.AccelZ(), test.ShouldEqual, -3.0)
}

func TestHeading(t *testing.T) {
	_, _, sensor := setupGPS(t)
	test.That(t, sensor.Heading(), test.ShouldEqual, 90.0)
	test.That(t, sensor.RawHeading(), test.ShouldEqual, 92.5)
}

func TestSentinelsOnBadPort(t *testing.T) {
	reg := registry.New()
	logger := golog.NewTestLogger(t)

	for _, port := range []int{-3, 0, registry.NumPorts + 1, 99} {
		sensor := New(reg, port, logger)
		test.That(t, sensor.SetDataRate(10), test.ShouldEqual, registry.ErrInt32)
		test.That(t, sensor.Error(), test.ShouldEqual, registry.ErrFloat)
		test.That(t, sensor.Position(), test.ShouldResemble, errPosition())
		test.That(t, sensor.Orientation(), test.ShouldResemble, errOrientation())
		test.That(t, sensor.Status(), test.ShouldResemble, errStatus())
		test.That(t, sensor.GyroRate(), test.ShouldResemble, errVector())
	}
}

func TestSentinelsOnWrongDeviceType(t *testing.T) {
	reg := registry.New()
	fake := &fakeGPS{}
	test.That(t, reg.Register(0, registry.TypeIMU, fake), test.ShouldBeNil)
	sensor := New(reg, 1, golog.NewTestLogger(t))

	test.That(t, sensor.Position(), test.ShouldResemble, errPosition())
	test.That(t, sensor.PositionX(), test.ShouldEqual, registry.ErrFloat)
	test.That(t, sensor.SetOffset(1, 2), test.ShouldEqual, registry.ErrInt32)
	// the vendor handle was never touched
	test.That(t, fake.attitudeReads, test.ShouldEqual, 0)
	test.That(t, fake.originX, test.ShouldEqual, 0.0)
}

func TestPortUnclaimedAfterAccessors(t *testing.T) {
	reg, _, sensor := setupGPS(t)

	sensor.Position()
	sensor.SetDataRate(5)
	New(reg, 5, golog.NewTestLogger(t)).Position() // failure path on empty port

	_, err := reg.Claim(0, registry.TypeGPS)
	test.That(t, err, test.ShouldBeNil)
	reg.Release(0)
	_, err = reg.Lookup(4)
	test.That(t, err, test.ShouldNotBeNil)
}
