package detector

import (
	"context"
	"sync"
	"testing"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"go.viam.com/smartport/registry"
	"go.viam.com/smartport/vexapi"
)

type fakeBus struct {
	mu      sync.Mutex
	types   [registry.NumPorts]registry.DeviceType
	handles [registry.NumPorts]vexapi.Device
}

func (b *fakeBus) plug(port int, typ registry.DeviceType, handle vexapi.Device) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.types[port] = typ
	b.handles[port] = handle
}

func (b *fakeBus) unplug(port int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.types[port] = registry.TypeNone
	b.handles[port] = nil
}

func (b *fakeBus) DeviceTypes() [registry.NumPorts]registry.DeviceType {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.types
}

func (b *fakeBus) Device(port int) vexapi.Device {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handles[port]
}

type fakeHandle struct{ id int }

func TestScanOnce(t *testing.T) {
	reg := registry.New()
	bus := &fakeBus{}
	bus.plug(0, registry.TypeGPS, &fakeHandle{id: 1})
	bus.plug(4, registry.TypeIMU, &fakeHandle{id: 2})
	d := New(reg, bus, &Config{}, golog.NewTestLogger(t))

	test.That(t, d.ScanOnce(), test.ShouldBeNil)
	test.That(t, reg.TypeMatches(0, registry.TypeGPS), test.ShouldBeTrue)
	test.That(t, reg.TypeMatches(4, registry.TypeIMU), test.ShouldBeTrue)
	_, err := reg.Lookup(1)
	test.That(t, errors.Is(err, registry.ErrNoDevice), test.ShouldBeTrue)

	// swap the device on a port
	bus.plug(0, registry.TypeIMU, &fakeHandle{id: 3})
	test.That(t, d.ScanOnce(), test.ShouldBeNil)
	test.That(t, reg.TypeMatches(0, registry.TypeIMU), test.ShouldBeTrue)

	// unplug
	bus.unplug(4)
	test.That(t, d.ScanOnce(), test.ShouldBeNil)
	_, err = reg.Lookup(4)
	test.That(t, errors.Is(err, registry.ErrNoDevice), test.ShouldBeTrue)

	// steady state scans are no-ops
	test.That(t, d.ScanOnce(), test.ShouldBeNil)
	test.That(t, reg.TypeMatches(0, registry.TypeIMU), test.ShouldBeTrue)
}

func TestStartAndClose(t *testing.T) {
	reg := registry.New()
	bus := &fakeBus{}
	bus.plug(2, registry.TypeGPS, &fakeHandle{id: 1})
	d := New(reg, bus, &Config{PollIntervalMS: 1}, golog.NewTestLogger(t))

	d.Start(context.Background())
	// the boot-time device is visible before the first tick
	test.That(t, reg.TypeMatches(2, registry.TypeGPS), test.ShouldBeTrue)

	bus.plug(7, registry.TypeIMU, &fakeHandle{id: 2})
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, reg.TypeMatches(7, registry.TypeIMU), test.ShouldBeTrue)
	})

	bus.unplug(2)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, reg.TypeMatches(2, registry.TypeGPS), test.ShouldBeFalse)
	})

	test.That(t, d.Close(context.Background()), test.ShouldBeNil)
	// Close cleared the remaining port
	_, err := reg.Lookup(7)
	test.That(t, errors.Is(err, registry.ErrNoDevice), test.ShouldBeTrue)
}

func TestCloseWithoutStart(t *testing.T) {
	reg := registry.New()
	d := New(reg, &fakeBus{}, &Config{}, golog.NewTestLogger(t))
	test.That(t, d.Close(context.Background()), test.ShouldBeNil)
}

func TestConfig(t *testing.T) {
	cfg, err := ConfigFromAttributes(map[string]interface{}{"poll_interval_ms": 50})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.PollIntervalMS, test.ShouldEqual, 50)
	test.That(t, cfg.Validate("detector"), test.ShouldBeNil)
	test.That(t, cfg.pollInterval().Milliseconds(), test.ShouldEqual, 50)

	// weakly typed input, the way attribute maps arrive from JSON
	cfg, err = ConfigFromAttributes(map[string]interface{}{"poll_interval_ms": float64(10)})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.PollIntervalMS, test.ShouldEqual, 10)

	cfg, err = ConfigFromAttributes(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.pollInterval(), test.ShouldEqual, defaultPollInterval)

	_, err = ConfigFromAttributes(map[string]interface{}{"unknown_field": true})
	test.That(t, err, test.ShouldNotBeNil)

	cfg = &Config{PollIntervalMS: -5}
	test.That(t, cfg.Validate("detector"), test.ShouldNotBeNil)
}
