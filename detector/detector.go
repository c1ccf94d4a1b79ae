// Package detector keeps the port registry in step with the hardware.
//
// The vendor runtime exposes a per-port snapshot of what is physically
// plugged in; the detector polls that snapshot and registers or
// deregisters descriptors as devices come and go. It is the only caller
// of registry.Register in normal operation; accessors never mutate the
// table.
package detector

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/smartport/registry"
	"go.viam.com/smartport/vexapi"
)

// A Bus is the vendor-side view of hardware presence.
type Bus interface {
	// DeviceTypes snapshots what is plugged into every port in one call.
	DeviceTypes() [registry.NumPorts]registry.DeviceType
	// Device returns the vendor handle for the given port.
	Device(port int) vexapi.Device
}

// A Detector polls a Bus and mirrors it into a Registry.
type Detector struct {
	reg      *registry.Registry
	bus      Bus
	logger   golog.Logger
	clock    clock.Clock
	interval time.Duration

	mu   sync.Mutex
	seen [registry.NumPorts]registry.DeviceType

	cancel  func()
	workers sync.WaitGroup
}

// Option configures a Detector.
type Option func(*Detector)

// WithClock swaps the wall clock driving the poll ticker, for tests.
func WithClock(c clock.Clock) Option {
	return func(d *Detector) {
		d.clock = c
	}
}

// New returns a detector that is not yet scanning; call Start or
// ScanOnce.
func New(reg *registry.Registry, bus Bus, cfg *Config, logger golog.Logger, opts ...Option) *Detector {
	d := &Detector{
		reg:      reg,
		bus:      bus,
		logger:   logger,
		clock:    clock.New(),
		interval: cfg.pollInterval(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the background scan worker. It scans once immediately
// so devices present at boot are registered before Start returns.
func (d *Detector) Start(ctx context.Context) {
	if err := d.ScanOnce(); err != nil {
		d.logger.Errorw("initial device scan failed", "error", err)
	}
	ctx, d.cancel = context.WithCancel(ctx)
	d.workers.Add(1)
	goutils.PanicCapturingGo(func() {
		defer d.workers.Done()
		ticker := d.clock.Ticker(d.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := d.ScanOnce(); err != nil {
					d.logger.Errorw("device scan failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	})
}

// ScanOnce performs a single presence scan, registering newly plugged
// devices and deregistering removed ones.
func (d *Detector) ScanOnce() error {
	types := d.bus.DeviceTypes()

	d.mu.Lock()
	defer d.mu.Unlock()
	var errs error
	for port, typ := range types {
		if typ == d.seen[port] {
			continue
		}
		if typ == registry.TypeNone {
			d.logger.Infow("device unplugged",
				"port", port+1, "type", d.seen[port].String())
			errs = multierr.Combine(errs, d.reg.Deregister(port))
		} else {
			d.logger.Infow("device detected",
				"port", port+1, "type", typ.String())
			errs = multierr.Combine(errs, d.reg.Register(port, typ, d.bus.Device(port)))
		}
		d.seen[port] = typ
	}
	return errs
}

// Close stops the scan worker and clears every port the detector had
// registered.
func (d *Detector) Close(ctx context.Context) error {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workers.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	var errs error
	for port, typ := range d.seen {
		if typ == registry.TypeNone {
			continue
		}
		errs = multierr.Combine(errs, d.reg.Deregister(port))
		d.seen[port] = registry.TypeNone
	}
	return errs
}
