// Package sensor implements the device backend. Each sensor appears as a
// read-only device node whose content is a JSON sample taken at read time.
// The hardware is simulated; values follow a smooth deterministic curve so
// repeated reads look like a live feed.
package sensor

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	apperrors "github.com/gnos-os/gnos/internal/errors"
	"github.com/gnos-os/gnos/internal/vfs/domain"
)

// Spec describes one simulated sensor channel.
type Spec struct {
	Name     string
	Unit     string
	Baseline float64
	Swing    float64
}

// Sample is the JSON document returned by reading a sensor node.
type Sample struct {
	Sensor    string  `json:"sensor"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Timestamp string  `json:"timestamp"`
}

// Driver exposes a fixed set of sensor channels under the mount root.
type Driver struct {
	sensors map[string]Spec
	names   []string
	now     func() time.Time
}

// Name identifies the driver variant.
func (d *Driver) Name() string {
	return "sensor"
}

// Read samples the sensor at remainder and returns the JSON document.
func (d *Driver) Read(ctx context.Context, remainder string) ([]byte, error) {
	spec, ok := d.sensors[remainder]
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "unknown sensor")
	}

	now := d.now().UTC()
	sample := Sample{
		Sensor:    spec.Name,
		Value:     d.valueAt(spec, now),
		Unit:      spec.Unit,
		Timestamp: now.Format(time.RFC3339),
	}

	data, err := json.Marshal(sample)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode sample")
	}
	return append(data, '\n'), nil
}

// Write is rejected; sensors are read-only devices.
func (d *Driver) Write(ctx context.Context, remainder string, data []byte) (int, error) {
	return 0, apperrors.Wrap(domain.ErrDriverNotSupported, "sensors are read-only")
}

// ReadDir lists the sensor channels at the mount root.
func (d *Driver) ReadDir(ctx context.Context, remainder string) ([]domain.DirEntry, error) {
	if remainder != "" {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "sensors have no subdirectories")
	}
	entries := make([]domain.DirEntry, 0, len(d.names))
	for _, name := range d.names {
		entries = append(entries, domain.DirEntry{Name: name, Kind: domain.DeviceNode})
	}
	return entries, nil
}

// GetAttr resolves the root or a sensor device node.
func (d *Driver) GetAttr(ctx context.Context, remainder string) (*domain.VirtualNode, error) {
	if remainder == "" {
		return &domain.VirtualNode{Kind: domain.DirectoryNode, Mode: 0o555}, nil
	}
	if _, ok := d.sensors[remainder]; !ok {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "unknown sensor")
	}
	return &domain.VirtualNode{
		Kind:       domain.DeviceNode,
		Mode:       0o444,
		ModifiedAt: d.now().UTC(),
	}, nil
}

// Open validates the sensor; sessions carry no driver state.
func (d *Driver) Open(ctx context.Context, remainder string, mode domain.OpenMode) (domain.DriverState, error) {
	if mode.CanWrite() || mode&domain.OpenCreate != 0 {
		return nil, apperrors.Wrap(domain.ErrDriverNotSupported, "sensors are read-only")
	}
	if _, ok := d.sensors[remainder]; !ok {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "unknown sensor")
	}
	return nil, nil
}

// Release ends a session.
func (d *Driver) Release(ctx context.Context, state domain.DriverState) error {
	return nil
}

// valueAt derives a sample from the clock: a slow sine around the baseline,
// full cycle every ten minutes.
func (d *Driver) valueAt(spec Spec, now time.Time) float64 {
	phase := float64(now.Unix()%600) / 600 * 2 * math.Pi
	value := spec.Baseline + spec.Swing*math.Sin(phase)
	return math.Round(value*100) / 100
}

// DefaultSpecs returns the sensor catalog used when none is configured.
func DefaultSpecs() []Spec {
	return []Spec{
		{Name: "temperature", Unit: "celsius", Baseline: 21.5, Swing: 2.0},
		{Name: "humidity", Unit: "percent", Baseline: 45.0, Swing: 8.0},
		{Name: "pressure", Unit: "hpa", Baseline: 1013.2, Swing: 4.5},
	}
}

// NewDriver creates a sensor driver exposing the given channels.
func NewDriver(specs []Spec) *Driver {
	sensors := make(map[string]Spec, len(specs))
	names := make([]string, 0, len(specs))
	for _, spec := range specs {
		sensors[spec.Name] = spec
		names = append(names, spec.Name)
	}
	sort.Strings(names)
	return &Driver{
		sensors: sensors,
		names:   names,
		now:     time.Now,
	}
}

var _ domain.Driver = (*Driver)(nil)
