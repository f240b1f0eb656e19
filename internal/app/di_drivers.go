package app

import (
	"context"
	"fmt"
	"log/slog"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"

	blobDriver "github.com/gnos-os/gnos/internal/driver/blob"
	modelDriver "github.com/gnos-os/gnos/internal/driver/model"
	sensorDriver "github.com/gnos-os/gnos/internal/driver/sensor"
	webDriver "github.com/gnos-os/gnos/internal/driver/web"
)

// defaultModels is the simulated model catalog mounted by the model driver.
var defaultModels = []string{"assistant-small", "assistant-large", "embedder"}

// registerDrivers mounts every enabled driver at its configured prefix. A
// driver that is disabled in configuration is simply absent from the mount
// table; resolving its prefix yields not found.
func (c *Container) registerDrivers() error {
	logger := c.Logger()
	mountTable := c.MountTable()

	if c.config.DriverModelEnabled {
		driver := modelDriver.NewDriver(defaultModels)
		if err := mountTable.Register(c.config.DriverModelPrefix, driver); err != nil {
			return fmt.Errorf("failed to mount model driver: %w", err)
		}
		logger.Info("driver mounted",
			slog.String("driver", driver.Name()),
			slog.String("prefix", c.config.DriverModelPrefix),
		)
	}

	if c.config.DriverBlobEnabled {
		bucket, err := blob.OpenBucket(context.Background(), c.config.DriverBlobBucketURL)
		if err != nil {
			return fmt.Errorf("failed to open bucket %q: %w", c.config.DriverBlobBucketURL, err)
		}
		driver := blobDriver.NewDriver(bucket)
		if err := mountTable.Register(c.config.DriverBlobPrefix, driver); err != nil {
			return fmt.Errorf("failed to mount blob driver: %w", err)
		}
		logger.Info("driver mounted",
			slog.String("driver", driver.Name()),
			slog.String("prefix", c.config.DriverBlobPrefix),
		)
	}

	if c.config.DriverWebEnabled {
		if c.config.DriverWebBaseURL == "" {
			return fmt.Errorf("web driver enabled but DRIVER_WEB_BASE_URL is not set")
		}
		driver := webDriver.NewDriver(c.config.DriverWebBaseURL, c.config.DriverWebTimeout)
		if err := mountTable.Register(c.config.DriverWebPrefix, driver); err != nil {
			return fmt.Errorf("failed to mount web driver: %w", err)
		}
		logger.Info("driver mounted",
			slog.String("driver", driver.Name()),
			slog.String("prefix", c.config.DriverWebPrefix),
		)
	}

	if c.config.DriverSensorEnabled {
		driver := sensorDriver.NewDriver(sensorDriver.DefaultSpecs())
		if err := mountTable.Register(c.config.DriverSensorPrefix, driver); err != nil {
			return fmt.Errorf("failed to mount sensor driver: %w", err)
		}
		logger.Info("driver mounted",
			slog.String("driver", driver.Name()),
			slog.String("prefix", c.config.DriverSensorPrefix),
		)
	}

	return nil
}
