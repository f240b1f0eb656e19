package commands

import (
	"fmt"
	"io"

	"github.com/gnos-os/gnos/internal/app"
	"github.com/gnos-os/gnos/internal/config"
	"github.com/gnos-os/gnos/internal/vfs/domain"
)

// RunListMounts mounts the configured drivers and prints the resulting mount
// table, showing which backend serves which prefix.
func RunListMounts(io IOTuple, format string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	// Building the dispatcher registers every enabled driver.
	if _, err := container.Dispatcher(); err != nil {
		return fmt.Errorf("failed to initialize drivers: %w", err)
	}

	mounts := container.MountTable().List()

	if format == "json" {
		return outputJSON(io.Writer, map[string]any{"mounts": mounts})
	}

	outputMountsText(io.Writer, mounts)
	return nil
}

func outputMountsText(writer io.Writer, mounts []domain.MountInfo) {
	_, _ = fmt.Fprintf(writer, "Mount Table\n")
	_, _ = fmt.Fprintf(writer, "===========\n\n")

	if len(mounts) == 0 {
		_, _ = fmt.Fprintf(writer, "No drivers mounted\n")
		return
	}

	for _, mount := range mounts {
		_, _ = fmt.Fprintf(writer, "%-12s %s\n", mount.Prefix, mount.DriverName)
	}
}
