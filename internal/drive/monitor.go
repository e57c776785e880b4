package drive

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pilebones/go-udev/netlink"

	"discforge/internal/logging"
)

const pollInterval = 2 * time.Second

// Monitor waits for writable media in one optical drive. It listens for
// udev netlink insertion events and falls back to polling the drive status
// ioctl when the netlink socket is unavailable.
type Monitor struct {
	device string
	logger *slog.Logger
}

// NewMonitor returns nil when no device is configured.
func NewMonitor(device string, logger *slog.Logger) *Monitor {
	device = strings.TrimSpace(device)
	if device == "" {
		return nil
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Monitor{device: device, logger: logging.NewComponentLogger(logger, "drive")}
}

// WaitForDisc blocks until the drive reports loaded media, the timeout
// elapses or the context is cancelled. A timeout of zero or less waits
// indefinitely.
func (m *Monitor) WaitForDisc(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// Media may already be loaded.
	if status, err := CheckStatus(m.device); err == nil && status == StatusDiscOK {
		return nil
	} else if err == nil {
		m.logger.Info("waiting for disc", "device", m.device, "status", status.String())
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		m.logger.Warn("netlink socket unavailable, polling drive status", "error", err)
		return m.pollForDisc(ctx)
	}
	defer func() { _ = conn.Close() }()

	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	quit := conn.Monitor(queue, errs, discInsertionMatcher())
	defer close(quit)

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("no disc in %s: %w", m.device, ctx.Err())
		case uevent := <-queue:
			if deviceName(uevent) != m.device {
				continue
			}
			m.logger.Info("disc media detected", "device", m.device, "action", string(uevent.Action))
			return m.awaitReady(ctx)
		case err := <-errs:
			m.logger.Warn("netlink monitor error", "error", err)
		}
	}
}

// pollForDisc is the fallback when netlink is unreachable.
func (m *Monitor) pollForDisc(ctx context.Context) error {
	for {
		status, err := CheckStatus(m.device)
		if err == nil && status == StatusDiscOK {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("no disc in %s: %w", m.device, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

// awaitReady polls the inserted disc until the drive finishes spinning up.
func (m *Monitor) awaitReady(ctx context.Context) error {
	for {
		status, err := CheckStatus(m.device)
		if err != nil {
			return err
		}
		if status == StatusDiscOK {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("drive %s not ready (last status %s): %w", m.device, status, ctx.Err())
		case <-time.After(time.Second):
		}
	}
}

// discInsertionMatcher selects udev events for loaded optical media:
// SUBSYSTEM=block, ID_CDROM=1, ID_CDROM_MEDIA=1, ACTION=change|add.
func discInsertionMatcher() netlink.Matcher {
	action := "change|add"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM":      "block",
			"ID_CDROM":       "1",
			"ID_CDROM_MEDIA": "1",
		},
	})
	return rules
}

// deviceName extracts the device path from a uevent, falling back to the
// last DEVPATH component when DEVNAME is absent.
func deviceName(uevent netlink.UEvent) string {
	if devname := uevent.Env["DEVNAME"]; devname != "" {
		return devname
	}
	devpath := uevent.Env["DEVPATH"]
	if devpath == "" {
		return ""
	}
	parts := strings.Split(devpath, "/")
	return "/dev/" + parts[len(parts)-1]
}
