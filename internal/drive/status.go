package drive

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// ioctlDriveStatus is the Linux ioctl number for CDROM_DRIVE_STATUS.
const ioctlDriveStatus = 0x5326

// Status represents the result of a CDROM_DRIVE_STATUS ioctl call.
type Status int

const (
	StatusNoInfo   Status = 0
	StatusNoDisc   Status = 1
	StatusTrayOpen Status = 2
	StatusNotReady Status = 3
	StatusDiscOK   Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusNoInfo:
		return "no_info"
	case StatusNoDisc:
		return "no_disc"
	case StatusTrayOpen:
		return "tray_open"
	case StatusNotReady:
		return "not_ready"
	case StatusDiscOK:
		return "disc_ok"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// CheckStatus queries the drive state using the CDROM_DRIVE_STATUS ioctl.
func CheckStatus(device string) (Status, error) {
	device = strings.TrimSpace(device)
	if device == "" {
		return StatusNoInfo, fmt.Errorf("empty device path")
	}

	fd, err := unix.Open(device, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return StatusNoInfo, fmt.Errorf("open %s: %w", device, err)
	}
	defer unix.Close(fd) //nolint:errcheck

	ret, err := unix.IoctlRetInt(fd, ioctlDriveStatus)
	if err != nil {
		return StatusNoInfo, fmt.Errorf("ioctl CDROM_DRIVE_STATUS on %s: %w", device, err)
	}
	return Status(ret), nil
}
