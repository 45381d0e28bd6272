// SPDX-License-Identifier: Unlicense OR MIT

package evdev

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// _IOW('E', 0x90, int) from linux/input.h.
const eviocgrab = 0x40044590

// Device is an open event device node such as /dev/input/event3.
// Closing a Device unblocks a pending Read.
type Device struct {
	f       *os.File
	fd      int
	grabbed bool
}

// Open opens the event device at path for reading. If grab is set,
// the device is grabbed so that no other client receives its events.
func Open(path string, grab bool) (*Device, error) {
	// A non-blocking descriptor lets os.File use the runtime poller.
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("evdev: open %s: %w", path, err)
	}
	d := &Device{fd: fd}
	if grab {
		if err := unix.IoctlSetInt(fd, eviocgrab, 1); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("evdev: grab %s: %w", path, err)
		}
		d.grabbed = true
	}
	d.f = os.NewFile(uintptr(fd), path)
	return d, nil
}

// Read implements io.Reader.
func (d *Device) Read(p []byte) (int, error) {
	return d.f.Read(p)
}

// Close releases the grab, if any, and closes the device.
func (d *Device) Close() error {
	if d.grabbed {
		unix.IoctlSetInt(d.fd, eviocgrab, 0)
		d.grabbed = false
	}
	return d.f.Close()
}
