// SPDX-License-Identifier: Unlicense OR MIT

//go:build !linux
// +build !linux

package evdev

// Device is unavailable on this platform.
type Device struct{}

// Open returns ErrUnsupported.
func Open(path string, grab bool) (*Device, error) {
	return nil, ErrUnsupported
}

func (d *Device) Read(p []byte) (int, error) {
	return 0, ErrUnsupported
}

func (d *Device) Close() error {
	return nil
}
