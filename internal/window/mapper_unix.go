// internal/window/mapper_unix.go

//go:build unix

package window

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// DeviceMapper maps the register BAR exposed by the ASIC's device node.
type DeviceMapper struct{}

// Map opens path exclusively and maps length bytes shared, read/write.
// The descriptor is closed once the mapping exists.
func (DeviceMapper) Map(path string, length int) ([]byte, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_EXCL, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open device: %v", err)
	}
	defer unix.Close(fd)

	mem, err := unix.Mmap(fd, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("failed to map device: %v", err)
	}
	return mem, nil
}

// Unmap releases a mapping returned by Map.
func (DeviceMapper) Unmap(mem []byte) error {
	return unix.Munmap(mem)
}
