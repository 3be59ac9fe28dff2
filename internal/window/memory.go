// internal/window/memory.go
package window

import "strings"

// MemoryPrefix selects an in-process window instead of a device node.
// Useful for dry runs and scripts without hardware.
const MemoryPrefix = "mem:"

// MemoryMapper hands out zeroed heap windows.
type MemoryMapper struct{}

func (MemoryMapper) Map(path string, length int) ([]byte, error) {
	return NewMemory(length).mem, nil
}

// MapperFor picks the mapper for a device path.
func MapperFor(path string) Mapper {
	if strings.HasPrefix(path, MemoryPrefix) {
		return MemoryMapper{}
	}
	return DeviceMapper{}
}
