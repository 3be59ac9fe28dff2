// internal/window/mapper_other.go

//go:build !unix

package window

import "errors"

// DeviceMapper is unavailable off unix platforms.
type DeviceMapper struct{}

func (DeviceMapper) Map(path string, length int) ([]byte, error) {
	return nil, errors.New("device mapping not supported on this platform")
}
