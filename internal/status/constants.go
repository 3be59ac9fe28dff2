// internal/status/constants.go
package status

// Status block layout. Consumers decode it positionally, so none of this
// is configurable.
//
//	slot  0      health
//	slot  1      last error code
//	slot  2      seconds in error (saturating)
//	slot  3-4    successful polls, high word first
//	slot  5-10   reserved, written as zero
//	slot  11-18  device name, 2 ASCII bytes per slot
//	slot  19     reserved
const (
	SlotsPerDevice = 20

	SlotHealthCode     = 0
	SlotLastErrorCode  = 1
	SlotSecondsInError = 2
	SlotPollsHi        = 3
	SlotPollsLo        = 4

	SlotReservedStart = 5
	SlotReservedEnd   = 10

	SlotDeviceNameStart = 11
	SlotDeviceNameSlots = 8
	SlotDeviceNameEnd   = SlotDeviceNameStart + SlotDeviceNameSlots - 1

	DeviceNameMaxChars = 2 * SlotDeviceNameSlots
)

// Health codes.
const (
	HealthUnknown uint16 = 0 // no poll finished yet
	HealthOK      uint16 = 1
	HealthError   uint16 = 2
)

// Error codes carried in SlotLastErrorCode.
const (
	ErrorNone       uint16 = 0
	ErrorGeneric    uint16 = 1
	ErrorBounds     uint16 = 2 // offset outside the window
	ErrorAlignment  uint16 = 3 // offset not 4-byte aligned
	ErrorIdentifier uint16 = 4 // register name did not resolve
	ErrorMapping    uint16 = 5 // device could not be mapped
)
