// internal/writer/types.go
package writer

import "github.com/tamzrod/asicreg/internal/poller"

// TargetEndpoint is one holding-register destination.
type TargetEndpoint struct {
	Key      string // client map key (transport + endpoint)
	Endpoint string
	UnitID   uint8
	Address  uint16 // first holding register
}

// StatusPlan places the unit's device status block.
type StatusPlan struct {
	Key        string
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16
	DeviceName string
}

// Plan is the fully-built write plan for one unit.
type Plan struct {
	UnitID  string
	Targets []TargetEndpoint
	Status  *StatusPlan // nil => status disabled
}

// Writer writes poll snapshots into targets.
type Writer interface {
	Write(res poller.Cycle) error
}
