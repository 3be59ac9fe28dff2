// internal/writer/device_status_writer_test.go
package writer

import (
	"errors"
	"testing"

	"github.com/tamzrod/asicreg/internal/status"
)

func statusPlan() Plan {
	return Plan{
		Status: &StatusPlan{
			Key:        "status-endpoint",
			Endpoint:   "status-endpoint",
			UnitID:     1,
			BaseSlot:   0,
			DeviceName: "DEV-01",
		},
	}
}

func TestDeviceNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := statusPlan()

	sw, enabled := NewDeviceStatusWriter(plan, map[string]endpointClient{"status-endpoint": cli})
	if !enabled {
		t.Fatalf("status writer should be enabled")
	}

	// ---- first write: FULL ASSERT ----
	first := status.Snapshot{Health: status.HealthOK, Polls: 1}

	if err := sw.WriteStatus(first); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}

	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected full block write (%d regs), got %d", status.SlotsPerDevice, len(cli.lastRegs))
	}

	expectedNameRegs := status.EncodeName(plan.Status.DeviceName)
	for i := 0; i < status.SlotDeviceNameSlots; i++ {
		slot := status.SlotDeviceNameStart + i
		if cli.lastRegs[slot] != expectedNameRegs[i] {
			t.Fatalf("device name slot %d mismatch: got=%d want=%d", slot, cli.lastRegs[slot], expectedNameRegs[i])
		}
	}

	// ---- second write: INCREMENTAL ONLY ----
	second := status.Snapshot{Health: status.HealthError, LastErrorCode: 7, SecondsInError: 1, Polls: 1}

	if err := sw.WriteStatus(second); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}

	if len(cli.lastRegs) == status.SlotsPerDevice {
		t.Fatalf("device name should not be rewritten on incremental update")
	}
	// health, error and seconds sit in adjacent slots: one run
	if len(cli.writes) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(cli.writes))
	}
	if cli.lastRegsAddr != status.SlotHealthCode || len(cli.lastRegs) != 3 {
		t.Fatalf("unexpected run: addr=%d regs=%v", cli.lastRegsAddr, cli.lastRegs)
	}
}

func TestUnchangedSnapshotWritesNothing(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw, _ := NewDeviceStatusWriter(statusPlan(), map[string]endpointClient{"status-endpoint": cli})

	s := status.Snapshot{Health: status.HealthOK, Polls: 9}
	_ = sw.WriteStatus(s)
	if err := sw.WriteStatus(s); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if len(cli.writes) != 1 {
		t.Fatalf("expected only the full write, got %d", len(cli.writes))
	}
}

func TestChangedRuns(t *testing.T) {
	prev := []uint16{0, 0, 0, 0, 0, 0}
	next := []uint16{1, 1, 0, 0, 2, 0}

	got := changed(prev, next)
	if len(got) != 2 || got[0] != (span{0, 2}) || got[1] != (span{4, 5}) {
		t.Fatalf("runs = %v", got)
	}
}

func TestSecondsInErrorResetOnRecovery(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := statusPlan()
	plan.Status.BaseSlot = 2

	sw, _ := NewDeviceStatusWriter(plan, map[string]endpointClient{"status-endpoint": cli})

	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: 2, SecondsInError: 3}); err != nil {
		t.Fatalf("error snapshot write failed: %v", err)
	}
	if cli.lastRegsAddr != 2*status.SlotsPerDevice {
		t.Fatalf("full block at %d, want %d", cli.lastRegsAddr, 2*status.SlotsPerDevice)
	}

	// health and error code stay, only seconds move back to zero
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: 2}); err != nil {
		t.Fatalf("recovery snapshot write failed: %v", err)
	}

	expectedAddr := plan.Status.BaseSlot*status.SlotsPerDevice + status.SlotSecondsInError
	if cli.lastRegsAddr != expectedAddr {
		t.Fatalf("unexpected write addr: got=%d want=%d", cli.lastRegsAddr, expectedAddr)
	}
	if len(cli.lastRegs) != 1 || cli.lastRegs[0] != 0 {
		t.Fatalf("seconds_in_error not reset: %v", cli.lastRegs)
	}
}

func TestPollCounterWrittenAsTwoRegisters(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw, _ := NewDeviceStatusWriter(statusPlan(), map[string]endpointClient{"status-endpoint": cli})

	_ = sw.WriteStatus(status.Snapshot{Health: status.HealthOK, Polls: 1})
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK, Polls: 0x10002}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if cli.lastRegsAddr != status.SlotPollsHi || len(cli.lastRegs) != 2 {
		t.Fatalf("unexpected write: addr=%d regs=%v", cli.lastRegsAddr, cli.lastRegs)
	}
	if cli.lastRegs[0] != 1 || cli.lastRegs[1] != 2 {
		t.Fatalf("unexpected counter: %v", cli.lastRegs)
	}
}

func TestFailureForcesFullReassert(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw, _ := NewDeviceStatusWriter(statusPlan(), map[string]endpointClient{"status-endpoint": cli})

	_ = sw.WriteStatus(status.Snapshot{Health: status.HealthOK})

	cli.fail = errors.New("down")
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError}); err == nil {
		t.Fatalf("expected error")
	}

	cli.fail = nil
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected full block after failure, got %d regs", len(cli.lastRegs))
	}
}

func TestSlotPastAddressSpaceRejected(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := statusPlan()
	plan.Status.BaseSlot = 3277 // 3277*20 wraps to 4 in 16 bits

	sw, _ := NewDeviceStatusWriter(plan, map[string]endpointClient{"status-endpoint": cli})
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK}); err == nil {
		t.Fatalf("expected address space error")
	}
	if len(cli.writes) != 0 {
		t.Fatalf("nothing may be written, got %+v", cli.writes)
	}
}

func TestStatusDisabled(t *testing.T) {
	if _, enabled := NewDeviceStatusWriter(Plan{}, nil); enabled {
		t.Fatalf("status writer should be disabled")
	}

	sw, _ := NewDeviceStatusWriter(statusPlan(), map[string]endpointClient{})
	if err := sw.WriteStatus(status.Snapshot{}); err == nil {
		t.Fatalf("expected missing client error")
	}
}
