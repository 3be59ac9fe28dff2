// cmd/asicreg/main_test.go
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mapFile = filepath.Join("..", "..", "internal", "regtree", "testdata", "map.yaml")

const testConfig = `
device: "mem:"
window_bytes: 4194304
register_map: %q
fuse:
  path: device_select.misc_regs.func_fuse
perf:
  pause_ms: 0
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func configFile(t *testing.T) string {
	t.Helper()
	return writeFile(t, "asicreg.yaml", fmt.Sprintf(testConfig, mapFile))
}

func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	t.Setenv(DeviceEnv, "")
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestRun_NoCommandPrintsUsage(t *testing.T) {
	_, stderr, code := runCLI(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "usage: asicreg")
}

func TestRun_UnknownCommand(t *testing.T) {
	_, stderr, code := runCLI(t, "--config", configFile(t), "frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `unknown command "frobnicate"`)
}

func TestRun_NeedsDevice(t *testing.T) {
	_, stderr, code := runCLI(t, "--map", mapFile, "reg", "read", "0x0")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no device")
}

func TestRun_DeviceFromEnvironment(t *testing.T) {
	var stdout, stderr bytes.Buffer
	t.Setenv(DeviceEnv, "mem:")
	code := run(context.Background(), []string{"reg", "read", "0x10"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "0\n\n", stdout.String())
}

func TestRun_BadConfig(t *testing.T) {
	p := writeFile(t, "bad.yaml", "window_bytes: 3\n")
	_, stderr, code := runCLI(t, "--config", p, "fuse")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "config validation failed")
}

// ---- reg ----

func TestRegRead_NamedRegisterPrintsOffsets(t *testing.T) {
	out, stderr, code := runCLI(t, "-c", configFile(t), "reg", "read", "device_select.pcie_bar01_regs.scratch_reg")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "80: 0\n84: 0\n88: 0\n8c: 0\n\n", out)
}

func TestRegRead_ExplicitCount(t *testing.T) {
	out, stderr, code := runCLI(t, "-c", configFile(t), "reg", "read", "0x80", "2")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "80: 0\n84: 0\n\n", out)
}

func TestRegRead_Rejects(t *testing.T) {
	cfg := configFile(t)

	_, stderr, code := runCLI(t, "-c", cfg, "reg", "read", "no.such.reg")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "bad register/offset")

	_, stderr, code = runCLI(t, "-c", cfg, "reg", "read", "0x81")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unaligned")

	_, stderr, code = runCLI(t, "-c", cfg, "reg", "read", "0x80", "zero")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid count")
}

func TestRegWrite_NeedsValue(t *testing.T) {
	_, stderr, code := runCLI(t, "-c", configFile(t), "reg", "write", "0x80")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "usage: reg write")
}

func TestRegList_HidesPrivateChildren(t *testing.T) {
	out, stderr, code := runCLI(t, "--map", mapFile, "reg", "list", "device_select.pcie_bar01_regs")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "scratch_reg\n", out)

	out, _, code = runCLI(t, "--map", mapFile, "reg", "list")
	require.Equal(t, 0, code)
	assert.Equal(t, "device_select\neth100g_regs\npipes\n", out)
}

func TestRegList_NoMap(t *testing.T) {
	_, stderr, code := runCLI(t, "reg", "list")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no register map available")
}

func TestRegSearch_Truncates(t *testing.T) {
	out, stderr, code := runCLI(t, "--map", mapFile, "reg", "search", "-m", "1", "scratch")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "device_select.pcie_bar01_regs.scratch_reg.0\n...\n10 matches found\n", out)
}

func TestRegSearch_NoMatches(t *testing.T) {
	_, stderr, code := runCLI(t, "--map", mapFile, "reg", "search", "nothing_like_this")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not found")
}

func TestRegPerf_SkipsUnmappedBuses(t *testing.T) {
	cfg := writeFile(t, "perf.yaml", fmt.Sprintf(testConfig, mapFile)+`
  buses:
    - name: host
      path: device_select.pcie_bar01_regs.scratch_reg.0
    - name: cbus
      path: device_select.lfltr.0.ctrl.scratch.0
    - name: mbus
      path: eth100g_regs.eth100g_reg.scratch.0
`)
	out, stderr, code := runCLI(t, "-c", cfg, "reg", "perf", "-n", "3")
	require.Equal(t, 0, code, stderr)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "ns/read")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[1]), "host"))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[2]), "mbus"))
	assert.NotContains(t, out, "cbus")
}

func TestRegPerf_NothingResolves(t *testing.T) {
	_, stderr, code := runCLI(t, "--device", "mem:", "reg", "perf", "-n", "1")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no bus register resolves")
}

// ---- dr ----

func TestDrList_NoDeviceNeeded(t *testing.T) {
	out, stderr, code := runCLI(t, "dr", "list")
	require.Equal(t, 0, code, stderr)

	lines := strings.Split(out, "\n")
	assert.Equal(t, fmt.Sprintf("%-21s %-6s", "NAME", "OFFSET"), lines[0])
	assert.Contains(t, lines, fmt.Sprintf("%-21s 0x%06x", "fm_pkt_0", 0x300400))
	assert.Len(t, lines, 56+2)
}

func TestDrShow(t *testing.T) {
	out, stderr, code := runCLI(t, "-c", configFile(t), "dr", "show", "fm_pkt_0")
	require.Equal(t, 0, code, stderr)
	assert.True(t, strings.HasPrefix(out, "ctrl: 00000000\nbase_addr_low: 00000000\n"))
	assert.True(t, strings.HasSuffix(out, "status: 00000000\n"))
	assert.Equal(t, 11, strings.Count(out, "\n"))

	_, stderr, code = runCLI(t, "-c", configFile(t), "dr", "show", "nope")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no such DR")
}

func TestDrDump_ZeroRingsAreConsistent(t *testing.T) {
	out, stderr, code := runCLI(t, "-c", configFile(t), "dr", "dump")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "NAME")
	assert.NotContains(t, out, "doesn't match")
	assert.Equal(t, 57, strings.Count(out, "\n"))
}

// ---- fuse / mac / script ----

func TestFuse_PrintsLayoutAndWaferID(t *testing.T) {
	out, stderr, code := runCLI(t, "-c", configFile(t), "fuse")
	require.Equal(t, 0, code, stderr)
	assert.True(t, strings.HasPrefix(out, fmt.Sprintf("%-24s: 0x0\n", "device_id")))
	assert.Contains(t, out, fmt.Sprintf("%-24s: ", "wafer id"))
}

func TestMacStatus(t *testing.T) {
	cfg := configFile(t)

	out, stderr, code := runCLI(t, "-c", cfg, "mac", "status", "aux")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "sigok")

	_, stderr, code = runCLI(t, "-c", cfg, "mac", "status", "33")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "out of range")

	_, stderr, code = runCLI(t, "-c", cfg, "mac", "status", "eth")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid mac: eth")
}

func TestScript_SharesOneWindow(t *testing.T) {
	src := writeFile(t, "probe.star", `
write("device_select.pcie_bar01_regs.scratch_reg.1", 0x2a)
print(read(0x84))
print(fuse()["device_id"])
`)
	out, stderr, code := runCLI(t, "-c", configFile(t), "script", src)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "[42]\n0\n", out)
}

func TestMirror_NoUnits(t *testing.T) {
	_, stderr, code := runCLI(t, "-c", configFile(t), "mirror")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no units configured")
}
