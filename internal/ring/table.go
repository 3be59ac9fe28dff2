// internal/ring/table.go
package ring

import "sort"

// Entry is one named descriptor ring and its control block offset.
type Entry struct {
	Name   string
	Offset uint32
}

// defaultTable holds the Tofino descriptor ring offsets.
// The generated register metadata does not describe every ring, so these
// are carried as data. Replace them via configuration when the map does.
var defaultTable = map[string]uint32{
	"fm_pkt_0":             0x300400,
	"fm_pkt_1":             0x300434,
	"fm_pkt_2":             0x300468,
	"fm_pkt_3":             0x30049c,
	"fm_pkt_4":             0x3004d0,
	"fm_pkt_5":             0x300504,
	"fm_pkt_6":             0x300538,
	"fm_pkt_7":             0x30056c,
	"fm_lrt":               0x200900,
	"fm_idle":              0x200980,
	"fm_learn":             0x280600,
	"fm_diag":              0x200a00,
	"tx_pipe_inst_list_0":  0x200600,
	"tx_pipe_inst_list_1":  0x200634,
	"tx_pipe_inst_list_2":  0x200668,
	"tx_pipe_inst_list_3":  0x20069c,
	"tx_pipe_write_block":  0x200800,
	"tx_pipe_read_block":   0x200880,
	"tx_que_write_list":    0x280400,
	"tx_pkt_0":             0x300100,
	"tx_pkt_1":             0x300134,
	"tx_pkt_2":             0x300168,
	"tx_pkt_3":             0x30019c,
	"tx_mac_stat":          0x180200,
	"rx_pkt_0":             0x300600,
	"rx_pkt_1":             0x300634,
	"rx_pkt_2":             0x300668,
	"rx_pkt_3":             0x30069c,
	"rx_pkt_4":             0x3006d0,
	"rx_pkt_5":             0x300704,
	"rx_pkt_6":             0x300738,
	"rx_pkt_7":             0x30076c,
	"rx_lrt":               0x200940,
	"rx_idle":              0x2009c0,
	"rx_learn":             0x280640,
	"rx_diag":              0x200a40,
	"cmp_pipe_inst_list_0": 0x200700,
	"cmp_pipe_inst_list_1": 0x200734,
	"cmp_pipe_inst_list_2": 0x200768,
	"cmp_pipe_inst_list_3": 0x20079c,
	"cmp_que_write_list":   0x280440,
	"cmp_pipe_write_blk":   0x200840,
	"cmp_pipe_read_blk":    0x2008c0,
	"cmp_mac_stat":         0x180240,
	"cmp_tx_pkt_0":         0x300200,
	"cmp_tx_pkt_1":         0x300234,
	"cmp_tx_pkt_2":         0x300268,
	"cmp_tx_pkt_3":         0x30029c,
	"tx_mac_write_block":   0x180280,
	"tx_que_write_list_1":  0x280480,
	"tx_que_read_block_0":  0x280500,
	"tx_que_read_block_1":  0x280580,
	"cmp_mac_write_block":  0x1802c0,
	"cmp_que_write_list_1": 0x2804c0,
	"cmp_que_read_block_0": 0x280540,
	"cmp_que_read_block_1": 0x2805c0,
}

// DefaultTable returns a copy of the built-in ring offsets.
func DefaultTable() map[string]uint32 {
	out := make(map[string]uint32, len(defaultTable))
	for k, v := range defaultTable {
		out[k] = v
	}
	return out
}

// sorted orders a name->offset table lexicographically by name.
func sorted(table map[string]uint32) []Entry {
	out := make([]Entry, 0, len(table))
	for name, off := range table {
		out = append(out, Entry{Name: name, Offset: off})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
