// internal/fuse/layout.go
package fuse

import (
	"fmt"

	"github.com/tamzrod/asicreg/internal/bitfield"
)

// Layout is the fuse bit map of one device generation.
type Layout struct {
	Generation string
	Fields     []bitfield.Field
}

func f(name string, start, end uint) bitfield.Field {
	return bitfield.Field{Name: name, Start: start, End: end}
}

// Tofino2 is the fuse map of the second-generation ASIC.
var Tofino2 = Layout{
	Generation: "tofino2",
	Fields: []bitfield.Field{
		f("device_id", 0, 15),
		f("version", 16, 17),
		f("freq_dis", 18, 18),
		f("freq_bps", 19, 20),
		f("freq_pps", 21, 22),
		f("pcie_dis", 23, 24),
		f("cpu_speed_dis", 25, 26),
		f("speed_dis", 27, 90),
		f("port_dis", 91, 130),
		f("pipe_dis", 131, 134),
		f("pipe0_mau_dis", 135, 155),
		f("pipe1_mau_dis", 156, 176),
		f("pipe2_mau_dis", 177, 197),
		f("pipe3_mau_dis", 198, 218),
		f("tm_mem_dis", 219, 250),
		f("bsync_dis", 251, 251),
		f("pgen_dis", 252, 252),
		f("resub_dis", 253, 253),
		f("voltage_scaling", 254, 265),
		f("rsvd_22", 266, 287),
		f("part_num", 288, 301),
		f("rev_num", 302, 309),
		f("pkg_id", 310, 311),
		f("silent_spin", 312, 313),
		f("chip_id", 314, 376),
		f("pmro_and_skew", 377, 388),
		f("wf_core_repair", 389, 389),
		f("core_repair", 390, 390),
		f("tile_repair", 391, 391),
		f("freq_bps_2", 392, 395),
		f("freq_pps_2", 396, 399),
		f("die_rotation", 400, 400),
		f("soft_pipe_dis", 401, 404),
	},
}

// Tofino1 is the fuse map of the first-generation ASIC.
// Sites with other silicon revisions override it through configuration.
var Tofino1 = Layout{
	Generation: "tofino1",
	Fields: []bitfield.Field{
		f("resub_dis", 0, 0),
		f("mau_tcam_reduction", 1, 1),
		f("mau_sram_reduction", 2, 2),
		f("pgen_dis", 3, 3),
		f("pipe_dis", 4, 7),
		f("mau_stage_dis", 8, 55),
		f("port_dis_lo", 56, 119),
		f("port_dis_hi", 120, 120),
		f("tm_mem_dis", 121, 156),
		f("speed_dis", 157, 158),
		f("cpu_speed_dis", 159, 160),
		f("pcie_dis", 161, 162),
		f("bsync_dis", 163, 163),
		f("freq_dis", 164, 165),
		f("freq_check_dis", 166, 166),
		f("version", 167, 168),
		f("part_num", 169, 182),
		f("rev_num", 183, 190),
		f("pkg_id", 191, 192),
		f("silent_spin", 193, 194),
		f("chip_id", 195, 257),
		f("pmro_and_skew", 258, 269),
		f("voltage_scaling", 270, 281),
	},
}

// LayoutFor returns the built-in layout for a generation name.
func LayoutFor(generation string) (Layout, error) {
	switch generation {
	case Tofino1.Generation:
		return Tofino1, nil
	case Tofino2.Generation, "":
		return Tofino2, nil
	}
	return Layout{}, fmt.Errorf("fuse: unknown generation %q", generation)
}

// Validate checks every field fits the fuse blob and a uint64.
func (l Layout) Validate() error {
	seen := make(map[string]struct{}, len(l.Fields))
	for _, fl := range l.Fields {
		if fl.Name == "" {
			return fmt.Errorf("fuse: %s: unnamed field", l.Generation)
		}
		if _, dup := seen[fl.Name]; dup {
			return fmt.Errorf("fuse: %s: duplicate field %s", l.Generation, fl.Name)
		}
		seen[fl.Name] = struct{}{}

		if fl.Start > fl.End || fl.End >= Words*32 || fl.End-fl.Start >= 64 {
			return fmt.Errorf("fuse: %s: field %s bits %d-%d out of range",
				l.Generation, fl.Name, fl.Start, fl.End)
		}
	}
	return nil
}
