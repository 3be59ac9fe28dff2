// internal/mac/format.go
package mac

import (
	"fmt"
	"io"
)

func bit(v uint8, n uint) uint8 {
	return (v >> n) & 1
}

func line(w io.Writer, label string, v uint8, channels uint) {
	fmt.Fprintf(w, "%-6s\t", label)
	for c := uint(0); c < channels; c++ {
		if c > 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprintf(w, "%d", bit(v, c))
	}
	fmt.Fprintln(w)
}

func header(w io.Writer, title string, channels uint) {
	fmt.Fprintf(w, "%-6s\t%s\n", "", title)
	fmt.Fprintf(w, "%-6s\t", "")
	for c := uint(0); c < channels; c++ {
		if c > 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprintf(w, "%d", c)
	}
	fmt.Fprintln(w)
}

// WriteAux prints the per-channel grid of the auxiliary MAC.
func WriteAux(w io.Writer, s AuxStatus) {
	header(w, "Channels", 4)
	line(w, "sigok", s.SigOK, 4)
	line(w, "txidle", s.TxIdle, 4)
	line(w, "rxidle", s.RxIdle, 4)
	line(w, "txgood", s.TxGood, 4)
}

// WriteChannel prints the per-channel grid of one high-speed MAC.
func WriteChannel(w io.Writer, s ChannelStatus) {
	header(w, "    Channels", 8)
	line(w, "lfault", s.LocalFault, 8)
	line(w, "rfault", s.RemoteFault, 8)
	line(w, "ofault", s.OtherFault, 8)
	line(w, "linkup", s.LinkUp, 8)
	line(w, "sigok", s.SigOK, 8)
	line(w, "txidle", s.TxIdle, 8)
	line(w, "rxidle", s.RxIdle, 8)
	line(w, "txgood", s.TxGood, 8)
}

// WriteAll prints one hex row per MAC.
func WriteAll(w io.Writer, all []MacChannel) {
	fmt.Fprintf(w, "%-3s %6s %6s %6s %6s %6s %6s %6s %6s\n",
		"mac", "lfault", "rfault", "ofault", "linkup", "sigok", "txidle", "rxidle", "txgood")
	for _, m := range all {
		s := m.Status
		fmt.Fprintf(w, "%3d %6x %6x %6x %6x %6x %6x %6x %6x\n",
			m.Mac,
			s.LocalFault, s.RemoteFault, s.OtherFault, s.LinkUp,
			s.SigOK, s.TxIdle, s.RxIdle, s.TxGood,
		)
	}
}
