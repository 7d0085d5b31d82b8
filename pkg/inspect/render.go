package inspect

import (
	"fmt"
	"strings"

	"github.com/oisee/utf-transcoder/pkg/coder"
)

// onoff renders a flag bit the way the panels expect.
func onoff(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// FormatRegister renders the register panel: raw value, region name, and the
// decoded code point where the region carries one.
func FormatRegister(c *coder.Coder) string {
	cl := c.Class()
	var b strings.Builder
	fmt.Fprintf(&b, "R     %08X\n", c.R())
	fmt.Fprintf(&b, "kind  %s\n", cl.Kind)
	switch cl.Kind {
	case coder.KindCodePoint, coder.KindExtended:
		fmt.Fprintf(&b, "value U+%04X\n", c.R())
	default:
		b.WriteString("value -\n")
	}
	fmt.Fprintf(&b, "order %s  chk %s\n", byteOrderName(c.BigEndian), onoff(c.CheckRange))
	return b.String()
}

func byteOrderName(big bool) string {
	if big {
		return "big"
	}
	return "little"
}

// FormatFlags renders the status and property panel.
func FormatFlags(c *coder.Coder) string {
	st := c.Status()
	p := c.Props()
	var b strings.Builder
	fmt.Fprintf(&b, "ready %s  retry %s  error %s\n", onoff(st.Ready), onoff(st.Retry), onoff(st.Error))
	fmt.Fprintf(&b, "inval %s  ovlng %s  nonuni %s\n", onoff(st.Invalid), onoff(st.Overlong), onoff(st.Nonuni))
	fmt.Fprintf(&b, "norm %s ctrl %s surr %s high %s priv %s nonch %s\n",
		onoff(p.Normal), onoff(p.Control), onoff(p.Surrogate),
		onoff(p.Highchar), onoff(p.Private), onoff(p.Nonchar))
	return b.String()
}

// FormatPointers renders the pointer and EOF panel.
func FormatPointers(c *coder.Coder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "utf32 in %d/4 out %d/4  eof %s/%s\n",
		c.RCIP(), c.RCOP(), onoff(c.CinEOF()), onoff(c.CoutEOF()))
	fmt.Fprintf(&b, "utf8  in %d/6 out %d/%d  eof %s/%s\n",
		c.RBIP(), c.RBOP(), c.RBIP(), onoff(c.BinEOF()), onoff(c.BoutEOF()))
	fmt.Fprintf(&b, "utf16 in %d/4 out %d/%d  eof %s/%s\n",
		c.RUIP(), c.RUOP(), c.RUIP(), onoff(c.UinEOF()), onoff(c.UoutEOF()))
	return b.String()
}
