package inspect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/oisee/utf-transcoder/pkg/coder"
	"github.com/oisee/utf-transcoder/pkg/op"
)

// ErrQuit is returned by Execute for the quit command.
var ErrQuit = errors.New("quit")

// Execute runs one inspector command line against the coder and returns the
// transcript line. Write mnemonics take hex bytes and perform one step per
// byte; read mnemonics drain the corresponding output side.
func Execute(c *coder.Coder, line string) (string, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return "", nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "q":
		return "", ErrQuit
	case "help", "?":
		return helpText, nil
	case "be":
		c.BigEndian = true
		return "byte order: big", nil
	case "le":
		c.BigEndian = false
		return "byte order: little", nil
	case "chk":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return "", fmt.Errorf("usage: chk on|off")
		}
		c.CheckRange = args[0] == "on"
		return "check range: " + args[0], nil
	}

	o, ok := op.Lookup(cmd)
	if !ok {
		return "", fmt.Errorf("unknown command %q (try help)", cmd)
	}

	switch {
	case op.IsWrite(o):
		if len(args) == 0 {
			return "", fmt.Errorf("%s needs hex bytes", cmd)
		}
		var wrote []string
		for _, a := range args {
			v, err := strconv.ParseUint(a, 16, 8)
			if err != nil {
				return "", fmt.Errorf("bad byte %q: %w", a, err)
			}
			c.Step(o, byte(v))
			wrote = append(wrote, fmt.Sprintf("%02X", v))
			if c.Retry() {
				return fmt.Sprintf("%s %s -> retry", cmd, strings.Join(wrote, " ")), nil
			}
		}
		return fmt.Sprintf("%s %s", cmd, strings.Join(wrote, " ")), nil
	case op.IsRead(o):
		var out []string
		for !readDrained(c, o) {
			out = append(out, fmt.Sprintf("%02X", c.Step(o, 0)))
		}
		if len(out) == 0 {
			return cmd + " -> (nothing)", nil
		}
		return fmt.Sprintf("%s -> %s", cmd, strings.Join(out, " ")), nil
	default:
		c.Step(o, 0)
		return op.Catalog[o].Name, nil
	}
}

func readDrained(c *coder.Coder, o op.Op) bool {
	switch o {
	case op.ReadUTF32:
		return c.CoutEOF()
	case op.ReadUTF8:
		return c.BoutEOF()
	default:
		return c.UoutEOF()
	}
}

const helpText = `w32|w8|w16 HH [HH ...]  write bytes
r32|r8|r16              read all bytes
reset                   full reset
rr                      reset read pointers
be | le                 byte order
chk on|off              range checking
quit                    leave`
