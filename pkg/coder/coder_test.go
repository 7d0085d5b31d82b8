package coder

import (
	"testing"

	"github.com/oisee/utf-transcoder/pkg/op"
)

func TestEmptyState(t *testing.T) {
	c := New()
	if !c.Empty() || c.Ready() || c.Retry() || c.Error() {
		t.Errorf("fresh coder: empty=%v ready=%v retry=%v error=%v",
			c.Empty(), c.Ready(), c.Retry(), c.Error())
	}
	if c.Props() != (Props{}) {
		t.Errorf("fresh coder props %+v, want all clear", c.Props())
	}
	if c.Class().Kind != KindEmpty {
		t.Errorf("fresh coder kind %v", c.Class().Kind)
	}
	// Nothing to read.
	if !c.BoutEOF() || !c.UoutEOF() {
		t.Error("output not drained while empty")
	}
}

func TestStepDispatch(t *testing.T) {
	c := New()
	for _, b := range []byte{0xE2, 0x98, 0x83} {
		c.Step(op.WriteUTF8, b)
	}
	if c.R() != 0x2603 {
		t.Fatalf("R=%08X, want 00002603", c.R())
	}
	// UTF-32 little-endian image.
	want32 := []byte{0x03, 0x26, 0x00, 0x00}
	for i, w := range want32 {
		if got := c.Step(op.ReadUTF32, 0); got != w {
			t.Errorf("r32[%d]=%02X, want %02X", i, got, w)
		}
	}
	// UTF-16 little-endian image.
	for i, w := range []byte{0x03, 0x26} {
		if got := c.Step(op.ReadUTF16, 0); got != w {
			t.Errorf("r16[%d]=%02X, want %02X", i, got, w)
		}
	}
	// UTF-8 image replays the input.
	for i, w := range []byte{0xE2, 0x98, 0x83} {
		if got := c.Step(op.ReadUTF8, 0); got != w {
			t.Errorf("r8[%d]=%02X, want %02X", i, got, w)
		}
	}
	if !c.Props().Normal {
		t.Error("snowman should be a normal character")
	}

	// reset_read rewinds output only.
	c.Step(op.ResetRead, 0)
	if c.RBOP() != 0 || c.RCOP() != 0 || c.RUOP() != 0 {
		t.Error("reset_read left read pointers set")
	}
	if c.R() != 0x2603 || c.RBIP() != 3 {
		t.Error("reset_read touched write state")
	}

	c.Step(op.ResetAll, 0)
	if !c.Empty() {
		t.Error("reset_all left state behind")
	}
}

func TestCrossEncodingConsistency(t *testing.T) {
	// The classifier must not care how the register was loaded.
	load := []struct {
		name string
		do   func(c *Coder)
	}{
		{"utf8", func(c *Coder) { feedUTF8(c, 0xE2, 0x98, 0x83) }},
		{"utf16", func(c *Coder) { feedUTF16(c, 0x03, 0x26) }},
		{"utf32", func(c *Coder) {
			c.Reset()
			for _, b := range []byte{0x03, 0x26, 0x00, 0x00} {
				c.WriteUTF32(b)
			}
		}},
	}
	c := New()
	for _, tc := range load {
		tc.do(c)
		if c.R() != 0x2603 {
			t.Errorf("%s: R=%08X", tc.name, c.R())
		}
		st := c.Status()
		if !st.Ready || st.Error {
			t.Errorf("%s: %+v", tc.name, st)
		}
		if c.RBIP() != 3 || c.RUIP() != 2 {
			t.Errorf("%s: rbip=%d ruip=%d", tc.name, c.RBIP(), c.RUIP())
		}
	}
}

func TestProps(t *testing.T) {
	tests := []struct {
		r    uint32
		want Props
	}{
		{0x00, Props{Control: true}},
		{0x1F, Props{Control: true}},
		{0x41, Props{Normal: true}},
		{0x7F, Props{Control: true}},
		{0xA0, Props{Normal: true}},
		{0xD800, Props{Surrogate: true, Highchar: true}},
		{0xDB80, Props{Surrogate: true, Highchar: true, Private: true}},
		{0xDC00, Props{Surrogate: true}},
		{0xE000, Props{Private: true}},
		{0xF8FF, Props{Private: true}},
		{0xF900, Props{Normal: true}},
		{0xFDD0, Props{Nonchar: true}},
		{0xFDEF, Props{Nonchar: true}},
		{0xFFFE, Props{Nonchar: true}},
		{0xFFFF, Props{Nonchar: true}},
		{0x10000, Props{Normal: true, Highchar: true}},
		{0x1FFFE, Props{Nonchar: true, Highchar: true}},
		{0xF0000, Props{Private: true, Highchar: true}},
		{0x10FFFD, Props{Private: true, Highchar: true}},
		{0x10FFFF, Props{Nonchar: true, Highchar: true}},
	}
	c := New()
	for _, tc := range tests {
		c.Reset()
		for i := 0; i < 4; i++ {
			c.WriteUTF32(byte(tc.r >> (8 * uint(i))))
		}
		if got := c.Props(); got != tc.want {
			t.Errorf("%06X: %+v, want %+v", tc.r, got, tc.want)
		}
	}
}

func TestPropsCheckRange(t *testing.T) {
	c := New()
	load := func(v uint32) {
		c.Reset()
		for i := 0; i < 4; i++ {
			c.WriteUTF32(byte(v >> (8 * uint(i))))
		}
	}

	// Beyond the Unicode limit: private-use extends when range checking is
	// off, and is suppressed when it is on. Highchar and nonchar persist.
	load(0x110000)
	if p := c.Props(); !p.Private || !p.Highchar || p.Normal {
		t.Errorf("chk off: %+v", p)
	}
	c.CheckRange = true
	if p := c.Props(); p.Private || !p.Highchar {
		t.Errorf("chk on: %+v", p)
	}
	load(0x11FFFE)
	if p := c.Props(); !p.Nonchar || !p.Highchar {
		t.Errorf("chk on noncharacter pattern: %+v", p)
	}

	// Top-half encodings carry no properties at all.
	feedUTF8(c, 0xC0, 0x80)
	if c.Props() != (Props{}) {
		t.Errorf("overlong props %+v, want none", c.Props())
	}
}

func TestErrorComposition(t *testing.T) {
	c := New()

	feedUTF8(c, 0xF4, 0x90, 0x80, 0x80) // 0x110000
	if c.Error() {
		t.Error("nonuni alone should not error with CheckRange off")
	}
	c.CheckRange = true
	if !c.Error() {
		t.Error("nonuni should error with CheckRange on")
	}
	c.CheckRange = false

	feedUTF8(c, 0xC0, 0x80)
	if !c.Error() || !c.Overlong() {
		t.Error("overlong should always error")
	}

	feedUTF8(c, 0x80)
	if !c.Error() || !c.Invalid() {
		t.Error("lone continuation should always error")
	}

	// retry feeds error too.
	feedUTF8(c, 0x41)
	c.WriteUTF8(0x80)
	if !c.Error() {
		t.Error("retry should raise error")
	}
}
