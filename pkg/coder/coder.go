package coder

import "github.com/oisee/utf-transcoder/pkg/op"

// Coder is the byte-serial transcoder core: one 32-bit character register,
// the pointers that track byte progress in each encoding, and the sticky
// retry latch. All I/O is one byte per step. A Coder holds at most one
// character; the zero value is not usable, call New.
//
// The UTF-8 and UTF-16 input pointers are not stored: they are derived from
// the register value (every region implies its own byte count), which keeps
// the write paths and the encoders in agreement by construction. The UTF-32
// input pointer must be real state because a partially assembled word is
// indistinguishable from a complete small value.
type Coder struct {
	CheckRange bool // count non-Unicode code points as errors (chk_range)
	BigEndian  bool // UTF-32/UTF-16 byte order (cbe)

	r     uint32
	empty bool
	retry bool
	await bool // a high surrogate is parked and its low half is outstanding

	rcip uint8 // UTF-32 bytes written, 0..4
	rcop uint8 // UTF-32 bytes read, 0..4
	rbop uint8 // UTF-8 bytes read
	ruop uint8 // UTF-16 bytes read
}

// New returns a freshly reset Coder.
func New() *Coder {
	c := &Coder{}
	c.Reset()
	return c
}

// Reset clears the register, all pointers and all flags. Configuration bits
// are untouched.
func (c *Coder) Reset() {
	c.r = 0
	c.empty = true
	c.retry = false
	c.await = false
	c.rcip = 0
	c.rcop = 0
	c.rbop = 0
	c.ruop = 0
}

// ResetRead zeroes the three read pointers so the current encoded result can
// be read again. Write-side state is untouched.
func (c *Coder) ResetRead() {
	c.rcop = 0
	c.rbop = 0
	c.ruop = 0
}

// R returns the raw register value.
func (c *Coder) R() uint32 { return c.r }

// Empty reports whether nothing has been written since the last full reset.
func (c *Coder) Empty() bool { return c.empty }

// Class returns the region descriptor for the current register value.
func (c *Coder) Class() Class {
	if c.empty {
		return Class{Kind: KindEmpty}
	}
	return Classify(c.r)
}

// Ready reports that the register holds a complete result: not empty, not an
// underflow region, and not a parked high surrogate still awaiting its pair.
func (c *Coder) Ready() bool {
	if c.empty || c.await {
		return false
	}
	return !Classify(c.r).Underflow
}

// Retry reports the sticky retry latch: the most recent write could not be
// applied and the host must consume the current output, reset, and resubmit.
func (c *Coder) Retry() bool { return c.retry }

// Invalid reports that the register holds an encoding no legal input maps to.
func (c *Coder) Invalid() bool { return c.Class().Invalid }

// Overlong reports a well-formed UTF-8 sequence that used more bytes than
// the minimum for its code point.
func (c *Coder) Overlong() bool { return c.Class().Overlong }

// Nonuni reports a valid encoding of a code point beyond U+10FFFF.
func (c *Coder) Nonuni() bool { return c.Class().Nonuni }

// Error folds the error kinds into the single host-facing bit:
// retry | invalid | overlong | (nonuni & CheckRange).
func (c *Coder) Error() bool {
	cl := c.Class()
	return c.retry || cl.Invalid || cl.Overlong || (cl.Nonuni && c.CheckRange)
}

// Status is the flag bundle observable after every step.
type Status struct {
	Ready    bool
	Retry    bool
	Invalid  bool
	Overlong bool
	Nonuni   bool
	Error    bool
}

// Status returns all status flags at once.
func (c *Coder) Status() Status {
	cl := c.Class()
	return Status{
		Ready:    c.Ready(),
		Retry:    c.retry,
		Invalid:  cl.Invalid,
		Overlong: cl.Overlong,
		Nonuni:   cl.Nonuni,
		Error:    c.retry || cl.Invalid || cl.Overlong || (cl.Nonuni && c.CheckRange),
	}
}

// RCIP returns the UTF-32 input pointer (bytes written, 0..4).
func (c *Coder) RCIP() uint8 { return c.rcip }

// RCOP returns the UTF-32 output pointer (bytes read, 0..4).
func (c *Coder) RCOP() uint8 { return c.rcop }

// RBIP returns the UTF-8 byte count: bytes consumed while decoding, or the
// encoded length when the register was loaded another way. Derived from the
// register region.
func (c *Coder) RBIP() uint8 { return c.Class().U8Len }

// RBOP returns the UTF-8 output pointer.
func (c *Coder) RBOP() uint8 { return c.rbop }

// RUIP returns the UTF-16 byte count, derived from the register region.
func (c *Coder) RUIP() uint8 { return c.Class().U16Len }

// RUOP returns the UTF-16 output pointer.
func (c *Coder) RUOP() uint8 { return c.ruop }

// CinEOF reports the UTF-32 input side is full.
func (c *Coder) CinEOF() bool { return c.rcip >= 4 }

// CoutEOF reports the UTF-32 output side is drained.
func (c *Coder) CoutEOF() bool { return c.rcop >= 4 }

// BinEOF reports the UTF-8 input side is full.
func (c *Coder) BinEOF() bool { return c.RBIP() >= 6 }

// BoutEOF reports the UTF-8 output side is drained.
func (c *Coder) BoutEOF() bool { return c.rbop >= c.RBIP() }

// UinEOF reports the UTF-16 input side is full.
func (c *Coder) UinEOF() bool { return c.RUIP() >= 4 }

// UoutEOF reports the UTF-16 output side is drained.
func (c *Coder) UoutEOF() bool { return c.ruop >= c.RUIP() }

// reject latches retry without touching the register.
func (c *Coder) reject() { c.retry = true }

// load replaces the register with a first written byte's image: retry clears,
// the empty marker drops, and any parked surrogate wait is abandoned.
func (c *Coder) load(r uint32) {
	c.r = r
	c.empty = false
	c.retry = false
	c.await = false
}

// mutate updates the register mid-sequence. The retry latch is deliberately
// left alone: only a first byte or a reset clears it.
func (c *Coder) mutate(r uint32) {
	c.r = r
	c.await = false
}

// Step performs exactly one dispatched operation. Writes consume b; reads
// return the produced byte (writes and resets return 0).
func (c *Coder) Step(o op.Op, b byte) byte {
	switch o {
	case op.ResetAll:
		c.Reset()
	case op.ResetRead:
		c.ResetRead()
	case op.WriteUTF32:
		c.WriteUTF32(b)
	case op.WriteUTF8:
		c.WriteUTF8(b)
	case op.WriteUTF16:
		c.WriteUTF16(b)
	case op.ReadUTF32:
		return c.ReadUTF32()
	case op.ReadUTF8:
		return c.ReadUTF8()
	case op.ReadUTF16:
		return c.ReadUTF16()
	}
	return 0
}
