package coder

// utf32Pos maps a byte index to its shift inside the register for the
// configured byte order.
func (c *Coder) utf32Pos(i uint8) uint {
	if c.BigEndian {
		return 8 * uint(3-i)
	}
	return 8 * uint(i)
}

// WriteUTF32 assembles one byte into the register. The first byte of a word
// replaces the register wholesale, so the not-yet-written bytes classify as
// zero. Writes beyond four bytes are rejected with retry.
func (c *Coder) WriteUTF32(b byte) {
	if c.rcip >= 4 {
		c.reject()
		return
	}
	v := uint32(b) << c.utf32Pos(c.rcip)
	if c.rcip == 0 {
		c.load(v)
	} else {
		c.mutate(c.r | v)
	}
	c.rcip++
}

// ReadUTF32 emits the next register byte in the configured byte order.
// Reads past the fourth byte produce zero.
func (c *Coder) ReadUTF32() byte {
	if c.rcop >= 4 {
		return 0
	}
	b := byte(c.r >> c.utf32Pos(c.rcop))
	c.rcop++
	return b
}
