package stream

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/oisee/utf-transcoder/pkg/coder"
)

// Encoding selects one of the coder's byte-serial codecs plus a byte order.
type Encoding uint8

const (
	UTF8 Encoding = iota
	UTF16LE
	UTF16BE
	UTF32LE
	UTF32BE
)

var encNames = [...]string{"utf8", "utf16le", "utf16be", "utf32le", "utf32be"}

func (e Encoding) String() string {
	if int(e) < len(encNames) {
		return encNames[e]
	}
	return "enc?"
}

// ParseEncoding resolves a name like "utf8" or "utf16le".
func ParseEncoding(s string) (Encoding, error) {
	for i, n := range encNames {
		if s == n {
			return Encoding(i), nil
		}
	}
	return 0, fmt.Errorf("unknown encoding %q", s)
}

func (e Encoding) bigEndian() bool { return e == UTF16BE || e == UTF32BE }

// ErrorPolicy decides what happens to a character the coder flags.
type ErrorPolicy uint8

const (
	// Replace substitutes U+FFFD for flagged or unrepresentable characters.
	Replace ErrorPolicy = iota
	// Fail aborts the stream at the first flagged character.
	Fail
	// Preserve emits exactly the bytes the register replays, which keeps
	// broken input byte-exact for UTF-8 targets and drops what the target
	// encoding cannot carry.
	Preserve
)

var policyNames = [...]string{"replace", "fail", "preserve"}

func (p ErrorPolicy) String() string {
	if int(p) < len(policyNames) {
		return policyNames[p]
	}
	return "policy?"
}

// ParsePolicy resolves a policy name.
func ParsePolicy(s string) (ErrorPolicy, error) {
	for i, n := range policyNames {
		if s == n {
			return ErrorPolicy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown error policy %q", s)
}

const replacementChar uint32 = 0xFFFD

// ErrBadInput is wrapped by Transcode errors raised under the Fail policy.
var ErrBadInput = errors.New("malformed input")

// Options configures a Transcoder.
type Options struct {
	CheckRange bool        // flag code points beyond U+10FFFF as errors
	OnError    ErrorPolicy // what to do with flagged characters
	BufferSize int         // read/write buffer size; 0 means a default
}

// Transcoder converts a byte stream between encodings by driving a single
// one-character coder: every input byte is one write step, every output byte
// one read step, with a full reset between characters. It owns the host side
// of the retry contract, including resubmitting the second UTF-16 unit after
// a revert.
type Transcoder struct {
	c        *coder.Coder
	from, to Encoding
	opts     Options

	pending []byte // bytes of the in-flight character, for error reporting
	pushed  []byte // bytes to resubmit before consuming new input
	offset  int64  // stream position of the next input byte
}

// New creates a Transcoder for one conversion direction.
func New(from, to Encoding, opts Options) *Transcoder {
	c := coder.New()
	c.CheckRange = opts.CheckRange
	return &Transcoder{c: c, from: from, to: to, opts: opts}
}

// write performs one input step in the source encoding.
func (t *Transcoder) write(b byte) {
	switch t.from {
	case UTF8:
		t.c.WriteUTF8(b)
	case UTF16LE, UTF16BE:
		t.c.WriteUTF16(b)
	default:
		t.c.WriteUTF32(b)
	}
}

// complete reports that the in-flight character is finished in the source
// encoding.
func (t *Transcoder) complete() bool {
	if t.from == UTF32LE || t.from == UTF32BE {
		return t.c.CinEOF()
	}
	return t.c.Ready()
}

// emit drains the register in the target encoding.
func (t *Transcoder) emit(w *bufio.Writer) (int, error) {
	t.c.BigEndian = t.to.bigEndian()
	defer func() { t.c.BigEndian = t.from.bigEndian() }()

	n := 0
	switch t.to {
	case UTF8:
		for !t.c.BoutEOF() {
			if err := w.WriteByte(t.c.ReadUTF8()); err != nil {
				return n, err
			}
			n++
		}
	case UTF16LE, UTF16BE:
		for !t.c.UoutEOF() {
			if err := w.WriteByte(t.c.ReadUTF16()); err != nil {
				return n, err
			}
			n++
		}
	default:
		for !t.c.CoutEOF() {
			if err := w.WriteByte(t.c.ReadUTF32()); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

// loadReplacement resets the coder and loads U+FFFD.
func (t *Transcoder) loadReplacement() {
	t.c.Reset()
	save := t.c.BigEndian
	t.c.BigEndian = false
	for i := 0; i < 4; i++ {
		t.c.WriteUTF32(byte(replacementChar >> (8 * uint(i))))
	}
	t.c.BigEndian = save
}

// representable reports the target encoding can carry the current register.
func (t *Transcoder) representable() bool {
	switch t.to {
	case UTF8:
		return t.c.RBIP() > 0
	case UTF16LE, UTF16BE:
		return t.c.RUIP() > 0
	default:
		return true
	}
}

// flush applies the error policy and emits the in-flight character. A
// register that never became ready (truncated input, rejected byte) counts
// as flagged.
func (t *Transcoder) flush(w *bufio.Writer) (int, error) {
	if t.c.Empty() {
		return 0, nil
	}
	flagged := t.c.Error() || !t.c.Ready()
	switch {
	case flagged && t.opts.OnError == Fail:
		return 0, fmt.Errorf("offset %d (% X): %w", t.offset, t.pending, ErrBadInput)
	case t.opts.OnError == Replace && (flagged || !t.representable()):
		t.loadReplacement()
	}
	return t.emit(w)
}

// Transcode converts src into dst and returns the number of bytes written.
func (t *Transcoder) Transcode(dst io.Writer, src io.Reader) (int64, error) {
	size := t.opts.BufferSize
	if size <= 0 {
		size = 32 * 1024
	}
	br := bufio.NewReaderSize(src, size)
	bw := bufio.NewWriterSize(dst, size)

	t.c.Reset()
	t.c.BigEndian = t.from.bigEndian()
	t.pending = t.pending[:0]
	t.pushed = t.pushed[:0]
	t.offset = 0

	var written int64
	for {
		var b byte
		if n := len(t.pushed); n > 0 {
			b = t.pushed[0]
			t.pushed = t.pushed[1:]
		} else {
			var err error
			b, err = br.ReadByte()
			if err == io.EOF {
				break
			}
			if err != nil {
				return written, err
			}
			t.offset++
		}

		t.write(b)
		if t.c.Retry() {
			// The write did not land. A UTF-16 revert also rewinds the byte
			// parked before it, so that byte replays ahead of this one.
			resubmit := []byte{b}
			if t.c.Ready() && (t.from == UTF16LE || t.from == UTF16BE) && len(t.pending) == 3 {
				resubmit = []byte{t.pending[2], b}
			}
			n, err := t.flush(bw)
			written += int64(n)
			if err != nil {
				return written, err
			}
			t.c.Reset()
			t.pending = t.pending[:0]
			t.pushed = append(resubmit, t.pushed...)
			continue
		}

		t.pending = append(t.pending, b)
		if t.complete() {
			n, err := t.flush(bw)
			written += int64(n)
			if err != nil {
				return written, err
			}
			t.c.Reset()
			t.pending = t.pending[:0]
		}
	}

	// Trailing partial character.
	if !t.c.Empty() {
		n, err := t.flush(bw)
		written += int64(n)
		if err != nil {
			return written, err
		}
		t.c.Reset()
	}
	return written, bw.Flush()
}

// Bytes converts a byte slice in one call.
func Bytes(src []byte, from, to Encoding, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	t := New(from, to, opts)
	_, err := t.Transcode(&buf, bytes.NewReader(src))
	return buf.Bytes(), err
}
