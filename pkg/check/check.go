package check

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oisee/utf-transcoder/pkg/coder"
)

// Config controls a conformance run.
type Config struct {
	NumWorkers int  // 0 = NumCPU
	ChunkSize  int  // code points per task; 0 = default
	Full       bool // denser sampling of the extended planes
	Verbose    bool
}

// Summary is the outcome of a run.
type Summary struct {
	Checked int64
	Failed  int64
	Elapsed time.Duration
	Results []Mismatch
}

// task is one contiguous value range checked by one property function.
type task struct {
	name string
	lo   uint32
	hi   uint32 // inclusive
	step uint32
	fn   func(c *coder.Coder, v uint32, t *Table) bool
}

// loadScalar writes v into the register through the UTF-32 port.
func loadScalar(c *coder.Coder, v uint32) {
	c.Reset()
	for i := 0; i < 4; i++ {
		sh := 8 * uint(i)
		if c.BigEndian {
			sh = 8 * uint(3-i)
		}
		c.WriteUTF32(byte(v >> sh))
	}
}

func readUTF8(c *coder.Coder) []byte {
	var out []byte
	for !c.BoutEOF() {
		out = append(out, c.ReadUTF8())
	}
	return out
}

// checkUTF8 verifies encode→decode identity through the UTF-8 port.
func checkUTF8(c *coder.Coder, v uint32, t *Table) bool {
	loadScalar(c, v)
	enc := readUTF8(c)
	c.Reset()
	for _, b := range enc {
		c.WriteUTF8(b)
	}
	if c.R() != v || !c.Ready() {
		t.Add(Mismatch{Code: v, Stage: "utf8-roundtrip",
			Want: fmt.Sprintf("%08X ready", v),
			Got:  fmt.Sprintf("%08X ready=%v", c.R(), c.Ready())})
		return false
	}
	st := c.Status()
	wantNonuni := v > coder.MaxCodePoint
	if st.Invalid || st.Overlong || st.Nonuni != wantNonuni {
		t.Add(Mismatch{Code: v, Stage: "utf8-flags",
			Want: fmt.Sprintf("nonuni=%v clean", wantNonuni),
			Got:  fmt.Sprintf("%+v", st)})
		return false
	}
	return true
}

// checkUTF16 verifies encode→decode identity through the UTF-16 port for
// values it can carry (surrogate halves excluded by the task ranges).
func checkUTF16(c *coder.Coder, v uint32, t *Table) bool {
	loadScalar(c, v)
	var enc []byte
	for !c.UoutEOF() {
		enc = append(enc, c.ReadUTF16())
	}
	c.Reset()
	for _, b := range enc {
		c.WriteUTF16(b)
	}
	if c.R() != v || !c.Ready() || c.Error() {
		t.Add(Mismatch{Code: v, Stage: "utf16-roundtrip",
			Want: fmt.Sprintf("%08X ready clean", v),
			Got:  fmt.Sprintf("%08X ready=%v error=%v", c.R(), c.Ready(), c.Error())})
		return false
	}
	return true
}

// checkUTF32 verifies both byte orders write the same value back.
func checkUTF32(c *coder.Coder, v uint32, t *Table) bool {
	for _, be := range []bool{false, true} {
		c.BigEndian = be
		loadScalar(c, v)
		if c.R() != v {
			c.BigEndian = false
			t.Add(Mismatch{Code: v, Stage: "utf32-endian",
				Want: fmt.Sprintf("%08X be=%v", v, be),
				Got:  fmt.Sprintf("%08X", c.R())})
			return false
		}
	}
	c.BigEndian = false
	return true
}

// checkClassify verifies the classifier is stable and the derived lengths
// agree with the encoders' output counts.
func checkClassify(c *coder.Coder, v uint32, t *Table) bool {
	a, b := coder.Classify(v), coder.Classify(v)
	if a != b {
		t.Add(Mismatch{Code: v, Stage: "classify-idempotent",
			Want: fmt.Sprintf("%+v", a), Got: fmt.Sprintf("%+v", b)})
		return false
	}
	loadScalar(c, v)
	if n := len(readUTF8(c)); n != int(a.U8Len) {
		t.Add(Mismatch{Code: v, Stage: "utf8-length",
			Want: fmt.Sprintf("%d", a.U8Len), Got: fmt.Sprintf("%d", n)})
		return false
	}
	return true
}

// buildTasks splits the property sweeps into chunked tasks.
func buildTasks(cfg Config) []task {
	chunk := uint32(cfg.ChunkSize)
	if chunk == 0 {
		chunk = 0x10000
	}
	extStep := uint32(0x7FFD)
	if cfg.Full {
		extStep = 0x101
	}

	var tasks []task
	span := func(name string, lo, hi, step uint32, fn func(*coder.Coder, uint32, *Table) bool) {
		for a := lo; ; a += chunk * step {
			b := a + chunk*step - step
			if b > hi || b < a {
				b = hi
			}
			tasks = append(tasks, task{name: name, lo: a, hi: b, step: step, fn: fn})
			if b == hi {
				return
			}
		}
	}

	span("utf8", 0, coder.MaxCodePoint, 1, checkUTF8)
	span("utf8-ext", coder.ExtendedBase, coder.MaxExtended, extStep, checkUTF8)
	span("utf16-bmp", 0, 0xD7FF, 1, checkUTF16)
	span("utf16-bmp2", 0xE000, 0xFFFF, 1, checkUTF16)
	span("utf16-supp", 0x10000, coder.MaxCodePoint, 1, checkUTF16)
	span("utf32", 0, coder.MaxCodePoint, 0x11, checkUTF32)
	span("classify", 0, 0xFFFFFFFF, 0x1009, checkClassify)
	return tasks
}

// Run executes the conformance sweeps across a worker pool. Each worker
// drives its own coder instance; state never crosses workers.
func Run(cfg Config) *Summary {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = runtime.NumCPU()
	}
	tasks := buildTasks(cfg)
	table := NewTable()

	var checked, failed atomic.Int64
	ch := make(chan task, len(tasks))
	for _, tk := range tasks {
		ch <- tk
	}
	close(ch)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < cfg.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := coder.New()
			for tk := range ch {
				for v := tk.lo; ; v += tk.step {
					checked.Add(1)
					if !tk.fn(c, v, table) {
						failed.Add(1)
					}
					if v >= tk.hi || v+tk.step < v {
						break
					}
					if v+tk.step > tk.hi {
						break
					}
				}
				if cfg.Verbose {
					fmt.Printf("  %s %06X..%06X done\n", tk.name, tk.lo, tk.hi)
				}
			}
		}()
	}
	wg.Wait()

	return &Summary{
		Checked: checked.Load(),
		Failed:  failed.Load(),
		Elapsed: time.Since(start),
		Results: table.Mismatches(),
	}
}
