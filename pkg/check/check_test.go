package check

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/oisee/utf-transcoder/pkg/coder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertiesHold(t *testing.T) {
	c := coder.New()
	tbl := NewTable()
	for _, v := range []uint32{0, 0x41, 0x7F, 0x80, 0x7FF, 0x800, 0x2603,
		0xFFFF, 0x10000, 0x1F34D, 0x10FFFF, 0x110000, 0x4000000, 0x7FFFFFFF} {
		assert.True(t, checkUTF8(c, v, tbl), "utf8 %08X", v)
		assert.True(t, checkUTF32(c, v, tbl), "utf32 %08X", v)
		assert.True(t, checkClassify(c, v, tbl), "classify %08X", v)
	}
	for _, v := range []uint32{0, 0x41, 0xD7FF, 0xE000, 0xFFFF, 0x10000, 0x10FFFF} {
		assert.True(t, checkUTF16(c, v, tbl), "utf16 %08X", v)
	}
	assert.Zero(t, tbl.Len())
}

func TestRunSmall(t *testing.T) {
	if testing.Short() {
		t.Skip("sweep")
	}
	s := Run(Config{NumWorkers: 2})
	assert.Zero(t, s.Failed, "mismatches: %+v", s.Results)
	assert.Greater(t, s.Checked, int64(0x200000))
	assert.Empty(t, s.Results)
}

func TestTableSortsAndExports(t *testing.T) {
	tbl := NewTable()
	tbl.Add(Mismatch{Code: 0x20, Stage: "b"})
	tbl.Add(Mismatch{Code: 0x10, Stage: "a"})
	tbl.Add(Mismatch{Code: 0x20, Stage: "a"})
	ms := tbl.Mismatches()
	require.Len(t, ms, 3)
	assert.Equal(t, uint32(0x10), ms[0].Code)
	assert.Equal(t, "a", ms[1].Stage)
	assert.Equal(t, "b", ms[2].Stage)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, ms))
	var back []Mismatch
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, ms, back)
}
