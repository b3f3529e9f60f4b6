package trace

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile(t *testing.T) {
	tr, err := ParseFile("testdata/short1.rep")
	require.NoError(t, err)

	assert.Equal(t, "short1.rep", tr.Name)
	assert.Equal(t, 20000, tr.SuggestedHeapSize)
	assert.Equal(t, 6, tr.NumIDs)
	assert.Equal(t, 1, tr.Weight)
	require.Len(t, tr.Ops, 12)
	assert.Equal(t, Op{Kind: OpAlloc, ID: 0, Size: 2040, Line: 5}, tr.Ops[0])
	assert.Equal(t, Op{Kind: OpFree, ID: 1, Line: 7}, tr.Ops[2])
}

func TestParse_SkipsBlankLines(t *testing.T) {
	src := "100\n\n2\n2\n1\n\na 0 8\n   \nf 0\n"
	tr, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, tr.Ops, 2)
	assert.Equal(t, 7, tr.Ops[0].Line)
	assert.Equal(t, 9, tr.Ops[1].Line)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", "", "missing suggested heap size"},
		{"short header", "100\n2\n", "missing op count"},
		{"bad header", "100\nx\n1\n1\n", "bad id count"},
		{"negative header", "100\n-2\n1\n1\n", "bad id count"},
		{"unknown op", "100\n1\n1\n1\nm 0 8\n", "unknown op"},
		{"long op", "100\n1\n1\n1\nalloc 0 8\n", "unknown op"},
		{"missing size", "100\n1\n1\n1\na 0\n", "alloc takes 3 fields"},
		{"free with size", "100\n1\n1\n1\nf 0 8\n", "free takes 2 fields"},
		{"bad id", "100\n1\n1\n1\na x 8\n", "bad id"},
		{"bad size", "100\n1\n1\n1\na 0 -1\n", "bad size"},
		{"id out of range", "100\n1\n1\n1\na 1 8\n", "out of range"},
		{"count mismatch", "100\n1\n2\n1\na 0 8\n", "declares 2 ops, found 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSyntax))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_HugeOpCount(t *testing.T) {
	_, err := Parse(strings.NewReader("100\n1\n999999999999999999\n1\na 0 8\n"))
	require.ErrorIs(t, err, ErrSyntax)
	assert.Contains(t, err.Error(), "found 1")
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile("testdata/does-not-exist.rep")
	require.Error(t, err)
}

func TestWriteTo_ParsesBack(t *testing.T) {
	orig := Random(rand.New(rand.NewSource(7)), 20, 300, 1000)

	var buf bytes.Buffer
	n, err := orig.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	got, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, orig.SuggestedHeapSize, got.SuggestedHeapSize)
	assert.Equal(t, orig.NumIDs, got.NumIDs)
	require.Len(t, got.Ops, len(orig.Ops))
	for i := range orig.Ops {
		got.Ops[i].Line = 0
	}
	assert.Equal(t, orig.Ops, got.Ops)
}

func TestRandom_WellFormed(t *testing.T) {
	tr := Random(rand.New(rand.NewSource(1)), 8, 500, 64)
	require.GreaterOrEqual(t, len(tr.Ops), 500)

	live := map[int]bool{}
	for i, op := range tr.Ops {
		require.Less(t, op.ID, tr.NumIDs)
		switch op.Kind {
		case OpAlloc:
			require.False(t, live[op.ID], "op %d allocs live id", i)
			require.Positive(t, op.Size)
			live[op.ID] = true
		case OpResize:
			require.True(t, live[op.ID], "op %d resizes dead id", i)
		case OpFree:
			require.True(t, live[op.ID], "op %d frees dead id", i)
			delete(live, op.ID)
		}
	}
	assert.Empty(t, live, "every block is freed by the end")
	assert.Positive(t, tr.SuggestedHeapSize)
}

func TestOpKind_String(t *testing.T) {
	assert.Equal(t, "alloc", OpAlloc.String())
	assert.Equal(t, "resize", OpResize.String())
	assert.Equal(t, "free", OpFree.String())
	assert.Equal(t, "OpKind('x')", OpKind('x').String())
	assert.Equal(t, "r 3 64", Op{Kind: OpResize, ID: 3, Size: 64}.String())
	assert.Equal(t, "f 3", Op{Kind: OpFree, ID: 3}.String())
}
