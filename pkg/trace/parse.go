package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrSyntax indicates a malformed trace.
var ErrSyntax = errors.New("trace: syntax error")

// maxPrealloc bounds the op slice reserved from the header's op count.
const maxPrealloc = 1 << 16

// ParseFile reads the trace at path. The trace is named after the file.
func ParseFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Name = filepath.Base(path)
	return t, nil
}

// Parse reads a trace. Blank lines are skipped. The operation count in the
// header must match the operations that follow, and every id must be below
// the declared id count.
func Parse(r io.Reader) (*Trace, error) {
	sc := bufio.NewScanner(r)
	line := 0

	next := func() ([]string, bool) {
		for sc.Scan() {
			line++
			if fields := strings.Fields(sc.Text()); len(fields) > 0 {
				return fields, true
			}
		}
		return nil, false
	}
	syntax := func(format string, args ...any) error {
		return fmt.Errorf("%w: line %d: %s", ErrSyntax, line, fmt.Sprintf(format, args...))
	}

	var header [4]int
	for i, name := range []string{"suggested heap size", "id count", "op count", "weight"} {
		fields, ok := next()
		if !ok {
			if err := sc.Err(); err != nil {
				return nil, err
			}
			return nil, syntax("missing %s", name)
		}
		v, err := strconv.Atoi(fields[0])
		if err != nil || v < 0 {
			return nil, syntax("bad %s %q", name, fields[0])
		}
		header[i] = v
	}

	t := &Trace{
		SuggestedHeapSize: header[0],
		NumIDs:            header[1],
		Weight:            header[3],
		Ops:               make([]Op, 0, min(header[2], maxPrealloc)),
	}

	for {
		fields, ok := next()
		if !ok {
			break
		}
		op, err := parseOp(fields)
		if err != nil {
			return nil, syntax("%v", err)
		}
		if op.ID >= t.NumIDs {
			return nil, syntax("id %d out of range [0, %d)", op.ID, t.NumIDs)
		}
		op.Line = line
		t.Ops = append(t.Ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if len(t.Ops) != header[2] {
		return nil, fmt.Errorf("%w: header declares %d ops, found %d", ErrSyntax, header[2], len(t.Ops))
	}
	return t, nil
}

func parseOp(fields []string) (Op, error) {
	if len(fields[0]) != 1 {
		return Op{}, fmt.Errorf("unknown op %q", fields[0])
	}
	kind := OpKind(fields[0][0])

	want := 3
	switch kind {
	case OpAlloc, OpResize:
	case OpFree:
		want = 2
	default:
		return Op{}, fmt.Errorf("unknown op %q", fields[0])
	}
	if len(fields) != want {
		return Op{}, fmt.Errorf("%s takes %d fields, got %d", kind, want, len(fields))
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil || id < 0 {
		return Op{}, fmt.Errorf("bad id %q", fields[1])
	}
	op := Op{Kind: kind, ID: id}
	if want == 3 {
		if op.Size, err = strconv.Atoi(fields[2]); err != nil || op.Size < 0 {
			return Op{}, fmt.Errorf("bad size %q", fields[2])
		}
	}
	return op, nil
}

// WriteTo writes t in trace format.
func (t *Trace) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	write := func(format string, args ...any) error {
		c, err := fmt.Fprintf(bw, format, args...)
		n += int64(c)
		return err
	}

	for _, v := range []int{t.SuggestedHeapSize, t.NumIDs, len(t.Ops), t.Weight} {
		if err := write("%d\n", v); err != nil {
			return n, err
		}
	}
	for _, op := range t.Ops {
		if err := write("%s\n", op); err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}
