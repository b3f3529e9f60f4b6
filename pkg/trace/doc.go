// Package trace reads allocation traces and replays them against a tagheap
// allocator, checking every payload along the way.
//
// # Trace Format
//
// The format is the classic malloc-lab trace: four header lines followed by
// one operation per line.
//
//	20000      suggested heap size (informational)
//	2          number of distinct block ids
//	5          number of operations
//	1          weight (informational)
//	a 0 512    allocate 512 bytes as id 0
//	a 1 128
//	r 0 640    resize id 0 to 640 bytes
//	f 1        free id 1
//	f 0
//
// # Replay
//
// Replay runs a trace on a fresh heap. Each payload is filled with a byte
// pattern derived from its id and checked when the block is resized or
// freed, and every new payload is checked for alignment, heap bounds, and
// overlap with the other live payloads. With Options.Check the full heap
// validator runs after every operation.
//
//	tr, err := trace.ParseFile("traces/binary-bal.rep")
//	if err != nil {
//	    return err
//	}
//	res, err := trace.Replay(ctx, tr, trace.Options{Check: true})
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("util %.1f%%\n", 100*res.Utilization)
package trace
