package alloc

import (
	"math/rand"
	"testing"

	"github.com/joshuapare/tagheap/arena"
)

func benchmarkChurn(b *testing.B, cfg *Config, live int) {
	rng := rand.New(rand.NewSource(1))
	sizes := make([]int, 1024)
	for i := range sizes {
		sizes[i] = 1 + rng.Intn(512)
	}

	h, err := New(arena.NewMemory(64<<20), cfg)
	if err != nil {
		b.Fatal(err)
	}
	ptrs := make([]Ptr, live)
	for i := range ptrs {
		if ptrs[i], err = h.Alloc(sizes[i%len(sizes)]); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		slot := i % live
		if err := h.Free(ptrs[slot]); err != nil {
			b.Fatal(err)
		}
		if ptrs[slot], err = h.Alloc(sizes[i%len(sizes)]); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkChurn_List_100(b *testing.B) { benchmarkChurn(b, nil, 100) }
func BenchmarkChurn_List_5000(b *testing.B) { benchmarkChurn(b, nil, 5000) }
func BenchmarkChurn_Index_100(b *testing.B) { benchmarkChurn(b, &Config{AddressIndex: true}, 100) }
func BenchmarkChurn_Index_5000(b *testing.B) { benchmarkChurn(b, &Config{AddressIndex: true}, 5000) }

func BenchmarkResize(b *testing.B) {
	h, err := New(arena.NewMemory(64<<20), nil)
	if err != nil {
		b.Fatal(err)
	}
	p, _ := h.Alloc(64)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if p, err = h.Resize(p, 16+(i%64)*8); err != nil {
			b.Fatal(err)
		}
	}
}
