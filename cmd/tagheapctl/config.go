package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/inhies/go-bytesize"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/tagheap/arena"
	"github.com/joshuapare/tagheap/arena/alloc"
	"github.com/joshuapare/tagheap/internal/format"
)

// fileConfig is the on-disk form of settings. Sizes are human strings
// such as "64MB" or "4KB".
type fileConfig struct {
	MaxHeap      string `yaml:"max_heap"`
	ChunkSize    string `yaml:"chunk_size"`
	AddressIndex *bool  `yaml:"address_index"`
	Check        *bool  `yaml:"check"`
	Workers      int    `yaml:"workers"`
}

// settings are the heap parameters every command runs with.
type settings struct {
	MaxHeap      int
	ChunkSize    int
	AddressIndex bool
	Check        bool
	Workers      int
}

func defaultSettings() settings {
	return settings{
		MaxHeap:   arena.DefaultMaxHeap,
		ChunkSize: format.ChunkSize,
		Workers:   runtime.GOMAXPROCS(0),
	}
}

// loadSettings returns the defaults overlaid with the YAML file at path.
// An empty path returns the defaults.
func loadSettings(path string) (settings, error) {
	s := defaultSettings()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return s, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if fc.MaxHeap != "" {
		if s.MaxHeap, err = parseSize(fc.MaxHeap); err != nil {
			return s, fmt.Errorf("max_heap: %w", err)
		}
	}
	if fc.ChunkSize != "" {
		if s.ChunkSize, err = parseSize(fc.ChunkSize); err != nil {
			return s, fmt.Errorf("chunk_size: %w", err)
		}
	}
	if fc.AddressIndex != nil {
		s.AddressIndex = *fc.AddressIndex
	}
	if fc.Check != nil {
		s.Check = *fc.Check
	}
	if fc.Workers < 0 {
		return s, fmt.Errorf("workers: must not be negative, got %d", fc.Workers)
	}
	if fc.Workers > 0 {
		s.Workers = fc.Workers
	}
	return s, nil
}

// parseSize parses a human size ("20MB", "512B", "1.5GB") into bytes.
func parseSize(v string) (int, error) {
	b, err := bytesize.Parse(v)
	if err != nil {
		return 0, err
	}
	if uint64(b) > uint64(format.MaxBlockSize) {
		return 0, fmt.Errorf("%s exceeds the 4GB heap limit", v)
	}
	return int(b), nil
}

// formatSize renders n bytes the way parseSize reads them.
func formatSize(n int) string {
	return bytesize.New(float64(n)).String()
}

// heapConfig returns the allocator config for s.
func (s settings) heapConfig() *alloc.Config {
	return &alloc.Config{
		ChunkSize:    s.ChunkSize,
		AddressIndex: s.AddressIndex,
	}
}
