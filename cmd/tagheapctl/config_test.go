package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/tagheap/arena"
	"github.com/joshuapare/tagheap/internal/format"
)

func writeConfig(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tagheap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := loadSettings("")
	require.NoError(t, err)
	assert.Equal(t, arena.DefaultMaxHeap, s.MaxHeap)
	assert.Equal(t, format.ChunkSize, s.ChunkSize)
	assert.False(t, s.AddressIndex)
	assert.Positive(t, s.Workers)
}

func TestLoadSettings_File(t *testing.T) {
	path := writeConfig(t, `
max_heap: 8MB
chunk_size: 8KB
address_index: true
check: true
workers: 2
`)
	s, err := loadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 8<<20, s.MaxHeap)
	assert.Equal(t, 8<<10, s.ChunkSize)
	assert.True(t, s.AddressIndex)
	assert.True(t, s.Check)
	assert.Equal(t, 2, s.Workers)

	hc := s.heapConfig()
	assert.Equal(t, 8<<10, hc.ChunkSize)
	assert.True(t, hc.AddressIndex)
}

func TestLoadSettings_PartialKeepsDefaults(t *testing.T) {
	s, err := loadSettings(writeConfig(t, "check: true\n"))
	require.NoError(t, err)
	assert.True(t, s.Check)
	assert.Equal(t, arena.DefaultMaxHeap, s.MaxHeap)
}

func TestLoadSettings_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bad size", "max_heap: lots\n", "max_heap"},
		{"too big", "max_heap: 8GB\n", "4GB"},
		{"bad chunk", "chunk_size: x\n", "chunk_size"},
		{"negative workers", "workers: -1\n", "workers"},
		{"bad yaml", "max_heap: [1, 2\n", "failed to parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadSettings(writeConfig(t, tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := loadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
