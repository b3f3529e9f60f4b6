package dirty

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_DirtyTracker_PageAlignment(t *testing.T) {
	tracker := NewTracker()

	// offset 100, length 200 rounds out to the first page
	tracker.Add(100, 200)

	ranges := tracker.Ranges()
	require.Len(t, ranges, 1)
	require.Equal(t, Range{Off: 0, Len: 4096}, ranges[0])
}

func Test_DirtyTracker_MergesAdjacentPages(t *testing.T) {
	tracker := NewTracker()

	// Dirty pages 0, 1, 2, 5, 6 added out of order.
	tracker.Add(0x5010, 8)
	tracker.Add(0x0004, 4)
	tracker.Add(0x1ff0, 0x20) // straddles pages 1 and 2
	tracker.Add(0x6000, 4)
	tracker.Add(0x1000, 4)

	ranges := tracker.Ranges()
	require.Equal(t, []Range{
		{Off: 0x0000, Len: 0x3000},
		{Off: 0x5000, Len: 0x2000},
	}, ranges)
}

func Test_DirtyTracker_IgnoresEmptyRanges(t *testing.T) {
	tracker := NewTracker()
	tracker.Add(64, 0)
	tracker.Add(64, -4)
	require.Zero(t, tracker.Len())
	require.Nil(t, tracker.Ranges())
}

func Test_DirtyTracker_FlushResets(t *testing.T) {
	tracker := NewTracker()
	tracker.Add(16, 4)
	require.Equal(t, 1, tracker.Len())

	// An empty data slice has nothing to sync but still clears the tracker.
	require.NoError(t, tracker.Flush(context.Background(), nil))
	require.Zero(t, tracker.Len())
}

func Test_DirtyTracker_FlushHonoursCancellation(t *testing.T) {
	tracker := NewTracker()
	tracker.Add(0, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tracker.Flush(ctx, make([]byte, 4096))
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, tracker.Len(), "cancelled flush must keep ranges for a retry")
}
