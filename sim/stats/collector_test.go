package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Record_AppendsInOrder(t *testing.T) {
	c := NewCollector()
	c.Record(Sample{Kind: KindWait, Time: 1, Value: 0.5})
	c.Record(Sample{Kind: KindSojourn, Time: 2, Value: 3.0})

	require.Equal(t, 2, c.Len())
	snap := c.Snapshot()
	assert.Equal(t, KindWait, snap[0].Kind)
	assert.Equal(t, KindSojourn, snap[1].Kind)
}

func TestCollector_Snapshot_IsIsolatedFromLaterRecords(t *testing.T) {
	// A mid-run snapshot must not see samples recorded after it.
	c := NewCollector()
	c.Record(Sample{Kind: KindWait, Time: 1})
	snap := c.Snapshot()
	c.Record(Sample{Kind: KindWait, Time: 2})

	assert.Len(t, snap, 1)
	assert.Equal(t, 2, c.Len())

	// Mutating the snapshot leaves the collector untouched.
	snap[0].Time = 99
	assert.Equal(t, 1.0, c.Snapshot()[0].Time)
}

func TestCollector_EmptySnapshot(t *testing.T) {
	c := NewCollector()
	assert.Empty(t, c.Snapshot())
	assert.Zero(t, c.Len())
}
