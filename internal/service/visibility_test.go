package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExclusions(t *testing.T) {
	e := newEngine(t, nil)
	require.NoError(t, e.blocks.Create(ctx, "v", "blocked"))
	require.NoError(t, e.blocks.Create(ctx, "blocker", "v"))
	require.NoError(t, e.mutes.Create(ctx, "v", "muted"))
	require.NoError(t, e.mutes.Create(ctx, "other", "v"))
	require.NoError(t, e.blocks.Create(ctx, "x", "y"))

	f := NewVisibilityFilter(e.blocks, e.mutes)
	got, err := f.Exclusions(ctx, "v")
	require.NoError(t, err)
	assert.Equal(t, NewIDSet("blocked", "blocker", "muted"), got)

	anon, err := f.Exclusions(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, anon)
}

func TestIDSetWithout(t *testing.T) {
	s := NewIDSet("a", "b", "c")
	assert.Equal(t, []string{"a", "c"}, s.Without(NewIDSet("b", "z")).Sorted())
}
