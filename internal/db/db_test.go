package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Farengier/usernotes-bot/internal/orm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	retention int
}

func (c testConfig) Retention() int               { return c.retention }
func (c testConfig) PruneInterval() time.Duration { return time.Hour }

func TestRecordAndRecent(t *testing.T) {
	d, err := New(testConfig{retention: 10})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, d.Record(ctx, &orm.Action{Community: "collapse", TargetID: "a1", Outcome: "handled"}))
	require.NoError(t, d.Record(ctx, &orm.Action{Community: "ufos", TargetID: "b1", Outcome: "failed"}))
	require.NoError(t, d.Record(ctx, &orm.Action{Community: "collapse", TargetID: "a2", Outcome: "handled"}))

	all, err := d.Recent(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a2", all[0].TargetID)

	collapse, err := d.Recent(ctx, "collapse", 1)
	require.NoError(t, err)
	require.Len(t, collapse, 1)
	assert.Equal(t, "a2", collapse[0].TargetID)
}

func TestPrune(t *testing.T) {
	d, err := New(testConfig{retention: 3})
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		require.NoError(t, d.Record(ctx, &orm.Action{Community: "c", TargetID: fmt.Sprintf("t%d", i)}))
	}
	require.NoError(t, d.prune())

	left, err := d.Recent(ctx, "", 100)
	require.NoError(t, err)
	require.Len(t, left, 3)
	assert.Equal(t, "t6", left[0].TargetID)
	assert.Equal(t, "t4", left[2].TargetID)

	require.NoError(t, d.prune())
	left, err = d.Recent(ctx, "", 100)
	require.NoError(t, err)
	assert.Len(t, left, 3)
}
