package lshdedup_test

import (
	"context"
	"testing"

	"github.com/hupe1980/lshdedup"
	"github.com/hupe1980/lshdedup/dedup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Defaults(t *testing.T) {
	d, err := lshdedup.New().Build()
	require.NoError(t, err)

	assert.Equal(t, 128, d.Config().NumPerm)
	assert.Equal(t, 16, d.Config().NumBands)
	th, ok := d.Threshold()
	assert.True(t, ok)
	assert.Equal(t, 0.4, th)
}

func TestBuilder_FullOptions(t *testing.T) {
	mc := &lshdedup.BasicMetricsCollector{}
	d := lshdedup.New().
		NumPerm(4).
		NumBands(2).
		Seed(0).
		Threshold(0.4).
		Strategy(dedup.StrategyUnionFind).
		Shingler(nil).
		Workers(2).
		MemoryLimit(1 << 20).
		Logger(lshdedup.NoopLogger()).
		Metrics(mc).
		MustBuild()

	res, err := d.Run(context.Background(), exampleRecords)
	require.NoError(t, err)
	assert.Equal(t, [][]uint32{{0, 1}, {2}}, res.Groups())
	assert.Equal(t, dedup.StrategyUnionFind, res.Clusters().Strategy())
	assert.Equal(t, int64(1), mc.GetStats().Runs)
}

func TestBuilder_Immutable(t *testing.T) {
	base := lshdedup.New().NumPerm(64)
	a := base.NumBands(8)
	b := base.NumBands(16)

	da := a.MustBuild()
	db := b.MustBuild()
	assert.Equal(t, 8, da.Config().NumBands)
	assert.Equal(t, 16, db.Config().NumBands)

	c := base.NoThreshold()
	_, ok := c.MustBuild().Threshold()
	assert.False(t, ok)
	_, ok = base.MustBuild().Threshold()
	assert.True(t, ok)
}

func TestBuilder_InvalidPanics(t *testing.T) {
	_, err := lshdedup.New().NumPerm(10).NumBands(3).Build()
	assert.ErrorIs(t, err, lshdedup.ErrInvalidConfig)

	assert.Panics(t, func() {
		lshdedup.New().NumBands(0).MustBuild()
	})
}
