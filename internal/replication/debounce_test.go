package replication

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/assert"
)

func TestDebouncerCoalescesBurst(t *testing.T) {
	clk := clock.NewMock()
	var calls int32
	d := NewDebouncer(clk, 150*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })

	d.Trigger()
	clk.Add(100 * time.Millisecond)
	d.Trigger()
	clk.Add(100 * time.Millisecond)
	d.Trigger()
	clk.Add(149 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "each trigger restarts the wait")

	clk.Add(time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	clk.Add(time.Second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "one call per burst")
}

func TestDebouncerFiresAgainForLaterBurst(t *testing.T) {
	clk := clock.NewMock()
	var calls int32
	d := NewDebouncer(clk, 150*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })

	d.Trigger()
	clk.Add(150 * time.Millisecond)
	d.Trigger()
	clk.Add(150 * time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDebouncerStop(t *testing.T) {
	clk := clock.NewMock()
	var calls int32
	d := NewDebouncer(clk, 150*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })

	d.Trigger()
	d.Stop()
	clk.Add(time.Second)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}
