package chatclient

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTyperCoalescesBurstIntoOneStartOneStop(t *testing.T) {
	var starts, stops atomic.Int32
	stopped := make(chan time.Time, 1)

	ty := NewTyper(200*time.Millisecond,
		func() { starts.Add(1) },
		func() {
			stops.Add(1)
			stopped <- time.Now()
		})

	// Three keystrokes 50ms apart; the stop must fire once, the full quiet
	// period after the last one.
	ty.Keystroke()
	time.Sleep(50 * time.Millisecond)
	ty.Keystroke()
	time.Sleep(50 * time.Millisecond)
	last := time.Now()
	ty.Keystroke()

	select {
	case at := <-stopped:
		require.GreaterOrEqual(t, at.Sub(last), 150*time.Millisecond,
			"stop fired before the quiet period elapsed")
	case <-time.After(time.Second):
		t.Fatal("stop signal never fired")
	}

	// No straggler stop from the earlier keystrokes.
	time.Sleep(300 * time.Millisecond)
	require.Equal(t, int32(1), starts.Load())
	require.Equal(t, int32(1), stops.Load())
}

func TestTyperStopEmitsOnlyWhenActive(t *testing.T) {
	var starts, stops atomic.Int32
	ty := NewTyper(time.Hour, func() { starts.Add(1) }, func() { stops.Add(1) })

	ty.Stop() // idle, nothing to emit
	require.Equal(t, int32(0), stops.Load())

	ty.Keystroke()
	ty.Stop()
	ty.Stop()
	require.Equal(t, int32(1), starts.Load())
	require.Equal(t, int32(1), stops.Load())
}

func TestTyperNewBurstAfterQuiet(t *testing.T) {
	var starts, stops atomic.Int32
	ty := NewTyper(30*time.Millisecond, func() { starts.Add(1) }, func() { stops.Add(1) })

	ty.Keystroke()
	time.Sleep(100 * time.Millisecond)
	ty.Keystroke()
	time.Sleep(100 * time.Millisecond)

	require.Equal(t, int32(2), starts.Load())
	require.Equal(t, int32(2), stops.Load())
}
