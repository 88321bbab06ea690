package time

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	uatomic "go.uber.org/atomic"

	tplog "github.com/TopiaNetwork/flowlink/log"
)

func TestPeriodicTimerCadence(t *testing.T) {
	m := NewManualTimerManager(tplog.CreateNopLogger(), "test", time.Second)

	runs := uatomic.NewInt32(0)
	m.RegisterPeriodicTimer("p", func() bool {
		runs.Inc()
		return true
	}, 5*time.Second)

	m.Tick(10)
	assert.Equal(t, int32(0), runs.Load(), "stopped timer never runs")

	m.StartTimer("p", false)
	m.Tick(4)
	assert.Equal(t, int32(0), runs.Load())
	m.Tick(1)
	assert.Equal(t, int32(1), runs.Load())
	m.Tick(5)
	assert.Equal(t, int32(2), runs.Load())

	m.StopTimer("p")
	m.Tick(20)
	assert.Equal(t, int32(2), runs.Load())
}

func TestStartTimerTriggersNextTick(t *testing.T) {
	m := NewManualTimerManager(tplog.CreateNopLogger(), "test", time.Second)

	runs := uatomic.NewInt32(0)
	m.RegisterPeriodicTimer("p", func() bool {
		runs.Inc()
		return true
	}, 5*time.Second)

	m.StartTimer("p", true)
	m.Tick(1)
	assert.Equal(t, int32(1), runs.Load())

	m.TriggerTimer("p")
	m.Tick(1)
	assert.Equal(t, int32(2), runs.Load())

	m.Tick(4)
	assert.Equal(t, int32(2), runs.Load())
	m.Tick(1)
	assert.Equal(t, int32(3), runs.Load())
}

func TestOneTimeRoutineRemovesItself(t *testing.T) {
	m := NewManualTimerManager(tplog.CreateNopLogger(), "test", time.Second)

	runs := uatomic.NewInt32(0)
	m.RegisterOneTimeRoutine("once", func() bool {
		runs.Inc()
		return true
	}, 2*time.Second)

	m.Tick(5)
	assert.Equal(t, int32(1), runs.Load())
	assert.Nil(t, m.getTimer("once"))
}

func TestPanickingRoutineIsRecovered(t *testing.T) {
	m := NewManualTimerManager(tplog.CreateNopLogger(), "test", time.Second)
	m.RegisterPeriodicTimer("p", func() bool {
		panic("boom")
	}, time.Second)
	m.StartTimer("p", false)

	assert.NotPanics(t, func() { m.Tick(3) })
}

func TestTimeStamp(t *testing.T) {
	ts := UnixSecondsToTimeStamp(1700000000)
	assert.Equal(t, int64(1700000000), ts.Unix())
	assert.True(t, ts.AddSeconds(1).After(ts))
	assert.Equal(t, int64(30), ts.AddSeconds(30).SinceSeconds(ts))

	clock := FixedClock(ts)
	assert.True(t, clock.NowAfter(ts.AddSeconds(-1)))
	assert.False(t, clock.NowAfter(ts))
}
