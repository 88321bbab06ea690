package time

import (
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	tplog "github.com/TopiaNetwork/flowlink/log"
)

// TimerFunc is a timer routine; the result reports whether the run did its work.
type TimerFunc func() bool

type TimerType byte

const (
	TimerType_Unknown TimerType = iota
	TimerType_OneTime
	TimerType_Periodic
)

type TimerStatus int32

const (
	TimerStatus_Unknown TimerStatus = iota
	TimerStatus_Stopped
	TimerStatus_Running
)

// TimerManager runs named routines on a shared ticker.
type TimerManager interface {
	RegisterPeriodicTimer(name string, routine TimerFunc, interval time.Duration)

	RegisterOneTimeRoutine(name string, routine TimerFunc, delay time.Duration)

	RemoveTimer(name string)

	ClearTimers()

	// StartTimer resumes a stopped timer, running it on the next tick if triggerNextTicker is set.
	StartTimer(name string, triggerNextTicker bool)

	// TriggerTimer runs a running timer on the next tick, outside its cadence.
	TriggerTimer(name string)

	StopTimer(name string)

	Stop()
}

type timerRoutine struct {
	id              string
	handler         TimerFunc
	interval        uint64
	lastTicker      uint64
	status          TimerStatus
	triggerNextTick int32
	rType           TimerType
}

type timerManager struct {
	log        tplog.Logger
	id         string
	resolution time.Duration
	ticker     uint64
	timers     sync.Map // key: string, value: *timerRoutine
	spawn      func(fn func())
	quit       chan struct{}
	stopOnce   sync.Once
}

// NewTimerManager starts a manager ticking every resolution.
func NewTimerManager(log tplog.Logger, id string, resolution time.Duration) TimerManager {
	m := newTimerManager(log, id, resolution)
	m.spawn = func(fn func()) { go fn() }

	go m.routine()

	return m
}

func newTimerManager(log tplog.Logger, id string, resolution time.Duration) *timerManager {
	if resolution <= 0 {
		resolution = time.Second
	}
	return &timerManager{
		log:        log,
		id:         id,
		resolution: resolution,
		quit:       make(chan struct{}),
	}
}

func (m *timerManager) ticks(d time.Duration) uint64 {
	t := uint64((d + m.resolution - 1) / m.resolution)
	if t == 0 {
		t = 1
	}
	return t
}

func (m *timerManager) addTimer(name string, tr *timerRoutine) {
	m.timers.Store(name, tr)
}

func (m *timerManager) getTimer(name string) *timerRoutine {
	if v, ok := m.timers.Load(name); ok {
		return v.(*timerRoutine)
	}
	return nil
}

func (m *timerManager) trigger(routine *timerRoutine, t uint64) bool {
	defer func() {
		if routine.rType == TimerType_OneTime {
			m.RemoveTimer(routine.id)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			m.log.Errorf("timer %s of %s: %v", routine.id, m.id, r)
			m.log.Error(string(debug.Stack()))
		}
	}()

	lastTicker := atomic.LoadUint64(&routine.lastTicker)

	if TimerStatus(atomic.LoadInt32((*int32)(&routine.status))) != TimerStatus_Running {
		return false
	}

	b := false
	if lastTicker < t && atomic.CompareAndSwapUint64(&routine.lastTicker, lastTicker, t) {
		b = routine.handler()
	}
	return b
}

func (m *timerManager) tick() {
	t := atomic.AddUint64(&m.ticker, 1)
	m.timers.Range(func(key, value interface{}) bool {
		rt := value.(*timerRoutine)
		if TimerStatus(atomic.LoadInt32((*int32)(&rt.status))) != TimerStatus_Running {
			return true
		}
		triggered := atomic.CompareAndSwapInt32(&rt.triggerNextTick, 1, 0)
		if triggered || t-atomic.LoadUint64(&rt.lastTicker) >= rt.interval {
			m.spawn(func() { m.trigger(rt, t) })
		}
		return true
	})
}

func (m *timerManager) routine() {
	timer := time.NewTicker(m.resolution)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			m.tick()
		case <-m.quit:
			return
		}
	}
}

func (m *timerManager) RegisterPeriodicTimer(name string, routine TimerFunc, interval time.Duration) {
	if rt := m.getTimer(name); rt != nil {
		return
	}
	r := &timerRoutine{
		rType:      TimerType_Periodic,
		interval:   m.ticks(interval),
		handler:    routine,
		lastTicker: atomic.LoadUint64(&m.ticker),
		id:         name,
		status:     TimerStatus_Stopped,
	}
	m.addTimer(name, r)
}

func (m *timerManager) RegisterOneTimeRoutine(name string, routine TimerFunc, delay time.Duration) {
	if rt := m.getTimer(name); rt != nil {
		atomic.StoreUint64(&rt.lastTicker, atomic.LoadUint64(&m.ticker))
		return
	}

	r := &timerRoutine{
		rType:      TimerType_OneTime,
		interval:   m.ticks(delay),
		handler:    routine,
		lastTicker: atomic.LoadUint64(&m.ticker),
		id:         name,
		status:     TimerStatus_Running,
	}
	m.addTimer(name, r)
}

func (m *timerManager) RemoveTimer(name string) {
	m.timers.Delete(name)
}

func (m *timerManager) ClearTimers() {
	m.timers.Range(func(key, value interface{}) bool {
		m.timers.Delete(key)
		return true
	})
}

func (m *timerManager) StartTimer(name string, triggerNextTicker bool) {
	routine := m.getTimer(name)
	if routine == nil {
		return
	}
	if triggerNextTicker {
		atomic.StoreInt32(&routine.triggerNextTick, 1)
	}
	atomic.StoreUint64(&routine.lastTicker, atomic.LoadUint64(&m.ticker))
	atomic.CompareAndSwapInt32((*int32)(&routine.status), int32(TimerStatus_Stopped), int32(TimerStatus_Running))
}

func (m *timerManager) TriggerTimer(name string) {
	if routine := m.getTimer(name); routine != nil {
		atomic.StoreInt32(&routine.triggerNextTick, 1)
	}
}

func (m *timerManager) StopTimer(name string) {
	routine := m.getTimer(name)
	if routine == nil {
		return
	}

	atomic.StoreInt32(&routine.triggerNextTick, 0)
	atomic.CompareAndSwapInt32((*int32)(&routine.status), int32(TimerStatus_Running), int32(TimerStatus_Stopped))
}

func (m *timerManager) Stop() {
	m.stopOnce.Do(func() {
		close(m.quit)
	})
}

// ManualTimerManager advances only when Tick is called and runs routines inline.
type ManualTimerManager struct {
	*timerManager
}

func NewManualTimerManager(log tplog.Logger, id string, resolution time.Duration) *ManualTimerManager {
	m := newTimerManager(log, id, resolution)
	m.spawn = func(fn func()) { fn() }

	return &ManualTimerManager{timerManager: m}
}

// Tick advances the manager by n ticks.
func (m *ManualTimerManager) Tick(n int) {
	for i := 0; i < n; i++ {
		m.tick()
	}
}
