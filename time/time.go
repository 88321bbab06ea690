package time

import (
	"time"

	"github.com/beevik/ntp"
	uatomic "go.uber.org/atomic"

	tplog "github.com/TopiaNetwork/flowlink/log"
)

var DefaultNTPServers = []string{"pool.ntp.org", "time.google.com", "time.cloudflare.com", "asia.pool.ntp.org",
	"europe.pool.ntp.org", "north-america.pool.ntp.org"}

// Clock is the wall clock session and pairing expiries are judged against.
type Clock interface {
	Now() TimeStamp

	// NowAfter checks if current timestamp greater than the given one
	NowAfter(t TimeStamp) bool
}

// TimeStamp is milliseconds since the unix epoch.
type TimeStamp int64

func TimeToTimeStamp(t time.Time) TimeStamp {
	return TimeStamp(t.UnixNano() / int64(time.Millisecond))
}

// UnixSecondsToTimeStamp converts an expiry as carried by the relay protocol.
func UnixSecondsToTimeStamp(sec int64) TimeStamp {
	return TimeStamp(sec * 1e3)
}

func (ts TimeStamp) Local() time.Time {
	return time.Unix(0, int64(ts)*int64(time.Millisecond)).Local()
}

func (ts TimeStamp) Unix() int64 {
	return int64(ts) / 1e3
}

func (ts TimeStamp) After(t TimeStamp) bool {
	return ts > t
}

func (ts TimeStamp) SinceSeconds(t TimeStamp) int64 {
	return int64(ts-t) / 1e3
}

func (ts TimeStamp) AddSeconds(sec int64) TimeStamp {
	return ts + TimeStamp(sec*1e3)
}

func (ts TimeStamp) String() string {
	return ts.Local().String()
}

type systemClock struct{}

func (systemClock) Now() TimeStamp {
	return TimeToTimeStamp(time.Now().UTC())
}

func (c systemClock) NowAfter(t TimeStamp) bool {
	return c.Now().After(t)
}

var SystemClock Clock = systemClock{}

// FixedClock always reads the same time.
type FixedClock TimeStamp

func (c FixedClock) Now() TimeStamp {
	return TimeStamp(c)
}

func (c FixedClock) NowAfter(t TimeStamp) bool {
	return c.Now().After(t)
}

type ntpClock struct {
	log       tplog.Logger
	servers   []string
	ntpOffset *uatomic.Duration
}

const ntpTimerName = "time_sync"

// NewNTPClock returns a clock corrected by the offset reported by the first reachable server.
// The offset is refreshed every interval on timerMng.
func NewNTPClock(log tplog.Logger, servers []string, timerMng TimerManager, interval time.Duration) Clock {
	if len(servers) == 0 {
		servers = DefaultNTPServers
	}
	c := &ntpClock{
		log:       log,
		servers:   servers,
		ntpOffset: uatomic.NewDuration(0),
	}

	timerMng.RegisterPeriodicTimer(ntpTimerName, c.syncRoutine, interval)
	timerMng.StartTimer(ntpTimerName, true)

	return c
}

func (c *ntpClock) syncRoutine() bool {
	for _, server := range c.servers {
		rsp, err := ntp.QueryWithOptions(server, ntp.QueryOptions{Timeout: time.Second})
		if err != nil {
			continue
		}
		c.ntpOffset.Store(rsp.ClockOffset)
		if rsp.ClockOffset.Seconds() > 1 {
			c.log.Warnf("time offset from %v is %v", server, rsp.ClockOffset.String())
		}
		return true
	}
	c.log.Info("time sync timeout")
	return false
}

func (c *ntpClock) Now() TimeStamp {
	return TimeToTimeStamp(time.Now().Add(c.ntpOffset.Load()).UTC())
}

func (c *ntpClock) NowAfter(ts TimeStamp) bool {
	return c.Now().After(ts)
}
