// Package ratelimit throttles data channel reads with a token bucket.
package ratelimit

import (
	"io"
	"sync"
	"time"
)

// maxWait caps a single sleep so a large read cannot stall for long.
const maxWait = time.Second

// maxChunk caps the size of a single throttled read. Smaller reads keep the
// observed rate close to the configured one.
const maxChunk = 8 * 1024

// Limiter is a token bucket holding at most one second worth of bytes.
type Limiter struct {
	mu     sync.Mutex
	rate   float64 // bytes per second
	tokens float64
	last   time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// New returns a limiter allowing bytesPerSecond on average, or nil when
// bytesPerSecond is not positive. A nil *Limiter does not throttle.
func New(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}
	rate := float64(bytesPerSecond)
	return &Limiter{
		rate:   rate,
		tokens: rate,
		last:   time.Now(),
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Rate returns the configured bytes per second, 0 for a nil limiter.
func (l *Limiter) Rate() int64 {
	if l == nil {
		return 0
	}
	return int64(l.rate)
}

// refill adds the tokens earned since the last call. l.mu must be held.
func (l *Limiter) refill() {
	now := l.now()
	l.tokens += now.Sub(l.last).Seconds() * l.rate
	if l.tokens > l.rate {
		l.tokens = l.rate
	}
	l.last = now
}

// Wait blocks until n bytes may pass. It sleeps at most maxWait; whatever is
// still missing after that is forgiven.
func (l *Limiter) Wait(n int) {
	if l == nil || n <= 0 {
		return
	}

	need := float64(n)

	l.mu.Lock()
	l.refill()
	if l.tokens >= need {
		l.tokens -= need
		l.mu.Unlock()
		return
	}
	wait := time.Duration((need - l.tokens) / l.rate * float64(time.Second))
	l.mu.Unlock()

	if wait > maxWait {
		wait = maxWait
	}
	l.sleep(wait)

	l.mu.Lock()
	l.refill()
	l.tokens -= need
	if l.tokens < 0 {
		l.tokens = 0
	}
	l.mu.Unlock()
}

type reader struct {
	r io.Reader
	l *Limiter
}

// NewReader returns r throttled by l. With a nil limiter r is returned as is.
func NewReader(r io.Reader, l *Limiter) io.Reader {
	if l == nil {
		return r
	}
	return &reader{r: r, l: l}
}

func (r *reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(p) > maxChunk {
		p = p[:maxChunk]
	}
	r.l.Wait(len(p))
	return r.r.Read(p)
}
