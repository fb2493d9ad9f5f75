package server

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/suderio/rolldice/internal/logger"
)

// Pinger keeps a sleeping host awake for a number of heartbeats after the
// last sign of activity by requesting its own public URL.
type Pinger struct {
	url       string
	beats     int32
	remaining atomic.Int32
	client    *fasthttp.Client
	timeout   time.Duration
}

// NewPinger returns a pinger for url that stays alive for beats heartbeats
// after each Touch. An empty url disables pinging.
func NewPinger(url string, beats int) *Pinger {
	return &Pinger{
		url:     url,
		beats:   int32(beats),
		client:  &fasthttp.Client{},
		timeout: 10 * time.Second,
	}
}

// Touch records activity and restarts the heartbeat count.
func (p *Pinger) Touch() {
	p.remaining.Store(p.beats)
}

// Remaining is how many heartbeats are left.
func (p *Pinger) Remaining() int {
	return int(p.remaining.Load())
}

// Beat spends one heartbeat on a ping. It does nothing once the count has
// run out.
func (p *Pinger) Beat() error {
	if p.url == "" {
		return nil
	}
	for {
		n := p.remaining.Load()
		if n <= 0 {
			return nil
		}
		if p.remaining.CompareAndSwap(n, n-1) {
			break
		}
	}
	logger.Debug("staying alive", zap.Int("remaining", p.Remaining()))

	status, _, err := p.client.GetTimeout(nil, p.url, p.timeout)
	if err != nil {
		return fmt.Errorf("keep-alive ping failed: %w", err)
	}
	if status >= fasthttp.StatusBadRequest {
		return fmt.Errorf("keep-alive ping returned status %d", status)
	}
	return nil
}
