package dice

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"sync"
)

// Roller draws one die. Roll returns a uniform integer in [1, sides].
type Roller interface {
	Roll(sides int) int
}

// CryptoRoller draws from crypto/rand. It is the default roller.
type CryptoRoller struct{}

func (CryptoRoller) Roll(sides int) int {
	if sides <= 0 {
		return 0
	}
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(sides)))
	return int(n.Int64()) + 1
}

// SeededRoller is a reproducible pseudo-random roller.
type SeededRoller struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededRoller returns a roller whose sequence is fixed by seed.
func NewSeededRoller(seed int64) *SeededRoller {
	return &SeededRoller{rng: mrand.New(mrand.NewSource(seed))}
}

func (r *SeededRoller) Roll(sides int) int {
	if sides <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(sides) + 1
}

// QueueRoller replays fixed results in order, falling back to another
// roller once the queue is drained. Values are clamped into [1, sides].
type QueueRoller struct {
	mu       sync.Mutex
	queue    []int
	fallback Roller
}

// NewQueueRoller returns a roller that yields values before anything else.
func NewQueueRoller(values ...int) *QueueRoller {
	return &QueueRoller{queue: values, fallback: CryptoRoller{}}
}

// Push appends more results to the queue.
func (r *QueueRoller) Push(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = append(r.queue, values...)
}

// Remaining reports how many queued results are left.
func (r *QueueRoller) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

func (r *QueueRoller) Roll(sides int) int {
	r.mu.Lock()
	if len(r.queue) == 0 {
		r.mu.Unlock()
		return r.fallback.Roll(sides)
	}
	v := r.queue[0]
	r.queue = r.queue[1:]
	r.mu.Unlock()

	switch {
	case v < 1:
		return 1
	case v > sides:
		return sides
	}
	return v
}
