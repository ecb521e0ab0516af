package tiff

import (
	"io"
	"sync"

	"github.com/pkg/errors"
)

// AcquirePolicy selects what Pool.Acquire does when every pixel slot is checked out.
type AcquirePolicy int

const (
	// FailFast makes Acquire return ErrPoolExhausted.
	FailFast AcquirePolicy = iota
	// Block makes Acquire wait until a slot is released.
	Block
)

func (p AcquirePolicy) String() string {
	switch p {
	case FailFast:
		return "fail-fast"
	case Block:
		return "block"
	default:
		return "unknown"
	}
}

// PoolConfig sizes a Pool.
type PoolConfig struct {
	Slots      int // Number of pixel slots, one per live Page.
	SlotSize   int // Capacity of each pixel slot in bytes.
	HeaderSize int // Capacity of the header/tag slot in bytes, at least 16.
	Policy     AcquirePolicy
}

// DefaultPoolConfig is used by readers that are not given a pool.
var DefaultPoolConfig = PoolConfig{
	Slots:      5,
	SlotSize:   128,
	HeaderSize: 32,
	Policy:     FailFast,
}

// PoolStats is a snapshot of the pool counters.
type PoolStats struct {
	InUse  int
	Hits   uint64
	Misses uint64
}

// slot is a lockable scratch buffer remembering which strip bytes it holds.
type slot struct {
	mu  sync.Mutex
	buf []byte

	busy bool

	// Cache descriptor: buf[:length] holds the bytes of strip at [start, start+length).
	cached bool
	strip  int
	start  int64
	length int
}

func (s *slot) invalidate() {
	s.cached = false
	s.strip = 0
	s.start = 0
	s.length = 0
}

// A Pool is a bounded set of scratch buffers shared by the readers and pages
// using it. The header slot serializes header and out-of-line tag reads; each
// pixel slot is checked out by one Page for its lifetime.
type Pool struct {
	cfg    PoolConfig
	header *slot
	slots  []*slot

	mu   sync.Mutex // Guards busy flags and counters.
	cond *sync.Cond

	inUse  int
	hits   uint64
	misses uint64
}

// NewPool allocates a pool sized by cfg.
func NewPool(cfg PoolConfig) (*Pool, error) {
	if cfg.Slots < 1 {
		return nil, errors.Errorf("tiff: pool needs at least one slot, got %d", cfg.Slots)
	}
	if cfg.HeaderSize < 16 {
		return nil, errors.Errorf("tiff: header slot must hold at least 16 bytes, got %d", cfg.HeaderSize)
	}
	if cfg.SlotSize < 8 {
		return nil, errors.Errorf("tiff: pixel slot must hold at least 8 bytes, got %d", cfg.SlotSize)
	}

	p := &Pool{
		cfg:    cfg,
		header: &slot{buf: make([]byte, cfg.HeaderSize)},
		slots:  make([]*slot, cfg.Slots),
	}
	for i := range p.slots {
		p.slots[i] = &slot{buf: make([]byte, cfg.SlotSize)}
	}
	p.cond = sync.NewCond(&p.mu)
	return p, nil
}

// Config returns the configuration the pool was built with.
func (p *Pool) Config() PoolConfig {
	return p.cfg
}

// Acquire checks out a free pixel slot and returns its id.
func (p *Pool) Acquire() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		for id, s := range p.slots {
			if !s.busy {
				s.busy = true
				p.inUse++
				return id, nil
			}
		}
		if p.cfg.Policy != Block {
			return -1, ErrPoolExhausted
		}
		p.cond.Wait()
	}
}

// Release returns the slot id to the pool and forgets its cached range.
func (p *Pool) Release(id int) error {
	if id < 0 || id >= len(p.slots) {
		return InternalError("release of unknown slot")
	}

	s := p.slots[id]
	s.mu.Lock()
	s.invalidate()
	s.mu.Unlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if !s.busy {
		return InternalError("release of a free slot")
	}
	s.busy = false
	p.inUse--
	p.cond.Signal()
	return nil
}

// Lock serializes fills and reads of the pixel slot id.
func (p *Pool) Lock(id int) {
	p.slots[id].mu.Lock()
}

// Unlock releases the lock taken by Lock.
func (p *Pool) Unlock(id int) {
	p.slots[id].mu.Unlock()
}

// Stats returns the current counters.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{InUse: p.inUse, Hits: p.hits, Misses: p.misses}
}

func (p *Pool) count(hit bool) {
	p.mu.Lock()
	if hit {
		p.hits++
	} else {
		p.misses++
	}
	p.mu.Unlock()
}

// readHeader fills the header slot with n bytes at off and hands them to fn
// while holding the slot lock.
func (p *Pool) readHeader(src io.ReaderAt, off int64, n int, fn func(b []byte)) error {
	if n > len(p.header.buf) {
		return InternalError("header read larger than header slot")
	}

	p.header.mu.Lock()
	defer p.header.mu.Unlock()

	b := p.header.buf[:n]
	if err := readFull(src, b, off); err != nil {
		return err
	}
	fn(b)
	return nil
}

// readChunked reads count elements of width size at off through the header
// slot, size-aligned chunks at a time, handing each chunk to fn.
func (p *Pool) readChunked(src io.ReaderAt, off int64, count, size int, fn func(chunk []byte)) error {
	step := (len(p.header.buf) / size) * size
	total := count * size

	p.header.mu.Lock()
	defer p.header.mu.Unlock()

	for look := 0; look < total; look += step {
		n := min(step, total-look)
		b := p.header.buf[:n]
		if err := readFull(src, b, off+int64(look)); err != nil {
			return err
		}
		fn(b)
	}
	return nil
}

// fetch returns n bytes located intra bytes into strip, which starts at file
// offset stripOff and spans stripLen bytes. The caller holds the slot lock and
// must not keep the returned slice after unlocking.
//
// A request lying inside the cached range is served without reading; otherwise
// the slot is refilled with as much of the strip as it holds from intra on.
func (p *Pool) fetch(src io.ReaderAt, id, strip int, stripOff int64, stripLen int, intra int64, n int) ([]byte, error) {
	s := p.slots[id]
	if n > len(s.buf) {
		return nil, InternalError("pixel larger than pool slot")
	}

	if s.cached && s.strip == strip && intra >= s.start && intra+int64(n) <= s.start+int64(s.length) {
		p.count(true)
		i := int(intra - s.start)
		return s.buf[i : i+n], nil
	}

	length := min(len(s.buf), stripLen-int(intra))
	if length < n {
		length = n
	}
	s.invalidate()
	if err := readFull(src, s.buf[:length], stripOff+intra); err != nil {
		return nil, err
	}
	s.cached = true
	s.strip = strip
	s.start = intra
	s.length = length
	p.count(false)
	return s.buf[:n], nil
}
