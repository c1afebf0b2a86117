package detector

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/formfitness/go-formfit/skeleton"
	"gocv.io/x/gocv"
)

// Pool is a simple pool of detectors so live frames and reference image
// loads can run at the same time.  Pool implements Detector.
type Pool struct {
	// pool of detectors
	detectors chan Detector
	// size of pool
	size  int
	close sync.Once
	// closed is shut when the pool is closed so blocked callers return
	closed chan struct{}
}

// NewPool creates a pool of size detectors made by open
func NewPool(size int, open func(i int) (Detector, error)) (*Pool, error) {

	if size < 1 {
		return nil, fmt.Errorf("invalid detector pool size %d", size)
	}

	p := &Pool{
		detectors: make(chan Detector, size),
		size:      size,
		closed:    make(chan struct{}),
	}

	for i := 0; i < size; i++ {
		d, err := open(i)

		if err != nil {
			// close any instances that may have been created before receiving
			// the error
			p.Close()
			return nil, err
		}

		// attach to pool
		p.Return(d)
	}

	return p, nil
}

// Size returns the number of detectors in the pool
func (p *Pool) Size() int {
	return p.size
}

// Get a detector from the pool, blocking until one is free.  It returns
// false once the pool is closed.
func (p *Pool) Get() (Detector, bool) {
	select {
	case d, ok := <-p.detectors:
		return d, ok
	case <-p.closed:
		return nil, false
	}
}

// Return a detector to the pool
func (p *Pool) Return(d Detector) {
	select {
	case <-p.closed:
		// pool is closed
		_ = d.Close()
		return
	default:
	}

	select {
	case p.detectors <- d:
	default:
		// pool is full
		_ = d.Close()
	}
}

// Detect borrows a detector for a single detection
func (p *Pool) Detect(img gocv.Mat, o Orientation) (skeleton.Skeleton, error) {
	d, ok := p.Get()

	if !ok {
		return skeleton.Skeleton{}, ErrClosed
	}

	defer p.Return(d)

	return d.Detect(img, o)
}

// Close the pool and all detectors currently in it.  Detectors out on loan
// are closed when returned.
func (p *Pool) Close() error {
	p.close.Do(func() {
		close(p.closed)

		for {
			select {
			case d := <-p.detectors:
				_ = d.Close()
			default:
				return
			}
		}
	})

	return nil
}

// OpenPool opens cfg.PoolSize ONNX detectors sharing one configuration
func OpenPool(cfg Config, logger *slog.Logger) (*Pool, error) {
	size := cfg.PoolSize

	if size < 1 {
		size = 1
	}

	return NewPool(size, func(int) (Detector, error) {
		d, err := NewONNX(cfg, logger)
		if err != nil {
			return nil, err
		}
		return d, nil
	})
}
