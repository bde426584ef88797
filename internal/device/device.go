// Package device abstracts the parallel numeric device used for the
// disparity to depth transform, and provides the Depth Converter on top
// of it.
package device

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrFreed is returned when a buffer is used after Free.
	ErrFreed = errors.New("device: buffer already freed")
	// ErrSize is returned when host and device sizes disagree.
	ErrSize = errors.New("device: size mismatch")
)

// Buffer is a device-resident float32 array. Its contents are reachable
// only through Upload and Download.
type Buffer struct {
	id   uint64
	n    int
	data []float32
}

// Len returns the number of elements in b.
func (b *Buffer) Len() int { return b.n }

// Device is a data-parallel numeric device. Every operation blocks until
// the device has finished.
type Device interface {
	Alloc(n int) (*Buffer, error)
	Free(b *Buffer) error
	Upload(dst *Buffer, src []float32) error
	Download(dst []float32, src *Buffer) error
	// Disp2Depth writes focal*baseline/disp element-wise from src to dst.
	Disp2Depth(dst, src *Buffer, focal, baseline float32) error
	// Live reports the number of allocated, not yet freed buffers.
	Live() int
}

// HostDevice runs kernels on the host CPU across a bounded set of
// goroutines.
type HostDevice struct {
	workers int

	mu     sync.Mutex
	nextID uint64
	live   map[uint64]*Buffer
}

// NewHostDevice returns a device using up to workers goroutines per kernel;
// workers <= 0 means GOMAXPROCS.
func NewHostDevice(workers int) *HostDevice {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &HostDevice{workers: workers, live: make(map[uint64]*Buffer)}
}

// Workers returns the kernel parallelism.
func (d *HostDevice) Workers() int { return d.workers }

func (d *HostDevice) Alloc(n int) (*Buffer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("device: invalid allocation of %d elements", n)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	b := &Buffer{id: d.nextID, n: n, data: make([]float32, n)}
	d.live[b.id] = b
	return b, nil
}

func (d *HostDevice) Free(b *Buffer) error {
	if err := d.check(b); err != nil {
		return err
	}
	d.mu.Lock()
	delete(d.live, b.id)
	d.mu.Unlock()
	b.data = nil
	return nil
}

func (d *HostDevice) Upload(dst *Buffer, src []float32) error {
	if err := d.check(dst); err != nil {
		return err
	}
	if len(src) != dst.n {
		return fmt.Errorf("%w: upload %d into %d", ErrSize, len(src), dst.n)
	}
	copy(dst.data, src)
	return nil
}

func (d *HostDevice) Download(dst []float32, src *Buffer) error {
	if err := d.check(src); err != nil {
		return err
	}
	if len(dst) != src.n {
		return fmt.Errorf("%w: download %d into %d", ErrSize, src.n, len(dst))
	}
	copy(dst, src.data)
	return nil
}

func (d *HostDevice) Disp2Depth(dst, src *Buffer, focal, baseline float32) error {
	if err := d.check(dst); err != nil {
		return err
	}
	if err := d.check(src); err != nil {
		return err
	}
	if dst.n != src.n {
		return fmt.Errorf("%w: kernel %d -> %d", ErrSize, src.n, dst.n)
	}

	fb := focal * baseline
	chunk := (src.n + d.workers - 1) / d.workers
	var g errgroup.Group
	for lo := 0; lo < src.n; lo += chunk {
		hi := min(lo+chunk, src.n)
		g.Go(func() error {
			in, out := src.data[lo:hi], dst.data[lo:hi]
			for i, v := range in {
				out[i] = fb / v
			}
			return nil
		})
	}
	return g.Wait()
}

func (d *HostDevice) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

func (d *HostDevice) check(b *Buffer) error {
	if b == nil {
		return fmt.Errorf("device: nil buffer")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.live[b.id] != b {
		return ErrFreed
	}
	return nil
}
