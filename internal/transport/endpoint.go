// Package transport supplies the duplex byte-stream endpoints the channel
// layer is built on. Provisioning is the caller's job; the channel only
// sees the Endpoint contract.
package transport

import (
	"errors"
	"io"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/coalfork/wirebridge/internal/logging"
)

// Endpoint is one half of the channel's transport: a sink for outbound
// bytes plus observers for inbound data and error/end conditions.
//
// Data callbacks are serialized: an endpoint delivers one chunk at a time
// and does not invoke the observer concurrently with itself. Passing a nil
// observer detaches it.
type Endpoint interface {
	Write(p []byte) error
	OnData(fn func(chunk []byte))
	OnError(fn func(err error))
	Destroy() error
}

// DefaultChunkSize is the read size of the StreamEndpoint pump.
const DefaultChunkSize = 64 * 1024

var errEndpointDestroyed = errors.New("transport: endpoint destroyed")

// StreamEndpoint adapts an io.ReadWriteCloser (a net.Conn, an os.Pipe
// pair, ...) to the Endpoint contract with a single read-pump goroutine.
type StreamEndpoint struct {
	rw        io.ReadWriteCloser
	chunkSize int
	log       zerolog.Logger

	mu        sync.Mutex
	onData    func([]byte)
	onError   func(error)
	started   bool
	destroyed bool

	closeOnce sync.Once
	closeErr  error
}

// NewStreamEndpoint wraps rw. The pump does not run until Start; attach
// observers first.
func NewStreamEndpoint(rw io.ReadWriteCloser, chunkSize int) *StreamEndpoint {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &StreamEndpoint{
		rw:        rw,
		chunkSize: chunkSize,
		log:       logging.Logger().With().Str("component", "transport").Logger(),
	}
}

func (e *StreamEndpoint) Write(p []byte) error {
	e.mu.Lock()
	destroyed := e.destroyed
	e.mu.Unlock()
	if destroyed {
		return errEndpointDestroyed
	}
	if _, err := e.rw.Write(p); err != nil {
		return err
	}
	return nil
}

func (e *StreamEndpoint) OnData(fn func([]byte)) {
	e.mu.Lock()
	e.onData = fn
	e.mu.Unlock()
}

func (e *StreamEndpoint) OnError(fn func(error)) {
	e.mu.Lock()
	e.onError = fn
	e.mu.Unlock()
}

// Start launches the read pump. Calling it more than once is a no-op.
func (e *StreamEndpoint) Start() {
	e.mu.Lock()
	if e.started || e.destroyed {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.mu.Unlock()
	go e.pump()
}

func (e *StreamEndpoint) pump() {
	buf := make([]byte, e.chunkSize)
	for {
		n, err := e.rw.Read(buf)
		if n > 0 {
			e.mu.Lock()
			fn := e.onData
			e.mu.Unlock()
			if fn != nil {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				fn(chunk)
			}
		}
		if err != nil {
			e.mu.Lock()
			fn := e.onError
			e.mu.Unlock()
			if fn != nil {
				fn(err)
			} else if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrClosedPipe) && !errors.Is(err, net.ErrClosed) {
				e.log.Warn().Err(err).Msg("unobserved transport error")
			}
			return
		}
	}
}

// Destroy closes the underlying stream; the pump exits on its next read.
// Safe to call repeatedly.
func (e *StreamEndpoint) Destroy() error {
	e.mu.Lock()
	e.destroyed = true
	e.mu.Unlock()
	e.closeOnce.Do(func() {
		e.closeErr = e.rw.Close()
	})
	return e.closeErr
}

// Pair returns two connected endpoints backed by net.Pipe, used by the
// loopback demo and tests. Neither pump is started.
func Pair() (*StreamEndpoint, *StreamEndpoint) {
	c1, c2 := net.Pipe()
	return NewStreamEndpoint(c1, 0), NewStreamEndpoint(c2, 0)
}
