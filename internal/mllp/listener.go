package mllp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultReadTimeout = 30 * time.Second
	shutdownPollStep   = 50 * time.Millisecond
)

// Handler processes one received HL7 message and returns the ACK payload to
// write back. remote identifies the sending connection.
type Handler func(ctx context.Context, message string, remote net.Addr) string

// Listener is an MLLP server: it accepts TCP connections, reads one framed
// HL7 message per connection, delegates to the handler, and answers with
// the returned ACK.
type Listener struct {
	addr        string
	handler     Handler
	logger      *zap.Logger
	readTimeout time.Duration

	mu     sync.Mutex
	ln     net.Listener
	closed bool
	wg     sync.WaitGroup
}

func NewListener(addr string, handler Handler, logger *zap.Logger) (*Listener, error) {
	if handler == nil {
		return nil, fmt.Errorf("mllp handler is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Listener{
		addr:        addr,
		handler:     handler,
		logger:      logger,
		readTimeout: defaultReadTimeout,
	}, nil
}

// Start binds the listen address and begins accepting connections in the
// background. It returns once the socket is bound.
func (l *Listener) Start() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.addr, err)
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		ln.Close()
		return fmt.Errorf("listener already shut down")
	}
	l.ln = ln
	l.mu.Unlock()

	l.logger.Info("mllp listener started", zap.String("addr", ln.Addr().String()))

	l.wg.Add(1)
	go l.acceptLoop(ln)

	return nil
}

// Addr returns the bound address, or nil before Start.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

// Shutdown stops accepting and waits for in-flight connections until ctx
// expires.
func (l *Listener) Shutdown(ctx context.Context) error {
	l.mu.Lock()
	l.closed = true
	ln := l.ln
	l.ln = nil
	l.mu.Unlock()

	if ln != nil {
		if err := ln.Close(); err != nil {
			l.logger.Warn("failed to close mllp listener socket", zap.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		l.logger.Info("mllp listener stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mllp shutdown: %w", ctx.Err())
	}
}

func (l *Listener) acceptLoop(ln net.Listener) {
	defer l.wg.Done()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			l.logger.Error("mllp accept failed", zap.Error(err))
			time.Sleep(shutdownPollStep)
			continue
		}

		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			l.handleConn(conn)
		}()
	}
}

func (l *Listener) handleConn(conn net.Conn) {
	defer conn.Close()

	remote := conn.RemoteAddr()
	logger := l.logger.With(zap.String("remote", remote.String()))

	if err := conn.SetDeadline(time.Now().Add(l.readTimeout)); err != nil {
		logger.Warn("failed to set connection deadline", zap.Error(err))
		return
	}

	payload, err := ReadFrame(bufio.NewReader(conn))
	if err != nil {
		logger.Warn("failed to read mllp message", zap.Error(err))
		return
	}

	logger.Debug("mllp message received", zap.Int("bytes", len(payload)))

	ctx, cancel := context.WithTimeout(context.Background(), l.readTimeout)
	defer cancel()

	ack := l.handler(ctx, string(payload), remote)
	if ack == "" {
		return
	}

	if err := WriteFrame(conn, []byte(ack)); err != nil {
		logger.Warn("failed to write ack", zap.Error(err))
	}
}
