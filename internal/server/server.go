// Package server accepts TCP connections and serves each one as a job
// on a worker pool.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	lg "github.com/Andrej220/go-utils/zlog"
	"go.uber.org/multierr"
	"golang.org/x/net/netutil"

	workerpool "github.com/azargarov/connpool"
	"github.com/azargarov/connpool/internal/httpmsg"
)

const (
	defaultAddr         = "0.0.0.0:8000"
	defaultWorkers      = 4
	defaultPollInterval = 50 * time.Millisecond
	defaultReadTimeout  = 30 * time.Second
	rejectWriteTimeout  = time.Second
)

// Config holds the server settings.
type Config struct {
	Addr string

	Workers       int
	QueueCapacity int
	Overload      workerpool.OverloadPolicy

	// MaxConnections caps concurrently open connections; 0 means no cap.
	MaxConnections int

	ReadTimeout time.Duration

	// PollInterval is how often the control loop checks the shutdown
	// flag and drains finished exchanges.
	PollInterval time.Duration

	// ShutdownTimeout bounds the wait for in-flight jobs; 0 waits forever.
	ShutdownTimeout time.Duration

	AcceptRetry RetryPolicy
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:         defaultAddr,
		Workers:      defaultWorkers,
		ReadTimeout:  defaultReadTimeout,
		PollInterval: defaultPollInterval,
		AcceptRetry:  DefaultRetryPolicy(),
	}
}

func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	c.AcceptRetry = c.AcceptRetry.withDefaults()
}

// Server owns the listener, the worker pool and the shutdown flag.
//
// The control loop runs in Serve: it hands accepted connections to the
// pool, drains finished exchanges and polls the shutdown flag. Anything
// may call RequestShutdown; a signal handler usually does.
type Server struct {
	cfg     Config
	handle  HandlerFunc
	metrics workerpool.MetricsPolicy

	shutdown atomic.Bool

	mu       sync.Mutex
	listener net.Listener
	ready    chan struct{}

	served   atomic.Uint64
	failed   atomic.Uint64
	rejected atomic.Uint64
}

// New builds a server. A nil metrics discards pool metrics.
func New(cfg Config, handle HandlerFunc, metrics workerpool.MetricsPolicy) *Server {
	cfg.fillDefaults()
	if metrics == nil {
		metrics = &workerpool.NoopMetrics{}
	}
	return &Server{
		cfg:     cfg,
		handle:  handle,
		metrics: metrics,
		ready:   make(chan struct{}),
	}
}

// RequestShutdown sets the shutdown flag. Serve notices it within one
// poll interval.
func (s *Server) RequestShutdown() { s.shutdown.Store(true) }

// ShutdownRequested reports whether the shutdown flag is set.
func (s *Server) ShutdownRequested() bool { return s.shutdown.Load() }

// Ready is closed once Serve is listening, or once it has failed to
// start; Addr is nil in the latter case.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr returns the listen address, or nil before Ready.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) Served() uint64   { return s.served.Load() }
func (s *Server) Failed() uint64   { return s.failed.Load() }
func (s *Server) Rejected() uint64 { return s.rejected.Load() }

// ListenAndServe listens on cfg.Addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, l)
}

// Serve runs the control loop on l until the shutdown flag is set, ctx
// ends, or accepting fails for good. It then stops accepting, shuts the
// pool down and waits for in-flight connections. Serve closes l.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	logger := lg.FromContext(ctx)

	pool, err := workerpool.NewPool[Exchange](s.metrics, workerpool.Options{
		Workers:       s.cfg.Workers,
		QueueCapacity: s.cfg.QueueCapacity,
		Overload:      s.cfg.Overload,
		Results:       true,
		Ctx:           ctx,
	})
	if err != nil {
		l.Close()
		close(s.ready)
		return fmt.Errorf("server: %w", err)
	}

	if s.cfg.MaxConnections > 0 {
		l = netutil.LimitListener(l, s.cfg.MaxConnections)
	}
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	close(s.ready)

	logger.Info("server listening",
		lg.String("addr", l.Addr().String()),
		lg.Int("workers", pool.Workers()),
		lg.Int("max_connections", s.cfg.MaxConnections),
	)

	conns := make(chan net.Conn)
	acceptErr := make(chan error, 1)
	stop := make(chan struct{})
	acceptDone := make(chan struct{})
	go func() {
		defer close(acceptDone)
		s.acceptLoop(ctx, l, conns, acceptErr, stop)
	}()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	var serveErr error
	for !s.shutdown.Load() {
		select {
		case conn := <-conns:
			s.submit(ctx, pool, conn)
		case serveErr = <-acceptErr:
			s.shutdown.Store(true)
		case <-ctx.Done():
			s.shutdown.Store(true)
		case <-ticker.C:
			s.drainResults(ctx, pool)
		}
	}

	logger.Info("shutdown requested, draining")
	close(stop)
	closeErr := l.Close()
	if errors.Is(closeErr, net.ErrClosed) {
		closeErr = nil
	}
	<-acceptDone

	shutdownCtx := context.Background()
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(shutdownCtx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	poolErr := pool.Shutdown(shutdownCtx)
	s.drainResults(ctx, pool)

	logger.Info("server stopped",
		lg.Any("served", s.served.Load()),
		lg.Any("failed", s.failed.Load()),
		lg.Any("rejected", s.rejected.Load()),
	)
	return multierr.Combine(serveErr, closeErr, poolErr)
}

// acceptLoop feeds accepted connections to the control loop until stop
// is closed. Accept failures back off; too many in a row are fatal.
func (s *Server) acceptLoop(ctx context.Context, l net.Listener, conns chan<- net.Conn, errc chan<- error, stop <-chan struct{}) {
	logger := lg.FromContext(ctx)
	bo := newAcceptBackoff(s.cfg.AcceptRetry)

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-stop:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				errc <- fmt.Errorf("server: listener closed: %w", err)
				return
			}
			delay, exhausted := bo.fail()
			if exhausted {
				errc <- fmt.Errorf("server: accept: %w", err)
				return
			}
			logger.Warn("accept failed; backing off",
				lg.String("sleep", delay.String()),
				lg.Any("error", err),
			)
			select {
			case <-time.After(delay):
			case <-stop:
				return
			}
			continue
		}
		bo.reset()

		select {
		case conns <- conn:
		case <-stop:
			conn.Close()
			return
		}
	}
}

// submit wraps conn into a job. A connection the pool refuses gets a
// 503 and is closed.
func (s *Server) submit(ctx context.Context, pool *workerpool.Pool[Exchange, workerpool.MetricsPolicy], conn net.Conn) {
	err := pool.Submit(&ConnJob{Conn: conn, Handle: s.handle})
	if err == nil {
		return
	}

	s.rejected.Add(1)
	lg.FromContext(ctx).Warn("connection rejected",
		lg.String("remote", conn.RemoteAddr().String()),
		lg.Any("error", err),
	)
	_ = conn.SetWriteDeadline(time.Now().Add(rejectWriteTimeout))
	_, _ = httpmsg.ServiceUnavailable().Body(err.Error()).Build().WriteTo(conn)
	conn.Close()
}

// drainResults logs every finished exchange without blocking.
func (s *Server) drainResults(ctx context.Context, pool *workerpool.Pool[Exchange, workerpool.MetricsPolicy]) {
	logger := lg.FromContext(ctx)
	for {
		r, ok := pool.TryTakeResult()
		if !ok {
			return
		}
		ex := r.Value
		if r.Err != nil {
			s.failed.Add(1)
			var pe *workerpool.PanicError
			if errors.As(r.Err, &pe) {
				logger.Error("request abandoned", lg.Any("panic", pe.Value))
				continue
			}
			logger.Warn("request failed",
				lg.String("remote", ex.Remote),
				lg.String("method", ex.Method),
				lg.String("path", ex.Path),
				lg.Int("status", ex.Status),
				lg.Any("error", r.Err),
			)
			continue
		}
		s.served.Add(1)
		logger.Info("request",
			lg.String("remote", ex.Remote),
			lg.String("method", ex.Method),
			lg.String("path", ex.Path),
			lg.Int("status", ex.Status),
			lg.String("elapsed", ex.Elapsed.String()),
		)
	}
}
