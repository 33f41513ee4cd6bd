package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/agent-bridge-go/internal/config"
	"github.com/wagiedev/agent-bridge-go/internal/errors"
	"github.com/wagiedev/agent-bridge-go/internal/protocol"
	"github.com/wagiedev/agent-bridge-go/internal/rtc"
	"github.com/wagiedev/agent-bridge-go/internal/tool"
)

// Session drives one transport and protocol controller at a time.
type Session struct {
	log      *slog.Logger
	options  *config.Options
	registry *tool.Registry

	mu         sync.Mutex
	state      State
	gen        uint64 // Incremented by every Start and Stop; stale work checks it
	id         string
	transport  config.Transport
	controller *protocol.Controller
	cancel     context.CancelFunc
	eg         *errgroup.Group
	lastErr    error

	// last is the most recent controller, kept after teardown for Wait.
	last *protocol.Controller

	// stopMu serializes Stop calls so a second Stop waits for the first.
	stopMu sync.Mutex
}

// New creates an idle session.
//
// The registry is sealed on the first Start.
func New(log *slog.Logger, options *config.Options, registry *tool.Registry) *Session {
	if options == nil {
		options = &config.Options{}
	}

	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Session{
		log:      log.With("component", "session"),
		options:  options,
		registry: registry,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// ID returns the identifier of the current or most recent session, or an
// empty string before the first Start.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.id
}

// LastError returns the error that ended the most recent session, if it
// failed to start or was lost. It is cleared by Start.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastErr
}

// Start negotiates a new session.
//
// Start is a no-op while the session is Connecting or Open. It returns once
// negotiation has completed; the session becomes Open when the control channel
// opens. A negotiation failure is returned as *errors.TransportError and the
// session reverts to Idle.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()

	switch s.state {
	case StateConnecting, StateOpen:
		s.mu.Unlock()
		s.log.Debug("Start ignored, session already active", "state", s.state.String())

		return nil
	case StateClosing:
		s.mu.Unlock()

		return fmt.Errorf("start session: %w", errors.ErrSessionStopped)
	default:
	}

	s.gen++
	gen := s.gen
	s.state = StateConnecting
	s.id = ulid.Make().String()
	s.lastErr = nil
	id := s.id
	s.mu.Unlock()

	log := s.log.With("session_id", id)
	log.Info("Starting session")

	s.registry.Seal()

	transport, err := s.newTransport(log)
	if err != nil {
		return s.abortStart(gen, nil, &errors.TransportError{Op: "create", Err: err})
	}

	// Publish the transport so a concurrent Stop can close it mid-negotiation.
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		_ = transport.Close()

		return fmt.Errorf("start session: %w", errors.ErrSessionStopped)
	}

	s.transport = transport
	s.mu.Unlock()

	if err := transport.Start(ctx); err != nil {
		var transportErr *errors.TransportError
		if !stderrors.As(err, &transportErr) {
			err = &errors.TransportError{Op: "start", Err: err}
		}

		return s.abortStart(gen, transport, err)
	}

	runCtx, cancel := context.WithCancel(context.Background())

	controller := protocol.NewController(log, transport, s.registry, protocol.Config{
		Modalities:   s.options.Modalities,
		Instructions: s.options.Instructions,
		Voice:        s.options.Voice,
		AutoRespond:  s.options.AutoRespond,
		OnEvent:      s.options.OnEvent,
	})

	eg, egCtx := errgroup.WithContext(runCtx)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		cancel()
		_ = transport.Close()

		return fmt.Errorf("start session: %w", errors.ErrSessionStopped)
	}

	s.controller = controller
	s.last = controller
	s.cancel = cancel
	s.eg = eg
	s.mu.Unlock()

	if err := controller.Start(runCtx); err != nil {
		s.teardown(gen, &errors.TransportError{Op: "start protocol", Err: err}, true)

		return err
	}

	eg.Go(func() error {
		s.watch(egCtx, log, gen, transport, controller)

		return nil
	})

	log.Info("Session negotiated, waiting for control channel")

	return nil
}

// newTransport creates the transport for one session.
func (s *Session) newTransport(log *slog.Logger) (config.Transport, error) {
	if s.options.NewTransport != nil {
		log.Debug("Using injected transport factory")

		return s.options.NewTransport(log)
	}

	return rtc.NewPeerTransport(log, s.options), nil
}

// abortStart reverts a failed Start to Idle and records the error.
func (s *Session) abortStart(gen uint64, transport config.Transport, err error) error {
	s.log.Error("Session start failed", "error", err)

	if transport != nil {
		_ = transport.Close()
	}

	s.mu.Lock()
	if s.gen == gen {
		s.state = StateIdle
		s.transport = nil
		s.lastErr = err
	}
	s.mu.Unlock()

	return err
}

// watch moves the session to Open when the control channel opens and tears
// it down when the controller stops on a transport failure.
func (s *Session) watch(
	ctx context.Context,
	log *slog.Logger,
	gen uint64,
	transport config.Transport,
	controller *protocol.Controller,
) {
	var openTimeout <-chan time.Time

	if s.options.OpenTimeout > 0 {
		timer := time.NewTimer(s.options.OpenTimeout)
		defer timer.Stop()

		openTimeout = timer.C
	}

	select {
	case <-openTimeout:
		err := &errors.TransportError{
			Op:  "open",
			Err: fmt.Errorf("control channel not open after %s", s.options.OpenTimeout),
		}

		log.Warn("Control channel did not open", "error", err)
		s.teardown(gen, err, false)

		return

	case <-transport.Opened():
		s.mu.Lock()
		current := s.gen == gen && s.state == StateConnecting
		if current {
			s.state = StateOpen
		}
		s.mu.Unlock()

		if !current {
			return
		}

		log.Info("Session open")

		if err := controller.OnChannelOpen(ctx); err != nil {
			log.Error("Failed to configure session", "error", err)
			s.teardown(gen, &errors.TransportError{Op: "configure", Err: err}, false)

			return
		}

	case <-controller.Done():
	case <-ctx.Done():
		return
	}

	select {
	case <-controller.Done():
		if err := controller.FatalError(); err != nil {
			var transportErr *errors.TransportError
			if !stderrors.As(err, &transportErr) {
				err = &errors.TransportError{Op: "session", Err: err}
			}

			log.Warn("Session lost", "error", err)
			s.teardown(gen, err, false)
		}
	case <-ctx.Done():
	}
}

// Wait blocks until the tool invocations of the most recent session have
// returned. Their results are discarded if the session was stopped.
func (s *Session) Wait() {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if last != nil {
		last.Wait()
	}
}

// Stop closes the session and returns to Idle.
//
// Pending tool invocations are cancelled and their results discarded.
// Stop is a no-op while Idle.
func (s *Session) Stop() error {
	s.stopMu.Lock()
	defer s.stopMu.Unlock()

	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	return s.teardown(gen, nil, true)
}

// teardown closes the session of generation gen. cause is recorded as the
// last error. wait reports whether to wait for the watcher goroutine, which
// must be false when called from it.
func (s *Session) teardown(gen uint64, cause error, wait bool) error {
	s.mu.Lock()
	if s.gen != gen || s.state == StateIdle || s.state == StateClosing {
		s.mu.Unlock()

		return nil
	}

	s.gen++
	gen = s.gen
	s.state = StateClosing
	transport := s.transport
	controller := s.controller
	cancel := s.cancel
	eg := s.eg
	s.transport = nil
	s.controller = nil
	s.cancel = nil
	s.eg = nil

	if cause != nil {
		s.lastErr = cause
	}
	s.mu.Unlock()

	s.log.Info("Closing session", "session_id", s.ID())

	if controller != nil {
		controller.Stop()
	}

	if cancel != nil {
		cancel()
	}

	var closeErr error
	if transport != nil {
		closeErr = transport.Close()
	}

	if wait && eg != nil {
		if err := eg.Wait(); err != nil && closeErr == nil {
			closeErr = err
		}
	}

	s.mu.Lock()
	if s.gen == gen {
		s.state = StateIdle
	}
	s.mu.Unlock()

	s.log.Info("Session closed")

	return closeErr
}
