package protocol

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/wagiedev/agent-bridge-go/internal/errors"
	"github.com/wagiedev/agent-bridge-go/internal/tool"
)

// maxLoggedFrame bounds how much of a malformed frame is kept for logging.
const maxLoggedFrame = 256

// Transport defines the minimal interface needed for protocol operations.
//
// This interface is satisfied by the session transports but allows for
// testing with mock transports.
type Transport interface {
	ReadMessages(ctx context.Context) (<-chan []byte, <-chan error)
	SendMessage(ctx context.Context, data []byte) error
}

// Config controls the session handshake and dispatch behavior.
type Config struct {
	// Modalities declared in session.update. Defaults to text and audio.
	Modalities []string

	// Instructions and Voice are included in session.update when non-empty.
	Instructions string
	Voice        string

	// AutoRespond sends response.create after each function_call_output.
	AutoRespond bool

	// OnEvent observes inbound events that the protocol does not act on.
	// It is called from the read loop and must not block.
	OnEvent func(ServerEvent)
}

// Controller manages the control channel with the remote assistant peer.
//
// The Controller handles:
//   - Sending the session.update handshake exactly once
//   - Reading frames from the transport and routing them by type
//   - Dispatching function calls to the registry in their own goroutines
//   - Tracking in-flight invocations for cancellation on Stop
//   - Gating every send on liveness so nothing is sent after Stop
//
// The Controller must be started with Start() before frames are processed.
type Controller struct {
	log       *slog.Logger
	transport Transport
	registry  *tool.Registry
	config    Config
	inst      instruments

	// Send gate: held for the duration of each send so frames never
	// interleave and Stop cannot complete while a send is in progress.
	sendMu sync.Mutex
	closed bool

	configureOnce sync.Once

	// In-flight invocation tracking for cancellation support
	inFlightMu sync.Mutex
	inFlight   map[uint64]*inFlightOperation
	nextOpID   uint64

	// Fatal error handling - stores error and broadcasts via done channel
	errMu    sync.RWMutex
	fatalErr error

	// Lifecycle management
	closeOnce  sync.Once
	done       chan struct{}
	readWG     sync.WaitGroup
	dispatchWG sync.WaitGroup
}

// inFlightOperation tracks a tool invocation being handled.
type inFlightOperation struct {
	callID    string
	toolName  string
	cancel    context.CancelFunc
	startTime time.Time
}

// NewController creates a new protocol controller.
//
// The logger will receive debug, info, warn, and error messages during
// protocol operations.
func NewController(
	log *slog.Logger,
	transport Transport,
	registry *tool.Registry,
	config Config,
) *Controller {
	if len(config.Modalities) == 0 {
		config.Modalities = []string{"text", "audio"}
	}

	return &Controller{
		log:       log.With("component", "protocol"),
		transport: transport,
		registry:  registry,
		config:    config,
		inst:      newInstruments(),
		inFlight:  make(map[uint64]*inFlightOperation, 8),
		done:      make(chan struct{}),
	}
}

// closeDone safely closes the done channel exactly once.
func (c *Controller) closeDone() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// SetFatalError stores a fatal error and broadcasts to all waiters by closing done.
func (c *Controller) SetFatalError(err error) {
	c.errMu.Lock()

	if c.fatalErr == nil {
		c.fatalErr = err
	}

	c.errMu.Unlock()

	c.closeDone()
}

// FatalError returns the fatal error if one occurred.
func (c *Controller) FatalError() error {
	c.errMu.RLock()
	defer c.errMu.RUnlock()

	return c.fatalErr
}

// Done returns a channel that is closed when the controller stops, either
// through Stop or because the transport failed.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Start begins reading frames from the transport.
//
// This method spawns a goroutine that reads from the transport and routes
// frames. The goroutine stops when the context is cancelled, the transport
// closes its channels or Stop is called.
func (c *Controller) Start(ctx context.Context) error {
	c.log.Debug("Starting protocol controller")

	messages, errs := c.transport.ReadMessages(ctx)

	c.readWG.Add(1)

	go c.readLoop(ctx, messages, errs)

	c.log.Info("Protocol controller started", "tools", c.registry.Len())

	return nil
}

// Stop shuts down the controller.
//
// It closes the send gate, cancels in-flight invocations and waits for the
// read loop. It does not wait for invocations to return; their results are
// discarded. It's safe to call Stop multiple times.
func (c *Controller) Stop() {
	c.log.Debug("Stopping protocol controller")

	c.sendMu.Lock()
	c.closed = true
	c.sendMu.Unlock()

	c.closeDone()
	c.CancelAllInFlight()
	c.readWG.Wait()

	c.log.Info("Protocol controller stopped")
}

// Wait blocks until every dispatched invocation has returned.
func (c *Controller) Wait() {
	c.dispatchWG.Wait()
}

// OnChannelOpen sends the session.update handshake declaring modalities and
// every registered tool. Only the first call sends; later calls return nil.
func (c *Controller) OnChannelOpen(ctx context.Context) error {
	var err error

	c.configureOnce.Do(func() {
		update := &SessionUpdate{
			EventID: newEventID(),
			Type:    EventSessionUpdate,
			Session: SessionConfig{
				Modalities:   c.config.Modalities,
				Instructions: c.config.Instructions,
				Voice:        c.config.Voice,
				Tools:        c.registry.DescribeAll(),
			},
		}

		c.log.Info("Configuring session",
			"modalities", update.Session.Modalities,
			"tools", len(update.Session.Tools),
		)

		if sendErr := c.send(ctx, update); sendErr != nil {
			err = fmt.Errorf("send session update: %w", sendErr)
		}
	})

	return err
}

// InFlight returns the number of invocations that have not returned yet.
func (c *Controller) InFlight() int {
	c.inFlightMu.Lock()
	defer c.inFlightMu.Unlock()

	return len(c.inFlight)
}

// readLoop reads frames from the transport and routes them.
func (c *Controller) readLoop(
	ctx context.Context,
	messages <-chan []byte,
	errs <-chan error,
) {
	defer c.readWG.Done()
	defer c.log.Debug("Protocol read loop stopped")

	for {
		select {
		case raw, ok := <-messages:
			if !ok {
				c.log.Debug("Message channel closed")
				c.SetFatalError(errors.ErrTransportClosed)

				return
			}

			_ = c.HandleMessage(ctx, raw)

		case err, ok := <-errs:
			if !ok {
				errs = nil

				continue
			}

			if err != nil {
				c.log.Debug("Transport error in protocol", "error", err)
				c.SetFatalError(err)

				return
			}

		case <-c.done:
			c.log.Debug("Protocol controller stop signal received")

			return

		case <-ctx.Done():
			c.log.Debug("Context cancelled in protocol read loop")

			return
		}
	}
}

// HandleMessage parses a single inbound frame and acts on it.
//
// Malformed frames are logged and reported as a MalformedMessageError; the
// session is not affected. Unknown event types are ignored.
func (c *Controller) HandleMessage(ctx context.Context, raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return c.dropMalformed(ctx, raw, err)
	}

	switch env.Type {
	case EventFunctionCallArgumentsDone:
		var ev FunctionCallArgumentsDone
		if err := json.Unmarshal(raw, &ev); err != nil {
			return c.dropMalformed(ctx, raw, err)
		}

		if ev.CallID == "" {
			return c.dropMalformed(ctx, raw, fmt.Errorf("function call %q without call_id", ev.Name))
		}

		c.dispatch(ctx, &ev)

	case EventError:
		var ev ServerError
		if err := json.Unmarshal(raw, &ev); err != nil {
			return c.dropMalformed(ctx, raw, err)
		}

		c.log.Warn("Peer reported an error",
			"code", ev.Error.Code,
			"message", ev.Error.Message,
			"event_id", ev.Error.EventID,
		)

		c.observe(env.Type, raw)

	default:
		c.log.Debug("Ignoring control message", "type", env.Type)
		c.observe(env.Type, raw)
	}

	return nil
}

// dropMalformed logs and counts a frame that could not be parsed.
func (c *Controller) dropMalformed(ctx context.Context, raw []byte, err error) error {
	snippet := string(raw)
	if len(snippet) > maxLoggedFrame {
		snippet = snippet[:maxLoggedFrame]
	}

	merr := &errors.MalformedMessageError{Raw: snippet, Err: err}

	c.log.Warn("Dropping malformed control message", "error", merr, "raw", snippet)
	c.inst.malformed.Add(ctx, 1)

	return merr
}

// observe forwards an unhandled event to the configured observer.
func (c *Controller) observe(eventType string, raw []byte) {
	if c.config.OnEvent == nil {
		return
	}

	c.config.OnEvent(ServerEvent{Type: eventType, Raw: append(json.RawMessage(nil), raw...)})
}

// dispatch runs a function call in its own goroutine so the read loop keeps
// processing frames while the tool is working.
func (c *Controller) dispatch(ctx context.Context, ev *FunctionCallArgumentsDone) {
	opCtx, cancel := context.WithCancel(ctx)

	c.inFlightMu.Lock()
	c.nextOpID++
	opID := c.nextOpID
	c.inFlight[opID] = &inFlightOperation{
		callID:    ev.CallID,
		toolName:  ev.Name,
		cancel:    cancel,
		startTime: time.Now(),
	}
	c.inFlightMu.Unlock()

	c.log.Debug("Dispatching function call", "call_id", ev.CallID, "tool", ev.Name)

	c.dispatchWG.Go(func() {
		defer func() {
			c.inFlightMu.Lock()
			delete(c.inFlight, opID)
			c.inFlightMu.Unlock()

			cancel()
		}()

		result := c.invoke(opCtx, ev)

		if err := c.sendResult(ctx, ev.CallID, result); err != nil {
			if stderrors.Is(err, errors.ErrProtocolStopped) {
				c.log.Debug("Discarding tool result after stop", "call_id", ev.CallID, "tool", ev.Name)

				return
			}

			c.log.Error("Failed to send tool result", "call_id", ev.CallID, "error", err)
		}
	})
}

// invoke resolves, validates and runs a tool, converting every failure into
// a Failure result. Panics inside the tool are recovered here.
func (c *Controller) invoke(ctx context.Context, ev *FunctionCallArgumentsDone) (result tool.Result) {
	ctx, span := c.inst.tracer.Start(ctx, "tool.invoke",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("tool.name", ev.Name),
			attribute.String("tool.call_id", ev.CallID),
		),
	)

	defer func() {
		outcome := "success"
		if !result.OK {
			outcome = "failure"
			span.SetStatus(codes.Error, result.Message)
		}

		span.SetAttributes(attribute.String("tool.outcome", outcome))
		span.End()

		c.inst.invocations.Add(ctx, 1, metric.WithAttributes(
			attribute.String("tool.name", ev.Name),
			attribute.String("tool.outcome", outcome),
		))
	}()

	defer func() {
		if r := recover(); r != nil {
			err := &errors.ToolInvocationError{Tool: ev.Name, CallID: ev.CallID, Err: fmt.Errorf("panic: %v", r)}
			c.log.Error("Tool panicked", "call_id", ev.CallID, "tool", ev.Name, "error", err)

			result = tool.Failure(err.Err.Error())
		}
	}()

	t, err := c.registry.Lookup(ev.Name)
	if err != nil {
		c.log.Warn("Function call for unknown tool", "call_id", ev.CallID, "tool", ev.Name)

		return tool.Failure(err.Error())
	}

	text, err := ev.ArgumentsText()
	if err != nil {
		c.log.Warn("Function call with non-string arguments", "call_id", ev.CallID, "tool", ev.Name, "error", err)

		return tool.Failure(err.Error())
	}

	args, err := tool.ParseArguments(text)
	if err != nil {
		c.log.Warn("Function call with unparseable arguments", "call_id", ev.CallID, "tool", ev.Name, "error", err)

		return tool.Failure(err.Error())
	}

	if err := c.registry.Validate(ev.Name, args); err != nil {
		c.log.Warn("Function call with invalid arguments", "call_id", ev.CallID, "tool", ev.Name, "error", err)

		return tool.Failure(err.Error())
	}

	c.log.Info("Calling local tool", "call_id", ev.CallID, "tool", ev.Name)

	res, err := t.Invoke(ctx, args)
	if err != nil {
		invErr := &errors.ToolInvocationError{Tool: ev.Name, CallID: ev.CallID, Err: err}
		c.log.Warn("Tool returned error", "call_id", ev.CallID, "tool", ev.Name, "error", invErr)

		return tool.Failure(err.Error())
	}

	c.log.Debug("Tool completed", "call_id", ev.CallID, "tool", ev.Name, "success", res.OK)

	return res
}

// sendResult frames a tool result as a function_call_output event.
func (c *Controller) sendResult(ctx context.Context, callID string, result tool.Result) error {
	output, err := tool.Encode(result)
	if err != nil {
		c.log.Warn("Tool result is not serializable", "call_id", callID, "error", err)

		// A string-only Failure always encodes.
		output, _ = tool.Encode(tool.Failure(err.Error()))
	}

	item := &ConversationItemCreate{
		EventID: newEventID(),
		Type:    EventConversationItemCreate,
		Item: FunctionCallOutput{
			Type:   ItemFunctionCallOutput,
			CallID: callID,
			Output: output,
		},
	}

	if err := c.send(ctx, item); err != nil {
		return err
	}

	if c.config.AutoRespond {
		return c.send(ctx, &ResponseCreate{EventID: newEventID(), Type: EventResponseCreate})
	}

	return nil
}

// send marshals v and writes it as one frame, unless the controller stopped.
func (c *Controller) send(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal control message: %w", err)
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return errors.ErrProtocolStopped
	}

	if err := c.transport.SendMessage(ctx, data); err != nil {
		return fmt.Errorf("send control message: %w", err)
	}

	return nil
}

// CancelAllInFlight cancels the context of every in-flight invocation.
// This is called during Stop() to ensure clean shutdown.
func (c *Controller) CancelAllInFlight() {
	c.inFlightMu.Lock()
	defer c.inFlightMu.Unlock()

	for _, op := range c.inFlight {
		c.log.Debug("Cancelling in-flight tool",
			"call_id", op.callID,
			"tool", op.toolName,
			"elapsed", time.Since(op.startTime),
		)
		op.cancel()
	}
}
