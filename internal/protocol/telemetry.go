package protocol

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/wagiedev/agent-bridge-go/internal/protocol"

// instruments groups the tracer and meters used at the dispatch boundary.
type instruments struct {
	tracer      trace.Tracer
	invocations metric.Int64Counter
	malformed   metric.Int64Counter
}

// newInstruments resolves instruments from the global otel providers.
// Hosts that never install providers get the otel no-op implementations.
func newInstruments() instruments {
	meter := otel.Meter(instrumentationName)

	invocations, err := meter.Int64Counter(
		"agentbridge.tool.invocations",
		metric.WithDescription("Tool invocations dispatched from the control channel"),
	)
	if err != nil {
		invocations = noop.Int64Counter{}
	}

	malformed, err := meter.Int64Counter(
		"agentbridge.control.malformed",
		metric.WithDescription("Inbound control frames dropped as malformed"),
	)
	if err != nil {
		malformed = noop.Int64Counter{}
	}

	return instruments{
		tracer:      otel.Tracer(instrumentationName),
		invocations: invocations,
		malformed:   malformed,
	}
}
