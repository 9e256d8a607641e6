package dispatch

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	pipelineTracer = otel.Tracer("notifyd/dispatch")
	pipelineMeter  = otel.Meter("notifyd/dispatch")

	eventsTotal, _ = pipelineMeter.Int64Counter("dispatch.events.total",
		metric.WithDescription("Notification events processed, by outcome"),
	)
	tokensPruned, _ = pipelineMeter.Int64Counter("dispatch.tokens.pruned",
		metric.WithDescription("Push tokens removed after permanent delivery failure"),
	)
)

// Pipeline runs one notification record through the four dispatch stages:
// resolve the recipient, build the payload, send the multicast, reconcile
// per-token outcomes. Stages run strictly in order; each event is one
// independent unit of work with no cross-event shared state, so the hosting
// trigger infrastructure may run events in parallel.
type Pipeline struct {
	resolver   *Resolver
	builder    *Builder
	gateway    Gateway
	reconciler *Reconciler
}

func NewPipeline(store RecipientStore, gateway Gateway, cfg BuilderConfig) *Pipeline {
	return &Pipeline{
		resolver:   NewResolver(store),
		builder:    NewBuilder(cfg),
		gateway:    gateway,
		reconciler: NewReconciler(store),
	}
}

// Dispatch processes one record and returns a per-event summary.
// A missing user id, unknown recipient, or empty token set yields a skipped
// result with no gateway call and no store write. A gateway-level send
// failure or a reconcile write failure is returned to the caller; both are
// safe for the trigger infrastructure to retry, at the cost of a possible
// duplicate delivery (at-least-once, not exactly-once).
func (p *Pipeline) Dispatch(ctx context.Context, record *Record) (*Result, error) {
	ctx, span := pipelineTracer.Start(ctx, "dispatch.Dispatch",
		trace.WithAttributes(attribute.String("notification.id", recordID(record))),
	)
	defer span.End()

	recipient, err := p.resolver.Resolve(ctx, record)
	if err != nil {
		return nil, p.fail(ctx, span, err)
	}
	if recipient == nil {
		eventsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "skipped")))
		span.SetAttributes(attribute.Bool("dispatch.skipped", true))
		return &Result{Skipped: true}, nil
	}

	msg := p.builder.Build(record, recipient.Tokens)

	outcomes, err := p.gateway.Send(ctx, msg)
	if err != nil {
		return nil, p.fail(ctx, span, err)
	}

	removed, err := p.reconciler.Reconcile(ctx, recipient.UserID, recipient.Tokens, outcomes)
	if err != nil {
		return nil, p.fail(ctx, span, err)
	}

	result := &Result{
		Tokens:        len(recipient.Tokens),
		RemovedTokens: removed,
	}
	for _, outcome := range outcomes {
		if outcome.Success {
			result.Delivered++
		} else {
			result.Failed++
		}
	}

	span.SetAttributes(
		attribute.Int("dispatch.tokens", result.Tokens),
		attribute.Int("dispatch.delivered", result.Delivered),
		attribute.Int("dispatch.failed", result.Failed),
		attribute.Int("dispatch.removed", len(removed)),
	)
	eventsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "dispatched")))
	tokensPruned.Add(ctx, int64(len(removed)))

	log.Printf("Dispatched notification %s to user %s: %d delivered, %d failed, %d token(s) removed",
		record.ID, recipient.UserID, result.Delivered, result.Failed, len(removed))

	return result, nil
}

func (p *Pipeline) fail(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	eventsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "error")))
	return err
}

func recordID(record *Record) string {
	if record == nil {
		return ""
	}
	return record.ID
}
