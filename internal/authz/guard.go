package authz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/TwigBush/roleguard/internal/authz"

// Outcome labels passed to Recorder.
const (
	OutcomeAllowed = "allowed"
	OutcomeDenied  = "denied"
	OutcomeError   = "error"
	OutcomeAborted = "aborted"
)

// UndeclaredOperation is the operation label recorded for ops with no
// requirement. Callers choose op freely, so only declared ids reach Recorder.
const UndeclaredOperation = "_undeclared"

// Recorder observes guard activity, typically for metrics.
type Recorder interface {
	Decision(op, outcome string)
	TokenLookup(d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) Decision(string, string)   {}
func (nopRecorder) TokenLookup(time.Duration) {}

// Options configures NewGuard. Only Requirements is mandatory.
type Options struct {
	Requirements RequirementSource
	Tokens       TokenProvider // nil means no request ever carries a token
	Sink         Sink
	Recorder     Recorder
	Tracing      trace.TracerProvider // nil means the global provider
}

// Guard answers "may this request invoke op". It holds no per-request state and
// is safe for concurrent use.
type Guard struct {
	reqs   RequirementSource
	tokens TokenProvider
	sink   Sink
	rec    Recorder
	tracer trace.Tracer
}

func NewGuard(opts Options) (*Guard, error) {
	if opts.Requirements == nil {
		return nil, errors.New("authz: requirement source is required")
	}
	g := &Guard{
		reqs:   opts.Requirements,
		tokens: opts.Tokens,
		sink:   opts.Sink,
		rec:    opts.Recorder,
	}
	if g.sink == nil {
		g.sink = nopSink{}
	}
	if g.rec == nil {
		g.rec = nopRecorder{}
	}
	tp := opts.Tracing
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	g.tracer = tp.Tracer(tracerName)
	return g, nil
}

// CanAuthorize reports whether the request in ctx may invoke op.
//
// A false result with a nil error is an ordinary denial. Errors wrap ErrRoleQuery
// when the token's role claims could not be read, and ErrAborted when ctx ended
// before a decision was reached; neither is a denial.
func (g *Guard) CanAuthorize(ctx context.Context, op string) (bool, error) {
	d, err := g.Decide(ctx, op)
	return d.Allowed, err
}

// Decide is CanAuthorize with the decision reason attached.
func (g *Guard) Decide(ctx context.Context, op string) (Decision, error) {
	ctx, span := g.tracer.Start(ctx, "authz.Guard.Decide",
		trace.WithAttributes(attribute.String("authz.operation", op)))
	defer span.End()

	req, ok := g.reqs.Requirement(op)
	if !ok {
		d := Decision{Allowed: true, Reason: ReasonNoRequirement}
		g.finish(span, op, "", d, nil)
		return d, nil
	}

	id := uuid.NewString()
	verbose(g.sink, "authz_roles", "decision", id, "operation", op, "roles", req.Roles, "match", string(req.Match))

	tok, err := g.tokenContext(ctx)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoToken):
			warn(g.sink, "no access token found in request, is the authentication middleware mounted before the guard?",
				"decision", id, "operation", op)
			d := Decision{Reason: ReasonNoToken}
			g.finish(span, op, id, d, nil)
			return d, nil
		case errors.Is(err, ErrTokenRejected):
			warn(g.sink, "access token rejected by grant backend", "decision", id, "operation", op)
			d := Decision{Reason: ReasonTokenRejected}
			g.finish(span, op, id, d, nil)
			return d, nil
		case ctx.Err() != nil:
			// Only the request's own context ending counts as an abort.
			err = fmt.Errorf("%w: %w", ErrAborted, err)
		default:
			err = fmt.Errorf("%w: %w", ErrRoleQuery, err)
		}
		g.finish(span, op, id, Decision{}, err)
		return Decision{}, err
	}

	d, err := Evaluate(&req, tok)
	g.finish(span, op, id, d, err)
	if err != nil {
		return Decision{}, err
	}
	return d, nil
}

func (g *Guard) tokenContext(ctx context.Context) (Token, error) {
	if g.tokens == nil {
		return nil, ErrNoToken
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	tok, err := g.tokens.TokenContext(ctx)
	g.rec.TokenLookup(time.Since(start))
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, ErrNoToken
	}
	return tok, nil
}

func (g *Guard) finish(span trace.Span, op, id string, d Decision, err error) {
	outcome := OutcomeDenied
	switch {
	case errors.Is(err, ErrAborted):
		outcome = OutcomeAborted
	case err != nil:
		outcome = OutcomeError
	case d.Allowed:
		outcome = OutcomeAllowed
	}
	label := op
	if id == "" {
		label = UndeclaredOperation
	}
	g.rec.Decision(label, outcome)

	span.SetAttributes(attribute.String("authz.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}

	if id == "" {
		return
	}
	if err != nil {
		warn(g.sink, "authz_error", "decision", id, "operation", op, "outcome", outcome, "err", err)
		return
	}
	verbose(g.sink, "authz_decision", "decision", id, "operation", op, "allowed", d.Allowed, "reason", d.Reason)
}
