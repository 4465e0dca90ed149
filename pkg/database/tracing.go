package database

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/utafrali/storefront/pkg/database"

// TraceCommand starts a span for a Redis operation. The returned function must
// be called when the operation completes with its error (or nil).
//
//	ctx, end := database.TraceCommand(ctx, "get", "storefront:abc:cart")
//	defer func() { end(err) }()
func TraceCommand(ctx context.Context, operation, statement string) (context.Context, func(error)) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "redis."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.operation", operation),
			attribute.String("db.statement", statement),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// TracingHook is a go-redis hook that wraps every command and pipeline in a
// client span and warns about commands slower than the threshold.
type TracingHook struct {
	threshold time.Duration
	logger    *slog.Logger
}

var _ redis.Hook = (*TracingHook)(nil)

// NewTracingHook creates a hook. A zero threshold or nil logger disables slow
// command logging.
func NewTracingHook(threshold time.Duration, logger *slog.Logger) *TracingHook {
	return &TracingHook{threshold: threshold, logger: logger}
}

// DialHook passes dials through untouched.
func (h *TracingHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

// ProcessHook traces a single command.
func (h *TracingHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		ctx, end := TraceCommand(ctx, cmd.Name(), commandStatement(cmd))
		err := next(ctx, cmd)
		end(ignoreNil(err))
		h.logSlow(ctx, cmd.Name(), 1, time.Since(start))
		return err
	}
}

// ProcessPipelineHook traces a pipeline or MULTI/EXEC block as one span.
func (h *TracingHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		names := make([]string, 0, len(cmds))
		for _, cmd := range cmds {
			names = append(names, cmd.Name())
		}

		start := time.Now()
		ctx, end := TraceCommand(ctx, "pipeline", strings.Join(names, " "))
		err := next(ctx, cmds)
		end(ignoreNil(err))
		h.logSlow(ctx, "pipeline", len(cmds), time.Since(start))
		return err
	}
}

func (h *TracingHook) logSlow(ctx context.Context, op string, n int, elapsed time.Duration) {
	if h.threshold <= 0 || h.logger == nil || elapsed < h.threshold {
		return
	}
	h.logger.WarnContext(ctx, "slow redis command",
		slog.String("operation", op),
		slog.Int("commands", n),
		slog.Duration("duration", elapsed),
		slog.Duration("threshold", h.threshold),
	)
}

// commandStatement renders "<name> <key>" without argument values.
func commandStatement(cmd redis.Cmder) string {
	args := cmd.Args()
	if len(args) < 2 {
		return cmd.Name()
	}
	if key, ok := args[1].(string); ok {
		return cmd.Name() + " " + key
	}
	return cmd.Name()
}

// ignoreNil treats redis.Nil (key absent) as success.
func ignoreNil(err error) error {
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
