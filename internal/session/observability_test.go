package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"profilereview/internal/session/mocks"
)

type captureLogger struct{ calls []string }

func (c *captureLogger) Debug(msg string, _ ...any) { c.calls = append(c.calls, "d:"+msg) }
func (c *captureLogger) Info(msg string, _ ...any)  { c.calls = append(c.calls, "i:"+msg) }
func (c *captureLogger) Warn(msg string, _ ...any)  { c.calls = append(c.calls, "w:"+msg) }
func (c *captureLogger) Error(msg string, _ ...any) { c.calls = append(c.calls, "e:"+msg) }

type metricsCall struct {
	op      string
	success bool
}

type captureMetrics struct{ calls []metricsCall }

func (c *captureMetrics) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success})
}

type captureTracer struct {
	started []string
	errs    []error
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	c.started = append(c.started, op)
	return ctx, spanFunc(func(err error) { c.errs = append(c.errs, err) })
}

type spanFunc func(error)

func (f spanFunc) End(err error) { f(err) }

func TestSessionObservesNetworkCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := mocks.NewMockTransport(ctrl)
	logger := &captureLogger{}
	metrics := &captureMetrics{}
	tracer := &captureTracer{}

	tr.EXPECT().FetchSpecification(gomock.Any(), email, false).Return(baselineSpec(), nil)
	tr.EXPECT().SubmitChangeLog(gomock.Any(), email, gomock.Any()).Return(errors.New("refused"))

	s := New(email, tr, WithLogger(logger), WithMetrics(metrics), WithTracer(tracer))
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := s.BeginEdit(); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	if err := s.UpdateRegion("Iasi"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.Save(context.Background()); !errors.Is(err, ErrCommitFailed) {
		t.Fatalf("expected commit failure, got %v", err)
	}

	if len(tracer.started) != 2 || tracer.started[0] != "load" || tracer.started[1] != "save" {
		t.Fatalf("unexpected spans %v", tracer.started)
	}
	if tracer.errs[0] != nil || tracer.errs[1] == nil {
		t.Fatalf("span outcomes not recorded: %v", tracer.errs)
	}
	want := []metricsCall{{op: "load", success: true}, {op: "save", success: false}}
	if len(metrics.calls) != len(want) || metrics.calls[0] != want[0] || metrics.calls[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, metrics.calls)
	}
	var sawError, sawStaged bool
	for _, call := range logger.calls {
		switch call {
		case "e:session operation failed":
			sawError = true
		case "d:change staged":
			sawStaged = true
		}
	}
	if !sawError || !sawStaged {
		t.Fatalf("expected failure and staging logs, got %v", logger.calls)
	}
}

func TestNoopObservabilityDefaults(_ *testing.T) {
	noopLogger{}.Debug("x")
	noopLogger{}.Info("x")
	noopLogger{}.Warn("x")
	noopLogger{}.Error("x")
	noopMetrics{}.Observe(context.Background(), "op", true, 0)
	_, span := noopTracer{}.Start(context.Background(), "op")
	span.End(nil)
}

func TestNilOptionsKeepDefaults(t *testing.T) {
	s := New(email, nil, WithLogger(nil), WithMetrics(nil), WithTracer(nil), WithClock(nil), WithLocation(nil))
	if s.logger == nil || s.metrics == nil || s.tracer == nil || s.clock == nil || s.loc == nil {
		t.Fatalf("nil options must not clear defaults")
	}
	if !s.serverEcho {
		t.Fatalf("server echo should default on")
	}
}
