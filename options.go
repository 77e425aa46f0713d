package fluentschema

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Option configures a Validator.
type Option func(*options)

// options holds configuration for a Validator instance.
type options struct {
	draft          string
	assertFormat   bool
	assertContent  bool
	duplicateKeys  bool
	maxDuplicates  int
	predicates     *PredicateRegistry
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

func defaultOptions() options {
	return options{
		draft:          "draft-07",
		predicates:     defaultPredicates,
		logger:         slog.New(slog.DiscardHandler),
		tracerProvider: noop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}
}

// WithDraft selects the draft applied to documents without $schema:
// "draft-04", "draft-06", "draft-07" (default), "2019-09" or "2020-12".
// Documents built by dsl always carry $schema, which takes precedence.
func WithDraft(draft string) Option {
	return func(o *options) {
		o.draft = draft
	}
}

// WithFormatAssertion makes "format" fail validation on mismatching values
// instead of being an annotation only.
func WithFormatAssertion(enabled bool) Option {
	return func(o *options) {
		o.assertFormat = enabled
	}
}

// WithContentAssertion makes contentEncoding and contentMediaType assertions.
func WithContentAssertion(enabled bool) Option {
	return func(o *options) {
		o.assertContent = enabled
	}
}

// WithDuplicateKeys rejects input with repeated object keys in ValidateJSON
// and ValidateYAML, reporting at most max of them (max <= 0 means all).
func WithDuplicateKeys(max int) Option {
	return func(o *options) {
		o.duplicateKeys = true
		o.maxDuplicates = max
	}
}

// WithPredicates resolves instanceOf keys against r instead of the
// process-wide registry. Keys made by InstanceOf and Expr resolve under any
// registry.
func WithPredicates(r *PredicateRegistry) Option {
	return func(o *options) {
		if r != nil {
			o.predicates = r
		}
	}
}

// WithLogger enables debug logging of compilation and cache activity.
// Without it the Validator does not log.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider for compile and
// validate spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider for the cache and
// validation counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}
