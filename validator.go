package fluentschema

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/reoring/fluentschema/i18n"
	"github.com/reoring/fluentschema/internal/engine"
	js "github.com/reoring/fluentschema/jsonschema"
)

const instrumentationName = "github.com/reoring/fluentschema"

// Documenter is anything that can emit a root schema document. Every dsl
// builder implements it.
type Documenter interface {
	ValueOf() js.Document
}

// argumentChecker is implemented by builders that collect argument errors.
type argumentChecker interface {
	Err() error
}

// Validator compiles schema documents and validates data against them.
// Compiled validators are cached by the document's structural hash. A
// Validator is safe for concurrent use.
type Validator struct {
	opts        options
	eng         *engine.Engine
	log         *slog.Logger
	tracer      trace.Tracer
	compileHits metric.Int64Counter
	validations metric.Int64Counter
}

// NewValidator returns a Validator configured by opts.
func NewValidator(opts ...Option) *Validator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	v := &Validator{
		opts: o,
		eng: engine.New(engine.Options{
			Draft:         o.draft,
			AssertFormat:  o.assertFormat,
			AssertContent: o.assertContent,
			Predicates:    o.predicates.r,
			Builtins:      builtinPredicates.r,
		}),
		log:    o.logger,
		tracer: o.tracerProvider.Tracer(instrumentationName),
	}
	meter := o.meterProvider.Meter(instrumentationName)
	var err error
	v.compileHits, err = meter.Int64Counter("fluentschema.compile.cache",
		metric.WithDescription("Schema compile requests by cache outcome"),
		metric.WithUnit("{request}"))
	if err != nil {
		v.compileHits = metricnoop.Int64Counter{}
	}
	v.validations, err = meter.Int64Counter("fluentschema.validations",
		metric.WithDescription("Validation calls by outcome"),
		metric.WithUnit("{call}"))
	if err != nil {
		v.validations = metricnoop.Int64Counter{}
	}
	return v
}

var defaultValidator atomic.Pointer[Validator]

// Default returns the process-wide Validator used by builder Validate and
// Ensure methods.
func Default() *Validator {
	if v := defaultValidator.Load(); v != nil {
		return v
	}
	defaultValidator.CompareAndSwap(nil, NewValidator())
	return defaultValidator.Load()
}

// SetDefault replaces the process-wide Validator. nil restores a fresh
// default.
func SetDefault(v *Validator) {
	if v == nil {
		v = NewValidator()
	}
	defaultValidator.Store(v)
}

// Compilations reports how many documents this Validator actually compiled.
func (v *Validator) Compilations() int64 { return v.eng.Compilations() }

// Compile compiles s ahead of use. It returns an *Error of kind
// KindSchemaCompile or KindInvalidArgument on failure.
func (v *Validator) Compile(ctx context.Context, s Documenter) error {
	ctx, span := v.tracer.Start(ctx, "fluentschema.compile")
	defer span.End()
	if err := checkArguments("Compile", s); err != nil {
		recordError(span, err)
		return err
	}
	_, err := v.compile(ctx, "Compile", s.ValueOf())
	if err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

// Validate reports whether data satisfies s. It never returns an error:
// schema and argument failures come back as false with a single issue of code
// schema_compile or invalid_argument.
func (v *Validator) Validate(ctx context.Context, s Documenter, data any) (bool, Issues) {
	iss, err := v.run(ctx, "Validate", s, func() (any, error) { return engine.JSONValue(data) })
	return resultOf(iss, err)
}

// ValidateJSON validates a JSON text against s.
func (v *Validator) ValidateJSON(ctx context.Context, s Documenter, data []byte) (bool, Issues) {
	if iss := v.duplicates(ctx, data, engine.DuplicateKeys); len(iss) > 0 {
		return false, iss
	}
	iss, err := v.run(ctx, "ValidateJSON", s, func() (any, error) { return engine.DecodeJSON(data) })
	return resultOf(iss, err)
}

// ValidateYAML validates a single YAML document against s. Repeated mapping
// keys are a parse error unless WithDuplicateKeys reports them as issues.
func (v *Validator) ValidateYAML(ctx context.Context, s Documenter, data []byte) (bool, Issues) {
	if iss := v.duplicates(ctx, data, engine.YAMLDuplicateKeys); len(iss) > 0 {
		return false, iss
	}
	iss, err := v.run(ctx, "ValidateYAML", s, func() (any, error) { return engine.DecodeYAML(data) })
	return resultOf(iss, err)
}

// duplicates scans data when WithDuplicateKeys is set. Scan errors are left
// for the decoder to report.
func (v *Validator) duplicates(ctx context.Context, data []byte, scan func([]byte, int) ([]engine.DuplicateKey, error)) Issues {
	if !v.opts.duplicateKeys {
		return nil
	}
	dups, err := scan(data, v.opts.maxDuplicates)
	if err != nil || len(dups) == 0 {
		return nil
	}
	out := make(Issues, 0, len(dups))
	for _, d := range dups {
		out = append(out, Issue{
			Path:    d.Path,
			Code:    CodeDuplicateKey,
			Message: i18n.T(CodeDuplicateKey, map[string]string{"key": d.Key}),
		})
	}
	v.count(ctx, false)
	return out
}

// Ensure returns nil when data satisfies s and an *Error otherwise: kind
// KindValidationFailed carrying the issues, or KindSchemaCompile /
// KindInvalidArgument when s itself is unusable.
func (v *Validator) Ensure(ctx context.Context, s Documenter, data any) error {
	iss, err := v.run(ctx, "Ensure", s, func() (any, error) { return engine.JSONValue(data) })
	if err != nil {
		return err
	}
	if len(iss) > 0 {
		return &Error{Kind: KindValidationFailed, Op: "Ensure", Issues: iss}
	}
	return nil
}

// run compiles s, decodes the input and validates it. A non-nil error is
// always an *Error for a schema, argument or input failure; validation
// failures come back as issues.
func (v *Validator) run(ctx context.Context, op string, s Documenter, input func() (any, error)) (Issues, error) {
	ctx, span := v.tracer.Start(ctx, "fluentschema.validate", trace.WithAttributes(attribute.String("fluentschema.op", op)))
	defer span.End()

	if err := checkArguments(op, s); err != nil {
		recordError(span, err)
		v.count(ctx, false)
		return nil, err
	}
	c, err := v.compile(ctx, op, s.ValueOf())
	if err != nil {
		recordError(span, err)
		v.count(ctx, false)
		return nil, err
	}
	value, err := input()
	if err != nil {
		iss := Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Cause: err}}
		span.SetStatus(codes.Error, err.Error())
		v.count(ctx, false)
		return iss, nil
	}
	viols, err := c.Validate(value)
	if err != nil {
		iss := Issues{{Path: "/", Code: CodeInvalidType, Message: i18n.T(CodeInvalidType, nil), Cause: err}}
		span.SetStatus(codes.Error, err.Error())
		v.count(ctx, false)
		return iss, nil
	}
	iss := fromViolations(viols)
	span.SetAttributes(attribute.Int("fluentschema.issues", len(iss)))
	v.count(ctx, len(iss) == 0)
	return iss, nil
}

func (v *Validator) compile(ctx context.Context, op string, doc js.Document) (*engine.Compiled, error) {
	c, hit, err := v.eng.Compile(doc)
	if err != nil {
		v.log.DebugContext(ctx, "schema compile failed", slog.String("op", op), slog.Any("error", err))
		return nil, &Error{Kind: KindSchemaCompile, Op: op, Err: err}
	}
	v.compileHits.Add(ctx, 1, metric.WithAttributes(attribute.Bool("hit", hit)))
	if hit {
		v.log.DebugContext(ctx, "schema cache hit", slog.String("key", c.Key))
	} else {
		v.log.DebugContext(ctx, "schema compiled", slog.String("key", c.Key), slog.Int("keys", doc.Len()))
	}
	return c, nil
}

func (v *Validator) count(ctx context.Context, valid bool) {
	v.validations.Add(ctx, 1, metric.WithAttributes(attribute.Bool("valid", valid)))
}

func checkArguments(op string, s Documenter) error {
	if s == nil {
		return &Error{Kind: KindInvalidArgument, Op: op, Err: &ArgumentError{Method: op, Reason: "nil schema"}}
	}
	if ac, ok := s.(argumentChecker); ok {
		if err := ac.Err(); err != nil {
			return &Error{Kind: KindInvalidArgument, Op: op, Err: err}
		}
	}
	return nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// resultOf folds a schema or argument failure into a single issue.
func resultOf(iss Issues, err error) (bool, Issues) {
	if err == nil {
		return len(iss) == 0, iss
	}
	code := CodeSchemaCompile
	if k, _ := KindOf(err); k == KindInvalidArgument {
		code = CodeInvalidArgument
	}
	var cause error = err
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		cause = e.Err
	}
	return false, Issues{{
		Path:    "/",
		Code:    code,
		Message: i18n.T(code, map[string]string{"detail": cause.Error()}),
		Cause:   err,
	}}
}
