// Package fluentschema validates data against JSON Schema documents built
// with the fluent builders in package dsl.
//
// Package fluentschema provides:
//
// - A Validator that compiles documents once (cached by structural hash) and validates Go values, JSON or YAML
// - A stable error model via Issues (JSON Pointer, keyword, code, message) and *Error kinds for Ensure
// - The instanceOf keyword: runtime predicates registered by key, Go types (InstanceOf[T]) or CEL expressions (Expr)
// - Optional OpenTelemetry spans/counters and slog debug logging
//
// Design policy:
// - Builders live in dsl/ and are immutable values; documents live in jsonschema/.
// - Keyword evaluation is delegated to github.com/santhosh-tekuri/jsonschema/v5 (internal/engine).
// - Validate never returns an error; Ensure returns *Error.
//
// Typical usage:
//
//	user := dsl.Shape(dsl.Props{
//	    "name": dsl.String().MinLength(1),
//	    "age":  dsl.Integer().Minimum(0).Optional(),
//	})
//	ok, issues := user.Validate(map[string]any{"name": ""})
//	// ok == false, issues[0].Keyword == "minLength", issues[0].Code == "too_short"
//
//	v := fluentschema.NewValidator(fluentschema.WithFormatAssertion(true))
//	ok, issues = v.ValidateJSON(ctx, user, []byte(`{"name":"alice"}`))
//
//	if err := v.Ensure(ctx, user, data); errors.Is(err, fluentschema.ErrValidationFailed) {
//	    iss, _ := fluentschema.AsIssues(err)
//	    _ = iss
//	}
package fluentschema
