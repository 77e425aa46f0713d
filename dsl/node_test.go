package dsl_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/reoring/fluentschema"
	g "github.com/reoring/fluentschema/dsl"
	js "github.com/reoring/fluentschema/jsonschema"
)

const draft07 = `"$schema":"http://json-schema.org/draft-07/schema#"`

func jsonOf(t *testing.T, b g.Builder) string {
	t.Helper()
	out, err := json.Marshal(b.ValueOf())
	require.NoError(t, err)
	return string(out)
}

func TestValueOf_Idempotent(t *testing.T) {
	s := g.Shape(g.Props{"a": g.String(), "b": g.List(g.Integer())}).Title("t")
	assert.True(t, s.ValueOf().Equal(s.ValueOf()))
	assert.Equal(t, jsonOf(t, s), jsonOf(t, s))
}

func TestBuilders_AreImmutable(t *testing.T) {
	base := g.String()
	before := jsonOf(t, base)

	_ = base.MinLength(3).Title("x").Optional()
	_ = base.Enum("a", "b")
	_ = base.Definition("d", g.Integer())
	_ = base.Raw(js.Document{}.With("type", "number"))

	assert.Equal(t, before, jsonOf(t, base))
	assert.True(t, base.IsRequired())

	obj := g.Object().Prop("a", g.String())
	objBefore := jsonOf(t, obj)
	_ = obj.Prop("b", g.String())
	_ = obj.Require("z")
	_ = obj.Partial()
	assert.Equal(t, objBefore, jsonOf(t, obj))
}

func TestBuilders_BranchesDoNotAlias(t *testing.T) {
	base := g.Object().Prop("a", g.String())
	x := base.Prop("x", g.String())
	y := base.Prop("y", g.String())

	assert.JSONEq(t, `{"type":"object","properties":{"a":{"type":"string"},"x":{"type":"string"}},"required":["a","x"],`+draft07+`}`, jsonOf(t, x))
	assert.JSONEq(t, `{"type":"object","properties":{"a":{"type":"string"},"y":{"type":"string"}},"required":["a","y"],`+draft07+`}`, jsonOf(t, y))
}

func TestRoundTrip_StringMinLength(t *testing.T) {
	s := g.String().MinLength(2)
	assert.Equal(t, `{"type":"string","minLength":2,`+draft07+`}`, jsonOf(t, s))

	ok, iss := s.Validate("ab")
	assert.True(t, ok)
	assert.Empty(t, iss)

	ok, iss = s.Validate("a")
	require.False(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, "minLength", iss[0].Keyword)
	assert.Equal(t, fluentschema.CodeTooShort, iss[0].Code)
}

func TestAnnotations(t *testing.T) {
	s := g.Integer().
		ID("https://example.com/n").
		Title("count").
		Description("how many").
		Examples(1, 2).
		Default(1).
		Ref("#/definitions/n")
	assert.JSONEq(t, `{
		"type":"integer","$id":"https://example.com/n","title":"count","description":"how many",
		"examples":[1,2],"default":1,"$ref":"#/definitions/n",`+draft07+`}`, jsonOf(t, s))
}

func TestSchemaURI(t *testing.T) {
	s := g.String().Schema("http://json-schema.org/draft-06/schema#")
	v, _ := s.ValueOf().Get(js.KeySchema)
	assert.Equal(t, "http://json-schema.org/draft-06/schema#", v)

	assert.False(t, g.String().Schema("").ValueOf().Has(js.KeySchema))
	assert.False(t, g.String().Document().Has(js.KeySchema), "only the root carries $schema")
}

func TestDefinitions_MergeAndReplace(t *testing.T) {
	s := g.Any().
		Definition("a", g.String()).
		Definition("b", g.Integer()).
		Definition("a", g.Boolean())
	assert.Equal(t, []string{"a", "b"}, s.Definitions().Keys())
	assert.JSONEq(t, `{"definitions":{"a":{"type":"boolean"},"b":{"type":"integer"}},`+draft07+`}`, jsonOf(t, s))
}

func TestDefinitions_HoistedFromChildren(t *testing.T) {
	child := g.Object().
		Definition("id", g.String().Format("uuid")).
		Prop("id", g.Ref("#/definitions/id"))
	parent := g.Object().Definition("id", g.String()).Prop("child", child)

	v := parent.ValueOf()
	defs, ok := v.Doc(js.KeyDefinitions)
	require.True(t, ok)
	d, _ := defs.Doc("id")
	assert.JSONEq(t, `{"type":"string"}`, d.String(), "parent wins on conflicts")

	// hoisted when the parent does not define it
	parent2 := g.Shape(g.Props{"child": child})
	defs, _ = parent2.ValueOf().Doc(js.KeyDefinitions)
	d, _ = defs.Doc("id")
	assert.JSONEq(t, `{"type":"string","format":"uuid"}`, d.String())

	props, _ := parent2.Document().Doc(js.KeyProperties)
	c, _ := props.Doc("child")
	assert.False(t, c.Has(js.KeyDefinitions), "embedded documents carry no definitions")

	ok2, _ := parent2.Validate(map[string]any{"child": map[string]any{"id": "x"}})
	assert.True(t, ok2)
	ok2, _ = parent2.Validate(map[string]any{"child": map[string]any{"id": 1}})
	assert.False(t, ok2, "$ref resolves against the hoisted definition")
}

func TestRaw_LastWriteWins(t *testing.T) {
	s := g.String().MinLength(1).Raw(js.Document{}.With("minLength", 5).With("x-extension", true))
	assert.Equal(t, `{"type":"string","minLength":5,"x-extension":true,`+draft07+`}`, jsonOf(t, s))

	r := g.Raw(js.FromMap(map[string]any{"type": "string", "maxLength": 1}))
	ok, _ := r.Validate("ab")
	assert.False(t, ok)
}

func TestEnumAndConst(t *testing.T) {
	e := g.Enum("a", "b")
	assert.JSONEq(t, `{"enum":["a","b"],`+draft07+`}`, jsonOf(t, e))
	ok, _ := e.Validate("b")
	assert.True(t, ok)
	ok, iss := e.Validate("c")
	assert.False(t, ok)
	assert.Equal(t, fluentschema.CodeInvalidEnum, iss[0].Code)

	c := g.String().Const("x")
	assert.JSONEq(t, `{"type":"string","const":"x",`+draft07+`}`, jsonOf(t, c))
	ok, _ = c.Validate("y")
	assert.False(t, ok)

	assert.Error(t, g.Enum[string]().Err())
}

func TestOptionalRequired_FlagOnly(t *testing.T) {
	s := g.String().MinLength(1)
	o := s.Optional()
	assert.False(t, o.IsRequired())
	assert.True(t, o.Required().IsRequired())
	assert.True(t, s.ValueOf().Equal(o.ValueOf()))
}

func TestArgumentErrors(t *testing.T) {
	s := g.String().MinLength(-1).MaxLength(-2)
	err := s.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, fluentschema.ErrInvalidArgument))
	assert.Contains(t, err.Error(), "MinLength")
	assert.Contains(t, err.Error(), "MaxLength")
	assert.False(t, s.ValueOf().Has(js.KeyMinLength), "rejected arguments leave the document unchanged")

	// errors travel with embedded children
	parent := g.Shape(g.Props{"s": s})
	assert.Error(t, parent.Err())

	ok, iss := parent.Validate(map[string]any{"s": "x"})
	assert.False(t, ok)
	assert.Equal(t, fluentschema.CodeInvalidArgument, iss[0].Code)

	_, err = parent.Ensure(map[string]any{"s": "x"})
	assert.True(t, errors.Is(err, fluentschema.ErrInvalidArgument))

	assert.Error(t, g.Any().Definition("", g.String()).Err())
	assert.Error(t, g.Not(nil).Err())
	assert.Error(t, g.AnyOf().Err())
	assert.Error(t, g.InstanceOf("").Err())
	assert.NoError(t, g.String().Err())
}

func TestEnsure(t *testing.T) {
	s := g.Integer().Minimum(1)
	v, err := s.Ensure(3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	_, err = s.Ensure(0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fluentschema.ErrValidationFailed))
	iss, ok := fluentschema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "minimum", iss[0].Keyword)
}

func TestMarshalYAML(t *testing.T) {
	s := g.Shape(g.Props{"n": g.Integer().Minimum(1)})
	out, err := yaml.Marshal(s)
	require.NoError(t, err)
	want := `type: object
additionalProperties: false
properties:
    n:
        type: integer
        minimum: 1
required:
    - n
$schema: http://json-schema.org/draft-07/schema#
`
	assert.Equal(t, want, string(out))
}

func TestMarshalJSON_Builder(t *testing.T) {
	out, err := json.Marshal(g.Boolean().Title("flag"))
	require.NoError(t, err)
	assert.Equal(t, `{"type":"boolean","title":"flag",`+draft07+`}`, string(out))
}
