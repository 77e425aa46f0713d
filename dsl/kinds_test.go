package dsl_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	g "github.com/reoring/fluentschema/dsl"
	js "github.com/reoring/fluentschema/jsonschema"
)

func TestString_Keywords(t *testing.T) {
	s := g.String().
		MaxLength(10).
		Format("email").
		ContentMediaType("text/plain").
		ContentEncoding("base64").
		Pattern("^a")
	assert.JSONEq(t, `{"type":"string","maxLength":10,"format":"email","contentMediaType":"text/plain",
		"contentEncoding":"base64","pattern":"^a",`+draft07+`}`, jsonOf(t, s))
}

func TestString_PatternRegexpStripsFlags(t *testing.T) {
	s := g.String().PatternRegexp(regexp.MustCompile(`(?i)^ab+$`))
	v, _ := s.Document().Get(js.KeyPattern)
	assert.Equal(t, "^ab+$", v)

	s = g.String().PatternRegexp(regexp.MustCompile(`^x(?i:y)$`))
	v, _ = s.Document().Get(js.KeyPattern)
	assert.Equal(t, "^x(?i:y)$", v, "only a leading flag group is removed")

	ok, _ := g.String().PatternRegexp(regexp.MustCompile(`^[0-9]+$`)).Validate("123")
	assert.True(t, ok)
	ok, iss := g.String().PatternRegexp(regexp.MustCompile(`^[0-9]+$`)).Validate("12a")
	assert.False(t, ok)
	assert.Equal(t, "pattern", iss[0].Keyword)

	assert.Error(t, g.String().PatternRegexp(nil).Err())
}

func TestNumber_ExclusiveMinimum(t *testing.T) {
	ex := g.Number().ExclusiveMinimum(1)
	ok, _ := ex.Validate(1)
	assert.False(t, ok)
	ok, _ = ex.Validate(1.0001)
	assert.True(t, ok)

	in := g.Number().Minimum(1)
	ok, _ = in.Validate(1)
	assert.True(t, ok)
	ok, _ = in.Validate(0.9999)
	assert.False(t, ok)
}

func TestNumber_BoundsReplaceEachOther(t *testing.T) {
	s := g.Number().Minimum(1).ExclusiveMinimum(2)
	assert.False(t, s.Document().Has(js.KeyMinimum))
	v, _ := s.Document().Get(js.KeyExclusiveMinimum)
	assert.Equal(t, float64(2), v)

	s = s.Minimum(3)
	assert.False(t, s.Document().Has(js.KeyExclusiveMinimum))

	m := g.Integer().ExclusiveMaximum(10).Maximum(9)
	assert.JSONEq(t, `{"type":"integer","maximum":9,`+draft07+`}`, jsonOf(t, m))
	m = m.ExclusiveMaximum(10)
	assert.JSONEq(t, `{"type":"integer","exclusiveMaximum":10,`+draft07+`}`, jsonOf(t, m))
	ok, _ := m.Validate(10)
	assert.False(t, ok)
	ok, _ = m.Validate(9)
	assert.True(t, ok)
}

func TestNumber_MultipleOf(t *testing.T) {
	s := g.Integer().MultipleOf(3)
	ok, _ := s.Validate(9)
	assert.True(t, ok)
	ok, _ = s.Validate(10)
	assert.False(t, ok)

	ok, _ = g.Integer().Validate(1.5)
	assert.False(t, ok)

	assert.Error(t, g.Number().MultipleOf(-1).Err())
}

func TestBooleanNullAny(t *testing.T) {
	ok, _ := g.Boolean().Validate(true)
	assert.True(t, ok)
	ok, _ = g.Boolean().Validate("true")
	assert.False(t, ok)

	ok, _ = g.Null().Validate(nil)
	assert.True(t, ok)
	ok, _ = g.Null().Validate(0)
	assert.False(t, ok)

	for _, v := range []any{nil, 1, "s", []any{}, map[string]any{}} {
		ok, _ = g.Any().Validate(v)
		assert.True(t, ok)
	}
	assert.JSONEq(t, `{`+draft07+`}`, jsonOf(t, g.Any()))
	assert.JSONEq(t, `{"type":"string",`+draft07+`}`, jsonOf(t, g.Any().As(js.TypeString)))
}

func TestArray_Items(t *testing.T) {
	s := g.List(g.String().MinLength(1)).MinItems(1).MaxItems(2).UniqueItems(true)
	assert.JSONEq(t, `{"type":"array","items":{"type":"string","minLength":1},"minItems":1,"maxItems":2,
		"uniqueItems":true,`+draft07+`}`, jsonOf(t, s))

	ok, _ := s.Validate([]string{"a", "b"})
	assert.True(t, ok)
	ok, _ = s.Validate([]string{})
	assert.False(t, ok)
	ok, _ = s.Validate([]string{"a", "a"})
	assert.False(t, ok)
	ok, iss := s.Validate([]string{"a", ""})
	assert.False(t, ok)
	assert.Equal(t, "/1", iss[0].Path)

	v, err := s.Ensure([]string{"x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, v)
}

func TestArray_TupleAndAdditional(t *testing.T) {
	s := g.Array().TupleItems(g.String(), g.Integer()).AdditionalItems(false)
	assert.JSONEq(t, `{"type":"array","items":[{"type":"string"},{"type":"integer"}],"additionalItems":false,`+draft07+`}`, jsonOf(t, s))

	ok, _ := s.Validate([]any{"a", 1})
	assert.True(t, ok)
	ok, _ = s.Validate([]any{"a", 1, true})
	assert.False(t, ok)
	ok, _ = s.Validate([]any{1, "a"})
	assert.False(t, ok)

	s2 := g.Array().TupleItems(g.String()).AdditionalItemsSchema(g.Boolean())
	ok, _ = s2.Validate([]any{"a", true, false})
	assert.True(t, ok)
	ok, _ = s2.Validate([]any{"a", 1})
	assert.False(t, ok)
}

func TestArray_Contains(t *testing.T) {
	s := g.Array().Contains(g.Const(5))
	ok, _ := s.Validate([]any{1, 5})
	assert.True(t, ok)
	ok, _ = s.Validate([]any{1, 2})
	assert.False(t, ok)
	assert.Error(t, g.Array().MinItems(-1).Err())
}

func TestObject_PropRequiredOrder(t *testing.T) {
	s := g.Object().
		Prop("b", g.String()).
		Prop("a", g.String()).
		Prop("c", g.String().Optional()).
		Prop("b", g.Integer())
	assert.Equal(t, `{"type":"object","properties":{"b":{"type":"integer"},"a":{"type":"string"},"c":{"type":"string"}},"required":["b","a"],`+draft07+`}`, jsonOf(t, s))
}

func TestObject_OptionalOverwriteKeepsRequired(t *testing.T) {
	s := g.Object().Prop("a", g.String()).Prop("a", g.String().Optional())
	v, _ := s.Document().Get(js.KeyRequired)
	assert.Equal(t, []string{"a"}, v)
}

func TestObject_Require(t *testing.T) {
	s := g.Object().Prop("a", g.String()).Prop("b", g.String()).Require("b", "c", "b")
	v, _ := s.Document().Get(js.KeyRequired)
	assert.Equal(t, []string{"b", "c"}, v)

	assert.False(t, s.Require().Document().Has(js.KeyRequired))
}

func TestObject_Keywords(t *testing.T) {
	s := g.Object().
		PropertyNames(g.String().Pattern("^[a-z]+$")).
		MinProperties(1).
		MaxProperties(2).
		PatternProperties(g.Props{"^n_": g.Number(), "^s_": g.String()}).
		AdditionalPropertiesSchema(g.Boolean())
	assert.JSONEq(t, `{"type":"object","propertyNames":{"type":"string","pattern":"^[a-z]+$"},
		"minProperties":1,"maxProperties":2,
		"patternProperties":{"^n_":{"type":"number"},"^s_":{"type":"string"}},
		"additionalProperties":{"type":"boolean"},`+draft07+`}`, jsonOf(t, s))

	ok, _ := s.Validate(map[string]any{})
	assert.False(t, ok)
	ok, _ = s.Validate(map[string]any{"x": true})
	assert.True(t, ok)
	ok, _ = s.Validate(map[string]any{"X": true})
	assert.False(t, ok)
	ok, _ = g.Object().PatternProperties(g.Props{"^n": g.Number()}).Validate(map[string]any{"n1": "x"})
	assert.False(t, ok)
}

func TestObject_Dependencies(t *testing.T) {
	s := g.Object().Dependencies(map[string]any{
		"card":    []string{"billing"},
		"premium": g.Object().Prop("level", g.Integer()),
	})
	assert.JSONEq(t, `{"type":"object","dependencies":{"card":["billing"],
		"premium":{"type":"object","properties":{"level":{"type":"integer"}},"required":["level"]}},`+draft07+`}`, jsonOf(t, s))

	ok, _ := s.Validate(map[string]any{"card": 1})
	assert.False(t, ok)
	ok, _ = s.Validate(map[string]any{"card": 1, "billing": "x"})
	assert.True(t, ok)
	ok, _ = s.Validate(map[string]any{"premium": true})
	assert.False(t, ok)
	ok, _ = s.Validate(map[string]any{"premium": true, "level": 2})
	assert.True(t, ok)

	assert.Error(t, g.Object().Dependencies(map[string]any{"x": 1}).Err())
}

func TestShape_ClosedByDefault(t *testing.T) {
	s := g.Shape(g.Props{"a": g.String()})
	v, _ := s.ValueOf().Get(js.KeyAdditionalProperties)
	assert.Equal(t, false, v)

	ok, _ := s.Validate(map[string]any{"a": "x", "b": 1})
	assert.False(t, ok)
	ok, _ = s.Validate(map[string]any{"a": "x"})
	assert.True(t, ok)

	open := s.AdditionalProperties(true)
	ok, _ = open.Validate(map[string]any{"a": "x", "b": 1})
	assert.True(t, ok)
}

func TestShapeOpen(t *testing.T) {
	s := g.ShapeOpen(g.Props{"a": g.String()})
	assert.JSONEq(t, `{"type":"object","properties":{"a":{"type":"string"}},"required":["a"],`+draft07+`}`, jsonOf(t, s))

	ok, _ := s.Validate(map[string]any{"a": "x", "b": 1})
	assert.True(t, ok)
	ok, _ = s.Validate(map[string]any{"b": 1})
	assert.False(t, ok)
}

func TestZeroValueKinds(t *testing.T) {
	var str g.StringSchema
	assert.NotPanics(t, func() { str = str.MinLength(2).Title("t") })
	assert.JSONEq(t, `{"minLength":2,"title":"t"}`, jsonOf(t, str))
	ok, _ := str.Validate("a")
	assert.False(t, ok)

	var obj g.ObjectSchema[map[string]any]
	assert.NotPanics(t, func() { obj = obj.Prop("a", g.Integer()).Optional() })
	assert.False(t, obj.IsRequired())

	var num g.NumberSchema[int64]
	assert.NotPanics(t, func() { _ = num.Minimum(1).Maximum(3) })
	var arr g.ArraySchema[string]
	assert.NotPanics(t, func() { _ = arr.Items(g.String()).MinItems(1) })
	var n g.Node[bool]
	assert.NotPanics(t, func() { _ = n.As(js.TypeBoolean).Const(true) })
}

func TestShape_RequiredPropagation(t *testing.T) {
	s := g.Shape(g.Props{"a": g.String(), "b": g.String().Optional()})
	v, _ := s.ValueOf().Get(js.KeyRequired)
	assert.Equal(t, []string{"a"}, v)

	ok, iss := s.Validate(map[string]any{"b": "x"})
	assert.False(t, ok)
	assert.Equal(t, "required", iss[0].Keyword)
}

func TestShape_DeterministicOrder(t *testing.T) {
	s := g.Shape(g.Props{"zeta": g.String(), "alpha": g.String(), "mid": g.String()})
	assert.Equal(t, `{"type":"object","additionalProperties":false,`+
		`"properties":{"alpha":{"type":"string"},"mid":{"type":"string"},"zeta":{"type":"string"}},`+
		`"required":["alpha","mid","zeta"],`+draft07+`}`, jsonOf(t, s))
}

func TestObject_Partial(t *testing.T) {
	s := g.Shape(g.Props{"a": g.Shape(g.Props{"b": g.String()})}).Partial()
	assert.False(t, s.Document().Has(js.KeyRequired))
	props, _ := s.Document().Doc(js.KeyProperties)
	a, _ := props.Doc("a")
	assert.False(t, a.Has(js.KeyRequired))
	inner, _ := a.Doc(js.KeyProperties)
	assert.True(t, inner.Has("b"), "properties are kept")

	ok, _ := s.Validate(map[string]any{})
	assert.True(t, ok)
	ok, _ = s.Validate(map[string]any{"a": map[string]any{}})
	assert.True(t, ok)
	ok, _ = s.Validate(map[string]any{"a": map[string]any{"c": 1}})
	assert.False(t, ok, "closed shapes stay closed")
}

func TestObject_PartialSkipsNonObjects(t *testing.T) {
	arr := g.List(g.Shape(g.Props{"x": g.String()}))
	s := g.Shape(g.Props{"list": arr}).Partial()
	props, _ := s.Document().Doc(js.KeyProperties)
	list, _ := props.Doc("list")
	items, _ := list.Doc(js.KeyItems)
	assert.True(t, items.Has(js.KeyRequired), "array items are not object-typed properties")
}

func TestShapeOf_TypedEnsure(t *testing.T) {
	type user struct {
		Name string `json:"name"`
	}
	s := g.ShapeOf[user](g.Props{"name": g.String().MinLength(1)})
	u, err := s.Ensure(user{Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, "a", u.Name)

	_, err = s.Ensure(user{})
	assert.Error(t, err)

	d := s.Default(user{Name: "x"})
	assert.JSONEq(t, `{"name":"x"}`, mustJSON(t, d.Document(), js.KeyDefault))
}

func mustJSON(t *testing.T, d js.Document, key string) string {
	t.Helper()
	v, ok := d.Get(key)
	require.True(t, ok)
	b, err := js.Document{}.With("v", v).MarshalJSON()
	require.NoError(t, err)
	// strip {"v": ... }
	return string(b[5 : len(b)-1])
}
