package dsl

import (
	"github.com/reoring/fluentschema"
	js "github.com/reoring/fluentschema/jsonschema"
)

// String describes strings.
func String() StringSchema { return wrapString(newNode(js.TypeString)) }

// Number describes numbers; bounds are float64.
func Number() NumberSchema[float64] { return wrapNumber[float64](newNode(js.TypeNumber)) }

// Integer describes integers; bounds are int64.
func Integer() NumberSchema[int64] { return wrapNumber[int64](newNode(js.TypeInteger)) }

// Boolean describes true and false.
func Boolean() Node[bool] { return wrapNode[bool](newNode(js.TypeBoolean)) }

// Null describes null.
func Null() Node[any] { return wrapNode[any](newNode(js.TypeNull)) }

// Array describes arrays of any element.
func Array() ArraySchema[any] { return wrapArray[any](newNode(js.TypeArray)) }

// List is Array().Items(item) with the element type taken from item.
func List[E any](item Of[E]) ArraySchema[E] {
	return wrapArray[E](newNode(js.TypeArray)).Items(item)
}

// Object describes an open object with no properties yet.
func Object() ObjectSchema[map[string]any] { return wrapObject[map[string]any](newNode(js.TypeObject)) }

// Shape builds a closed object: additionalProperties is false and each
// entry of props is added with Prop. Reopen it with AdditionalProperties(true)
// or use ShapeOpen.
func Shape(props Props) ObjectSchema[map[string]any] { return shapeOf[map[string]any](props, true) }

// ShapeOpen is Shape with additionalProperties left unset, so unlisted
// properties are accepted.
func ShapeOpen(props Props) ObjectSchema[map[string]any] {
	return shapeOf[map[string]any](props, false)
}

// ShapeOf is Shape declaring the Go type T for the object.
func ShapeOf[T any](props Props) ObjectSchema[T] { return shapeOf[T](props, true) }

func shapeOf[T any](props Props, closed bool) ObjectSchema[T] {
	s := wrapObject[T](newNode(js.TypeObject))
	if closed {
		s = s.AdditionalProperties(false)
	}
	for _, k := range props.keys() {
		s = s.Prop(k, props[k])
	}
	return s
}

// Enum accepts exactly one of values.
func Enum[T any](values ...T) Node[T] { return wrapNode[T](newNode("")).Enum(values...) }

// Const accepts exactly v.
func Const[T any](v T) Node[T] { return wrapNode[T](newNode("")).Const(v) }

// AnyOf accepts values matching at least one of bs.
func AnyOf(bs ...Builder) Node[any] { return Any().AnyOf(bs...) }

// AllOf accepts values matching every one of bs.
func AllOf(bs ...Builder) Node[any] { return Any().AllOf(bs...) }

// OneOf accepts values matching exactly one of bs.
func OneOf(bs ...Builder) Node[any] { return Any().OneOf(bs...) }

// Not accepts values that do not match b.
func Not(b Builder) Node[any] { return Any().Not(b) }

// Any accepts every value.
func Any() Node[any] { return wrapNode[any](newNode("")) }

// Raw starts from a hand-written fragment.
func Raw(fragment js.Document) Node[any] { return Any().Raw(fragment) }

// ID starts an untyped schema with $id.
func ID(uri string) Node[any] { return Any().ID(uri) }

// Schema starts an untyped schema with the given $schema URI.
func Schema(uri string) Node[any] { return Any().Schema(uri) }

// Ref starts an untyped schema with $ref.
func Ref(uri string) Node[any] { return Any().Ref(uri) }

// Title starts an untyped schema with a title.
func Title(s string) Node[any] { return Any().Title(s) }

// Description starts an untyped schema with a description.
func Description(s string) Node[any] { return Any().Description(s) }

// Examples starts an untyped schema with examples.
func Examples(values ...any) Node[any] { return Any().Examples(values...) }

// Default starts an untyped schema with a default value.
func Default(v any) Node[any] { return Any().Default(v) }

// Definition starts an untyped schema carrying one definition.
func Definition(name string, b Builder) Node[any] { return Any().Definition(name, b) }

// InstanceOf starts an untyped schema checked by a registered predicate.
func InstanceOf(key string) Node[any] { return Any().InstanceOf(key) }

// InstanceOfType accepts values that decode into T without unknown fields.
func InstanceOfType[T any]() Node[T] {
	return wrapNode[T](newNode("")).InstanceOf(fluentschema.InstanceOf[T]())
}

// Expr starts an untyped schema checked by a CEL expression over self.
func Expr(src string) Node[any] { return Any().Expr(src) }

// IfThen applies thenB to values matching ifB.
func IfThen(ifB, thenB Builder) Node[any] { return Any().IfThen(ifB, thenB) }

// IfThenElse applies thenB to values matching ifB and elseB to the rest.
func IfThenElse(ifB, thenB, elseB Builder) Node[any] { return Any().IfThenElse(ifB, thenB, elseB) }
