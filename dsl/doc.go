// Package dsl provides immutable, fluent builders for JSON Schema draft-07
// documents.
//
// Overview
//   - Every builder is a value. Each chained call returns a new builder; the receiver never changes.
//   - ValueOf() returns the document with $schema (draft-07 by default) and hoisted definitions.
//   - The type parameter of a kind (StringSchema is string, NumberSchema[int64], ObjectSchema[T], ...) types
//     Default/Const/Enum/Examples/Ensure arguments. It never appears in the document.
//   - Validate/Ensure run the document through fluentschema.Default().
//
// Entry points
//   - String(), Number(), Integer(), Boolean(), Null(), Any()
//   - Array(), List(item), Object(), Shape(props), ShapeOpen(props), ShapeOf[T](props)
//   - Enum(...), Const(v), AnyOf/AllOf/OneOf(...), Not(s), IfThen/IfThenElse
//   - Raw(fragment), ID, Ref, Schema, Title, Description, Examples, Default, Definition
//   - InstanceOf(key), InstanceOfType[T](), Expr(cel)
//
// Objects
//
// Shape builds closed objects (additionalProperties: false); ShapeOpen leaves
// additionalProperties unset, and Shape(p).AdditionalProperties(true) writes
// it as true. A property is
// listed under required at the moment it is added with Prop, unless its
// builder was marked Optional(). Require(...) replaces the list; Partial()
// drops it at every object level.
//
//	user := dsl.Shape(dsl.Props{
//	    "name": dsl.String().MinLength(1),
//	    "tags": dsl.List(dsl.String()).UniqueItems(true).Optional(),
//	})
//	// {"type":"object","additionalProperties":false,
//	//  "properties":{"name":{...},"tags":{...}},"required":["name"],
//	//  "$schema":"http://json-schema.org/draft-07/schema#"}
//
// Numbers
//
// Minimum and ExclusiveMinimum (likewise the maximum pair) replace each
// other; a document never carries both forms of one bound.
//
// Zero values
//
// The zero value of a kind (dsl.StringSchema{}) is usable: it describes any
// value and carries neither type nor $schema. Start from the factory
// functions to get both.
//
// Argument errors
//
// Malformed arguments (negative lengths, MultipleOf(0), nil builders) do not
// panic. They are collected and reported by Err(), and validation against
// such a builder fails with an invalid_argument issue.
package dsl
