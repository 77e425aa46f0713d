package jsonschema

// Draft07 is the meta-schema URI emitted as $schema by default.
const Draft07 = "http://json-schema.org/draft-07/schema#"

// Draft-07 vocabulary.
const (
	KeyID          = "$id"
	KeyRef         = "$ref"
	KeySchema      = "$schema"
	KeyDefinitions = "definitions"

	KeyType        = "type"
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyExamples    = "examples"
	KeyDefault     = "default"
	KeyEnum        = "enum"
	KeyConst       = "const"

	KeyAnyOf = "anyOf"
	KeyAllOf = "allOf"
	KeyOneOf = "oneOf"
	KeyNot   = "not"
	KeyIf    = "if"
	KeyThen  = "then"
	KeyElse  = "else"

	KeyMinLength        = "minLength"
	KeyMaxLength        = "maxLength"
	KeyPattern          = "pattern"
	KeyFormat           = "format"
	KeyContentMediaType = "contentMediaType"
	KeyContentEncoding  = "contentEncoding"

	KeyMinimum          = "minimum"
	KeyExclusiveMinimum = "exclusiveMinimum"
	KeyMaximum          = "maximum"
	KeyExclusiveMaximum = "exclusiveMaximum"
	KeyMultipleOf       = "multipleOf"

	KeyItems           = "items"
	KeyAdditionalItems = "additionalItems"
	KeyContains        = "contains"
	KeyMinItems        = "minItems"
	KeyMaxItems        = "maxItems"
	KeyUniqueItems     = "uniqueItems"

	KeyProperties           = "properties"
	KeyRequired             = "required"
	KeyAdditionalProperties = "additionalProperties"
	KeyPatternProperties    = "patternProperties"
	KeyDependencies         = "dependencies"
	KeyPropertyNames        = "propertyNames"
	KeyMinProperties        = "minProperties"
	KeyMaxProperties        = "maxProperties"

	// KeyInstanceOf is the custom keyword carrying a predicate registry key.
	KeyInstanceOf = "instanceOf"
)

// Type is a value of the "type" keyword.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeNull    Type = "null"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)
