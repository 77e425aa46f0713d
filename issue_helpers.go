package fluentschema

import (
	"github.com/reoring/fluentschema/i18n"
	"github.com/reoring/fluentschema/internal/engine"
	js "github.com/reoring/fluentschema/jsonschema"
)

// keywordCodes maps failing schema keywords onto issue codes.
var keywordCodes = map[string]string{
	js.KeyType:                 CodeInvalidType,
	js.KeyRequired:             CodeRequired,
	js.KeyAdditionalProperties: CodeUnknownKey,
	js.KeyMinLength:            CodeTooShort,
	js.KeyMaxLength:            CodeTooLong,
	js.KeyMinimum:              CodeTooSmall,
	js.KeyExclusiveMinimum:     CodeTooSmall,
	js.KeyMaximum:              CodeTooBig,
	js.KeyExclusiveMaximum:     CodeTooBig,
	js.KeyMinItems:             CodeTooFew,
	js.KeyMinProperties:        CodeTooFew,
	js.KeyMaxItems:             CodeTooMany,
	js.KeyMaxProperties:        CodeTooMany,
	js.KeyPattern:              CodePattern,
	js.KeyEnum:                 CodeInvalidEnum,
	js.KeyConst:                CodeInvalidConst,
	js.KeyFormat:               CodeInvalidFormat,
	js.KeyMultipleOf:           CodeNotMultiple,
	js.KeyUniqueItems:          CodeNotUnique,
	js.KeyAnyOf:                CodeNoMatch,
	js.KeyOneOf:                CodeNoMatch,
	js.KeyNot:                  CodeNoMatch,
	js.KeyContains:             CodeNoMatch,
	js.KeyDependencies:         CodeDependency,
	js.KeyInstanceOf:           CodePredicate,
}

// CodeForKeyword returns the issue code for a failing keyword, or
// CodeInvalid for keywords without a dedicated code.
func CodeForKeyword(kw string) string {
	if c, ok := keywordCodes[kw]; ok {
		return c
	}
	return CodeInvalid
}

// IssueAt creates an Issue at the given JSON Pointer with the provided code
// and message.
func IssueAt(path, code, msg string) Issue {
	if path == "" {
		path = "/"
	}
	return Issue{Path: path, Code: code, Message: msg}
}

func fromViolations(vs []engine.Violation) Issues {
	if len(vs) == 0 {
		return nil
	}
	out := make(Issues, 0, len(vs))
	for _, v := range vs {
		kw := v.Keyword()
		code := CodeForKeyword(kw)
		it := IssueAt(v.InstanceLocation, code, i18n.T(code, nil))
		it.Keyword = kw
		it.SchemaPath = v.KeywordLocation
		it.Cause = v
		out = append(out, it)
	}
	sortIssues(out)
	return out
}
