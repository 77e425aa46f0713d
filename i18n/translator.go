package i18n

import "sync/atomic"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "key" or "detail").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dict = map[string]map[string]string{
	"en": {
		"invalid_type":     "invalid type",
		"required":         "required property missing",
		"unknown_key":      "unknown key",
		"duplicate_key":    "duplicate key",
		"too_small":        "too small",
		"too_big":          "too big",
		"too_short":        "too short",
		"too_long":         "too long",
		"too_few":          "too few elements",
		"too_many":         "too many elements",
		"pattern":          "does not match pattern",
		"invalid_enum":     "not one of the allowed values",
		"invalid_const":    "not the expected constant",
		"invalid_format":   "invalid format",
		"not_multiple":     "not a multiple of the required factor",
		"not_unique":       "elements are not unique",
		"no_match":         "does not match the expected schemas",
		"dependency":       "dependency not satisfied",
		"predicate":        "predicate not satisfied",
		"invalid":          "invalid value",
		"parse_error":      "parse error",
		"schema_compile":   "schema cannot be compiled",
		"invalid_argument": "invalid builder argument",
	},
	"ja": {
		"invalid_type":     "型が不正です",
		"required":         "必須プロパティが不足しています",
		"unknown_key":      "未知のキーです",
		"duplicate_key":    "キーが重複しています",
		"too_small":        "小さすぎます",
		"too_big":          "大きすぎます",
		"too_short":        "短すぎます",
		"too_long":         "長すぎます",
		"too_few":          "要素が少なすぎます",
		"too_many":         "要素が多すぎます",
		"pattern":          "パターンに一致しません",
		"invalid_enum":     "許可された値ではありません",
		"invalid_const":    "期待される定数ではありません",
		"invalid_format":   "形式が不正です",
		"not_multiple":     "指定された値の倍数ではありません",
		"not_unique":       "要素が一意ではありません",
		"no_match":         "期待されるスキーマに一致しません",
		"dependency":       "依存関係を満たしていません",
		"predicate":        "述語を満たしていません",
		"invalid":          "値が不正です",
		"parse_error":      "解析エラー",
		"schema_compile":   "スキーマをコンパイルできません",
		"invalid_argument": "ビルダー引数が不正です",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dict[t.lang][code]
	if !ok {
		return code
	}
	if k := data["key"]; k != "" {
		msg += ": " + k
	}
	if d := data["detail"]; d != "" {
		msg += ": " + d
	}
	return msg
}

type holder struct{ tr Translator }

var current atomic.Pointer[holder]

func init() { current.Store(&holder{tr: dictTranslator{lang: "en"}}) }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	current.Store(&holder{tr: dictTranslator{lang: lang}})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	current.Store(&holder{tr: tr})
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return current.Load().tr.Message(code, data) }
