package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("invalid_type", nil); msg == "invalid_type" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("invalid_type", nil); msg == "invalid type" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_Data(t *testing.T) {
	if got := T("duplicate_key", map[string]string{"key": "a"}); got != "duplicate key: a" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := T("schema_compile", map[string]string{"detail": "bad regex"}); got != "schema cannot be compiled: bad regex" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestTranslator_UnknownCodeFallsBack(t *testing.T) {
	if got := T("no_such_code", nil); got != "no_such_code" {
		t.Fatalf("unexpected: %q", got)
	}
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator(t *testing.T) {
	SetTranslator(upper{})
	defer SetTranslator(nil)
	if got := T("required", nil); got != "X:required" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestTranslator_CatalogsCoverTheSameCodes(t *testing.T) {
	for code := range dict["en"] {
		if _, ok := dict["ja"][code]; !ok {
			t.Fatalf("ja has no message for %q", code)
		}
	}
	if len(dict["en"]) != len(dict["ja"]) {
		t.Fatalf("catalog sizes differ: en=%d ja=%d", len(dict["en"]), len(dict["ja"]))
	}
	for _, code := range []string{"no_match", "not_multiple", "not_unique", "dependency", "invalid"} {
		if T(code, nil) == code {
			t.Fatalf("no message for %q", code)
		}
	}
}
