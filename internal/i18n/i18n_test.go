package i18n

import (
	"testing"
	"testing/fstest"
)

func TestManagerFallsBackToDefaultLanguage(t *testing.T) {
	manager, err := NewManager("de", Locales())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	if got := manager.DefaultLanguage(); got != LangFR {
		t.Fatalf("expected fr default for unsupported language, got %q", got)
	}
	if got := manager.NormalizeLanguage("en_GB"); got != LangEN {
		t.Fatalf("expected en, got %q", got)
	}
	if got := manager.DetectFromAcceptLanguage("de-DE,en-US;q=0.8,fr;q=0.5"); got != LangEN {
		t.Fatalf("expected first supported accept-language entry, got %q", got)
	}
}

func TestTranslateReturnsKeyWhenMissing(t *testing.T) {
	manager, err := NewManager(LangEN, Locales())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	if got := manager.Translate(LangFR, "access.denied.enrollment"); got != "Vous n'êtes pas inscrit à ce programme." {
		t.Fatalf("unexpected fr translation %q", got)
	}
	if got := manager.Translate(LangEN, "missing.key"); got != "missing.key" {
		t.Fatalf("expected key echo, got %q", got)
	}
}

func TestNewManagerRequiresBothLocales(t *testing.T) {
	locales := fstest.MapFS{
		"en.json": {Data: []byte(`{"a":"b"}`)},
	}
	if _, err := NewManager(LangEN, locales); err == nil {
		t.Fatal("expected error when fr locale is missing")
	}
}
