package labels

import "testing"

func TestServiceLabels(t *testing.T) {
	if got := Service("consultation", LangRU); got != "Консультация" {
		t.Fatalf("unexpected ru label: %s", got)
	}
	if got := Service("consultation", LangKZ); got != "Кеңес алу" {
		t.Fatalf("unexpected kz label: %s", got)
	}
}

func TestUnknownValueFallsBackToRaw(t *testing.T) {
	if got := Status("ARCHIVED", LangRU); got != "ARCHIVED" {
		t.Fatalf("expected raw value, got %s", got)
	}
	if got := Category("", LangKZ); got != "" {
		t.Fatalf("expected empty passthrough, got %s", got)
	}
}

func TestNormalize(t *testing.T) {
	if Normalize("kz") != LangKZ {
		t.Fatal("kz should stay kz")
	}
	for _, lang := range []string{"", "en", "ru"} {
		if Normalize(lang) != LangRU {
			t.Fatalf("lang %q should normalize to ru", lang)
		}
	}
}
