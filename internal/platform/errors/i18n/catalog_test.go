package i18n

import "testing"

func TestGetCatalogFallback(t *testing.T) {
	base := GetCatalog("en-US")
	if base == nil {
		t.Fatal("expected base catalog")
	}
	for _, locale := range []string{"", "missing-locale", "fr-FR"} {
		if got := GetCatalog(locale); got != base {
			t.Fatalf("GetCatalog(%q) = %q, want en-US catalog", locale, got.Locale())
		}
	}
}

func TestGetCatalogMatchesGerman(t *testing.T) {
	cat := GetCatalog("de")
	if cat.Locale() != "de-DE" {
		t.Fatalf("locale = %q, want de-DE", cat.Locale())
	}
	if got := cat.Format("GAME_ID_REQUIRED", nil); got != "Eine Spiel-ID ist erforderlich." {
		t.Fatalf("Format = %q", got)
	}
}

func TestFormatTemplates(t *testing.T) {
	cat := GetCatalog("en-US")

	if got := cat.Format("GAME_NOT_FOUND", map[string]string{"game_id": "g1"}); got != "Game g1 was not found." {
		t.Fatalf("Format = %q", got)
	}
	if got := cat.Format("GAME_NOT_FOUND", nil); got != "Game  was not found." {
		t.Fatalf("Format without metadata = %q", got)
	}
	if got := cat.Format("NO_SUCH_CODE", nil); got != "NO_SUCH_CODE" {
		t.Fatalf("expected code fallback, got %q", got)
	}
}

func TestCatalogsShareKeys(t *testing.T) {
	for code := range enUS {
		if _, ok := deDE[code]; !ok {
			t.Fatalf("de-DE is missing %s", code)
		}
	}
	if len(enUS) != len(deDE) {
		t.Fatalf("catalog sizes differ: en-US=%d de-DE=%d", len(enUS), len(deDE))
	}
}
