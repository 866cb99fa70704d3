// Package i18n provides internationalization support for error messages.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Code is a machine-readable error code (duplicated from errors package to avoid cycle).
type Code = string

// BaseLocale is the locale used when a request names none or an unsupported one.
const BaseLocale = "en-US"

var supportedTags = []language.Tag{
	language.AmericanEnglish,
	language.MustParse("de-DE"),
}

var tagMatcher = language.NewMatcher(supportedTags)

var messages = buildCatalog()

// Catalog renders error messages for a specific locale.
type Catalog struct {
	locale  string
	printer *message.Printer
}

var (
	catalogsMu sync.RWMutex
	catalogs   = map[string]*Catalog{}
)

// GetCatalog returns the catalog for the given locale.
// Unsupported locales resolve to the closest supported one, or en-US.
func GetCatalog(locale string) *Catalog {
	tag := resolveTag(locale)
	key := tag.String()

	catalogsMu.RLock()
	cat, ok := catalogs[key]
	catalogsMu.RUnlock()
	if ok {
		return cat
	}

	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	if cat, ok := catalogs[key]; ok {
		return cat
	}
	cat = &Catalog{
		locale:  key,
		printer: message.NewPrinter(tag, message.Catalog(messages)),
	}
	catalogs[key] = cat
	return cat
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template with the given metadata.
// Falls back to the error code itself if no template is found.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl := c.printer.Sprintf(code)
	if tmpl == code {
		return code
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return tmpl
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}

func resolveTag(locale string) language.Tag {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		return supportedTags[0]
	}
	parsed, err := language.Parse(requested)
	if err != nil {
		return supportedTags[0]
	}
	_, index, confidence := tagMatcher.Match(parsed)
	if confidence == language.No {
		return supportedTags[0]
	}
	return supportedTags[index]
}

func buildCatalog() *catalog.Builder {
	builder := catalog.NewBuilder(catalog.Fallback(supportedTags[0]))
	for code, msg := range enUS {
		_ = builder.SetString(supportedTags[0], code, msg)
	}
	for code, msg := range deDE {
		_ = builder.SetString(supportedTags[1], code, msg)
	}
	return builder
}
