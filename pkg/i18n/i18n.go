// Package i18n provides the English and Japanese message catalogs used for
// label reasoning and summaries.
package i18n

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Locale is a supported catalog language.
type Locale string

const (
	English  Locale = "en"
	Japanese Locale = "ja"
)

var (
	supported = []language.Tag{language.English, language.Japanese}
	locales   = []Locale{English, Japanese}
	matcher   = language.NewMatcher(supported)
)

// Resolve maps a language code such as "en-US" or "ja_JP" to a supported
// locale. Unknown or empty codes resolve to English.
func Resolve(lang string) Locale {
	lang = strings.TrimSpace(strings.ReplaceAll(lang, "_", "-"))
	if lang == "" {
		return English
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return English
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return English
	}
	return locales[idx]
}

// Catalog renders message keys for one locale.
type Catalog struct {
	locale   Locale
	messages map[string]string
}

// New returns the catalog for lang, resolved with Resolve.
func New(lang string) *Catalog {
	loc := Resolve(lang)
	msgs := en
	if loc == Japanese {
		msgs = ja
	}
	return &Catalog{locale: loc, messages: msgs}
}

// Locale returns the resolved locale.
func (c *Catalog) Locale() Locale { return c.locale }

// T renders key with {name} placeholders replaced by params. Keys missing
// from the locale fall back to English, then to the key itself.
func (c *Catalog) T(key string, params map[string]any) string {
	msg, ok := c.messages[key]
	if !ok {
		if msg, ok = en[key]; !ok {
			return key
		}
	}
	if len(params) == 0 {
		return msg
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", formatParam(v))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

func formatParam(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
