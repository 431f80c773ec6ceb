package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/am"
	"github.com/go-playground/locales/ar"
	"github.com/go-playground/locales/de"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/es"
	"github.com/go-playground/locales/fa"
	"github.com/go-playground/locales/fr"
	"github.com/go-playground/locales/it"
	"github.com/go-playground/locales/ru"
	"github.com/go-playground/locales/ta"
	"github.com/go-playground/locales/ti"
	"github.com/go-playground/locales/uk"
	ut "github.com/go-playground/universal-translator"
)

const DefaultLocale = "en"

//go:embed locales/*.json
var bundles embed.FS

// Translator resolves a message key for a locale. Bundles are JSON objects of
// key -> text; positional arguments are written {0}, {1}, ...
type Translator struct {
	uni      *ut.UniversalTranslator
	fallback ut.Translator
}

func New() (*Translator, error) {
	supported := []locales.Translator{
		am.New(), ar.New(), de.New(), en.New(), es.New(), fa.New(),
		fr.New(), it.New(), ru.New(), ta.New(), ti.New(), uk.New(),
	}
	uni := ut.New(en.New(), supported...)

	for _, l := range supported {
		trans, _ := uni.GetTranslator(l.Locale())
		if err := load(trans, l.Locale()); err != nil {
			return nil, err
		}
	}

	fallback, _ := uni.GetTranslator(DefaultLocale)
	return &Translator{uni: uni, fallback: fallback}, nil
}

func load(trans ut.Translator, locale string) error {
	raw, err := bundles.ReadFile(path.Join("locales", locale+".json"))
	if err != nil {
		return fmt.Errorf("missing bundle for locale %q: %w", locale, err)
	}
	var messages map[string]string
	if err := json.Unmarshal(raw, &messages); err != nil {
		return fmt.Errorf("invalid bundle for locale %q: %w", locale, err)
	}
	for key, text := range messages {
		if err := trans.Add(key, text, false); err != nil {
			return fmt.Errorf("locale %q key %q: %w", locale, key, err)
		}
	}
	return nil
}

// T translates key into locale. Region variants fall back to their base
// language, unknown locales to English, and unknown keys to the key itself.
func (t *Translator) T(locale, key string, args ...string) string {
	trans := t.translatorFor(locale)
	if msg, err := trans.T(key, args...); err == nil {
		return msg
	}
	if msg, err := t.fallback.T(key, args...); err == nil {
		return msg
	}
	return key
}

func (t *Translator) translatorFor(locale string) ut.Translator {
	locale = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "-", "_"))
	if locale == "" {
		return t.fallback
	}
	if trans, found := t.uni.GetTranslator(locale); found {
		return trans
	}
	if base, _, ok := strings.Cut(locale, "_"); ok {
		if trans, found := t.uni.GetTranslator(base); found {
			return trans
		}
	}
	return t.fallback
}
