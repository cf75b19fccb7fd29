// Package i18n - переводы сообщений страницы списка тикетов.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Ключи сообщений.
const (
	KeyCaseSensitiveSearch = "case_sensitive_search"
)

const caseSensitiveSearchEN = "<p><strong>Note:</strong> Your keyword search is case sensitive " +
	"because of your database. This means the search will <strong>not</strong> " +
	"be accurate. By switching to a different database system you will gain " +
	"better searching! For more information, read the " +
	`<a href="http://docs.djangoproject.com/en/dev/ref/databases/#sqlite-string-matching">` +
	"Django Documentation on string matching in SQLite</a>."

const caseSensitiveSearchES = "<p><strong>Nota:</strong> La búsqueda por palabra clave distingue " +
	"mayúsculas y minúsculas debido a su base de datos. Esto significa que la búsqueda " +
	"<strong>no</strong> será precisa. ¡Cambiando a otro sistema de base de datos obtendrá " +
	"mejores búsquedas! Para más información, lea la " +
	`<a href="http://docs.djangoproject.com/en/dev/ref/databases/#sqlite-string-matching">` +
	"documentación de Django sobre comparación de cadenas en SQLite</a>."

var supported = []language.Tag{language.Spanish, language.English}

type Translator struct {
	catalog  catalog.Catalog
	matcher  language.Matcher
	fallback language.Tag
}

// New - переводчик с языком по умолчанию fallback ("es", "en").
// Каталог собирается из констант, ошибка сборки - паника.
func New(fallback string) *Translator {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	if err := b.SetString(language.English, KeyCaseSensitiveSearch, caseSensitiveSearchEN); err != nil {
		panic("ошибка сборки каталога сообщений: " + err.Error())
	}
	if err := b.SetString(language.Spanish, KeyCaseSensitiveSearch, caseSensitiveSearchES); err != nil {
		panic("ошибка сборки каталога сообщений: " + err.Error())
	}

	tag, err := language.Parse(fallback)
	if err != nil {
		tag = language.Spanish
	}

	return &Translator{catalog: b, matcher: language.NewMatcher(supported), fallback: tag}
}

// Match выбирает язык по заголовку Accept-Language.
func (t *Translator) Match(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return t.fallback
	}
	tag, _ := language.MatchStrings(t.matcher, acceptLanguage)
	base, _ := tag.Base()
	for _, s := range supported {
		if b, _ := s.Base(); b == base {
			return s
		}
	}
	return t.fallback
}

func (t *Translator) Sprintf(tag language.Tag, key string, args ...interface{}) string {
	return message.NewPrinter(tag, message.Catalog(t.catalog)).Sprintf(key, args...)
}
