package message

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Catalog holds translated message templates keyed by language tag and source template.
type Catalog struct {
	mu           sync.RWMutex
	translations map[string]map[string]string
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{translations: make(map[string]map[string]string)}
}

// Add registers a translation of template for lang.
// The language tag is canonicalized, so "en-us" and "en-US" are the same entry.
func (c *Catalog) Add(lang, template, translated string) error {
	tag, err := canonical(lang)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.translations[tag] == nil {
		c.translations[tag] = make(map[string]string)
	}
	c.translations[tag][template] = translated
	return nil
}

// LoadYAML merges a YAML document of the form {lang: {template: translation}} into the catalog.
func (c *Catalog) LoadYAML(r io.Reader) error {
	var data map[string]map[string]string
	if err := yaml.NewDecoder(r).Decode(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Join(ErrFailedToParseYAML, err)
	}

	for lang, entries := range data {
		if entries == nil {
			return fmt.Errorf("%w: no entries for language %q", ErrInvalidCatalogData, lang)
		}
		for template, translated := range entries {
			if err := c.Add(lang, template, translated); err != nil {
				return err
			}
		}
	}
	return nil
}

// Languages returns the canonical tags that have at least one translation.
func (c *Catalog) Languages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	langs := make([]string, 0, len(c.translations))
	for lang := range c.translations {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Translate returns the translated template for lang, or template itself when
// no translation is known.
func (c *Catalog) Translate(lang, template string) string {
	tag, err := canonical(lang)
	if err != nil {
		return template
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if translated, ok := c.translations[tag][template]; ok {
		return translated
	}
	// Fall back from a regional tag to its base language.
	if base, _ := language.Make(tag).Base(); base.String() != tag {
		if translated, ok := c.translations[base.String()][template]; ok {
			return translated
		}
	}
	return template
}

// Formatter returns a Formatter that translates into lang before substituting parameters.
func (c *Catalog) Formatter(lang string) Formatter {
	return FormatterFunc(func(template string, params map[string]string) string {
		return Format(c.Translate(lang, template), params)
	})
}

func canonical(lang string) (string, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return "", errors.Join(ErrInvalidLanguage, err)
	}
	return tag.String(), nil
}
