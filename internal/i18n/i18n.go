// Package i18n resolves every user-facing string of the listing dialogue.
//
// Each supported language ships one complete catalog under locales/. Catalogs
// are checked against the required key set when loaded, so a lookup at runtime
// can only fail for keys outside that set.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Lang is a supported conversation language.
type Lang string

const (
	RU Lang = "ru"
	AZ Lang = "az"

	// Fallback is used for cancellation text when no language was chosen yet.
	Fallback = RU
)

// Key identifies a localized text.
type Key string

const (
	PromptUserName           Key = "prompt.user_name"
	PromptBirthDate          Key = "prompt.birth_date"
	PromptDistrict           Key = "prompt.district"
	PromptApartmentType      Key = "prompt.apartment_type"
	PromptFloorBuilding      Key = "prompt.floor.building"
	PromptFloorPrivate       Key = "prompt.floor.private"
	PromptApartmentCondition Key = "prompt.apartment_condition"
	PromptRooms              Key = "prompt.rooms"
	PromptPrice              Key = "prompt.price"
	PromptContact            Key = "prompt.contact"

	TextCancelled     Key = "text.cancelled"
	TextSummaryHeader Key = "text.summary_header"

	SummaryUserName           Key = "summary.user_name"
	SummaryBirthDate          Key = "summary.birth_date"
	SummaryDistrict           Key = "summary.district"
	SummaryApartmentType      Key = "summary.apartment_type"
	SummaryFloorBuilding      Key = "summary.floor.building"
	SummaryFloorPrivate       Key = "summary.floor.private"
	SummaryApartmentCondition Key = "summary.apartment_condition"
	SummaryRooms              Key = "summary.rooms"
	SummaryPrice              Key = "summary.price"
	SummaryContact            Key = "summary.contact"
	SummaryTypeBuilding       Key = "summary.type.building"
	SummaryTypePrivate        Key = "summary.type.private"

	CommandStart  Key = "command.start"
	CommandCancel Key = "command.cancel"
)

// ButtonSet identifies a group of choice buttons.
type ButtonSet string

const (
	ButtonsApartmentType      ButtonSet = "apartment_type"
	ButtonsApartmentCondition ButtonSet = "apartment_condition"
)

// Button is a localized choice. Token is stable across languages.
type Button struct {
	Token string `yaml:"token"`
	Label string `yaml:"label"`
}

var (
	// ErrUnknownLang is returned for languages without a catalog.
	ErrUnknownLang = errors.New("i18n: unknown language")
	// ErrUnknownKey is returned for keys missing from a catalog.
	ErrUnknownKey = errors.New("i18n: unknown key")
)

// RequiredKeys lists every text key each catalog must define.
var RequiredKeys = []Key{
	PromptUserName, PromptBirthDate, PromptDistrict, PromptApartmentType,
	PromptFloorBuilding, PromptFloorPrivate, PromptApartmentCondition,
	PromptRooms, PromptPrice, PromptContact,
	TextCancelled, TextSummaryHeader,
	SummaryUserName, SummaryBirthDate, SummaryDistrict, SummaryApartmentType,
	SummaryFloorBuilding, SummaryFloorPrivate, SummaryApartmentCondition,
	SummaryRooms, SummaryPrice, SummaryContact, SummaryTypeBuilding, SummaryTypePrivate,
	CommandStart, CommandCancel,
}

// RequiredButtons lists the tokens, in display order, each button set must carry.
var RequiredButtons = map[ButtonSet][]string{
	ButtonsApartmentType:      {"building", "private"},
	ButtonsApartmentCondition: {"new", "good", "average", "needs_repair"},
}

//go:embed locales/*.yaml
var localesFS embed.FS

type bundle struct {
	Texts   map[Key]string         `yaml:"texts"`
	Buttons map[ButtonSet][]Button `yaml:"buttons"`
}

// Catalog resolves texts and buttons for the loaded languages.
type Catalog struct {
	bundles map[Lang]bundle
}

// Load parses every locales/<lang>.yaml in fsys and validates completeness.
func Load(fsys fs.FS) (*Catalog, error) {
	files, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("i18n: list catalogs: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("i18n: no catalogs found")
	}
	c := &Catalog{bundles: make(map[Lang]bundle, len(files))}
	for _, name := range files {
		lang := Lang(strings.TrimSuffix(path.Base(name), ".yaml"))
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", name, err)
		}
		var b bundle
		if err := yaml.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", name, err)
		}
		if err := b.validate(); err != nil {
			return nil, fmt.Errorf("i18n: catalog %s: %w", lang, err)
		}
		c.bundles[lang] = b
	}
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog built from the embedded locales.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(localesFS)
	})
	return defaultCatalog, defaultErr
}

func (b bundle) validate() error {
	var missing []string
	for _, k := range RequiredKeys {
		if strings.TrimSpace(b.Texts[k]) == "" {
			missing = append(missing, string(k))
		}
	}
	for set, tokens := range RequiredButtons {
		got := b.Buttons[set]
		if len(got) != len(tokens) {
			missing = append(missing, "buttons."+string(set))
			continue
		}
		for i, tok := range tokens {
			if got[i].Token != tok || strings.TrimSpace(got[i].Label) == "" {
				missing = append(missing, fmt.Sprintf("buttons.%s.%s", set, tok))
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(missing, ", "))
	}
	return nil
}

// Languages returns the loaded languages in sorted order.
func (c *Catalog) Languages() []Lang {
	langs := make([]Lang, 0, len(c.bundles))
	for l := range c.bundles {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// Supports reports whether lang has a catalog.
func (c *Catalog) Supports(lang Lang) bool {
	_, ok := c.bundles[lang]
	return ok
}

// Resolve returns the text for key in lang.
func (c *Catalog) Resolve(lang Lang, key Key) (string, error) {
	b, ok := c.bundles[lang]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLang, lang)
	}
	text, ok := b.Texts[key]
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrUnknownKey, lang, key)
	}
	return text, nil
}

// Buttons returns a copy of the button set for lang.
func (c *Catalog) Buttons(lang Lang, set ButtonSet) ([]Button, error) {
	b, ok := c.bundles[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLang, lang)
	}
	buttons, ok := b.Buttons[set]
	if !ok {
		return nil, fmt.Errorf("%w: %s/buttons.%s", ErrUnknownKey, lang, set)
	}
	return append([]Button(nil), buttons...), nil
}

// ButtonLabel maps a stored token back to its label in lang.
func (c *Catalog) ButtonLabel(lang Lang, set ButtonSet, token string) (string, error) {
	buttons, err := c.Buttons(lang, set)
	if err != nil {
		return "", err
	}
	for _, b := range buttons {
		if b.Token == token {
			return b.Label, nil
		}
	}
	return "", fmt.Errorf("%w: %s/buttons.%s.%s", ErrUnknownKey, lang, set, token)
}
