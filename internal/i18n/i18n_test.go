package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogIsComplete(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Equal(t, []Lang{AZ, RU}, c.Languages())

	for _, lang := range c.Languages() {
		for _, key := range RequiredKeys {
			text, err := c.Resolve(lang, key)
			require.NoError(t, err, "%s/%s", lang, key)
			assert.NotEmpty(t, text)
		}
	}
}

func loadDefault(t *testing.T) *Catalog {
	t.Helper()
	c, err := Default()
	require.NoError(t, err)
	return c
}

func TestLanguageButtonsAreSupported(t *testing.T) {
	c := loadDefault(t)
	for _, b := range LanguageButtons {
		assert.True(t, c.Supports(Lang(b.Token)), b.Token)
	}
	assert.False(t, c.Supports("en"))
}

func TestButtonsKeepTokensAcrossLanguages(t *testing.T) {
	c := loadDefault(t)

	ru, err := c.Buttons(RU, ButtonsApartmentCondition)
	require.NoError(t, err)
	az, err := c.Buttons(AZ, ButtonsApartmentCondition)
	require.NoError(t, err)
	require.Len(t, ru, 4)
	require.Len(t, az, 4)
	for i := range ru {
		assert.Equal(t, ru[i].Token, az[i].Token)
	}

	label, err := c.ButtonLabel(AZ, ButtonsApartmentCondition, "good")
	require.NoError(t, err)
	assert.Equal(t, "Yaxşı", label)

	ru[0].Label = "changed"
	again, _ := c.Buttons(RU, ButtonsApartmentCondition)
	assert.Equal(t, "Новое", again[0].Label, "Buttons must return a copy")
}

func TestResolveErrors(t *testing.T) {
	c := loadDefault(t)

	_, err := c.Resolve("en", PromptRooms)
	assert.ErrorIs(t, err, ErrUnknownLang)

	_, err = c.Resolve(RU, Key("prompt.garage"))
	assert.ErrorIs(t, err, ErrUnknownKey)

	_, err = c.ButtonLabel(RU, ButtonsApartmentType, "castle")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestLoadRejectsIncompleteCatalog(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/en.yaml": &fstest.MapFile{Data: []byte(`
texts:
  prompt.user_name: "Your name?"
buttons:
  apartment_type:
    - {token: building, label: Flat}
`)},
	}
	_, err := Load(fsys)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.Contains(t, err.Error(), "prompt.contact")
	assert.Contains(t, err.Error(), "buttons.apartment_type")
}

func TestLoadRequiresCatalogs(t *testing.T) {
	_, err := Load(fstest.MapFS{})
	assert.Error(t, err)
}
