package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// Localized holds menu descriptions keyed by Telegram language code.
	Localized map[string]string
	AdminOnly bool
	Hidden    bool
}

// DescriptionFor returns the description for lang, falling back to Description.
func (c Command) DescriptionFor(lang string) string {
	if d, ok := c.Localized[lang]; ok && d != "" {
		return d
	}
	return c.Description
}
