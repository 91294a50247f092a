package ui

import tele "gopkg.in/telebot.v4"

// FallbackProvider exposes handlers used when incoming updates
// cannot be mapped to commands, conversation answers, or known callbacks.
type FallbackProvider interface {
	UnknownMedia() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}
