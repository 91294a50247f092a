package format

import "html"

// EscapeHTML escapes user supplied text for Telegram's HTML parse mode.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

// Bold wraps already escaped text in a <b> tag.
func Bold(s string) string {
	return "<b>" + s + "</b>"
}
