package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn describes a convenience wrapper for inline button properties.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// InlineButtons builds an inline keyboard where each provided button is placed on its own row.
// It returns nil for an empty list so callers can pass the result straight to send options.
func InlineButtons(buttons []InlineBtn) *tele.ReplyMarkup {
	if len(buttons) == 0 {
		return nil
	}
	rows := make([][]InlineBtn, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []InlineBtn{b})
	}
	return InlineButtonsRows(rows...)
}

// InlineButtonsRows builds an inline keyboard from rows of InlineBtn.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, len(rows))
	for i, row := range rows {
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = *markup.Data(btn.Text, btn.Unique, btn.Data).Inline()
		}
		inline[i] = r
	}
	markup.InlineKeyboard = inline
	return markup
}

// Choices builds a one-per-row keyboard whose buttons share unique and carry their token as data.
func Choices(unique string, labels, tokens []string) *tele.ReplyMarkup {
	n := min(len(labels), len(tokens))
	buttons := make([]InlineBtn, 0, n)
	for i := 0; i < n; i++ {
		buttons = append(buttons, InlineBtn{Text: labels[i], Unique: unique, Data: tokens[i]})
	}
	return InlineButtons(buttons)
}
