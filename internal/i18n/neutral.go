package i18n

// Texts shown before a language is known are bilingual and live outside the catalogs.
const (
	LanguagePrompt = "Выберите язык / Dil seçin:"
	RestartHint    = "Отправьте /start, чтобы начать заново.\nYenidən başlamaq üçün /start göndərin."
)

// LanguageButtons is the language picker; each label is written in its own language.
var LanguageButtons = []Button{
	{Token: string(AZ), Label: "Azərbaycan dili"},
	{Token: string(RU), Label: "Русский"},
}
