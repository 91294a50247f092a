package conversation

// Kind classifies inbound events.
type Kind int

const (
	KindStart Kind = iota + 1
	KindCancel
	KindText
	KindChoice
	// KindUnsupported is any input the dialogue never accepts, such as a photo
	// or a button from a keyboard that is no longer known.
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindCancel:
		return "cancel"
	case KindText:
		return "text"
	case KindChoice:
		return "choice"
	case KindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Event is one inbound update reduced to what the dialogue needs.
type Event struct {
	UserID int64
	// ChatID receives replies; zero means the private chat with UserID.
	ChatID int64
	Kind   Kind
	// Text carries the answer for KindText.
	Text string
	// Token carries the pressed button for KindChoice.
	Token string
}

// Start builds the entry event.
func Start(userID, chatID int64) Event {
	return Event{UserID: userID, ChatID: chatID, Kind: KindStart}
}

// Cancel builds the cancellation event.
func Cancel(userID, chatID int64) Event {
	return Event{UserID: userID, ChatID: chatID, Kind: KindCancel}
}

// Text builds a free-text answer event.
func Text(userID, chatID int64, text string) Event {
	return Event{UserID: userID, ChatID: chatID, Kind: KindText, Text: text}
}

// Choice builds a button press event.
func Choice(userID, chatID int64, token string) Event {
	return Event{UserID: userID, ChatID: chatID, Kind: KindChoice, Token: token}
}

// Unsupported builds an event that only re-prompts the current question.
func Unsupported(userID, chatID int64) Event {
	return Event{UserID: userID, ChatID: chatID, Kind: KindUnsupported}
}

func (e Event) chat() int64 {
	if e.ChatID != 0 {
		return e.ChatID
	}
	return e.UserID
}
