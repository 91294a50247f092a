package conversation

import (
	"time"

	"github.com/m3rciful/estatebot/internal/i18n"
)

// Answer is one recorded field value. Choice answers hold the stable token.
type Answer struct {
	Field Field
	Value string
}

// Session is the dialogue progress of one user.
type Session struct {
	UserID int64
	ChatID int64
	State  State
	// Language is empty until the first transition and fixed afterwards.
	Language      i18n.Lang
	ApartmentType ApartmentType
	Answers       []Answer
	StartedAt     time.Time
}

// NewSession returns a session waiting for the language choice.
func NewSession(userID, chatID int64, now time.Time) Session {
	return Session{UserID: userID, ChatID: chatID, State: StateLanguage, StartedAt: now}
}

// Answer returns the recorded value of f.
func (s Session) Answer(f Field) (string, bool) {
	for _, a := range s.Answers {
		if a.Field == f {
			return a.Value, true
		}
	}
	return "", false
}

// Clone returns a copy that shares no memory with s.
func (s Session) Clone() Session {
	s.Answers = append([]Answer(nil), s.Answers...)
	return s
}

// replyLanguage is the language for outbound texts, falling back before the choice is made.
func (s Session) replyLanguage() i18n.Lang {
	if s.Language == "" {
		return i18n.Fallback
	}
	return s.Language
}
