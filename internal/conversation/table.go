package conversation

import (
	"errors"
	"fmt"
	"slices"

	"github.com/m3rciful/estatebot/internal/i18n"
)

var (
	// ErrKindMismatch means the event is not the answer the current state waits for.
	ErrKindMismatch = errors.New("conversation: event does not match current state")
	// ErrFinished means the session already reached a terminal state.
	ErrFinished = errors.New("conversation: session finished")
	// ErrAnswerRecorded means a field would be written twice.
	ErrAnswerRecorded = errors.New("conversation: answer already recorded")
)

// Apply returns s advanced by ev. s itself is never modified; on error the
// returned session is the zero value and the caller keeps s as it was.
// Start events are not part of the table: they replace the session instead.
func Apply(s Session, ev Event) (Session, error) {
	if s.State.Terminal() {
		return Session{}, ErrFinished
	}
	if ev.Kind == KindCancel {
		next := s.Clone()
		next.State = StateCancelled
		return next, nil
	}

	st, ok := steps[s.State]
	if !ok {
		return Session{}, fmt.Errorf("conversation: no transition for state %s", s.State)
	}
	if ev.Kind != st.expects {
		return Session{}, fmt.Errorf("%w: %s expects %s, got %s", ErrKindMismatch, s.State, st.expects, ev.Kind)
	}

	value := ev.Text
	if st.expects == KindChoice {
		if !slices.Contains(st.tokens, ev.Token) {
			return Session{}, fmt.Errorf("%w: %s does not offer %q", ErrKindMismatch, s.State, ev.Token)
		}
		value = ev.Token
	}
	if _, dup := s.Answer(st.field); dup {
		return Session{}, fmt.Errorf("%w: %s", ErrAnswerRecorded, st.field)
	}

	next := s.Clone()
	next.Answers = append(next.Answers, Answer{Field: st.field, Value: value})
	switch st.field {
	case FieldLanguage:
		next.Language = i18n.Lang(value)
	case FieldApartmentType:
		next.ApartmentType = ApartmentType(value)
	}
	next.State = st.next
	return next, nil
}

// Prompt describes what to show when the dialogue waits in a state.
type Prompt struct {
	Key     i18n.Key
	Buttons i18n.ButtonSet
	Group   ChoiceGroup
	// Picker marks the bilingual language picker, which has no catalog key.
	Picker bool
}

// PromptFor returns the prompt shown while s waits for its next answer.
// The floor question depends on the apartment type chosen earlier.
func PromptFor(s Session) (Prompt, error) {
	switch s.State {
	case StateLanguage:
		return Prompt{Picker: true, Group: GroupLanguage}, nil
	case StateUserName:
		return Prompt{Key: i18n.PromptUserName}, nil
	case StateBirthDate:
		return Prompt{Key: i18n.PromptBirthDate}, nil
	case StateDistrict:
		return Prompt{Key: i18n.PromptDistrict}, nil
	case StateApartmentType:
		return Prompt{Key: i18n.PromptApartmentType, Buttons: i18n.ButtonsApartmentType, Group: GroupApartmentType}, nil
	case StateFloorOrFloors:
		if s.ApartmentType == ApartmentPrivate {
			return Prompt{Key: i18n.PromptFloorPrivate}, nil
		}
		return Prompt{Key: i18n.PromptFloorBuilding}, nil
	case StateApartmentCondition:
		return Prompt{Key: i18n.PromptApartmentCondition, Buttons: i18n.ButtonsApartmentCondition, Group: GroupApartmentCondition}, nil
	case StateRooms:
		return Prompt{Key: i18n.PromptRooms}, nil
	case StatePrice:
		return Prompt{Key: i18n.PromptPrice}, nil
	case StateContact:
		return Prompt{Key: i18n.PromptContact}, nil
	case StateCancelled:
		return Prompt{Key: i18n.TextCancelled}, nil
	}
	return Prompt{}, fmt.Errorf("conversation: no prompt for state %s", s.State)
}
