package conversation

import "github.com/m3rciful/estatebot/internal/i18n"

// State is a step of the listing dialogue.
type State int

const (
	StateLanguage State = iota
	StateUserName
	StateBirthDate
	StateDistrict
	StateApartmentType
	StateFloorOrFloors
	StateApartmentCondition
	StateRooms
	StatePrice
	StateContact
	StateCompleted
	StateCancelled
)

var stateNames = [...]string{
	StateLanguage:           "language",
	StateUserName:           "user_name",
	StateBirthDate:          "birth_date",
	StateDistrict:           "district",
	StateApartmentType:      "apartment_type",
	StateFloorOrFloors:      "floor_or_floors",
	StateApartmentCondition: "apartment_condition",
	StateRooms:              "rooms",
	StatePrice:              "price",
	StateContact:            "contact",
	StateCompleted:          "completed",
	StateCancelled:          "cancelled",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether the dialogue is over in s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// Field names an answer recorded in a session.
type Field string

const (
	FieldLanguage           Field = "language"
	FieldUserName           Field = "user_name"
	FieldBirthDate          Field = "birth_date"
	FieldDistrict           Field = "district"
	FieldApartmentType      Field = "apartment_type"
	FieldFloorOrFloors      Field = "floor_or_floors"
	FieldApartmentCondition Field = "apartment_condition"
	FieldRooms              Field = "rooms"
	FieldPrice              Field = "price"
	FieldContact            Field = "contact"
)

// Fields lists every answer in the order the dialogue asks for it.
var Fields = []Field{
	FieldLanguage, FieldUserName, FieldBirthDate, FieldDistrict, FieldApartmentType,
	FieldFloorOrFloors, FieldApartmentCondition, FieldRooms, FieldPrice, FieldContact,
}

// ApartmentType is the property kind chosen by the user.
type ApartmentType string

const (
	ApartmentBuilding ApartmentType = "building"
	ApartmentPrivate  ApartmentType = "private"
)

// ChoiceGroup identifies the keyboard a choice event belongs to.
type ChoiceGroup string

const (
	GroupLanguage           ChoiceGroup = "lang"
	GroupApartmentType      ChoiceGroup = "apartment_type"
	GroupApartmentCondition ChoiceGroup = "apartment_condition"
)

// step is one row of the transition table.
type step struct {
	expects Kind
	field   Field
	group   ChoiceGroup
	tokens  []string
	next    State
}

var languageTokens = func() []string {
	tokens := make([]string, 0, len(i18n.LanguageButtons))
	for _, b := range i18n.LanguageButtons {
		tokens = append(tokens, b.Token)
	}
	return tokens
}()

var steps = map[State]step{
	StateLanguage:           {expects: KindChoice, field: FieldLanguage, group: GroupLanguage, tokens: languageTokens, next: StateUserName},
	StateUserName:           {expects: KindText, field: FieldUserName, next: StateBirthDate},
	StateBirthDate:          {expects: KindText, field: FieldBirthDate, next: StateDistrict},
	StateDistrict:           {expects: KindText, field: FieldDistrict, next: StateApartmentType},
	StateApartmentType:      {expects: KindChoice, field: FieldApartmentType, group: GroupApartmentType, tokens: i18n.RequiredButtons[i18n.ButtonsApartmentType], next: StateFloorOrFloors},
	StateFloorOrFloors:      {expects: KindText, field: FieldFloorOrFloors, next: StateApartmentCondition},
	StateApartmentCondition: {expects: KindChoice, field: FieldApartmentCondition, group: GroupApartmentCondition, tokens: i18n.RequiredButtons[i18n.ButtonsApartmentCondition], next: StateRooms},
	StateRooms:              {expects: KindText, field: FieldRooms, next: StatePrice},
	StatePrice:              {expects: KindText, field: FieldPrice, next: StateContact},
	StateContact:            {expects: KindText, field: FieldContact, next: StateCompleted},
}

// Expects returns the event kind the state accepts as an answer.
func (s State) Expects() (Kind, bool) {
	st, ok := steps[s]
	return st.expects, ok
}
