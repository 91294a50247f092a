package conversation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/m3rciful/estatebot/core/telegram/format"
	"github.com/m3rciful/estatebot/internal/i18n"
)

// ErrIncompleteSession signals a summary request for a session that has not
// collected every field. The transition table makes this unreachable, so it
// always points at a bug in the caller.
var ErrIncompleteSession = errors.New("conversation: summary of incomplete session")

// BuildSummary renders the collected answers as a localized HTML report with one line per field.
func BuildSummary(c *i18n.Catalog, s Session) (string, error) {
	var missing []string
	for _, f := range Fields {
		if _, ok := s.Answer(f); !ok {
			missing = append(missing, string(f))
		}
	}
	if s.Language == "" || s.ApartmentType == "" {
		missing = append(missing, "branch")
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: missing %s", ErrIncompleteSession, strings.Join(missing, ", "))
	}

	lang := s.Language
	floorLabel, typeLabel := i18n.SummaryFloorBuilding, i18n.SummaryTypeBuilding
	if s.ApartmentType == ApartmentPrivate {
		floorLabel, typeLabel = i18n.SummaryFloorPrivate, i18n.SummaryTypePrivate
	}
	condition, err := c.ButtonLabel(lang, i18n.ButtonsApartmentCondition, answer(s, FieldApartmentCondition))
	if err != nil {
		return "", err
	}
	typeValue, err := c.Resolve(lang, typeLabel)
	if err != nil {
		return "", err
	}

	lines := []struct {
		label i18n.Key
		value string
	}{
		{i18n.SummaryUserName, answer(s, FieldUserName)},
		{i18n.SummaryBirthDate, answer(s, FieldBirthDate)},
		{i18n.SummaryDistrict, answer(s, FieldDistrict)},
		{i18n.SummaryApartmentType, typeValue},
		{floorLabel, answer(s, FieldFloorOrFloors)},
		{i18n.SummaryApartmentCondition, condition},
		{i18n.SummaryRooms, answer(s, FieldRooms)},
		{i18n.SummaryPrice, answer(s, FieldPrice)},
		{i18n.SummaryContact, answer(s, FieldContact)},
	}

	header, err := c.Resolve(lang, i18n.TextSummaryHeader)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(format.Bold(format.EscapeHTML(header)))
	for _, l := range lines {
		label, err := c.Resolve(lang, l.label)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\n%s: %s", format.EscapeHTML(label), format.EscapeHTML(l.value))
	}
	return b.String(), nil
}

func answer(s Session, f Field) string {
	v, _ := s.Answer(f)
	return v
}
