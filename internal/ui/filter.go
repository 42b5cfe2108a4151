package ui

import (
	"strings"
	"time"

	"github.com/easyloft/easyloft-client/internal/domain"
	"github.com/easyloft/easyloft-client/internal/listing"
	"github.com/easyloft/easyloft-client/internal/validate"
)

const dateLayout = "2006-01-02"

func (m *Model) openFilterForm() {
	f := m.filter
	var loftNames []string
	for _, id := range f.LoftIDs {
		loftNames = append(loftNames, listing.LoftName(m.loftSnap.Items, id))
	}
	m.form = newForm("Filter pigeons",
		fieldSpec{key: "search", label: "Name or ring", value: f.Search},
		fieldSpec{key: "sex", label: "Sex", value: string(f.Sex), placeholder: "male / female / unknown"},
		fieldSpec{key: "plumage", label: "Plumage", value: f.Plumage},
		fieldSpec{key: "parents", label: "Parents", value: string(f.Parents), placeholder: "with / without"},
		fieldSpec{key: "lofts", label: "Lofts", value: strings.Join(loftNames, ", "), placeholder: "comma-separated names"},
		fieldSpec{key: "bornFrom", label: "Born from", value: formatDay(f.BornFrom), placeholder: "YYYY-MM-DD"},
		fieldSpec{key: "bornTo", label: "Born to", value: formatDay(f.BornTo), placeholder: "YYYY-MM-DD"},
	)
	if plumages := listing.UniquePlumages(m.pigeonSnap.Items); len(plumages) > 0 {
		m.form.hint = "Plumages: " + truncate(strings.Join(plumages, ", "), 48)
	}
	m.formKind = formFilter
}

// submitFilter parses the filter form into m.filter. View and sort order
// are kept from the current filter.
func (m *Model) submitFilter() error {
	form := m.form
	next := listing.Filter{
		Search:  form.Value("search"),
		Plumage: form.Value("plumage"),
		View:    m.filter.View,
		Sort:    m.filter.Sort,
		Desc:    m.filter.Desc,
	}
	var errs validate.Errors

	if sex := strings.ToLower(form.Value("sex")); sex != "" {
		parsed := parseSexInput(sex)
		if !parsed.Valid() {
			errs = append(errs, validate.FieldError{Field: "sex", Message: "must be one of male, female, unknown"})
		}
		next.Sex = parsed
	}

	switch parents := listing.Parents(strings.ToLower(form.Value("parents"))); parents {
	case listing.ParentsAny, listing.ParentsWith, listing.ParentsWithout:
		next.Parents = parents
	default:
		errs = append(errs, validate.FieldError{Field: "parents", Message: "must be with or without"})
	}

	for _, name := range splitList(form.Value("lofts")) {
		id, ok := m.loftIDByName(name)
		if !ok {
			errs = append(errs, validate.FieldError{Field: "lofts", Message: "unknown loft " + name})
			continue
		}
		next.ToggleLoft(id)
	}

	var err error
	if next.BornFrom, err = parseDay(form.Value("bornFrom")); err != nil {
		errs = append(errs, validate.FieldError{Field: "bornFrom", Message: "must be a date (YYYY-MM-DD)"})
	}
	if next.BornTo, err = parseDay(form.Value("bornTo")); err != nil {
		errs = append(errs, validate.FieldError{Field: "bornTo", Message: "must be a date (YYYY-MM-DD)"})
	}

	if len(errs) > 0 {
		return errs
	}
	m.filter = next.Normalize()
	m.pigeonRow = 0
	m.filterChanged()
	return nil
}

func (m Model) loftIDByName(name string) (string, bool) {
	for _, loft := range m.loftSnap.Items {
		if strings.EqualFold(loft.Name, name) || loft.ID == name {
			return loft.ID, true
		}
	}
	return "", false
}

func parseDay(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(dateLayout, value, time.Local)
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// sexLabel is the short header label for a sex count.
func sexLabel(sex domain.Sex) string {
	switch sex {
	case domain.SexMale:
		return "♂"
	case domain.SexFemale:
		return "♀"
	default:
		return "?"
	}
}
