// Package listing filters and sorts cached pigeons for the pigeon table.
// Everything here is a pure function over store snapshots.
package listing

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/easyloft/easyloft-client/internal/domain"
)

// Parents filters on whether a father or mother is assigned.
type Parents string

const (
	ParentsAny     Parents = ""
	ParentsWith    Parents = "with"
	ParentsWithout Parents = "without"
)

// View is the pigeon listing layout.
type View string

const (
	ViewTable View = "table"
	ViewGrid  View = "grid"
)

// SortField selects the column the listing is ordered by.
type SortField string

const (
	SortName      SortField = "name"
	SortBirthDate SortField = "birth_date"
	SortRing      SortField = "ring"
)

// Filter is the listing state. The birth date range is transient and never
// persisted.
type Filter struct {
	Search   string     `toml:"search"`
	Sex      domain.Sex `toml:"sex"`
	LoftIDs  []string   `toml:"lofts"`
	Plumage  string     `toml:"plumage"`
	Parents  Parents    `toml:"parents"`
	View     View       `toml:"view"`
	Sort     SortField  `toml:"sort"`
	Desc     bool       `toml:"desc"`
	BornFrom time.Time  `toml:"-"`
	BornTo   time.Time  `toml:"-"`
}

// DefaultFilter returns an empty filter in table view sorted by name.
func DefaultFilter() Filter {
	return Filter{View: ViewTable, Sort: SortName}
}

// Normalize replaces unknown enum values with their defaults.
func (f Filter) Normalize() Filter {
	switch f.View {
	case ViewTable, ViewGrid:
	default:
		f.View = ViewTable
	}
	switch f.Sort {
	case SortName, SortBirthDate, SortRing:
	default:
		f.Sort = SortName
	}
	switch f.Parents {
	case ParentsAny, ParentsWith, ParentsWithout:
	default:
		f.Parents = ParentsAny
	}
	if f.Sex != "" && !f.Sex.Valid() {
		f.Sex = ""
	}
	f.Search = strings.TrimSpace(f.Search)
	f.Plumage = strings.TrimSpace(f.Plumage)
	return f
}

// Active reports whether any criterion narrows the listing.
func (f Filter) Active() bool {
	return f.Search != "" || f.Sex != "" || len(f.LoftIDs) > 0 || f.Plumage != "" ||
		f.Parents != ParentsAny || !f.BornFrom.IsZero() || !f.BornTo.IsZero()
}

// Reset clears every criterion but keeps the view and sort order.
func (f *Filter) Reset() {
	*f = Filter{View: f.View, Sort: f.Sort, Desc: f.Desc}
}

// ToggleLoft adds or removes a loft from the selection.
func (f *Filter) ToggleLoft(id string) {
	if i := slices.Index(f.LoftIDs, id); i >= 0 {
		f.LoftIDs = slices.Delete(slices.Clone(f.LoftIDs), i, i+1)
		return
	}
	f.LoftIDs = append(slices.Clone(f.LoftIDs), id)
}

// Match reports whether p passes every criterion of f.
func (f Filter) Match(p domain.Pigeon) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.RingNumber), needle) {
			return false
		}
	}
	if f.Sex != "" && p.Sex != f.Sex {
		return false
	}
	if len(f.LoftIDs) > 0 && !slices.Contains(f.LoftIDs, p.LoftID) {
		return false
	}
	if f.Plumage != "" && !strings.Contains(strings.ToLower(p.Plumage), strings.ToLower(f.Plumage)) {
		return false
	}
	if !f.BornFrom.IsZero() || !f.BornTo.IsZero() {
		born := p.ParsedBirthDate()
		if born.IsZero() {
			return false
		}
		if !f.BornFrom.IsZero() && born.Before(startOfDay(f.BornFrom)) {
			return false
		}
		if !f.BornTo.IsZero() && born.After(endOfDay(f.BornTo)) {
			return false
		}
	}
	switch f.Parents {
	case ParentsWith:
		return p.HasParents()
	case ParentsWithout:
		return !p.HasParents()
	}
	return true
}

// Apply returns the pigeons matching f, stably ordered by f's sort.
func Apply(pigeons []domain.Pigeon, f Filter) []domain.Pigeon {
	out := make([]domain.Pigeon, 0, len(pigeons))
	for _, p := range pigeons {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Pigeon) int {
		c := compare(a, b, f.Sort)
		if f.Desc {
			return -c
		}
		return c
	})
	return out
}

func compare(a, b domain.Pigeon, field SortField) int {
	switch field {
	case SortBirthDate:
		return a.ParsedBirthDate().Compare(b.ParsedBirthDate())
	case SortRing:
		return cmp.Compare(strings.ToLower(a.RingNumber), strings.ToLower(b.RingNumber))
	default:
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}
}

// UniquePlumages lists the distinct non-empty plumages in first-seen order.
func UniquePlumages(pigeons []domain.Pigeon) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range pigeons {
		value := strings.TrimSpace(p.Plumage)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

// LoftName returns the name of the loft with id, or "-" when unknown.
func LoftName(lofts []domain.Loft, id string) string {
	for _, l := range lofts {
		if l.ID == id {
			return l.Name
		}
	}
	return "-"
}

// Stats summarises the cached lofts and pigeons for the dashboard. recent
// caps the number of newest pigeons returned.
func Stats(lofts []domain.Loft, pigeons []domain.Pigeon, recent int) domain.DashboardStats {
	stats := domain.DashboardStats{TotalLofts: len(lofts), TotalPigeons: len(pigeons)}
	for _, p := range pigeons {
		switch p.Sex {
		case domain.SexMale:
			stats.MaleCount++
		case domain.SexFemale:
			stats.FemaleCount++
		default:
			stats.UnknownCount++
		}
	}
	if recent <= 0 || len(pigeons) == 0 {
		return stats
	}
	newest := slices.Clone(pigeons)
	slices.SortStableFunc(newest, func(a, b domain.Pigeon) int {
		return b.ParsedCreatedAt().Compare(a.ParsedCreatedAt())
	})
	if len(newest) > recent {
		newest = newest[:recent]
	}
	stats.RecentPigeons = newest
	return stats
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
