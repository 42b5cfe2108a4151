package ui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/easyloft/easyloft-client/internal/domain"
	"github.com/easyloft/easyloft-client/internal/listing"
	"github.com/easyloft/easyloft-client/internal/validate"
)

var sortCycle = []listing.SortField{listing.SortName, listing.SortBirthDate, listing.SortRing}

func (m Model) handlePigeonsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.visible)
	step := 1
	if m.filter.View == listing.ViewGrid {
		step = m.gridColumns(m.listWidth() - 2)
	}

	if m.focusedPane == 1 {
		switch {
		case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.FocusDetail):
			m.focusedPane = 0
			return m, nil
		}
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = screenLofts
		m.notice = ""
		return m, m.allPigeonsCmd()
	case key.Matches(msg, m.keys.FocusDetail):
		if m.width >= LayoutCompactWidth {
			m.focusedPane = 1
		}
		return m, nil
	case key.Matches(msg, m.keys.HalfPageDown), key.Matches(msg, m.keys.HalfPageUp):
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	case key.Matches(msg, m.keys.Down):
		m.pigeonRow = min(m.pigeonRow+step, max(count-1, 0))
	case key.Matches(msg, m.keys.Up):
		m.pigeonRow = max(m.pigeonRow-step, 0)
	case key.Matches(msg, m.keys.Right):
		m.pigeonRow = min(m.pigeonRow+1, max(count-1, 0))
	case key.Matches(msg, m.keys.Left):
		m.pigeonRow = max(m.pigeonRow-1, 0)
	case key.Matches(msg, m.keys.Top):
		m.pigeonRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.pigeonRow = max(count-1, 0)
	case key.Matches(msg, m.keys.New):
		m.openPigeonForm(nil)
	case key.Matches(msg, m.keys.Edit):
		if p := m.selectedPigeon(); p != nil {
			m.openPigeonForm(p)
		}
	case key.Matches(msg, m.keys.Delete):
		if p := m.selectedPigeon(); p != nil {
			id := p.ID
			m.modal = confirmModal{
				title:     "Delete pigeon",
				body:      fmt.Sprintf("Delete %s? This cannot be undone.", pigeonLabel(*p)),
				onConfirm: func() tea.Cmd { return m.deletePigeonCmd(id) },
			}
		}
	case key.Matches(msg, m.keys.AllPigeons):
		return m.openPigeons("")
	case key.Matches(msg, m.keys.ToggleView):
		if m.filter.View == listing.ViewGrid {
			m.filter.View = listing.ViewTable
		} else {
			m.filter.View = listing.ViewGrid
		}
		m.filterChanged()
	case key.Matches(msg, m.keys.CycleSort):
		m.filter.Sort = nextSort(m.filter.Sort)
		m.filterChanged()
	case key.Matches(msg, m.keys.ToggleOrder):
		m.filter.Desc = !m.filter.Desc
		m.filterChanged()
	case key.Matches(msg, m.keys.ClearFilter):
		m.filter.Reset()
		m.filterChanged()
	case key.Matches(msg, m.keys.Filter):
		m.openFilterForm()
	}
	m.updateDetail()
	return m, nil
}

func nextSort(current listing.SortField) listing.SortField {
	for i, field := range sortCycle {
		if field == current {
			return sortCycle[(i+1)%len(sortCycle)]
		}
	}
	return listing.SortName
}

// filterChanged re-applies and persists the filter.
func (m *Model) filterChanged() {
	m.savePrefs()
	m.sync()
}

func (m Model) selectedPigeon() *domain.Pigeon {
	if m.pigeonRow < 0 || m.pigeonRow >= len(m.visible) {
		return nil
	}
	p := m.visible[m.pigeonRow]
	return &p
}

func (m Model) findPigeon(id string) (domain.Pigeon, bool) {
	for _, p := range m.pigeonSnap.Items {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Pigeon{}, false
}

func pigeonLabel(p domain.Pigeon) string {
	if p.RingNumber != "" {
		return p.Name + " (" + p.RingNumber + ")"
	}
	return p.Name
}

// parentLabel names a parent by ring number, falling back to name then id.
func (m Model) parentLabel(embedded *domain.Pigeon, id string) string {
	if id == "" {
		return ""
	}
	if embedded != nil && embedded.ID == id {
		return pigeonLabel(*embedded)
	}
	if p, ok := m.findPigeon(id); ok {
		return pigeonLabel(p)
	}
	return id
}

// resolveParent turns a ring number, name or id typed in the form into a
// pigeon id. Unknown input is returned as is so validation reports it.
func (m Model) resolveParent(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	for _, p := range m.pigeonSnap.Items {
		if p.ID == value || strings.EqualFold(p.RingNumber, value) || pigeonLabel(p) == value {
			return p.ID
		}
	}
	for _, p := range m.pigeonSnap.Items {
		if strings.EqualFold(p.Name, value) {
			return p.ID
		}
	}
	return value
}

// parseSexInput accepts the full names plus m/f shorthands. Anything else is
// kept verbatim so validation rejects it.
func parseSexInput(value string) domain.Sex {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return domain.SexUnknown
	}
	if sex := domain.ParseSex(value); sex != domain.SexUnknown || value == string(domain.SexUnknown) {
		return sex
	}
	return domain.Sex(value)
}

// newPigeonLoft is the loft a new pigeon goes to: the open loft, or the one
// selected on the lofts screen.
func (m Model) newPigeonLoft() string {
	if m.pigeonScope != "" {
		return m.pigeonScope
	}
	if loft := m.selectedLoft(); loft != nil {
		return loft.ID
	}
	return ""
}

func (m *Model) openPigeonForm(p *domain.Pigeon) {
	title, id := "New pigeon", ""
	var values domain.Pigeon
	if p != nil {
		title, id, values = "Edit "+p.Name, p.ID, *p
	}
	sex := ""
	if values.Sex != "" {
		sex = string(values.Sex)
	}
	m.form = newForm(title,
		fieldSpec{key: "name", label: "Name", value: values.Name},
		fieldSpec{key: "ringNumber", label: "Ring number", value: values.RingNumber, placeholder: "optional"},
		fieldSpec{key: "birthDate", label: "Birth date", value: birthLabel(values), placeholder: "YYYY-MM-DD"},
		fieldSpec{key: "sex", label: "Sex", value: sex, placeholder: "male / female / unknown"},
		fieldSpec{key: "plumage", label: "Plumage", value: values.Plumage, placeholder: "optional"},
		fieldSpec{key: "dimensions", label: "Dimensions", value: values.Dimensions, placeholder: "optional"},
		fieldSpec{key: "originalBreeder", label: "Breeder", value: values.OriginalBreeder},
		fieldSpec{key: "fatherId", label: "Father", value: m.parentLabel(values.Father, values.FatherID), placeholder: "ring number or name"},
		fieldSpec{key: "motherId", label: "Mother", value: m.parentLabel(values.Mother, values.MotherID), placeholder: "ring number or name"},
		fieldSpec{key: "image", label: "Body photo", placeholder: "path to an image file"},
	)
	loftID := values.LoftID
	if p == nil {
		loftID = m.newPigeonLoft()
	}
	m.form.hint = "Loft: " + listing.LoftName(m.loftSnap.Items, loftID)
	m.formKind = formPigeon
	m.editingID = id
}

func (m Model) submitPigeon() (tea.Cmd, error) {
	f := m.form
	loftID := m.newPigeonLoft()
	var existing domain.Pigeon
	if m.editingID != "" {
		p, ok := m.findPigeon(m.editingID)
		if !ok {
			return nil, errors.New("pigeon is no longer loaded")
		}
		existing, loftID = p, p.LoftID
	}
	if loftID == "" {
		return nil, validate.Errors{{Field: "loftId", Message: "create a loft first"}}
	}

	in := domain.PigeonInput{
		LoftID:          loftID,
		Name:            f.Value("name"),
		RingNumber:      f.Value("ringNumber"),
		BirthDate:       f.Value("birthDate"),
		Sex:             parseSexInput(f.Value("sex")),
		Plumage:         f.Value("plumage"),
		Dimensions:      f.Value("dimensions"),
		OriginalBreeder: f.Value("originalBreeder"),
		FatherID:        m.resolveParent(f.Value("fatherId")),
		MotherID:        m.resolveParent(f.Value("motherId")),
		Images:          existing.Images,
	}
	var errs validate.Errors
	if err := validate.Pigeon(in, m.editingID, m.pigeonSnap.Items); err != nil {
		if !errors.As(err, &errs) {
			return nil, err
		}
	}
	imagePath := f.Value("image")
	if imagePath != "" {
		if _, err := os.Stat(expandHome(imagePath)); err != nil {
			errs = append(errs, validate.FieldError{Field: "image", Message: "file not found"})
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	if m.editingID == "" {
		return m.createPigeonCmd(in, imagePath), nil
	}
	return m.updatePigeonCmd(m.editingID, domain.PigeonUpdate{
		RingNumber:      &in.RingNumber,
		Name:            &in.Name,
		BirthDate:       &in.BirthDate,
		Sex:             &in.Sex,
		Plumage:         &in.Plumage,
		Dimensions:      &in.Dimensions,
		OriginalBreeder: &in.OriginalBreeder,
		FatherID:        &in.FatherID,
		MotherID:        &in.MotherID,
	}, existing.Images, imagePath), nil
}

// Layout

func (m Model) listWidth() int {
	if m.width < LayoutCompactWidth {
		return m.width
	}
	if m.width >= LayoutExtraWideWidth {
		return m.width * 55 / 100
	}
	return m.width * 60 / 100
}

// paneHeight leaves a line for the filter bar.
func (m Model) paneHeight() int {
	return max(m.contentHeight()-1, 3)
}

func (m *Model) resizeDetail() {
	width := m.width - m.listWidth()
	m.detail.Width = max(width-4, 0)
	m.detail.Height = max(m.paneHeight()-2, 0)
}

func (m *Model) updateDetail() {
	p := m.selectedPigeon()
	if p == nil {
		m.detail.SetContent("")
		m.detailID = ""
		return
	}
	m.detail.SetContent(m.renderPigeonDetail(*p, m.detail.Width))
	if p.ID != m.detailID {
		m.detail.GotoTop()
		m.detailID = p.ID
	}
}

func (m Model) renderPigeons() string {
	listWidth := m.listWidth()
	height := m.paneHeight()

	title := "All pigeons"
	if m.pigeonScope != "" {
		title = listing.LoftName(m.loftSnap.Items, m.pigeonScope)
	}
	title = fmt.Sprintf("%s (%d/%d)", title, len(m.visible), len(m.pigeonSnap.Items))

	var body string
	if m.filter.View == listing.ViewGrid {
		body = m.renderPigeonGrid(listWidth-2, height-2)
	} else {
		body = m.renderPigeonTable(listWidth-2, height-2)
	}
	list := m.renderTitledBox(title, body, listWidth, height, m.focusedPane == 0)

	panes := list
	if listWidth < m.width {
		detail := m.renderTitledBox("Details", m.detail.View(), m.width-listWidth, height, m.focusedPane == 1)
		panes = lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
	}
	return m.renderFilterBar() + "\n" + panes
}

// renderFilterBar summarises the active filter and sort order.
func (m Model) renderFilterBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)

	arrow := "↑"
	if m.filter.Desc {
		arrow = "↓"
	}
	parts := []string{
		bg.Render("sort", styles.FaintText) + bg.Space() + bg.Render(string(m.filter.Sort)+" "+arrow, styles.AccentText),
		bg.Render("view", styles.FaintText) + bg.Space() + bg.Render(string(m.filter.View), styles.AccentText),
	}
	for _, crit := range m.filterCriteria() {
		parts = append(parts, bg.Render(crit, styles.WarningText))
	}
	if !m.filter.Active() {
		parts = append(parts, bg.Render("no filters", styles.FaintText))
	}
	return bg.FillLine(bg.Space()+bg.Join(parts, "  "), m.width)
}

func (m Model) filterCriteria() []string {
	f := m.filter
	var out []string
	if f.Search != "" {
		out = append(out, "search:"+f.Search)
	}
	if f.Sex != "" {
		out = append(out, "sex:"+string(f.Sex))
	}
	if f.Plumage != "" {
		out = append(out, "plumage:"+f.Plumage)
	}
	if f.Parents != listing.ParentsAny {
		out = append(out, "parents:"+string(f.Parents))
	}
	if len(f.LoftIDs) > 0 {
		names := make([]string, 0, len(f.LoftIDs))
		for _, id := range f.LoftIDs {
			names = append(names, listing.LoftName(m.loftSnap.Items, id))
		}
		out = append(out, "lofts:"+strings.Join(names, ","))
	}
	if !f.BornFrom.IsZero() {
		out = append(out, "born≥"+f.BornFrom.Format(dateLayout))
	}
	if !f.BornTo.IsZero() {
		out = append(out, "born≤"+f.BornTo.Format(dateLayout))
	}
	return out
}

type column struct {
	title string
	width int
	value func(domain.Pigeon) string
}

func (m Model) tableColumns(width int) []column {
	cols := []column{
		{"Ring", 14, func(p domain.Pigeon) string { return orDash(p.RingNumber) }},
		{"Name", 0, func(p domain.Pigeon) string { return p.Name }},
		{"Sex", 8, func(p domain.Pigeon) string { return p.Sex.Label() }},
		{"Born", 11, func(p domain.Pigeon) string { return orDash(birthLabel(p)) }},
		{"Plumage", 12, func(p domain.Pigeon) string { return orDash(p.Plumage) }},
	}
	if m.pigeonScope == "" {
		cols = append(cols, column{"Loft", 12, func(p domain.Pigeon) string {
			return listing.LoftName(m.loftSnap.Items, p.LoftID)
		}})
	}
	cols = append(cols, column{"Pa", 3, func(p domain.Pigeon) string {
		if p.HasParents() {
			return "✓"
		}
		return ""
	}})

	fixed := 0
	for _, c := range cols {
		fixed += c.width + 1
	}
	// Narrow terminals drop plumage first.
	if width-fixed < 10 {
		for i, c := range cols {
			if c.title == "Plumage" {
				fixed -= c.width + 1
				cols = append(cols[:i], cols[i+1:]...)
				break
			}
		}
	}
	for i := range cols {
		if cols[i].width == 0 {
			cols[i].width = max(width-fixed-1, 8)
		}
	}
	return cols
}

func (m Model) renderPigeonTable(width, rows int) string {
	styles := m.theme.Styles()
	if empty := m.emptyPigeonsMessage(); empty != "" {
		return styles.MutedText.Render(empty)
	}

	cols := m.tableColumns(width)
	headerBg := NewBgStyle(m.theme.FocusBg)
	var header []string
	for _, c := range cols {
		header = append(header, headerBg.Render(cell(c.title, c.width), styles.MutedText.Bold(true)))
	}
	lines := []string{headerBg.FillLine(strings.Join(header, headerBg.Space()), width)}

	rows--
	start := scrollStart(m.pigeonRow, rows)
	for i := start; i < len(m.visible) && i < start+rows; i++ {
		p := m.visible[i]
		selected := i == m.pigeonRow
		bgColor := m.theme.FocusBg
		if selected {
			bgColor = m.theme.SelectionBg
		}
		bg := NewBgStyle(bgColor)
		var cells []string
		for _, c := range cols {
			style := styles.Text
			switch {
			case selected:
				style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
			case c.title == "Sex":
				style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SexColor(p.Sex)))
			case c.title == "Ring" || c.title == "Loft":
				style = styles.MutedText
			}
			cells = append(cells, bg.Render(cell(c.value(p), c.width), style))
		}
		lines = append(lines, bg.FillLine(strings.Join(cells, bg.Space()), width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) gridColumns(width int) int {
	return max(width/(GridCardWidth+1), 1)
}

func (m Model) renderPigeonGrid(width, height int) string {
	styles := m.theme.Styles()
	if empty := m.emptyPigeonsMessage(); empty != "" {
		return styles.MutedText.Render(empty)
	}

	cols := m.gridColumns(width)
	visibleRows := max(height/GridCardHeight, 1)
	startRow := scrollStart(m.pigeonRow/cols, visibleRows)

	var rows []string
	for r := startRow; r < startRow+visibleRows; r++ {
		var cards []string
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if i >= len(m.visible) {
				break
			}
			cards = append(cards, m.renderCard(m.visible[i], i == m.pigeonRow))
		}
		if len(cards) == 0 {
			break
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderCard(p domain.Pigeon, selected bool) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	inner := GridCardWidth - 4
	border := m.theme.Border
	if selected {
		border = m.theme.BorderFocus
	}

	lines := []string{
		styles.Text.Bold(true).Render(truncate(p.Name, inner)),
		styles.MutedText.Render(truncate(orDash(p.RingNumber), inner)),
		styles.SexStyle(p.Sex).Render(p.Sex.Label()) + styles.Text.Render(" ") + styles.FaintText.Render(orDash(birthLabel(p))),
		styles.FaintText.Render(truncate(orDash(p.Plumage), inner)),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Background(lipgloss.Color(m.theme.FocusBg)).
		Padding(0, 1).
		Width(GridCardWidth - 2).
		MarginRight(1).
		Render(strings.Join(lines, "\n"))
}

func (m Model) emptyPigeonsMessage() string {
	switch {
	case len(m.visible) > 0:
		return ""
	case m.pigeonSnap.IsLoading:
		return "Loading pigeons..."
	case len(m.pigeonSnap.Items) > 0:
		return "No pigeons match the filters. Press x to clear them."
	default:
		return "No pigeons yet. Press n to add one."
	}
}

// renderPigeonDetail is the scrollable detail pane content.
func (m Model) renderPigeonDetail(p domain.Pigeon, width int) string {
	styles := m.theme.Styles()
	labelWidth := 14
	valueWidth := max(width-labelWidth, 8)
	var b strings.Builder

	row := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		b.WriteString(styles.MutedText.Render(padRight(label, labelWidth)))
		b.WriteString(styles.Text.Render(truncate(value, valueWidth)))
		b.WriteString("\n")
	}
	section := func(title string) {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Bold(true).Render(title))
		b.WriteString("\n")
	}

	b.WriteString(styles.Text.Bold(true).Render(p.Name))
	b.WriteString(" ")
	b.WriteString(styles.SexStyle(p.Sex).Render(p.Sex.Label()))
	b.WriteString("\n\n")

	row("Ring", p.RingNumber)
	row("Born", birthLabel(p))
	row("Plumage", p.Plumage)
	row("Dimensions", p.Dimensions)
	row("Loft", listing.LoftName(m.loftSnap.Items, p.LoftID))
	row("Breeder", p.OriginalBreeder)
	row("Father", m.parentLabel(p.Father, p.FatherID))
	row("Mother", m.parentLabel(p.Mother, p.MotherID))
	if p.IsExternal {
		row("Owner", orDash(p.ExternalOwnerInfo))
	}

	if p.Images != (domain.PigeonImages{}) {
		section("Photos")
		row("Body", p.Images.Body)
		row("Eye", p.Images.Eye)
		row("Plumage", p.Images.Plumage)
	}

	if len(p.OwnershipHistory) > 0 {
		section("Ownership")
		for _, rec := range p.OwnershipHistory {
			row(rec.TransferDate, joinNonEmpty(" · ", rec.PreviousOwner, rec.Notes))
		}
	}
	if len(p.Purchases) > 0 {
		section("Purchases")
		for _, rec := range p.Purchases {
			row(rec.Date, joinNonEmpty(" · ", rec.SellerName, formatPrice(rec.Price), rec.Notes))
		}
	}
	if len(p.Sales) > 0 {
		section("Sales")
		for _, rec := range p.Sales {
			row(rec.Date, joinNonEmpty(" · ", rec.BuyerName, formatPrice(rec.Price), rec.Notes))
		}
	}

	if created := p.ParsedCreatedAt(); !created.IsZero() {
		section("Record")
		row("Added", created.Local().Format("2006-01-02 15:04"))
	}
	return strings.TrimRight(b.String(), "\n")
}

// birthLabel shows the birth date as a plain day whatever precision the
// server stored.
func birthLabel(p domain.Pigeon) string {
	if t := p.ParsedBirthDate(); !t.IsZero() {
		return t.Format(dateLayout)
	}
	return p.BirthDate
}

func formatPrice(price *float64) string {
	if price == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *price)
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, sep)
}
