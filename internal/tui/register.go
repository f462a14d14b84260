package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pdao-registration/internal/client"
	"pdao-registration/internal/dto/request"
	"pdao-registration/internal/geo"
	"pdao-registration/internal/picker"
	"pdao-registration/internal/schema"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type step int

const (
	stepPersonal step = iota
	stepAddress
	stepAccount
)

var stepTitles = [...]string{"1/3 PERSONAL DETAILS", "2/3 ADDRESS", "3/3 CONTACT AND ACCOUNT"}

var levelLabels = [...]string{"Region", "Province", "City/Municipality", "Barangay"}

const (
	pathConfirm = "confirm_password"
	pathPicker  = "address"
)

type formField struct {
	path  string
	label string
	input textinput.Model
}

func newField(path, placeholder string, secret bool) formField {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 100
	in.Width = 40
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '*'
	}

	lbl := schemaLabel(schema.RegistrationRules, path)
	if path == pathConfirm {
		lbl = "Repeat password"
	}
	return formField{path: path, label: lbl, input: in}
}

// RegisterModel walks an applicant through personal details, the address
// picker, and contact and account details. Each step is checked with the
// server's rule table before moving on.
type RegisterModel struct {
	ctx      context.Context
	api      API
	source   picker.Source
	pipeline *schema.Pipeline

	step   step
	fields [3][]formField
	focus  int

	picker *picker.Picker
	cursor int
	filter textinput.Model

	submitting bool
	errs       map[string]string
	errMsg     string
}

func NewRegisterModel(ctx context.Context, api API, source picker.Source, pipeline *schema.Pipeline) *RegisterModel {
	filter := textinput.New()
	filter.Placeholder = "type to filter"
	filter.Width = 30

	m := &RegisterModel{
		ctx:      ctx,
		api:      api,
		source:   source,
		pipeline: pipeline,
		filter:   filter,
		errs:     map[string]string{},
	}
	m.fields[stepPersonal] = []formField{
		newField("first_name", "Juan", false),
		newField("middle_name", "optional", false),
		newField("last_name", "Dela Cruz", false),
		newField("suffix", "Jr., III (optional)", false),
		newField("sex", "Male or Female", false),
		newField("date_of_birth", "YYYY-MM-DD", false),
	}
	m.fields[stepAddress] = []formField{
		newField("address.street", "house no., street", false),
		newField("address.zip_code", "4 digits (optional)", false),
	}
	m.fields[stepAccount] = []formField{
		newField("contact_number", "09XXXXXXXXX", false),
		newField("email", "name@example.com", false),
		newField("password", "at least 8 characters", true),
		newField(pathConfirm, "same password again", true),
	}
	m.fields[stepPersonal][0].input.Focus()
	return m
}

func (m *RegisterModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *RegisterModel) pickerActive() bool {
	return m.step == stepAddress && m.picker != nil && !m.picker.Closed()
}

func (m *RegisterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case geoLoadedMsg:
		if m.picker != nil && m.picker.Deliver(msg.resp) {
			m.cursor = 0
		}
		return m, nil
	case registerResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.applyError(msg.err)
			return m, nil
		}
		m.reset()
		return m, authDone(msg.resp)
	case tea.KeyMsg:
		if m.pickerActive() {
			return m, m.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.esc):
			if m.step == stepPersonal {
				m.reset()
				return m, func() tea.Msg { return NavigateTo{Page: pageMenu} }
			}
			m.goTo(m.step - 1)
			return m, nil
		case key.Matches(msg, keys.reselect):
			if m.step == stepAddress {
				return m, m.openPicker()
			}
		case key.Matches(msg, keys.tab):
			m.setFocus(m.focus + 1)
			return m, nil
		case key.Matches(msg, keys.backtab):
			m.setFocus(m.focus - 1)
			return m, nil
		case key.Matches(msg, keys.enter):
			if m.focus < len(m.fields[m.step])-1 {
				m.setFocus(m.focus + 1)
				return m, nil
			}
			return m, m.advance()
		}
	}

	fields := m.fields[m.step]
	if len(fields) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	fields[m.focus].input, cmd = fields[m.focus].input.Update(msg)
	return m, cmd
}

// updatePicker handles keys while the address picker owns the screen.
func (m *RegisterModel) updatePicker(msg tea.KeyMsg) tea.Cmd {
	p := m.picker
	switch {
	case key.Matches(msg, keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
		return nil
	case key.Matches(msg, keys.down):
		if m.cursor < len(p.Visible())-1 {
			m.cursor++
		}
		return nil
	case key.Matches(msg, keys.esc):
		if !p.Back() {
			m.goTo(stepPersonal)
		}
		m.resetFilter()
		return nil
	case key.Matches(msg, keys.forward):
		if p.Forward() {
			m.resetFilter()
		}
		return nil
	case key.Matches(msg, keys.retry):
		if p.Err() != nil {
			return m.cmdFetch(p.Retry())
		}
		return nil
	case key.Matches(msg, keys.enter):
		return m.choose()
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	p.SetFilter(m.filter.Value())
	m.cursor = 0
	return cmd
}

func (m *RegisterModel) choose() tea.Cmd {
	visible := m.picker.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return nil
	}

	req, err := m.picker.Select(visible[m.cursor].Code)
	if err != nil {
		m.errMsg = err.Error()
		return nil
	}
	m.resetFilter()
	delete(m.errs, pathPicker)

	if req == nil {
		// barangay chosen, the street input takes over
		m.setFocus(0)
		return nil
	}
	return m.cmdFetch(*req)
}

func (m *RegisterModel) openPicker() tea.Cmd {
	m.picker = picker.New()
	m.resetFilter()
	return m.cmdFetch(m.picker.Start())
}

func (m *RegisterModel) resetFilter() {
	m.filter.SetValue("")
	m.filter.Focus()
	m.cursor = 0
}

func (m *RegisterModel) cmdFetch(req picker.Request) tea.Cmd {
	ctx, src := m.ctx, m.source
	return func() tea.Msg {
		return geoLoadedMsg{resp: picker.Fetch(ctx, src, req)}
	}
}

// advance checks the current step and moves on, submitting after the last.
func (m *RegisterModel) advance() tea.Cmd {
	if m.submitting {
		return nil
	}

	m.errMsg = ""
	if errs := m.checkStep(m.step); len(errs) > 0 {
		m.errs = errs
		m.focusFirstError()
		return nil
	}
	m.errs = map[string]string{}

	if m.step < stepAccount {
		m.goTo(m.step + 1)
		if m.step == stepAddress && m.picker == nil {
			return m.openPicker()
		}
		return nil
	}

	req := m.buildRequest()
	m.submitting = true
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		resp, err := api.Register(ctx, req)
		return registerResultMsg{resp: resp, err: err}
	}
}

func (m *RegisterModel) values() map[string]string {
	out := map[string]string{}
	for _, fields := range m.fields {
		for _, f := range fields {
			out[f.path] = f.input.Value()
		}
	}
	out["sex"] = canonicalSex(out["sex"])
	if contact, err := schema.NormalizeContactNumber(out["contact_number"]); err == nil {
		out["contact_number"] = contact
	}
	return out
}

func (m *RegisterModel) checkStep(s step) map[string]string {
	values := m.values()
	errs := map[string]string{}

	paths := make([]string, 0, len(m.fields[s]))
	for _, f := range m.fields[s] {
		if f.path != pathConfirm {
			paths = append(paths, f.path)
		}
	}
	for _, fe := range m.pipeline.CheckFields(schema.RegistrationRules, values, paths...) {
		errs[fe.Field] = fe.Message
	}

	switch s {
	case stepAddress:
		if m.picker == nil || !m.picker.Closed() {
			errs[pathPicker] = "Choose the region, province, city and barangay"
		}
	case stepAccount:
		if _, bad := errs["password"]; !bad && values["password"] != values[pathConfirm] {
			errs[pathConfirm] = "Passwords do not match"
		}
	}
	return errs
}

func (m *RegisterModel) buildRequest() *request.RegisterRequest {
	v := m.values()
	addr, _ := m.picker.Result()

	req := &request.RegisterRequest{
		FirstName:   strings.TrimSpace(v["first_name"]),
		MiddleName:  strings.TrimSpace(v["middle_name"]),
		LastName:    strings.TrimSpace(v["last_name"]),
		Suffix:      strings.TrimSpace(v["suffix"]),
		Sex:         v["sex"],
		DateOfBirth: strings.TrimSpace(v["date_of_birth"]),
		Address: request.AddressRequest{
			Street:   strings.TrimSpace(v["address.street"]),
			Barangay: addr.Barangay,
			City:     addr.City,
			Province: addr.Province,
			Region:   addr.Region,
			ZipCode:  strings.TrimSpace(v["address.zip_code"]),
		},
		ContactNumber: v["contact_number"],
		Email:         schema.NormalizeEmail(v["email"]),
		Password:      v["password"],
	}
	schema.ApplyAddressDefaults(&req.Address)
	return req
}

// applyError puts server-side rejections next to the fields they name and
// returns to the step holding the first one.
func (m *RegisterModel) applyError(err error) {
	m.errMsg = humanizeError(err)

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return
	}

	m.errs = map[string]string{}
	for _, fe := range apiErr.Errors {
		m.errs[fe.Field] = fe.Message
	}
	if apiErr.Field != "" {
		if _, ok := m.errs[apiErr.Field]; !ok {
			m.errs[apiErr.Field] = apiErr.Message
		}
	}

	first := apiErr.Field
	if first == "" && len(apiErr.Errors) > 0 {
		first = apiErr.Errors[0].Field
	}
	if first != "" {
		m.goTo(stepOf(first))
		m.focusPath(first)
	}
}

func stepOf(path string) step {
	switch {
	case strings.HasPrefix(path, "address"):
		return stepAddress
	case path == "contact_number", path == "email", path == "password", path == pathConfirm:
		return stepAccount
	default:
		return stepPersonal
	}
}

func (m *RegisterModel) focusFirstError() {
	for i, f := range m.fields[m.step] {
		if _, bad := m.errs[f.path]; bad {
			m.setFocus(i)
			return
		}
	}
}

func (m *RegisterModel) focusPath(path string) {
	for i, f := range m.fields[m.step] {
		if f.path == path {
			m.setFocus(i)
			return
		}
	}
}

func (m *RegisterModel) goTo(s step) {
	m.step = s
	m.focus = 0
	for st := range m.fields {
		for i := range m.fields[st] {
			m.fields[st][i].input.Blur()
		}
	}
	if len(m.fields[s]) > 0 {
		m.fields[s][0].input.Focus()
	}
}

func (m *RegisterModel) setFocus(i int) {
	fields := m.fields[m.step]
	if len(fields) == 0 {
		return
	}
	fields[m.focus].input.Blur()
	m.focus = (i + len(fields)) % len(fields)
	fields[m.focus].input.Focus()
}

func (m *RegisterModel) reset() {
	for st := range m.fields {
		for i := range m.fields[st] {
			m.fields[st][i].input.SetValue("")
		}
	}
	m.picker = nil
	m.filter.SetValue("")
	m.cursor = 0
	m.errs = map[string]string{}
	m.errMsg = ""
	m.submitting = false
	m.goTo(stepPersonal)
}

func canonicalSex(v string) string {
	v = strings.TrimSpace(v)
	for _, s := range []string{schema.SexMale, schema.SexFemale} {
		if strings.EqualFold(v, s) {
			return s
		}
	}
	return v
}

func (m *RegisterModel) View() string {
	var b strings.Builder

	if m.step == stepAddress {
		m.viewAddress(&b)
	}
	if !m.pickerActive() {
		m.viewFields(&b)
	}

	if m.submitting {
		b.WriteString("\nSubmitting...\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	return renderPage("REGISTER "+stepTitles[m.step], strings.TrimRight(b.String(), "\n"), m.hotKeys())
}

func (m *RegisterModel) viewFields(b *strings.Builder) {
	for i, f := range m.fields[m.step] {
		marker := "  "
		if i == m.focus {
			marker = "> "
		}
		b.WriteString(marker)
		b.WriteString(label(f.label))
		b.WriteString(f.input.View())
		b.WriteString("\n")
		if msg := m.errs[f.path]; msg != "" {
			b.WriteString(errorStyle.Render("    " + msg))
			b.WriteString("\n")
		}
	}
}

func (m *RegisterModel) viewAddress(b *strings.Builder) {
	if m.picker == nil {
		return
	}

	if !m.picker.Closed() {
		for lvl := geo.LevelRegion; lvl < m.picker.Level(); lvl++ {
			if area, ok := m.picker.Selected(lvl); ok {
				b.WriteString(label(levelLabels[lvl]))
				b.WriteString(area.Name)
				b.WriteString("\n")
			}
		}
		b.WriteString(fmt.Sprintf("\nChoose %s: %s\n\n", m.picker.Level(), m.filter.View()))

		switch {
		case m.picker.Loading():
			b.WriteString("Loading...\n")
		case m.picker.Err() != nil:
			b.WriteString(errorStyle.Render(humanizeError(m.picker.Err())))
			b.WriteString("\n")
		default:
			m.viewOptions(b)
		}
		return
	}

	addr, _ := m.picker.Result()
	b.WriteString(fmt.Sprintf("%s, %s, %s, %s\n\n", addr.Barangay, addr.City, addr.Province, addr.Region))
	if msg := m.errs[pathPicker]; msg != "" {
		b.WriteString(errorStyle.Render(msg))
		b.WriteString("\n")
	}
}

func (m *RegisterModel) viewOptions(b *strings.Builder) {
	visible := m.picker.Visible()
	if len(visible) == 0 {
		b.WriteString("No matches\n")
		return
	}

	start := 0
	if m.cursor >= pickerHeight {
		start = m.cursor - pickerHeight + 1
	}
	end := min(start+pickerHeight, len(visible))
	for i := start; i < end; i++ {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + visible[i].Name))
		} else {
			b.WriteString("  " + visible[i].Name)
		}
		b.WriteString("\n")
	}
}

func (m *RegisterModel) hotKeys() string {
	switch {
	case m.pickerActive():
		return "↑/↓: move │ enter: choose │ →: forward │ esc: back │ ctrl+r: retry"
	case m.step == stepAddress:
		return "ctrl+e: change address │ tab: next field │ enter: continue │ esc: back"
	case m.step == stepAccount:
		return "tab: next field │ enter: submit │ esc: back"
	default:
		return "tab: next field │ enter: continue │ esc: menu"
	}
}
