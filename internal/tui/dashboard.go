package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aiservice/poseul/internal/aircon"
	"github.com/aiservice/poseul/internal/prediction"
	"github.com/aiservice/poseul/internal/store"
)

// storeUpdateMsg signals that at least one facet changed
type storeUpdateMsg struct{}

// dashboardKeyMap defines key bindings for the dashboard
type dashboardKeyMap struct {
	Predict  key.Binding
	Refresh  key.Binding
	Power    key.Binding
	TempUp   key.Binding
	TempDown key.Binding
	Mode     key.Binding
	Fan      key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Predict, k.Refresh, k.Power, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Predict, k.Refresh},
		{k.Power, k.TempUp, k.TempDown, k.Mode, k.Fan},
		{k.Help, k.Quit},
	}
}

func newDashboardKeyMap() dashboardKeyMap {
	return dashboardKeyMap{
		Predict: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "predict"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Power: key.NewBinding(
			key.WithKeys(" ", "o"),
			key.WithHelp("space", "power"),
		),
		TempUp: key.NewBinding(
			key.WithKeys("+", "=", "up"),
			key.WithHelp("+/↑", "warmer"),
		),
		TempDown: key.NewBinding(
			key.WithKeys("-", "down"),
			key.WithHelp("-/↓", "cooler"),
		),
		Mode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mode"),
		),
		Fan: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fan"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// DashboardModel shows the device and prediction facets of a store and
// turns key presses into store intents.
type DashboardModel struct {
	store   *store.Store
	profile prediction.Input
	backend string

	updates     chan struct{}
	unsubscribe []func()

	device store.Snapshot[*aircon.DeviceState]
	result store.Snapshot[*prediction.Result]

	Width    int
	Height   int
	Spinner  spinner.Model
	Help     help.Model
	Keys     dashboardKeyMap
	Quitting bool
}

// NewDashboardModel subscribes to both facets of s. profile is the
// sample sent on every prediction and backend is only displayed.
// Call Close once the program has exited.
func NewDashboardModel(s *store.Store, profile prediction.Input, backend string) DashboardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	m := DashboardModel{
		store:   s,
		profile: profile,
		backend: backend,
		updates: make(chan struct{}, 1),
		device:  s.Device().Snapshot(),
		result:  s.Prediction().Snapshot(),
		Width:   MinTerminalWidth,
		Spinner: sp,
		Help:    help.New(),
		Keys:    newDashboardKeyMap(),
	}

	notify := m.notify
	m.unsubscribe = []func(){
		s.Device().Subscribe(func(store.Snapshot[*aircon.DeviceState]) { notify() }),
		s.Prediction().Subscribe(func(store.Snapshot[*prediction.Result]) { notify() }),
	}
	return m
}

// notify wakes the program without blocking the store; pending wakeups
// coalesce since the model rereads both facets anyway.
func (m DashboardModel) notify() {
	select {
	case m.updates <- struct{}{}:
	default:
	}
}

// Close unsubscribes from the store
func (m DashboardModel) Close() {
	for _, unsub := range m.unsubscribe {
		unsub()
	}
}

func waitForUpdate(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-updates
		return storeUpdateMsg{}
	}
}

// Init reads the device state and starts listening for changes
func (m DashboardModel) Init() tea.Cmd {
	s := m.store
	return tea.Batch(
		m.Spinner.Tick,
		waitForUpdate(m.updates),
		func() tea.Msg {
			s.Refresh()
			return nil
		},
	)
}

// Update handles messages and updates the model
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		return m, nil

	case storeUpdateMsg:
		m.device = m.store.Device().Snapshot()
		m.result = m.store.Prediction().Snapshot()
		return m, waitForUpdate(m.updates)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		m.Quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Help):
		m.Help.ShowAll = !m.Help.ShowAll

	case key.Matches(msg, m.Keys.Predict):
		m.store.Predict(m.profile)

	case key.Matches(msg, m.Keys.Refresh):
		m.store.Refresh()

	case key.Matches(msg, m.Keys.Power):
		m.store.TogglePower()

	case key.Matches(msg, m.Keys.TempUp):
		m.nudgeTarget(1)

	case key.Matches(msg, m.Keys.TempDown):
		m.nudgeTarget(-1)

	case key.Matches(msg, m.Keys.Mode):
		current := aircon.ModeAuto
		if state := m.device.Data; state != nil && state.Mode != nil {
			current = *state.Mode
		}
		m.store.SetMode(current.Next())

	case key.Matches(msg, m.Keys.Fan):
		current := aircon.FanAuto
		if state := m.device.Data; state != nil && state.FanSpeed != nil {
			current = *state.FanSpeed
		}
		m.store.SetFanSpeed(current.Next())
	}
	return m, nil
}

// nudgeTarget moves the setpoint one step: half a degree in Celsius, one
// degree in Fahrenheit. Nothing is sent while the setpoint is unknown.
func (m DashboardModel) nudgeTarget(direction float64) {
	state := m.device.Data
	if state == nil || state.TargetTemperature == nil {
		return
	}
	unit := state.Unit()
	step := 0.5
	if unit == aircon.Fahrenheit {
		step = 1
	}
	m.store.SetTemperature(*state.TargetTemperature+direction*step, unit)
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.Quitting {
		return ""
	}

	width := clampWidth(m.Width)
	panelWidth := width - 4

	title := TitleStyle.Render(AppName) + SubtitleStyle.Render(fmt.Sprintf("%s  •  %s", AppVersion(), m.backend))

	sections := []string{
		title,
		PanelStyle(panelWidth).Render(m.renderDevice()),
		PanelStyle(panelWidth).Render(m.renderPrediction()),
		HelpStyle.Render(m.Help.View(m.Keys)),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) statusLine(status store.Status, loading bool) string {
	badge := StatusStyle(status).Render(string(status))
	if loading {
		return m.Spinner.View() + " " + badge
	}
	return badge
}

func field(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}

func (m DashboardModel) renderDevice() string {
	var lines []string
	lines = append(lines, TitleStyle.Render("Air conditioner")+"  "+m.statusLine(m.device.Status, m.device.Loading))

	state := m.device.Data
	if state == nil {
		lines = append(lines, SubtitleStyle.Render("No state yet. Press r to refresh."))
	} else {
		power := "OFF"
		if state.IsOn() {
			power = "ON"
		}
		unit := state.Unit()
		lines = append(lines,
			field("Device", state.Summarize().ID),
			field("Power", power),
			field("Room", formatTemperature(state.CurrentTemperature, unit)),
			field("Target", formatTemperature(state.TargetTemperature, unit)),
			field("Mode", stringOr(state.Mode)),
			field("Fan", stringOr(state.FanSpeed)),
		)
		if aq := state.AirQuality; aq != nil && aq.Humidity != nil {
			lines = append(lines, field("Humidity", fmt.Sprintf("%d%%", *aq.Humidity)))
		}
		if state.FilterPercent != nil {
			lines = append(lines, field("Filter", fmt.Sprintf("%d%%", *state.FilterPercent)))
		}
	}

	if m.device.Err != "" {
		lines = append(lines, ErrorTextStyle.Render("✗ "+m.device.Err))
	}
	return strings.Join(lines, "\n")
}

func (m DashboardModel) renderPrediction() string {
	var lines []string
	lines = append(lines, TitleStyle.Render("Comfort prediction")+"  "+m.statusLine(m.result.Status, m.result.Loading))

	if r := m.result.Data; r != nil && r.OK() {
		lines = append(lines,
			field("Temperature", fmt.Sprintf("%.2f°C", r.Temperature)),
			field("Category", CategoryStyle(r.Category).Render(r.Category)),
		)
	} else if m.result.Err == "" {
		lines = append(lines, SubtitleStyle.Render("Press p to predict from your profile."))
	}

	if m.result.Err != "" {
		lines = append(lines, ErrorTextStyle.Render("✗ "+m.result.Err))
	}
	return strings.Join(lines, "\n")
}

func formatTemperature(v *float64, unit aircon.TemperatureUnit) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf("%.1f°%s", *v, unit)
}

func stringOr[T ~string](v *T) string {
	if v == nil {
		return "unknown"
	}
	return string(*v)
}

// RunDashboard runs the dashboard until the user quits
func RunDashboard(s *store.Store, profile prediction.Input, backend string) error {
	m := NewDashboardModel(s, profile, backend)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
