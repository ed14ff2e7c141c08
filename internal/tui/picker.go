package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aiservice/poseul/internal/discovery"
)

// ScanFunc looks for backends on the network
type ScanFunc func(ctx context.Context) ([]*discovery.Backend, error)

type scanCompleteMsg struct {
	backends []*discovery.Backend
	err      error
}

// pickerKeyMap defines key bindings for the backend picker
type pickerKeyMap struct {
	Select key.Binding
	Rescan key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Rescan, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Select, k.Rescan, k.Quit}}
}

// backendItem wraps a Backend for use with bubbles/list
type backendItem struct {
	backend *discovery.Backend
}

func (b backendItem) FilterValue() string {
	return b.backend.Instance + " " + b.backend.IP + " " + b.backend.Hostname
}

func (b backendItem) Title() string {
	return b.backend.Instance
}

func (b backendItem) Description() string {
	desc := b.backend.BaseURL()
	if v := b.backend.GetMetadata("version"); v != "" {
		desc += " • " + v
	}
	return desc
}

// PickerModel scans for backends and lets the user choose one
type PickerModel struct {
	scan ScanFunc

	Scanning bool
	Err      error
	List     list.Model
	Chosen   *discovery.Backend

	Spinner spinner.Model
	Help    help.Model
	Keys    pickerKeyMap
}

// NewPickerModel creates a picker that scans with scan
func NewPickerModel(scan ScanFunc) PickerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	l := list.New([]list.Item{}, list.NewDefaultDelegate(), MinTerminalWidth, 14)
	l.Title = "Backends"
	l.Styles.Title = TitleStyle
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)

	return PickerModel{
		scan:    scan,
		List:    l,
		Spinner: sp,
		Help:    help.New(),
		Keys: pickerKeyMap{
			Select: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "use backend"),
			),
			Rescan: key.NewBinding(
				key.WithKeys("r"),
				key.WithHelp("r", "rescan"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q", "esc", "ctrl+c"),
				key.WithHelp("q", "quit"),
			),
		},
	}
}

func (m PickerModel) scanCmd() tea.Cmd {
	scan := m.scan
	return func() tea.Msg {
		backends, err := scan(context.Background())
		return scanCompleteMsg{backends: backends, err: err}
	}
}

// Init starts the first scan
func (m PickerModel) Init() tea.Cmd {
	return tea.Batch(m.Spinner.Tick, m.scanCmd())
}

// Update handles messages and updates the model
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.List.SetSize(clampWidth(msg.Width)-4, msg.Height-6)
		return m, nil

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.backends))
		for i, b := range msg.backends {
			items[i] = backendItem{backend: b}
		}
		cmd := m.List.SetItems(items)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.List.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.Keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.Keys.Rescan):
			if m.Scanning {
				return m, nil
			}
			m.Scanning = true
			m.Err = nil
			return m, m.scanCmd()
		case key.Matches(msg, m.Keys.Select):
			if item, ok := m.List.SelectedItem().(backendItem); ok {
				m.Chosen = item.backend
				return m, tea.Quit
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.List, cmd = m.List.Update(msg)
	return m, cmd
}

// View renders the picker
func (m PickerModel) View() string {
	var b strings.Builder
	switch {
	case m.Scanning:
		b.WriteString(fmt.Sprintf("\n %s Looking for %s services...\n", m.Spinner.View(), discovery.ServiceType))
	case m.Err != nil:
		b.WriteString("\n" + ErrorTextStyle.Render(" ✗ Scan failed: "+m.Err.Error()) + "\n")
	case len(m.List.Items()) == 0:
		b.WriteString("\n" + SubtitleStyle.Render(" No backends found. Press r to scan again.") + "\n")
	default:
		b.WriteString(m.List.View())
	}
	b.WriteString(HelpStyle.Render(m.Help.View(m.Keys)))
	return b.String()
}

// RunPicker scans for backends and returns the one the user picked, or
// nil if they quit without choosing.
func RunPicker(scan ScanFunc) (*discovery.Backend, error) {
	m := NewPickerModel(scan)
	m.Scanning = true

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, err
	}
	return final.(PickerModel).Chosen, nil
}
