// Package tui provides a terminal user interface for synthlibrarian
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/synthlibrarian/pkg/librarian"
	"github.com/james-see/synthlibrarian/pkg/librarian/devices"
	"github.com/james-see/synthlibrarian/pkg/sysex"
)

// Phosphor-terminal color scheme
var (
	phosphorGreen = lipgloss.Color("#33FF33")
	amber         = lipgloss.Color("#FFBF00")
	silverGray    = lipgloss.Color("#C0C0C0")
	darkGray      = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(phosphorGreen).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(phosphorGreen).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(amber).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(phosphorGreen).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateNameInput
	StateWorking
	StateResult
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Action      string
}

var menuItems = []MenuItem{
	{Title: "Inspect dump", Description: "Show patch name, layers and tags of a .syx dump", Action: "inspect"},
	{Title: "Rename patch", Description: "Splice a new patch name into a .syx dump", Action: "rename"},
	{Title: "Exit", Description: "Exit the application", Action: ""},
}

// Model represents the TUI model
type Model struct {
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	nameInput    textinput.Model
	spinner      spinner.Model
	action       string
	selectedFile string
	summary      librarian.Summary
	outputFile   string
	err          error
	width        int
	height       int
}

// workDoneMsg signals that an inspect or rename finished
type workDoneMsg struct {
	summary    librarian.Summary
	outputFile string
	err        error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New() Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".syx"}
	fp.CurrentDirectory, _ = os.Getwd()

	ti := textinput.New()
	ti.Placeholder = "New patch name"
	ti.CharLimit = 20

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(phosphorGreen)

	return Model{
		state:      StateMenu,
		menuIndex:  0,
		filePicker: fp,
		nameInput:  ti,
		spinner:    s,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			if m.action == "rename" {
				m.state = StateNameInput
				m.nameInput.SetValue("")
				return m, m.nameInput.Focus()
			}
			m.state = StateWorking
			return m, tea.Batch(m.spinner.Tick, m.performAction())
		}

		return m, cmd
	}

	if m.state == StateNameInput {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "ctrl+c":
				return m, tea.Quit
			case "enter":
				m.state = StateWorking
				return m, tea.Batch(m.spinner.Tick, m.performAction())
			}
		}
		var cmd tea.Cmd
		m.nameInput, cmd = m.nameInput.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case workDoneMsg:
		m.state = StateResult
		m.summary = msg.summary
		m.outputFile = msg.outputFile
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		if m.menuIndex == len(menuItems)-1 {
			return m, tea.Quit
		}
		m.action = menuItems[m.menuIndex].Action
		m.state = StateFilePicker
		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.selectedFile = ""
		m.outputFile = ""
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) performAction() tea.Cmd {
	action := m.action
	file := m.selectedFile
	newName := m.nameInput.Value()

	return func() tea.Msg {
		data, err := os.ReadFile(file)
		if err != nil {
			return workDoneMsg{err: err}
		}
		if err := sysex.Validate(data); err != nil {
			return workDoneMsg{err: err}
		}

		device, _, ok := librarian.Identify(data, devices.All())
		if !ok {
			return workDoneMsg{err: fmt.Errorf("dump not recognized by any device")}
		}

		switch action {
		case "inspect":
			return workDoneMsg{summary: librarian.Inspect(device, data)}

		case "rename":
			renamed, err := device.Rename(data, newName)
			if err != nil {
				return workDoneMsg{err: err}
			}
			base := strings.TrimSuffix(file, filepath.Ext(file))
			outputFile := base + "-renamed.syx"
			if err := os.WriteFile(outputFile, renamed, 0644); err != nil {
				return workDoneMsg{err: err}
			}
			return workDoneMsg{
				summary:    librarian.Inspect(device, renamed),
				outputFile: outputFile,
			}
		}
		return workDoneMsg{err: fmt.Errorf("unknown action %q", action)}
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SYNTH LIBRARIAN "))
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateNameInput:
		s.WriteString(m.viewNameInput())
	case StateWorking:
		s.WriteString(m.viewWorking())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • esc: back • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render("▸ " + item.Title))
			s.WriteString("\n")
			s.WriteString(menuStyle.Render("  " + item.Description))
		} else {
			s.WriteString(menuStyle.Render("  " + item.Title))
		}
		s.WriteString("\n")
	}

	return s.String()
}

func (m Model) viewFilePicker() string {
	return statusStyle.Render("Select a .syx dump:") + "\n" + m.filePicker.View()
}

func (m Model) viewNameInput() string {
	return statusStyle.Render("Enter the new patch name (max 20 characters):") + "\n\n" + m.nameInput.View()
}

func (m Model) viewWorking() string {
	return fmt.Sprintf("\n %s Reading %s...\n", m.spinner.View(), filepath.Base(m.selectedFile))
}

func (m Model) viewResult() string {
	if m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}

	var s strings.Builder
	fmt.Fprintf(&s, "Device: %s\n", m.summary.Device)
	fmt.Fprintf(&s, "Kind:   %s\n", m.summary.Kind)
	fmt.Fprintf(&s, "Name:   %s\n", m.summary.Name)
	for i, layer := range m.summary.Layers {
		fmt.Fprintf(&s, "Layer %d: %s\n", i+1, layer)
	}
	if len(m.summary.Tags) > 0 {
		fmt.Fprintf(&s, "Tags:   %s\n", strings.Join(m.summary.Tags, ", "))
	}
	if m.outputFile != "" {
		fmt.Fprintf(&s, "\nSaved to %s\n", m.outputFile)
	}

	return boxStyle.Render(s.String())
}

// Run starts the TUI
func Run() error {
	p := tea.NewProgram(New(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
