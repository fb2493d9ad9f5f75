package cmd

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/suderio/rolldice/internal/command"
	"github.com/suderio/rolldice/internal/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999"))

	stateBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 2)

	logBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#04B575")).
			Padding(0, 1)

	autocompleteStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#F25D94"))

	totalStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	struckStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("#999999"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F25D94"))

	lastWord = regexp.MustCompile(`[a-zA-Z_][\w.]*$`)
)

const welcome = "Roll some dice! Try 4d6k3, d20 @adv or atk = d20 + 5.\nType 'help' for commands, 'exit' to quit."

type suggestion string

func (s suggestion) Title() string       { return string(s) }
func (s suggestion) Description() string { return "" }
func (s suggestion) FilterValue() string { return string(s) }

type replModel struct {
	app         *session.Session
	user        string
	textInput   textinput.Model
	viewport    viewport.Model
	suggestions list.Model
	history     []string
	historyIdx  int
	logContent  string
	width       int
	height      int
	title       string
	showList    bool
}

func newREPLModel(app *session.Session, title, user string) replModel {
	ti := textinput.New()
	ti.Placeholder = "Enter an expression (e.g., 2d6 + 3)..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 60

	vp := viewport.New(0, 0)
	vp.SetContent(welcome)

	// Configure a minimalist list for autocomplete
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetHeight(1)
	delegate.SetSpacing(0)
	sugList := list.New([]list.Item{}, delegate, 50, 7)
	sugList.SetShowTitle(false)
	sugList.SetShowStatusBar(false)
	sugList.SetFilteringEnabled(false) // We filter manually
	sugList.SetShowHelp(false)

	return replModel{
		app:         app,
		user:        user,
		textInput:   ti,
		viewport:    vp,
		suggestions: sugList,
		history:     []string{},
		historyIdx:  -1,
		logContent:  welcome,
		title:       title,
	}
}

func (m *replModel) Init() tea.Cmd {
	return textinput.Blink
}

// completions proposes commands for the first word and variable names for
// the word under the cursor.
func completions(val string, names []string) []string {
	var out []string
	if val == "" {
		return out
	}
	if !strings.ContainsAny(val, " \t") {
		for _, c := range append(command.Names(), "exit", "quit") {
			if strings.HasPrefix(c, strings.ToLower(val)) && len(val) < len(c) {
				out = append(out, c+" ")
			}
		}
	}
	word := lastWord.FindString(val)
	if word == "" {
		return out
	}
	base := val[:len(val)-len(word)]
	for _, n := range names {
		if strings.HasPrefix(n, word) && len(word) < len(n) {
			out = append(out, base+n)
		}
	}
	return out
}

func (m *replModel) updateSuggestions() {
	var items []list.Item
	for _, c := range completions(m.textInput.Value(), m.app.Environment().ForUser(m.user).Names()) {
		items = append(items, suggestion(c))
	}

	m.suggestions.SetItems(items)
	m.showList = len(items) > 0
	if m.showList {
		h := len(items)
		if h > 10 {
			h = 10
		}
		if h < 4 {
			h = 4
		}
		m.suggestions.SetHeight(h)
		m.suggestions.ResetSelected()
	}
}

// renderLines styles reply lines for the log.
func renderLines(lines []string) string {
	var sb strings.Builder
	for i, l := range lines {
		l = struckText.ReplaceAllStringFunc(l, func(s string) string {
			return struckStyle.Render(strings.Trim(s, "~"))
		})
		if i == len(lines)-1 {
			l = totalStyle.Render(l)
		}
		sb.WriteString(l + "\n")
	}
	return sb.String()
}

func (m *replModel) run(val string) {
	m.logContent += fmt.Sprintf("\n\n> %s\n", val)
	reply, err := m.app.Execute(m.user, val)
	if err != nil {
		m.logContent += errorStyle.Render(command.Describe(err))
	} else {
		m.logContent += renderLines(reply.Lines)
	}
	m.viewport.SetContent(m.logContent)
	m.viewport.GotoBottom()
}

func (m *replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		lsCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyUp:
			if m.showList {
				m.suggestions, lsCmd = m.suggestions.Update(msg)
			} else if len(m.history) > 0 {
				if m.historyIdx == -1 {
					m.historyIdx = len(m.history) - 1
				} else if m.historyIdx > 0 {
					m.historyIdx--
				}
				m.textInput.SetValue(m.history[m.historyIdx])
				m.updateSuggestions()
			}

		case tea.KeyDown:
			if m.showList {
				m.suggestions, lsCmd = m.suggestions.Update(msg)
			} else if len(m.history) > 0 && m.historyIdx != -1 {
				if m.historyIdx < len(m.history)-1 {
					m.historyIdx++
					m.textInput.SetValue(m.history[m.historyIdx])
				} else {
					m.historyIdx = -1
					m.textInput.SetValue("")
				}
				m.updateSuggestions()
			}

		case tea.KeyTab:
			if m.showList {
				if i, ok := m.suggestions.SelectedItem().(suggestion); ok {
					m.textInput.SetValue(string(i))
					m.textInput.SetCursor(len(string(i)))
					m.updateSuggestions()
				}
			}

		case tea.KeyEnter:
			val := strings.TrimSpace(m.textInput.Value())
			if val == "exit" || val == "quit" {
				return m, tea.Quit
			}
			if val != "" {
				// Prevent duplicate history entries
				if len(m.history) == 0 || m.history[len(m.history)-1] != val {
					m.history = append(m.history, val)
				}
				m.historyIdx = -1
				m.textInput.SetValue("")
				m.updateSuggestions()
				m.run(val)
			}

		default:
			// Normal typing
			m.textInput, tiCmd = m.textInput.Update(msg)
			m.updateSuggestions()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 4
		m.suggestions.SetWidth(msg.Width - 6)
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	// Calculate accurate heights for dynamic components
	titleH := lipgloss.Height(titleStyle.Render("Dummy"))
	stateH := lipgloss.Height(m.renderVars())
	inputH := 1
	listAreaHeight := 0
	if m.showList {
		listAreaHeight = m.suggestions.Height() + 2 // borders
	}
	infoH := lipgloss.Height(infoStyle.Render("Dummy"))
	overhead := titleH + stateH + inputH + listAreaHeight + infoH + 6

	m.viewport.Height = m.height - overhead
	if m.viewport.Height < 4 {
		m.viewport.Height = 4
	}

	return m, tea.Batch(tiCmd, vpCmd, lsCmd)
}

func (m *replModel) renderVars() string {
	bindings := m.app.Environment().ForUser(m.user).Bindings()
	names := make([]string, 0, len(bindings))
	for n := range bindings {
		names = append(names, n)
	}
	sort.Strings(names)

	view := "Variables\n"
	if len(names) == 0 {
		view += "none yet, try: atk = d20 + 5"
	}
	for _, n := range names {
		view += fmt.Sprintf("\n %s = %s", n, bindings[n])
	}
	return stateBoxStyle.Width(m.width - 4).Render(view)
}

func (m *replModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	title := titleStyle.Render(fmt.Sprintf(" rolldice | %s as %s ", m.title, m.user))
	logBox := logBoxStyle.Width(m.width - 4).Render(m.viewport.View())

	inputArea := m.textInput.View()
	if m.showList {
		inputArea = fmt.Sprintf("%s\n%s", inputArea, autocompleteStyle.Render(m.suggestions.View()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.renderVars(),
		logBox,
		inputArea,
		infoStyle.Render("(esc to quit, tab to complete, up/down history)"),
	)
}

// RunTUI blocks running the REPL for user until they quit.
func RunTUI(app *session.Session, title, user string) error {
	m := newREPLModel(app, title, user)
	p := tea.NewProgram(&m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
