package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"cildis/internal/analysis"
	"cildis/internal/cildis/styles"
	"cildis/internal/listing"
	"cildis/internal/logging"
	"cildis/internal/peimg"
	"cildis/internal/ui/colorize"
)

type viewMode int

const (
	viewMethods viewMode = iota
	viewListing
	viewReport
)

type methodItem struct {
	decodedMethod
}

func (i methodItem) Title() string {
	return fmt.Sprintf("%08X  %s", i.RVA, i.Name)
}

func (i methodItem) FilterValue() string {
	return fmt.Sprintf("%08x %s", i.RVA, i.Name)
}

func (i methodItem) Description() string { return "" }

// status is the short state shown next to each method.
func (i methodItem) status() string {
	switch {
	case i.Err != nil:
		return "error"
	case i.Shared():
		return "shared"
	}
	stats := analysis.Analyze(i.Blocks)
	s := fmt.Sprintf("%d blocks, %d instrs", stats.Blocks, stats.Instructions)
	if n := len(i.Findings); n > 0 {
		s += fmt.Sprintf(", %d findings", n)
	}
	return s
}

// Custom item delegate for the methods list
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(methodItem)
	if !ok {
		return
	}

	indicator := " "
	addrStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	if index == m.Index() {
		indicator = ">"
		addrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	}

	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(styles.Muted))
	if i.Err != nil || len(i.Findings) > 0 {
		statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(styles.Warning))
	}

	fmt.Fprintf(w, " %s  %s  %-18s %s",
		indicator,
		addrStyle.Render(fmt.Sprintf("%08X", i.RVA)),
		i.Name,
		statusStyle.Render(i.status()))
}

type decodedMsg struct {
	img     *peimg.Image
	methods []decodedMethod
	err     error
}

func decodeCmd(ctx context.Context, path string, rvas []uint32, workers int, lg *log.Logger) tea.Cmd {
	return func() tea.Msg {
		img, methods, err := decodeImage(ctx, path, rvas, workers, lg)
		return decodedMsg{img: img, methods: methods, err: err}
	}
}

type browseModel struct {
	methodsList list.Model
	viewport    viewport.Model
	spinner     spinner.Model
	mode        viewMode
	path        string
	img         *peimg.Image
	methods     []decodedMethod
	current     int
	loading     bool
	loadErr     error
	width       int
	height      int
	load        tea.Cmd
}

func newBrowseModel(path string) browseModel {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(22)

	methodsList := list.New([]list.Item{}, itemDelegate{}, 80, 22)
	methodsList.SetShowStatusBar(false)
	methodsList.SetFilteringEnabled(true)
	methodsList.Title = "Methods"
	methodsList.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		MarginLeft(2)
	methodsList.SetShowHelp(true)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	return browseModel{
		methodsList: methodsList,
		viewport:    vp,
		spinner:     s,
		mode:        viewMethods,
		path:        path,
		current:     -1,
		loading:     true,
		width:       80,
		height:      24,
	}
}

func (m browseModel) Init() tea.Cmd {
	return tea.Batch(m.load, m.spinner.Tick)
}

// setMethods fills the list once decoding finished.
func (m *browseModel) setMethods(methods []decodedMethod) {
	m.methods = methods
	items := make([]list.Item, len(methods))
	for i, d := range methods {
		items[i] = methodItem{d}
	}
	m.methodsList.SetItems(items)
	m.methodsList.Title = fmt.Sprintf("Methods (%d total)", len(methods))
	m.loading = false
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case decodedMsg:
		m.img = msg.img
		m.loadErr = msg.err
		m.loading = false
		if msg.err == nil {
			m.setMethods(msg.methods)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.SetWidth(msg.Width)
		m.viewport.SetHeight(msg.Height - 2)
		m.methodsList.SetWidth(msg.Width)
		m.methodsList.SetHeight(msg.Height - 2)
		m.refresh()

	case tea.KeyMsg:
		// let the list consume keys while its filter is open
		if m.mode == viewMethods && m.methodsList.FilterState() == list.Filtering {
			if k := msg.String(); k == "ctrl+c" {
				return m.quit()
			}
			break
		}
		if next, cmd, handled := m.handleKey(msg.String()); handled {
			return next, cmd
		}
	}

	switch m.mode {
	case viewMethods:
		m.methodsList, cmd = m.methodsList.Update(msg)
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m browseModel) quit() (tea.Model, tea.Cmd) {
	if m.img != nil {
		m.img.Close()
	}
	return m, tea.Quit
}

// handleKey applies the browser's own bindings. Unhandled keys fall through to the active view.
func (m browseModel) handleKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "q", "ctrl+c":
		next, cmd := m.quit()
		return next, cmd, true
	case "enter":
		if m.mode != viewMethods {
			return m, nil, true
		}
		if idx := m.methodsList.Index(); idx >= 0 && idx < len(m.methods) {
			m.current = idx
			m.mode = viewListing
			m.refresh()
		}
		return m, nil, true
	case "l":
		if m.current >= 0 {
			m.mode = viewListing
			m.refresh()
		}
		return m, nil, true
	case "r":
		if m.current >= 0 {
			m.mode = viewReport
			m.refresh()
		}
		return m, nil, true
	case "m", "esc":
		m.mode = viewMethods
		return m, nil, true
	case "tab":
		if m.current < 0 {
			return m, nil, true
		}
		m.mode = (m.mode + 1) % 3
		m.refresh()
		return m, nil, true
	}
	return m, nil, false
}

// refresh renders the current method into the viewport.
func (m *browseModel) refresh() {
	if m.current < 0 || m.current >= len(m.methods) {
		return
	}
	d := m.methods[m.current]

	var content string
	switch {
	case d.Err != nil:
		content = fmt.Sprintf("; %s\n; %v\n", d.Name, d.Err)
	case d.Shared():
		content = fmt.Sprintf("; %s\n; body already decoded by another method\n", d.Name)
	case m.mode == viewReport:
		md := listing.Markdown(d.Name, d.Blocks, analysis.Analyze(d.Blocks), d.Findings)
		rendered, err := styles.Render(md, max(m.width-2, 20))
		if err != nil {
			slog.Debug("report render failed", "error", err)
			rendered = md
		}
		content = strings.TrimSuffix(rendered, "\n")
	default:
		text := listing.Text(d.Blocks)
		if colored, err := colorize.ColorizeListing(text); err == nil {
			text = colored
		}
		content = fmt.Sprintf("; %s\n%s", d.Name, text)
		for _, f := range d.Findings {
			content += fmt.Sprintf("; %s: %s\n", f.Kind, f.Comment)
		}
	}
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

func (m browseModel) View() string {
	var content string
	switch {
	case m.loadErr != nil:
		content = fmt.Sprintf("\n  failed to decode %s: %v\n", m.path, m.loadErr)
	case m.loading:
		content = fmt.Sprintf("\n  %s Decoding %s...\n", m.spinner.View(), m.path)
	case m.mode == viewMethods:
		content = m.methodsList.View()
	default:
		content = m.viewport.View()
	}

	var menu string
	switch m.mode {
	case viewMethods:
		menu = " Enter: view listing • Tab: cycle • Q: quit "
	case viewListing:
		menu = " R: report • M: methods • Tab: cycle • Q: quit "
	case viewReport:
		menu = " L: listing • M: methods • Tab: cycle • Q: quit "
	}

	menuStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1).
		Width(m.width)

	return content + "\n" + menuStyle.Render(menu)
}

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse <pe-file>",
		Short: "Browse decoded methods interactively",
		Long: `Decode the methods at the given RVAs and open a terminal browser with the method
list, each method's listing and its report. Falls back to printing reports when the output
is not a terminal or --no-tui is set.`,
		Example: `
cildis browse app.dll --rva 0x2050 --rva 0x2078
  `,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd.Context())
			raw, _ := cmd.Flags().GetStringSlice("rva")
			rvas, err := parseRVAs(raw)
			if err != nil {
				return err
			}

			noTUI, _ := cmd.Flags().GetBool("no-tui")
			if noTUI || !isTerminal(cmd.OutOrStdout()) {
				lg := newLogger(cmd, cfg.Debug)
				defer lg.Close()
				img, methods, err := decodeImage(cmd.Context(), args[0], rvas, cfg.Workers, lg.Logger)
				if err != nil {
					return err
				}
				defer img.Close()
				return writeMethods(cmd.OutOrStdout(), formatReport, methods, img.Data())
			}

			// the alt screen owns the terminal, so only log to a file
			lg := logging.Discard()
			if logging.IsDebug() || cfg.Debug {
				file, err := logging.NewFileLogger("")
				if err != nil {
					return err
				}
				defer file.Close()
				file.SetLevel(log.DebugLevel)
				lg = file.Logger
			}

			model := newBrowseModel(args[0])
			model.load = decodeCmd(cmd.Context(), args[0], rvas, cfg.Workers, lg)
			program := tea.NewProgram(
				model,
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
			)
			if _, err := program.Run(); err != nil {
				slog.Error("TUI run error", "error", err)
				return fmt.Errorf("TUI error: %v", err)
			}
			return nil
		},
	}

	cmd.Flags().StringSlice("rva", nil, "RVA of a method body header (repeatable)")
	cmd.Flags().Int("workers", 0, "Methods decoded in parallel (0 for one per CPU)")
	return cmd
}
