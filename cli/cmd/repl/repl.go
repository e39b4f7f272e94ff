package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
	"golang.org/x/term"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/slang/lang"
	"github.com/ardnew/slang/log"
)

const (
	evalPrompt = "➜ "
	contPrompt = "… "
	ctrlPrompt = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help     Print this message
  list     List global bindings
  edit     Write a program in $EDITOR and run it
  reset    Discard all global bindings
  clear    Clear screen
  quit     Exit REPL

Usage:
  Type statements to run them; bindings persist between lines
  A line with unclosed brackets continues on the next line
  Completions appear as you type; Tab / Shift-Tab cycle through them
  Press Space to accept the current candidate
  Use Up/Down for history, Shift+Up/Shift+Down within the current mode
  Press Ctrl+C to interrupt a running program or clear the line
  Press Ctrl+C on an empty line or Ctrl+D to exit
`
}

// inputMode selects whether a submitted line is run or treated as a command.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = suggestionStyle.Bold(true)
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)

	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// Option configures a REPL session.
type Option func(*config)

type config struct {
	logger  log.Logger
	stdin   *os.File
	stdout  io.Writer
	history string
	setup   func(*lang.Interpreter) error
	opts    []lang.Option
}

// WithLogger sets the logger used by the session and its interpreter.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithHistory sets the history file. An empty path disables persistence.
func WithHistory(path string) Option {
	return func(c *config) { c.history = path }
}

// WithStdio sets the session's input and output.
func WithStdio(stdin *os.File, stdout io.Writer) Option {
	return func(c *config) { c.stdin, c.stdout = stdin, stdout }
}

// WithSetup registers a function run against the interpreter before the
// first line is read. Its print output goes to the session's output.
func WithSetup(setup func(*lang.Interpreter) error) Option {
	return func(c *config) { c.setup = setup }
}

// WithInterpreterOptions passes options through to [lang.New].
func WithInterpreterOptions(opts ...lang.Option) Option {
	return func(c *config) { c.opts = append(c.opts, opts...) }
}

// sink is the interpreter's print destination. The session points it at the
// terminal while setting up and at a buffer while the TUI owns the screen.
type sink struct{ w io.Writer }

func (s *sink) Write(p []byte) (int, error) { return s.w.Write(p) }

// Run starts a session. When stdin is not a terminal, its whole content is
// run as a program instead.
func Run(ctx context.Context, opts ...Option) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cfg := config{stdin: os.Stdin, stdout: os.Stdout}
	for _, opt := range opts {
		opt(&cfg)
	}

	out := &sink{w: cfg.stdout}
	interp := lang.New(append([]lang.Option{
		lang.WithLogger(cfg.logger),
		lang.WithOutput(out),
	}, cfg.opts...)...)

	if cfg.setup != nil {
		if err := cfg.setup(interp); err != nil {
			return err
		}
	}

	interactive := term.IsTerminal(int(cfg.stdin.Fd()))

	cfg.logger.TraceContext(ctx, "repl start",
		slog.Bool("interactive", interactive),
		slog.String("history", cfg.history))

	if !interactive {
		_, err := interp.RunReader(ctx, cfg.stdin)

		return err
	}

	history := NewHistory(cfg.history)
	if err := history.Load(); err != nil {
		cfg.logger.WarnContext(ctx, "could not load history",
			slog.String("path", cfg.history),
			slog.Any("error", err))
	}

	buf := new(bytes.Buffer)
	out.w = buf

	m := newModel(ctx, interp, buf, history, cfg.logger)

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(cfg.stdin),
		tea.WithOutput(cfg.stdout),
	)
	_, err = p.Run()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

// evalDoneMsg carries the result of a program run in the background.
type evalDoneMsg struct {
	value lang.Value
	err   error
}

// editDoneMsg is sent when the editor exits.
type editDoneMsg struct {
	cmd *editCommand
	err error
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	cancel       context.CancelFunc // interrupts the running program
	interp       *lang.Interpreter
	out          *bytes.Buffer
	logger       log.Logger
	history      *History
	input        textinput.Model
	matches      fuzzy.Matches
	pending      string // unfinished input awaiting closing brackets
	draft        string // last program written in the editor
	evalText     string
	ctrlText     string
	preTabText   string
	historyIdx   int
	wordStart    int
	wordEnd      int
	suggIdx      int
	preTabCursor int
	evalCursor   int
	ctrlCursor   int
	width        int
	mode         inputMode
	tabActive    bool
	running      bool
	quitting     bool
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	interp *lang.Interpreter,
	out *bytes.Buffer,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		interp:     interp,
		out:        out,
		logger:     logger,
		history:    history,
		input:      ti,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-lipgloss.Width(evalPrompt)-2, 1)

		return m, nil

	case evalDoneMsg:
		return m.finishEval(msg)

	case editDoneMsg:
		return m.finishEdit(msg)
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hintLine())
	b.WriteString("\n")

	return b.String()
}

// hintLine renders the line below the input. It must not touch the
// interpreter while a program is running.
func (m model) hintLine() string {
	if m.running {
		return hintStyle.Render("running (Ctrl+C to interrupt)")
	}

	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		switch {
		case m.pending != "":
			return hintStyle.Render("Continue the statement, or Ctrl+C to discard it")

		case m.mode == modeEval:
			return hintStyle.Render("Type a statement or press Esc for commands")

		default:
			return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") +
				" (press Esc to return)")
		}
	}

	if m.mode == modeEval && !m.tabActive {
		call := detectFunctionCall(input, m.input.Position())
		if call.inCall {
			if params, ok := signature(m.interp, call.name); ok {
				return renderSignatureHint(call.name, params, call.argIndex)
			}
		}
	}

	return m.renderCandidateBar()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()))

	if m.running {
		if msg.Type == tea.KeyCtrlC && m.cancel != nil {
			m.cancel()
		}

		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" && m.pending == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.pending = ""
		m.tabActive = false
		m.input.Prompt = promptStyle.Render(evalPrompt)

		return m.setInput("", 0), nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive && len(m.matches) > 0 {
			m.tabActive = false
			m.refreshMatches(true)

			return m, nil
		}

		return m.submit()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false

			return m.setInput(m.preTabText, m.preTabCursor), nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil
	}

	// Typing a space while cycling accepts the current candidate.
	if m.tabActive && msg.Type == tea.KeySpace {
		m.tabActive = false
	}

	var cmd tea.Cmd

	m.tabActive = m.tabActive && msg.Type == tea.KeyRunes
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refreshMatches(msg.Type == tea.KeyRunes)

	return m, cmd
}

// setInput replaces the input line and recomputes completions.
func (m model) setInput(text string, cursor int) model {
	m.input.SetValue(text)
	m.input.SetCursor(cursor)
	m.historyIdx = m.history.Len()
	m.refreshMatches(false)

	return m
}

// cycle moves the completion selection by step, entering tab mode on first
// use. A single candidate is accepted immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		m.replaceWord(m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if !m.tabActive {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = -1

		if step < 0 {
			m.suggIdx = 0
		}
	}

	m.suggIdx = ((m.suggIdx+step)%n + n) % n
	m.replaceWord(m.matches[m.suggIdx].Str)

	return m
}

// replaceWord substitutes the word under the cursor.
func (m *model) replaceWord(word string) {
	input := m.input.Value()

	m.input.SetValue(input[:m.wordStart] + word + input[m.wordEnd:])
	m.input.SetCursor(m.wordStart + len(word))
	m.wordEnd = m.wordStart + len(word)
}

// refreshMatches recomputes completions. With autoConfirm, a word that
// already equals its only candidate is accepted.
func (m *model) refreshMatches(autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if autoConfirm && len(m.matches) == 1 &&
		m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.matches = nil
	}
}

// submit handles Enter outside of tab cycling.
func (m model) submit() (model, tea.Cmd) {
	line := m.input.Value()
	if strings.TrimSpace(line) == "" && m.pending == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m = m.setInput("", 0)

	if m.mode == modeCtrl {
		if err := m.history.Add(line, modeCtrl); err != nil {
			m.logger.WarnContext(m.ctxFunc(), "history write failed", slog.Any("error", err))
		}

		m.historyIdx = m.history.Len()

		return m.executeCommand(strings.TrimSpace(line))
	}

	prompt := evalPrompt
	if m.pending != "" {
		prompt = contPrompt
	}

	echo := tea.Println(promptStyle.Render(prompt) + inputStyle.Render(line))

	src := line
	if m.pending != "" {
		src = m.pending + "\n" + line
	}

	if incomplete(src) {
		m.pending = src
		m.input.Prompt = promptStyle.Render(contPrompt)

		return m, echo
	}

	m.pending = ""
	m.input.Prompt = promptStyle.Render(evalPrompt)

	if err := m.history.Add(strings.Join(strings.Fields(src), " "), modeEval); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "history write failed", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	m.logger.TraceContext(m.ctxFunc(), "repl eval", slog.String("input", src))

	m, run := m.start(func(ctx context.Context) (lang.Value, error) {
		return m.interp.Run(ctx, src)
	})

	return m, tea.Sequence(echo, run)
}

// start runs fn in the background and marks the session busy until the
// resulting evalDoneMsg arrives.
func (m model) start(fn func(context.Context) (lang.Value, error)) (model, tea.Cmd) {
	ctx, cancel := context.WithCancel(m.ctxFunc())

	m.running = true
	m.cancel = cancel
	m.out.Reset()

	return m, func() tea.Msg {
		defer cancel()

		v, err := fn(ctx)

		return evalDoneMsg{value: v, err: err}
	}
}

func (m model) finishEval(msg evalDoneMsg) (model, tea.Cmd) {
	m.running = false
	m.cancel = nil

	var cmds []tea.Cmd

	if out := strings.TrimSuffix(m.out.String(), "\n"); out != "" {
		cmds = append(cmds, tea.Println(out))
	}

	m.out.Reset()

	switch {
	case msg.err != nil:
		m.logger.DebugContext(m.ctxFunc(), "repl eval failed", slog.Any("error", msg.err))
		cmds = append(cmds, tea.Println(errorStyle.Render(msg.err.Error())))

	case msg.value.Kind != lang.KindUnit:
		cmds = append(cmds, tea.Println(resultStyle.Render(msg.value.Source())))
	}

	m.refreshMatches(false)

	return m, tea.Sequence(cmds...)
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", parts[0]),
		slog.Any("args", parts[1:]))

	switch parts[0] {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.listBindings()))

	case "r", "reset":
		m.interp.Reset()

		return m, tea.Sequence(echo, tea.Println(hintStyle.Render("bindings cleared")))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		cmd := &editCommand{ctxFunc: m.ctxFunc, logger: m.logger, draft: m.draft}

		return m, tea.Sequence(echo, tea.Exec(cmd, func(err error) tea.Msg {
			return editDoneMsg{cmd: cmd, err: err}
		}))

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + parts[0] + " (try 'help')"))
	}
}

func (m model) finishEdit(msg editDoneMsg) (model, tea.Cmd) {
	m.draft = msg.cmd.draft

	switch {
	case errors.Is(msg.err, ErrEditDeclined):
		return m, tea.Println(hintStyle.Render("edit discarded"))

	case msg.err != nil:
		return m, tea.Println(errorStyle.Render("edit failed: " + msg.err.Error()))

	case msg.cmd.program == nil:
		return m, tea.Println(hintStyle.Render("edit cancelled"))
	}

	prog := msg.cmd.program

	m.logger.TraceContext(m.ctxFunc(), "repl edit complete",
		slog.Int("statement_count", len(prog.Statements)))

	return m.start(func(ctx context.Context) (lang.Value, error) {
		return m.interp.Exec(ctx, prog.Statements)
	})
}

// historyStep moves through history by step. With sameMode, entries from
// the other mode are skipped; otherwise the mode follows the entry.
func (m model) historyStep(step int, sameMode bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil || (sameMode && entry.Mode != m.mode) {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		m.refreshMatches(false)
		m.historyIdx = i

		return m
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m = m.setInput("", 0)
	}

	return m
}

func (m model) listBindings() string {
	names := m.interp.Names()
	if len(names) == 0 {
		return hintStyle.Render("  (no bindings)")
	}

	var b strings.Builder

	for _, name := range names {
		v, err := m.interp.Get(name)
		if err != nil {
			continue
		}

		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(preview(v)))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// switchToMode switches modes, saving and restoring each mode's input.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText, m.evalCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		if m.pending != "" {
			m.input.Prompt = promptStyle.Render(contPrompt)
		}

		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	m.refreshMatches(false)

	return m
}

// incomplete reports whether src has more opening than closing brackets, so
// the statement continues on the next line.
func incomplete(src string) bool {
	toks, err := lang.Tokenize(src)
	if err != nil {
		return false
	}

	depth := 0

	for _, tok := range toks {
		switch tok.Kind {
		case lang.TokenLParen, lang.TokenLBrace, lang.TokenLBracket:
			depth++

		case lang.TokenRParen, lang.TokenRBrace, lang.TokenRBracket:
			depth--
		}
	}

	return depth > 0
}
