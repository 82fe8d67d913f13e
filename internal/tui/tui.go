// Package tui is the terminal trainer: a bubbletea front end over one
// session.Session.
package tui

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/blackjack-trainer/internal/currency"
	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/game"
	"github.com/lox/blackjack-trainer/internal/session"
	"github.com/lox/blackjack-trainer/internal/strategy"
)

// refreshInterval is how often the bonus countdown and balance are re-read
const refreshInterval = time.Second

const sidebarWidth = 26

// Model is the bubbletea model for the trainer
type Model struct {
	session *session.Session
	logger  *log.Logger
	chart   strategy.Chart

	// UI components
	logViewport viewport.Model
	betInput    textinput.Model

	// State
	gameLog   []string
	snap      session.Snapshot
	lastBet   int
	status    string
	statusErr bool
	showChart bool
	quitting  bool

	// Dimensions
	width  int
	height int
}

type tickMsg time.Time

// New creates the trainer model for sess
func New(sess *session.Session, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = fmt.Sprintf("bet %d-%d", currency.MinBet, currency.MaxBet)
	ti.Focus()
	ti.CharLimit = 6
	ti.Width = 12
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "Bet > "

	return &Model{
		session:     sess,
		logger:      logger.WithPrefix("tui"),
		chart:       strategy.NewChart(),
		logViewport: vp,
		betInput:    ti,
		snap:        sess.Snapshot(),
		lastBet:     currency.MinBet * 10,
	}
}

// Init starts the cursor blink and the countdown refresh
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.snap = m.session.Snapshot()
		return m, tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.betInput, cmd = m.betInput.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "esc", "q":
		m.quitting = true
		return m, tea.Quit

	case "enter":
		return m, m.deal(m.betInput.Value())

	case "n":
		return m, m.deal("")

	case "h", "s", "d", "p", "r":
		action, _ := game.ParseAction(key)
		return m, m.act(action)

	case "c":
		m.showChart = !m.showChart

	case "b":
		m.claimBonus()

	case "t":
		settings, err := m.session.SetHints(!m.snap.Settings.HintsEnabled)
		m.refresh()
		if err != nil {
			m.setError(err)
		} else {
			m.setStatus(fmt.Sprintf("Hints %s", onOff(settings.HintsEnabled)))
		}

	case "m":
		settings, err := m.session.SetSound(!m.snap.Settings.SoundEnabled)
		m.refresh()
		if err != nil {
			m.setError(err)
		} else {
			m.setStatus(fmt.Sprintf("Sound %s", onOff(settings.SoundEnabled)))
		}

	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd

	default:
		// Only digits and editing keys reach the bet input; letters are commands.
		if msg.Type == tea.KeyRunes && !isDigits(msg.Runes) {
			return m, nil
		}
		var cmd tea.Cmd
		m.betInput, cmd = m.betInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

// deal starts a new round. An empty input repeats the last bet.
func (m *Model) deal(input string) tea.Cmd {
	if m.playerTurn() {
		m.setStatus("Finish the current hand first")
		return nil
	}

	bet := m.lastBet
	if input = strings.TrimSpace(input); input != "" {
		n, err := strconv.Atoi(input)
		if err != nil {
			m.setError(fmt.Errorf("bet must be a number: %q", input))
			return nil
		}
		bet = n
	}

	if m.snap.InRound {
		if _, err := m.session.End(); err != nil {
			m.setError(err)
			return nil
		}
	}

	snap, err := m.session.Start(bet)
	m.snap = snap
	if err != nil {
		m.setError(err)
		return nil
	}

	m.lastBet = bet
	m.betInput.SetValue("")
	m.status = ""

	m.addLog("")
	m.addLog(HandInfoStyle.Render(fmt.Sprintf("Round %s: bet %s", shortID(snap.RoundID), currency.FormatAmount(bet))))
	m.addLog(fmt.Sprintf("You: %s", formatHand(snap.State.PlayerHands[0].Cards, snap.State.PlayerHands[0].Describe())))
	m.addLog(fmt.Sprintf("Dealer shows: %s", formatCards([]deck.Card{snap.State.DealerUpCard})))

	if snap.State.IsOver() {
		return m.finish()
	}
	return nil
}

func (m *Model) act(action game.Action) tea.Cmd {
	if !m.playerTurn() {
		return nil
	}

	index := m.snap.State.ActiveHandIndex
	snap, err := m.session.Act(action)
	m.snap = snap
	if err != nil {
		if errors.Is(err, session.ErrActionUnavailable) || errors.Is(err, session.ErrInsufficientFunds) {
			m.setStatus(err.Error())
			return nil
		}
		m.setError(err)
		return nil
	}

	if d := snap.LastDecision; d != nil {
		if d.Optimal {
			m.addLog(SuccessStyle.Render(fmt.Sprintf("✓ %s was the right play", action)))
		} else {
			m.addLog(ErrorStyle.Render(fmt.Sprintf("✗ You chose %s, basic strategy says %s. %s", action, d.Recommended.Action, d.Recommended.Reason)))
		}
	}

	// A split shows both new hands; anything else shows the hand acted on.
	if action == game.Split {
		for i := index; i <= index+1 && i < len(snap.State.PlayerHands); i++ {
			h := snap.State.PlayerHands[i]
			m.addLog(fmt.Sprintf("Hand %d: %s", i+1, formatHand(h.Cards, h.Describe())))
		}
	} else if index < len(snap.State.PlayerHands) && action != game.Surrender {
		h := snap.State.PlayerHands[index]
		m.addLog(fmt.Sprintf("You %s: %s", action, formatHand(h.Cards, h.Describe())))
	}

	if snap.State.IsOver() {
		return m.finish()
	}
	return nil
}

// finish logs the settled round and rings the bell when sound is on
func (m *Model) finish() tea.Cmd {
	state := m.snap.State
	m.addLog(fmt.Sprintf("Dealer: %s", formatHand(state.DealerHand.Cards, state.DealerHand.Describe())))

	line := fmt.Sprintf("Result: %s %s", strings.ToUpper(state.Result.String()), currency.FormatSigned(state.Winnings))
	switch {
	case state.Winnings > 0:
		m.addLog(SuccessStyle.Render(line))
	case state.Winnings < 0:
		m.addLog(ErrorStyle.Render(line))
	default:
		m.addLog(WarningStyle.Render(line))
	}
	m.addLog(InfoStyle.Render(fmt.Sprintf("Balance: %s. Enter a bet or press n to deal again.", currency.FormatChips(m.snap.Balance))))

	if m.snap.Settings.SoundEnabled {
		return bell
	}
	return nil
}

func bell() tea.Msg {
	_, _ = os.Stderr.WriteString("\a")
	return nil
}

func (m *Model) claimBonus() {
	ok, snap, err := m.session.ClaimBonus()
	m.snap = snap
	switch {
	case err != nil:
		m.setError(err)
	case ok:
		m.setStatus(fmt.Sprintf("Daily bonus claimed: +%s", currency.FormatChips(currency.DailyBonusAmount)))
		m.addLog(SuccessStyle.Render(fmt.Sprintf("Daily bonus +%s", currency.FormatAmount(currency.DailyBonusAmount))))
	default:
		m.setStatus(fmt.Sprintf("Next bonus in %s", currency.FormatBonusCountdown(snap.NextBonus)))
	}
}

func (m *Model) refresh() {
	m.snap = m.session.Snapshot()
}

func (m *Model) playerTurn() bool {
	return m.snap.InRound && m.snap.State.Phase == game.PhasePlayerTurn
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
	m.logger.Debug("Action failed", "error", err)
}

// addLog appends an entry to the game log and scrolls to it
func (m *Model) addLog(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.renderHeader()

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Render(actionContent)

	bodyHeight := max(m.height-actionHeight-lipgloss.Height(header)-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(bodyHeight).
		Render(m.renderSidebar())

	mainWidth := max(m.width-sidebarWidth-4, 1)
	var main string
	if m.showChart {
		main = m.renderChart()
	} else {
		m.logViewport.Width = mainWidth
		m.logViewport.Height = bodyHeight
		m.logViewport.SetContent(GameLogStyle.Render(strings.Join(m.gameLog, "\n")))
		main = m.logViewport.View()
	}
	mainPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(mainWidth).
		Height(bodyHeight).
		Render(main)

	body := lipgloss.JoinHorizontal(lipgloss.Top, mainPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, actionPane)
}

func (m *Model) renderHeader() string {
	return HeaderStyle.Render(fmt.Sprintf("Blackjack Trainer  •  %s  •  Bonus: %s",
		currency.FormatChips(m.snap.Balance), currency.FormatBonusCountdown(m.snap.NextBonus)))
}

func (m *Model) renderSidebar() string {
	st := m.snap.Stats
	var b strings.Builder

	b.WriteString(WarningStyle.Render("Statistics"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Played:     %d\n", st.GamesPlayed)
	fmt.Fprintf(&b, "Won:        %d\n", st.Wins)
	fmt.Fprintf(&b, "Lost:       %d\n", st.Losses)
	fmt.Fprintf(&b, "Pushed:     %d\n", st.Pushes)
	fmt.Fprintf(&b, "Blackjacks: %d\n", st.Blackjacks)
	b.WriteString("\n")
	b.WriteString(WarningStyle.Render("Strategy"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Followed:   %d\n", st.StrategyFollowed)
	fmt.Fprintf(&b, "Deviated:   %d\n", st.StrategyDeviated)
	fmt.Fprintf(&b, "Accuracy:   %.0f%%\n", st.Accuracy()*100)
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(fmt.Sprintf("Hints %s  Sound %s",
		onOff(m.snap.Settings.HintsEnabled), onOff(m.snap.Settings.SoundEnabled))))

	return b.String()
}

func (m *Model) renderChart() string {
	var highlight *strategy.Cell
	if m.playerTurn() {
		if cell, ok := m.chart.CellFor(m.snap.State.ActiveHand(), m.snap.State.DealerUpCard); ok {
			highlight = &cell
		}
	}
	return m.chart.Render(highlight)
}

// renderActionPane shows the table, the hint and the controls
func (m *Model) renderActionPane() string {
	var content strings.Builder
	state := m.snap.State

	if m.snap.InRound {
		content.WriteString(m.renderTable())
		content.WriteString("\n")
	}

	if m.playerTurn() {
		if m.snap.Settings.HintsEnabled && m.snap.Hint != nil {
			content.WriteString(HintStyle.Render(fmt.Sprintf("Hint: %s. %s", m.snap.Hint.Action, m.snap.Hint.Reason)))
			content.WriteString("\n")
		}
		content.WriteString(m.renderAvailableActions())
		content.WriteString("\n")
	} else {
		content.WriteString(m.betInput.View())
		content.WriteString("\n")
	}

	if m.status != "" {
		style := WarningStyle
		if m.statusErr {
			style = ErrorStyle
		}
		content.WriteString(style.Render(m.status))
		content.WriteString("\n")
	}

	help := "Enter deal • n repeat bet • c chart • t hints • m sound • b bonus • q quit"
	if m.playerTurn() {
		help = fmt.Sprintf("Bet %s on table • c chart • t hints • q quit", currency.FormatAmount(state.TotalBet))
	}
	content.WriteString(InfoStyle.Render(help))

	return content.String()
}

func (m *Model) renderTable() string {
	state := m.snap.State
	var b strings.Builder

	if m.playerTurn() {
		b.WriteString(fmt.Sprintf("Dealer: %s ??\n", formatCards([]deck.Card{state.DealerUpCard})))
	} else {
		b.WriteString(fmt.Sprintf("Dealer: %s\n", formatHand(state.DealerHand.Cards, state.DealerHand.Describe())))
	}

	for i, h := range state.PlayerHands {
		bet := state.CurrentBet
		if i < len(state.HandBets) && state.HandBets[i] > 0 {
			bet = state.HandBets[i]
		}
		line := fmt.Sprintf("Hand %d: %s  bet %s", i+1, formatHand(h.Cards, h.Describe()), currency.FormatAmount(bet))
		if m.playerTurn() && i == state.ActiveHandIndex && len(state.PlayerHands) > 1 {
			line = ActiveHandStyle.Render("▶ ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m *Model) renderAvailableActions() string {
	var actions []string
	for _, a := range m.snap.Available {
		switch a {
		case game.Hit:
			actions = append(actions, SuccessStyle.Render("[h]it"))
		case game.Stand:
			actions = append(actions, WarningStyle.Render("[s]tand"))
		case game.Double:
			actions = append(actions, ActionsStyle.Render("[d]ouble"))
		case game.Split:
			actions = append(actions, ActionsStyle.Render("s[p]lit"))
		case game.Surrender:
			actions = append(actions, ErrorStyle.Render("su[r]render"))
		}
	}
	if len(actions) == 0 {
		actions = append(actions, ErrorStyle.Render("[no actions available]"))
	}
	return ActionsStyle.Render("Actions: ") + strings.Join(actions, " ")
}

// formatCards formats cards with colors
func formatCards(cards []deck.Card) string {
	formatted := make([]string, len(cards))
	for i, card := range cards {
		if card.IsRed() {
			formatted[i] = RedCardStyle.Render(card.String())
		} else {
			formatted[i] = BlackCardStyle.Render(card.String())
		}
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

func formatHand(cards []deck.Card, description string) string {
	return formatCards(cards) + " " + description
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}

func isDigits(runes []rune) bool {
	for _, r := range runes {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(runes) > 0
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
