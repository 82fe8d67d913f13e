package strategy

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/game"
	"github.com/lox/blackjack-trainer/internal/hand"
)

// Section groups chart rows by the table they are read from
type Section int

const (
	SectionHard Section = iota
	SectionSoft
	SectionPairs
)

// String returns the section heading
func (s Section) String() string {
	switch s {
	case SectionHard:
		return "Hard totals"
	case SectionSoft:
		return "Soft totals"
	case SectionPairs:
		return "Pairs"
	default:
		return "unknown"
	}
}

// DealerUpCards are the chart columns, 2 through 10 then Ace.
var DealerUpCards = []deck.Rank{
	deck.Two, deck.Three, deck.Four, deck.Five, deck.Six,
	deck.Seven, deck.Eight, deck.Nine, deck.Ten, deck.Ace,
}

// Row is one player hand against every dealer upcard
type Row struct {
	Section Section
	Label   string
	Hand    hand.Hand
	Cells   []Recommendation
}

// Chart is the full decision surface
type Chart struct {
	Rows []Row
}

// NewChart builds the chart by asking Recommend about a representative hand
// for every row: hard 5 to 21, soft 13 to 21 and every pair.
func NewChart() Chart {
	var rows []Row

	for total := 5; total <= 21; total++ {
		rows = append(rows, newRow(SectionHard, fmt.Sprintf("%d", total), hardCards(total)))
	}
	for total := 13; total <= 21; total++ {
		rows = append(rows, newRow(SectionSoft, fmt.Sprintf("A,%d", total-11), softCards(total)))
	}
	for _, rank := range []deck.Rank{deck.Ace, deck.Ten, deck.Nine, deck.Eight, deck.Seven, deck.Six, deck.Five, deck.Four, deck.Three, deck.Two} {
		label := fmt.Sprintf("%s,%s", rank, rank)
		rows = append(rows, newRow(SectionPairs, label, []deck.Card{
			deck.NewCard(deck.Spades, rank),
			deck.NewCard(deck.Clubs, rank),
		}))
	}

	return Chart{Rows: rows}
}

func newRow(section Section, label string, cards []deck.Card) Row {
	player := hand.Evaluate(cards)
	cells := make([]Recommendation, len(DealerUpCards))
	for i, rank := range DealerUpCards {
		cells[i] = Recommend(player, deck.NewCard(deck.Hearts, rank))
	}
	return Row{Section: section, Label: label, Hand: player, Cells: cells}
}

// hardCards returns an ace-free, non-pair hand totalling n
func hardCards(n int) []deck.Card {
	c := func(v int) deck.Card { return deck.NewCard(deck.Spades, deck.Rank(v)) }
	switch {
	case n <= 11:
		return []deck.Card{c(2), c(n - 2)}
	case n <= 19:
		return []deck.Card{c(10), c(n - 10)}
	default:
		return []deck.Card{c(10), c(2), c(n - 12)}
	}
}

// softCards returns a soft hand totalling n that is not a natural
func softCards(n int) []deck.Card {
	ace := deck.NewCard(deck.Spades, deck.Ace)
	if n == 21 {
		return []deck.Card{ace, deck.NewCard(deck.Spades, deck.Five), deck.NewCard(deck.Clubs, deck.Five)}
	}
	return []deck.Card{ace, deck.NewCard(deck.Spades, deck.Rank(n-11))}
}

// Lookup finds the cell for a row label and dealer upcard.
func (c Chart) Lookup(section Section, label string, upCard deck.Rank) (Recommendation, bool) {
	col := column(upCard)
	if col < 0 {
		return Recommendation{}, false
	}
	for _, row := range c.Rows {
		if row.Section == section && row.Label == label {
			return row.Cells[col], true
		}
	}
	return Recommendation{}, false
}

var (
	chartHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FAFAFA"))

	chartLabelStyle = lipgloss.NewStyle().
			Width(6).
			Foreground(lipgloss.Color("#96CEB4"))

	chartCellStyle = lipgloss.NewStyle().
			Width(4).
			Align(lipgloss.Center)

	actionColors = map[game.Action]lipgloss.Color{
		game.Hit:       lipgloss.Color("#FF6B6B"),
		game.Stand:     lipgloss.Color("#FFD700"),
		game.Double:    lipgloss.Color("#96CEB4"),
		game.Split:     lipgloss.Color("#7D56F4"),
		game.Surrender: lipgloss.Color("#626262"),
	}
)

// Abbrev returns the one-letter chart code for an action
func Abbrev(a game.Action) string {
	switch a {
	case game.Hit:
		return "H"
	case game.Stand:
		return "S"
	case game.Double:
		return "D"
	case game.Split:
		return "P"
	case game.Surrender:
		return "R"
	default:
		return "?"
	}
}

// Render draws the chart as three colored tables. If highlight is non-nil the
// matching cell is drawn reversed.
func (c Chart) Render(highlight *Cell) string {
	var b strings.Builder

	header := chartLabelStyle.Render("")
	for _, r := range DealerUpCards {
		header += chartCellStyle.Inherit(chartHeaderStyle).Render(r.String())
	}

	section := Section(-1)
	for _, row := range c.Rows {
		if row.Section != section {
			if section >= 0 {
				b.WriteString("\n")
			}
			section = row.Section
			b.WriteString(chartHeaderStyle.Render(section.String()))
			b.WriteString("\n")
			b.WriteString(header)
			b.WriteString("\n")
		}

		b.WriteString(chartLabelStyle.Render(row.Label))
		for i, cell := range row.Cells {
			style := chartCellStyle.Foreground(actionColors[cell.Action])
			if highlight != nil && highlight.Section == row.Section && highlight.Label == row.Label && highlight.Column == i {
				style = style.Reverse(true)
			}
			b.WriteString(style.Render(Abbrev(cell.Action)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Render("H hit  S stand  D double  P split"))
	b.WriteString("\n")
	return b.String()
}

// Cell addresses a single chart entry
type Cell struct {
	Section Section
	Label   string
	Column  int
}

// CellFor locates the chart entry that Recommend reads for a hand. Hands
// outside the charted rows, such as hard 4, return false.
func (c Chart) CellFor(player hand.Hand, upCard deck.Card) (Cell, bool) {
	col := column(upCard.Rank)
	if col < 0 {
		return Cell{}, false
	}

	var cell Cell
	switch {
	case player.IsPair() && player.CanSplit:
		rank := player.Cards[0].Rank
		if rank.IsFace() {
			rank = deck.Ten
		}
		cell = Cell{Section: SectionPairs, Label: fmt.Sprintf("%s,%s", rank, rank)}
	case player.IsSoft:
		cell = Cell{Section: SectionSoft, Label: fmt.Sprintf("A,%d", player.Total-11)}
	default:
		cell = Cell{Section: SectionHard, Label: fmt.Sprintf("%d", player.Total)}
	}
	cell.Column = col

	for _, row := range c.Rows {
		if row.Section == cell.Section && row.Label == cell.Label {
			return cell, true
		}
	}
	return Cell{}, false
}

// column maps an upcard rank to its chart column; face cards share the 10 column.
func column(rank deck.Rank) int {
	for i, r := range DealerUpCards {
		if r.Value() == rank.Value() {
			return i
		}
	}
	return -1
}
