package deck

import (
	"fmt"
	"strings"
	"unicode"
)

// Suit represents a card suit
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// Suits lists every suit in shoe-building order
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// Name returns the lowercase English name of the suit
func (s Suit) Name() string {
	switch s {
	case Hearts:
		return "hearts"
	case Diamonds:
		return "diamonds"
	case Clubs:
		return "clubs"
	case Spades:
		return "spades"
	default:
		return "unknown"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank
type Rank int

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

// Ranks lists every rank in shoe-building order
var Ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		if r >= Two && r <= Ten {
			return fmt.Sprintf("%d", int(r))
		}
		return "?"
	}
}

// Value returns the blackjack value of the rank: aces count 11, face cards 10.
func (r Rank) Value() int {
	switch {
	case r == Ace:
		return 11
	case r >= Ten:
		return 10
	default:
		return int(r)
	}
}

// IsFace returns true for J, Q and K
func (r Rank) IsFace() bool {
	return r >= Jack && r <= King
}

// Card represents a playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the string representation of a card (e.g., "A♠", "10♥")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Value returns the card's blackjack value (A=11, face=10)
func (c Card) Value() int {
	return c.Rank.Value()
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// ParseCard parses a single card such as "Ah", "10d", "Td" or "K♠".
func ParseCard(s string) (Card, error) {
	cards, err := ParseCards(s)
	if err != nil {
		return Card{}, err
	}
	if len(cards) != 1 {
		return Card{}, fmt.Errorf("expected one card in %q, got %d", s, len(cards))
	}
	return cards[0], nil
}

// ParseCards parses a run of cards. Cards may be concatenated ("AhKs") or
// separated by spaces or commas ("Ah, 10s"). Parsing is case insensitive.
func ParseCards(s string) ([]Card, error) {
	runes := []rune(strings.ToUpper(s))
	cards := []Card{}

	for i := 0; i < len(runes); {
		if unicode.IsSpace(runes[i]) || runes[i] == ',' {
			i++
			continue
		}

		var rank Rank
		switch r := runes[i]; {
		case r == '1' && i+1 < len(runes) && runes[i+1] == '0':
			rank = Ten
			i += 2
		case r == 'T':
			rank = Ten
			i++
		case r >= '2' && r <= '9':
			rank = Rank(r - '0')
			i++
		case r == 'A':
			rank = Ace
			i++
		case r == 'J':
			rank = Jack
			i++
		case r == 'Q':
			rank = Queen
			i++
		case r == 'K':
			rank = King
			i++
		default:
			return nil, fmt.Errorf("invalid rank %q at position %d", string(r), i)
		}

		if i >= len(runes) {
			return nil, fmt.Errorf("missing suit after rank %s", rank)
		}

		var suit Suit
		switch r := runes[i]; r {
		case 'H', '♥':
			suit = Hearts
		case 'D', '♦':
			suit = Diamonds
		case 'C', '♣':
			suit = Clubs
		case 'S', '♠':
			suit = Spades
		default:
			return nil, fmt.Errorf("invalid suit %q at position %d", string(r), i)
		}
		i++

		cards = append(cards, NewCard(suit, rank))
	}

	return cards, nil
}

// MustParseCards parses cards and panics on error. Intended for tests.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// MustParseCard parses a single card and panics on error. Intended for tests.
func MustParseCard(s string) Card {
	card, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return card
}
