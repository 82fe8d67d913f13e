package deck

import (
	"slices"

	"github.com/lox/blackjack-trainer/internal/randutil"
)

// CardsPerDeck is the size of one standard deck
const CardsPerDeck = 52

// Shoe is one or more decks merged together plus a cursor marking the next
// undealt card. A Shoe is a value: dealing returns a new Shoe and never
// rewrites cards that an older Shoe value can still see.
type Shoe struct {
	cards []Card
	next  int
}

// NewShoe builds numDecks standard decks and shuffles them with rng.
// Values below one are treated as a single deck.
func NewShoe(numDecks int, rng randutil.Source) Shoe {
	if numDecks < 1 {
		numDecks = 1
	}

	cards := make([]Card, 0, numDecks*CardsPerDeck)
	for range numDecks {
		cards = append(cards, newDeck()...)
	}

	Shuffle(cards, rng)
	return Shoe{cards: cards}
}

// NewStackedShoe returns an unshuffled shoe that deals cards in exactly the
// given order. Used for scenario tests and round replays.
func NewStackedShoe(cards ...Card) Shoe {
	return Shoe{cards: slices.Clone(cards)}
}

// newDeck creates a standard 52-card deck in suit-major order
func newDeck() []Card {
	cards := make([]Card, 0, CardsPerDeck)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	return cards
}

// Shuffle permutes cards in place using Fisher-Yates, walking from the last
// index down to 1 and swapping with a uniformly chosen index at or below it.
func Shuffle(cards []Card, rng randutil.Source) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Deal returns the card under the cursor and the shoe advanced past it.
//
// When the cursor has run off the end, a shuffled copy of the current shoe
// contents becomes the new shoe and dealing restarts from its first card.
// The shoe is not rebuilt from fresh decks. An empty stacked shoe falls back
// to a single fresh deck.
func (s Shoe) Deal(rng randutil.Source) (Card, Shoe) {
	if s.next < len(s.cards) {
		return s.cards[s.next], Shoe{cards: s.cards, next: s.next + 1}
	}

	var cards []Card
	if len(s.cards) == 0 {
		cards = newDeck()
	} else {
		cards = slices.Clone(s.cards)
	}
	Shuffle(cards, rng)
	return cards[0], Shoe{cards: cards, next: 1}
}

// Len returns the total number of cards in the shoe
func (s Shoe) Len() int {
	return len(s.cards)
}

// Position returns the cursor: the index of the next card to be dealt
func (s Shoe) Position() int {
	return s.next
}

// Remaining returns the number of undealt cards
func (s Shoe) Remaining() int {
	if s.next >= len(s.cards) {
		return 0
	}
	return len(s.cards) - s.next
}

// Cards returns a copy of every card in the shoe in deal order
func (s Shoe) Cards() []Card {
	return slices.Clone(s.cards)
}
