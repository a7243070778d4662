package game

import (
	"fmt"
	"strings"

	"golang.org/x/exp/rand"
)

// Deck slots: red card 0, red card 1, blue card 0, blue card 1, neutral.
const (
	NeutralSlot = 4
	DeckSize    = 5
	HandSize    = 2
)

type Deck [DeckSize]Card

// NewDeck builds a deck from five distinct cards in slot order.
func NewDeck(cards [DeckSize]Card) (Deck, error) {
	var seen [NumCards]bool
	for _, c := range cards {
		if int(c.ID) >= NumCards {
			return Deck{}, fmt.Errorf("card id %d: %w", c.ID, ErrUnknownCard)
		}
		if seen[c.ID] {
			return Deck{}, fmt.Errorf("%s: %w", c.Name(), ErrDuplicateCard)
		}
		seen[c.ID] = true
	}
	return Deck(cards), nil
}

// NewDeckByName is NewDeck for card names, in slot order.
func NewDeckByName(names ...string) (Deck, error) {
	if len(names) != DeckSize {
		return Deck{}, fmt.Errorf("deck needs %d cards, got %d", DeckSize, len(names))
	}
	var cards [DeckSize]Card
	for i, name := range names {
		c, err := CardByName(name)
		if err != nil {
			return Deck{}, err
		}
		cards[i] = c
	}
	return NewDeck(cards)
}

// NewRandomDeck draws five distinct cards from the catalog.
func NewRandomDeck(rng *rand.Rand) Deck {
	perm := rng.Perm(NumCards)
	var d Deck
	for i := range d {
		d[i] = catalog[perm[i]]
	}
	return d
}

func slot(color Color, i int) int {
	return int(color)*HandSize + i
}

// Card returns the i-th card held by color.
func (d *Deck) Card(color Color, i int) Card {
	return d[slot(color, i)]
}

func (d *Deck) Hand(color Color) [HandSize]Card {
	return [HandSize]Card{d[slot(color, 0)], d[slot(color, 1)]}
}

func (d *Deck) Neutral() Card {
	return d[NeutralSlot]
}

// Rotate swaps the card color used from slot i with the neutral card.
func (d *Deck) Rotate(color Color, i int) {
	s := slot(color, i)
	d[s], d[NeutralSlot] = d[NeutralSlot], d[s]
}

func (d Deck) String() string {
	names := make([]string, DeckSize)
	for i, c := range d {
		names[i] = c.Name()
	}
	return strings.Join(names, ",")
}
