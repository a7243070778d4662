package game

import (
	"fmt"
	"strings"
)

// Card is a movement pattern centred on square 12, written from Red's side of
// the board (forward is toward row 0). Mirrored is the same pattern rotated
// for Blue. Color is the stamp color of the card.
type Card struct {
	ID        uint8
	Color     Color
	Positions Bitboard
	Mirrored  Bitboard
}

type offset struct{ dx, dy int }

type cardSpec struct {
	name  string
	color Color
	moves []offset
}

// dy is positive toward the opponent.
var catalogSpecs = []cardSpec{
	{"Tiger", Blue, []offset{{0, 2}, {0, -1}}},
	{"Dragon", Red, []offset{{-2, 1}, {2, 1}, {-1, -1}, {1, -1}}},
	{"Frog", Red, []offset{{-2, 0}, {-1, 1}, {1, -1}}},
	{"Rabbit", Blue, []offset{{2, 0}, {1, 1}, {-1, -1}}},
	{"Crab", Blue, []offset{{0, 1}, {-2, 0}, {2, 0}}},
	{"Elephant", Red, []offset{{-1, 1}, {1, 1}, {-1, 0}, {1, 0}}},
	{"Goose", Blue, []offset{{-1, 1}, {-1, 0}, {1, 0}, {1, -1}}},
	{"Rooster", Red, []offset{{1, 1}, {-1, 0}, {1, 0}, {-1, -1}}},
	{"Monkey", Blue, []offset{{-1, 1}, {1, 1}, {-1, -1}, {1, -1}}},
	{"Mantis", Red, []offset{{-1, 1}, {1, 1}, {0, -1}}},
	{"Horse", Red, []offset{{0, 1}, {-1, 0}, {0, -1}}},
	{"Ox", Blue, []offset{{0, 1}, {1, 0}, {0, -1}}},
	{"Crane", Blue, []offset{{0, 1}, {-1, -1}, {1, -1}}},
	{"Boar", Red, []offset{{0, 1}, {-1, 0}, {1, 0}}},
	{"Eel", Blue, []offset{{-1, 1}, {-1, -1}, {1, 0}}},
	{"Cobra", Red, []offset{{1, 1}, {1, -1}, {-1, 0}}},
}

const NumCards = 16

var catalog, catalogName = buildCatalog()

func buildCatalog() (cards [NumCards]Card, names [NumCards]string) {
	for id, spec := range catalogSpecs {
		var positions Bitboard
		for _, o := range spec.moves {
			positions |= SquareMask(Center - o.dy*BoardWidth + o.dx)
		}
		cards[id] = Card{
			ID:        uint8(id),
			Color:     spec.color,
			Positions: positions,
			Mirrored:  positions.Mirror(),
		}
		names[id] = spec.name
	}
	return cards, names
}

// Catalog returns every card of the base game in identity order.
func Catalog() []Card {
	out := make([]Card, NumCards)
	copy(out, catalog[:])
	return out
}

func CardByID(id int) (Card, error) {
	if id < 0 || id >= NumCards {
		return Card{}, fmt.Errorf("card id %d: %w", id, ErrUnknownCard)
	}
	return catalog[id], nil
}

// CardByName looks a card up case-insensitively.
func CardByName(name string) (Card, error) {
	for id, n := range catalogName {
		if strings.EqualFold(n, name) {
			return catalog[id], nil
		}
	}
	return Card{}, fmt.Errorf("card %q: %w", name, ErrUnknownCard)
}

// MustCard is CardByName for fixed names known to exist.
func MustCard(name string) Card {
	c, err := CardByName(name)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Card) Name() string {
	return catalogName[c.ID]
}

// Pattern returns the movement pattern as seen by color.
func (c Card) Pattern(color Color) Bitboard {
	if color == Red {
		return c.Positions
	}
	return c.Mirrored
}

func (c Card) String() string {
	return c.Name()
}
