package deck

import (
	"fmt"
	"strings"
)

// Suit represents a card suit.
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// String returns the wire form of a suit ("s", "h", "d", "c").
func (s Suit) String() string {
	switch s {
	case Spades:
		return "s"
	case Hearts:
		return "h"
	case Diamonds:
		return "d"
	case Clubs:
		return "c"
	default:
		return "?"
	}
}

// Symbol returns the display glyph for a suit.
func (s Suit) Symbol() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds).
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank. Aces are high (14).
type Rank int

const (
	Two Rank = iota + 2
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
	Ace
)

// String returns the single-character rank ("2".."9", "T", "J", "Q", "K", "A").
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Nine:
		return string(rune('0' + int(r)))
	case r == Ten:
		return "T"
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Card represents a playing card.
type Card struct {
	Rank Rank
	Suit Suit
}

// New creates a new card.
func New(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the stable two-character wire form of a card, e.g. "As"
// or "Th". This is the form that crosses the WebSocket and appears in logs.
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Pretty returns the display form with a suit glyph, e.g. "A♠".
func (c Card) Pretty() string {
	return c.Rank.String() + c.Suit.Symbol()
}

// IsRed returns true if the card is red.
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// Parse reads a card from its text form. Ranks are case-insensitive and
// "10" is accepted and normalised to "T", so "10h", "Th" and "tH" all parse
// to the ten of hearts.
func Parse(s string) (Card, error) {
	t := strings.TrimSpace(s)
	if len(t) < 2 || len(t) > 3 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}

	rankPart := t[:len(t)-1]
	suitPart := t[len(t)-1]

	var rank Rank
	switch strings.ToUpper(rankPart) {
	case "2", "3", "4", "5", "6", "7", "8", "9":
		rank = Rank(rankPart[0] - '0')
	case "10", "T":
		rank = Ten
	case "J":
		rank = Jack
	case "Q":
		rank = Queen
	case "K":
		rank = King
	case "A":
		rank = Ace
	default:
		return Card{}, fmt.Errorf("invalid card rank %q", s)
	}

	var suit Suit
	switch suitPart {
	case 's', 'S':
		suit = Spades
	case 'h', 'H':
		suit = Hearts
	case 'd', 'D':
		suit = Diamonds
	case 'c', 'C':
		suit = Clubs
	default:
		return Card{}, fmt.Errorf("invalid card suit %q", s)
	}

	return Card{Rank: rank, Suit: suit}, nil
}

// ParseMany reads a list of cards, separated by spaces or commas or simply
// concatenated: "As Kh", "7c,2d" and "AsKsQsJsTs" all work, as does "10h".
func ParseMany(s string) ([]Card, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ','
	})
	var cards []Card
	for _, f := range fields {
		for len(f) > 0 {
			n := 2
			if strings.HasPrefix(f, "10") {
				n = 3
			}
			if len(f) < n {
				return nil, fmt.Errorf("incomplete card at end of %q", s)
			}
			c, err := Parse(f[:n])
			if err != nil {
				return nil, err
			}
			cards = append(cards, c)
			f = f[n:]
		}
	}
	return cards, nil
}

// MustParseMany is ParseMany for tests and fixtures; it panics on error.
func MustParseMany(s string) []Card {
	cards, err := ParseMany(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse cards %q: %v", s, err))
	}
	return cards
}

// MustParse is Parse for tests and fixtures; it panics on error.
func MustParse(s string) Card {
	c, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse card %q: %v", s, err))
	}
	return c
}

// Strings converts a card slice to its wire forms.
func Strings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
