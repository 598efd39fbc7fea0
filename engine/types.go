package engine

import "fmt"

// Suit constants, in the order used for card ids.
const (
	SuitSpades   Suit = 0
	SuitHearts   Suit = 1
	SuitClubs    Suit = 2
	SuitDiamonds Suit = 3
	NoSuit       Suit = 4
)

// Rank constants, lowest first. Ace is high.
const (
	RankTwo   Rank = 0
	RankThree Rank = 1
	RankFour  Rank = 2
	RankFive  Rank = 3
	RankSix   Rank = 4
	RankSeven Rank = 5
	RankEight Rank = 6
	RankNine  Rank = 7
	RankTen   Rank = 8
	RankJack  Rank = 9
	RankQueen Rank = 10
	RankKing  Rank = 11
	RankAce   Rank = 12
	NoRank    Rank = 13
)

const (
	NumCards   = 52
	NumSuits   = 4
	NumRanks   = NumCards / NumSuits
	NumPlayers = 4
	NumTeams   = 2
	HandSize   = NumCards / NumPlayers
	NumTricks  = HandSize
)

// Suit is one of the four suits or NoSuit.
type Suit uint8

// Rank is a card rank in 0..12 or NoRank.
type Rank uint8

// Card is a packed card id: suit*13 + rank. NoCard represents the absence of a card.
type Card uint8

// NoCard represents "no card" (empty table slot, nothing to play).
const NoCard Card = 0xFF

const (
	rankChars = "23456789TJQKA"
	suitChars = "SHCD"
)

var suitSymbols = [...]string{"♠", "♥", "♣", "♦", "-"}

// NewCard constructs a Card from suit and rank. Out-of-range input yields NoCard.
func NewCard(suit Suit, rank Rank) Card {
	if suit >= NoSuit || rank >= NoRank {
		return NoCard
	}
	return Card(uint8(suit)*NumRanks + uint8(rank))
}

// CardFromID returns the card with the given id, or NoCard when id is out of range.
func CardFromID(id int) Card {
	if id < 0 || id >= NumCards {
		return NoCard
	}
	return Card(id)
}

// ParseCard parses a two-character card such as "AS" or "TH". "X" is accepted for ten.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return NoCard, fmt.Errorf("parse card %q: want 2 characters", s)
	}
	r := NoRank
	for i := 0; i < len(rankChars); i++ {
		if rankChars[i] == s[0] {
			r = Rank(i)
			break
		}
	}
	if s[0] == 'X' {
		r = RankTen
	}
	su, err := ParseSuit(s[1:])
	if err != nil || r == NoRank {
		return NoCard, fmt.Errorf("parse card %q: unknown rank or suit", s)
	}
	return NewCard(su, r), nil
}

// ParseSuit parses a one-character suit ("S", "H", "C", "D").
func ParseSuit(s string) (Suit, error) {
	if len(s) == 1 {
		for i := 0; i < len(suitChars); i++ {
			if suitChars[i] == s[0] {
				return Suit(i), nil
			}
		}
	}
	return NoSuit, fmt.Errorf("parse suit %q: unknown suit", s)
}

// ID returns the card id in 0..51, or -1 for NoCard.
func (c Card) ID() int {
	if c >= NumCards {
		return -1
	}
	return int(c)
}

// Suit returns the card suit, NoSuit for NoCard.
func (c Card) Suit() Suit {
	if c >= NumCards {
		return NoSuit
	}
	return Suit(uint8(c) / NumRanks)
}

// Rank returns the card rank, NoRank for NoCard.
func (c Card) Rank() Rank {
	if c >= NumCards {
		return NoRank
	}
	return Rank(uint8(c) % NumRanks)
}

// IsNone reports whether c is the NoCard sentinel (or any invalid id).
func (c Card) IsNone() bool { return c >= NumCards }

func (c Card) bit() uint64 { return 1 << uint(c) }

// String returns e.g. "AS"; NoCard renders as "--".
func (c Card) String() string {
	if c.IsNone() {
		return "--"
	}
	return c.Rank().String() + c.Suit().String()
}

// Symbol returns the card with a unicode suit symbol, e.g. "A♠".
func (c Card) Symbol() string {
	if c.IsNone() {
		return "--"
	}
	return c.Rank().String() + suitSymbols[c.Suit()]
}

// String returns the one-character suit, "-" for NoSuit.
func (s Suit) String() string {
	if s >= NoSuit {
		return "-"
	}
	return suitChars[s : s+1]
}

// Symbol returns the unicode suit symbol.
func (s Suit) Symbol() string {
	if s >= NoSuit {
		return suitSymbols[NoSuit]
	}
	return suitSymbols[s]
}

// String returns the one-character rank, "-" for NoRank.
func (r Rank) String() string {
	if r >= NoRank {
		return "-"
	}
	return rankChars[r : r+1]
}

// TeamOf returns the team of a seat. Partners sit opposite each other.
func TeamOf(seat uint8) uint8 { return seat % NumTeams }

// PartnerOf returns the seat opposite the given seat.
func PartnerOf(seat uint8) uint8 { return (seat + 2) % NumPlayers }

// NextSeat returns the seat after the given seat in play order.
func NextSeat(seat uint8) uint8 { return (seat + 1) % NumPlayers }
