package agent

import engine "github.com/Mear-MRK/hokm/engine"

// Role names one of the three other seats relative to the agent.
type Role uint8

const (
	RoleA    Role = iota // next to act after the agent (opponent)
	RoleB                // acted just before the agent (opponent)
	RoleC                // partner, opposite the agent
	NumRoles = 3
	NoRole   Role = 0xFF
)

var roleNames = [NumRoles]string{"a", "b", "c"}

func (r Role) String() string {
	if r >= NumRoles {
		return "-"
	}
	return roleNames[r]
}

// RoleOf classifies seat relative to self. It returns NoRole for self.
func RoleOf(self, seat uint8) Role {
	switch (seat + engine.NumPlayers - self) % engine.NumPlayers {
	case 1:
		return RoleA
	case 2:
		return RoleC
	case 3:
		return RoleB
	}
	return NoRole
}

// SeatOf returns the absolute seat holding role r for an agent at self.
func SeatOf(self uint8, r Role) uint8 {
	switch r {
	case RoleA:
		return (self + 1) % engine.NumPlayers
	case RoleC:
		return (self + 2) % engine.NumPlayers
	case RoleB:
		return (self + 3) % engine.NumPlayers
	}
	return self
}

// IsOpponent reports whether the role belongs to the other team.
func (r Role) IsOpponent() bool { return r == RoleA || r == RoleB }

// OwnerSet is a bitmask over roles: the seats that may hold a card.
type OwnerSet uint8

const (
	OwnerA   OwnerSet = 1 << RoleA
	OwnerB   OwnerSet = 1 << RoleB
	OwnerC   OwnerSet = 1 << RoleC
	OwnerAll          = OwnerA | OwnerB | OwnerC
)

// OwnerOf returns the singleton set for r.
func OwnerOf(r Role) OwnerSet { return 1 << r }

// Has reports whether r is in the set.
func (o OwnerSet) Has(r Role) bool { return o&OwnerOf(r) != 0 }

// Len returns the number of roles in the set.
func (o OwnerSet) Len() int {
	n := 0
	for r := Role(0); r < NumRoles; r++ {
		if o.Has(r) {
			n++
		}
	}
	return n
}

// Without returns the set with r removed.
func (o OwnerSet) Without(r Role) OwnerSet { return o &^ OwnerOf(r) }
