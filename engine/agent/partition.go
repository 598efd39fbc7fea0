// Package agent implements the opponent-hand inference and card-selection
// agents for Hokm.
package agent

import (
	"errors"
	"fmt"
	"strings"

	engine "github.com/Mear-MRK/hokm/engine"
)

var (
	// ErrCardNotTracked is returned when an observed card is in none of the
	// classes its player could hold it in. The state is repaired and stays usable.
	ErrCardNotTracked = errors.New("card not tracked for player")
	// ErrContradiction is returned when a player renounces a suit the agent
	// had already confirmed in that player's hand.
	ErrContradiction = errors.New("renounce contradicts confirmed cards")
	// ErrTargetMismatch is returned by SetTargets when the incrementally kept
	// remaining counts disagree with the counts derived from the trick.
	ErrTargetMismatch = errors.New("remaining-count mismatch")
	// ErrPartition is returned by Verify.
	ErrPartition = errors.New("partition invariant violated")
)

// Class identifies one of the seven disjoint ownership classes.
type Class uint8

const (
	ClassABC Class = iota // any of a, b, c
	ClassAB
	ClassBC
	ClassCA
	ClassA // confirmed
	ClassB
	ClassC
	NumClasses
)

// classOwners lists who may hold each class.
var classOwners = [NumClasses]OwnerSet{
	ClassABC: OwnerAll,
	ClassAB:  OwnerA | OwnerB,
	ClassBC:  OwnerB | OwnerC,
	ClassCA:  OwnerC | OwnerA,
	ClassA:   OwnerA,
	ClassB:   OwnerB,
	ClassC:   OwnerC,
}

var classNames = [NumClasses]string{"Habc", "Hab", "Hbc", "Hca", "Ha", "Hb", "Hc"}

// classFor maps an owner set back to its class.
var classFor = func() [OwnerAll + 1]Class {
	var t [OwnerAll + 1]Class
	for k := Class(0); k < NumClasses; k++ {
		t[classOwners[k]] = k
	}
	return t
}()

// ambiguous classes, widest first.
var ambiguous = [...]Class{ClassABC, ClassAB, ClassBC, ClassCA}

func (k Class) String() string {
	if k >= NumClasses {
		return "H?"
	}
	return classNames[k]
}

// Owners returns who may hold cards of class k.
func (k Class) Owners() OwnerSet { return classOwners[k] }

// IsAmbiguous reports whether class k lists more than one owner.
func (k Class) IsAmbiguous() bool { return classOwners[k].Len() > 1 }

// ConfirmedClass returns the singleton class of r.
func ConfirmedClass(r Role) Class { return classFor[OwnerOf(r)] }

// Partition tracks which of the three hidden hands may hold each unseen card.
// The seven classes are pairwise disjoint and their union is every card that is
// neither in the agent's hand nor already played.
type Partition struct {
	sets   [NumClasses]engine.Hand
	target [NumRoles]int // cards still held by each role
}

// Reset starts a round: every card outside own is fully unknown.
func (p *Partition) Reset(own engine.Hand) {
	*p = Partition{}
	p.sets[ClassABC] = own.Complement()
	for r := range p.target {
		p.target[r] = engine.HandSize
	}
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// Class returns the cards of class k.
func (p *Partition) Class(k Class) engine.Hand { return p.sets[k] }

// Confirmed returns the cards known to be held by r.
func (p *Partition) Confirmed(r Role) engine.Hand { return p.sets[ConfirmedClass(r)] }

// Possible returns the ambiguous cards r might hold, excluding confirmed ones.
func (p *Partition) Possible(r Role) engine.Hand {
	var out engine.Hand
	for _, k := range ambiguous {
		if classOwners[k].Has(r) {
			out.AddHand(p.sets[k])
		}
	}
	return out
}

// Target returns the number of cards r still holds.
func (p *Partition) Target(r Role) int { return p.target[r] }

// Unknown returns how many of r's cards are not yet confirmed.
func (p *Partition) Unknown(r Role) int { return p.target[r] - p.sets[ConfirmedClass(r)].Len() }

// Unseen returns the union of all classes.
func (p *Partition) Unseen() engine.Hand {
	var out engine.Hand
	for k := range p.sets {
		out.AddHand(p.sets[k])
	}
	return out
}

// ClassOf returns the class holding c, or NumClasses if c is not tracked.
func (p *Partition) ClassOf(c engine.Card) Class {
	for k := range p.sets {
		if p.sets[k].Has(c) {
			return Class(k)
		}
	}
	return NumClasses
}

// ---------------------------------------------------------------------------
// Updates
// ---------------------------------------------------------------------------

// move transfers every card of src into the class whose owners are to.
func (p *Partition) move(src Class, to OwnerSet) bool {
	if p.sets[src].IsEmpty() || to == 0 {
		return false
	}
	dst := classFor[to]
	p.sets[dst].AddHand(p.sets[src])
	p.sets[src].Clear()
	return true
}

// Observe folds one card played by r into the partition. led is the suit led
// in the trick, NoSuit when r led it. A returned error describes an
// inconsistency; the partition has still been updated.
func (p *Partition) Observe(r Role, c engine.Card, led engine.Suit) error {
	var errs []error
	found := false
	for _, k := range ambiguous {
		if classOwners[k].Has(r) && p.sets[k].Remove(c) {
			found = true
			break
		}
	}
	if !found && !p.sets[ConfirmedClass(r)].Remove(c) {
		errs = append(errs, fmt.Errorf("%w: %s played %s", ErrCardNotTracked, r, c))
		for k := range p.sets {
			p.sets[k].Remove(c)
		}
	}
	if p.target[r] > 0 {
		p.target[r]--
	}
	if led != engine.NoSuit && c.Suit() != led {
		if err := p.renounce(r, led); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// renounce records that r holds no card of suit s.
func (p *Partition) renounce(r Role, s engine.Suit) error {
	for _, k := range ambiguous {
		o := classOwners[k]
		if !o.Has(r) {
			continue
		}
		moved := p.sets[k].PopSuit(s)
		p.sets[classFor[o.Without(r)]].AddHand(moved)
	}
	if n := p.sets[ConfirmedClass(r)].SubHand(s); !n.IsEmpty() {
		return fmt.Errorf("%w: %s renounced %s holding %s", ErrContradiction, r, s, n)
	}
	return nil
}

// Targets derives the remaining counts from the trick number and the agent's
// position in the trick.
func Targets(trickID, order uint8) [NumRoles]int {
	base := engine.HandSize - int(trickID)
	var t [NumRoles]int
	t[RoleB], t[RoleC], t[RoleA] = base, base, base
	if order >= 1 {
		t[RoleB]--
	}
	if order >= 2 {
		t[RoleC]--
	}
	if order >= 3 {
		t[RoleA]--
	}
	return t
}

// SetTargets replaces the remaining counts with the counts derived from the
// trick. It reports ErrTargetMismatch if they differ from the incremental ones.
func (p *Partition) SetTargets(trickID, order uint8) error {
	want := Targets(trickID, order)
	have := p.target
	p.target = want
	if have != want {
		return fmt.Errorf("%w: tracked %v, derived %v at trick %d order %d",
			ErrTargetMismatch, have, want, trickID, order)
	}
	return nil
}

// Saturate closes the partition under the counting rules until nothing
// changes: a role whose confirmed cards fill its hand is withdrawn from every
// ambiguous class, and when two roles' hands are exactly covered by their
// own and shared cards everything else listing the third role goes to it.
func (p *Partition) Saturate() bool {
	progress := false
	for changed := true; changed; {
		changed = false
		for r := Role(0); r < NumRoles; r++ {
			if p.sets[ConfirmedClass(r)].Len() < p.target[r] {
				continue
			}
			for _, k := range ambiguous {
				if o := classOwners[k]; o.Has(r) && p.move(k, o.Without(r)) {
					changed = true
				}
			}
		}
		for third := Role(0); third < NumRoles; third++ {
			pair := OwnerAll.Without(third)
			covered := p.sets[classFor[pair]].Len()
			need := 0
			for r := Role(0); r < NumRoles; r++ {
				if r != third {
					covered += p.sets[ConfirmedClass(r)].Len()
					need += p.target[r]
				}
			}
			if need != covered {
				continue
			}
			for _, k := range ambiguous {
				if classOwners[k].Has(third) && p.move(k, OwnerOf(third)) {
					changed = true
				}
			}
		}
		progress = progress || changed
	}
	return progress
}

// Verify checks the structural invariants against the agent's own hand and the
// cards played so far: the classes are disjoint, their union is exactly the
// unseen cards, and no role has more confirmed cards than it holds.
func (p *Partition) Verify(own, played engine.Hand) error {
	var seen engine.Hand
	for k := range p.sets {
		if !seen.Intersect(p.sets[k]).IsEmpty() {
			return fmt.Errorf("%w: %s overlaps another class", ErrPartition, Class(k))
		}
		seen.AddHand(p.sets[k])
	}
	want := own.Union(played).Complement()
	if !seen.Equal(want) {
		return fmt.Errorf("%w: unseen %s, want %s", ErrPartition, seen, want)
	}
	for r := Role(0); r < NumRoles; r++ {
		if n := p.sets[ConfirmedClass(r)].Len(); n > p.target[r] {
			return fmt.Errorf("%w: %s has %d confirmed cards, holds %d", ErrPartition, r, n, p.target[r])
		}
	}
	return nil
}

// View returns the counting view of r used by BeatChance.
func (p *Partition) View(r Role) OpponentView {
	return OpponentView{
		Certain: p.sets[ConfirmedClass(r)],
		Pool:    p.Possible(r),
		Draw:    p.Unknown(r),
	}
}

// String dumps the classes and targets, one per line.
func (p *Partition) String() string {
	var b strings.Builder
	for k := range p.sets {
		fmt.Fprintf(&b, "%s: %s\n", Class(k), p.sets[k])
	}
	fmt.Fprintf(&b, "targets a=%d b=%d c=%d", p.target[RoleA], p.target[RoleB], p.target[RoleC])
	return b.String()
}
