package agent

import (
	"fmt"
	"strings"

	engine "github.com/Mear-MRK/hokm/engine"
)

// ProbTable maps each card to the probability that one role holds it.
type ProbTable [engine.NumCards]float64

// Get returns the probability for c, 0 for NoCard.
func (t *ProbTable) Get(c engine.Card) float64 {
	if c.IsNone() {
		return 0
	}
	return t[c.ID()]
}

// Set stores the probability for c.
func (t *ProbTable) Set(c engine.Card, p float64) {
	if !c.IsNone() {
		t[c.ID()] = p
	}
}

// Clear zeroes the table.
func (t *ProbTable) Clear() { *t = ProbTable{} }

// Total returns the expected number of cards held.
func (t *ProbTable) Total() float64 {
	sum := 0.0
	for _, p := range t {
		sum += p
	}
	return sum
}

// Above returns the cards with probability strictly above th.
func (t *ProbTable) Above(th float64) engine.Hand {
	var h engine.Hand
	for id, p := range t {
		if p > th {
			h.Add(engine.CardFromID(id))
		}
	}
	return h
}

// AtLeast returns the cards with probability at least th.
func (t *ProbTable) AtLeast(th float64) engine.Hand {
	var h engine.Hand
	for id, p := range t {
		if p >= th {
			h.Add(engine.CardFromID(id))
		}
	}
	return h
}

// String lists the non-zero entries, e.g. "AS:0.50 KH:1.00".
func (t *ProbTable) String() string {
	var parts []string
	for id, p := range t {
		if p > 0 {
			parts = append(parts, fmt.Sprintf("%s:%.2f", engine.CardFromID(id), p))
		}
	}
	return strings.Join(parts, " ")
}

// Method records how an Estimate was computed.
type Method uint8

const (
	MethodNone     Method = iota // nothing ambiguous
	MethodUniform                // only Habc is populated
	MethodPair                   // Habc plus a single pair class
	MethodPairOnly               // a single pair class
	MethodDP                     // general dynamic program
	MethodFallback               // inconsistent counts, uniform over owners
)

var methodNames = [...]string{"none", "uniform", "pair", "pair-only", "dp", "fallback"}

func (m Method) String() string {
	if int(m) >= len(methodNames) {
		return "unknown"
	}
	return methodNames[m]
}

// Estimate holds one probability table per role.
type Estimate struct {
	Tables     [NumRoles]ProbTable
	Consistent bool
	Method     Method
}

// shape summarises the ambiguous part of a partition.
type shape struct {
	n   [NumClasses]int // cards per class
	m   int             // ambiguous cards
	cap [NumRoles]int   // unknown slots per role
}

func shapeOf(p *Partition) shape {
	var s shape
	for k := range s.n {
		s.n[k] = p.sets[k].Len()
	}
	for _, k := range ambiguous {
		s.m += s.n[k]
	}
	for r := Role(0); r < NumRoles; r++ {
		s.cap[r] = p.Unknown(r)
	}
	return s
}

func (s *shape) consistent() bool {
	sum := 0
	for _, c := range s.cap {
		if c < 0 {
			return false
		}
		sum += c
	}
	return sum == s.m
}

// Estimate computes the exact ownership probabilities of every unseen card.
// Each ambiguous card is assigned uniformly over the assignments of all
// ambiguous cards that respect every class's owners and every role's unknown
// count. Common shapes use closed forms equal to the dynamic program.
func (p *Partition) Estimate() Estimate { return p.estimate(true) }

// EstimateDP is Estimate without the closed-form shortcuts.
func (p *Partition) EstimateDP() Estimate { return p.estimate(false) }

func (p *Partition) estimate(closed bool) Estimate {
	e := Estimate{Consistent: true}
	for r := Role(0); r < NumRoles; r++ {
		for _, c := range p.sets[ConfirmedClass(r)].Cards() {
			e.Tables[r].Set(c, 1)
		}
	}
	s := shapeOf(p)
	if s.m == 0 {
		e.Method = MethodNone
		e.Consistent = s.consistent()
		return e
	}
	var probs [NumClasses][NumRoles]float64
	method, ok := MethodDP, s.consistent()
	if ok && closed {
		method, ok = s.closedForm(&probs)
	}
	switch {
	case !ok:
		s.uniform(&probs)
	case method == MethodDP:
		ok = s.dynamic(&probs)
	}
	e.Method = method
	if !ok {
		e.Consistent = false
		e.Method = MethodFallback
	}
	for _, k := range ambiguous {
		if s.n[k] == 0 {
			continue
		}
		for _, c := range p.sets[k].Cards() {
			for r := Role(0); r < NumRoles; r++ {
				e.Tables[r].Set(c, probs[k][r])
			}
		}
	}
	return e
}

// uniform spreads every ambiguous class evenly over its owners.
func (s *shape) uniform(probs *[NumClasses][NumRoles]float64) {
	for _, k := range ambiguous {
		uniformClass(probs, k)
	}
}

func uniformClass(probs *[NumClasses][NumRoles]float64, k Class) {
	o := classOwners[k]
	for r := Role(0); r < NumRoles; r++ {
		probs[k][r] = 0
		if o.Has(r) {
			probs[k][r] = 1 / float64(o.Len())
		}
	}
}

// closedForm handles the shapes with a direct formula. It returns MethodDP
// when the shape has none.
func (s *shape) closedForm(probs *[NumClasses][NumRoles]float64) (Method, bool) {
	var pairs []Class
	for _, k := range ambiguous[1:] {
		if s.n[k] > 0 {
			pairs = append(pairs, k)
		}
	}
	n0 := s.n[ClassABC]
	switch {
	case n0 > 0 && len(pairs) == 0:
		for r := Role(0); r < NumRoles; r++ {
			probs[ClassABC][r] = float64(s.cap[r]) / float64(n0)
		}
		return MethodUniform, true

	case len(pairs) == 1:
		k := pairs[0]
		third := thirdOf(classOwners[k])
		nk := s.n[k]
		if n0 == 0 {
			if s.cap[third] != 0 {
				return MethodPairOnly, false
			}
			for r := Role(0); r < NumRoles; r++ {
				if r != third {
					probs[k][r] = float64(s.cap[r]) / float64(nk)
				}
			}
			return MethodPairOnly, true
		}
		// The third role's cards all come from Habc; the rest is split
		// uniformly between the pair.
		tt := s.cap[third]
		rest := n0 + nk - tt
		if tt > n0 || rest <= 0 {
			return MethodPair, false
		}
		toThird := float64(tt) / float64(n0)
		probs[ClassABC][third] = toThird
		for r := Role(0); r < NumRoles; r++ {
			if r == third {
				continue
			}
			share := float64(s.cap[r]) / float64(rest)
			probs[ClassABC][r] = (1 - toThird) * share
			probs[k][r] = share
		}
		return MethodPair, true
	}
	return MethodDP, true
}

// thirdOf returns the role missing from a two-role set.
func thirdOf(o OwnerSet) Role {
	for r := Role(0); r < NumRoles; r++ {
		if !o.Has(r) {
			return r
		}
	}
	return NoRole
}

// dynamic runs the assignment-counting program once per non-empty class with
// one of its cards held out, then reads the counts for each candidate owner.
// A class no assignment can place falls back to uniform and ok is false.
func (s *shape) dynamic(probs *[NumClasses][NumRoles]float64) bool {
	ok := true
	for _, k := range ambiguous {
		if s.n[k] == 0 {
			continue
		}
		counts := s.n
		counts[k]--
		ways := countAssignments(counts, s.cap[RoleA], s.cap[RoleB])
		o := classOwners[k]
		var f [NumRoles]float64
		denom := 0.0
		for r := Role(0); r < NumRoles; r++ {
			if !o.Has(r) {
				continue
			}
			ta, tb, tc := s.cap[RoleA], s.cap[RoleB], s.cap[RoleC]
			switch r {
			case RoleA:
				ta--
			case RoleB:
				tb--
			case RoleC:
				tc--
			}
			if ta < 0 || tb < 0 || tc < 0 {
				continue
			}
			f[r] = ways[ta][tb]
			denom += f[r]
		}
		if denom <= 0 {
			uniformClass(probs, k)
			ok = false
			continue
		}
		for r := Role(0); r < NumRoles; r++ {
			probs[k][r] = f[r] / denom
		}
	}
	return ok
}

// countAssignments returns ways[a][b]: the number of assignments of the
// ambiguous cards (counts per class) in which a of them go to role a and b to
// role b, the rest to role c. Counts beyond ta, tb are dropped.
func countAssignments(counts [NumClasses]int, ta, tb int) [][]float64 {
	prev := newGrid(ta+1, tb+1)
	next := newGrid(ta+1, tb+1)
	prev[0][0] = 1
	seen := 0
	for _, k := range ambiguous {
		o := classOwners[k]
		for i := 0; i < counts[k]; i++ {
			for a := range next {
				clear(next[a])
			}
			for a := 0; a <= ta && a <= seen; a++ {
				for b := 0; b <= tb && a+b <= seen; b++ {
					w := prev[a][b]
					if w == 0 {
						continue
					}
					if o.Has(RoleA) && a < ta {
						next[a+1][b] += w
					}
					if o.Has(RoleB) && b < tb {
						next[a][b+1] += w
					}
					if o.Has(RoleC) {
						next[a][b] += w
					}
				}
			}
			prev, next = next, prev
			seen++
		}
	}
	return prev
}

func newGrid(rows, cols int) [][]float64 {
	g := make([][]float64, rows)
	cells := make([]float64, rows*cols)
	for i := range g {
		g[i] = cells[i*cols : (i+1)*cols]
	}
	return g
}
