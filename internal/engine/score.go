// Package engine implements the pawn-structure evaluation core: per-pawn
// feature classification, the pawn hash table that caches it, the king
// shelter/storm safety term, and a tapered static evaluator on top.
package engine

// Score is a dual-phase evaluation value in centipawns: one component for
// the middlegame and one for the endgame. The core never collapses the pair
// to a single number; interpolation by game phase is the caller's job.
type Score struct {
	Mg, Eg int
}

// S builds a Score from middlegame and endgame values.
func S(mg, eg int) Score {
	return Score{Mg: mg, Eg: eg}
}

// Add returns the component-wise sum of two scores.
func (s Score) Add(o Score) Score {
	return Score{Mg: s.Mg + o.Mg, Eg: s.Eg + o.Eg}
}

// Sub returns the component-wise difference of two scores.
func (s Score) Sub(o Score) Score {
	return Score{Mg: s.Mg - o.Mg, Eg: s.Eg - o.Eg}
}

// Neg returns the score with both components negated.
func (s Score) Neg() Score {
	return Score{Mg: -s.Mg, Eg: -s.Eg}
}
