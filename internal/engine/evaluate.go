package engine

import "github.com/lp--/Cfish/internal/board"

// Evaluation terms outside the pawn core.
const (
	rookOpenFileMg     = 20
	rookOpenFileEg     = 25
	rookSemiOpenFileMg = 10
	rookSemiOpenFileEg = 15
)

// Phase weights for tapered evaluation.
var phaseWeight = [6]int{0, 1, 1, 2, 4, 0} // Pawn..King
const maxPhase = 24

// Evaluate returns a tapered static evaluation of the position in
// centipawns from White's perspective: material, the cached pawn-structure
// score, king safety for both sides, and rook placement on the open and
// semi-open files the pawn entry already knows about.
//
// Passed pawns are flagged on the entry but not scored here; doing that
// well needs full attack information this evaluator does not build.
func Evaluate(pos *board.Position, pt *Table) int {
	var mg, eg, phase int

	// Material and game phase
	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}
		for piece := board.Pawn; piece < board.King; piece++ {
			count := pos.Pieces[c][piece].PopCount()
			mg += sign * count * board.PieceValue[piece]
			eg += sign * count * board.PieceValue[piece]
			phase += count * phaseWeight[piece]
		}
	}

	// Pawn structure, through the cache when one is supplied
	var entry *Entry
	if pt != nil {
		entry = pt.Probe(pos)
	} else {
		entry = NewEntry(pos.Pawns(board.White), pos.Pawns(board.Black), pos.PawnKey)
	}

	mg += entry.Score().Mg
	eg += entry.Score().Eg

	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}

		// King safety, cached on the entry per king square
		ks := entry.KingSafety(c, pos.KingSquare[c], pos.CastlingRights)
		mg += sign * ks.Mg
		eg += sign * ks.Eg

		// Rooks on open and semi-open files
		for rooks := pos.Pieces[c][board.Rook]; rooks != 0; {
			f := rooks.PopLSB().File()
			if !entry.SemiopenFile(c, f) {
				continue
			}
			if entry.SemiopenFile(c.Other(), f) {
				mg += sign * rookOpenFileMg
				eg += sign * rookOpenFileEg
			} else {
				mg += sign * rookSemiOpenFileMg
				eg += sign * rookSemiOpenFileEg
			}
		}
	}

	// Tapered evaluation (interpolate between middlegame and endgame)
	if phase > maxPhase {
		phase = maxPhase
	}
	return (mg*phase + eg*(maxPhase-phase)) / maxPhase
}
