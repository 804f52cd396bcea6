package board

// Pre-computed pawn and distance masks used by the evaluation core.
var (
	pawnAttacks    [2][64]Bitboard // [Color][Square] - diagonal capture squares
	pawnAttackSpan [2][64]Bitboard // [Color][Square] - adjacent files strictly ahead
	passedPawnMask [2][64]Bitboard // [Color][Square] - attack span plus own file ahead
	forwardFile    [2][64]Bitboard // [Color][Square] - own file strictly ahead
	forwardRanks   [2][8]Bitboard  // [Color][Rank] - all ranks strictly ahead
	adjacentFiles  [8]Bitboard     // [File] - the one or two neighbouring files
	distanceRing   [64][8]Bitboard // [Square][d] - squares at Chebyshev distance d+1
)

func init() {
	initFileMasks()
	initPawnMasks()
	initDistanceRings()
}

func initFileMasks() {
	for f := 0; f < 8; f++ {
		if f > 0 {
			adjacentFiles[f] |= FileMask[f-1]
		}
		if f < 7 {
			adjacentFiles[f] |= FileMask[f+1]
		}
	}

	for r := 0; r < 8; r++ {
		for ahead := r + 1; ahead < 8; ahead++ {
			forwardRanks[White][r] |= RankMask[ahead]
		}
		for ahead := 0; ahead < r; ahead++ {
			forwardRanks[Black][r] |= RankMask[ahead]
		}
	}
}

func initPawnMasks() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)
		f, r := sq.File(), sq.Rank()

		pawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()
		pawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()

		for c := White; c <= Black; c++ {
			ahead := forwardRanks[c][r]
			forwardFile[c][sq] = ahead & FileMask[f]
			pawnAttackSpan[c][sq] = ahead & adjacentFiles[f]
			passedPawnMask[c][sq] = forwardFile[c][sq] | pawnAttackSpan[c][sq]
		}
	}
}

func initDistanceRings() {
	for a := A1; a <= H8; a++ {
		for b := A1; b <= H8; b++ {
			if d := Distance(a, b); d > 0 {
				distanceRing[a][d-1] |= SquareBB(b)
			}
		}
	}
}

// PawnAttacks returns the squares a pawn of the given color attacks from sq.
func PawnAttacks(c Color, sq Square) Bitboard {
	return pawnAttacks[c][sq]
}

// PawnAttackSpan returns the squares, on the files adjacent to sq, that a
// pawn of the given color could ever attack as it advances.
func PawnAttackSpan(c Color, sq Square) Bitboard {
	return pawnAttackSpan[c][sq]
}

// PassedPawnMask returns the corridor an enemy pawn must be absent from for
// a pawn of the given color on sq to be passed: the pawn's file and both
// adjacent files, strictly ahead of sq.
func PassedPawnMask(c Color, sq Square) Bitboard {
	return passedPawnMask[c][sq]
}

// ForwardFile returns the squares on sq's file strictly ahead of sq from
// the given color's point of view.
func ForwardFile(c Color, sq Square) Bitboard {
	return forwardFile[c][sq]
}

// ForwardRanks returns every square on a rank strictly ahead of the given
// rank from the given color's point of view.
func ForwardRanks(c Color, rank int) Bitboard {
	return forwardRanks[c][rank]
}

// AdjacentFiles returns the mask of the files neighbouring the given file.
func AdjacentFiles(file int) Bitboard {
	return adjacentFiles[file]
}

// DistanceRing returns the squares at Chebyshev distance exactly d+1 from sq.
func DistanceRing(sq Square, d int) Bitboard {
	return distanceRing[sq][d]
}
