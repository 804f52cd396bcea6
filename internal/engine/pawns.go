package engine

import (
	"math/bits"

	"github.com/lp--/Cfish/internal/board"
)

// Isolated pawn penalty by opposed flag
var isolatedPenalty = [2]Score{S(45, 40), S(30, 27)}

// Backward pawn penalty by opposed flag
var backwardPenalty = [2]Score{S(56, 33), S(41, 19)}

// Unsupported pawn penalty for pawns which are neither isolated nor backward
var unsupportedPenalty = S(17, 8)

// Doubled pawn penalty
var doubledPenalty = S(18, 38)

// Lever bonus by relative rank
var leverBonus = [8]Score{4: S(17, 16), 5: S(33, 32)}

// Connected pawn bonus by [opposed][phalanx][twice supported][relative rank],
// built from connectedSeed at package init.
var connectedBonus [2][2][2][8]Score

// connectedSeed drives the connected pawn bonus by relative rank.
var connectedSeed = [8]int{0, 8, 19, 13, 71, 94, 169, 324}

// Weakness of our pawn shelter in front of the king
// by [distance from edge][relative rank of our backmost shelter pawn]
var shelterWeakness = [4][8]int{
	{97, 21, 26, 51, 87, 89, 99},
	{120, 0, 28, 76, 88, 103, 104},
	{101, 7, 54, 78, 77, 92, 101},
	{80, 11, 44, 68, 87, 90, 119},
}

// Storm file types, by how far the enemy pawn advance is obstructed.
const (
	noFriendlyPawn = iota
	unblocked
	blockedByPawn
	blockedByKing
)

// Danger of enemy pawns moving toward our king
// by [storm type][distance from edge][relative rank of the enemy pawn]
var stormDanger = [4][4][8]int{
	{
		{0, 67, 134, 38, 32},
		{0, 57, 139, 37, 22},
		{0, 43, 115, 43, 27},
		{0, 68, 124, 57, 32},
	},
	{
		{20, 43, 100, 56, 20},
		{23, 20, 98, 40, 15},
		{23, 39, 103, 36, 18},
		{28, 19, 108, 42, 26},
	},
	{
		{0, 0, 75, 14, 2},
		{0, 0, 150, 30, 4},
		{0, 0, 160, 22, 5},
		{0, 0, 166, 24, 13},
	},
	{
		{0, -283, -281, 57, 31},
		{0, 58, 141, 39, 18},
		{0, 65, 142, 48, 32},
		{0, 60, 126, 51, 19},
	},
}

// MaxSafetyBonus is the shelter/storm value of a king with all three shelter
// files intact and no storm penalties applying.
const MaxSafetyBonus = 258

func init() {
	initConnectedBonus()
}

// initConnectedBonus fills connectedBonus from the seed sequence. Idempotent;
// the table is read-only after package initialization completes.
func initConnectedBonus() {
	for opposed := 0; opposed < 2; opposed++ {
		for phalanx := 0; phalanx < 2; phalanx++ {
			for apex := 0; apex < 2; apex++ {
				for r := 1; r < 7; r++ {
					v := connectedSeed[r]
					if phalanx == 1 {
						v += (connectedSeed[r+1] - connectedSeed[r]) / 2
					}
					v >>= uint(opposed)
					if apex == 1 {
						v += v / 2
					}
					connectedBonus[opposed][phalanx][apex][r] = S(v, v*5/8)
				}
			}
		}
	}
}

// Entry caches everything the evaluation wants to know about a single pawn
// structure. One entry is built per distinct pawn hash key; the per-side
// king safety fields are filled in lazily and refreshed whenever the king
// square or castling rights change, independent of the key.
type Entry struct {
	key             uint64
	score           Score
	pawns           [2]board.Bitboard
	passedPawns     [2]board.Bitboard
	pawnAttacks     [2]board.Bitboard
	pawnAttacksSpan [2]board.Bitboard
	kingSquares     [2]board.Square
	kingSafety      [2]Score
	castlingRights  [2]board.CastlingRights
	semiopenFiles   [2]uint8
	pawnsOnSquares  [2][2]int // [color][light/dark squares]
	asymmetry       int
	openFiles       int
}

// NewEntry builds a standalone cache record for the given pawn placement.
// Callers holding a Table normally use Probe instead.
func NewEntry(whitePawns, blackPawns board.Bitboard, key uint64) *Entry {
	e := &Entry{}
	e.fill(whitePawns, blackPawns, key)
	return e
}

// fill computes the full record from both sides' pawn bitboards. It is a
// pure function of its inputs: any previous contents are overwritten.
func (e *Entry) fill(whitePawns, blackPawns board.Bitboard, key uint64) {
	*e = Entry{key: key}
	e.pawns[board.White] = whitePawns
	e.pawns[board.Black] = blackPawns

	white := e.evaluatePawns(board.White)
	black := e.evaluatePawns(board.Black)
	e.score = white.Sub(black)

	e.asymmetry = bits.OnesCount8(e.semiopenFiles[board.White] ^ e.semiopenFiles[board.Black])
	e.openFiles = bits.OnesCount8(e.semiopenFiles[board.White] & e.semiopenFiles[board.Black])
}

// evaluatePawns scores one side's pawns and records that side's auxiliary
// bitboards on the entry. The routine is side-agnostic: ranks and shifts go
// through the relative-rank transform, so White and Black share the logic.
func (e *Entry) evaluatePawns(us board.Color) Score {
	them := us.Other()
	ourPawns := e.pawns[us]
	theirPawns := e.pawns[them]

	var score Score

	e.passedPawns[us] = 0
	e.pawnAttacksSpan[us] = 0
	e.kingSquares[us] = board.NoSquare
	e.semiopenFiles[us] = 0xFF
	e.pawnAttacks[us] = ourPawns.PawnAttacksBB(us)
	e.pawnsOnSquares[us][0] = (ourPawns & board.LightSquares).PopCount()
	e.pawnsOnSquares[us][1] = (ourPawns & board.DarkSquares).PopCount()

	for bb := ourPawns; bb != 0; {
		s := bb.PopLSB()
		f := s.File()
		r := s.RelativeRank(us)

		e.semiopenFiles[us] &^= 1 << uint(f)
		e.pawnAttacksSpan[us] |= board.PawnAttackSpan(us, s)

		// Flag the pawn
		opposed := theirPawns&board.ForwardFile(us, s) != 0
		stoppers := theirPawns & board.PassedPawnMask(us, s)
		lever := theirPawns&board.PawnAttacks(us, s) != 0
		doubled := ourPawns&board.SquareBB(s).Forward(us) != 0
		neighbours := ourPawns & board.AdjacentFiles(f)
		phalanx := neighbours & board.RankMask[s.Rank()]
		supported := neighbours & board.RankMask[behindRank(us, s)]
		connected := supported|phalanx != 0

		// A pawn is backward when it is behind all pawns of the same color
		// on the adjacent files and cannot be safely advanced.
		backward := false
		if neighbours != 0 && !lever && r < 4 {
			// Find the backmost rank with neighbours or stoppers
			b := board.RankMask[(neighbours | stoppers).Backmost(us).Rank()]

			// The pawn is backward when it cannot safely progress to that
			// rank: either there is a stopper in the way on this rank, or
			// there is a stopper on an adjacent file which controls the way
			// to that rank.
			backward = (b|(b&board.AdjacentFiles(f)).Forward(us))&stoppers != 0
		}

		// Passed pawns are only flagged here; scoring them needs full
		// attack info and is left to the evaluation proper.
		if stoppers == 0 && ourPawns&board.ForwardFile(us, s) == 0 {
			e.passedPawns[us] |= board.SquareBB(s)
		}

		// Score this pawn
		switch {
		case neighbours == 0:
			score = score.Sub(isolatedPenalty[btoi(opposed)])
		case backward:
			score = score.Sub(backwardPenalty[btoi(opposed)])
		case supported == 0:
			score = score.Sub(unsupportedPenalty)
		}

		if connected {
			score = score.Add(connectedBonus[btoi(opposed)][btoi(phalanx != 0)][btoi(supported.MoreThanOne())][r])
		}

		if doubled {
			score = score.Sub(doubledPenalty)
		}

		if lever {
			score = score.Add(leverBonus[r])
		}
	}

	return score
}

// behindRank returns the board rank one step behind sq from the given
// color's point of view. Only valid for squares a legal pawn can occupy.
func behindRank(us board.Color, sq board.Square) int {
	if us == board.White {
		return sq.Rank() - 1
	}
	return sq.Rank() + 1
}

// Key returns the pawn hash key the entry was built for.
func (e *Entry) Key() uint64 {
	return e.key
}

// Score returns the net structural score, White minus Black.
func (e *Entry) Score() Score {
	return e.score
}

// PassedPawns returns the squares of the given side's passed pawns.
func (e *Entry) PassedPawns(c board.Color) board.Bitboard {
	return e.passedPawns[c]
}

// PawnAttacks returns all squares the given side's pawns attack.
func (e *Entry) PawnAttacks(c board.Color) board.Bitboard {
	return e.pawnAttacks[c]
}

// PawnAttacksSpan returns every square the given side's pawns could ever
// attack as they advance.
func (e *Entry) PawnAttacksSpan(c board.Color) board.Bitboard {
	return e.pawnAttacksSpan[c]
}

// SemiopenFile reports whether the given side has no pawn on the file.
func (e *Entry) SemiopenFile(c board.Color, file int) bool {
	return e.semiopenFiles[c]&(1<<uint(file)) != 0
}

// PawnsOnSameColorSquares returns how many of the given side's pawns stand
// on squares of the same color as sq.
func (e *Entry) PawnsOnSameColorSquares(c board.Color, sq board.Square) int {
	if board.DarkSquares.IsSet(sq) {
		return e.pawnsOnSquares[c][1]
	}
	return e.pawnsOnSquares[c][0]
}

// Asymmetry returns the number of files exactly one side has pawns on.
func (e *Entry) Asymmetry() int {
	return e.asymmetry
}

// OpenFiles returns the number of files neither side has pawns on.
func (e *Entry) OpenFiles() int {
	return e.openFiles
}

// KingSquare returns the cached king square for the given side, or NoSquare
// if king safety has not been computed for this entry yet.
func (e *Entry) KingSquare(c board.Color) board.Square {
	return e.kingSquares[c]
}

// KingSafety returns the king safety term for the given side: middlegame is
// the best shelter/storm value over the actual and still-reachable castled
// king squares, endgame penalizes the distance to the nearest own pawn.
// The result is cached on the entry and recomputed only when the king
// square or the side's castling rights change.
func (e *Entry) KingSafety(us board.Color, ksq board.Square, cr board.CastlingRights) Score {
	cr = cr.ForColor(us)
	if e.kingSquares[us] == ksq && e.castlingRights[us] == cr {
		return e.kingSafety[us]
	}
	e.kingSafety[us] = e.computeKingSafety(us, ksq, cr)
	return e.kingSafety[us]
}

func (e *Entry) computeKingSafety(us board.Color, ksq board.Square, cr board.CastlingRights) Score {
	e.kingSquares[us] = ksq
	e.castlingRights[us] = cr

	minKingPawnDistance := 0
	if pawns := e.pawns[us]; pawns != 0 {
		for {
			ring := board.DistanceRing(ksq, minKingPawnDistance)
			minKingPawnDistance++
			if ring&pawns != 0 {
				break
			}
		}
	}

	bonus := e.shelterStorm(us, ksq)

	// If we can still castle, use the post-castling shelter if it is better
	if cr.CanCastle(us, true) {
		if v := e.shelterStorm(us, board.RelativeSquare(us, board.G1)); v > bonus {
			bonus = v
		}
	}
	if cr.CanCastle(us, false) {
		if v := e.shelterStorm(us, board.RelativeSquare(us, board.C1)); v > bonus {
			bonus = v
		}
	}

	return S(bonus, -16*minKingPawnDistance)
}

// shelterStorm calculates shelter and storm penalties for the file the king
// is on, as well as the two adjacent files.
func (e *Entry) shelterStorm(us board.Color, ksq board.Square) int {
	them := us.Other()

	// Pawns at or ahead of the king's rank are the only ones that matter.
	b := (e.pawns[us] | e.pawns[them]) & (board.ForwardRanks(us, ksq.Rank()) | board.RankMask[ksq.Rank()])
	ourPawns := b & e.pawns[us]
	theirPawns := b & e.pawns[them]

	safety := MaxSafetyBonus

	// Clamp the center file so the three-file window stays on the board.
	center := ksq.File()
	if center < 1 {
		center = 1
	}
	if center > 6 {
		center = 6
	}

	for f := center - 1; f <= center+1; f++ {
		edge := f
		if 7-f < edge {
			edge = 7 - f
		}

		rkUs := 0
		if fp := ourPawns & board.FileMask[f]; fp != 0 {
			rkUs = fp.Backmost(us).RelativeRank(us)
		}

		rkThem := 0
		if fp := theirPawns & board.FileMask[f]; fp != 0 {
			rkThem = fp.Frontmost(them).RelativeRank(us)
		}

		storm := unblocked
		switch {
		case f == ksq.File() && rkThem == ksq.RelativeRank(us)+1:
			storm = blockedByKing
		case rkUs == 0:
			storm = noFriendlyPawn
		case rkThem == rkUs+1:
			storm = blockedByPawn
		}

		safety -= shelterWeakness[edge][rkUs] + stormDanger[storm][edge][rkThem]
	}

	return safety
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
