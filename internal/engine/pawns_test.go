package engine

import (
	"testing"

	"github.com/lp--/Cfish/internal/board"
)

func mustParse(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("Failed to parse FEN %q: %v", fen, err)
	}
	return pos
}

func entryFor(pos *board.Position) *Entry {
	return NewEntry(pos.Pawns(board.White), pos.Pawns(board.Black), pos.PawnKey)
}

func TestConnectedBonusTable(t *testing.T) {
	tests := []struct {
		opposed, phalanx, apex, rank int
		want                         Score
	}{
		// Seed rank 5 value is 71; endgame is mg*5/8 truncated
		{0, 0, 0, 4, S(71, 44)},
		// Phalanx blends half the step to the next rank: 71+(94-71)/2 = 82
		{0, 1, 0, 4, S(82, 51)},
		// Opposed halves after the blend
		{1, 0, 0, 4, S(35, 21)},
		// Twice supported adds half again
		{0, 0, 1, 4, S(106, 66)},
		{0, 0, 0, 1, S(8, 5)},
		{0, 0, 0, 6, S(169, 105)},
	}

	for _, tc := range tests {
		got := connectedBonus[tc.opposed][tc.phalanx][tc.apex][tc.rank]
		if got != tc.want {
			t.Errorf("connectedBonus[%d][%d][%d][%d] = %v, want %v",
				tc.opposed, tc.phalanx, tc.apex, tc.rank, got, tc.want)
		}
	}

	// Rebuilding must not change anything
	before := connectedBonus
	initConnectedBonus()
	if connectedBonus != before {
		t.Error("initConnectedBonus is not idempotent")
	}
}

func TestBuildDeterminism(t *testing.T) {
	fens := []string{
		board.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -",
	}

	for _, fen := range fens {
		pos := mustParse(t, fen)
		e1 := entryFor(pos)
		e2 := entryFor(pos)
		if *e1 != *e2 {
			t.Errorf("Entry for %q is not deterministic", fen)
		}
	}
}

func TestMirrorSymmetry(t *testing.T) {
	fens := []string{
		board.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -",
		"4k3/8/8/8/2Pp4/8/8/4K3 w - -",
	}

	for _, fen := range fens {
		pos := mustParse(t, fen)
		wp := pos.Pawns(board.White)
		bp := pos.Pawns(board.Black)

		e := NewEntry(wp, bp, 0)
		m := NewEntry(bp.FlipVertical(), wp.FlipVertical(), 0)

		if m.Score() != e.Score().Neg() {
			t.Errorf("%q: mirrored score %v, want %v", fen, m.Score(), e.Score().Neg())
		}
		if m.Asymmetry() != e.Asymmetry() {
			t.Errorf("%q: mirrored asymmetry %d, want %d", fen, m.Asymmetry(), e.Asymmetry())
		}
		if m.OpenFiles() != e.OpenFiles() {
			t.Errorf("%q: mirrored openFiles %d, want %d", fen, m.OpenFiles(), e.OpenFiles())
		}
		if m.PassedPawns(board.White) != e.PassedPawns(board.Black).FlipVertical() {
			t.Errorf("%q: mirrored white passers do not match black passers", fen)
		}
	}
}

func TestIsolatedPawn(t *testing.T) {
	// A lone pawn has no neighbours anywhere, so it is isolated no matter
	// where it stands, and never backward or unsupported on top of that.
	for f := 0; f < 8; f++ {
		for r := 1; r < 7; r++ {
			sq := board.NewSquare(f, r)
			e := NewEntry(board.SquareBB(sq), 0, 0)
			want := isolatedPenalty[0].Neg()
			if e.Score() != want {
				t.Errorf("lone pawn on %s: score %v, want %v", sq, e.Score(), want)
			}
		}
	}

	// Opposed variant: an enemy pawn ahead on the same file halves nothing
	// but selects the milder penalty pair.
	e := &Entry{}
	e.pawns[board.White] = board.SquareBB(board.C4)
	e.pawns[board.Black] = board.SquareBB(board.C6)
	got := e.evaluatePawns(board.White)
	if want := isolatedPenalty[1].Neg(); got != want {
		t.Errorf("opposed isolated pawn: score %v, want %v", got, want)
	}
}

func TestDoubledPawns(t *testing.T) {
	// Two white pawns stacked on c3 and c4, nothing else. Both are isolated
	// (neighbouring files are empty) and the rear one is doubled as well.
	pawns := board.SquareBB(board.C3) | board.SquareBB(board.C4)
	e := NewEntry(pawns, 0, 0)

	want := isolatedPenalty[0].Neg().Add(isolatedPenalty[0].Neg()).Sub(doubledPenalty)
	if e.Score() != want {
		t.Errorf("doubled pawns: score %v, want %v", e.Score(), want)
	}

	// Only the front pawn is passed; the rear one has an own pawn ahead.
	if e.PassedPawns(board.White) != board.SquareBB(board.C4) {
		t.Errorf("doubled pawns: passers %v, want only c4", e.PassedPawns(board.White))
	}
}

func TestBackwardPawn(t *testing.T) {
	// White d4 and e3 versus black d5. The e3 pawn has a neighbour on d4
	// but cannot advance to e4 because d5 controls that square: backward.
	// d4 itself is opposed, supported by e3, and connected.
	pos := mustParse(t, "4k3/8/8/3p4/3P4/4P3/8/4K3 w - -")
	e := entryFor(pos)

	// White: connected d4 gives connectedBonus[1][0][0][3] = (6,3), backward
	// e3 costs (56,33). Black: isolated opposed d5 costs (30,27).
	want := S(6-56+30, 3-33+27)
	if e.Score() != want {
		t.Errorf("backward position: score %v, want %v", e.Score(), want)
	}
}

func TestBackwardNotOnHighRanks(t *testing.T) {
	// Same shape shifted two ranks up: e5 would be backward by the same
	// reasoning, but relative rank 5 and above short-circuits the check.
	e := &Entry{}
	e.pawns[board.White] = board.SquareBB(board.D6) | board.SquareBB(board.E5)
	e.pawns[board.Black] = board.SquareBB(board.D7)
	got := e.evaluatePawns(board.White)

	// e5 has a neighbour and phalanx/support: d6 is one rank ahead, so e5
	// is unsupported but not backward; d6 is connected via support from e5.
	want := connectedBonus[1][0][0][5].Sub(unsupportedPenalty)
	if got != want {
		t.Errorf("high-rank pawn: score %v, want %v", got, want)
	}
}

func TestPassedFlags(t *testing.T) {
	tests := []struct {
		fen   string
		white board.Bitboard
		black board.Bitboard
	}{
		// c4 and d4 pass each other: stoppers must be strictly ahead
		{"4k3/8/8/8/2Pp4/8/8/4K3 w - -",
			board.SquareBB(board.C4), board.SquareBB(board.D4)},
		// d5 stops e4 (adjacent-file corridor); e4 stops d5 in return
		{"4k3/8/8/3p4/4P3/8/8/4K3 w - -", 0, 0},
		// No pawns at all
		{"4k3/8/8/8/8/8/8/4K3 w - -", 0, 0},
		{board.StartFEN, 0, 0},
	}

	for _, tc := range tests {
		e := entryFor(mustParse(t, tc.fen))
		if e.PassedPawns(board.White) != tc.white {
			t.Errorf("%q: white passers %v, want %v", tc.fen, e.PassedPawns(board.White), tc.white)
		}
		if e.PassedPawns(board.Black) != tc.black {
			t.Errorf("%q: black passers %v, want %v", tc.fen, e.PassedPawns(board.Black), tc.black)
		}
	}
}

func TestSemiopenFilesAndCounts(t *testing.T) {
	// White pawns a2 b2, black pawns b7 c7.
	pos := mustParse(t, "4k3/1pp5/8/8/8/8/PP6/4K3 w - -")
	e := entryFor(pos)

	if e.SemiopenFile(board.White, 0) || e.SemiopenFile(board.White, 1) {
		t.Error("files a and b should not be semi-open for White")
	}
	if !e.SemiopenFile(board.White, 2) {
		t.Error("file c should be semi-open for White")
	}
	if !e.SemiopenFile(board.Black, 0) {
		t.Error("file a should be semi-open for Black")
	}

	// Files a and c belong to exactly one side; d through h are fully open.
	if e.Asymmetry() != 2 {
		t.Errorf("asymmetry = %d, want 2", e.Asymmetry())
	}
	if e.OpenFiles() != 5 {
		t.Errorf("openFiles = %d, want 5", e.OpenFiles())
	}

	// a2 is a light square, b2 dark; b7 dark, c7 light.
	if got := e.PawnsOnSameColorSquares(board.White, board.A2); got != 1 {
		t.Errorf("white pawns on light squares = %d, want 1", got)
	}
	if got := e.PawnsOnSameColorSquares(board.Black, board.B2); got != 1 {
		t.Errorf("black pawns on dark squares = %d, want 1", got)
	}
}

func TestShelterStorm(t *testing.T) {
	// King on g1 behind an intact f2-g2-h2 shelter, no enemy pawns.
	// Per file: weakness[edge][1] plus the unblocked storm base at rank 0:
	//   f: 7+23, g: 0+23, h: 21+20 -> 94 subtracted from 258.
	shelter := board.SquareBB(board.F2) | board.SquareBB(board.G2) | board.SquareBB(board.H2)
	e := NewEntry(shelter, 0, 0)

	if got := e.shelterStorm(board.White, board.G1); got != 164 {
		t.Errorf("white shelter = %d, want 164", got)
	}

	// Black mirror of the same shape.
	m := NewEntry(0, shelter.FlipVertical(), 0)
	if got := m.shelterStorm(board.Black, board.G8); got != 164 {
		t.Errorf("black shelter = %d, want 164", got)
	}

	// Uncastled king in the center keeps only the f-file pawn of its
	// three-file window: 80+80+30 subtracted.
	if got := e.shelterStorm(board.White, board.E1); got != 68 {
		t.Errorf("center shelter = %d, want 68", got)
	}

	// A storm pawn blocked by its shelter counterpart: black g3 stands one
	// rank ahead of g2, so the g-file becomes a blocked storm file.
	s := NewEntry(shelter, board.SquareBB(board.G3), 0)
	want := 258 - (7 + 23) - (0 + blockedStormPenalty(1, 2)) - (21 + 20)
	if got := s.shelterStorm(board.White, board.G1); got != want {
		t.Errorf("blocked storm shelter = %d, want %d", got, want)
	}
}

// blockedStormPenalty reads the blocked-by-pawn storm table for tests.
func blockedStormPenalty(edge, rank int) int {
	return stormDanger[blockedByPawn][edge][rank]
}

func TestKingSafetyCaching(t *testing.T) {
	shelter := board.SquareBB(board.F2) | board.SquareBB(board.G2) | board.SquareBB(board.H2)
	e := NewEntry(shelter, 0, 0)

	if e.KingSquare(board.White) != board.NoSquare {
		t.Fatal("fresh entry should have no cached king square")
	}

	s1 := e.KingSafety(board.White, board.G1, board.NoCastling)
	if want := S(164, -16); s1 != want {
		t.Errorf("king safety = %v, want %v", s1, want)
	}
	if e.KingSquare(board.White) != board.G1 {
		t.Error("king square not recorded after first evaluation")
	}

	// Same king square and rights: cached value, no recomputation.
	if s2 := e.KingSafety(board.White, board.G1, board.NoCastling); s2 != s1 {
		t.Errorf("cached king safety = %v, want %v", s2, s1)
	}

	// New king square: recompute and update the cached square.
	s3 := e.KingSafety(board.White, board.E1, board.NoCastling)
	if want := S(68, -16); s3 != want {
		t.Errorf("recomputed king safety = %v, want %v", s3, want)
	}
	if e.KingSquare(board.White) != board.E1 {
		t.Error("king square not updated after recomputation")
	}
}

func TestKingSafetyCastlingLookahead(t *testing.T) {
	shelter := board.SquareBB(board.F2) | board.SquareBB(board.G2) | board.SquareBB(board.H2)

	// With the king-side right still held, the post-castling shelter on g1
	// (164) beats the actual e1 shelter (68).
	e := NewEntry(shelter, 0, 0)
	got := e.KingSafety(board.White, board.E1, board.WhiteKingSideCastle)
	if want := S(164, -16); got != want {
		t.Errorf("king safety with castling right = %v, want %v", got, want)
	}

	// Changing only the rights must invalidate the cached value.
	lost := e.KingSafety(board.White, board.E1, board.NoCastling)
	if want := S(68, -16); lost != want {
		t.Errorf("king safety after losing rights = %v, want %v", lost, want)
	}
}

func TestKingSafetyNoPawns(t *testing.T) {
	// No pawns: the ring search must terminate with distance 0, and every
	// shelter file counts as pawnless. The total can go negative; the core
	// does not clamp.
	e := NewEntry(0, 0, 0)
	got := e.KingSafety(board.White, board.E1, board.NoCastling)
	if want := S(-3, 0); got != want {
		t.Errorf("king safety with no pawns = %v, want %v", got, want)
	}
}
