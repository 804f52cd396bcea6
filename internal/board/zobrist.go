package board

// Zobrist keys for pawn-structure hashing.
// Uses a PRNG with a fixed seed for reproducibility: the same pawn
// placement always hashes to the same key, across runs and platforms.
var zobristPawn [2][64]uint64 // [Color][Square]

// zobristNoPawns seeds every pawn key so that a position with no pawns does
// not hash to zero, which is what a never-filled cache slot holds.
var zobristNoPawns uint64

func init() {
	rng := newPRNG(0x98F107A2BEEF1234) // Fixed seed

	for c := White; c <= Black; c++ {
		for sq := A1; sq <= H8; sq++ {
			zobristPawn[c][sq] = rng.next()
		}
	}
	zobristNoPawns = rng.next()
}

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

// ZobristPawn returns the Zobrist key for a pawn of the given color on sq.
func ZobristPawn(c Color, sq Square) uint64 {
	return zobristPawn[c][sq]
}

// ZobristNoPawns returns the base key every pawn hash starts from.
func ZobristNoPawns() uint64 {
	return zobristNoPawns
}
