// Command pawnscan evaluates the pawn structure of chess positions read as
// FEN strings, one per line, and prints a per-position breakdown. Each
// worker owns a private pawn hash table; aggregate cache statistics can be
// recorded persistently with -stats.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lp--/Cfish/internal/board"
	"github.com/lp--/Cfish/internal/engine"
	"github.com/lp--/Cfish/internal/storage"
)

var (
	input   = flag.String("input", "-", "file with one FEN per line, or - for stdin")
	threads = flag.Int("threads", runtime.NumCPU(), "number of scan workers")
	hashMB  = flag.Int("hash", 4, "pawn hash table size per worker, in MB")
	record  = flag.Bool("stats", false, "record run statistics in the data directory")
)

type scanResult struct {
	fen     string
	err     error
	score   engine.Score
	passers [2]int
	eval    int
}

type workerStats struct {
	positions   int64
	cacheHits   uint64
	cacheMisses uint64
}

func main() {
	flag.Parse()

	var in io.Reader = os.Stdin
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		in = f
	}

	start := time.Now()
	total, err := scan(context.Background(), in, *threads, *hashMB)
	if err != nil {
		log.Fatal(err)
	}

	probes := total.cacheHits + total.cacheMisses
	hitRate := 0.0
	if probes > 0 {
		hitRate = float64(total.cacheHits) / float64(probes) * 100
	}
	log.Printf("scanned %d positions in %v (cache hit rate %.1f%%)",
		total.positions, time.Since(start).Round(time.Millisecond), hitRate)

	if *record {
		if err := recordRun(total, time.Since(start)); err != nil {
			log.Printf("Warning: could not record stats: %v", err)
		}
	}
}

// scan runs the worker pipeline: one reader, N evaluation workers with a
// private pawn table each, one printer.
func scan(ctx context.Context, in io.Reader, threads, hashMB int) (workerStats, error) {
	g, ctx := errgroup.WithContext(ctx)

	lines := make(chan string, 128)
	results := make(chan scanResult, 128)
	stats := make(chan workerStats, threads)

	g.Go(func() error {
		defer close(lines)
		return readLines(ctx, in, lines)
	})

	workers := &errgroup.Group{}
	for i := 0; i < threads; i++ {
		workers.Go(func() error {
			return scanWorker(ctx, lines, results, stats, hashMB)
		})
	}

	g.Go(func() error {
		defer close(results)
		defer close(stats)
		return workers.Wait()
	})

	var total workerStats
	g.Go(func() error {
		for ws := range stats {
			total.positions += ws.positions
			total.cacheHits += ws.cacheHits
			total.cacheMisses += ws.cacheMisses
		}
		return nil
	})

	out := bufio.NewWriter(os.Stdout)
	for r := range results {
		if r.err != nil {
			fmt.Fprintf(out, "%s | error: %v\n", r.fen, r.err)
			continue
		}
		fmt.Fprintf(out, "%s | pawns mg %d eg %d | passers W %d B %d | eval %d\n",
			r.fen, r.score.Mg, r.score.Eg, r.passers[board.White], r.passers[board.Black], r.eval)
	}
	if err := out.Flush(); err != nil {
		return total, err
	}

	// Wait before reading total: the stats goroutine writes it until then.
	err := g.Wait()
	return total, err
}

func readLines(ctx context.Context, in io.Reader, lines chan<- string) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		select {
		case lines <- line:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}

func scanWorker(ctx context.Context, lines <-chan string, results chan<- scanResult, stats chan<- workerStats, hashMB int) error {
	table := engine.NewTable(hashMB)
	var ws workerStats

	defer func() {
		ws.cacheHits, ws.cacheMisses = table.Stats()
		stats <- ws
	}()

	for fen := range lines {
		r := evaluateFEN(fen, table)
		ws.positions++
		select {
		case results <- r:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func evaluateFEN(fen string, table *engine.Table) scanResult {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return scanResult{fen: fen, err: err}
	}
	if err := pos.Validate(); err != nil {
		return scanResult{fen: fen, err: err}
	}

	entry := table.Probe(pos)
	return scanResult{
		fen:   fen,
		score: entry.Score(),
		passers: [2]int{
			entry.PassedPawns(board.White).PopCount(),
			entry.PassedPawns(board.Black).PopCount(),
		},
		eval: engine.Evaluate(pos, table),
	}
}

func recordRun(total workerStats, elapsed time.Duration) error {
	store, err := storage.NewStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	return store.RecordRun(storage.RunResult{
		Positions:   total.positions,
		CacheHits:   total.cacheHits,
		CacheMisses: total.cacheMisses,
		Duration:    elapsed,
	})
}
