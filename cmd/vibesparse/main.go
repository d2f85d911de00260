package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"vibe-sparse/pkg/issues"
	"vibe-sparse/pkg/scorer"
	"vibe-sparse/pkg/sparseindex"
)

const (
	defaultNumPoints     = 100_000
	defaultNumDimensions = 5_000
	defaultNNZ           = 32
	defaultFlushTrigger  = 10_000
)

func main() {
	ingestCmd := flag.NewFlagSet("ingest", flag.ExitOnError)
	queryCmd := flag.NewFlagSet("query", flag.ExitOnError)

	ingestN := ingestCmd.Int("n", defaultNumPoints, "Number of points to ingest")
	ingestDims := ingestCmd.Int("dims", defaultNumDimensions, "Number of distinct dimensions")
	ingestNNZ := ingestCmd.Int("nnz", defaultNNZ, "Nonzero entries per point")
	ingestSeed := ingestCmd.Int64("seed", time.Now().UnixNano(), "Random seed")
	ingestFlushTrigger := ingestCmd.Int("flush-trigger", defaultFlushTrigger, "Memtable size that triggers a flush")

	queryN := queryCmd.Int("n", defaultNumPoints, "Number of points to ingest before querying")
	queryDims := queryCmd.Int("dims", defaultNumDimensions, "Number of distinct dimensions")
	queryNNZ := queryCmd.Int("nnz", defaultNNZ, "Nonzero entries per point")
	querySeed := queryCmd.Int64("seed", time.Now().UnixNano(), "Random seed")
	queryFlushTrigger := queryCmd.Int("flush-trigger", defaultFlushTrigger, "Memtable size that triggers a flush")
	queryTop := queryCmd.Int("top", 10, "Number of results to print")

	if len(os.Args) < 2 {
		fmt.Println("Expected 'ingest' or 'query' subcommand")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "ingest":
		ingestCmd.Parse(os.Args[2:])
		runIngest(*ingestN, *ingestDims, *ingestNNZ, *ingestSeed, *ingestFlushTrigger)
	case "query":
		queryCmd.Parse(os.Args[2:])
		runQuery(*queryN, *queryDims, *queryNNZ, *querySeed, *queryFlushTrigger, *queryTop)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		fmt.Println("Expected 'ingest' or 'query' subcommand")
		os.Exit(1)
	}
}

// buildIndex ingests n synthetic sparse vectors, each with nnz nonzero
// weights on dimensions drawn from [0, numDims), and returns the populated index
// alongside how long ingestion took.
func buildIndex(n, numDims, nnz int, seed int64, flushTrigger int) (*sparseindex.Index, time.Duration) {
	rng := rand.New(rand.NewSource(seed))
	idx := sparseindex.NewIndex(
		sparseindex.WithFlushTrigger(flushTrigger),
		sparseindex.WithDashboard(issues.NewDashboard()),
	)

	start := time.Now()
	for i := 0; i < n; i++ {
		vector := randomSparseVector(rng, numDims, nnz)
		if err := idx.Upsert(uint32(i), vector); err != nil {
			fmt.Printf("Error upserting point %d: %v\n", i, err)
			os.Exit(1)
		}
	}
	if err := idx.FlushAll(); err != nil {
		fmt.Printf("Error flushing index: %v\n", err)
		os.Exit(1)
	}
	return idx, time.Since(start)
}

func randomSparseVector(rng *rand.Rand, numDims, nnz int) map[uint32]float32 {
	vector := make(map[uint32]float32, nnz)
	for len(vector) < nnz {
		dim := uint32(rng.Intn(numDims))
		vector[dim] = rng.Float32()*2 - 1
	}
	return vector
}

func runIngest(n, numDims, nnz int, seed int64, flushTrigger int) {
	fmt.Printf("Ingesting %d points across %d dimensions (%d nonzeros each)\n", n, numDims, nnz)
	idx, elapsed := buildIndex(n, numDims, nnz, seed, flushTrigger)

	fmt.Printf("Ingested in %s (%.0f points/sec)\n", elapsed, float64(n)/elapsed.Seconds())
	fmt.Printf("Active dimensions: %d\n", len(idx.Dimensions()))

	if codes := idx.ActiveIssueCodes(); len(codes) > 0 {
		fmt.Printf("Active issues: %d\n", len(codes))
		for _, c := range codes {
			fmt.Printf("  %s: %s\n", c.Type, c.Distinctive)
		}
	}
}

func runQuery(n, numDims, nnz int, seed int64, flushTrigger, top int) {
	idx, elapsed := buildIndex(n, numDims, nnz, seed, flushTrigger)
	fmt.Printf("Ingested %d points in %s\n", n, elapsed)

	rng := rand.New(rand.NewSource(seed + 1))
	query := randomSparseVector(rng, numDims, nnz)

	start := time.Now()
	results := scorer.Score(idx, query, scorer.Options{Limit: top})
	fmt.Printf("Scored %d query dimensions in %s\n", len(query), time.Since(start))

	for rank, r := range results {
		fmt.Printf("%3d. point=%d score=%.4f\n", rank+1, r.PointID, r.Score)
	}
}
