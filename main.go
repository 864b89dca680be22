// ════════════════════════════════════════════════════════════════════════════════════════════════
// Atomic Worker Pool - Demo Harness
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Round-Based Atomic Worker Pool
// Component: Benchmark Harness & Usage Example
//
// Description:
//   Drives the pool through repeated fixed rounds of a hashing workload and persists per-round
//   latency to sqlite.  Append → Dispatch → read digests post-barrier, repeated for each round.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"os"
	"runtime"
	"time"

	"github.com/tesseract241/simpleAtomicWorkerPool/debug"
	"github.com/tesseract241/simpleAtomicWorkerPool/metricsink"
	"github.com/tesseract241/simpleAtomicWorkerPool/utils"
	"github.com/tesseract241/simpleAtomicWorkerPool/workerpool"

	"github.com/sugawarayuuta/sonnet"
	"golang.org/x/crypto/sha3"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Config is the harness's tunables, decoded from an optional JSON file
// passed as the first argument.  Zero fields fall back to defaults.
type Config struct {
	Workers    int    `json:"workers"`    // worker threads; 0 → all cores
	Jobs       int    `json:"jobs"`       // jobs appended per round
	Rounds     int    `json:"rounds"`     // rounds to run
	BlockBytes int    `json:"blockBytes"` // input size per job
	Database   string `json:"database"`   // sqlite path; "" disables the sink
}

// loadConfig merges the optional config file over the defaults.
func loadConfig() Config {
	cfg := Config{
		Workers:    runtime.NumCPU(),
		Jobs:       32,
		Rounds:     50,
		BlockBytes: 4096,
		Database:   "rounds.db",
	}
	if len(os.Args) > 1 {
		raw, err := os.ReadFile(os.Args[1])
		if err != nil {
			debug.DropError("CONFIG", err)
			os.Exit(1)
		}
		if err := sonnet.Unmarshal(raw, &cfg); err != nil {
			debug.DropError("CONFIG", err)
			os.Exit(1)
		}
	}
	return cfg
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// WORKLOAD
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// HashJob carries one block to hash plus its output slot.  The digest is
// written by a worker during the round and read by the dispatcher only
// after Dispatch returns, so no synchronization beyond the barrier is
// needed on either field.
type HashJob struct {
	Block  []byte
	Digest [32]byte
}

// hashBlock is the per-job worker function.
func hashBlock(job *HashJob) {
	job.Digest = sha3.Sum256(job.Block)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// MAIN ORCHESTRATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func main() {
	cfg := loadConfig()
	debug.DropMessage("INIT", utils.Itoa(cfg.Workers)+" workers, "+
		utils.Itoa(cfg.Jobs)+" jobs x "+utils.Itoa(cfg.Rounds)+" rounds")

	// One input block per job slot, reused every round.
	blocks := make([][]byte, cfg.Jobs)
	for i := range blocks {
		blocks[i] = make([]byte, cfg.BlockBytes)
		for j := range blocks[i] {
			blocks[i][j] = byte(i + j)
		}
	}

	queue := workerpool.New[HashJob](cfg.Jobs)
	threads := workerpool.Spawn(queue, hashBlock, cfg.Workers)
	debug.DropMessage("READY", utils.Itoa(threads.Count())+" threads spawned")

	var sink *metricsink.Sink
	if cfg.Database != "" {
		var err error
		if sink, err = metricsink.Open(cfg.Database); err != nil {
			debug.DropError("SINK", err)
			os.Exit(1)
		}
		defer sink.Close()
	}

	handles := make([]*HashJob, cfg.Jobs)
	for round := 0; round < cfg.Rounds; round++ {
		for i := range blocks {
			// The queue never grows here (capacity == Jobs), so the
			// handles stay valid through the round.
			handles[i] = queue.Append(HashJob{Block: blocks[i]})
		}

		begin := time.Now()
		workerpool.Dispatch(queue)
		elapsed := time.Since(begin)

		// Post-barrier: the output slots are safe to read.
		var spot byte
		for _, h := range handles {
			spot ^= h.Digest[0]
		}
		_ = spot

		if sink != nil {
			if err := sink.Record(cfg.Jobs, threads.Count(), elapsed); err != nil {
				debug.DropError("SINK", err)
				os.Exit(1)
			}
		}
	}

	workerpool.Shutdown(queue, threads)
	debug.DropMessage("DONE", utils.Itoa(cfg.Rounds)+" rounds complete")
}
