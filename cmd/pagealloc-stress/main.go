// Command pagealloc-stress drives the allocator with concurrent
// mixed-size allocate/free/reallocate cycles for a fixed duration and
// reports throughput and latency. It is an external harness, not part of
// the allocator's own API surface.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/pageframe/pagealloc"
	"github.com/pageframe/pagealloc/internal/logging"
)

var (
	duration    = flag.Duration("duration", 10*time.Second, "Duration of the stress run")
	concurrency = flag.Int("concurrency", 8, "Number of concurrent worker goroutines")
	sizesFlag   = flag.String("sizes", "16,24,40,64,500,1000", "Comma-separated allocation sizes to cycle through")
)

func main() {
	flag.Parse()

	_ = godotenv.Load()
	var cfg pagealloc.Config
	if err := envconfig.Process("PAGEALLOC", &cfg); err != nil {
		fmt.Fprintln(os.Stderr, "pagealloc-stress: invalid configuration:", err)
		os.Exit(1)
	}
	pagealloc.Configure(cfg)
	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	sizes, err := parseSizes(*sizesFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pagealloc-stress:", err)
		os.Exit(1)
	}

	fmt.Printf("Starting stress run:\n")
	fmt.Printf("  Duration:    %s\n", *duration)
	fmt.Printf("  Concurrency: %d\n", *concurrency)
	fmt.Printf("  Sizes:       %v\n", sizes)

	var ops atomic.Int64
	var latency sumLatency

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			runWorker(seed, sizes, start.Add(*duration), &ops, &latency, log)
		}(i)
	}
	wg.Wait()

	printResults(time.Since(start), ops.Load(), &latency)
	_ = log.Sync()
}

func runWorker(seed int, sizes []int, deadline time.Time, ops *atomic.Int64, latency *sumLatency, log *logging.Logger) {
	rng := rand.New(rand.NewSource(int64(seed) + 1))
	live := make([]unsafe.Pointer, 0, 64)

	for time.Now().Before(deadline) {
		t0 := time.Now()
		size := sizes[rng.Intn(len(sizes))]

		switch rng.Intn(3) {
		case 0:
			live = append(live, pagealloc.Allocate(size))
		case 1:
			if len(live) > 0 {
				idx := rng.Intn(len(live))
				pagealloc.Free(live[idx])
				live[idx] = live[len(live)-1]
				live = live[:len(live)-1]
			}
		default:
			if len(live) > 0 {
				idx := rng.Intn(len(live))
				live[idx] = pagealloc.Reallocate(live[idx], size)
			}
		}

		latency.Record(time.Since(t0))
		ops.Add(1)
	}

	for _, p := range live {
		pagealloc.Free(p)
	}
	log.Debug("worker finished", zap.Int("seed", seed), zap.Int("live_at_exit", len(live)))
}

func parseSizes(csv string) ([]int, error) {
	parts := strings.Split(csv, ",")
	sizes := make([]int, 0, len(parts))
	for _, p := range parts {
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(p), "%d", &n); err != nil {
			return nil, fmt.Errorf("invalid size %q: %w", p, err)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

type sumLatency struct {
	totalNs atomic.Int64
	count   atomic.Int64
	maxNs   atomic.Int64
}

func (l *sumLatency) Record(d time.Duration) {
	ns := d.Nanoseconds()
	l.totalNs.Add(ns)
	l.count.Add(1)
	for {
		current := l.maxNs.Load()
		if ns <= current {
			break
		}
		if l.maxNs.CompareAndSwap(current, ns) {
			break
		}
	}
}

func printResults(d time.Duration, ops int64, l *sumLatency) {
	seconds := d.Seconds()
	throughput := float64(ops) / seconds

	var avgLatency time.Duration
	if count := l.count.Load(); count > 0 {
		avgLatency = time.Duration(l.totalNs.Load() / count)
	}
	maxLatency := time.Duration(l.maxNs.Load())

	fmt.Println("\n--- Results ---")
	fmt.Printf("Elapsed:     %.2fs\n", seconds)
	fmt.Printf("Total Ops:   %d\n", ops)
	fmt.Printf("Throughput:  %.2f ops/sec\n", throughput)
	fmt.Printf("Avg Latency: %v\n", avgLatency)
	fmt.Printf("Max Latency: %v\n", maxLatency)
}
