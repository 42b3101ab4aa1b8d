package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/pixelarc/rankboard/internal/loadgen"
)

// Default configuration constants.
const (
	defaultNumEvents  = 10000
	defaultNumUsers   = 500
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultWaitAfter  = 5 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numEvents = flag.Int("events", defaultNumEvents, "Number of events to generate and submit")
		numUsers  = flag.Int("users", defaultNumUsers, "Number of distinct users to spread events over")
		workers   = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		wait      = flag.Duration("wait", defaultWaitAfter, "How long to wait for async processing before verification")
		logFile   = flag.String("log", "", "Log file for run output (default: loadgen_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := loadgen.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &loadgen.Config{
		BaseURL:   *baseURL,
		NumEvents: *numEvents,
		NumUsers:  *numUsers,
		Workers:   *workers,
		Timeout:   *timeout,
		WaitAfter: *wait,
		LogFile:   *logFile,
		Verbose:   *verbose,
	}

	if err := loadgen.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Load run failed: " + err.Error() + "\n")
		return
	}
}
