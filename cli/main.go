package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gocircum/statecell"
	"github.com/gocircum/statecell/config"
	"github.com/gocircum/statecell/pkg/logging"
)

func main() {
	// Manually parse global flags for logging, as they are needed before subcommands.
	var logLevel, logFormat string
	fs := flag.NewFlagSet("global", flag.ContinueOnError)
	fs.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&logFormat, "log-format", "console", "Log format (console, json)")
	// Ignore errors, we'll just use defaults if flags are not there.
	_ = fs.Parse(os.Args)

	logging.InitLogger(logLevel, logFormat, nil)

	if len(os.Args) < 2 {
		logging.GetLogger().Error("expected 'exercise' or 'check' subcommands")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "exercise":
		exerciseCmd := flag.NewFlagSet("exercise", flag.ExitOnError)
		configFile := exerciseCmd.String("config", "workload.yaml", "Path to the workload YAML file.")
		// Add logging flags to help text, but they are handled globally.
		exerciseCmd.String("log-level", "info", "Log level (debug, info, warn, error)")
		exerciseCmd.String("log-format", "console", "Log format (console, json)")
		if err := exerciseCmd.Parse(os.Args[2:]); err != nil {
			logging.GetLogger().Error("Failed to parse exercise flags", "error", err)
			os.Exit(1)
		}
		runExercise(*configFile)

	case "check":
		checkCmd := flag.NewFlagSet("check", flag.ExitOnError)
		checkCmd.String("log-level", "info", "Log level (debug, info, warn, error)")
		checkCmd.String("log-format", "console", "Log format (console, json)")
		if err := checkCmd.Parse(os.Args[2:]); err != nil {
			logging.GetLogger().Error("Failed to parse check flags", "error", err)
			os.Exit(1)
		}
		runCheck()

	default:
		logging.GetLogger().Error("expected 'exercise' or 'check' subcommands", "command", os.Args[1])
		os.Exit(1)
	}
}

// runExercise installs a cell per config entry and hammers each one with
// the configured reader/writer goroutines, verifying no update is lost.
func runExercise(configFile string) {
	logger := logging.GetLogger()

	cfg, err := config.LoadFileConfig(configFile)
	if err != nil {
		logger.Error("Failed to load workload config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid workload config", "error", err)
		os.Exit(1)
	}

	if cfg.Logging.Level != "" || cfg.Logging.Format != "" {
		logging.InitLogger(cfg.Logging.Level, cfg.Logging.Format, nil)
		logger = logging.GetLogger()
	}

	registry := statecell.NewRegistry(statecell.WithRegistryLogger(logger))

	for _, cellCfg := range cfg.Cells {
		initial := cellCfg.Initial
		cell, err := statecell.Install(registry, cellCfg.Name, func() int64 { return initial })
		if err != nil {
			logger.Error("Failed to install cell", "cell", cellCfg.Name, "error", err)
			os.Exit(1)
		}
		if err := exerciseCell(cell, cellCfg); err != nil {
			logger.Error("Workload failed", "cell", cellCfg.Name, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("Workload complete", "cells", registry.Names())
}

func exerciseCell(cell *statecell.Cell[int64], cfg config.Cell) error {
	logger := logging.GetLogger().With("cell", cfg.Name)
	logger.Info("Exercising cell",
		"readers", cfg.Readers, "writers", cfg.Writers, "iterations", cfg.Iterations)

	var wg sync.WaitGroup
	errs := make(chan error, cfg.Readers+cfg.Writers)

	for i := 0; i < cfg.Writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < cfg.Iterations; n++ {
				if err := cell.Update(func(value *int64) error {
					*value++
					return nil
				}); err != nil {
					errs <- err
					return
				}
			}
		}()
	}

	for i := 0; i < cfg.Readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < cfg.Iterations; n++ {
				if err := cell.View(func(value int64) error {
					if value < cfg.Initial {
						return fmt.Errorf("observed %d, below initial %d", value, cfg.Initial)
					}
					return nil
				}); err != nil {
					errs <- err
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		return err
	}

	final, err := cell.Get()
	if err != nil {
		return err
	}
	expected := cfg.Initial + int64(cfg.Writers)*int64(cfg.Iterations)
	if final != expected {
		return fmt.Errorf("lost updates: final value %d, expected %d", final, expected)
	}

	logger.Info("Cell exercised", "final", final)
	return nil
}

// runCheck probes the cell's contract at runtime: exactly-once lazy
// construction under a first-access race, write visibility, and writer
// exclusion. Exits non-zero if any probe fails.
func runCheck() {
	logger := logging.GetLogger()
	failed := false

	if err := checkExactlyOnce(); err != nil {
		logger.Error("Construction check failed", "error", err)
		failed = true
	} else {
		logger.Info("Construction check passed")
	}

	if err := checkWriteVisibility(); err != nil {
		logger.Error("Visibility check failed", "error", err)
		failed = true
	} else {
		logger.Info("Visibility check passed")
	}

	if err := checkWriterExclusion(); err != nil {
		logger.Error("Exclusion check failed", "error", err)
		failed = true
	} else {
		logger.Info("Exclusion check passed")
	}

	if failed {
		os.Exit(1)
	}
	logger.Info("All checks passed")
}

func checkExactlyOnce() error {
	var constructions atomic.Int32
	cell := statecell.New(func() int64 {
		constructions.Add(1)
		return 7
	}, statecell.WithName[int64]("check.once"))

	const goroutines = 10
	start := make(chan struct{})
	values := make(chan int64, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			handle, err := cell.AcquireRead()
			if err != nil {
				values <- -1
				return
			}
			defer handle.Release()
			values <- handle.Value()
		}()
	}
	close(start)
	wg.Wait()
	close(values)

	if n := constructions.Load(); n != 1 {
		return fmt.Errorf("value constructed %d times, expected exactly once", n)
	}
	for v := range values {
		if v != 7 {
			return fmt.Errorf("reader observed %d, expected 7", v)
		}
	}
	return nil
}

func checkWriteVisibility() error {
	cell := statecell.New[int64](nil, statecell.WithName[int64]("check.visibility"))
	if err := cell.Set(42); err != nil {
		return err
	}
	value, err := cell.Get()
	if err != nil {
		return err
	}
	if value != 42 {
		return fmt.Errorf("read %d after writing 42", value)
	}
	return nil
}

func checkWriterExclusion() error {
	cell := statecell.New[int64](nil, statecell.WithName[int64]("check.exclusion"))

	handle, err := cell.AcquireWrite()
	if err != nil {
		return err
	}

	var observed int64
	var observedErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		observed, observedErr = cell.Get()
	}()

	// The reader must stay blocked while the write handle is held.
	select {
	case <-done:
		handle.Release()
		return fmt.Errorf("reader acquired access while a write handle was held")
	case <-time.After(100 * time.Millisecond):
	}

	handle.Set(42)
	handle.Release()
	<-done

	if observedErr != nil {
		return observedErr
	}
	if observed != 42 {
		return fmt.Errorf("reader observed %d after release, expected 42", observed)
	}
	return nil
}
