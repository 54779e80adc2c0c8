package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/modelseq/go-modelseq/internal/api"
	"github.com/modelseq/go-modelseq/internal/config"
	"github.com/modelseq/go-modelseq/internal/store"
	"github.com/modelseq/go-modelseq/pkg/log"
	"github.com/modelseq/go-modelseq/pkg/sequence"
)

func main() {
	configPath := flag.String("config", "configs/api.yaml", "path to the configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := log.NewLogger(&cfg.Log)

	spec := cfg.Sequence.Spec()

	// The sequence is validated before the listener binds: an inconsistent
	// declaration must never accept traffic.
	var execOpts []sequence.ExecutorOption
	if cfg.Engine.Strict {
		execOpts = append(execOpts, sequence.WithVerifier(sequence.NewVerifier(sequence.Strict())))
	}
	// Operator-supplied runners register here per step id; unregistered
	// steps fall back to echoing their declared output template.
	runners := sequence.NewRegistry()
	runners.SetFallback(sequence.TemplateRunner(spec).Run)

	exec, err := sequence.NewExecutor(spec, runners, execOpts...)
	if err != nil {
		return err
	}

	batchOpts := []sequence.BatchOption{sequence.BatchWorkers(cfg.Engine.BatchWorkers)}
	if cfg.Engine.BatchFailFast {
		batchOpts = append(batchOpts, sequence.FailFast())
	}
	batch := sequence.NewBatch(exec, batchOpts...)

	handler, err := api.NewHandler(exec, batch, store.NewSessionStore(), logger)
	if err != nil {
		return err
	}

	router := api.NewRouter(handler)
	logger.Info("serving sequence", "name", spec.Name, "version", spec.Version, "steps", len(spec.Steps), "addr", cfg.Server.Addr())

	return router.Run(cfg.Server.Addr())
}
