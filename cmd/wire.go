package cmd

import (
	"fmt"

	"github.com/auditkit/invaudit/config"
	"github.com/auditkit/invaudit/pkg/analysis"
	"github.com/auditkit/invaudit/pkg/audit"
	"github.com/auditkit/invaudit/pkg/erp"
	"github.com/auditkit/invaudit/pkg/extract"
	"github.com/auditkit/invaudit/pkg/hashstore"
	"github.com/auditkit/invaudit/pkg/logging"
	"github.com/auditkit/invaudit/pkg/pipeline"
	"github.com/auditkit/invaudit/pkg/report"
	"github.com/auditkit/invaudit/pkg/rules"
	"github.com/auditkit/invaudit/pkg/vector"
)

// runtime bundles the wired-up workflows for one command invocation.
type runtime struct {
	cfg    *config.Config
	logger logging.Logger
	events audit.Sink
	pipe   *pipeline.Pipeline
	hashes hashstore.Store
	index  vector.Index
}

// buildRuntime constructs the collaborators once and injects them into the
// pipeline; nothing is initialized at import time.
func buildRuntime(deps *Deps) (*runtime, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	logger := logging.MustGlobal()

	events, err := audit.NewFileSink(audit.FileSinkConfig{Path: cfg.Logging.EventLogPath})
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}

	ruleSet := rules.DefaultRules()
	if cfg.RulesPath != "" {
		loaded, err := rules.LoadRules(cfg.RulesPath)
		if err != nil {
			logger.Warn("Rules file unusable, using built-in defaults",
				logging.F("path", cfg.RulesPath), logging.Err(err))
		} else {
			ruleSet = loaded
		}
	}

	erpClient := erp.NewClient(cfg.ERP.BaseURL, &erp.ClientOptions{Timeout: cfg.ERP.Timeout})
	engine := rules.NewEngine(ruleSet, erpClient, analysis.HeuristicAnomalyChecker{},
		rules.WithLogger(logger), rules.WithAuditSink(events))

	hashes, err := hashstore.OpenSQLite(cfg.Monitor.HashStorePath)
	if err != nil {
		events.Close()
		return nil, fmt.Errorf("opening hash store: %w", err)
	}

	index := vector.Index(vector.NopIndex{})

	pipe := pipeline.New(pipeline.Deps{
		Text:       extract.FileTextExtractor{},
		Structured: extract.JSONExtractor{},
		Translator: extract.IdentityTranslator{Confidence: 1.0},
		Validator:  engine,
		Assembler:  report.NewAssembler(analysis.HeuristicAnalyzer{}, logger),
		Index:      index,
		Dirs: pipeline.Dirs{
			Processed: cfg.Directories.Processed,
			Review:    cfg.Directories.Review,
		},
		Events: events,
		Logger: logger,
	})

	return &runtime{
		cfg:    cfg,
		logger: logger,
		events: events,
		pipe:   pipe,
		hashes: hashes,
		index:  index,
	}, nil
}

// close flushes the event log and releases the hash store.
func (r *runtime) close() {
	if err := r.events.Close(); err != nil {
		r.logger.Error("Closing event log failed", logging.Err(err))
	}
	if err := r.hashes.Close(); err != nil {
		r.logger.Error("Closing hash store failed", logging.Err(err))
	}
}
