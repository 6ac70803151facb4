package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/doeshing/trustgate/internal/domain"
	"github.com/doeshing/trustgate/internal/infrastructure/audit"
	"github.com/doeshing/trustgate/internal/infrastructure/config"
	"github.com/doeshing/trustgate/internal/infrastructure/detect"
	"github.com/doeshing/trustgate/internal/infrastructure/executor"
	"github.com/doeshing/trustgate/internal/infrastructure/history"
	"github.com/doeshing/trustgate/internal/infrastructure/intent"
	"github.com/doeshing/trustgate/internal/infrastructure/ledger"
	"github.com/doeshing/trustgate/internal/infrastructure/sandbox"
	"github.com/doeshing/trustgate/internal/infrastructure/security"
	"github.com/doeshing/trustgate/internal/infrastructure/suggest"
	"github.com/doeshing/trustgate/internal/pkg/logger"
	"github.com/doeshing/trustgate/internal/ports"
	"github.com/doeshing/trustgate/internal/services"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Learning       *services.LearningService
	Doctor         *services.DoctorService
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	Ledger         ports.LedgerStore
	History        ports.HistoryRepository
	Audit          *audit.Log
	Config         domain.Config
	ProjectRoot    string
	Logger         ports.Logger
}

// BuildContainer constructs the dependency graph rooted at the current
// working directory.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose)

	projectRoot, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	dataDir := cfg.DataDirFor(projectRoot)

	classifier, err := security.NewClassifier(cfg.Security.ExtraPatterns)
	if err != nil {
		return nil, err
	}
	validator := intent.NewValidator()
	detector := detect.NewMarkerDetector()

	exec := executor.NewLocalExecutor(cfg.Shell())
	verifier := sandbox.NewVerifier(exec, cfg.VerificationTimeout(), cfg.SampleLimit(), log)

	auditLog := audit.NewLog(filepath.Join(dataDir, audit.FileName), log)
	ledgerStore, err := ledger.NewStore(dataDir, auditLog, log)
	if err != nil {
		return nil, err
	}
	historyStore := history.NewStore(dataDir, cfg.HistoryBackend())

	learning := &services.LearningService{
		Ledger:      ledgerStore,
		Safety:      classifier,
		Validator:   validator,
		Sandbox:     verifier,
		Executor:    exec,
		Detector:    detector,
		Sources:     []ports.CommandSource{suggest.NewHeuristicSource()},
		History:     historyStore,
		Logger:      log,
		Config:      cfg,
		ProjectRoot: projectRoot,
	}

	doctor := &services.DoctorService{
		ConfigProvider: cfgLoader,
		ConfigPath:     cfgLoader.Path(),
		Safety:         classifier,
		Validator:      validator,
		Detector:       detector,
		Ledger:         ledgerStore,
		History:        historyStore,
		Executor:       exec,
		DataDir:        dataDir,
		AuditPath:      auditLog.Path(),
		ProjectRoot:    projectRoot,
	}

	return &Container{
		Learning:       learning,
		Doctor:         doctor,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		Ledger:         ledgerStore,
		History:        historyStore,
		Audit:          auditLog,
		Config:         cfg,
		ProjectRoot:    projectRoot,
		Logger:         log,
	}, nil
}
