// Package duna exposes the profile/game discovery and swap engine as a
// small set of request/response operations for a presentation layer.
package duna

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/example/dunaswap/internal/duna/catalog"
	"github.com/example/dunaswap/internal/duna/domain"
	"github.com/example/dunaswap/internal/duna/procguard"
	"github.com/example/dunaswap/internal/duna/stats"
	"github.com/example/dunaswap/internal/duna/steam"
	"github.com/example/dunaswap/internal/duna/storage"
	"github.com/example/dunaswap/internal/duna/swap"
)

// Engine wires the engine components over a shared filesystem. Each
// operation runs to completion independently; the engine keeps no
// background tasks of its own.
type Engine struct {
	locator    *steam.Locator
	catalog    *catalog.Catalog
	summarizer *stats.Summarizer
	executor   *swap.Executor
	guard      *procguard.Guard
}

// NewEngine creates an Engine over the given filesystem.
func NewEngine(fs afero.Fs, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	stor := storage.New(fs)
	return &Engine{
		locator:    steam.NewLocator(fs),
		catalog:    catalog.New(stor, logger),
		summarizer: stats.New(stor),
		executor:   swap.New(stor, logger),
		guard:      procguard.New(fs, logger),
	}
}

// NewEngineWith creates an Engine with explicit components, for tests and
// for callers that need a custom locator or process lister.
func NewEngineWith(locator *steam.Locator, cat *catalog.Catalog, sum *stats.Summarizer, exec *swap.Executor, guard *procguard.Guard) *Engine {
	return &Engine{
		locator:    locator,
		catalog:    cat,
		summarizer: sum,
		executor:   exec,
		guard:      guard,
	}
}

// DetectInstallation probes the platform's conventional Steam locations.
func (e *Engine) DetectInstallation() (domain.Installation, error) {
	return e.locator.Detect()
}

// ValidatePath validates a user-supplied installation or userdata path.
func (e *Engine) ValidatePath(path string) (domain.Installation, error) {
	return e.locator.Validate(path)
}

// ListAccounts enumerates real and backup accounts.
func (e *Engine) ListAccounts(inst domain.Installation) []domain.Account {
	return e.catalog.ListAccounts(inst)
}

// GamesForAccount lists the recognized installed games with data present
// under the account.
func (e *Engine) GamesForAccount(inst domain.Installation, accountID string, isBackup bool) []domain.GameInfo {
	return e.catalog.GamesForAccount(inst, accountID, isBackup)
}

// SummarizeSwap computes the pre-swap preview: the resolved source and
// target accounts plus aggregate stats over the selected games' source
// directories. Absent game directories contribute zero. Backup accounts
// are never accepted as targets.
func (e *Engine) SummarizeSwap(inst domain.Installation, sourceID string, sourceIsBackup bool, targetIDs, gameIDs []string) (domain.SwapSummary, error) {
	if len(gameIDs) == 0 {
		return domain.SwapSummary{}, domain.ErrNoGames
	}

	accounts := e.catalog.ListAccounts(inst)

	var source *domain.Account
	for i := range accounts {
		if accounts[i].ID == sourceID && accounts[i].IsBackup == sourceIsBackup {
			source = &accounts[i]
			break
		}
	}
	if source == nil {
		return domain.SwapSummary{}, fmt.Errorf("%w: source %s", domain.ErrAccountNotFound, sourceID)
	}

	targets := filterTargets(accounts, targetIDs)
	if len(targets) == 0 {
		return domain.SwapSummary{}, domain.ErrNoTargets
	}

	paths := make([]string, 0, len(gameIDs))
	for _, gameID := range gameIDs {
		paths = append(paths, filepath.Join(source.Path, gameID))
	}

	return domain.SwapSummary{
		Source:  *source,
		Targets: targets,
		Stats:   e.summarizer.Summarize(paths...),
	}, nil
}

// ExecuteSwap performs the backup-then-replace operation for the selection.
// Target ids naming backup accounts or unknown accounts are dropped before
// execution; the call always returns a structured result.
func (e *Engine) ExecuteSwap(ctx context.Context, inst domain.Installation, sourceID string, sourceIsBackup bool, targetIDs, gameIDs []string) domain.SwapResult {
	targets := filterTargets(e.catalog.ListAccounts(inst), targetIDs)
	if len(targets) == 0 {
		return domain.SwapResult{Success: false, Message: "No valid target profiles found"}
	}
	if len(gameIDs) == 0 {
		return domain.SwapResult{Success: false, Message: "No games selected"}
	}

	ids := make([]string, 0, len(targets))
	for _, t := range targets {
		ids = append(ids, t.ID)
	}
	return e.executor.Execute(ctx, inst, sourceID, sourceIsBackup, ids, gameIDs)
}

// IsAnyGameRunning reports whether a process of any selected game is
// active. Advisory only; enumeration failures read as false.
func (e *Engine) IsAnyGameRunning(ctx context.Context, inst domain.Installation, gameIDs []string) bool {
	return e.guard.IsAnyRunning(ctx, inst, gameIDs)
}

// filterTargets keeps the real (non-backup) accounts named by targetIDs.
// Backup pseudo-accounts are sources only; dropping them here enforces the
// capability restriction at the engine boundary.
func filterTargets(accounts []domain.Account, targetIDs []string) []domain.Account {
	wanted := make(map[string]bool, len(targetIDs))
	for _, id := range targetIDs {
		wanted[id] = true
	}
	var targets []domain.Account
	for _, account := range accounts {
		if !account.IsBackup && wanted[account.ID] {
			targets = append(targets, account)
		}
	}
	return targets
}
