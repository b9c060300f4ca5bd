// Package swap performs the backup-then-replace operation at the heart of
// the engine.
package swap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/example/dunaswap/internal/duna/catalog"
	"github.com/example/dunaswap/internal/duna/domain"
	"github.com/example/dunaswap/internal/duna/storage"
)

// Executor copies game configuration trees between accounts, always
// preserving the overwritten target data as a single-generation backup
// under dunabackups/<account>/<game>.
type Executor struct {
	storage *storage.Storage
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a new Executor.
func New(storage *storage.Storage, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Executor{
		storage: storage,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Execute swaps the selected games from the source account onto every
// target account. Each (target, game) pair is attempted independently:
// a failure is recorded as an "Error:" detail and does not abort the
// remaining pairs. The call never returns an error itself; the outcome is
// always a structured SwapResult.
//
// Per pair, the target's current tree is mirrored into the backup location
// before being replaced. If the backup step fails the replace step is not
// attempted, so the target is never overwritten without a safety copy.
// Cancelling the context skips pairs not yet started; it never interrupts a
// pair between its backup and replace steps.
func (e *Executor) Execute(ctx context.Context, inst domain.Installation, sourceID string, sourceIsBackup bool, targetIDs, gameIDs []string) domain.SwapResult {
	sourceBase := catalog.AccountPath(inst, sourceID, sourceIsBackup)

	hasAnySource := false
	for _, gameID := range gameIDs {
		if e.storage.DirExists(filepath.Join(sourceBase, gameID)) {
			hasAnySource = true
			break
		}
	}
	if !hasAnySource {
		return domain.SwapResult{Success: false, Message: "Source game data not found"}
	}

	backupsRoot := filepath.Join(inst.UserdataRoot, domain.BackupDirName)
	if err := e.storage.MkdirAll(backupsRoot); err != nil {
		return domain.SwapResult{
			Success: false,
			Message: fmt.Sprintf("Failed to create backups directory: %v", err),
		}
	}

	var details []string
	swapped := make(map[string]bool)
	targetsHit := make(map[string]bool)

	for _, targetID := range targetIDs {
		for _, gameID := range gameIDs {
			if ctx.Err() != nil {
				details = append(details, fmt.Sprintf(
					"Warning: cancelled before swapping game %s to profile %s", gameID, targetID))
				continue
			}
			if ok := e.swapPair(inst, sourceBase, targetID, gameID, &details); ok {
				swapped[gameID] = true
				targetsHit[targetID] = true
			}
		}
	}

	errCount := 0
	for _, d := range details {
		if strings.HasPrefix(d, "Error:") {
			errCount++
		}
	}

	result := domain.SwapResult{Success: errCount == 0, Details: details}
	if errCount == 0 {
		result.Message = fmt.Sprintf("Swapped %d game(s) to %d target(s)", len(swapped), len(targetsHit))
	} else {
		result.Message = fmt.Sprintf("Completed with %d error(s)", errCount)
	}
	return result
}

// swapPair runs the backup-then-replace sequence for one (target, game)
// pair and reports whether the replace succeeded.
func (e *Executor) swapPair(inst domain.Installation, sourceBase, targetID, gameID string, details *[]string) bool {
	sourceGame := filepath.Join(sourceBase, gameID)
	if !e.storage.DirExists(sourceGame) {
		*details = append(*details, fmt.Sprintf(
			"Warning: source has no data for game %s; skipped for profile %s", gameID, targetID))
		return false
	}

	// Overlapping swaps against the same pair would race on the single
	// backup generation, so serialize them.
	lock := e.pairLock(targetID, gameID)
	lock.Lock()
	defer lock.Unlock()

	targetGame := filepath.Join(inst.UserdataRoot, targetID, gameID)
	backupGame := filepath.Join(inst.UserdataRoot, domain.BackupDirName, targetID, gameID)

	if e.storage.DirExists(targetGame) {
		// Restoring a profile's own backup aliases the source with the
		// backup slot. Mirroring the target into the slot would destroy the
		// source before it is read, so stage the source aside first and
		// replace from the staged copy.
		if backupGame == sourceGame {
			stage := backupGame + ".restoring"
			if err := e.storage.MirrorTree(sourceGame, stage); err != nil {
				e.logger.Error("restore staging failed",
					"target", targetID, "game", gameID, "error", err)
				*details = append(*details, fmt.Sprintf(
					"Error: failed to copy game %s to %s: %v", gameID, targetID, err))
				return false
			}
			defer e.storage.RemoveAll(stage)
			sourceGame = stage
		}
		if err := e.storage.MirrorTree(targetGame, backupGame); err != nil {
			e.logger.Error("backup failed",
				"target", targetID, "game", gameID, "error", err)
			*details = append(*details, fmt.Sprintf(
				"Error: backup failed for %s/%s: %v", targetID, gameID, err))
			return false
		}
		e.logger.Info("backup created", "target", targetID, "game", gameID, "path", backupGame)
		*details = append(*details, fmt.Sprintf(
			"Backed up game %s for profile %s", gameID, targetID))
	}

	if err := e.storage.MirrorTree(sourceGame, targetGame); err != nil {
		e.logger.Error("replace failed",
			"target", targetID, "game", gameID, "error", err)
		*details = append(*details, fmt.Sprintf(
			"Error: failed to copy game %s to %s: %v", gameID, targetID, err))
		return false
	}

	e.logger.Info("game swapped", "target", targetID, "game", gameID)
	*details = append(*details, fmt.Sprintf(
		"Swapped game %s to profile %s", gameID, targetID))
	return true
}

func (e *Executor) pairLock(targetID, gameID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := targetID + "/" + gameID
	lock, ok := e.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[key] = lock
	}
	return lock
}
