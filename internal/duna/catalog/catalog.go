// Package catalog enumerates accounts and their swappable games.
package catalog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/example/dunaswap/internal/duna/domain"
	"github.com/example/dunaswap/internal/duna/storage"
	"github.com/example/dunaswap/internal/duna/vdf"
)

// Catalog lists accounts and resolves their installed games.
type Catalog struct {
	storage *storage.Storage
	logger  *slog.Logger
}

// New creates a new Catalog.
func New(storage *storage.Storage, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Catalog{storage: storage, logger: logger}
}

// ListAccounts enumerates the real accounts under the userdata root and the
// synthetic backup accounts under dunabackups. Real accounts come first,
// each group ordered by most recent login, ties by id. Directories that
// cannot be read are skipped; they never fail the whole listing.
func (c *Catalog) ListAccounts(inst domain.Installation) []domain.Account {
	infos := vdf.Accounts(c.storage.FileSystem(), inst.Root)

	var accounts []domain.Account
	accounts = append(accounts, c.realAccounts(inst, infos)...)
	accounts = append(accounts, c.backupAccounts(inst, infos)...)

	sort.SliceStable(accounts, func(i, j int) bool {
		a, b := accounts[i], accounts[j]
		if a.IsBackup != b.IsBackup {
			return !a.IsBackup
		}
		if !a.LastLogin.Equal(b.LastLogin) {
			return a.LastLogin.After(b.LastLogin)
		}
		return a.ID < b.ID
	})
	return accounts
}

func (c *Catalog) realAccounts(inst domain.Installation, infos map[string]vdf.AccountInfo) []domain.Account {
	dirs, err := c.storage.Subdirs(inst.UserdataRoot)
	if err != nil {
		c.logger.Warn("cannot read userdata root", "path", inst.UserdataRoot, "error", err)
		return nil
	}

	var accounts []domain.Account
	for _, dir := range dirs {
		id := dir.Name()
		if id == domain.BackupDirName || !isNumeric(id) {
			continue
		}
		path := filepath.Join(inst.UserdataRoot, id)
		gameIDs, ok := c.presentGames(path)
		if !ok {
			continue
		}

		account := domain.Account{
			ID:       id,
			Path:     path,
			GameIDs:  gameIDs,
			IsBackup: false,
		}
		if info, found := infos[id]; found {
			account.DisplayName = info.DisplayName
			account.LastLogin = info.LastLogin
		}
		if account.DisplayName == "" {
			account.DisplayName = id
		}
		account.GameCount = c.countInstalled(inst, gameIDs)
		accounts = append(accounts, account)
	}
	return accounts
}

func (c *Catalog) backupAccounts(inst domain.Installation, infos map[string]vdf.AccountInfo) []domain.Account {
	backupsRoot := filepath.Join(inst.UserdataRoot, domain.BackupDirName)
	dirs, err := c.storage.Subdirs(backupsRoot)
	if err != nil {
		return nil
	}

	var accounts []domain.Account
	for _, dir := range dirs {
		id := dir.Name()
		path := filepath.Join(backupsRoot, id)
		gameIDs, ok := c.presentGames(path)
		if !ok || len(gameIDs) == 0 {
			// A backup pseudo-account with no game data has nothing to offer
			// as a source.
			continue
		}

		name := id
		if info, found := infos[id]; found && info.DisplayName != "" {
			name = info.DisplayName
		}

		accounts = append(accounts, domain.Account{
			ID:          id,
			DisplayName: "Backup - " + name,
			LastLogin:   c.latestMod(path),
			IsBackup:    true,
			Path:        path,
			GameIDs:     gameIDs,
			GameCount:   c.countInstalled(inst, gameIDs),
		})
	}
	return accounts
}

// GamesForAccount resolves the account's present game directories against
// the installed-game manifests. Ids without resolvable metadata are
// omitted: the directory stays swappable by raw id but is not surfaced for
// selection. Ordered by name case-insensitively, ties by id.
func (c *Catalog) GamesForAccount(inst domain.Installation, accountID string, isBackup bool) []domain.GameInfo {
	path := AccountPath(inst, accountID, isBackup)
	gameIDs, ok := c.presentGames(path)
	if !ok {
		return nil
	}

	var games []domain.GameInfo
	for _, id := range gameIDs {
		if game, found := vdf.InstalledGame(c.storage.FileSystem(), inst.LibraryRoots, id); found {
			games = append(games, game)
		}
	}

	sort.Slice(games, func(i, j int) bool {
		a, b := strings.ToLower(games[i].Name), strings.ToLower(games[j].Name)
		if a != b {
			return a < b
		}
		return games[i].ID < games[j].ID
	})
	return games
}

// AccountPath returns the configuration root of an account: the userdata
// folder for real accounts, the dunabackups subtree for backup accounts.
func AccountPath(inst domain.Installation, accountID string, isBackup bool) string {
	if isBackup {
		return filepath.Join(inst.UserdataRoot, domain.BackupDirName, accountID)
	}
	return filepath.Join(inst.UserdataRoot, accountID)
}

// presentGames returns the numeric-named subdirectories of an account that
// hold meaningful game data, sorted by id. ok is false when the account
// directory itself cannot be read.
func (c *Catalog) presentGames(accountPath string) ([]string, bool) {
	dirs, err := c.storage.Subdirs(accountPath)
	if err != nil {
		return nil, false
	}
	ids := []string{}
	for _, dir := range dirs {
		if !isNumeric(dir.Name()) {
			continue
		}
		if c.hasMeaningfulData(filepath.Join(accountPath, dir.Name())) {
			ids = append(ids, dir.Name())
		}
	}
	sort.Strings(ids)
	return ids, true
}

// hasMeaningfulData reports whether the game directory contains anything
// beyond a lone remotecache.vdf, which Steam leaves behind for games with
// no actual configuration data.
func (c *Catalog) hasMeaningfulData(gamePath string) bool {
	entries, err := afero.ReadDir(c.storage.FileSystem(), gamePath)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(entry.Name(), "remotecache.vdf") {
			continue
		}
		return true
	}
	return false
}

func (c *Catalog) countInstalled(inst domain.Installation, gameIDs []string) int {
	count := 0
	for _, id := range gameIDs {
		if _, found := vdf.InstalledGame(c.storage.FileSystem(), inst.LibraryRoots, id); found {
			count++
		}
	}
	if count == 0 {
		return len(gameIDs)
	}
	return count
}

// latestMod returns the newest modification time of any file in the tree.
func (c *Catalog) latestMod(path string) time.Time {
	var latest time.Time
	c.storage.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil || info == nil {
			return nil
		}
		if !info.IsDir() && info.ModTime().After(latest) {
			latest = info.ModTime()
		}
		return nil
	})
	return latest
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
