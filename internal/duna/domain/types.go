// Package domain holds the shared types and sentinel errors of the swap engine.
package domain

import "time"

// BackupDirName is the reserved folder under the account data root that
// stores single-generation pre-swap backups, one subtree per account id.
const BackupDirName = "dunabackups"

// Installation describes a resolved Steam installation. Immutable once
// resolved; re-resolved on explicit re-validation.
type Installation struct {
	Root         string   // installation root (contains userdata, steamapps, config)
	UserdataRoot string   // per-account data root
	LibraryRoots []string // steamapps directories in configured library order
}

// Account is one user profile within the userdata store. IsBackup marks a
// synthetic account representing a saved backup tree; backup accounts are
// selectable as swap sources only, never as targets.
type Account struct {
	ID          string
	DisplayName string
	LastLogin   time.Time // zero when unknown
	IsBackup    bool
	Path        string
	GameIDs     []string // numeric game dirs with data present, sorted
	GameCount   int      // recognized installed games among GameIDs
}

// GameInfo names one installed game resolved from library manifests.
type GameInfo struct {
	ID   string
	Name string
}

// DirStats aggregates a recursive walk over one or more directory trees.
type DirStats struct {
	TotalSize   int64
	FileCount   int
	FolderCount int
	LatestMod   time.Time // zero when nothing was visited
}

// SwapSummary is the pre-swap preview for a (source, games, targets)
// selection. Computed on demand, never persisted.
type SwapSummary struct {
	Source  Account
	Targets []Account
	Stats   DirStats
}

// SwapResult reports the outcome of a swap. Detail lines carry an
// "Error: " or "Warning: " prefix for classification by the caller;
// untagged lines are successes.
type SwapResult struct {
	Success bool
	Message string
	Details []string
}
