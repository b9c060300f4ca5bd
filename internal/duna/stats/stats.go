// Package stats computes aggregate size and modification figures over
// configuration trees.
package stats

import (
	"os"

	"github.com/example/dunaswap/internal/duna/domain"
	"github.com/example/dunaswap/internal/duna/storage"
)

// Summarizer walks configuration trees without following symlinks.
type Summarizer struct {
	storage *storage.Storage
}

// New creates a new Summarizer.
func New(storage *storage.Storage) *Summarizer {
	return &Summarizer{storage: storage}
}

// Summarize walks each given directory tree and accumulates total byte
// size, file count, folder count (including each given root), and the
// latest modification time across files and folders. A path that does not
// exist contributes zero to all counters; a game directory may be absent on
// an account that nonetheless lists it.
func (s *Summarizer) Summarize(paths ...string) domain.DirStats {
	var agg domain.DirStats
	for _, path := range paths {
		if !s.storage.DirExists(path) {
			continue
		}
		s.storage.Walk(path, func(_ string, info os.FileInfo, err error) error {
			if err != nil || info == nil {
				// Unreadable entries contribute nothing.
				return nil
			}
			if info.Mode()&os.ModeSymlink != 0 {
				return nil
			}
			if info.IsDir() {
				agg.FolderCount++
			} else {
				agg.FileCount++
				agg.TotalSize += info.Size()
			}
			if info.ModTime().After(agg.LatestMod) {
				agg.LatestMod = info.ModTime()
			}
			return nil
		})
	}
	return agg
}
