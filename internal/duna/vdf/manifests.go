package vdf

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"

	"github.com/example/dunaswap/internal/duna/domain"
)

// steamID64Base is the offset between a 64-bit individual SteamID and the
// 32-bit account id used as the userdata folder name.
const steamID64Base = 76561197960265728

// AccountInfo is the login-registry view of one account.
type AccountInfo struct {
	DisplayName string
	LastLogin   time.Time
}

// Accounts reads <root>/config/loginusers.vdf and returns account info keyed
// by account id. Entries are keyed both by their 64-bit SteamID as written
// and by the derived 32-bit account id, since userdata folders use the
// latter. A missing or malformed file yields an empty map, never an error:
// partial metadata must not block profile discovery.
func Accounts(fs afero.Fs, installRoot string) map[string]AccountInfo {
	infos := make(map[string]AccountInfo)

	f, err := fs.Open(filepath.Join(installRoot, "config", "loginusers.vdf"))
	if err != nil {
		return infos
	}
	defer f.Close()

	root, err := Parse(f)
	if err != nil {
		return infos
	}

	users := root.Child("users")
	if users == nil {
		return infos
	}

	for _, user := range users.Children {
		if user.HasValue {
			continue
		}
		name := user.String("PersonaName")
		if name == "" {
			name = user.String("AccountName")
		}

		var lastLogin time.Time
		if ts, err := strconv.ParseInt(user.String("Timestamp"), 10, 64); err == nil && ts > 0 {
			lastLogin = time.Unix(ts, 0)
		}

		info := AccountInfo{DisplayName: name, LastLogin: lastLogin}
		infos[user.Key] = info
		if id64, err := strconv.ParseUint(user.Key, 10, 64); err == nil && id64 > steamID64Base {
			infos[strconv.FormatUint(id64-steamID64Base, 10)] = info
		}
	}
	return infos
}

// InstalledGame scans the library roots in order for appmanifest_<id>.acf
// and returns the declared game name. First match wins. Manifests that are
// missing, unreadable, malformed, or nameless are skipped.
func InstalledGame(fs afero.Fs, libraryRoots []string, gameID string) (domain.GameInfo, bool) {
	state, ok := appState(fs, libraryRoots, gameID)
	if !ok {
		return domain.GameInfo{}, false
	}
	name := state.String("name")
	if name == "" {
		return domain.GameInfo{}, false
	}
	return domain.GameInfo{ID: gameID, Name: name}, true
}

// InstallDir returns the installdir declared by the game's manifest, used
// by the process guard to match running executables.
func InstallDir(fs afero.Fs, libraryRoots []string, gameID string) (string, bool) {
	state, ok := appState(fs, libraryRoots, gameID)
	if !ok {
		return "", false
	}
	dir := state.String("installdir")
	return dir, dir != ""
}

func appState(fs afero.Fs, libraryRoots []string, gameID string) (*Node, bool) {
	manifest := fmt.Sprintf("appmanifest_%s.acf", gameID)
	for _, dir := range libraryRoots {
		f, err := fs.Open(filepath.Join(dir, manifest))
		if err != nil {
			continue
		}
		root, err := Parse(f)
		f.Close()
		if err != nil {
			continue
		}
		if state := root.Child("AppState"); state != nil {
			return state, true
		}
	}
	return nil, false
}

// LibraryRoots returns the steamapps directories of the installation: the
// root's own steamapps first, then each additional library declared in
// steamapps/libraryfolders.vdf, deduplicated in declaration order. When the
// manifest is absent or unparsable only the root library is returned.
func LibraryRoots(fs afero.Fs, installRoot string) []string {
	main := filepath.Join(installRoot, "steamapps")
	roots := []string{main}
	seen := map[string]bool{main: true}

	f, err := fs.Open(filepath.Join(main, "libraryfolders.vdf"))
	if err != nil {
		return roots
	}
	defer f.Close()

	root, err := Parse(f)
	if err != nil {
		return roots
	}

	folders := root.Child("libraryfolders")
	if folders == nil {
		return roots
	}
	for _, folder := range folders.Children {
		if folder.HasValue {
			continue
		}
		path := folder.String("path")
		if path == "" {
			continue
		}
		lib := filepath.Join(filepath.FromSlash(path), "steamapps")
		if !seen[lib] {
			seen[lib] = true
			roots = append(roots, lib)
		}
	}
	return roots
}
