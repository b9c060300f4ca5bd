package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/dunaswap/internal/duna"
	"github.com/example/dunaswap/internal/duna/domain"
)

// NewRootCommand constructs the root Cobra command for dunaswap.
// steamPath, when non-empty, overrides installation detection for every
// subcommand (set from the --path flag, environment, or config file).
// pollInterval is the cadence at which swap --wait re-checks the process
// guard.
func NewRootCommand(engine *duna.Engine, prompter Prompter, steamPath string, pollInterval time.Duration, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dunaswap",
		Short: "Steam profile game-config swapper",
		Long:  "dunaswap copies per-game configuration between Steam accounts, backing up overwritten data.",
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	override := &steamPath
	cmd.PersistentFlags().StringVar(override, "path", steamPath,
		"Steam installation or userdata path (overrides detection)")

	cmd.AddCommand(newDetectCommand(engine, override, stdout))
	cmd.AddCommand(newProfilesCommand(engine, override, stdout))
	cmd.AddCommand(newGamesCommand(engine, override, stdout))
	cmd.AddCommand(newSummaryCommand(engine, override, stdout))
	cmd.AddCommand(newSwapCommand(engine, prompter, override, pollInterval, stdout, stderr))
	cmd.AddCommand(newRunningCommand(engine, override, stdout))

	return cmd
}

// resolveInstallation validates the override path when set, otherwise
// probes the platform's conventional locations.
func resolveInstallation(engine *duna.Engine, override string) (domain.Installation, error) {
	if strings.TrimSpace(override) != "" {
		return engine.ValidatePath(override)
	}
	inst, err := engine.DetectInstallation()
	if err != nil {
		return domain.Installation{}, fmt.Errorf("%w (use --path to point at the Steam folder)", err)
	}
	return inst, nil
}

func newDetectCommand(engine *duna.Engine, override *string, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Locate the Steam installation",
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := resolveInstallation(engine, *override)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Steam root: %s\n", inst.Root)
			fmt.Fprintf(stdout, "Userdata:   %s\n", inst.UserdataRoot)
			for _, lib := range inst.LibraryRoots {
				fmt.Fprintf(stdout, "Library:    %s\n", lib)
			}
			return nil
		},
	}
}

func newProfilesCommand(engine *duna.Engine, override *string, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List accounts with configuration data",
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := resolveInstallation(engine, *override)
			if err != nil {
				return err
			}
			accounts := engine.ListAccounts(inst)
			if len(accounts) == 0 {
				fmt.Fprintln(stdout, "No profiles found.")
				return nil
			}
			for _, account := range accounts {
				tag := ""
				if account.IsBackup {
					tag = " [backup]"
				}
				fmt.Fprintf(stdout, "%s (%s)%s - %d game(s), last login %s\n",
					account.DisplayName, account.ID, tag, account.GameCount,
					formatTime(account.LastLogin))
			}
			return nil
		},
	}
}

func newGamesCommand(engine *duna.Engine, override *string, stdout io.Writer) *cobra.Command {
	var backup bool
	cmd := &cobra.Command{
		Use:   "games <account-id>",
		Short: "List a profile's games with configuration data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := resolveInstallation(engine, *override)
			if err != nil {
				return err
			}
			games := engine.GamesForAccount(inst, args[0], backup)
			if len(games) == 0 {
				fmt.Fprintln(stdout, "No recognized games found.")
				return nil
			}
			for _, game := range games {
				fmt.Fprintf(stdout, "%s (%s)\n", game.Name, game.ID)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&backup, "backup", false, "Treat the account id as a backup profile")
	return cmd
}

func newSummaryCommand(engine *duna.Engine, override *string, stdout io.Writer) *cobra.Command {
	var sourceID string
	var sourceBackup bool
	var targetIDs, gameIDs []string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Preview a swap without performing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := resolveInstallation(engine, *override)
			if err != nil {
				return err
			}
			summary, err := engine.SummarizeSwap(inst, sourceID, sourceBackup, targetIDs, gameIDs)
			if err != nil {
				return err
			}
			printSummary(stdout, summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceID, "source", "", "Source account id")
	cmd.Flags().BoolVar(&sourceBackup, "source-backup", false, "Source is a backup profile")
	cmd.Flags().StringSliceVar(&targetIDs, "target", nil, "Target account id (repeatable)")
	cmd.Flags().StringSliceVar(&gameIDs, "game", nil, "Game id (repeatable)")
	cmd.MarkFlagRequired("source")
	cmd.MarkFlagRequired("target")
	cmd.MarkFlagRequired("game")
	return cmd
}

func newSwapCommand(engine *duna.Engine, prompter Prompter, override *string, pollInterval time.Duration, stdout, stderr io.Writer) *cobra.Command {
	var sourceID string
	var sourceBackup bool
	var targetIDs, gameIDs []string
	var force bool
	var wait bool

	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Copy game configuration from one profile to others",
		Long: "swap mirrors the selected games' configuration from the source profile onto " +
			"each target profile. The target's previous data is kept as a restorable backup " +
			"under dunabackups. Run without flags for an interactive selection.",
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := resolveInstallation(engine, *override)
			if err != nil {
				return err
			}

			if sourceID == "" {
				sourceID, sourceBackup, err = pickSource(engine, prompter, inst)
				if err != nil {
					return err
				}
			}
			if len(gameIDs) == 0 {
				gameIDs, err = pickGames(engine, prompter, inst, sourceID, sourceBackup)
				if err != nil {
					return err
				}
			}
			if len(targetIDs) == 0 {
				targetIDs, err = pickTargets(engine, prompter, inst, sourceID, sourceBackup)
				if err != nil {
					return err
				}
			}

			summary, err := engine.SummarizeSwap(inst, sourceID, sourceBackup, targetIDs, gameIDs)
			if err != nil {
				return err
			}
			printSummary(stdout, summary)

			if wait {
				if err := waitForGamesToExit(cmd.Context(), engine, inst, gameIDs, pollInterval, stderr); err != nil {
					return err
				}
			}

			if engine.IsAnyGameRunning(cmd.Context(), inst, gameIDs) {
				fmt.Fprintln(stderr, "Warning: a selected game appears to be running. Close it before swapping to avoid corrupted configuration.")
				if !force {
					proceed, err := prompter.Confirm("Swap anyway?", false)
					if err != nil {
						return err
					}
					if !proceed {
						fmt.Fprintln(stdout, "Swap cancelled.")
						return nil
					}
				}
			}

			if !force {
				proceed, err := prompter.Confirm("Proceed with swap?", false)
				if err != nil {
					return err
				}
				if !proceed {
					fmt.Fprintln(stdout, "Swap cancelled.")
					return nil
				}
			}

			result := engine.ExecuteSwap(cmd.Context(), inst, sourceID, sourceBackup, targetIDs, gameIDs)
			for _, detail := range result.Details {
				fmt.Fprintln(stdout, detail)
			}
			fmt.Fprintln(stdout, result.Message)
			if !result.Success {
				return errors.New("swap finished with errors")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceID, "source", "", "Source account id")
	cmd.Flags().BoolVar(&sourceBackup, "source-backup", false, "Source is a backup profile")
	cmd.Flags().StringSliceVar(&targetIDs, "target", nil, "Target account id (repeatable)")
	cmd.Flags().StringSliceVar(&gameIDs, "game", nil, "Game id (repeatable)")
	cmd.Flags().BoolVar(&force, "force", false, "Do not prompt for confirmation")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for running games to exit before swapping")
	return cmd
}

// waitForGamesToExit polls the process guard at the configured cadence
// until no selected game is running or the context is cancelled.
func waitForGamesToExit(ctx context.Context, engine *duna.Engine, inst domain.Installation, gameIDs []string, interval time.Duration, stderr io.Writer) error {
	if !engine.IsAnyGameRunning(ctx, inst, gameIDs) {
		return nil
	}
	fmt.Fprintln(stderr, "Waiting for running games to exit...")
	for engine.IsAnyGameRunning(ctx, inst, gameIDs) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return nil
}

func newRunningCommand(engine *duna.Engine, override *string, stdout io.Writer) *cobra.Command {
	var gameIDs []string
	cmd := &cobra.Command{
		Use:   "running",
		Short: "Check whether selected games are running",
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := resolveInstallation(engine, *override)
			if err != nil {
				return err
			}
			if engine.IsAnyGameRunning(cmd.Context(), inst, gameIDs) {
				fmt.Fprintln(stdout, "running")
			} else {
				fmt.Fprintln(stdout, "not running")
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&gameIDs, "game", nil, "Game id (repeatable)")
	cmd.MarkFlagRequired("game")
	return cmd
}

func pickSource(engine *duna.Engine, prompter Prompter, inst domain.Installation) (string, bool, error) {
	accounts := engine.ListAccounts(inst)
	if len(accounts) == 0 {
		return "", false, errors.New("no profiles found")
	}
	items := make([]string, 0, len(accounts))
	for _, account := range accounts {
		items = append(items, fmt.Sprintf("%s (%s)", account.DisplayName, account.ID))
	}
	idx, _, err := prompter.Select("Select source profile", items, "")
	if err != nil {
		return "", false, err
	}
	return accounts[idx].ID, accounts[idx].IsBackup, nil
}

func pickGames(engine *duna.Engine, prompter Prompter, inst domain.Installation, sourceID string, sourceBackup bool) ([]string, error) {
	games := engine.GamesForAccount(inst, sourceID, sourceBackup)
	if len(games) == 0 {
		return nil, errors.New("source profile has no recognized game data")
	}
	items := make([]string, 0, len(games))
	for _, game := range games {
		items = append(items, fmt.Sprintf("%s (%s)", game.Name, game.ID))
	}
	picked, err := prompter.MultiSelect("Select games to swap", items)
	if err != nil {
		return nil, err
	}
	if len(picked) == 0 {
		return nil, errors.New("no games selected")
	}
	ids := make([]string, 0, len(picked))
	for _, i := range picked {
		ids = append(ids, games[i].ID)
	}
	return ids, nil
}

func pickTargets(engine *duna.Engine, prompter Prompter, inst domain.Installation, sourceID string, sourceBackup bool) ([]string, error) {
	var candidates []domain.Account
	for _, account := range engine.ListAccounts(inst) {
		if account.IsBackup {
			continue
		}
		if !sourceBackup && account.ID == sourceID {
			continue
		}
		candidates = append(candidates, account)
	}
	if len(candidates) == 0 {
		return nil, errors.New("no eligible target profiles")
	}
	items := make([]string, 0, len(candidates))
	for _, account := range candidates {
		items = append(items, fmt.Sprintf("%s (%s)", account.DisplayName, account.ID))
	}
	picked, err := prompter.MultiSelect("Select target profiles", items)
	if err != nil {
		return nil, err
	}
	if len(picked) == 0 {
		return nil, errors.New("no targets selected")
	}
	ids := make([]string, 0, len(picked))
	for _, i := range picked {
		ids = append(ids, candidates[i].ID)
	}
	return ids, nil
}

func printSummary(w io.Writer, summary domain.SwapSummary) {
	targets := make([]string, 0, len(summary.Targets))
	for _, t := range summary.Targets {
		targets = append(targets, fmt.Sprintf("%s (%s)", t.DisplayName, t.ID))
	}
	fmt.Fprintf(w, "Source:       %s (%s)\n", summary.Source.DisplayName, summary.Source.ID)
	fmt.Fprintf(w, "Targets:      %s\n", strings.Join(targets, ", "))
	fmt.Fprintf(w, "Data size:    %s in %d file(s), %d folder(s)\n",
		formatSize(summary.Stats.TotalSize), summary.Stats.FileCount, summary.Stats.FolderCount)
	fmt.Fprintf(w, "Last changed: %s\n", formatTime(summary.Stats.LatestMod))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "Never"
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
