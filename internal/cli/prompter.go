package cli

import "errors"

// ErrPromptCancelled indicates that the user aborted an interactive prompt.
var ErrPromptCancelled = errors.New("prompt cancelled")

// Prompter abstracts the interactive prompts used by the swap flow so
// command logic can be driven by a fake in tests.
type Prompter interface {
	Select(label string, items []string, defaultValue string) (int, string, error)
	MultiSelect(label string, items []string) ([]int, error)
	Confirm(label string, defaultYes bool) (bool, error)
}
