package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

const (
	// defaultMenuSize is the number of items visible in selection menus
	defaultMenuSize = 10

	doneItem = "[Done]"
)

type PromptUI struct {
	stdin  io.ReadCloser
	stdout io.WriteCloser
}

func NewPromptUI() *PromptUI {
	return &PromptUI{stdin: os.Stdin, stdout: os.Stdout}
}

func NewPromptUIWithIO(stdin io.Reader, stdout io.Writer) *PromptUI {
	pu := &PromptUI{stdin: os.Stdin, stdout: os.Stdout}
	if stdin != nil {
		pu.stdin = toReadCloser(stdin)
	}
	if stdout != nil {
		pu.stdout = toWriteCloser(stdout)
	}
	return pu
}

func (p *PromptUI) Select(label string, items []string, defaultValue string) (int, string, error) {
	cursor := 0
	if defaultValue != "" {
		for i, item := range items {
			if item == defaultValue {
				cursor = i
				break
			}
		}
	}

	selectPrompt := promptui.Select{
		Label:     label,
		Items:     items,
		Size:      defaultMenuSize,
		HideHelp:  true,
		CursorPos: cursor,
		Stdin:     p.stdin,
		Stdout:    p.stdout,
	}

	idx, value, err := selectPrompt.Run()
	if err != nil {
		return idx, value, fmt.Errorf("%w: %v", ErrPromptCancelled, err)
	}
	return idx, value, nil
}

// MultiSelect repeatedly shows a toggle menu until the user picks the done
// entry, then returns the indices of the checked items in item order.
func (p *PromptUI) MultiSelect(label string, items []string) ([]int, error) {
	checked := make([]bool, len(items))
	cursor := 0

	for {
		menu := make([]string, 0, len(items)+1)
		for i, item := range items {
			mark := "[ ]"
			if checked[i] {
				mark = "[x]"
			}
			menu = append(menu, mark+" "+item)
		}
		menu = append(menu, doneItem)

		selectPrompt := promptui.Select{
			Label:     label,
			Items:     menu,
			Size:      defaultMenuSize,
			HideHelp:  true,
			CursorPos: cursor,
			Stdin:     p.stdin,
			Stdout:    p.stdout,
		}

		idx, _, err := selectPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPromptCancelled, err)
		}
		if idx == len(items) {
			break
		}
		checked[idx] = !checked[idx]
		cursor = idx
	}

	var selected []int
	for i, isChecked := range checked {
		if isChecked {
			selected = append(selected, i)
		}
	}
	return selected, nil
}

func (p *PromptUI) Confirm(label string, defaultYes bool) (bool, error) {
	def := "N"
	if defaultYes {
		def = "Y"
	}
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Default:   def,
		Stdin:     p.stdin,
		Stdout:    p.stdout,
	}
	result, err := prompt.Run()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPromptCancelled, err)
	}
	return strings.EqualFold(result, "y") || (result == "" && defaultYes), nil
}

func toReadCloser(r io.Reader) io.ReadCloser {
	if rc, ok := r.(io.ReadCloser); ok {
		return rc
	}
	return io.NopCloser(r)
}

func toWriteCloser(w io.Writer) io.WriteCloser {
	if wc, ok := w.(io.WriteCloser); ok {
		return wc
	}
	return nopWriteCloser{Writer: w}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}
