// Package tui provides an interactive terminal dialog to choose the sub-datasets to import
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/airbusgeo/gridio/internal/gridio"
	tea "github.com/charmbracelet/bubbletea"
)

// Dialog is a svc.Selector asking the user which sub-datasets to import
type Dialog struct {
	Input  io.Reader
	Output io.Writer
}

// Select runs the dialog until the user accepts or cancels it.
// A cancelled dialog returns no sub-dataset.
func (d Dialog) Select(ctx context.Context, file string, subDatasets []gridio.SubDataset) ([]gridio.SubDataset, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if d.Input != nil {
		opts = append(opts, tea.WithInput(d.Input))
	}
	if d.Output != nil {
		opts = append(opts, tea.WithOutput(d.Output))
	}
	final, err := tea.NewProgram(NewModel(file, subDatasets), opts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("dialog: %w", err)
	}
	return final.(Model).Selected(), nil
}
