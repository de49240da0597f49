// ABOUTME: TUI CLI command
// ABOUTME: Launches the full-screen contact browser on the selected address book
package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/networkia/networkia/agenda"
	"github.com/networkia/networkia/tui"
)

// TUICommand runs the interactive browser until the user quits.
func TUICommand(ctx context.Context, a *agenda.Agenda) error {
	p := tea.NewProgram(tui.NewModel(ctx, a), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
