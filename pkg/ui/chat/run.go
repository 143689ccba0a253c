// Package chat renders an interactive terminal chat screen over a turn
// function.
package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// TurnFunc runs one conversational turn for a typed line and returns the
// replies the turn produced, in delivery order.
type TurnFunc func(ctx context.Context, text string) ([]string, error)

// Run starts the interactive chat screen and blocks until the user quits.
func Run(ctx context.Context, turnFn TurnFunc, botName string) error {
	program := tea.NewProgram(newModel(ctx, turnFn, botName))
	_, err := program.Run()

	return err
}
