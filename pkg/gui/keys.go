package gui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/qnkhuat/blockterm/pkg/event"
)

type Keybinding struct {
	k tcell.Key
	r rune
	m tcell.ModMask

	a event.GameAction
}

var keybindings = []*Keybinding{
	{r: 'z', a: event.ActionRotateCCW},
	{r: 'Z', a: event.ActionRotateCCW},
	{r: 'x', a: event.ActionRotateCW},
	{r: 'X', a: event.ActionRotateCW},
	{k: tcell.KeyLeft, a: event.ActionMoveLeft},
	{r: 'h', a: event.ActionMoveLeft},
	{r: 'H', a: event.ActionMoveLeft},
	{k: tcell.KeyDown, a: event.ActionSoftDrop},
	{r: 'j', a: event.ActionSoftDrop},
	{r: 'J', a: event.ActionSoftDrop},
	{k: tcell.KeyUp, a: event.ActionRotateCW},
	{r: 'k', a: event.ActionRotateCW},
	{r: 'K', a: event.ActionRotateCW},
	{r: ' ', a: event.ActionHardDrop},
	{k: tcell.KeyRight, a: event.ActionMoveRight},
	{r: 'l', a: event.ActionMoveRight},
	{r: 'L', a: event.ActionMoveRight},
}

// actionFor maps a key press to a game action. Keys without a binding map to
// ActionNone.
func actionFor(ev *tcell.EventKey) event.GameAction {
	k := ev.Key()
	r := ev.Rune()

	for _, bind := range keybindings {
		if bind.k != 0 && bind.k != k {
			continue
		}
		if bind.r != 0 && (k != tcell.KeyRune || bind.r != r) {
			continue
		}
		if bind.m != 0 && bind.m != ev.Modifiers() {
			continue
		}

		return bind.a
	}

	return event.ActionNone
}
