package event

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownAction = errors.New("unknown action")

// GameAction is a player command waiting to be applied on the next tick.
type GameAction int

const (
	ActionNone GameAction = iota
	ActionMoveLeft
	ActionMoveRight
	ActionSoftDrop
	ActionHardDrop
	ActionRotateCW
	ActionRotateCCW
)

var actionNames = [...]string{
	ActionNone:      "None",
	ActionMoveLeft:  "Left",
	ActionMoveRight: "Right",
	ActionSoftDrop:  "Down",
	ActionHardDrop:  "Drop",
	ActionRotateCW:  "CW",
	ActionRotateCCW: "CCW",
}

func (a GameAction) Valid() bool {
	return a >= ActionNone && int(a) < len(actionNames)
}

func (a GameAction) String() string {
	if !a.Valid() {
		return fmt.Sprintf("GameAction(%d)", int(a))
	}

	return actionNames[a]
}

// ParseGameAction returns the action with the given persisted name.
func ParseGameAction(name string) (GameAction, error) {
	for i, n := range actionNames {
		if n == name {
			return GameAction(i), nil
		}
	}

	return ActionNone, fmt.Errorf("%w: %q", ErrUnknownAction, name)
}

func (a GameAction) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAction, int(a))
	}

	return []byte(actionNames[a]), nil
}

func (a *GameAction) UnmarshalText(text []byte) error {
	parsed, err := ParseGameAction(string(text))
	if err != nil {
		return err
	}

	*a = parsed
	return nil
}

// UnmarshalJSON accepts only an action name.
func (a *GameAction) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || b[0] != '"' {
		return fmt.Errorf("%w: %s", ErrUnknownAction, b)
	}

	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}

	return a.UnmarshalText([]byte(name))
}
