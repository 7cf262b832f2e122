package strategy

import "fmt"

// Move is a betting move
type Move string

const (
	Fold  Move = "fold"
	Check Move = "check"
	Call  Move = "call"
	Raise Move = "raise"
)

// Action is the decision returned to the orchestrator. Amount is only set
// for raises and is always at least 1.
type Action struct {
	Move   Move `json:"move"`
	Amount int  `json:"amount,omitempty"`
}

// FoldAction returns a fold
func FoldAction() Action { return Action{Move: Fold} }

// CheckAction returns a check
func CheckAction() Action { return Action{Move: Check} }

// CallAction returns a call
func CallAction() Action { return Action{Move: Call} }

// RaiseAction returns a raise of amount, floored at 1.
func RaiseAction(amount int) Action {
	return Action{Move: Raise, Amount: max(1, amount)}
}

// String returns a human-readable form such as "raise 100"
func (a Action) String() string {
	if a.Move == Raise {
		return fmt.Sprintf("%s %d", a.Move, a.Amount)
	}
	return string(a.Move)
}
