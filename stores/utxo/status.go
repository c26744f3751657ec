package utxo

import (
	"context"

	"github.com/lifafa03/USDw-stablecoin-sub000/errors"
	"github.com/looplab/fsm"
)

// Status is the lifecycle state of a utxo.
type Status string

const (
	StatusActive Status = "active"
	StatusFrozen Status = "frozen"
	StatusSpent  Status = "spent"
	StatusSeized Status = "seized"
)

// lifecycle events
const (
	EventSpend    = "spend"
	EventFreeze   = "freeze"
	EventUnfreeze = "unfreeze"
	EventSeize    = "seize"
)

func (s Status) String() string {
	return string(s)
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusSpent || s == StatusSeized
}

// CountsTowardSupply reports whether the utxo's amount is part of the
// circulating supply. Seized value belongs to the authority pending
// resolution and is excluded.
func (s Status) CountsTowardSupply() bool {
	return s == StatusActive || s == StatusFrozen
}

func newLifecycle(current Status) *fsm.FSM {
	return fsm.NewFSM(
		string(current),
		fsm.Events{
			{Name: EventSpend, Src: []string{string(StatusActive)}, Dst: string(StatusSpent)},
			{Name: EventFreeze, Src: []string{string(StatusActive)}, Dst: string(StatusFrozen)},
			{Name: EventUnfreeze, Src: []string{string(StatusFrozen)}, Dst: string(StatusActive)},
			{Name: EventSeize, Src: []string{string(StatusActive), string(StatusFrozen)}, Dst: string(StatusSeized)},
		},
		fsm.Callbacks{},
	)
}

// Transition applies event to current and returns the resulting status. An
// event that is not legal from current returns an error carrying the code
// matching the blocking state.
func Transition(ctx context.Context, current Status, event string) (Status, error) {
	machine := newLifecycle(current)

	if err := machine.Event(ctx, event); err != nil {
		switch current {
		case StatusSpent:
			return current, errors.NewSpentError("cannot %s utxo in status %s", event, current, err)
		case StatusFrozen:
			return current, errors.NewFrozenError("cannot %s utxo in status %s", event, current, err)
		case StatusSeized:
			return current, errors.NewSeizedError("cannot %s utxo in status %s", event, current, err)
		default:
			return current, errors.NewUtxoInvalidStatusError("cannot %s utxo in status %s", event, current, err)
		}
	}

	return Status(machine.Current()), nil
}
