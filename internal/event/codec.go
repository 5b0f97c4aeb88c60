package event

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnknownOp is returned when an event names no registered op.
	ErrUnknownOp = errors.New("unknown op")
	// ErrMalformedEvent is returned when an event's arguments do not
	// decode into the named op.
	ErrMalformedEvent = errors.New("malformed event")
)

// Event is the wire form of an op: its name plus its JSON arguments.
type Event struct {
	Name OpName          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

type decodeFunc func(json.RawMessage) (Op, error)

// decoders is the one table that maps wire names to ops.  Every Op type
// must appear here; TestDecodersCoverEveryOp keeps it honest.
var decoders = map[OpName]decodeFunc{
	OpApproveTable:      decodeAs[ApproveTable],
	OpSetSeatSub:        decodeAs[SetSeatSub],
	OpFireNext:          decodeAs[FireNext],
	OpMarkDone:          decodeAs[MarkDone],
	OpTogglePause:       decodeAs[TogglePause],
	OpAssignRes:         decodeAs[AssignRes],
	OpSeatAssigned:      decodeAs[SeatAssigned],
	OpClearTable:        decodeAs[ClearTable],
	OpInsertCourse:      decodeAs[InsertCourse],
	OpMoveCourse:        decodeAs[MoveCourse],
	OpDeleteCourse:      decodeAs[DeleteCourse],
	OpSetSeatMenu:       decodeAs[SetSeatMenu],
	OpSetChefNote:       decodeAs[SetChefNote],
	OpAddExtraDish:      decodeAs[AddExtraDish],
	OpRemoveExtraDish:   decodeAs[RemoveExtraDish],
	OpSendForApproval:   decodeAs[SendForApproval],
	OpSetDraftGuestSeat: decodeAs[SetDraftGuestSeat],
	OpSetDraftGuestMenu: decodeAs[SetDraftGuestMenu],
	OpSetDraftGuestSub:  decodeAs[SetDraftGuestSub],
	OpClearDraft:        decodeAs[ClearDraft],
}

func decodeAs[T Op](raw json.RawMessage) (Op, error) {
	var op T
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &op); err != nil {
			return nil, err
		}
	}
	return op, nil
}

// Names lists every registered op name.
func Names() []OpName {
	out := make([]OpName, 0, len(decoders))
	for name := range decoders {
		out = append(out, name)
	}
	return out
}

// Encode converts an op to its wire form.
func Encode(op Op) (Event, error) {
	args, err := json.Marshal(op)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s: %w", op.Name(), err)
	}
	return Event{Name: op.Name(), Args: args}, nil
}

// Decode converts a wire event back into its op.
func Decode(ev Event) (Op, error) {
	dec, ok := decoders[ev.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, ev.Name)
	}
	op, err := dec(ev.Args)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, ev.Name, err)
	}
	return op, nil
}
