package domain

import "errors"

// Rule violations returned by the engine. Every rejected action leaves
// the game untouched; callers match these with errors.Is.
var (
	// ErrGameNotFound means no game exists for the given id or table.
	ErrGameNotFound = errors.New("game not found")
	// ErrIllegalPhase means the action does not match the current phase.
	ErrIllegalPhase = errors.New("illegal phase")
	// ErrIllegalPlayer means it is not the caller's turn or privileged role.
	ErrIllegalPlayer = errors.New("illegal player")
	// ErrIllegalCard means the card is not owned, already played, or
	// violates follow-suit constraints.
	ErrIllegalCard = errors.New("illegal card")
	// ErrIllegalBid means the bid is malformed or not strictly increasing.
	ErrIllegalBid = errors.New("illegal bid")
	// ErrInvalidSelectionSize means an exchange selection has the wrong count.
	ErrInvalidSelectionSize = errors.New("invalid selection size")
)
