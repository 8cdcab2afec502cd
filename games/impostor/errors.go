/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import "errors"

// Error is a rejected action. Code is stable and sent to clients alongside
// the human-readable message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrRoomNotFound         = &Error{"room_not_found", "Room not found."}
	ErrGameInProgress       = &Error{"game_already_in_progress", "The game has already started."}
	ErrRoomFull             = &Error{"room_full", "The room is full."}
	ErrNotHost              = &Error{"not_host", "Only the host can do that."}
	ErrWrongPhase           = &Error{"wrong_phase", "That action is not available right now."}
	ErrDuplicateVote        = &Error{"duplicate_vote", "You have already voted this round."}
	ErrInsufficientPlayers  = &Error{"insufficient_players", "At least 3 players are needed to start."}
	ErrNameTaken            = &Error{"name_taken", "That name is already taken in this room."}
	ErrInvalidName          = &Error{"invalid_name", "Names must be between 1 and 24 characters."}
	ErrInvalidCandidate     = &Error{"invalid_candidate", "You can only vote for a living player."}
	ErrInvalidImpostorCount = &Error{"invalid_impostor_count", "Invalid number of impostors."}
	ErrNotAlive             = &Error{"not_alive", "Eliminated players cannot vote."}
	ErrNotInRoom            = &Error{"not_in_room", "You are not in that room."}
	ErrAlreadyInRoom        = &Error{"already_in_room", "You are already in a room."}
	ErrUnknownCommand       = &Error{"unknown_command", "Unknown message type."}
	ErrMalformed            = &Error{"malformed", "Malformed message."}
)

// ErrorCode returns the wire code for err, or "internal" if err is not an
// *Error.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return "internal"
}
