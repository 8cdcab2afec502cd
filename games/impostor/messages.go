/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import "errors"

// Server message types.
const (
	TypeSessionInfo      = "session_info"
	TypeRoomCreated      = "room_created"
	TypeRoomJoined       = "room_joined"
	TypeLobbyUpdated     = "lobby_updated"
	TypeRoleRevealed     = "role_revealed"
	TypeRoundStarted     = "round_started"
	TypeVotingOpened     = "voting_opened"
	TypeVoteAcknowledged = "vote_acknowledged"
	TypeVoteProgress     = "vote_progress"
	TypeVoteResult       = "vote_result"
	TypeGameOver         = "game_over"
	TypeHostChanged      = "host_changed"
	TypeError            = "error"
)

// Winner names the side that won a game.
type Winner string

const (
	WinnerInnocents Winner = "innocents"
	WinnerImpostors Winner = "impostors"
)

// SessionInfoMessage is sent immediately on connect so the client knows its
// own connection identity.
type SessionInfoMessage struct {
	Type string `json:"type"` // "session_info"
	ID   string `json:"id"`
}

type RoomCreatedMessage struct {
	Type   string `json:"type"` // "room_created"
	Code   string `json:"code"`
	IsHost bool   `json:"isHost"`
}

type RoomJoinedMessage struct {
	Type   string `json:"type"` // "room_joined"
	Code   string `json:"code"`
	IsHost bool   `json:"isHost"`
	Phase  Phase  `json:"phase"`
}

type LobbyPlayer struct {
	Name      string `json:"name"`
	IsHost    bool   `json:"isHost"`
	Connected bool   `json:"connected"`
}

// LobbyUpdatedMessage is a full lobby snapshot, built per recipient.
type LobbyUpdatedMessage struct {
	Type                   string        `json:"type"` // "lobby_updated"
	Code                   string        `json:"code"`
	Players                []LobbyPlayer `json:"players"`
	IsHost                 bool          `json:"isHost"`
	MinPlayersMet          bool          `json:"minPlayersMet"`
	CanChooseImpostorCount bool          `json:"canChooseImpostorCount"`
	NumImpostors           int           `json:"numImpostors"`
}

// RoleRevealedMessage is only ever sent to the player it describes.
// Character is null for impostors.
type RoleRevealedMessage struct {
	Type       string  `json:"type"` // "role_revealed"
	Character  *string `json:"character"`
	IsImpostor bool    `json:"isImpostor"`
}

type RoundStartedMessage struct {
	Type          string   `json:"type"` // "round_started"
	Round         int      `json:"round"`
	LivingPlayers []string `json:"livingPlayers"`
	HostID        string   `json:"hostId"`
	HostName      string   `json:"hostName"`
}

type VotingOpenedMessage struct {
	Type       string   `json:"type"` // "voting_opened"
	Candidates []string `json:"candidates"`
}

type VoteAcknowledgedMessage struct {
	Type string `json:"type"` // "vote_acknowledged"
}

// VoteProgressMessage is sent to the host only.
type VoteProgressMessage struct {
	Type       string `json:"type"` // "vote_progress"
	VotedCount int    `json:"votedCount"`
	Total      int    `json:"total"`
}

type VoteResultMessage struct {
	Type        string  `json:"type"` // "vote_result"
	Eliminated  *string `json:"eliminated"`
	WasImpostor *bool   `json:"wasImpostor,omitempty"`
	Tied        bool    `json:"tied"`
}

type GameOverMessage struct {
	Type          string   `json:"type"` // "game_over"
	Winner        Winner   `json:"winner"`
	ImpostorNames []string `json:"impostorNames"`
}

type HostChangedMessage struct {
	Type        string `json:"type"` // "host_changed"
	NewHostName string `json:"newHostName"`
}

// ErrorMessage is sent only to the connection whose action was rejected.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorMessage(err error) ErrorMessage {
	msg := ErrorMessage{
		Type:    TypeError,
		Code:    ErrorCode(err),
		Message: "Something went wrong.",
	}

	var e *Error
	if errors.As(err, &e) {
		msg.Message = e.Message
	}

	return msg
}
