/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the longest display name accepted, in runes.
const MaxNameLength = 24

// Client message types.
const (
	TypeCreateRoom          = "create_room"
	TypeJoinRoom            = "join_room"
	TypeChangeImpostorCount = "change_impostor_count"
	TypeStartGame           = "start_game"
	TypeRoleAcknowledged    = "role_acknowledged"
	TypeOpenVoting          = "open_voting"
	TypeCastVote            = "cast_vote"
	TypeContinueRound       = "continue_round"
	TypeReturnToLobby       = "return_to_lobby"
)

// Command is a validated message from a client. The concrete types below are
// the only implementations.
type Command interface {
	command() string
}

type CreateRoom struct {
	DisplayName string
}

type JoinRoom struct {
	Code        string
	DisplayName string
}

type ChangeImpostorCount struct {
	Code string
	Num  int
}

type StartGame struct {
	Code string
}

type AcknowledgeRole struct {
	Code string
}

type OpenVoting struct {
	Code string
}

type CastVote struct {
	Code          string
	CandidateName string
}

type ContinueRound struct {
	Code string
}

type ReturnToLobby struct {
	Code string
}

func (CreateRoom) command() string          { return TypeCreateRoom }
func (JoinRoom) command() string            { return TypeJoinRoom }
func (ChangeImpostorCount) command() string { return TypeChangeImpostorCount }
func (StartGame) command() string           { return TypeStartGame }
func (AcknowledgeRole) command() string     { return TypeRoleAcknowledged }
func (OpenVoting) command() string          { return TypeOpenVoting }
func (CastVote) command() string            { return TypeCastVote }
func (ContinueRound) command() string       { return TypeContinueRound }
func (ReturnToLobby) command() string       { return TypeReturnToLobby }

// ClientMessage is the wire shape of every client frame.
type ClientMessage struct {
	Type          string `json:"type"`
	Code          string `json:"code,omitempty"`          // every type but create_room
	DisplayName   string `json:"displayName,omitempty"`   // create_room / join_room
	Num           *int   `json:"num,omitempty"`           // change_impostor_count
	CandidateName string `json:"candidateName,omitempty"` // cast_vote
}

// DecodeCommand parses and validates one client frame.
func DecodeCommand(data []byte) (Command, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return msg.Command()
}

// Command validates the message and converts it to its typed form.
func (m ClientMessage) Command() (Command, error) {
	code := NormalizeCode(m.Code)

	switch m.Type {
	case TypeCreateRoom:
	case TypeJoinRoom, TypeChangeImpostorCount, TypeStartGame, TypeRoleAcknowledged,
		TypeOpenVoting, TypeCastVote, TypeContinueRound, TypeReturnToLobby:
		if code == "" {
			return nil, fmt.Errorf("%w: missing room code", ErrMalformed)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, m.Type)
	}

	switch m.Type {
	case TypeCreateRoom:
		name, err := ValidateName(m.DisplayName)
		if err != nil {
			return nil, err
		}
		return CreateRoom{DisplayName: name}, nil

	case TypeJoinRoom:
		name, err := ValidateName(m.DisplayName)
		if err != nil {
			return nil, err
		}
		return JoinRoom{Code: code, DisplayName: name}, nil

	case TypeChangeImpostorCount:
		if m.Num == nil {
			return nil, fmt.Errorf("%w: missing num", ErrMalformed)
		}
		return ChangeImpostorCount{Code: code, Num: *m.Num}, nil

	case TypeStartGame:
		return StartGame{Code: code}, nil

	case TypeRoleAcknowledged:
		return AcknowledgeRole{Code: code}, nil

	case TypeOpenVoting:
		return OpenVoting{Code: code}, nil

	case TypeCastVote:
		candidate := strings.TrimSpace(m.CandidateName)
		if candidate == "" {
			return nil, fmt.Errorf("%w: missing candidateName", ErrMalformed)
		}
		return CastVote{Code: code, CandidateName: candidate}, nil

	case TypeContinueRound:
		return ContinueRound{Code: code}, nil

	case TypeReturnToLobby:
		return ReturnToLobby{Code: code}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, m.Type)
}

// ValidateName trims a display name and checks its length.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)

	n := utf8.RuneCountInString(name)
	if n == 0 || n > MaxNameLength {
		return "", ErrInvalidName
	}

	return name, nil
}
