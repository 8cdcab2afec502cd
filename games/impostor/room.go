/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package impostor implements the server side of a social-deduction party game.
//
// Players gather in a room identified by a short code. When the host starts a
// game, one or more players are secretly made impostors and everyone else is
// shown a shared character. Players discuss, the host opens a vote, and the
// most-voted player is eliminated (ties eliminate nobody). The game ends when
// every impostor is out, or when impostors are no longer outnumbered.
//
// Rules:
//   - At least 3 players are needed to start; rooms hold at most MaxPlayers
//   - The host may choose more than one impostor once 6 players have joined
//   - Only the host may start, open voting, continue, or return to the lobby
//   - Each living player votes exactly once per voting phase
//   - Players leaving the lobby are removed; players leaving mid-game keep
//     their slot and may rejoin under the same name
//   - If the host leaves, the next connected player in join order takes over
package impostor

import (
	"sync"
	"time"
)

// Phase is the stage a room is in.
type Phase string

const (
	PhaseLobby          Phase = "LOBBY"
	PhaseAssigningRoles Phase = "ASSIGNING_ROLES"
	PhaseRound          Phase = "ROUND"
	PhaseVoting         Phase = "VOTING"
	PhaseResult         Phase = "RESULT"
	PhaseGameOver       Phase = "GAME_OVER"
)

func (p Phase) String() string {
	return string(p)
}

const (
	// MinPlayers is the minimum number of players required to start a game
	MinPlayers = 3

	// ChooseImpostorsAt is the player count from which the host's impostor
	// count is honored
	ChooseImpostorsAt = 6

	// DefaultMaxPlayers is the room capacity used when none is configured
	DefaultMaxPlayers = 10
)

// Player holds the data we store server-side for one participant.
type Player struct {
	ID          string // connection identity, rebound on reconnect
	Name        string // unique within the room
	IsImpostor  bool
	IsAlive     bool
	HasSeenRole bool
	Vote        string // candidate name voted for this phase, "" if none
	Connected   bool
}

func newPlayer(id, name string) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		IsAlive:   true,
		Connected: true,
	}
}

func (p *Player) reset() {
	p.IsImpostor = false
	p.IsAlive = true
	p.HasSeenRole = false
	p.Vote = ""
}

// RoomConfig holds host-chosen settings.
type RoomConfig struct {
	NumImpostors int
}

// Room is one game session. All fields are guarded by mu; every handler
// holds it from validation through broadcast.
type Room struct {
	mu sync.Mutex

	Code      string
	Phase     Phase
	HostID    string
	Players   []*Player // join order
	Config    RoomConfig
	Character string
	Tally     *VoteTally
	Round     int

	lastResult *VoteResultMessage
	winner     Winner

	createdAt  time.Time
	lastActive time.Time

	// closed is set once the room has been removed from the registry, so a
	// handler that looked it up concurrently treats it as gone.
	closed bool
}

func newRoom(code string, host *Player, now time.Time) *Room {
	return &Room{
		Code:       code,
		Phase:      PhaseLobby,
		HostID:     host.ID,
		Players:    []*Player{host},
		Config:     RoomConfig{NumImpostors: 1},
		Tally:      NewVoteTally(),
		createdAt:  now,
		lastActive: now,
	}
}

func (r *Room) player(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) playerByName(name string) *Player {
	for _, p := range r.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (r *Room) host() *Player {
	return r.player(r.HostID)
}

// remove drops the player with the given connection identity, preserving the
// join order of everyone else.
func (r *Room) remove(id string) *Player {
	for i, p := range r.Players {
		if p.ID == id {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return p
		}
	}
	return nil
}

// nextHost returns the first connected player in join order, excluding the
// given identity. Join order is the host-migration tie-break.
func (r *Room) nextHost(exclude string) *Player {
	for _, p := range r.Players {
		if p.ID != exclude && p.Connected {
			return p
		}
	}
	return nil
}

func (r *Room) connectedCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Connected {
			n++
		}
	}
	return n
}

func (r *Room) living() []*Player {
	alive := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.IsAlive {
			alive = append(alive, p)
		}
	}
	return alive
}

func (r *Room) livingNames() []string {
	alive := r.living()
	names := make([]string, 0, len(alive))
	for _, p := range alive {
		names = append(names, p.Name)
	}
	return names
}

func (r *Room) impostorNames() []string {
	names := []string{}
	for _, p := range r.Players {
		if p.IsImpostor {
			names = append(names, p.Name)
		}
	}
	return names
}

func (r *Room) clearVotes() {
	r.Tally.Reset()
	for _, p := range r.Players {
		p.Vote = ""
	}
}

// resetForLobby puts the room back in the lobby. Retained slots of players who
// never came back are dropped, since the lobby only holds connected players.
func (r *Room) resetForLobby() {
	kept := r.Players[:0]
	for _, p := range r.Players {
		if !p.Connected {
			continue
		}
		p.reset()
		kept = append(kept, p)
	}
	r.Players = kept

	r.Phase = PhaseLobby
	r.Character = ""
	r.Config.NumImpostors = 1
	r.Round = 0
	r.lastResult = nil
	r.winner = ""
	r.Tally.Reset()
}
