/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	"context"
	"time"
)

// Options configures a Server. Zero values select the defaults.
type Options struct {
	MaxPlayers int
	Rand       Rand
	Characters []string
	NewCode    func() string
	Now        func() time.Time
	Logf       func(format string, args ...any)
}

// Server applies client commands to rooms. Each room is a unit of mutual
// exclusion: a handler holds the room's lock from validation until its last
// message has been handed to the Sender.
type Server struct {
	rooms      *Registry
	out        Sender
	maxPlayers int
	rng        Rand
	characters []string
	now        func() time.Time
	logf       func(format string, args ...any)
}

func NewServer(out Sender, opts Options) *Server {
	s := &Server{
		out:        out,
		maxPlayers: opts.MaxPlayers,
		rng:        opts.Rand,
		characters: opts.Characters,
		now:        opts.Now,
		logf:       opts.Logf,
	}

	if s.maxPlayers < MinPlayers {
		s.maxPlayers = DefaultMaxPlayers
	}
	if s.rng == nil {
		s.rng = globalRand{}
	}
	if len(s.characters) == 0 {
		s.characters = Characters
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logf == nil {
		s.logf = func(string, ...any) {}
	}

	s.rooms = NewRegistry(opts.NewCode, s.now)

	return s
}

// Rooms exposes the room registry.
func (s *Server) Rooms() *Registry {
	return s.rooms
}

// Handle applies one command from connID. A rejected command changes nothing;
// the sender alone is told why.
func (s *Server) Handle(connID string, cmd Command) {
	if cmd == nil {
		return
	}

	var err error

	switch c := cmd.(type) {
	case CreateRoom:
		err = s.createRoom(connID, c)
	case JoinRoom:
		err = s.joinRoom(connID, c)
	case ChangeImpostorCount:
		err = s.changeImpostorCount(connID, c)
	case StartGame:
		err = s.startGame(connID, c)
	case AcknowledgeRole:
		err = s.acknowledgeRole(connID, c)
	case OpenVoting:
		err = s.openVoting(connID, c)
	case CastVote:
		err = s.castVote(connID, c)
	case ContinueRound:
		err = s.continueRound(connID, c)
	case ReturnToLobby:
		err = s.returnToLobby(connID, c)
	default:
		err = ErrUnknownCommand
	}

	if err != nil {
		s.logf("GAMES: Rejected %s from %s: %v", cmd.command(), connID, err)
		s.out.Send(connID, NewErrorMessage(err))
	}
}

// withRoom runs fn with the room locked.
func (s *Server) withRoom(code string, fn func(*Room) error) error {
	room, err := s.rooms.Lookup(code)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed {
		return ErrRoomNotFound
	}
	room.lastActive = s.now()

	return fn(room)
}

// asMember runs fn with the room locked and the acting player resolved.
func (s *Server) asMember(connID, code string, fn func(*Room, *Player) error) error {
	return s.withRoom(code, func(room *Room) error {
		actor := room.player(connID)
		if actor == nil || !actor.Connected {
			return ErrNotInRoom
		}
		return fn(room, actor)
	})
}

// asHost is asMember for host-only actions that are valid in a single phase.
func (s *Server) asHost(connID, code string, phase Phase, fn func(*Room) error) error {
	return s.asMember(connID, code, func(room *Room, actor *Player) error {
		if room.HostID != actor.ID {
			return ErrNotHost
		}
		if room.Phase != phase {
			return ErrWrongPhase
		}
		return fn(room)
	})
}

func (s *Server) createRoom(connID string, c CreateRoom) error {
	if _, ok := s.rooms.RoomOf(connID); ok {
		return ErrAlreadyInRoom
	}

	room, err := s.rooms.create(connID, c.DisplayName)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	s.logf("GAMES: %q created room %s", c.DisplayName, room.Code)

	s.out.Send(connID, RoomCreatedMessage{
		Type:   TypeRoomCreated,
		Code:   room.Code,
		IsHost: true,
	})
	room.sendLobby(s.out)

	return nil
}

func (s *Server) joinRoom(connID string, c JoinRoom) error {
	if _, ok := s.rooms.RoomOf(connID); ok {
		return ErrAlreadyInRoom
	}

	return s.withRoom(c.Code, func(room *Room) error {
		if existing := room.playerByName(c.DisplayName); existing != nil {
			if existing.Connected {
				return ErrNameTaken
			}
			s.rejoin(room, existing, connID)
			return nil
		}

		if room.Phase != PhaseLobby {
			return ErrGameInProgress
		}
		if len(room.Players) >= s.maxPlayers {
			return ErrRoomFull
		}

		room.Players = append(room.Players, newPlayer(connID, c.DisplayName))
		s.rooms.bind(connID, room.Code)

		s.logf("GAMES: %q joined room %s", c.DisplayName, room.Code)

		s.out.Send(connID, RoomJoinedMessage{
			Type:   TypeRoomJoined,
			Code:   room.Code,
			IsHost: false,
			Phase:  room.Phase,
		})
		room.sendLobby(s.out)

		return nil
	})
}

func (s *Server) changeImpostorCount(connID string, c ChangeImpostorCount) error {
	return s.asHost(connID, c.Code, PhaseLobby, func(room *Room) error {
		if c.Num < 1 || c.Num > s.maxPlayers-1 {
			return ErrInvalidImpostorCount
		}

		room.Config.NumImpostors = c.Num
		room.sendLobby(s.out)

		return nil
	})
}

// startGame enters ASSIGNING_ROLES: every player is reset, roles are dealt
// from scratch, and each player is sent their own role.
func (s *Server) startGame(connID string, c StartGame) error {
	return s.asHost(connID, c.Code, PhaseLobby, func(room *Room) error {
		if len(room.Players) < MinPlayers {
			return ErrInsufficientPlayers
		}

		for _, p := range room.Players {
			p.reset()
		}
		room.Tally.Reset()
		room.Round = 0
		room.lastResult = nil
		room.winner = ""

		room.Character = AssignRoles(s.rng, room.Players, room.Config.NumImpostors, s.characters)
		room.Phase = PhaseAssigningRoles

		s.logf("GAMES: Room %s started with %d players and %d impostor(s)",
			room.Code, len(room.Players), len(room.impostorNames()))

		room.sendRoles(s.out)

		return nil
	})
}

func (s *Server) acknowledgeRole(connID string, c AcknowledgeRole) error {
	return s.asMember(connID, c.Code, func(room *Room, actor *Player) error {
		if room.Phase != PhaseAssigningRoles {
			return ErrWrongPhase
		}

		actor.HasSeenRole = true

		for _, p := range room.Players {
			if !p.HasSeenRole {
				return nil
			}
		}

		s.startRound(room)

		return nil
	})
}

func (s *Server) startRound(room *Room) {
	room.Phase = PhaseRound
	room.Round++
	room.lastResult = nil
	room.clearVotes()

	room.broadcast(s.out, room.roundStarted())
}

func (s *Server) openVoting(connID string, c OpenVoting) error {
	return s.asHost(connID, c.Code, PhaseRound, func(room *Room) error {
		room.Phase = PhaseVoting
		room.clearVotes()

		room.broadcast(s.out, room.votingOpened())

		return nil
	})
}

// castVote records a vote, reports progress to the host, and resolves the
// phase once every living player has voted.
func (s *Server) castVote(connID string, c CastVote) error {
	return s.asMember(connID, c.Code, func(room *Room, actor *Player) error {
		if room.Phase != PhaseVoting {
			return ErrWrongPhase
		}

		candidate := room.playerByName(c.CandidateName)
		if candidate == nil || !candidate.IsAlive {
			return ErrInvalidCandidate
		}

		if err := room.Tally.Cast(actor, candidate.Name); err != nil {
			return err
		}

		s.out.Send(connID, VoteAcknowledgedMessage{Type: TypeVoteAcknowledged})

		voted, total := votedCount(room.Players)
		room.sendToHost(s.out, VoteProgressMessage{
			Type:       TypeVoteProgress,
			VotedCount: voted,
			Total:      total,
		})

		if allVoted(room.Players) {
			s.resolveVotes(room)
		}

		return nil
	})
}

func (s *Server) resolveVotes(room *Room) {
	outcome := room.Tally.Resolve()
	room.Phase = PhaseResult

	result := VoteResultMessage{
		Type: TypeVoteResult,
		Tied: outcome.Tied,
	}

	if !outcome.Tied {
		eliminated := room.playerByName(outcome.Eliminated)
		eliminated.IsAlive = false

		name := eliminated.Name
		wasImpostor := eliminated.IsImpostor
		result.Eliminated = &name
		result.WasImpostor = &wasImpostor

		s.logf("GAMES: %q was voted out of room %s (impostor: %t)", name, room.Code, wasImpostor)
	}

	room.lastResult = &result
	room.broadcast(s.out, result)
}

// evaluateWinner applies the win condition to the current players. An empty
// Winner means the game goes on.
func evaluateWinner(players []*Player) Winner {
	impostors, innocents := 0, 0
	for _, p := range players {
		switch {
		case !p.IsAlive:
		case p.IsImpostor:
			impostors++
		default:
			innocents++
		}
	}

	switch {
	case impostors == 0:
		return WinnerInnocents
	case impostors >= innocents:
		return WinnerImpostors
	}

	return ""
}

func (s *Server) continueRound(connID string, c ContinueRound) error {
	return s.asHost(connID, c.Code, PhaseResult, func(room *Room) error {
		winner := evaluateWinner(room.Players)
		if winner == "" {
			s.startRound(room)
			return nil
		}

		room.Phase = PhaseGameOver
		room.winner = winner

		s.logf("GAMES: Room %s won by %s", room.Code, winner)

		room.broadcast(s.out, room.gameOver())

		return nil
	})
}

func (s *Server) returnToLobby(connID string, c ReturnToLobby) error {
	return s.asHost(connID, c.Code, PhaseGameOver, func(room *Room) error {
		room.resetForLobby()
		room.sendLobby(s.out)

		return nil
	})
}

// ReapLoop deletes rooms nobody has been connected to for longer than idle,
// checking every idle/2, until ctx is done.
func (s *Server) ReapLoop(ctx context.Context, idle time.Duration) {
	if idle <= 0 {
		return
	}

	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, code := range s.rooms.Reap(s.now().Add(-idle)) {
				s.logf("GAMES: Reaped idle room %s", code)
			}
		}
	}
}
