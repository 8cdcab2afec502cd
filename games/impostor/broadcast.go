/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

// Sender delivers one message to one connection. Implementations must not
// block and must preserve the order of messages sent to the same connection.
type Sender interface {
	Send(connID string, msg any)
}

// broadcast sends msg to every connected player in join order.
func (r *Room) broadcast(out Sender, msg any) {
	for _, p := range r.Players {
		if p.Connected {
			out.Send(p.ID, msg)
		}
	}
}

func (r *Room) sendToHost(out Sender, msg any) {
	if h := r.host(); h != nil && h.Connected {
		out.Send(h.ID, msg)
	}
}

func (r *Room) lobbyFor(p *Player) LobbyUpdatedMessage {
	players := make([]LobbyPlayer, 0, len(r.Players))
	for _, q := range r.Players {
		players = append(players, LobbyPlayer{
			Name:      q.Name,
			IsHost:    q.ID == r.HostID,
			Connected: q.Connected,
		})
	}

	return LobbyUpdatedMessage{
		Type:                   TypeLobbyUpdated,
		Code:                   r.Code,
		Players:                players,
		IsHost:                 p.ID == r.HostID,
		MinPlayersMet:          len(r.Players) >= MinPlayers,
		CanChooseImpostorCount: len(r.Players) >= ChooseImpostorsAt,
		NumImpostors:           r.Config.NumImpostors,
	}
}

// sendLobby sends each connected player their own lobby snapshot.
func (r *Room) sendLobby(out Sender) {
	for _, p := range r.Players {
		if p.Connected {
			out.Send(p.ID, r.lobbyFor(p))
		}
	}
}

func (r *Room) roleFor(p *Player) RoleRevealedMessage {
	msg := RoleRevealedMessage{
		Type:       TypeRoleRevealed,
		IsImpostor: p.IsImpostor,
	}
	if !p.IsImpostor {
		character := r.Character
		msg.Character = &character
	}

	return msg
}

// sendRoles reveals roles one recipient at a time; the character must never
// reach an impostor.
func (r *Room) sendRoles(out Sender) {
	for _, p := range r.Players {
		if p.Connected {
			out.Send(p.ID, r.roleFor(p))
		}
	}
}

func (r *Room) roundStarted() RoundStartedMessage {
	msg := RoundStartedMessage{
		Type:          TypeRoundStarted,
		Round:         r.Round,
		LivingPlayers: r.livingNames(),
		HostID:        r.HostID,
	}
	if h := r.host(); h != nil {
		msg.HostName = h.Name
	}

	return msg
}

func (r *Room) votingOpened() VotingOpenedMessage {
	return VotingOpenedMessage{
		Type:       TypeVotingOpened,
		Candidates: r.livingNames(),
	}
}

func (r *Room) gameOver() GameOverMessage {
	return GameOverMessage{
		Type:          TypeGameOver,
		Winner:        r.winner,
		ImpostorNames: r.impostorNames(),
	}
}

func (r *Room) hostChanged() HostChangedMessage {
	msg := HostChangedMessage{Type: TypeHostChanged}
	if h := r.host(); h != nil {
		msg.NewHostName = h.Name
	}

	return msg
}

// resync brings a player who rejoined a game in progress up to date: their
// role first, then the view of the current phase.
func (r *Room) resync(out Sender, p *Player) {
	out.Send(p.ID, r.roleFor(p))

	switch r.Phase {
	case PhaseRound:
		out.Send(p.ID, r.roundStarted())
	case PhaseVoting:
		out.Send(p.ID, r.votingOpened())
		if p.Vote != "" {
			out.Send(p.ID, VoteAcknowledgedMessage{Type: TypeVoteAcknowledged})
		}
	case PhaseResult:
		if r.lastResult != nil {
			out.Send(p.ID, *r.lastResult)
		}
	case PhaseGameOver:
		out.Send(p.ID, r.gameOver())
	}
}
