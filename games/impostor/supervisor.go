/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

// Disconnect handles a closed connection. In the lobby the player is removed
// (and the room with them, if they were last); during a game their slot is
// kept for a later rejoin by name. Either way a departing host is replaced by
// the next connected player in join order.
func (s *Server) Disconnect(connID string) {
	room, ok := s.rooms.RoomOf(connID)
	if !ok {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	s.rooms.unbind(connID)

	if room.closed {
		return
	}

	p := room.player(connID)
	if p == nil {
		return
	}

	room.lastActive = s.now()
	wasHost := room.HostID == connID

	if room.Phase == PhaseLobby {
		room.remove(connID)

		s.logf("GAMES: %q left room %s", p.Name, room.Code)

		if len(room.Players) == 0 {
			room.closed = true
			s.rooms.Delete(room.Code)

			s.logf("GAMES: Closed empty room %s", room.Code)

			return
		}

		if wasHost {
			room.HostID = room.Players[0].ID
			room.broadcast(s.out, room.hostChanged())
		}
		room.sendLobby(s.out)

		return
	}

	p.Connected = false

	s.logf("GAMES: %q disconnected from room %s during %s", p.Name, room.Code, room.Phase)

	if !wasHost {
		return
	}

	// With nobody left to take over, the host stays on the retained slot and
	// the first player to rejoin inherits it.
	if next := room.nextHost(connID); next != nil {
		room.HostID = next.ID
		room.broadcast(s.out, room.hostChanged())
	}
}

// rejoin rebinds a retained slot to a new connection. A host demoted while
// away stays demoted; the rejoining player only becomes host if the current
// host is itself disconnected.
func (s *Server) rejoin(room *Room, p *Player, connID string) {
	host := room.host()
	reclaimHost := host == nil || !host.Connected

	p.ID = connID
	p.Connected = true
	s.rooms.bind(connID, room.Code)

	s.logf("GAMES: %q rejoined room %s", p.Name, room.Code)

	if reclaimHost {
		room.HostID = connID
		if host != p {
			room.broadcast(s.out, room.hostChanged())
		}
	}

	s.out.Send(connID, RoomJoinedMessage{
		Type:   TypeRoomJoined,
		Code:   room.Code,
		IsHost: room.HostID == connID,
		Phase:  room.Phase,
	})
	room.resync(s.out, p)
}
