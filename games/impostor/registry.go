/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"
)

const (
	// CodeLength is the length of generated room codes
	CodeLength = 6

	// CodeChars are the characters used for room codes (excluding ambiguous chars)
	CodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	maxCodeAttempts = 64
)

var errCodesExhausted = errors.New("unable to generate a unique room code")

// GenerateCode returns a crypto-random room code.
func GenerateCode() string {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}

	out := make([]byte, CodeLength)
	for i := range out {
		// len(CodeChars) divides 256, so this is unbiased.
		out[i] = CodeChars[int(buf[i])%len(CodeChars)]
	}

	return string(out)
}

// NormalizeCode upper-cases and trims a user-supplied room code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Registry holds every live room keyed by code, and which room each
// connection currently belongs to. A connection belongs to at most one room.
//
// The registry lock is only ever taken on its own or while already holding a
// room lock; it never acquires the lock of a published room while held.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	members map[string]string // connection ID -> room code

	newCode func() string
	now     func() time.Time
}

func NewRegistry(newCode func() string, now func() time.Time) *Registry {
	if newCode == nil {
		newCode = GenerateCode
	}
	if now == nil {
		now = time.Now
	}

	return &Registry{
		rooms:   make(map[string]*Room),
		members: make(map[string]string),
		newCode: newCode,
		now:     now,
	}
}

// create seeds a lobby with the given host and returns it locked, so the
// caller can send the creation acknowledgment before anyone else can join.
func (reg *Registry) create(connID, hostName string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for range maxCodeAttempts {
		code := reg.newCode()
		if _, exists := reg.rooms[code]; exists {
			continue
		}

		room := newRoom(code, newPlayer(connID, hostName), reg.now())
		room.mu.Lock()

		reg.rooms[code] = room
		reg.members[connID] = code

		return room, nil
	}

	return nil, errCodesExhausted
}

// Create seeds a single-player lobby with connID as host under a fresh code.
func (reg *Registry) Create(connID, hostName string) (*Room, error) {
	room, err := reg.create(connID, hostName)
	if err != nil {
		return nil, err
	}
	room.mu.Unlock()

	return room, nil
}

// Lookup returns the room with the given code.
func (reg *Registry) Lookup(code string) (*Room, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	room, ok := reg.rooms[NormalizeCode(code)]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Delete removes the room and forgets every connection bound to it.
func (reg *Registry) Delete(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	delete(reg.rooms, code)
	for id, c := range reg.members {
		if c == code {
			delete(reg.members, id)
		}
	}
}

// RoomOf returns the room the connection belongs to.
func (reg *Registry) RoomOf(connID string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	code, ok := reg.members[connID]
	if !ok {
		return nil, false
	}
	room, ok := reg.rooms[code]
	return room, ok
}

func (reg *Registry) bind(connID, code string) {
	reg.mu.Lock()
	reg.members[connID] = code
	reg.mu.Unlock()
}

func (reg *Registry) unbind(connID string) {
	reg.mu.Lock()
	delete(reg.members, connID)
	reg.mu.Unlock()
}

// Len returns the number of live rooms.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return len(reg.rooms)
}

// Reap deletes rooms nobody is connected to that have been idle since before
// cutoff, returning their codes.
func (reg *Registry) Reap(cutoff time.Time) []string {
	reg.mu.RLock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	reg.mu.RUnlock()

	var reaped []string
	for _, room := range rooms {
		room.mu.Lock()
		if !room.closed && room.connectedCount() == 0 && room.lastActive.Before(cutoff) {
			room.closed = true
			reg.Delete(room.Code)
			reaped = append(reaped, room.Code)
		}
		room.mu.Unlock()
	}

	return reaped
}
