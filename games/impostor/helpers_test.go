package impostor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// recorder is a Sender that keeps every message per connection.
type recorder struct {
	mu   sync.Mutex
	msgs map[string][]any
}

func newRecorder() *recorder {
	return &recorder{msgs: make(map[string][]any)}
}

func (r *recorder) Send(id string, msg any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs[id] = append(r.msgs[id], msg)
}

func (r *recorder) all(id string) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.msgs[id]...)
}

func (r *recorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs {
		n += len(m)
	}
	return n
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.msgs)
}

func messagesOf[T any](r *recorder, id string) []T {
	var out []T
	for _, m := range r.all(id) {
		if v, ok := m.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func lastOf[T any](t *testing.T, r *recorder, id string) T {
	t.Helper()
	msgs := messagesOf[T](r, id)
	require.NotEmpty(t, msgs, "no %T sent to %s", *new(T), id)
	return msgs[len(msgs)-1]
}

// zeroRand always picks index 0. Fisher-Yates then leaves player 1 first,
// so the impostors are players[1:k+1] and the character is the first in the
// pool.
type zeroRand struct{}

func (zeroRand) IntN(int) int { return 0 }

// lastRand always picks the highest index: no swaps, so the impostors are
// players[:k] and the character is the last in the pool.
type lastRand struct{}

func (lastRand) IntN(n int) int { return n - 1 }

func codes(list ...string) func() string {
	i := 0
	return func() string {
		c := list[i%len(list)]
		i++
		return c
	}
}

func conn(name string) string {
	return "conn-" + name
}

// table is a room seeded with players who joined in the given order; the
// first one created it and is the host.
type table struct {
	t    *testing.T
	srv  *Server
	out  *recorder
	code string
}

func newTable(t *testing.T, opts Options, names ...string) *table {
	t.Helper()

	out := newRecorder()
	if opts.Rand == nil {
		opts.Rand = zeroRand{}
	}
	if opts.NewCode == nil {
		opts.NewCode = codes("ABC123")
	}

	tb := &table{t: t, srv: NewServer(out, opts), out: out}

	tb.srv.Handle(conn(names[0]), CreateRoom{DisplayName: names[0]})
	created := lastOf[RoomCreatedMessage](t, out, conn(names[0]))
	tb.code = created.Code

	for _, name := range names[1:] {
		tb.srv.Handle(conn(name), JoinRoom{Code: tb.code, DisplayName: name})
		require.Empty(t, messagesOf[ErrorMessage](out, conn(name)), "join %s", name)
	}

	out.reset()

	return tb
}

func (tb *table) do(connID string, cmd Command) {
	tb.srv.Handle(connID, cmd)
}

func (tb *table) room() *Room {
	tb.t.Helper()
	room, err := tb.srv.Rooms().Lookup(tb.code)
	require.NoError(tb.t, err)
	return room
}

func (tb *table) player(name string) *Player {
	tb.t.Helper()
	p := tb.room().playerByName(name)
	require.NotNil(tb.t, p, "no player %q", name)
	return p
}

// startRound starts a game and has every player acknowledge their role.
func (tb *table) startRound() {
	tb.t.Helper()

	room := tb.room()
	tb.do(room.HostID, StartGame{Code: tb.code})
	require.Equal(tb.t, PhaseAssigningRoles, room.Phase)

	for _, p := range append([]*Player(nil), room.Players...) {
		tb.do(p.ID, AcknowledgeRole{Code: tb.code})
	}
	require.Equal(tb.t, PhaseRound, room.Phase)
}

func (tb *table) vote(votes map[string]string) {
	tb.t.Helper()
	for voter, candidate := range votes {
		tb.do(tb.player(voter).ID, CastVote{Code: tb.code, CandidateName: candidate})
	}
}

func (tb *table) errorsFor(connID string) []string {
	var out []string
	for _, m := range messagesOf[ErrorMessage](tb.out, connID) {
		out = append(out, m.Code)
	}
	return out
}

func (tb *table) hostCount() int {
	n := 0
	room := tb.room()
	for _, p := range room.Players {
		if p.ID == room.HostID {
			n++
		}
	}
	return n
}
