package impostor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteTally_Unanimous(t *testing.T) {
	tally := NewVoteTally()
	for _, p := range makePlayers(3) {
		require.NoError(t, tally.Cast(p, "player-1"))
	}

	outcome := tally.Resolve()
	assert.False(t, outcome.Tied)
	assert.Equal(t, "player-1", outcome.Eliminated)
	assert.Equal(t, 3, outcome.Votes)
}

func TestVoteTally_Plurality(t *testing.T) {
	tally := NewVoteTally()
	players := makePlayers(5)
	for i, candidate := range []string{"a", "a", "b", "c", "a"} {
		require.NoError(t, tally.Cast(players[i], candidate))
	}

	outcome := tally.Resolve()
	assert.Equal(t, VoteOutcome{Eliminated: "a", Votes: 3}, outcome)
}

func TestVoteTally_TieEliminatesNobody(t *testing.T) {
	tally := NewVoteTally()
	players := makePlayers(4)
	for i, candidate := range []string{"a", "b", "a", "b"} {
		require.NoError(t, tally.Cast(players[i], candidate))
	}

	outcome := tally.Resolve()
	assert.True(t, outcome.Tied)
	assert.Empty(t, outcome.Eliminated)
	assert.Equal(t, 2, outcome.Votes)
}

func TestVoteTally_NoVotesIsTie(t *testing.T) {
	outcome := NewVoteTally().Resolve()
	assert.True(t, outcome.Tied)
	assert.Empty(t, outcome.Eliminated)
}

func TestVoteTally_DuplicateVoteRejected(t *testing.T) {
	tally := NewVoteTally()
	voter := makePlayers(1)[0]

	require.NoError(t, tally.Cast(voter, "a"))
	assert.ErrorIs(t, tally.Cast(voter, "b"), ErrDuplicateVote)

	assert.Equal(t, "a", voter.Vote)
	assert.Equal(t, 1, tally.Count("a"))
	assert.Equal(t, 0, tally.Count("b"))
	assert.Equal(t, 1, tally.Total())
}

func TestVoteTally_DeadVoterRejected(t *testing.T) {
	tally := NewVoteTally()
	voter := makePlayers(1)[0]
	voter.IsAlive = false

	assert.ErrorIs(t, tally.Cast(voter, "a"), ErrNotAlive)
	assert.Zero(t, tally.Total())
	assert.Empty(t, voter.Vote)
}

func TestVoteTally_Reset(t *testing.T) {
	tally := NewVoteTally()
	require.NoError(t, tally.Cast(makePlayers(1)[0], "a"))

	tally.Reset()
	assert.Zero(t, tally.Total())
}

func TestVotedCount(t *testing.T) {
	players := makePlayers(4)
	players[0].Vote = "x"
	players[1].IsAlive = false
	players[1].Vote = "y"

	voted, total := votedCount(players)
	assert.Equal(t, 1, voted)
	assert.Equal(t, 3, total)
	assert.False(t, allVoted(players))

	players[2].Vote = "x"
	players[3].Vote = "x"
	assert.True(t, allVoted(players))
}
