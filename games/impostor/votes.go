/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

// VoteTally counts elimination votes for one voting phase.
type VoteTally struct {
	counts map[string]int
}

func NewVoteTally() *VoteTally {
	return &VoteTally{counts: make(map[string]int)}
}

func (t *VoteTally) Reset() {
	clear(t.counts)
}

// Cast records voter's vote for candidate. A voter who already voted this
// phase is rejected and the tally is left untouched.
func (t *VoteTally) Cast(voter *Player, candidate string) error {
	if !voter.IsAlive {
		return ErrNotAlive
	}
	if voter.Vote != "" {
		return ErrDuplicateVote
	}

	voter.Vote = candidate
	t.counts[candidate]++

	return nil
}

// Count returns the votes received by candidate.
func (t *VoteTally) Count(candidate string) int {
	return t.counts[candidate]
}

// Total returns the number of votes cast.
func (t *VoteTally) Total() int {
	total := 0
	for _, n := range t.counts {
		total += n
	}
	return total
}

// VoteOutcome is the resolution of a voting phase. Eliminated is empty when
// Tied is set.
type VoteOutcome struct {
	Eliminated string
	Votes      int
	Tied       bool
}

// Resolve finds the plurality candidate. No votes at all, or more than one
// candidate sharing the top count, is a tie and eliminates nobody.
func (t *VoteTally) Resolve() VoteOutcome {
	maxVotes := 0
	var leaders []string
	for name, n := range t.counts {
		switch {
		case n > maxVotes:
			maxVotes = n
			leaders = []string{name}
		case n == maxVotes:
			leaders = append(leaders, name)
		}
	}

	if maxVotes == 0 || len(leaders) != 1 {
		return VoteOutcome{Votes: maxVotes, Tied: true}
	}

	return VoteOutcome{Eliminated: leaders[0], Votes: maxVotes}
}

// allVoted reports whether every living player has voted.
func allVoted(players []*Player) bool {
	for _, p := range players {
		if p.IsAlive && p.Vote == "" {
			return false
		}
	}
	return true
}

func votedCount(players []*Player) (voted, total int) {
	for _, p := range players {
		if !p.IsAlive {
			continue
		}
		total++
		if p.Vote != "" {
			voted++
		}
	}
	return voted, total
}
