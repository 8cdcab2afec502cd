/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import "math/rand/v2"

// Characters is the pool the shared character is drawn from.
var Characters = []string{
	"Adam", "Eve", "Noah", "Abraham", "Sarah", "Isaac", "Jacob", "Joseph",
	"Moses", "Aaron", "Joshua", "Samuel", "David", "Solomon", "Daniel",
	"Jesus", "Mary", "Joseph of Nazareth", "John the Baptist", "Peter",
	"John", "James", "Andrew", "Matthew", "Philip", "Thomas", "Paul",
	"Mary Magdalene", "Lazarus", "Zacchaeus",
}

// Rand is the source of randomness for role assignment. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// globalRand uses the goroutine-safe top-level math/rand/v2 source, so rooms
// may assign roles concurrently.
type globalRand struct{}

func (globalRand) IntN(n int) int {
	return rand.IntN(n)
}

// ImpostorCount returns how many impostors a game of n players gets when the
// host asked for requested. Below ChooseImpostorsAt players it is always 1,
// and at least one innocent always remains.
func ImpostorCount(n, requested int) int {
	if n < ChooseImpostorsAt || requested < 1 {
		requested = 1
	}

	return max(min(requested, n-1), 0)
}

// AssignRoles clears every role flag, marks ImpostorCount(len(players),
// requested) players as impostors chosen uniformly without replacement, and
// returns a character drawn uniformly from pool.
func AssignRoles(rng Rand, players []*Player, requested int, pool []string) string {
	for _, p := range players {
		p.IsImpostor = false
	}

	order := make([]int, len(players))
	for i := range order {
		order[i] = i
	}

	// Fisher-Yates
	for i := len(order) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		order[i], order[j] = order[j], order[i]
	}

	for _, i := range order[:ImpostorCount(len(players), requested)] {
		players[i].IsImpostor = true
	}

	if len(pool) == 0 {
		return ""
	}

	return pool[rng.IntN(len(pool))]
}
