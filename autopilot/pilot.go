// Package autopilot picks movement requests for a continuous snake without a
// human at the keyboard. It is the input layer used by self-play.
package autopilot

import (
	"math"
	"math/rand"

	"github.com/brensch/snekline/game"
	"github.com/brensch/snekline/rules"
)

// Pilot is a greedy food seeker with a short safety lookahead.
type Pilot struct {
	Settings rules.Settings
	// Horizon is how far ahead, in cells, each candidate is simulated.
	Horizon float64
	// Resolution is the distance simulated per lookahead step.
	Resolution float64
	// Explore is the probability of picking a random safe candidate instead
	// of the greedy one. Needs Rng.
	Explore float64
	Rng     *rand.Rand
}

// New returns a pilot with a 1.5 cell horizon.
func New(settings rules.Settings, rng *rand.Rand) *Pilot {
	return &Pilot{
		Settings:   settings,
		Horizon:    1.5,
		Resolution: 0.25,
		Rng:        rng,
	}
}

type candidate struct {
	dir  game.Direction
	dist float64
}

// Candidates are the current heading followed by its two perpendiculars.
func Candidates(d game.Direction) []game.Direction {
	switch d {
	case game.Up, game.Down:
		return []game.Direction{d, game.Left, game.Right}
	default:
		return []game.Direction{d, game.Up, game.Down}
	}
}

// Safe reports whether holding dir keeps the snake alive for the horizon.
func (p *Pilot) Safe(state *game.GameState, dir game.Direction) bool {
	_, ok := p.simulate(state, dir)
	return ok
}

// Decide returns the movement request for this frame. If no candidate
// survives the lookahead, the current heading is kept.
func (p *Pilot) Decide(state *game.GameState) game.Direction {
	safe := make([]candidate, 0, 3)
	for _, dir := range Candidates(state.Direction) {
		head, ok := p.simulate(state, dir)
		if !ok {
			continue
		}
		safe = append(safe, candidate{dir: dir, dist: manhattan(head, state.Food)})
	}
	if len(safe) == 0 {
		return state.Direction
	}
	if p.Rng != nil && p.Explore > 0 && p.Rng.Float64() < p.Explore {
		return safe[p.Rng.Intn(len(safe))].dir
	}

	// Ties go to the earlier candidate, so the current heading wins.
	best := safe[0]
	for _, c := range safe[1:] {
		if c.dist < best.dist-game.Epsilon {
			best = c
		}
	}
	return best.dir
}

func (p *Pilot) simulate(state *game.GameState, dir game.Direction) (game.Vector, bool) {
	sim := state.Clone()
	res := p.Resolution
	if res <= 0 {
		res = 0.25
	}
	steps := int(math.Ceil(p.Horizon / res))
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		if err := rules.Process(sim, p.Settings, res/sim.Speed, dir, nil); err != nil {
			return game.Vector{}, false
		}
		if sim.Over {
			return game.Vector{}, false
		}
	}
	return sim.Snake.Head(), true
}

func manhattan(a, b game.Vector) float64 {
	return math.Abs(a.X-b.X) + math.Abs(a.Y-b.Y)
}
