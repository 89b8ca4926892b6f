package ga

import (
	"math/rand"

	"github.com/solvekit/uras/core/model"
)

// crossoverSequence keeps the activities of a random task subset in
// the first parent's positions and fills the rest in the second
// parent's order, then repairs precedence.
func crossoverSequence(ins *model.Instance, a, b []int, rng *rand.Rand) []int {
	keep := make(map[string]bool, len(ins.Tasks))
	for _, t := range ins.Tasks {
		if rng.Intn(2) == 0 {
			keep[t.ID] = true
		}
	}

	child := make([]int, len(a))
	for i := range child {
		child[i] = -1
	}
	used := make([]bool, len(a))
	for pos, ai := range a {
		if keep[ins.Acts[ai].TaskID] {
			child[pos] = ai
			used[ai] = true
		}
	}
	fill := 0
	for _, ai := range b {
		if used[ai] {
			continue
		}
		for child[fill] != -1 {
			fill++
		}
		child[fill] = ai
	}
	return repairSequence(ins, child)
}

// crossoverResources mixes the two assignment vectors uniformly.
func crossoverResources(a, b []int, rng *rand.Rand) []int {
	child := make([]int, len(a))
	for i := range child {
		if rng.Intn(2) == 0 {
			child[i] = a[i]
		} else {
			child[i] = b[i]
		}
	}
	return child
}

// mutateSwap exchanges two sequence positions and repairs precedence.
func mutateSwap(ins *model.Instance, seq []int, rng *rand.Rand) []int {
	if len(seq) < 2 {
		return seq
	}
	i, j := rng.Intn(len(seq)), rng.Intn(len(seq))
	seq[i], seq[j] = seq[j], seq[i]
	return repairSequence(ins, seq)
}

// mutateReassign moves one activity to another candidate resource. It
// draws from the candidates differing from the current assignment, so
// it terminates even when the list holds no alternative.
func mutateReassign(ins *model.Instance, res []int, rng *rand.Rand) {
	ai := rng.Intn(len(res))
	cands := ins.Candidates(ai)
	alts := make([]int, 0, len(cands))
	for _, ri := range cands {
		if ri != res[ai] {
			alts = append(alts, ri)
		}
	}
	if len(alts) == 0 {
		return
	}
	res[ai] = alts[rng.Intn(len(alts))]
}

// tournament returns the fittest of k random individuals.
func tournament(evals []evaluation, k int, rng *rand.Rand) int {
	best := rng.Intn(len(evals))
	for i := 1; i < k; i++ {
		c := rng.Intn(len(evals))
		if evals[c].fitness < evals[best].fitness {
			best = c
		}
	}
	return best
}

// roulette draws an index with probability proportional to inverse
// fitness.
func roulette(evals []evaluation, rng *rand.Rand) int {
	var total float64
	for _, e := range evals {
		total += 1 / (1 + e.fitness)
	}
	draw := rng.Float64() * total
	for i, e := range evals {
		draw -= 1 / (1 + e.fitness)
		if draw <= 0 {
			return i
		}
	}
	return len(evals) - 1
}

// seedPopulation mixes random individuals with load-balanced and
// fastest-resource heuristics so the search starts from useful
// diversity.
func seedPopulation(ins *model.Instance, size int, rng *rand.Rand) []chromosome {
	pop := make([]chromosome, 0, size)
	balanced := balancedResources(ins)
	fastest := fastestResources(ins)
	for i := 0; i < size; i++ {
		c := chromosome{seq: randomTopoOrder(ins, rng)}
		switch {
		case i%4 == 2:
			c.res = append([]int(nil), balanced...)
		case i%4 == 3:
			c.res = append([]int(nil), fastest...)
		default:
			c.res = randomResources(ins, rng)
		}
		pop = append(pop, c)
	}
	return pop
}

// hasNoChoice reports whether mutation can ever change assignments.
func hasNoChoice(ins *model.Instance) bool {
	for ai := 0; ai < ins.NumActivities(); ai++ {
		if len(ins.Candidates(ai)) > 1 {
			return false
		}
	}
	return true
}
