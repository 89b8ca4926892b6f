package ga

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/solvekit/uras/core/logger"
	"github.com/solvekit/uras/core/model"
)

// Config tunes the genetic search.
type Config struct {
	PopulationSize  int     `json:"population_size"`
	Generations     int     `json:"generations"`
	CrossoverRate   float64 `json:"crossover_rate"`
	MutationRate    float64 `json:"mutation_rate"`
	StagnationLimit int     `json:"stagnation_limit"`
	// Seed fixes the random source for reproducible runs; 0 draws from
	// the clock.
	Seed           int64  `json:"seed"`
	TournamentSize int    `json:"tournament_size"`
	EliteCount     int    `json:"elite_count"`
	Workers        int    `json:"workers"`
	// Selection is "tournament" or "roulette".
	Selection      string  `json:"selection"`
	MakespanWeight float64 `json:"makespan_weight"`
	PenaltyWeight  float64 `json:"penalty_weight"`
}

// SetDefaults fills unset fields with working values.
func (c *Config) SetDefaults() {
	if c.PopulationSize <= 0 {
		c.PopulationSize = 60
	}
	if c.Generations <= 0 {
		c.Generations = 200
	}
	if c.CrossoverRate == 0 {
		c.CrossoverRate = 0.9
	}
	if c.MutationRate == 0 {
		c.MutationRate = 0.2
	}
	if c.StagnationLimit <= 0 {
		c.StagnationLimit = 30
	}
	if c.TournamentSize <= 0 {
		c.TournamentSize = 3
	}
	if c.EliteCount <= 0 {
		c.EliteCount = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Selection == "" {
		c.Selection = "tournament"
	}
	if c.MakespanWeight == 0 {
		c.MakespanWeight = 1
	}
	if c.PenaltyWeight == 0 {
		c.PenaltyWeight = 1
	}
}

// Validate rejects out-of-range parameters.
func (c Config) Validate() error {
	if c.CrossoverRate < 0 || c.CrossoverRate > 1 {
		return fmt.Errorf("crossover rate %f out of [0, 1]", c.CrossoverRate)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("mutation rate %f out of [0, 1]", c.MutationRate)
	}
	if c.Selection != "tournament" && c.Selection != "roulette" {
		return fmt.Errorf("unknown selection %q", c.Selection)
	}
	if c.EliteCount >= c.PopulationSize {
		return fmt.Errorf("elite count %d must be below population size %d", c.EliteCount, c.PopulationSize)
	}
	return nil
}

// Result is the search outcome. History records the best fitness per
// generation and never worsens.
type Result struct {
	Schedule    *model.Schedule
	Fitness     float64
	Generations int
	Converged   bool
	History     []float64
}

// Scheduler runs the genetic search.
type Scheduler struct {
	cfg      Config
	log      logger.Logger
	progress func(generation int, best float64)
}

// OnProgress installs a callback invoked after every generation with
// the running best fitness. It must be set before Solve.
func (g *Scheduler) OnProgress(fn func(generation int, best float64)) {
	g.progress = fn
}

// New validates the configuration and returns a scheduler.
func New(cfg Config, log logger.Logger) (*Scheduler, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Scheduler{cfg: cfg, log: log}, nil
}

// Solve evolves a population until the generation limit or stagnation
// and returns the best decoded schedule. It reports ErrInfeasible when
// even the best individual breaches a hard constraint.
func (g *Scheduler) Solve(ctx context.Context, ins *model.Instance) (Result, error) {
	res := Result{}
	if ins.NumActivities() == 0 {
		res.Schedule = model.NewSchedule()
		return res, nil
	}

	seed := g.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	pop := seedPopulation(ins, g.cfg.PopulationSize, rng)
	evals := g.evaluateAll(ins, pop)

	bestEval := evals[fittest(evals)]
	res.History = append(res.History, bestEval.fitness)

	noChoice := hasNoChoice(ins)
	stagnation := 0

	for gen := 1; gen <= g.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		pop = g.nextGeneration(ins, pop, evals, rng, noChoice)
		evals = g.evaluateAll(ins, pop)
		res.Generations = gen

		if idx := fittest(evals); evals[idx].fitness < bestEval.fitness {
			bestEval = evals[idx]
			stagnation = 0
		} else {
			stagnation++
		}
		res.History = append(res.History, bestEval.fitness)

		fits := make([]float64, len(evals))
		for i, e := range evals {
			fits[i] = e.fitness
		}
		g.log.Debugw("generation evaluated", map[string]any{
			"generation": gen,
			"best":       bestEval.fitness,
			"mean":       stat.Mean(fits, nil),
			"stddev":     stat.StdDev(fits, nil),
		})

		if g.progress != nil {
			g.progress(gen, bestEval.fitness)
		}

		if stagnation >= g.cfg.StagnationLimit {
			res.Converged = true
			break
		}
	}

	res.Schedule = bestEval.schedule
	res.Fitness = bestEval.fitness
	if bestEval.hardBreach {
		return res, fmt.Errorf("%w: best individual still violates hard constraints", model.ErrInfeasible)
	}
	g.log.Infof("ga done: generations=%d fitness=%f converged=%v seed=%d", res.Generations, res.Fitness, res.Converged, seed)
	return res, nil
}

// nextGeneration breeds a full population: elites carry over, the
// rest come from selection, crossover and mutation.
func (g *Scheduler) nextGeneration(ins *model.Instance, pop []chromosome, evals []evaluation, rng *rand.Rand, noChoice bool) []chromosome {
	order := make([]int, len(evals))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return evals[order[i]].fitness < evals[order[j]].fitness })

	next := make([]chromosome, 0, g.cfg.PopulationSize)
	for i := 0; i < g.cfg.EliteCount; i++ {
		next = append(next, pop[order[i]].clone())
	}

	for len(next) < g.cfg.PopulationSize {
		pa := pop[g.selectOne(evals, rng)]
		pb := pop[g.selectOne(evals, rng)]

		var child chromosome
		if rng.Float64() < g.cfg.CrossoverRate {
			child = chromosome{
				seq: crossoverSequence(ins, pa.seq, pb.seq, rng),
				res: crossoverResources(pa.res, pb.res, rng),
			}
		} else {
			child = pa.clone()
		}
		if rng.Float64() < g.cfg.MutationRate {
			child.seq = mutateSwap(ins, child.seq, rng)
		}
		if !noChoice && rng.Float64() < g.cfg.MutationRate {
			mutateReassign(ins, child.res, rng)
		}
		next = append(next, child)
	}
	return next
}

func (g *Scheduler) selectOne(evals []evaluation, rng *rand.Rand) int {
	if g.cfg.Selection == "roulette" {
		return roulette(evals, rng)
	}
	return tournament(evals, g.cfg.TournamentSize, rng)
}

// evaluateAll decodes the population across workers. Individuals share
// only the read-only instance; results merge by index.
func (g *Scheduler) evaluateAll(ins *model.Instance, pop []chromosome) []evaluation {
	evals := make([]evaluation, len(pop))
	workers := g.cfg.Workers
	if workers > len(pop) {
		workers = len(pop)
	}
	chunk := (len(pop) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(pop) {
			hi = len(pop)
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				evals[i] = decode(ins, pop[i], g.cfg.MakespanWeight, g.cfg.PenaltyWeight)
			}
		}(lo, hi)
	}
	wg.Wait()
	return evals
}

func fittest(evals []evaluation) int {
	best := 0
	for i := 1; i < len(evals); i++ {
		if evals[i].fitness < evals[best].fitness {
			best = i
		}
	}
	return best
}
