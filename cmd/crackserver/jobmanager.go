package main

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/XMinty77/DungeonCracker/internal/dungeon"
	"github.com/XMinty77/DungeonCracker/internal/historydb"
	"github.com/XMinty77/DungeonCracker/internal/mc"
	"github.com/XMinty77/DungeonCracker/internal/protocol"
)

// job is the in-memory, subscribable mirror of a historydb.Job. The
// database is the system of record across restarts; job exists so a
// GET .../stream connection can be notified the moment a running job's
// branch progress changes, without polling sqlite.
type job struct {
	id  string
	req protocol.CrackRequest

	mu            sync.Mutex
	state         string
	branchesDone  int64
	branchesTotal int64
	prepare       *dungeon.PrepareResult
	result        *dungeon.CrackResult
	errCode       string
	errMessage    string

	subscribers map[chan protocol.StreamEvent]struct{}
}

func newJob(id string, req protocol.CrackRequest) *job {
	return &job{
		id:          id,
		req:         req,
		state:       "QUEUED",
		subscribers: make(map[chan protocol.StreamEvent]struct{}),
	}
}

func (j *job) snapshot() protocol.StreamEvent {
	j.mu.Lock()
	defer j.mu.Unlock()
	return protocol.StreamEvent{
		Type:            protocol.TypeStreamEvent,
		ProtocolVersion: protocol.Version,
		JobID:           j.id,
		State:           j.state,
		BranchesDone:    j.branchesDone,
		BranchesTotal:   j.branchesTotal,
	}
}

func (j *job) subscribe() chan protocol.StreamEvent {
	ch := make(chan protocol.StreamEvent, 8)
	j.mu.Lock()
	j.subscribers[ch] = struct{}{}
	j.mu.Unlock()
	return ch
}

func (j *job) unsubscribe(ch chan protocol.StreamEvent) {
	j.mu.Lock()
	delete(j.subscribers, ch)
	j.mu.Unlock()
}

func (j *job) publish() {
	ev := j.snapshot()
	j.mu.Lock()
	defer j.mu.Unlock()
	for ch := range j.subscribers {
		select {
		case ch <- ev:
		default:
			// Slow subscriber; drop the frame rather than block the worker.
		}
	}
}

func (j *job) setRunning(total int64) {
	j.mu.Lock()
	j.state = "RUNNING"
	j.branchesTotal = total
	j.mu.Unlock()
	j.publish()
}

func (j *job) addProgress(done int64) {
	j.mu.Lock()
	j.branchesDone += done
	j.mu.Unlock()
	j.publish()
}

func (j *job) finishPrepare(result dungeon.PrepareResult) {
	j.mu.Lock()
	j.state = "DONE"
	j.prepare = &result
	j.mu.Unlock()
	j.publish()
}

func (j *job) finishCrack(result dungeon.CrackResult) {
	j.mu.Lock()
	j.state = "DONE"
	j.result = &result
	j.mu.Unlock()
	j.publish()
}

func (j *job) finishError(code, message string) {
	j.mu.Lock()
	j.state = "ERROR"
	j.errCode = code
	j.errMessage = message
	j.mu.Unlock()
	j.publish()
}

// JobManager runs submitted jobs on a fixed-size worker pool and fans a
// "crack" job's branch range out across branchWorkers goroutines, merging
// their seed sets before recording the final result.
type JobManager struct {
	db            *historydb.DB
	logger        *log.Logger
	branchWorkers int

	queue chan *job

	mu   sync.Mutex
	jobs map[string]*job
}

func NewJobManager(db *historydb.DB, logger *log.Logger, poolWorkers, branchWorkers int) *JobManager {
	if poolWorkers <= 0 {
		poolWorkers = 4
	}
	if branchWorkers <= 0 {
		branchWorkers = 4
	}
	m := &JobManager{
		db:            db,
		logger:        logger,
		branchWorkers: branchWorkers,
		queue:         make(chan *job, 4096),
		jobs:          make(map[string]*job),
	}
	for i := 0; i < poolWorkers; i++ {
		go m.workerLoop()
	}
	return m
}

func (m *JobManager) Submit(req protocol.CrackRequest, submittedAtUnix int64) (*job, error) {
	version, err := mc.ParseVersion(req.Version)
	if err != nil {
		return nil, err
	}
	if _, err := dungeon.ParseBiomeType(req.Biome); err != nil {
		return nil, err
	}
	if _, err := dungeon.ParseFloorSize(req.FloorSize); err != nil {
		return nil, err
	}
	if _, err := dungeon.ParseFloorGrid(req.FloorGrid); err != nil {
		return nil, err
	}
	switch req.Mode {
	case "prepare", "crack", "crack_partial":
	default:
		return nil, fmt.Errorf("crackserver: unknown mode %q", req.Mode)
	}
	_ = version

	id := uuid.NewString()
	j := newJob(id, req)

	if err := m.db.InsertJob(historydb.Job{
		ID: id, Mode: req.Mode, State: "QUEUED",
		SpawnerX: req.SpawnerX, SpawnerY: req.SpawnerY, SpawnerZ: req.SpawnerZ,
		Version: req.Version, Biome: req.Biome, FloorSize: req.FloorSize, FloorGrid: req.FloorGrid,
		BranchStart: req.BranchStart, BranchEnd: req.BranchEnd,
		SubmittedAtUnix: submittedAtUnix,
	}); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.jobs[id] = j
	m.mu.Unlock()

	m.queue <- j
	return j, nil
}

func (m *JobManager) Get(id string) (*job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	return j, ok
}

func (m *JobManager) workerLoop() {
	for j := range m.queue {
		m.run(j)
	}
}

func (m *JobManager) run(j *job) {
	req := j.req
	version, err := mc.ParseVersion(req.Version)
	if err != nil {
		m.fail(j, protocol.ErrBadRequest, err.Error())
		return
	}
	biome, err := dungeon.ParseBiomeType(req.Biome)
	if err != nil {
		m.fail(j, protocol.ErrBadRequest, err.Error())
		return
	}
	floorSize, err := dungeon.ParseFloorSize(req.FloorSize)
	if err != nil {
		m.fail(j, protocol.ErrBadFloorSize, err.Error())
		return
	}
	grid, err := dungeon.ParseFloorGrid(req.FloorGrid)
	if err != nil {
		m.fail(j, protocol.ErrBadGrid, err.Error())
		return
	}

	_ = m.db.UpdateState(j.id, "RUNNING")

	switch req.Mode {
	case "prepare":
		result, err := dungeon.PrepareCrack(req.SpawnerX, req.SpawnerY, req.SpawnerZ, version, floorSize, grid)
		if err != nil {
			m.fail(j, mapDungeonError(err), err.Error())
			return
		}
		j.setRunning(1)
		j.addProgress(1)
		j.finishPrepare(result)
		_ = m.db.FinishPrepare(j.id, result, now())

	case "crack_partial":
		j.setRunning(req.BranchEnd - req.BranchStart)
		result, err := dungeon.CrackDungeonPartial(req.SpawnerX, req.SpawnerY, req.SpawnerZ, version, biome, floorSize, grid, req.BranchStart, req.BranchEnd)
		if err != nil {
			m.fail(j, mapDungeonError(err), err.Error())
			return
		}
		j.addProgress(req.BranchEnd - req.BranchStart)
		j.finishCrack(result)
		_ = m.db.FinishCrack(j.id, result, now())

	case "crack":
		m.runFullCrack(j, req, version, biome, floorSize, grid)
	}
}

// runFullCrack sizes the search with PrepareCrack, then splits
// [0, total_branches) into m.branchWorkers contiguous windows run
// concurrently with CrackDungeonPartial, merging every window's seeds.
func (m *JobManager) runFullCrack(j *job, req protocol.CrackRequest, version mc.MCVersion, biome dungeon.BiomeType, floorSize dungeon.FloorSize, grid dungeon.FloorGrid) {
	prep, err := dungeon.PrepareCrack(req.SpawnerX, req.SpawnerY, req.SpawnerZ, version, floorSize, grid)
	if err != nil {
		m.fail(j, mapDungeonError(err), err.Error())
		return
	}

	total := prep.TotalBranches
	j.setRunning(total)

	workers := m.branchWorkers
	if int64(workers) > total {
		workers = int(total)
	}
	if workers <= 0 {
		workers = 1
	}
	chunk := (total + int64(workers) - 1) / int64(workers)
	if chunk == 0 {
		chunk = 1
	}

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		dungeonSeeds = map[int64]struct{}{}
		structSeeds  = map[int64]struct{}{}
		worldSeeds   = map[int64]struct{}{}
		firstErr     error
	)

	for start := int64(0); start < total; start += chunk {
		end := start + chunk
		if end > total {
			end = total
		}
		wg.Add(1)
		go func(start, end int64) {
			defer wg.Done()
			partial, err := dungeon.CrackDungeonPartial(req.SpawnerX, req.SpawnerY, req.SpawnerZ, version, biome, floorSize, grid, start, end)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			for _, s := range partial.DungeonSeeds {
				dungeonSeeds[s] = struct{}{}
			}
			for _, s := range partial.StructureSeeds {
				structSeeds[s] = struct{}{}
			}
			for _, s := range partial.WorldSeeds {
				worldSeeds[s] = struct{}{}
			}
			j.addProgress(end - start)
		}(start, end)
	}
	wg.Wait()

	if firstErr != nil {
		m.fail(j, mapDungeonError(firstErr), firstErr.Error())
		return
	}

	result := dungeon.CrackResult{
		DungeonSeeds:   keysOf(dungeonSeeds),
		StructureSeeds: keysOf(structSeeds),
		WorldSeeds:     keysOf(worldSeeds),
	}
	j.finishCrack(result)
	_ = m.db.FinishCrack(j.id, result, now())
}

func (m *JobManager) fail(j *job, code, message string) {
	j.finishError(code, message)
	_ = m.db.FinishError(j.id, code, message, now())
	m.logger.Printf("job %s failed: %s: %s", j.id, code, message)
}

func keysOf(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

func now() int64 { return time.Now().Unix() }

func mapDungeonError(err error) string {
	switch {
	case errors.Is(err, dungeon.ErrTooManyPossibilities):
		return protocol.ErrTooManyPossibilities
	case errors.Is(err, dungeon.ErrNoValidInterpretations):
		return protocol.ErrNoValidInterpretations
	case errors.Is(err, dungeon.ErrMutableSkipDuringSetup):
		return protocol.ErrMutableSkipDuringSetup
	case errors.Is(err, dungeon.ErrInsufficientInformation):
		return protocol.ErrInsufficientInformation
	case errors.Is(err, dungeon.ErrDegenerateLattice):
		return protocol.ErrDegenerateLattice
	default:
		return protocol.ErrInternal
	}
}
