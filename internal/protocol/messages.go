package protocol

import "strconv"

// CRACK_REQUEST (client -> server): the POST /v1/jobs body. Mode selects
// which of the three dungeon entry points the worker runs: "prepare" sizes
// the search without running it, "crack" runs it to completion, and
// "crack_partial" runs only [branch_start, branch_end) of a Prepare'd job.
type CrackRequest struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	Mode string `json:"mode"`

	SpawnerX int32  `json:"spawner_x"`
	SpawnerY int32  `json:"spawner_y"`
	SpawnerZ int32  `json:"spawner_z"`
	Version  string `json:"version"`
	Biome    string `json:"biome,omitempty"`

	FloorSize string `json:"floor_size,omitempty"`
	FloorGrid string `json:"floor_grid"`

	BranchStart int64 `json:"branch_start,omitempty"`
	BranchEnd   int64 `json:"branch_end,omitempty"`
}

// JOB_ACCEPTED (server -> client): the POST /v1/jobs response.
type JobAccepted struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	JobID           string `json:"job_id"`
	State           string `json:"state"`
}

// PrepareResult mirrors internal/dungeon.PrepareResult over the wire.
type PrepareResult struct {
	TotalBranches int64   `json:"total_branches"`
	Possibilities int     `json:"possibilities"`
	Dimensions    int     `json:"dimensions"`
	InfoBits      float32 `json:"info_bits"`
}

// CrackResult mirrors internal/dungeon.CrackResult over the wire. Seeds
// are encoded as decimal strings, not JSON numbers: a signed 64-bit seed
// doesn't always survive a round trip through a JSON number in every
// client runtime (notably JavaScript's float64 numbers), so the wire
// format pins it down as text.
type CrackResult struct {
	DungeonSeeds   []string `json:"dungeon_seeds"`
	StructureSeeds []string `json:"structure_seeds"`
	WorldSeeds     []string `json:"world_seeds"`
}

// FormatSeeds renders a slice of internal int64 seeds as the decimal
// strings the wire protocol requires.
func FormatSeeds(seeds []int64) []string {
	out := make([]string, len(seeds))
	for i, s := range seeds {
		out[i] = strconv.FormatInt(s, 10)
	}
	return out
}

// JOB_STATUS (server -> client): the GET /v1/jobs/{id} response.
type JobStatus struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	JobID           string `json:"job_id"`
	State           string `json:"state"` // QUEUED, RUNNING, DONE, ERROR
	Mode            string `json:"mode"`
	SubmittedAtUnix int64  `json:"submitted_at_unix"`
	FinishedAtUnix  int64  `json:"finished_at_unix,omitempty"`

	Prepare *PrepareResult `json:"prepare,omitempty"`
	Result  *CrackResult   `json:"result,omitempty"`

	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// STREAM_EVENT (server -> client): one line of the GET /v1/jobs/{id}/stream
// body, emitted every time the job's branch progress or state changes.
type StreamEvent struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	JobID         string `json:"job_id"`
	State         string `json:"state"`
	BranchesDone  int64  `json:"branches_done,omitempty"`
	BranchesTotal int64  `json:"branches_total,omitempty"`

	Status *JobStatus `json:"status,omitempty"`
}
