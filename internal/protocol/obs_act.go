package protocol

// JOB_LIST_REQUEST (client -> server): GET /v1/jobs, cursor-paginated over
// job submission order the same way the teacher's event stream paginates
// over event cursors.
type JobListRequest struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id"`
	SinceCursor     uint64 `json:"since_cursor"`
	Limit           int    `json:"limit"`
}

type JobListItem struct {
	Cursor uint64    `json:"cursor"`
	Job    JobStatus `json:"job"`
}

// JOB_LIST (server -> client)
type JobListResponse struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	ReqID           string        `json:"req_id"`
	Jobs            []JobListItem `json:"jobs"`
	NextCursor      uint64        `json:"next_cursor"`
}
