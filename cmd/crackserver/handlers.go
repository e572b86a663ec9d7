package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/XMinty77/DungeonCracker/internal/dungeon"
	"github.com/XMinty77/DungeonCracker/internal/historydb"
	"github.com/XMinty77/DungeonCracker/internal/protocol"
)

type jobsAPI struct {
	jm     *JobManager
	db     *historydb.DB
	logger *log.Logger

	upgrader websocket.Upgrader
}

func newJobsAPI(jm *JobManager, db *historydb.DB, logger *log.Logger) *jobsAPI {
	return &jobsAPI{
		jm:     jm,
		db:     db,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// handleCreateJob serves POST /v1/jobs.
func (a *jobsAPI) handleCreateJob(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(rw, http.StatusMethodNotAllowed, protocol.ErrBadRequest, "POST required")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(rw, http.StatusBadRequest, protocol.ErrProtoBadRequest, err.Error())
		return
	}

	base, err := protocol.DecodeBase(body)
	if err != nil {
		writeError(rw, http.StatusBadRequest, protocol.ErrProtoBadRequest, err.Error())
		return
	}
	if base.Type != protocol.TypeCrackRequest {
		writeError(rw, http.StatusBadRequest, protocol.ErrProtoBadRequest, fmt.Sprintf("unexpected message type %q, want %q", base.Type, protocol.TypeCrackRequest))
		return
	}

	var req protocol.CrackRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(rw, http.StatusBadRequest, protocol.ErrProtoBadRequest, err.Error())
		return
	}

	j, err := a.jm.Submit(req, time.Now().Unix())
	if err != nil {
		code := protocol.ErrBadRequest
		switch {
		case errors.Is(err, dungeon.ErrBadFloorSize):
			code = protocol.ErrBadFloorSize
		case errors.Is(err, dungeon.ErrBadGrid):
			code = protocol.ErrBadGrid
		}
		writeError(rw, http.StatusBadRequest, code, err.Error())
		return
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(rw).Encode(protocol.JobAccepted{
		Type:            protocol.TypeJobAccepted,
		ProtocolVersion: protocol.Version,
		JobID:           j.id,
		State:           "QUEUED",
	})
}

// handleGetJob serves GET /v1/jobs/{id}.
func (a *jobsAPI) handleGetJob(rw http.ResponseWriter, r *http.Request) {
	id := pathTail(r.URL.Path, "/v1/jobs/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(rw, r)
		return
	}

	row, err := a.db.GetJob(id)
	if err != nil {
		writeError(rw, http.StatusNotFound, protocol.ErrJobNotFound, "job not found")
		return
	}

	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(jobRowToStatus(row))
}

// handleListJobs serves GET /v1/jobs?since_cursor=&limit=.
func (a *jobsAPI) handleListJobs(rw http.ResponseWriter, r *http.Request) {
	since, _ := strconv.ParseUint(r.URL.Query().Get("since_cursor"), 10, 64)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	rows, next, err := a.db.ListJobs(since, limit)
	if err != nil {
		writeError(rw, http.StatusInternalServerError, protocol.ErrInternal, err.Error())
		return
	}

	items := make([]protocol.JobListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, protocol.JobListItem{Cursor: uint64(row.Seq), Job: jobRowToStatus(row)})
	}

	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(protocol.JobListResponse{
		Type:            protocol.TypeJobList,
		ProtocolVersion: protocol.Version,
		Jobs:            items,
		NextCursor:      next,
	})
}

// handleStream serves GET /v1/jobs/{id}/stream, upgrading to a websocket
// and pushing a StreamEvent frame every time the job's branch progress or
// state changes, until it reaches DONE or ERROR.
func (a *jobsAPI) handleStream(rw http.ResponseWriter, r *http.Request) {
	id := pathTail(r.URL.Path, "/v1/jobs/")
	id = strings.TrimSuffix(id, "/stream")
	if id == "" {
		http.NotFound(rw, r)
		return
	}

	j, ok := a.jm.Get(id)
	if !ok {
		http.NotFound(rw, r)
		return
	}

	conn, err := a.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := j.subscribe()
	defer j.unsubscribe(sub)

	// Initial frame: the caller shouldn't have to wait for the next
	// state change just to learn where the job currently stands.
	if err := writeJSON(conn, j.snapshot()); err != nil {
		return
	}

	go func() {
		// Reader goroutine only exists to notice the client disconnecting;
		// the stream is server -> client only.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := writeJSON(conn, ev); err != nil {
				return
			}
			if ev.State == "DONE" || ev.State == "ERROR" {
				return
			}
		}
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		if errors.Is(err, websocket.ErrCloseSent) {
			return err
		}
		return err
	}
	return nil
}

func jobRowToStatus(row historydb.Job) protocol.JobStatus {
	status := protocol.JobStatus{
		Type:            protocol.TypeJobStatus,
		ProtocolVersion: protocol.Version,
		JobID:           row.ID,
		State:           row.State,
		Mode:            row.Mode,
		SubmittedAtUnix: row.SubmittedAtUnix,
		FinishedAtUnix:  row.FinishedAtUnix,
		Error:           row.Error,
		Message:         row.Message,
	}
	if row.Prepare != nil {
		status.Prepare = &protocol.PrepareResult{
			TotalBranches: row.Prepare.TotalBranches,
			Possibilities: row.Prepare.Possibilities,
			Dimensions:    row.Prepare.Dimensions,
			InfoBits:      row.Prepare.InfoBits,
		}
	}
	if row.Result != nil {
		status.Result = &protocol.CrackResult{
			DungeonSeeds:   protocol.FormatSeeds(row.Result.DungeonSeeds),
			StructureSeeds: protocol.FormatSeeds(row.Result.StructureSeeds),
			WorldSeeds:     protocol.FormatSeeds(row.Result.WorldSeeds),
		}
	}
	return status
}

func pathTail(path, prefix string) string {
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	return strings.TrimPrefix(path, prefix)
}

func writeError(rw http.ResponseWriter, status int, code, message string) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(map[string]string{"error": code, "message": message})
}
