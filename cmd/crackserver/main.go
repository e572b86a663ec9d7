package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/XMinty77/DungeonCracker/internal/historydb"
)

func main() {
	var (
		configPath    = flag.String("config", "", "path to crackserver.yaml (optional; flags are the defaults it overlays)")
		addr          = flag.String("addr", ":8080", "http listen address")
		dbPath        = flag.String("db", "./data/crackserver.db", "sqlite history db path")
		poolWorkers   = flag.Int("pool_workers", 4, "number of jobs run concurrently")
		branchWorkers = flag.Int("branch_workers", 4, "branch-range goroutines per 'crack' job")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[crackserver] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := LoadConfig(*configPath, Config{
		Addr:          *addr,
		DBPath:        *dbPath,
		PoolWorkers:   *poolWorkers,
		BranchWorkers: *branchWorkers,
		LogLevel:      "info",
	})
	if err != nil {
		logger.Fatalf("%v", err)
	}

	db, err := historydb.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Fatalf("open history db: %v", err)
	}
	defer db.Close()

	jm := NewJobManager(db, logger, cfg.PoolWorkers, cfg.BranchWorkers)
	api := newJobsAPI(jm, db, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/jobs", func(rw http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			api.handleCreateJob(rw, r)
		case http.MethodGet:
			api.handleListJobs(rw, r)
		default:
			rw.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/v1/jobs/", func(rw http.ResponseWriter, r *http.Request) {
		if len(r.URL.Path) > len("/v1/jobs/") && r.URL.Path[len(r.URL.Path)-len("/stream"):] == "/stream" {
			api.handleStream(rw, r)
			return
		}
		api.handleGetJob(rw, r)
	})

	ctx, cancel := signalContext()
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s (pool_workers=%d branch_workers=%d db=%s)", cfg.Addr, cfg.PoolWorkers, cfg.BranchWorkers, cfg.DBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
