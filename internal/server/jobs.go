package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mediadex/mediadex/internal/catalog"
	"github.com/mediadex/mediadex/internal/crawler"
	"github.com/mediadex/mediadex/internal/safeurl"
)

// Job statuses.
const (
	JobRunning  = "running"
	JobDone     = "done"
	JobFailed   = "failed"
	JobCanceled = "canceled"
)

// Job tracks one background crawl.
type Job struct {
	ID       string    `json:"id"`
	Root     string    `json:"root"`
	Status   string    `json:"status"`
	Files    int       `json:"files"`
	Pages    int       `json:"pages"`
	Error    string    `json:"error,omitempty"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`

	cancel context.CancelFunc
}

type jobSet struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

func newJobSet() *jobSet {
	return &jobSet{jobs: map[string]*Job{}}
}

func (js *jobSet) add(j *Job) {
	js.mu.Lock()
	defer js.mu.Unlock()
	js.jobs[j.ID] = j
}

func (js *jobSet) get(id string) (Job, bool) {
	js.mu.Lock()
	defer js.mu.Unlock()
	j, ok := js.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

func (js *jobSet) update(id string, fn func(*Job)) {
	js.mu.Lock()
	defer js.mu.Unlock()
	if j, ok := js.jobs[id]; ok {
		fn(j)
	}
}

func (s *Server) handleCrawlStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Root string `json:"root"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := safeurl.Check(req.Root); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{
		ID:      uuid.NewString(),
		Root:    req.Root,
		Status:  JobRunning,
		Started: time.Now(),
		cancel:  cancel,
	}
	s.jobs.add(job)
	// Respond with a copy taken before the goroutine starts: runCrawl mutates
	// the shared Job under the set lock, which the encoder does not hold.
	snapshot := *job
	go s.runCrawl(ctx, job.ID, req.Root)

	writeJSON(w, http.StatusAccepted, snapshot)
}

// runCrawl drives one crawl to completion and swaps the result into the
// shared catalog. A canceled crawl still publishes its partial results; only
// a root or rate-limit failure marks the job failed.
func (s *Server) runCrawl(ctx context.Context, jobID, root string) {
	files, stats, err := crawler.CrawlStats(ctx, root, crawler.Options{
		MaxDepth: s.opts.Crawl.MaxDepth,
		Throttle: s.opts.Crawl.Throttle,
		Client:   s.opts.Fetcher,
		Logger:   s.log,
	})
	if err != nil {
		s.log.Error().Err(err).Str("root", root).Msg("crawl failed")
		s.jobs.update(jobID, func(j *Job) {
			j.Status = JobFailed
			j.Error = err.Error()
			j.Finished = time.Now()
		})
		return
	}

	shows, movies := catalog.Aggregate(files)
	s.opts.Catalog.Replace(shows, movies)
	if s.opts.CatalogPath != "" {
		if err := s.opts.Catalog.Save(s.opts.CatalogPath); err != nil {
			s.log.Error().Err(err).Str("path", s.opts.CatalogPath).Msg("catalog save failed")
		}
	}
	s.log.Info().Str("root", root).Stringer("stats", stats).Msg("crawl finished")

	status := JobDone
	if ctx.Err() != nil {
		status = JobCanceled
	}
	s.jobs.update(jobID, func(j *Job) {
		j.Status = status
		j.Files = stats.Files
		j.Pages = stats.Pages
		j.Finished = time.Now()
	})
}

func (s *Server) handleCrawlStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobs.get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "no such job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCrawlCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.jobs.mu.Lock()
	j, ok := s.jobs.jobs[id]
	if ok && j.cancel != nil {
		j.cancel()
	}
	s.jobs.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "no such job")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
