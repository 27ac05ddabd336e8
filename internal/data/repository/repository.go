// Package repository combines the local and remote task sources behind an
// in-memory cache and exposes them through the asynchronous
// tasklist.Repository contract.
package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/colonyops/tasks/internal/core/task"
	"github.com/colonyops/tasks/internal/tasklist"
)

// Source is a task.Store that can also swap its whole content at once.
type Source interface {
	task.Store
	ReplaceAll(ctx context.Context, tasks []task.Task) error
}

// Options tunes repository behavior.
type Options struct {
	// ServeStale delivers the cached list before fetching fresh data when
	// the cache has been invalidated. Callbacks then fire twice.
	ServeStale bool
	// Timeout bounds each call to a source. Zero means DefaultTimeout.
	Timeout time.Duration
}

// maxLoadAttempts bounds how often a remote list is retried when mutations
// keep landing while it runs.
const maxLoadAttempts = 3

// DefaultTimeout bounds a single source call when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Repository implements tasklist.Repository. Reads run in the background and
// report through callbacks. Local writes are synchronous. Remote writes are
// queued, applied in order in the background, and only logged on failure.
type Repository struct {
	local  Source
	remote Source
	opts   Options
	log    zerolog.Logger

	mu    sync.Mutex
	cache []task.Task // nil until the first successful load
	dirty bool
	gen   uint64 // bumped by every mutation

	// writeMu orders mutations against cache installs. A mutation writes
	// local, bumps gen and queues its remote call while holding it.
	writeMu sync.Mutex

	// Remote calls run one at a time in submission order, so a refresh
	// observes every write queued before it.
	queueMu  sync.Mutex
	queue    []remoteCall
	draining bool

	wg conc.WaitGroup
}

type remoteCall struct {
	op string
	fn func(context.Context) error
}

var _ tasklist.Repository = (*Repository)(nil)

// New creates a repository over the local and remote sources.
func New(local, remote Source, opts Options, log zerolog.Logger) *Repository {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Repository{
		local:  local,
		remote: remote,
		opts:   opts,
		log:    log.With().Str("component", "repository").Logger(),
	}
}

// RefreshTasks marks the cache dirty so the next GetTasks goes remote.
func (r *Repository) RefreshTasks() {
	r.mu.Lock()
	r.dirty = true
	r.mu.Unlock()
}

// GetTasks loads tasks on a background goroutine and reports to cb.
func (r *Repository) GetTasks(cb tasklist.LoadTasksCallback) {
	r.wg.Go(func() { r.getTasks(cb) })
}

func (r *Repository) getTasks(cb tasklist.LoadTasksCallback) {
	r.mu.Lock()
	cached := slices.Clone(r.cache)
	hasCache := r.cache != nil
	dirty := r.dirty
	r.mu.Unlock()

	if hasCache && !dirty {
		cb.OnTasksLoaded(cached)
		return
	}

	if hasCache && r.opts.ServeStale {
		r.log.Debug().Int("count", len(cached)).Msg("serving stale cache")
		cb.OnTasksLoaded(cached)
	}

	if !dirty {
		if tasks, ok := r.loadLocal(); ok {
			cb.OnTasksLoaded(tasks)
			return
		}
	}

	tasks, err := r.loadRemote()
	if err != nil {
		r.log.Error().Err(err).Msg("remote list failed")
		cb.OnDataNotAvailable()
		return
	}
	cb.OnTasksLoaded(tasks)
}

// loadLocal installs the local list as the cache. It reports false when the
// local source is empty or failed.
func (r *Repository) loadLocal() ([]task.Task, bool) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	ctx, cancel := r.callContext()
	defer cancel()

	tasks, err := r.local.List(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("local list failed, falling back to remote")
		return nil, false
	}
	if len(tasks) == 0 {
		return nil, false
	}

	r.mu.Lock()
	r.cache = slices.Clone(tasks)
	r.mu.Unlock()
	return tasks, true
}

// loadRemote lists the remote source and installs the result. A list that a
// mutation overtook is discarded and retried, since the mutation's remote
// call is queued after it.
func (r *Repository) loadRemote() ([]task.Task, error) {
	var tasks []task.Task
	for attempt := 1; attempt <= maxLoadAttempts; attempt++ {
		var (
			gen uint64
			err error
		)
		tasks, gen, err = r.listRemote()
		if err != nil {
			return nil, err
		}
		if r.install(tasks, gen) {
			return slices.Clone(tasks), nil
		}
		r.log.Debug().Int("attempt", attempt).Msg("tasks changed during remote list")
	}

	r.log.Warn().Msg("tasks kept changing during remote list, leaving cache dirty")
	r.mu.Lock()
	r.dirty = true
	r.mu.Unlock()
	return slices.Clone(tasks), nil
}

func (r *Repository) listRemote() ([]task.Task, uint64, error) {
	var (
		tasks []task.Task
		err   error
		done  = make(chan struct{})
	)

	r.writeMu.Lock()
	r.mu.Lock()
	gen := r.gen
	r.mu.Unlock()
	r.queueRemote("list", func(ctx context.Context) error {
		defer close(done)
		tasks, err = r.remote.List(ctx)
		return nil
	})
	r.writeMu.Unlock()

	<-done
	return tasks, gen, err
}

// install makes a remote list the cache and rewrites the local source to
// match. It refuses when a mutation ran after the list was queued.
func (r *Repository) install(tasks []task.Task, gen uint64) bool {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.Lock()
	if r.gen != gen {
		r.mu.Unlock()
		return false
	}
	r.cache = slices.Clone(tasks)
	if r.cache == nil {
		r.cache = []task.Task{}
	}
	r.dirty = false
	r.mu.Unlock()

	ctx, cancel := r.callContext()
	defer cancel()
	if err := r.local.ReplaceAll(ctx, tasks); err != nil {
		r.log.Error().Err(err).Msg("refresh local tasks")
	}
	return true
}

// CompleteTask marks t completed everywhere.
func (r *Repository) CompleteTask(t task.Task) {
	r.setCompleted(t.ID, true)
}

// ActivateTask marks t active everywhere.
func (r *Repository) ActivateTask(t task.Task) {
	r.setCompleted(t.ID, false)
}

func (r *Repository) setCompleted(id string, completed bool) {
	op := task.Store.Activate
	verb := "activate"
	if completed {
		op = task.Store.Complete
		verb = "complete"
	}

	ctx, cancel := r.callContext()
	defer cancel()

	_ = r.mutate(ctx, verb,
		r.logged(verb, func(ctx context.Context) error { return op(r.local, ctx, id) }),
		func(cache []task.Task) []task.Task {
			if i := indexOf(cache, id); i >= 0 {
				cache[i].Completed = completed
			}
			return cache
		},
		func(ctx context.Context) error { return op(r.remote, ctx, id) },
	)
}

// ClearCompletedTasks removes completed tasks everywhere.
func (r *Repository) ClearCompletedTasks() {
	ctx, cancel := r.callContext()
	defer cancel()

	_ = r.mutate(ctx, "clear completed",
		r.logged("clear completed", r.local.ClearCompleted),
		func(cache []task.Task) []task.Task {
			return slices.DeleteFunc(cache, task.Task.IsCompleted)
		},
		r.remote.ClearCompleted,
	)
}

// SaveTask validates and stores t. The local write error is returned; the
// remote write happens in the background.
func (r *Repository) SaveTask(ctx context.Context, t task.Task) error {
	if err := task.Validate(t); err != nil {
		return err
	}

	err := r.mutate(ctx, "save",
		func(ctx context.Context) error { return r.local.Save(ctx, t) },
		func(cache []task.Task) []task.Task {
			if i := indexOf(cache, t.ID); i >= 0 {
				cache[i] = t
				return cache
			}
			return append(cache, t)
		},
		func(ctx context.Context) error { return r.remote.Save(ctx, t) },
	)
	if err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// GetTask looks a task up in the cache, then local, then remote.
func (r *Repository) GetTask(ctx context.Context, id string) (task.Task, error) {
	r.mu.Lock()
	if i := indexOf(r.cache, id); i >= 0 {
		t := r.cache[i]
		r.mu.Unlock()
		return t, nil
	}
	r.mu.Unlock()

	t, err := r.local.Get(ctx, id)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, task.ErrNotFound) {
		r.log.Warn().Err(err).Str("id", id).Msg("local get failed")
	}

	t, err = r.remote.Get(ctx, id)
	if err != nil {
		return task.Task{}, err
	}

	r.updateCache(func(cache []task.Task) []task.Task {
		if indexOf(cache, id) < 0 {
			cache = append(cache, t)
		}
		return cache
	})
	return t, nil
}

// DeleteTask removes a task everywhere.
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	err := r.mutate(ctx, "delete",
		func(ctx context.Context) error { return r.local.Delete(ctx, id) },
		func(cache []task.Task) []task.Task {
			return slices.DeleteFunc(cache, func(t task.Task) bool { return t.ID == id })
		},
		func(ctx context.Context) error { return r.remote.Delete(ctx, id) },
	)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// DeleteAllTasks removes every task everywhere. A cache that was never
// loaded stays unloaded.
func (r *Repository) DeleteAllTasks(ctx context.Context) error {
	err := r.mutate(ctx, "delete all",
		r.local.DeleteAll,
		func([]task.Task) []task.Task { return []task.Task{} },
		r.remote.DeleteAll,
	)
	if err != nil {
		return fmt.Errorf("delete all tasks: %w", err)
	}
	return nil
}

// Import stores a batch of tasks. With replace set, existing tasks are
// dropped first. Every task is validated before anything is written.
func (r *Repository) Import(ctx context.Context, tasks []task.Task, replace bool) error {
	for i, t := range tasks {
		if err := task.Validate(t); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
	}

	if replace {
		batch := slices.Clone(tasks)
		err := r.mutate(ctx, "import",
			func(ctx context.Context) error { return r.local.ReplaceAll(ctx, batch) },
			func([]task.Task) []task.Task { return slices.Clone(batch) },
			func(ctx context.Context) error { return r.remote.ReplaceAll(ctx, batch) },
		)
		if err != nil {
			return fmt.Errorf("import tasks: %w", err)
		}
		return nil
	}

	for _, t := range tasks {
		if err := r.SaveTask(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// Close waits for background loads and remote writes to finish.
func (r *Repository) Close() error {
	r.wg.Wait()
	return nil
}

// updateCache applies fn to the cache when one has been loaded. Before the
// first load the sources are the only truth.
func (r *Repository) updateCache(fn func([]task.Task) []task.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache == nil {
		return
	}
	r.cache = fn(r.cache)
}

// mutate runs one write: the local write, then the cache, then the queued
// remote call. A local error stops the write before the cache or remote are
// touched. The cache is only changed once it has been loaded.
func (r *Repository) mutate(ctx context.Context, op string, local func(context.Context) error, apply func([]task.Task) []task.Task, remote func(context.Context) error) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := local(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	r.gen++
	if r.cache != nil {
		r.cache = apply(r.cache)
	}
	r.mu.Unlock()

	r.queueRemote(op, remote)
	return nil
}

// logged turns a local write into one whose failure is only logged.
func (r *Repository) logged(op string, fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			r.log.Error().Err(err).Str("op", op).Msg("local write failed")
		}
		return nil
	}
}

func (r *Repository) queueRemote(op string, fn func(context.Context) error) {
	r.queueMu.Lock()
	defer r.queueMu.Unlock()

	r.queue = append(r.queue, remoteCall{op: op, fn: fn})
	if r.draining {
		return
	}
	r.draining = true
	r.wg.Go(r.drainRemote)
}

func (r *Repository) drainRemote() {
	for {
		r.queueMu.Lock()
		if len(r.queue) == 0 {
			r.draining = false
			r.queueMu.Unlock()
			return
		}
		c := r.queue[0]
		r.queue = r.queue[1:]
		r.queueMu.Unlock()

		ctx, cancel := r.callContext()
		err := c.fn(ctx)
		cancel()
		if err != nil {
			r.log.Error().Err(err).Str("op", c.op).Msg("remote call failed")
		}
	}
}

func (r *Repository) callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.opts.Timeout)
}

func indexOf(tasks []task.Task, id string) int {
	return slices.IndexFunc(tasks, func(t task.Task) bool { return t.ID == id })
}
