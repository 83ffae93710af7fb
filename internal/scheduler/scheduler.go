package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"worktoolkit/internal/logging"
)

// Task is the unit of work handed to a worker: one feature group and its
// destination. Tasks share no mutable state; workers write to disjoint
// output paths.
type Task struct {
	Key      string
	DestPath string
	Sources  []string
}

// Result reports one group's outcome. Err is nil on success.
type Result struct {
	Key         string
	SourceCount int
	Replaced    int // image streams recompressed
	Err         error
}

// Process performs one task, returning the number of recompressed images.
type Process func(context.Context, Task) (int, error)

// Options configures a scheduler run.
type Options struct {
	Workers  int
	Serial   bool
	Process  Process
	Logger   *slog.Logger
	OnResult func(Result) // invoked in completion order
}

// Run fans the tasks out across a bounded pool of workers, or iterates
// in-line when serial mode is forced or the pool size is one. Results are
// aggregated in completion order. A task failure (including a panic inside
// Process) is converted into an error Result and never terminates sibling
// tasks or the pool.
func Run(ctx context.Context, tasks []Task, opts Options) []Result {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}

	if opts.Serial || workers <= 1 {
		results := make([]Result, 0, len(tasks))
		for _, task := range tasks {
			res := runTask(ctx, task, opts.Process)
			report(res, opts, logger)
			results = append(results, res)
		}
		return results
	}

	jobs := make(chan Task)
	out := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range jobs {
				out <- runTask(ctx, task, opts.Process)
			}
		}()
	}

	go func() {
		for _, task := range tasks {
			jobs <- task
		}
		close(jobs)
		wg.Wait()
		close(out)
	}()

	results := make([]Result, 0, len(tasks))
	for res := range out {
		report(res, opts, logger)
		results = append(results, res)
	}
	return results
}

func runTask(ctx context.Context, task Task, process Process) (res Result) {
	res = Result{Key: task.Key, SourceCount: len(task.Sources)}
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("worker panic: %v", r)
		}
	}()
	res.Replaced, res.Err = process(ctx, task)
	return res
}

func report(res Result, opts Options, logger *slog.Logger) {
	if res.Err != nil {
		logger.Warn("group failed",
			logging.String(logging.FieldGroup, res.Key),
			logging.Int("sources", res.SourceCount),
			logging.Error(res.Err))
	} else {
		logger.Info("group unified",
			logging.String(logging.FieldGroup, res.Key),
			logging.Int("sources", res.SourceCount),
			logging.Int("images_recompressed", res.Replaced))
	}
	if opts.OnResult != nil {
		opts.OnResult(res)
	}
}

// Failed counts the error results in a run.
func Failed(results []Result) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
