// Package job decomposes one transcoding request into an ordered scenario of
// actions and runs them sequentially, aggregating per-action progress into a
// whole-job percentage.
package job

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"discforge/internal/action"
	"discforge/internal/config"
	"discforge/internal/dvd"
	"discforge/internal/fileutil"
	"discforge/internal/logging"
	"discforge/internal/media"
	"discforge/internal/services"
)

// State tracks a job's lifecycle.
type State int

const (
	StateNotStarted State = iota
	StateStarted
	StateCompleted
)

// ProgressMax is the fixed whole-job progress scale.
const ProgressMax = 1000

const tempDirCleanupWait = 15 * time.Second

// Job is one complete transcoding request.
type Job struct {
	cfg    *config.Config
	logger *slog.Logger

	input  *media.Input
	output *media.Output
	title  *dvd.TitleSet

	vars *action.Variables

	mu        sync.Mutex
	state     State
	succeeded bool
	aborted   bool
	observers []action.Observer
	actions   []action.Action
	current   action.Action
	completed int
	tempDir   string
}

// New returns a job bound to the configuration.
func New(cfg *config.Config, logger *slog.Logger) *Job {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Job{
		cfg:    cfg,
		logger: logger,
		vars:   action.NewVariables(),
	}
}

// SetInput assigns the probed input descriptor.
func (j *Job) SetInput(in *media.Input) { j.input = in }

// SetOutput assigns the requested output artifact.
func (j *Job) SetOutput(out *media.Output) { j.output = out }

// SetTitleSet assigns DVD title-set information for disc inputs.
func (j *Job) SetTitleSet(title *dvd.TitleSet) { j.title = title }

// Observe registers a job-level observer. Progress is reported on the fixed
// 0..ProgressMax scale.
func (j *Job) Observe(obs action.Observer) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.observers = append(j.observers, obs)
}

// State returns the job's lifecycle state.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Succeeded reports the outcome of a completed job.
func (j *Job) Succeeded() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state == StateCompleted && j.succeeded
}

// Actions returns the built scenario, nil before Run.
func (j *Job) Actions() []action.Action {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.actions
}

// Description names the job for logs and progress panels.
func (j *Job) Description() string {
	if j.input == nil || j.output == nil {
		return "transcoding job"
	}
	return fmt.Sprintf("%s to %s", j.input.FFmpegInputSpec, j.output.Type.DisplayName())
}

// Run executes the whole scenario. It blocks until the job completes, fails
// or is aborted. The temporary working directory is removed afterwards
// unless keep_intermediate_files is set.
func (j *Job) Run(ctx context.Context) error {
	j.mu.Lock()
	if j.state != StateNotStarted {
		j.mu.Unlock()
		return services.Wrap(services.ErrValidation, "job", "run",
			"job already started", nil)
	}
	j.state = StateStarted
	j.mu.Unlock()

	j.emitStarted()

	if j.input == nil || j.output == nil {
		return j.fail(services.Wrap(services.ErrValidation, "job", "run",
			"both an input and an output must be selected", nil))
	}

	if err := j.prepareWorkspace(); err != nil {
		return j.fail(err)
	}
	defer j.cleanupWorkspace()

	if j.output.ForcedDAR > 0 {
		if v := j.input.SelectedVideo(); v != nil {
			v.ForcedDAR = j.output.ForcedDAR
		}
	}

	actions, err := j.buildScenario()
	if err != nil {
		return j.fail(err)
	}
	if len(actions) == 0 {
		return j.fail(services.Wrap(services.ErrValidation, "job", "run",
			"nothing to do for this input/output combination", nil))
	}
	prefixSteps(actions)

	j.mu.Lock()
	j.actions = actions
	j.mu.Unlock()

	for _, act := range actions {
		j.mu.Lock()
		if j.aborted {
			j.mu.Unlock()
			return j.fail(services.Wrap(services.ErrValidation, "job", "run",
				"job aborted", nil))
		}
		j.current = act
		j.mu.Unlock()

		act.Observe(j.childObserver())
		j.logger.Info("running action", logging.FieldAction, act.Description())
		err := act.Run(services.WithAction(ctx, act.Description()))

		j.mu.Lock()
		j.current = nil
		if err == nil {
			j.completed++
		}
		j.mu.Unlock()

		if err != nil {
			return j.fail(err)
		}
	}

	j.complete(true, "job finished")
	return nil
}

// Abort requests cancellation. Before Run it is a no-op and the job stays
// startable; after completion it is also a no-op. While running, the current
// action is asked to abort and its failure completes the job; if no action
// has started yet the job fails immediately.
func (j *Job) Abort() {
	j.mu.Lock()
	if j.state != StateStarted || j.aborted {
		j.mu.Unlock()
		return
	}
	j.aborted = true
	current := j.current
	j.mu.Unlock()

	if current != nil {
		current.Abort()
	}
}

func (j *Job) prepareWorkspace() error {
	base := filepath.Dir(j.output.Path)
	if j.output.Path == "" {
		base = j.cfg.Paths.WorkDir
	}
	dir := filepath.Join(base, ".discforge-"+uuid.NewString()[:8])
	if err := createDir(dir); err != nil {
		return services.Wrap(services.ErrValidation, "job", "run",
			fmt.Sprintf("create working directory %s", dir), err)
	}
	// Canonical form keeps child-tool argument quoting predictable.
	canonical, err := fileutil.Canonicalize(dir)
	if err != nil {
		return services.Wrap(services.ErrValidation, "job", "run",
			fmt.Sprintf("resolve working directory %s", dir), err)
	}
	j.mu.Lock()
	j.tempDir = canonical
	j.mu.Unlock()

	return j.checkFreeSpace(base)
}

// checkFreeSpace refuses DVD-class jobs when the target filesystem cannot
// hold the projected image plus intermediates.
func (j *Job) checkFreeSpace(base string) error {
	if !j.output.Type.IsDVD() {
		return nil
	}
	free, err := fileutil.FreeSpace(base)
	if err != nil {
		j.logger.Warn("free-space check failed", logging.Error(err))
		return nil
	}
	required := uint64(j.cfg.DVD.MaxISOMiB) * 1024 * 1024 * 2
	if free < required {
		return services.Wrap(services.ErrValidation, "job", "run",
			fmt.Sprintf("%d MiB free on %s, need %d MiB for DVD intermediates",
				free/1024/1024, base, required/1024/1024), nil)
	}
	return nil
}

func (j *Job) cleanupWorkspace() {
	j.mu.Lock()
	dir := j.tempDir
	j.mu.Unlock()
	if dir == "" {
		return
	}
	if j.cfg.Behavior.KeepIntermediateFiles {
		j.logger.Info("keeping intermediate files", "dir", dir)
		return
	}
	// A not-yet-fully-exited child can briefly hold files open.
	if err := fileutil.RemoveAllRetry(dir, tempDirCleanupWait); err != nil {
		j.logger.Warn("working directory not removed", "dir", dir, logging.Error(err))
	}
}

func (j *Job) childObserver() action.Observer {
	return action.Observer{
		Progress: func(description string, current, maximum int64, elapsed, remaining time.Duration) {
			j.mu.Lock()
			completed := j.completed
			total := len(j.actions)
			observers := j.snapshotObservers()
			j.mu.Unlock()

			overall := currentProgress(completed, total, current, maximum, ProgressMax)
			for _, obs := range observers {
				if obs.Progress != nil {
					obs.Progress(description, overall, ProgressMax, elapsed, remaining)
				}
			}
		},
	}
}

func (j *Job) fail(err error) error {
	j.logger.Error("job failed", logging.Error(err))
	j.complete(false, services.UserMessage(err))
	return err
}

func (j *Job) complete(success bool, message string) {
	j.mu.Lock()
	if j.state == StateCompleted {
		j.mu.Unlock()
		return
	}
	j.state = StateCompleted
	j.succeeded = success
	observers := j.snapshotObservers()
	j.mu.Unlock()

	for _, obs := range observers {
		if obs.Completed != nil {
			obs.Completed(success, message)
		}
	}
}

func (j *Job) emitStarted() {
	j.mu.Lock()
	observers := j.snapshotObservers()
	j.mu.Unlock()
	description := j.Description()
	for _, obs := range observers {
		if obs.Started != nil {
			obs.Started(description)
		}
	}
}

func (j *Job) snapshotObservers() []action.Observer {
	out := make([]action.Observer, len(j.observers))
	copy(out, j.observers)
	return out
}

// prefixSteps numbers the action descriptions when there is more than one.
func prefixSteps(actions []action.Action) {
	if len(actions) < 2 {
		return
	}
	for i, act := range actions {
		act.SetDescription(fmt.Sprintf("Step %d/%d — %s", i+1, len(actions), act.Description()))
	}
}
