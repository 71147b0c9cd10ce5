package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Wes1101/T4-1000-netdiag/internal/agent"
	"github.com/Wes1101/T4-1000-netdiag/internal/config"
	"github.com/Wes1101/T4-1000-netdiag/internal/loadgen"
	"github.com/Wes1101/T4-1000-netdiag/internal/logger"
	"github.com/Wes1101/T4-1000-netdiag/internal/outputfile"
)

// ErrNoOutput is returned when the session completed but the agent left
// no recorded events behind. Cleanup has already run by the time this is
// surfaced; it is a post-condition warning, not a pre-flight failure.
var ErrNoOutput = errors.New("session finished but no output was recorded")

// InterruptedError is returned when a termination signal cut the session
// short. The agent has already been stopped when it is surfaced.
type InterruptedError struct {
	Signal os.Signal
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("session interrupted by %s", e.Signal)
}

// ExitCode returns the conventional exit status for the signal.
func (e *InterruptedError) ExitCode() int {
	if sig, ok := e.Signal.(syscall.Signal); ok {
		return 128 + int(sig)
	}
	return 130
}

// Controller runs one recording session end to end: prepare the output
// path, start the agent, drive the load generator, stop the agent, and
// verify the recorded output. The agent handle is treated as a scoped
// resource: it is released exactly once on every exit path, including
// interruption.
type Controller struct {
	cfg        config.SessionConfig
	log        logger.Logger
	supervisor *agent.Supervisor
	runner     *loadgen.Runner
	store      Store
}

// NewController creates a controller for one session run.
func NewController(cfg config.SessionConfig, log logger.Logger, store Store) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{
		cfg:        cfg,
		log:        log,
		supervisor: agent.NewSupervisor(log),
		runner:     loadgen.NewRunner(log),
		store:      store,
	}
}

// Run executes the session. The returned Session record is valid whenever
// it is non-nil, even alongside a non-nil error; callers read it for
// reporting. Error values distinguish pre-flight failures, interruption
// (*InterruptedError) and the missing-output post-condition (ErrNoOutput).
func (c *Controller) Run(ctx context.Context) (*Session, error) {
	// Pre-flight: nothing may have side effects before these pass.
	if err := loadgen.CheckTool(c.cfg.LoadTool); err != nil {
		return nil, err
	}

	backup, err := outputfile.Prepare(c.cfg.OutputPath)
	if err != nil {
		return nil, err
	}
	if backup != "" {
		c.log.Info("previous output archived", "backup", backup)
	}

	sess := newSession(c.cfg)
	sess.BackupPath = backup
	c.save(ctx, sess)

	// Interruption turns into context cancellation: the load generator
	// is killed through its command context and the flow below proceeds
	// to the same cleanup as a normal return.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		sigMu    sync.Mutex
		received os.Signal
	)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		sig, ok := <-sigCh
		if !ok {
			return
		}
		sigMu.Lock()
		received = sig
		sigMu.Unlock()
		c.log.Warn("received signal, cleaning up", "signal", sig.String())
		cancel()
	}()

	handle, err := c.supervisor.Start(c.cfg)
	if err != nil {
		sess.Status = StatusFailed
		c.finish(ctx, sess)
		return sess, err
	}
	sess.AgentPID = handle.PID
	sess.AgentStderrLog = handle.StderrLogPath
	c.save(ctx, sess)

	// The agent must never be orphaned: stop it exactly once on every
	// exit path. Repeated signals reuse the same once.
	var stopOnce sync.Once
	stopAgent := func() {
		stopOnce.Do(func() {
			if err := c.supervisor.Stop(handle); err != nil {
				c.log.Error("failed to stop agent", "error", err)
			}
		})
	}
	defer stopAgent()

	exitCode, runErr := c.runner.Run(runCtx, c.cfg)

	// Stop before verifying output so the agent gets its grace period to
	// flush and close the file.
	stopAgent()

	sess.LoadExitCode = exitCode
	sess.OutputExists = outputfile.Exists(c.cfg.OutputPath)

	sigMu.Lock()
	sig := received
	sigMu.Unlock()

	switch {
	case sig != nil:
		sess.Status = StatusInterrupted
		c.finish(ctx, sess)
		return sess, &InterruptedError{Signal: sig}
	case runErr != nil:
		sess.Status = StatusFailed
		c.finish(ctx, sess)
		return sess, runErr
	case !sess.OutputExists:
		sess.Status = StatusNoOutput
		c.finish(ctx, sess)
		return sess, ErrNoOutput
	}

	sess.Status = StatusCompleted
	c.finish(ctx, sess)
	c.log.Info("session completed",
		"id", sess.ID,
		"output", sess.OutputPath,
		"load_exit_code", sess.LoadExitCode,
	)
	return sess, nil
}

// save persists the record, logging instead of failing the session when
// the store is unavailable.
func (c *Controller) save(ctx context.Context, sess *Session) {
	if c.store == nil {
		return
	}
	if err := c.store.Save(ctx, sess); err != nil {
		c.log.Warn("failed to persist session record", "error", err)
	}
}

// finish stamps the stop time and persists the final record.
func (c *Controller) finish(ctx context.Context, sess *Session) {
	sess.StoppedAt = time.Now()
	c.save(ctx, sess)
}
