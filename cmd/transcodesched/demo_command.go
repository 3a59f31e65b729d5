package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"transcodesched/internal/logging"
	"transcodesched/internal/sessionctl"
	"transcodesched/internal/transcoder/sim"
)

func newDemoCommand() *cobra.Command {
	var step time.Duration

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run an in-process controller with the simulated backend",
		Long: "Submits a scripted mix of foreground and background sessions against an " +
			"in-process controller, narrating every scheduling decision: FIFO within a uid, " +
			"foreground preemption, and the resource lost/regained cycle.",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.OutOrStdout(), step)
		},
	}

	cmd.Flags().DurationVar(&step, "step", time.Second, "Pacing between scripted actions")
	return cmd
}

// narrator prints session lifecycle events as they arrive from the
// simulated transcoder. One instance per session so each line carries its
// own key.
type narrator struct {
	mu  *sync.Mutex
	out io.Writer
	key sessionctl.Key
}

func (n *narrator) printf(format string, args ...any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.out, "  %s "+format+"\n", append([]any{n.key.String()}, args...)...)
}

func (n *narrator) OnTranscodingStarted(sessionID int32)  { n.printf("started") }
func (n *narrator) OnTranscodingPaused(sessionID int32)   { n.printf("paused") }
func (n *narrator) OnTranscodingResumed(sessionID int32)  { n.printf("resumed") }
func (n *narrator) OnTranscodingFinished(sessionID int32) { n.printf("finished") }
func (n *narrator) OnResumePending(sessionID int32)       { n.printf("resume pending (resource lost)") }

func (n *narrator) OnTranscodingFailed(sessionID int32, code sessionctl.TranscoderErrorCode) {
	n.printf("failed: %s", code)
}

func (n *narrator) OnProgressUpdate(sessionID int32, progress int32) {
	n.printf("progress %d%%", progress)
}

func runDemo(out io.Writer, step time.Duration) error {
	if step <= 0 {
		step = time.Second
	}
	var mu sync.Mutex

	transcoder := sim.New(nil, logging.NewNop())
	ctl := sessionctl.New(transcoder, sessionctl.WithInvariantChecks(true))
	transcoder.SetSink(ctl)

	submit := func(clientID int64, sessionID int32, uid int32, processing time.Duration) error {
		key := sessionctl.Key{ClientID: clientID, SessionID: sessionID}
		cb := &narrator{mu: &mu, out: out, key: key}
		return ctl.Submit(clientID, sessionID, uid, sim.Request{ProcessingTime: processing}, cb)
	}

	say := func(format string, args ...any) {
		mu.Lock()
		fmt.Fprintf(out, format+"\n", args...)
		mu.Unlock()
	}

	say("submitting two sessions for uid 100 (FIFO within a uid)")
	if err := submit(1, 1, 100, 4*step); err != nil {
		return err
	}
	if err := submit(1, 2, 100, 2*step); err != nil {
		return err
	}

	say("submitting one session for uid 200 (queued behind uid 100)")
	if err := submit(2, 1, 200, 2*step); err != nil {
		return err
	}
	time.Sleep(step)

	say("uid 200 comes to the foreground (preempts uid 100)")
	ctl.OnTopUidsChanged([]int32{200})
	time.Sleep(step)

	say("codec resource lost (everything holds)")
	ctl.OnResourceLost()
	time.Sleep(step)

	say("codec resource available again (head of queue resumes)")
	ctl.OnResourceAvailable()

	deadline := time.Now().Add(30*step + 2*time.Second)
	for time.Now().Before(deadline) {
		if len(ctl.Snapshot().Sessions) == 0 {
			say("all sessions drained")
			return nil
		}
		time.Sleep(step / 4)
	}
	return fmt.Errorf("demo timed out with sessions still queued")
}
