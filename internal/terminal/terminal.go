// Package terminal is a line-oriented front-end for a case controller. Each
// state change is printed as a plain-text projection of the snapshot.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"mediqa/casesim/internal/model"
	"mediqa/casesim/internal/service"

	"github.com/pkg/errors"
)

// Commands understood besides plain answer text
const (
	CmdBack  = ":back"
	CmdNew   = ":new"
	CmdNext  = ":n"
	CmdSub   = ":s"
	CmdState = ":state"
	CmdQuit  = ":quit"
	CmdHelp  = ":help"
)

// Driver is the controller surface used by the terminal
type Driver interface {
	Init(ctx context.Context) (*model.Snapshot, error)
	NewCase(ctx context.Context) (*model.Snapshot, error)
	SetInput(text string) (*model.Snapshot, error)
	SetFocus(focused bool) *model.Snapshot
	Advance(ctx context.Context) (*model.Snapshot, error)
	Retreat(ctx context.Context) (*model.Snapshot, error)
	HandleKey(ctx context.Context, key string) (*model.Snapshot, error)
	Snapshot() *model.Snapshot
}

// Run reads commands from in until :quit, EOF or ctx is done
func Run(ctx context.Context, d Driver, in io.Reader, out io.Writer) error {
	snap, _ := d.Init(ctx)
	Render(out, snap)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == CmdQuit {
			return nil
		}
		if line == CmdHelp {
			printHelp(out)
			continue
		}

		snap, err := dispatch(ctx, d, line)
		if snap != nil {
			Render(out, snap)
		}
		if err != nil && (snap == nil || snap.Notice == nil) {
			fmt.Fprintf(out, "! %v\n", err)
		}
	}
}

func dispatch(ctx context.Context, d Driver, line string) (*model.Snapshot, error) {
	switch line {
	case "":
		return nil, nil
	case CmdState:
		return d.Snapshot(), nil
	case CmdNew:
		return d.NewCase(ctx)
	case CmdBack:
		return d.Retreat(ctx)
	case CmdNext:
		return shortcut(ctx, d, service.KeyNext)
	case CmdSub:
		return shortcut(ctx, d, service.KeySubmit)
	}

	if strings.HasPrefix(line, ":") {
		return nil, errors.Errorf("unknown command %s (try %s)", line, CmdHelp)
	}

	d.SetFocus(true)
	if _, err := d.SetInput(line); err != nil {
		return d.Snapshot(), err
	}
	return d.Advance(ctx)
}

// shortcut sends a key with the input focus released, as a keypress outside the text box
func shortcut(ctx context.Context, d Driver, key string) (*model.Snapshot, error) {
	d.SetFocus(false)
	return d.HandleKey(ctx, key)
}

// Render prints the plain-text projection of a snapshot
func Render(out io.Writer, snap *model.Snapshot) {
	if snap == nil {
		return
	}
	if snap.Notice != nil {
		fmt.Fprintf(out, "! %s\n", snap.Notice.Message)
	}

	switch snap.Phase {
	case model.PhaseIdle:
		if snap.Loading {
			fmt.Fprintln(out, "Loading case...")
		} else {
			fmt.Fprintf(out, "No active case. Type %s to load one.\n", CmdNew)
		}

	case model.PhaseViewing, model.PhaseSubmitting:
		fmt.Fprintf(out, "\n%s\n", snap.PresentingComplaint)
		fmt.Fprintf(out, "%s\n", snap.Progress)
		if snap.Question != nil {
			fmt.Fprintf(out, "Q: %s\n", snap.Question.Prompt)
		}
		if snap.Input != "" {
			fmt.Fprintf(out, "Your answer: %s\n", snap.Input)
		}
		controls := []string{"[" + snap.SubmitLabel + "]"}
		if snap.BackEnabled {
			controls = append(controls, "[Back "+CmdBack+"]")
		}
		fmt.Fprintln(out, strings.Join(controls, " "))

	case model.PhaseResults:
		renderResults(out, snap.Results)
	}
}

func renderResults(out io.Writer, r *model.ResultView) {
	if r == nil {
		return
	}
	fmt.Fprintf(out, "\nScore: %d/100\n", r.Score)
	if r.Topic != "" {
		fmt.Fprintf(out, "Topic: %s\n", r.Topic)
	}
	if r.Feedback != "" {
		fmt.Fprintf(out, "%s\n", r.Feedback)
	}
	for i, item := range r.Items {
		mark := "✗"
		if item.Correct {
			mark = "✓"
		}
		fmt.Fprintf(out, "\n%d. %s %s\n", i+1, mark, item.Question)
		fmt.Fprintf(out, "   Your answer: %s\n", item.UserAnswer)
		if item.Feedback != "" {
			fmt.Fprintf(out, "   %s\n", item.Feedback)
		}
		if item.CorrectAnswer != "" {
			fmt.Fprintf(out, "   Correct answer:\n")
			for _, line := range strings.Split(item.CorrectAnswer, "\n") {
				fmt.Fprintf(out, "     %s\n", line)
			}
		}
	}
	fmt.Fprintf(out, "\nType %s for another case or %s to exit.\n", CmdNew, CmdQuit)
}

func printHelp(out io.Writer) {
	fmt.Fprintf(out, "Type an answer and press enter to record it and move on.\n")
	fmt.Fprintf(out, "  %-7s previous question\n", CmdBack)
	fmt.Fprintf(out, "  %-7s next question (keyboard shortcut)\n", CmdNext)
	fmt.Fprintf(out, "  %-7s submit on the last question (keyboard shortcut)\n", CmdSub)
	fmt.Fprintf(out, "  %-7s start a new case\n", CmdNew)
	fmt.Fprintf(out, "  %-7s show the current state\n", CmdState)
	fmt.Fprintf(out, "  %-7s exit\n", CmdQuit)
}
