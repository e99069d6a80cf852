package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/felixgeelhaar/srcbuild/internal/domain/pipeline"
	"github.com/mattn/go-isatty"
)

// LinePrompter asks on a plain line-oriented stream. Anything but y or yes
// declines, including end of input.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer

	start sync.Once
	lines chan lineResult
}

// NewLinePrompter creates a LinePrompter.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out, lines: make(chan lineResult)}
}

type lineResult struct {
	line string
	err  error
}

// Confirm prints the question and waits for one line.
func (p *LinePrompter) Confirm(ctx context.Context, cp pipeline.Checkpoint) (bool, error) {
	_, _ = fmt.Fprintf(p.out, "[%d/%d] %s finished. Continue with %s? [y/N] ", cp.Index, cp.Total, cp.Step, cp.Next)

	p.start.Do(func() { go p.readLines() })

	select {
	case <-ctx.Done():
		_, _ = fmt.Fprintln(p.out)
		return false, ctx.Err()
	case r, ok := <-p.lines:
		if !ok {
			r = lineResult{err: io.EOF}
		}
		if r.err != nil && !errors.Is(r.err, io.EOF) {
			return false, fmt.Errorf("failed to read answer: %w", r.err)
		}
		if errors.Is(r.err, io.EOF) && r.line == "" {
			_, _ = fmt.Fprintln(p.out)
		}
		switch strings.ToLower(strings.TrimSpace(r.line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

// readLines is the only reader of p.in. A line read while no Confirm is
// waiting is held for the next one. The channel closes after the first read
// error.
func (p *LinePrompter) readLines() {
	defer close(p.lines)
	for {
		line, err := p.in.ReadString('\n')
		p.lines <- lineResult{line: line, err: err}
		if err != nil {
			return
		}
	}
}

// AutoConfirm answers yes to every checkpoint.
func AutoConfirm() pipeline.Prompter {
	return pipeline.PrompterFunc(func(context.Context, pipeline.Checkpoint) (bool, error) {
		return true, nil
	})
}

// NewPrompter picks the prompter for the session: AutoConfirm when yes is
// set, the interactive prompt when in is a terminal, and LinePrompter
// otherwise.
func NewPrompter(in, out *os.File, yes bool) pipeline.Prompter {
	switch {
	case yes:
		return AutoConfirm()
	case isTerminal(in):
		return NewCheckpointPrompter(tea.WithInput(in), tea.WithOutput(out))
	default:
		return NewLinePrompter(in, out)
	}
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
