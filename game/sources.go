package game

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
)

// CommandSource yields the next motion command. Next blocks until a command
// is available and returns io.EOF when the source is exhausted.
type CommandSource interface {
	Next(ctx context.Context) (Direction, error)
}

// ScriptSource reads one command per line. Blank lines and lines starting
// with '#' are skipped; unrecognized commands become DirNone.
type ScriptSource struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
}

// NewScriptSource reads commands from r.
func NewScriptSource(r io.Reader) *ScriptSource {
	return &ScriptSource{scanner: bufio.NewScanner(r)}
}

// OpenScript reads commands from a file. Close releases it.
func OpenScript(path string) (*ScriptSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening command script: %w", err)
	}
	s := NewScriptSource(f)
	s.closer = f
	return s, nil
}

// Next returns the next scripted command.
func (s *ScriptSource) Next(ctx context.Context) (Direction, error) {
	for {
		if err := ctx.Err(); err != nil {
			return DirNone, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return DirNone, fmt.Errorf("reading command script line %d: %w", s.line+1, err)
			}
			return DirNone, io.EOF
		}
		s.line++

		text := strings.TrimSpace(s.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		dir, ok := ParseDirection(text)
		if !ok {
			slog.Warn("unknown command, robot will stay put", "line", s.line, "command", text)
		}
		return dir, nil
	}
}

// Close releases the underlying file, if any.
func (s *ScriptSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// RandomWalk wanders by holding a random direction for a few steps and
// turning whenever a move is rejected. It observes cycles to learn about
// rejected moves.
type RandomWalk struct {
	rng       *rand.Rand
	maxHold   int
	current   Direction
	remaining int
}

// NewRandomWalk creates a walker that keeps a heading for at most maxHold steps.
func NewRandomWalk(rng *rand.Rand, maxHold int) *RandomWalk {
	return &RandomWalk{rng: rng, maxHold: max(maxHold, 1)}
}

// Next returns the walker's next direction. It never blocks.
func (w *RandomWalk) Next(ctx context.Context) (Direction, error) {
	if err := ctx.Err(); err != nil {
		return DirNone, err
	}
	if w.remaining <= 0 {
		w.turn()
	}
	w.remaining--
	return w.current, nil
}

// OnCycle picks a new heading after a blocked move.
func (w *RandomWalk) OnCycle(r CycleResult) {
	if !r.Legal {
		w.remaining = 0
	}
}

func (w *RandomWalk) turn() {
	prev := w.current
	for {
		w.current = Directions[w.rng.IntN(len(Directions))]
		if w.current != prev {
			break
		}
	}
	w.remaining = 1 + w.rng.IntN(w.maxHold)
}
