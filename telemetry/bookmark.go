package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkConverged  BookmarkType = "converged"
	BookmarkDiverged   BookmarkType = "diverged"
	BookmarkDegenerate BookmarkType = "degenerate"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	RunID       string       `csv:"run_id"`
	Type        BookmarkType `csv:"type"`
	Cycle       int          `csv:"cycle"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"cycle", b.Cycle,
		"description", b.Description,
	)
}

// BookmarkDetector detects localization milestones from window stats.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// convergedError is the median error below which the filter counts as localized.
	convergedError float64
	converged      bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int, convergedError float64) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:        make([]WindowStats, historySize),
		historySize:    historySize,
		convergedError: convergedError,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkConverged(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkDiverged(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if stats.DegenerateCycles > 0 {
		bookmarks = append(bookmarks, Bookmark{
			RunID:       stats.RunID,
			Type:        BookmarkDegenerate,
			Cycle:       stats.WindowEnd,
			Description: fmt.Sprintf("%d of %d cycles fell back to uniform weights", stats.DegenerateCycles, stats.Cycles),
		})
	}

	bd.addToHistory(stats)
	return bookmarks
}

// Converged reports whether the last window was localized.
func (bd *BookmarkDetector) Converged() bool {
	return bd.converged
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkConverged(stats WindowStats) *Bookmark {
	if bd.converged || stats.Cycles == 0 || stats.ErrorP50 > bd.convergedError {
		return nil
	}
	bd.converged = true
	return &Bookmark{
		RunID:       stats.RunID,
		Type:        BookmarkConverged,
		Cycle:       stats.WindowEnd,
		Description: fmt.Sprintf("Median error %.3f below %.3f", stats.ErrorP50, bd.convergedError),
	}
}

// checkDiverged fires when a localized filter's error jumps well above its
// recent average, as after a kidnapping or a long illegal streak.
func (bd *BookmarkDetector) checkDiverged(stats WindowStats) *Bookmark {
	if !bd.converged {
		return nil
	}
	history := bd.getHistory()
	if len(history) < 2 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.ErrorMean
	}
	avg := total / float64(len(history))

	if stats.ErrorP50 > bd.convergedError && stats.ErrorMean > avg*2.0 {
		bd.converged = false
		return &Bookmark{
			RunID:       stats.RunID,
			Type:        BookmarkDiverged,
			Cycle:       stats.WindowEnd,
			Description: fmt.Sprintf("Mean error %.3f is %.1fx recent average (%.3f)", stats.ErrorMean, stats.ErrorMean/max(avg, 1e-9), avg),
		}
	}
	return nil
}
