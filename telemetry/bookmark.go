package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkExtinction      BookmarkType = "extinction"
	BookmarkPopulationCrash BookmarkType = "population_crash"
	BookmarkPopulationBoom  BookmarkType = "population_boom"
	BookmarkStableEcosystem BookmarkType = "stable_ecosystem"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Turn        int          `csv:"turn"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"turn", b.Turn,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	th config.BookmarksConfig

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	lastCounts         [components.NumSpecies]int
	hasLast            bool
	recentPeak         int  // peak total population since the last crash
	recentMin          int  // minimum total population since the last boom
	hasMin             bool
	stableWindowsCount int  // consecutive windows with a stable population
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int, th config.BookmarksConfig) *BookmarkDetector {
	if th.StableWindows < 2 {
		th.StableWindows = 2
	}
	if historySize < th.StableWindows {
		historySize = th.StableWindows // room for the stability window
	}
	return &BookmarkDetector{
		th:          th,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.hasLast {
		bookmarks = append(bookmarks, bd.checkExtinctions(stats)...)

		// Crash: dropped from recent peak
		if b := bd.checkCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Boom: grew from recent minimum
		if b := bd.checkBoom(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	// Stable: low variance of the total over recent windows
	if b := bd.checkStable(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	// Update history
	bd.addToHistory(stats)

	for _, sp := range components.AllSpecies() {
		bd.lastCounts[sp] = stats.Count(sp)
	}
	bd.hasLast = true

	if stats.Total > bd.recentPeak {
		bd.recentPeak = stats.Total
	}
	if !bd.hasMin || stats.Total < bd.recentMin {
		bd.recentMin = stats.Total
		bd.hasMin = true
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recentTotals returns the totals of the last n windows, oldest first.
func (bd *BookmarkDetector) recentTotals(n int) []float64 {
	count := bd.historyIdx
	if bd.historyFull {
		count = bd.historySize
	}
	n = min(n, count)
	out := make([]float64, 0, n)
	for i := n; i > 0; i-- {
		idx := (bd.historyIdx - i + bd.historySize) % bd.historySize
		out = append(out, float64(bd.history[idx].Total))
	}
	return out
}

func (bd *BookmarkDetector) checkExtinctions(stats WindowStats) []Bookmark {
	var out []Bookmark
	for _, sp := range components.AllSpecies() {
		if bd.lastCounts[sp] > 0 && stats.Count(sp) == 0 {
			out = append(out, Bookmark{
				Type:        BookmarkExtinction,
				Turn:        stats.WindowEndTurn,
				Description: fmt.Sprintf("%s went extinct (was %d)", sp, bd.lastCounts[sp]),
			})
		}
	}
	return out
}

func (bd *BookmarkDetector) checkCrash(stats WindowStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}

	drop := bd.recentPeak - stats.Total
	dropPercent := float64(drop) / float64(bd.recentPeak)
	if dropPercent >= bd.th.CrashDropPercent && drop >= bd.th.CrashMinDrop {
		// Reset peak after crash
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.Total

		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Turn:        stats.WindowEndTurn,
			Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", dropPercent*100, oldPeak, stats.Total),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkBoom(stats WindowStats) *Bookmark {
	if !bd.hasMin || bd.recentMin == 0 {
		return nil
	}

	if float64(stats.Total) >= float64(bd.recentMin)*bd.th.BoomMultiplier && stats.Total >= bd.th.BoomMinFinal {
		oldMin := bd.recentMin
		bd.recentMin = stats.Total

		return &Bookmark{
			Type:        BookmarkPopulationBoom,
			Turn:        stats.WindowEndTurn,
			Description: fmt.Sprintf("Population boomed from %d to %d", oldMin, stats.Total),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStable(stats WindowStats) *Bookmark {
	if stats.Total == 0 {
		bd.stableWindowsCount = 0
		return nil
	}

	recent := bd.recentTotals(bd.th.StableWindows - 1)
	if len(recent) < bd.th.StableWindows-1 {
		return nil
	}
	values := append(recent, float64(stats.Total))

	if CoefficientOfVariation(values) < bd.th.StableCV {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == bd.th.StableWindows { // trigger exactly once per stable stretch
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Turn:        stats.WindowEndTurn,
			Description: fmt.Sprintf("Stable population around %d over %d windows", stats.Total, bd.th.StableWindows),
		}
	}
	return nil
}
