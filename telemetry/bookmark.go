package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/thronglets/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFirstBirth       BookmarkType = "first_birth"
	BookmarkPopulationSurge  BookmarkType = "population_surge"
	BookmarkFoodExhausted    BookmarkType = "food_exhausted"
	BookmarkReplicationStall BookmarkType = "replication_stall"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType
	Tick        int32
	Description string
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	surge config.PopulationSurgeConfig
	stall config.ReplicationStallConfig

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	birthSeen        bool // first birth already bookmarked
	lastFoodCount    int  // food count from the previous window
	hasLastFood      bool
	stallWindowCount int // consecutive windows with due agents but no births
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int, surge config.PopulationSurgeConfig, stall config.ReplicationStallConfig) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3 // minimum for surge detection
	}
	return &BookmarkDetector{
		surge:       surge,
		stall:       stall,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	// First birth: checked before history fills so an early birth is not missed
	if b := bd.checkFirstBirth(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		// Population surge: population >= multiplier x rolling average
		if b := bd.checkPopulationSurge(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Food exhausted: last food consumed while agents remain
		if b := bd.checkFoodExhausted(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Replication stall: due agents but no births over N consecutive windows
		if b := bd.checkReplicationStall(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	// Update history
	bd.addToHistory(stats)

	// Track the previous window's food count
	bd.lastFoodCount = stats.FoodCount
	bd.hasLastFood = true

	return bookmarks
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

func (bd *BookmarkDetector) checkFirstBirth(stats WindowStats) *Bookmark {
	if bd.birthSeen || stats.Births == 0 {
		return nil
	}

	bd.birthSeen = true

	return &Bookmark{
		Type:        BookmarkFirstBirth,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("First replication: %d births, population now %d", stats.Births, stats.Population),
	}
}

func (bd *BookmarkDetector) checkPopulationSurge(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	// Calculate rolling average population
	var totalPop int
	for _, h := range history {
		totalPop += h.Population
	}
	avgPop := float64(totalPop) / float64(len(history))

	if avgPop == 0 {
		return nil
	}

	if float64(stats.Population) >= avgPop*bd.surge.Multiplier && stats.Population >= bd.surge.MinPopulation {
		return &Bookmark{
			Type:        BookmarkPopulationSurge,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population %d is %.1fx average (%.1f)", stats.Population, float64(stats.Population)/avgPop, avgPop),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkFoodExhausted(stats WindowStats) *Bookmark {
	if !bd.hasLastFood || bd.lastFoodCount == 0 {
		return nil
	}

	if stats.FoodCount == 0 && stats.Population > 0 {
		return &Bookmark{
			Type:        BookmarkFoodExhausted,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Food exhausted with %d agents remaining (was %d)", stats.Population, bd.lastFoodCount),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkReplicationStall(stats WindowStats) *Bookmark {
	if stats.Population == 0 {
		bd.stallWindowCount = 0
		return nil
	}

	dueFrac := float64(stats.DueCount) / float64(stats.Population)
	if dueFrac >= bd.stall.DueFraction && stats.Births == 0 {
		bd.stallWindowCount++
	} else {
		bd.stallWindowCount = 0
	}

	if bd.stallWindowCount == bd.stall.Windows { // trigger exactly once at N windows
		return &Bookmark{
			Type:        BookmarkReplicationStall,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d of %d agents due with no births over %d windows", stats.DueCount, stats.Population, bd.stall.Windows),
		}
	}

	return nil
}
