package conversationsearch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

type MessageResult struct {
	MessageID string
	Snippet   string
}

// ResultSet is what the full-text searcher found in one thread, most recent
// message first.
type ResultSet struct {
	SearchText string
	Messages   []MessageResult
}

// Searcher is the full-text search collaborator.
type Searcher interface {
	SearchWithinConversation(ctx context.Context, threadID, searchText string) (*ResultSet, error)
}

type Delegate interface {
	DidUpdateSearchResults(results *ResultSet)
	DidSelectMessage(messageID string)
}

// PresentationDelegate is optionally implemented by a Delegate that cares
// about the search UI appearing and going away.
type PresentationDelegate interface {
	DidPresentSearch()
	DidDismissSearch()
}

// Controller drives search within a single conversation thread and keeps
// its ResultsBar in sync.
type Controller struct {
	threadID string
	searcher Searcher
	bar      *ResultsBar
	logger   *slog.Logger

	mu         sync.Mutex
	delegate   Delegate
	generation uint64

	// publishMu orders bar updates and delegate callbacks. Delegates must
	// not call UpdateSearchResults from inside a callback.
	publishMu sync.Mutex
}

func NewController(threadID string, searcher Searcher, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		threadID: threadID,
		searcher: searcher,
		bar:      NewResultsBar(),
		logger:   logger,
	}
	c.bar.SetListener(c)
	return c
}

func (c *Controller) ThreadID() string { return c.threadID }

func (c *Controller) ResultsBar() *ResultsBar { return c.bar }

// SetDelegate attaches d; nil detaches the current delegate.
func (c *Controller) SetDelegate(d Delegate) {
	c.mu.Lock()
	c.delegate = d
	c.mu.Unlock()
}

func (c *Controller) currentDelegate() Delegate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delegate
}

// UpdateSearchResults searches for rawText. Nil or too short text clears the
// results. Results of a search overtaken by a newer call are dropped.
func (c *Controller) UpdateSearchResults(ctx context.Context, rawText *string) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	if rawText == nil {
		c.publish(gen, nil)
		return nil
	}
	searchText := NormalizeSearchText(*rawText)
	if !searchable(searchText) {
		c.publish(gen, nil)
		return nil
	}

	results, err := c.searcher.SearchWithinConversation(ctx, c.threadID, searchText)
	if err != nil {
		return fmt.Errorf("search thread %s: %w", c.threadID, err)
	}
	if results == nil {
		results = &ResultSet{SearchText: searchText}
	}
	if !c.publish(gen, results) {
		c.logger.Debug("dropping stale search results", "thread_id", c.threadID)
	}
	return nil
}

func (c *Controller) publish(gen uint64, results *ResultSet) bool {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	c.mu.Lock()
	stale := gen != c.generation
	c.mu.Unlock()
	if stale {
		return false
	}

	c.bar.Update(results)
	if d := c.currentDelegate(); d != nil {
		d.DidUpdateSearchResults(results)
	}
	return true
}

// DidChangeIndex forwards the selected result to the delegate.
func (c *Controller) DidChangeIndex(index int, results *ResultSet) {
	if results == nil || index < 0 || index >= len(results.Messages) {
		c.logger.Warn("search result index out of range", "index", index)
		return
	}
	if d := c.currentDelegate(); d != nil {
		d.DidSelectMessage(results.Messages[index].MessageID)
	}
}

func (c *Controller) DidPresentSearch() {
	if p, ok := c.currentDelegate().(PresentationDelegate); ok {
		p.DidPresentSearch()
	}
}

func (c *Controller) DidDismissSearch() {
	if p, ok := c.currentDelegate().(PresentationDelegate); ok {
		p.DidDismissSearch()
	}
}
