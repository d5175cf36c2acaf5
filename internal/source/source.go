// Package source declares the records the report pipeline consumes and the
// capability interfaces of the external systems that produce and store them.
package source

import (
	"context"
	"time"
)

// TicketRecord is a support conversation.
type TicketRecord struct {
	ID        int64
	Subject   string
	Tags      []string
	CreatedAt time.Time
	// Threads are ordered by creation time. The first is the initial
	// message; later entries are reply candidates.
	Threads []ThreadEvent
}

// ThreadEvent is the minimal projection of a conversation thread.
type ThreadEvent struct {
	CreatedAt time.Time
	Type      string // "customer", "reply", "note", ... or empty when unknown
}

// Inbox is a support mailbox.
type Inbox struct {
	ID   int64
	Name string
}

// TicketFilter selects conversations.
type TicketFilter struct {
	Status       string
	CreatedAfter time.Time
}

// PostRecord is a published content item.
type PostRecord struct {
	ID          int64
	Title       string
	Content     string // rendered body, may contain HTML
	Link        string
	Date        time.Time
	PublishDate string // the date as reported by the source
	Categories  []string
	Tags        []string
}

// SiteInfo describes a content site.
type SiteInfo struct {
	Name    string
	URL     string
	Users   int
	Plugins []string
	Themes  []string
}

// PostFilter selects posts.
type PostFilter struct {
	Status  string
	After   time.Time
	PerPage int
	OrderBy string
	Order   string
}

// FileEntry is one file reported by an inventory listing.
type FileEntry struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// InventorySnapshot maps an inventory source name to its file count.
type InventorySnapshot map[string]int

// Total returns the sum of all file counts.
func (s InventorySnapshot) Total() int {
	var total int
	for _, n := range s {
		total += n
	}
	return total
}

// TicketSource is a support-ticket system.
type TicketSource interface {
	Search(ctx context.Context, filter TicketFilter) ([]TicketRecord, error)
	SearchInboxes(ctx context.Context, query string, limit int) ([]Inbox, error)
}

// ContentSource is a content-management system.
type ContentSource interface {
	GetSiteInfo(ctx context.Context) (SiteInfo, error)
	QueryPosts(ctx context.Context, filter PostFilter) ([]PostRecord, error)
}

// InventorySource lists files under a path.
type InventorySource interface {
	ListDir(ctx context.Context, path string, recursive bool) ([]FileEntry, error)
}

// MemorySink durably records a generated document.
type MemorySink interface {
	Store(ctx context.Context, document string, tags []string, importance float64) error
}
