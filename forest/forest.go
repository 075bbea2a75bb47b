// Package forest models a partially loaded discussion tree and flattens it
// into an ordered list of utterances.
package forest

import "context"

// Item is either a Node or a Stub.
type Item interface {
	isItem()
}

// Forest is an ordered sequence of items as the platform returns them.
type Forest []Item

// Node is a loaded comment. Replies are traversed right after the node.
type Node struct {
	ID      string
	Author  string
	Body    string
	Replies Forest
}

// Resolver loads the items hidden behind a Stub.
type Resolver func(ctx context.Context) (Forest, error)

// Stub marks sibling or descendant comments that exist but were not loaded.
// Resolving a stub is a blocking network call and may yield further stubs.
type Stub struct {
	ID       string
	ParentID string
	Count    int
	Resolve  Resolver
}

func (Node) isItem() {}
func (Stub) isItem() {}

// Texts returns the bodies of a stub-free, reply-free forest. Used by tests
// and callers that already hold resolved comments.
func Texts(items Forest) []string {
	texts := make([]string, 0, len(items))
	for _, item := range items {
		if n, ok := item.(Node); ok {
			texts = append(texts, n.Body)
		}
	}
	return texts
}
