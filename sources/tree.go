package sources

import (
	"encoding/json"
	"fmt"

	"github.com/kova98/threadcorpus/forest"
	"github.com/kova98/threadcorpus/models"
)

// treeBuilder turns reddit-shaped things into a forest. Both reddit and
// the ArcticShift archive use the same t1/more encoding.
type treeBuilder struct {
	text func(string) string
	stub func(more models.RedditMore) forest.Stub
}

func (b treeBuilder) body(s string) string {
	if b.text == nil {
		return s
	}
	return b.text(s)
}

// nested converts a listing whose comments carry their replies inline.
func (b treeBuilder) nested(things []models.RedditThing) (forest.Forest, error) {
	items := make(forest.Forest, 0, len(things))
	for _, thing := range things {
		switch thing.Kind {
		case models.KindComment:
			var c models.RedditComment
			if err := json.Unmarshal(thing.Data, &c); err != nil {
				return nil, fmt.Errorf("decode comment: %w", err)
			}
			var replies forest.Forest
			if c.Replies.Listing != nil {
				var err error
				replies, err = b.nested(c.Replies.Listing.Data.Children)
				if err != nil {
					return nil, err
				}
			}
			items = append(items, forest.Node{ID: c.ID, Author: c.Author, Body: b.body(c.Body), Replies: replies})
		case models.KindMore:
			var m models.RedditMore
			if err := json.Unmarshal(thing.Data, &m); err != nil {
				return nil, fmt.Errorf("decode more: %w", err)
			}
			items = append(items, b.stub(m))
		}
	}
	return items, nil
}

type flatEntry struct {
	name     string
	item     forest.Item
	comment  *models.RedditComment
	children []*flatEntry
}

// flat rebuilds a tree from a depth-first list where nesting is only
// expressed through parent_id, as /api/morechildren returns it. Things whose
// parent is not in the list become roots.
func (b treeBuilder) flat(things []models.RedditThing) (forest.Forest, error) {
	byName := make(map[string]*flatEntry, len(things))
	var roots []*flatEntry

	for _, thing := range things {
		var entry *flatEntry
		var parentID string

		switch thing.Kind {
		case models.KindComment:
			var c models.RedditComment
			if err := json.Unmarshal(thing.Data, &c); err != nil {
				return nil, fmt.Errorf("decode comment: %w", err)
			}
			entry = &flatEntry{name: c.Name, comment: &c}
			parentID = c.ParentID
		case models.KindMore:
			var m models.RedditMore
			if err := json.Unmarshal(thing.Data, &m); err != nil {
				return nil, fmt.Errorf("decode more: %w", err)
			}
			entry = &flatEntry{name: m.Name, item: b.stub(m)}
			parentID = m.ParentID
		default:
			continue
		}

		if parent, ok := byName[parentID]; ok && parent.comment != nil {
			parent.children = append(parent.children, entry)
		} else {
			roots = append(roots, entry)
		}
		if entry.name != "" {
			byName[entry.name] = entry
		}
	}

	return b.fromEntries(roots), nil
}

func (b treeBuilder) fromEntries(entries []*flatEntry) forest.Forest {
	items := make(forest.Forest, 0, len(entries))
	for _, e := range entries {
		if e.comment == nil {
			items = append(items, e.item)
			continue
		}
		var replies forest.Forest
		if len(e.children) > 0 {
			replies = b.fromEntries(e.children)
		}
		items = append(items, forest.Node{
			ID:      e.comment.ID,
			Author:  e.comment.Author,
			Body:    b.body(e.comment.Body),
			Replies: replies,
		})
	}
	return items
}

func decodePost(thing models.RedditThing) (models.RedditPost, error) {
	var post models.RedditPost
	if err := json.Unmarshal(thing.Data, &post); err != nil {
		return post, fmt.Errorf("%w: decode post: %v", ErrMalformedThread, err)
	}
	return post, nil
}
