package sources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kova98/threadcorpus/corpus"
	"github.com/kova98/threadcorpus/forest"
	"github.com/kova98/threadcorpus/models"
)

func TestValidateMetadata_Complete(t *testing.T) {
	meta := corpus.Metadata{ID: "p1", Author: "op", Link: "https://www.reddit.com/r/x/comments/p1/", PostedAt: time.Now()}

	assert.NoError(t, ValidateMetadata(meta))
}

func TestValidateMetadata_MissingFields(t *testing.T) {
	err := ValidateMetadata(corpus.Metadata{ID: "p1"})

	assert.ErrorIs(t, err, ErrMalformedThread)
	assert.Contains(t, err.Error(), "author, link, posted time")
}

func TestPageSize(t *testing.T) {
	assert.Equal(t, 100, pageSize(0))
	assert.Equal(t, 100, pageSize(250))
	assert.Equal(t, 7, pageSize(7))
}

func TestTreeBuilder_FlatRebuildsNesting(t *testing.T) {
	things := []models.RedditThing{
		{Kind: "t1", Data: []byte(`{"id":"a","name":"t1_a","parent_id":"t1_root","body":"a"}`)},
		{Kind: "t1", Data: []byte(`{"id":"b","name":"t1_b","parent_id":"t1_a","body":"b"}`)},
		{Kind: "more", Data: []byte(`{"id":"m","name":"t1_m","parent_id":"t1_a","count":4,"children":["x"]}`)},
		{Kind: "t1", Data: []byte(`{"id":"c","name":"t1_c","parent_id":"t1_root","body":"c"}`)},
	}
	b := treeBuilder{stub: func(m models.RedditMore) forest.Stub { return forest.Stub{ID: m.Name, Count: m.Count} }}

	items, err := b.flat(things)

	assert.NoError(t, err)
	assert.Equal(t, forest.Forest{
		forest.Node{ID: "a", Body: "a", Replies: forest.Forest{
			forest.Node{ID: "b", Body: "b"},
			forest.Stub{ID: "t1_m", Count: 4},
		}},
		forest.Node{ID: "c", Body: "c"},
	}, items)
}

func TestTreeBuilder_RejectsBadComment(t *testing.T) {
	b := treeBuilder{}

	_, err := b.nested([]models.RedditThing{{Kind: "t1", Data: []byte(`"oops"`)}})

	assert.Error(t, err)
}

func TestOnlyChildren(t *testing.T) {
	items := forest.Forest{forest.Node{ID: "keep"}, forest.Node{ID: "drop"}, forest.Stub{ID: "s", ParentID: "t1_other"}}

	assert.Equal(t, forest.Forest{forest.Node{ID: "keep"}, forest.Stub{ID: "s", ParentID: "t1_other"}}, onlyChildren(items, "t1_p", []string{"keep"}))
	assert.Equal(t, items, onlyChildren(items, "t1_p", nil))
}

func TestOnlyChildren_DropsPlaceholderForSameParent(t *testing.T) {
	items := forest.Forest{forest.Node{ID: "a2"}, forest.Stub{ID: "t1_m", ParentID: "t1_a1"}}

	assert.Equal(t, forest.Forest{forest.Node{ID: "a2"}}, onlyChildren(items, "t1_a1", nil))
}
