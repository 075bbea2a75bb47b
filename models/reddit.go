package models

import (
	"bytes"
	"encoding/json"
)

const (
	KindComment = "t1"
	KindPost    = "t3"
	KindMore    = "more"
	KindListing = "Listing"
)

type RedditListing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string        `json:"after"`
		Children []RedditThing `json:"children"`
	} `json:"data"`
}

// RedditThing is decoded lazily since its data depends on Kind.
type RedditThing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type RedditPost struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
	NumComments int     `json:"num_comments"`
}

type RedditComment struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Author     string        `json:"author"`
	Body       string        `json:"body"`
	ParentID   string        `json:"parent_id"`
	LinkID     string        `json:"link_id"`
	Subreddit  string        `json:"subreddit"`
	CreatedUTC float64       `json:"created_utc"`
	Replies    RedditReplies `json:"replies"`
}

// RedditReplies holds a Listing, or nothing when reddit sends "" for a
// comment without replies.
type RedditReplies struct {
	Listing *RedditListing
}

func (r *RedditReplies) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		r.Listing = nil
		return nil
	}
	var listing RedditListing
	if err := json.Unmarshal(b, &listing); err != nil {
		return err
	}
	r.Listing = &listing
	return nil
}

// RedditMore is a "load more comments" placeholder. An empty Children list
// means "continue this thread": the replies of ParentID live on another page.
type RedditMore struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ParentID string   `json:"parent_id"`
	Count    int      `json:"count"`
	Depth    int      `json:"depth"`
	Children []string `json:"children"`
}

type RedditMoreChildrenResponse struct {
	JSON struct {
		Errors [][]any `json:"errors"`
		Data   struct {
			Things []RedditThing `json:"things"`
		} `json:"data"`
	} `json:"json"`
}

type RedditIdentity struct {
	Name string `json:"name"`
}
