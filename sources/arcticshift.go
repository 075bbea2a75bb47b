package sources

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	neturl "net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/kova98/threadcorpus/corpus"
	"github.com/kova98/threadcorpus/enums"
	"github.com/kova98/threadcorpus/forest"
	"github.com/kova98/threadcorpus/models"
)

const (
	ArcticShiftBaseURL     = "https://arctic-shift.photon-reddit.com/api"
	arcticShiftPostsFields = "id,subreddit,author,title,selftext,permalink,num_comments,created_utc"
	arcticShiftUserAgent   = "threadcorpus"
	arcticShiftTreeLimit   = 9999
)

// ArcticShiftSource reads threads from the ArcticShift reddit archive. It
// needs no credentials; requests rotate through pool when one is set.
type ArcticShiftSource struct {
	logger  *slog.Logger
	client  *http.Client
	pool    *ProxyPool
	baseURL string
	now     func() time.Time
}

func NewArcticShiftSource(logger *slog.Logger, client *http.Client, pool *ProxyPool, baseURL string) *ArcticShiftSource {
	if baseURL == "" {
		baseURL = ArcticShiftBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &ArcticShiftSource{
		logger:  logger,
		client:  client,
		pool:    pool,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

func (s *ArcticShiftSource) Verify(ctx context.Context) error {
	url := fmt.Sprintf("%s/posts/search?subreddit=announcements&limit=1&fields=id", s.baseURL)
	var resp models.ArcticShiftSearchResponse[models.ArcticShiftPost]
	requestMs, err := s.fetch(ctx, url, &resp)
	if err != nil {
		return fmt.Errorf("%w: probe arcticshift: %v", ErrSourceUnavailable, truncateError(err))
	}
	if resp.Error != "" {
		return fmt.Errorf("%w: probe arcticshift: %s", ErrSourceUnavailable, resp.Error)
	}
	s.logger.Info("arcticshift reachable", "request_ms", requestMs)
	return nil
}

func (s *ArcticShiftSource) Search(ctx context.Context, q SearchQuery) iter.Seq2[ThreadHandle, error] {
	return func(yield func(ThreadHandle, error) bool) {
		if q.Sort == enums.SortRelevance {
			s.logger.Info("arcticshift has no relevance sort, using newest first", "subreddit", q.Subreddit)
		}

		var after time.Time
		if window := windowDuration(q.TimeWindow); window > 0 {
			after = s.now().Add(-window)
		}

		// before is exclusive, so a page boundary may split posts sharing one
		// second. Pages restart at that second and skip the ids already seen.
		produced := 0
		var before, boundary int64
		seen := map[string]bool{}
		for q.Limit <= 0 || produced < q.Limit {
			params := neturl.Values{}
			if q.Subreddit != "" && !strings.EqualFold(q.Subreddit, "all") {
				params.Set("subreddit", q.Subreddit)
			}
			params.Set("query", q.Query)
			params.Set("limit", strconv.Itoa(pageSize(q.Limit-produced)))
			params.Set("sort", "desc")
			params.Set("fields", arcticShiftPostsFields)
			if !after.IsZero() {
				params.Set("after", strconv.FormatInt(after.Unix(), 10))
			}
			if before > 0 {
				params.Set("before", strconv.FormatInt(before, 10))
			}
			url := fmt.Sprintf("%s/posts/search?%s", s.baseURL, params.Encode())

			var resp models.ArcticShiftSearchResponse[models.ArcticShiftPost]
			requestMs, err := s.fetch(ctx, url, &resp)
			if err == nil && resp.Error != "" {
				err = errors.New(resp.Error)
			}
			if err != nil {
				yield(nil, fmt.Errorf("%w: search %s: %v", ErrSourceUnavailable, q.Subreddit, truncateError(err)))
				return
			}
			s.logger.Debug("search page", "subreddit", q.Subreddit, "results", len(resp.Data), "request_ms", requestMs)

			if len(resp.Data) == 0 {
				return
			}
			fresh := 0
			for _, post := range resp.Data {
				if seen[post.ID] {
					continue
				}
				if q.Limit > 0 && produced >= q.Limit {
					return
				}
				fresh++
				produced++
				if !yield(s.newThread(post), nil) {
					return
				}
			}

			oldest := resp.Data[len(resp.Data)-1].CreatedUTC
			if oldest <= 0 || (before > 0 && oldest >= before) {
				return
			}
			if fresh == 0 {
				// a whole page of one second was seen already, step past it
				s.logger.Warn("more posts share one timestamp than fit a page, skipping the rest",
					"subreddit", q.Subreddit, "created_utc", oldest)
				before = oldest
				clear(seen)
				continue
			}
			if oldest != boundary {
				boundary = oldest
				clear(seen)
			}
			for _, post := range resp.Data {
				if post.CreatedUTC == boundary {
					seen[post.ID] = true
				}
			}
			before = oldest + 1
		}
	}
}

func windowDuration(w enums.TimeWindow) time.Duration {
	switch w {
	case enums.TimeWindowHour:
		return time.Hour
	case enums.TimeWindowDay:
		return 24 * time.Hour
	case enums.TimeWindowWeek:
		return 7 * 24 * time.Hour
	case enums.TimeWindowMonth:
		return 30 * 24 * time.Hour
	case enums.TimeWindowYear:
		return 365 * 24 * time.Hour
	}
	return 0
}

func (s *ArcticShiftSource) newThread(post models.ArcticShiftPost) ThreadHandle {
	meta := corpus.Metadata{
		ID:        post.ID,
		Subreddit: post.Subreddit,
		Title:     html.UnescapeString(post.Title),
		Author:    post.Author,
		Link:      postLink(post.Subreddit, post.ID, post.Permalink),
		Content:   forest.NormalizeText(html.UnescapeString(post.Selftext)),
	}
	if post.CreatedUTC > 0 {
		meta.PostedAt = time.Unix(post.CreatedUTC, 0).UTC()
	}
	return &arcticShiftThread{source: s, meta: meta}
}

type arcticShiftThread struct {
	source *ArcticShiftSource
	meta   corpus.Metadata
}

func (t *arcticShiftThread) Metadata() corpus.Metadata {
	return t.meta
}

func (t *arcticShiftThread) Forest(ctx context.Context) (forest.Forest, error) {
	items, err := t.source.tree(ctx, "t3_"+t.meta.ID, "")
	if err != nil {
		return nil, fmt.Errorf("fetch comment tree for %s: %w", t.meta.ID, err)
	}
	return items, nil
}

// tree loads a comment tree, rooted at parentID when it is set.
func (s *ArcticShiftSource) tree(ctx context.Context, linkID, parentID string) (forest.Forest, error) {
	params := neturl.Values{}
	params.Set("link_id", linkID)
	params.Set("limit", strconv.Itoa(arcticShiftTreeLimit))
	if parentID != "" {
		params.Set("parent_id", parentID)
	}
	url := fmt.Sprintf("%s/comments/tree?%s", s.baseURL, params.Encode())

	var resp models.ArcticShiftSearchResponse[models.RedditThing]
	if _, err := s.fetch(ctx, url, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}
	return s.builder(linkID).nested(resp.Data)
}

func (s *ArcticShiftSource) builder(linkID string) treeBuilder {
	return treeBuilder{
		text: html.UnescapeString,
		stub: func(more models.RedditMore) forest.Stub {
			return forest.Stub{
				ID:       more.Name,
				ParentID: more.ParentID,
				Count:    more.Count,
				Resolve: func(ctx context.Context) (forest.Forest, error) {
					items, err := s.tree(ctx, linkID, more.ParentID)
					if err != nil {
						return nil, err
					}
					return onlyChildren(items, more.ParentID, more.Children), nil
				},
			}
		},
	}
}

// onlyChildren keeps the top-level nodes named by a placeholder, so
// siblings that were already loaded are not emitted twice. Placeholders for
// the same parent are dropped: the tree endpoint has no offset, so resolving
// them would return this very subtree again.
func onlyChildren(items forest.Forest, parentID string, children []string) forest.Forest {
	kept := make(forest.Forest, 0, len(items))
	for _, item := range items {
		switch it := item.(type) {
		case forest.Node:
			if len(children) > 0 && !slices.Contains(children, it.ID) {
				continue
			}
		case forest.Stub:
			if parentID != "" && it.ParentID == parentID {
				continue
			}
		}
		kept = append(kept, item)
	}
	return kept
}

func (s *ArcticShiftSource) fetch(ctx context.Context, url string, dest any) (int64, error) {
	if s.pool == nil {
		return getJSON(ctx, s.client, url, arcticShiftUserAgent, dest)
	}

	client, host, err := s.pool.Next(ctx)
	if err != nil {
		return 0, err
	}
	requestMs, err := getJSON(ctx, client, url, arcticShiftUserAgent, dest)
	switch {
	case errors.Is(err, errRateLimited):
		s.pool.MarkRateLimited(host)
	case err != nil:
		s.pool.MarkFailure(host)
	default:
		s.pool.MarkSuccess(host)
	}
	return requestMs, err
}
