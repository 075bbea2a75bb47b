package sources

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/kova98/threadcorpus/corpus"
	"github.com/kova98/threadcorpus/forest"
	"github.com/kova98/threadcorpus/models"
)

const (
	RedditOAuthBaseURL = "https://oauth.reddit.com"
	RedditTokenURL     = "https://www.reddit.com/api/v1/access_token"
	redditWebURL       = "https://www.reddit.com"

	moreChildrenBatch = 100
	commentPageLimit  = 500
)

type RedditCredentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
	TokenURL     string
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}

// passwordTokenSource logs in again whenever the cached token expires;
// reddit issues no refresh token for script apps.
type passwordTokenSource struct {
	ctx   context.Context
	conf  *oauth2.Config
	creds RedditCredentials
}

func (s *passwordTokenSource) Token() (*oauth2.Token, error) {
	return s.conf.PasswordCredentialsToken(s.ctx, s.creds.Username, s.creds.Password)
}

// RedditLogin performs the OAuth password grant and returns a client that
// authorizes every request. base supplies the timeout and transport.
func RedditLogin(ctx context.Context, creds RedditCredentials, base *http.Client) (*http.Client, error) {
	if base == nil {
		base = &http.Client{Timeout: 15 * time.Second}
	}
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	tokenURL := creds.TokenURL
	if tokenURL == "" {
		tokenURL = RedditTokenURL
	}

	uaClient := &http.Client{
		Timeout:   base.Timeout,
		Transport: &userAgentTransport{base: transport, userAgent: creds.UserAgent},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, uaClient)

	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
	src := &passwordTokenSource{ctx: ctx, conf: conf, creds: creds}
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: reddit login: %v", ErrSourceUnavailable, truncateError(err))
	}

	client := oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src))
	client.Timeout = base.Timeout
	return client, nil
}

type RedditSource struct {
	logger    *slog.Logger
	client    *http.Client
	baseURL   string
	username  string
	userAgent string
}

// NewRedditSource expects client to be authorized already (see RedditLogin).
func NewRedditSource(logger *slog.Logger, client *http.Client, baseURL, username, userAgent string) *RedditSource {
	if baseURL == "" {
		baseURL = RedditOAuthBaseURL
	}
	return &RedditSource{
		logger:    logger,
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		username:  username,
		userAgent: userAgent,
	}
}

// Verify checks that the session is logged in as the configured user.
func (s *RedditSource) Verify(ctx context.Context) error {
	var me models.RedditIdentity
	if _, err := s.fetch(ctx, s.baseURL+"/api/v1/me", &me); err != nil {
		return fmt.Errorf("%w: verify identity: %v", ErrSourceUnavailable, truncateError(err))
	}
	if !strings.EqualFold(me.Name, s.username) {
		return fmt.Errorf("%w: logged in as %q, expected %q", ErrSourceUnavailable, me.Name, s.username)
	}
	s.logger.Info("logged in to reddit", "username", me.Name)
	return nil
}

func (s *RedditSource) Search(ctx context.Context, q SearchQuery) iter.Seq2[ThreadHandle, error] {
	return func(yield func(ThreadHandle, error) bool) {
		subreddit := q.Subreddit
		if subreddit == "" {
			subreddit = "all"
		}
		restrict := "1"
		if strings.EqualFold(subreddit, "all") {
			restrict = "0"
		}

		produced := 0
		after := ""
		for q.Limit <= 0 || produced < q.Limit {
			params := neturl.Values{}
			params.Set("q", q.Query)
			params.Set("sort", string(q.Sort))
			params.Set("t", string(q.TimeWindow))
			params.Set("limit", strconv.Itoa(pageSize(q.Limit-produced)))
			params.Set("restrict_sr", restrict)
			params.Set("type", "link")
			params.Set("raw_json", "1")
			if after != "" {
				params.Set("after", after)
			}
			url := fmt.Sprintf("%s/r/%s/search?%s", s.baseURL, neturl.PathEscape(subreddit), params.Encode())

			var listing models.RedditListing
			requestMs, err := s.fetch(ctx, url, &listing)
			if err != nil {
				yield(nil, fmt.Errorf("%w: search r/%s: %v", ErrSourceUnavailable, subreddit, truncateError(err)))
				return
			}
			s.logger.Debug("search page", "subreddit", subreddit, "results", len(listing.Data.Children), "request_ms", requestMs)

			for _, child := range listing.Data.Children {
				if child.Kind != models.KindPost {
					continue
				}
				if q.Limit > 0 && produced >= q.Limit {
					return
				}
				produced++
				thread, err := s.newThread(child)
				if !yield(thread, err) {
					return
				}
			}

			after = listing.Data.After
			if after == "" || len(listing.Data.Children) == 0 {
				return
			}
		}
	}
}

func (s *RedditSource) newThread(thing models.RedditThing) (ThreadHandle, error) {
	post, err := decodePost(thing)
	if err != nil {
		return nil, err
	}
	meta := corpus.Metadata{
		ID:        post.ID,
		Subreddit: post.Subreddit,
		Title:     post.Title,
		Author:    post.Author,
		Link:      postLink(post.Subreddit, post.ID, post.Permalink),
		Content:   forest.NormalizeText(post.Selftext),
	}
	if post.CreatedUTC > 0 {
		meta.PostedAt = time.Unix(int64(post.CreatedUTC), 0).UTC()
	}
	return &redditThread{source: s, meta: meta}, nil
}

type redditThread struct {
	source *RedditSource
	meta   corpus.Metadata
}

func (t *redditThread) Metadata() corpus.Metadata {
	return t.meta
}

func (t *redditThread) Forest(ctx context.Context) (forest.Forest, error) {
	listings, err := t.source.comments(ctx, t.meta.ID, "")
	if err != nil {
		return nil, fmt.Errorf("fetch comments for %s: %w", t.meta.ID, err)
	}
	return t.source.builder("t3_" + t.meta.ID).nested(listings[1].Data.Children)
}

// comments fetches the post page. With focus set, the page is rooted at
// that comment instead of the post.
func (s *RedditSource) comments(ctx context.Context, postID, focus string) ([]models.RedditListing, error) {
	params := neturl.Values{}
	params.Set("raw_json", "1")
	params.Set("limit", strconv.Itoa(commentPageLimit))
	if focus != "" {
		params.Set("comment", focus)
	}
	url := fmt.Sprintf("%s/comments/%s?%s", s.baseURL, neturl.PathEscape(postID), params.Encode())

	var listings []models.RedditListing
	if _, err := s.fetch(ctx, url, &listings); err != nil {
		return nil, err
	}
	if len(listings) < 2 {
		return nil, fmt.Errorf("unexpected comments payload with %d listings", len(listings))
	}
	return listings, nil
}

func (s *RedditSource) builder(linkID string) treeBuilder {
	return treeBuilder{
		stub: func(more models.RedditMore) forest.Stub {
			return forest.Stub{
				ID:       more.Name,
				ParentID: more.ParentID,
				Count:    more.Count,
				Resolve: func(ctx context.Context) (forest.Forest, error) {
					if len(more.Children) == 0 {
						return s.continueThread(ctx, linkID, more.ParentID)
					}
					return s.moreChildren(ctx, linkID, more.Children)
				},
			}
		},
	}
}

// moreChildren loads the comments listed in a "more" placeholder, in
// batches of moreChildrenBatch ids.
func (s *RedditSource) moreChildren(ctx context.Context, linkID string, children []string) (forest.Forest, error) {
	var things []models.RedditThing
	for start := 0; start < len(children); start += moreChildrenBatch {
		end := min(start+moreChildrenBatch, len(children))

		params := neturl.Values{}
		params.Set("api_type", "json")
		params.Set("link_id", linkID)
		params.Set("children", strings.Join(children[start:end], ","))
		params.Set("limit_children", "false")
		params.Set("raw_json", "1")
		url := fmt.Sprintf("%s/api/morechildren?%s", s.baseURL, params.Encode())

		var resp models.RedditMoreChildrenResponse
		if _, err := s.fetch(ctx, url, &resp); err != nil {
			return nil, fmt.Errorf("morechildren: %w", err)
		}
		if len(resp.JSON.Errors) > 0 {
			return nil, fmt.Errorf("morechildren: %v", resp.JSON.Errors)
		}
		things = append(things, resp.JSON.Data.Things...)
	}
	return s.builder(linkID).flat(things)
}

// continueThread loads the replies of a comment that reddit cut off at
// its nesting limit.
func (s *RedditSource) continueThread(ctx context.Context, linkID, parentID string) (forest.Forest, error) {
	postID := strings.TrimPrefix(linkID, "t3_")
	commentID := strings.TrimPrefix(parentID, "t1_")
	if commentID == "" || commentID == parentID {
		return nil, fmt.Errorf("continue thread: parent %q is not a comment", parentID)
	}

	listings, err := s.comments(ctx, postID, commentID)
	if err != nil {
		return nil, fmt.Errorf("continue thread: %w", err)
	}
	focused, err := s.builder(linkID).nested(listings[1].Data.Children)
	if err != nil {
		return nil, err
	}
	for _, item := range focused {
		if n, ok := item.(forest.Node); ok && n.ID == commentID {
			return n.Replies, nil
		}
	}
	return nil, nil
}

func (s *RedditSource) fetch(ctx context.Context, url string, dest any) (int64, error) {
	return getJSON(ctx, s.client, url, s.userAgent, dest)
}

func postLink(subreddit, postID, permalink string) string {
	if permalink != "" {
		return redditWebURL + permalink
	}
	if subreddit == "" || postID == "" {
		return ""
	}
	return fmt.Sprintf("%s/r/%s/comments/%s/", redditWebURL, subreddit, postID)
}
