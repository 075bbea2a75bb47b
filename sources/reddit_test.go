package sources

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kova98/threadcorpus/corpus"
	"github.com/kova98/threadcorpus/enums"
	"github.com/kova98/threadcorpus/forest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const postListing = `{"kind":"Listing","data":{"children":[{"kind":"t3","data":{"id":"p1"}}]}}`

const p1Comments = `[` + postListing + `,{"kind":"Listing","data":{"children":[
	{"kind":"t1","data":{"id":"c1","name":"t1_c1","author":"u1","body":"first","replies":{"kind":"Listing","data":{"children":[
		{"kind":"t1","data":{"id":"c2","name":"t1_c2","author":"u2","body":"second","replies":{"kind":"Listing","data":{"children":[
			{"kind":"more","data":{"id":"_","name":"t1__","parent_id":"t1_c2","count":0,"children":[]}}
		]}}}},
		{"kind":"more","data":{"id":"m1","name":"t1_m1","parent_id":"t1_c1","count":3,"children":["c3","c4"]}}
	]}}}},
	{"kind":"t1","data":{"id":"c6","name":"t1_c6","author":"u6","body":"last\nline","replies":""}}
]}}]`

const c2Focus = `[` + postListing + `,{"kind":"Listing","data":{"children":[
	{"kind":"t1","data":{"id":"c2","name":"t1_c2","body":"second","replies":{"kind":"Listing","data":{"children":[
		{"kind":"t1","data":{"id":"c7","name":"t1_c7","body":"deep","replies":""}}
	]}}}}
]}}]`

const moreChildren = `{"json":{"errors":[],"data":{"things":[
	{"kind":"t1","data":{"id":"c3","name":"t1_c3","parent_id":"t1_c1","body":"third","replies":""}},
	{"kind":"t1","data":{"id":"c5","name":"t1_c5","parent_id":"t1_c3","body":"child of third","replies":""}},
	{"kind":"t1","data":{"id":"c4","name":"t1_c4","parent_id":"t1_c1","body":"fourth","replies":""}}
]}}}`

func searchPage(after string, ids ...string) string {
	children := make([]string, 0, len(ids))
	for i, id := range ids {
		children = append(children, fmt.Sprintf(
			`{"kind":"t3","data":{"id":%q,"title":"title %s","selftext":"body\nof %s","author":"op%d","subreddit":"golang","permalink":"/r/golang/comments/%s/t/","created_utc":1736000000}}`,
			id, id, id, i, id))
	}
	return fmt.Sprintf(`{"kind":"Listing","data":{"after":%q,"children":[%s]}}`, after, strings.Join(children, ","))
}

type fakeReddit struct {
	searches []string
}

func (f *fakeReddit) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/me":
			io.WriteString(w, `{"name":"Collector"}`)
		case "/r/golang/search":
			f.searches = append(f.searches, r.URL.RawQuery)
			if r.URL.Query().Get("after") == "" {
				io.WriteString(w, searchPage("t3_p2", "p1", "p2"))
				return
			}
			io.WriteString(w, searchPage("", "p3"))
		case "/r/broken/search":
			w.WriteHeader(http.StatusInternalServerError)
		case "/comments/p1":
			if r.URL.Query().Get("comment") == "c2" {
				io.WriteString(w, c2Focus)
				return
			}
			io.WriteString(w, p1Comments)
		case "/api/morechildren":
			assert.Equal(t, "t3_p1", r.URL.Query().Get("link_id"))
			assert.Equal(t, "c3,c4", r.URL.Query().Get("children"))
			io.WriteString(w, moreChildren)
		default:
			http.NotFound(w, r)
		}
	})
}

func newTestReddit(t *testing.T) (*RedditSource, *fakeReddit) {
	fake := &fakeReddit{}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	return NewRedditSource(testLogger(), srv.Client(), srv.URL, "collector", "threadcorpus-test"), fake
}

func collect(t *testing.T, src ThreadSource, q SearchQuery) ([]ThreadHandle, []error) {
	var handles []ThreadHandle
	var errs []error
	for h, err := range src.Search(context.Background(), q) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		handles = append(handles, h)
	}
	return handles, errs
}

func TestRedditSource_VerifyAcceptsCaseInsensitiveName(t *testing.T) {
	src, _ := newTestReddit(t)

	assert.NoError(t, src.Verify(context.Background()))
}

func TestRedditSource_VerifyRejectsOtherUser(t *testing.T) {
	src, _ := newTestReddit(t)
	src.username = "someone-else"

	err := src.Verify(context.Background())

	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestRedditSource_SearchPaginates(t *testing.T) {
	src, fake := newTestReddit(t)

	handles, errs := collect(t, src, SearchQuery{Subreddit: "golang", Query: "data breach", Sort: enums.SortNew, TimeWindow: enums.TimeWindowYear, Limit: 10})

	require.Empty(t, errs)
	require.Len(t, handles, 3)
	assert.Equal(t, "p3", handles[2].Metadata().ID)
	require.Len(t, fake.searches, 2)
	assert.Contains(t, fake.searches[0], "sort=new")
	assert.Contains(t, fake.searches[0], "t=year")
	assert.Contains(t, fake.searches[0], "restrict_sr=1")
	assert.Contains(t, fake.searches[1], "after=t3_p2")
}

func TestRedditSource_SearchStopsAtLimit(t *testing.T) {
	src, fake := newTestReddit(t)

	handles, errs := collect(t, src, SearchQuery{Subreddit: "golang", Query: "q", Sort: enums.SortRelevance, TimeWindow: enums.TimeWindowAll, Limit: 1})

	require.Empty(t, errs)
	assert.Len(t, handles, 1)
	assert.Len(t, fake.searches, 1)
	assert.Contains(t, fake.searches[0], "limit=1")
}

func TestRedditSource_SearchMetadata(t *testing.T) {
	src, _ := newTestReddit(t)

	handles, _ := collect(t, src, SearchQuery{Subreddit: "golang", Query: "q", Limit: 1})

	require.Len(t, handles, 1)
	meta := handles[0].Metadata()
	assert.Equal(t, "p1", meta.ID)
	assert.Equal(t, "golang", meta.Subreddit)
	assert.Equal(t, "title p1", meta.Title)
	assert.Equal(t, "op0", meta.Author)
	assert.Equal(t, "https://www.reddit.com/r/golang/comments/p1/t/", meta.Link)
	assert.Equal(t, "body of p1", meta.Content)
	assert.Equal(t, int64(1736000000), meta.PostedAt.Unix())
	assert.NoError(t, ValidateMetadata(meta))
}

func TestRedditSource_SearchFailureIsSourceUnavailable(t *testing.T) {
	src, _ := newTestReddit(t)

	handles, errs := collect(t, src, SearchQuery{Subreddit: "broken", Query: "q", Limit: 5})

	assert.Empty(t, handles)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrSourceUnavailable)
}

func TestRedditSource_ForestResolvesMoreAndContinueThread(t *testing.T) {
	src, _ := newTestReddit(t)
	thread := &redditThread{source: src, meta: corpus.Metadata{ID: "p1"}}

	items, err := thread.Forest(context.Background())
	require.NoError(t, err)

	out := forest.NewExpander(testLogger(), forest.Unlimited(), forest.ChargeShared, nil).Flatten(context.Background(), items)

	assert.Equal(t, []string{"first", "second", "deep", "third", "child of third", "fourth", "last line"}, out)
}

func TestRedditSource_ForestWithZeroBudget(t *testing.T) {
	src, _ := newTestReddit(t)
	thread := &redditThread{source: src, meta: corpus.Metadata{ID: "p1"}}

	items, err := thread.Forest(context.Background())
	require.NoError(t, err)

	out := forest.NewExpander(testLogger(), forest.Limit(0), forest.ChargeShared, nil).Flatten(context.Background(), items)

	assert.Equal(t, []string{"first", "second", "last line"}, out)
}

func TestRedditSource_ForestFetchError(t *testing.T) {
	src, _ := newTestReddit(t)
	thread := &redditThread{source: src, meta: corpus.Metadata{ID: "missing"}}

	_, err := thread.Forest(context.Background())

	assert.Error(t, err)
}

func TestRedditLogin_PasswordGrant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "threadcorpus-test", r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/api/v1/access_token":
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "client-id", user)
			assert.Equal(t, "client-secret", pass)
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "password", r.PostForm.Get("grant_type"))
			assert.Equal(t, "collector", r.PostForm.Get("username"))
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"access_token":"tok-123","token_type":"bearer","expires_in":3600}`)
		case "/api/v1/me":
			assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			io.WriteString(w, `{"name":"collector"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	creds := RedditCredentials{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Username:     "collector",
		Password:     "hunter2",
		UserAgent:    "threadcorpus-test",
		TokenURL:     srv.URL + "/api/v1/access_token",
	}
	client, err := RedditLogin(context.Background(), creds, srv.Client())
	require.NoError(t, err)

	src := NewRedditSource(testLogger(), client, srv.URL, "collector", "threadcorpus-test")
	assert.NoError(t, src.Verify(context.Background()))
}

func TestRedditLogin_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":"invalid_grant"}`)
	}))
	defer srv.Close()

	_, err := RedditLogin(context.Background(), RedditCredentials{TokenURL: srv.URL, UserAgent: "ua"}, srv.Client())

	assert.ErrorIs(t, err, ErrSourceUnavailable)
}
