package writers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kova98/threadcorpus/corpus"
	"github.com/kova98/threadcorpus/data"
	"github.com/kova98/threadcorpus/data/repos"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCorpus() corpus.Corpus {
	posted := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return corpus.Build([]corpus.ThreadUtterances{
		{
			Metadata:   corpus.Metadata{ID: "p1", Subreddit: "k12sysadmin", PostedAt: posted, Title: "Breach, again", Author: "a", Link: "https://www.reddit.com/r/k12sysadmin/comments/p1/", Content: "body"},
			Utterances: []string{"first", ""},
		},
		{
			Metadata: corpus.Metadata{ID: "p2", Subreddit: "k12sysadmin", PostedAt: posted, Title: "t2", Author: "b", Link: "l2"},
		},
	})
}

const expectedCSV = `Posted Time,Title,Author,Link,Content,Comment1,Comment2
2025-01-02T03:04:05Z,"Breach, again",a,https://www.reddit.com/r/k12sysadmin/comments/p1/,body,first,
2025-01-02T03:04:05Z,t2,b,l2,,NA,NA
`

func TestEncodeCSV(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, EncodeCSV(&buf, testCorpus(), "NA"))

	assert.Equal(t, expectedCSV, buf.String())
}

func TestEncodeCSV_EmptyCorpusIsHeaderOnly(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, EncodeCSV(&buf, corpus.Build(nil), "NA"))

	assert.Equal(t, "Posted Time,Title,Author,Link,Content\n", buf.String())
}

func TestCSVWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	require.NoError(t, NewCSVWriter(path, "NA").Write(context.Background(), testCorpus()))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, expectedCSV, string(got))
	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	assert.Empty(t, leftovers)
}

func TestCSVWriter_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "posts.csv")

	assert.Error(t, NewCSVWriter(path, "NA").Write(context.Background(), testCorpus()))
}

type fakeObjectStore struct {
	exists  bool
	made    []string
	objects map[string][]byte
	putErr  error
}

func (f *fakeObjectStore) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.exists, nil
}

func (f *fakeObjectStore) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.made = append(f.made, bucket)
	return nil
}

func (f *fakeObjectStore) PutObject(_ context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[bucket+"/"+object] = body
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: size}, nil
}

func TestS3Writer_UploadsCSV(t *testing.T) {
	store := &fakeObjectStore{}
	w := &S3Writer{logger: testLogger(), store: store, bucket: "corpora", object: "posts.csv", missingToken: "NA"}

	require.NoError(t, w.Write(context.Background(), testCorpus()))

	assert.Equal(t, []string{"corpora"}, store.made)
	assert.Equal(t, expectedCSV, string(store.objects["corpora/posts.csv"]))
}

func TestS3Writer_UploadFailure(t *testing.T) {
	store := &fakeObjectStore{exists: true, putErr: errors.New("access denied")}
	w := &S3Writer{logger: testLogger(), store: store, bucket: "corpora", object: "posts.csv"}

	err := w.Write(context.Background(), testCorpus())

	assert.ErrorContains(t, err, "access denied")
	assert.Empty(t, store.made)
}

func TestNewS3Writer(t *testing.T) {
	w, err := NewS3Writer(testLogger(), S3Options{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "b", Object: "o"}, "NA")

	require.NoError(t, err)
	assert.Equal(t, "b", w.bucket)
}

func TestStoreWriter_WritesLongForm(t *testing.T) {
	db, err := data.Connect(data.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()
	repo := repos.NewCorpusRepo(db)

	w := NewStoreWriter(testLogger(), repo, "reddit", "breach")
	require.NoError(t, w.Write(context.Background(), testCorpus()))

	var runID string
	require.NoError(t, db.Get(&runID, "SELECT id FROM runs"))
	var utteranceCount int
	require.NoError(t, db.Get(&utteranceCount, "SELECT COUNT(*) FROM utterances"))
	var threadCount int
	require.NoError(t, db.Get(&threadCount, "SELECT COUNT(*) FROM threads"))

	assert.NotEmpty(t, runID)
	assert.Equal(t, 2, utteranceCount, "padding is not stored, empty utterances are")
	assert.Equal(t, 2, threadCount)
}

type recordingSaver struct {
	run        data.Run
	threads    []data.Thread
	utterances []data.Utterance
}

func (r *recordingSaver) SaveRun(_ context.Context, run data.Run, threads []data.Thread, utterances []data.Utterance) error {
	r.run, r.threads, r.utterances = run, threads, utterances
	return nil
}

func TestStoreWriter_MapsCorpus(t *testing.T) {
	saver := &recordingSaver{}
	w := NewStoreWriter(testLogger(), saver, "arcticshift", "q")

	require.NoError(t, w.Write(context.Background(), testCorpus()))

	assert.Equal(t, 2, saver.run.Width)
	assert.Equal(t, 2, saver.run.ThreadCount)
	assert.Equal(t, "arcticshift", saver.run.Source)
	require.Len(t, saver.threads, 2)
	assert.Equal(t, 2, saver.threads[1].Position)
	assert.Equal(t, []data.Utterance{
		{RunID: saver.run.ID, ThreadPosition: 1, ThreadID: "p1", Position: 1, Body: "first"},
		{RunID: saver.run.ID, ThreadPosition: 1, ThreadID: "p1", Position: 2, Body: ""},
	}, saver.utterances)
}

type failingWriter struct{ calls *int }

func (f failingWriter) Write(context.Context, corpus.Corpus) error {
	*f.calls++
	return errors.New("disk full")
}

type countingWriter struct{ calls *int }

func (c countingWriter) Write(context.Context, corpus.Corpus) error {
	*c.calls++
	return nil
}

func TestMulti_StopsAtFirstError(t *testing.T) {
	var first, second, third int
	m := Multi{countingWriter{&first}, failingWriter{&second}, countingWriter{&third}}

	err := m.Write(context.Background(), testCorpus())

	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 0, third)
}
