package sink

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/recbatch/internal/domain"
)

func testEnvelope(seq int, records ...string) Envelope {
	b := domain.NewBatch()
	for _, r := range records {
		b.Add(r)
	}
	return NewEnvelope("test.txt", seq, *b)
}

func TestNewEnvelope(t *testing.T) {
	env := testEnvelope(3, "a", "é")

	assert.Len(t, env.ID, 26)
	assert.Equal(t, "test.txt", env.Source)
	assert.Equal(t, 3, env.Sequence)
	assert.Equal(t, 2, env.Count)
	assert.Equal(t, 3, env.TotalBytes)
	assert.NotEqual(t, env.ID, testEnvelope(3, "a").ID)
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriterSink(&buf)

	require.NoError(t, s.Send(context.Background(), testEnvelope(0, "a", "b")))
	require.NoError(t, s.Send(context.Background(), testEnvelope(1, "c")))
	require.NoError(t, s.Close())

	sc := bufio.NewScanner(&buf)
	var got []Envelope
	for sc.Scan() {
		var env Envelope
		require.NoError(t, json.Unmarshal(sc.Bytes(), &env))
		got = append(got, env)
	}
	require.Len(t, got, 2)
	assert.Equal(t, []string{"a", "b"}, got[0].Records)
	assert.Equal(t, 1, got[1].Sequence)
}

func TestWriterSink_CanceledContext(t *testing.T) {
	s := NewWriterSink(io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Send(ctx, testEnvelope(0, "a")), context.Canceled)
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	s, err := NewFileSink(path)
	require.NoError(t, err)

	require.NoError(t, s.Send(context.Background(), testEnvelope(0, "a")))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
}

func TestHTTPSink(t *testing.T) {
	var got Envelope
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewHTTPSink(srv.Client(), srv.URL, "secret")
	env := testEnvelope(0, "record1", "record2")

	require.NoError(t, s.Send(context.Background(), env))
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, batchesEndpoint, gotPath)
	assert.Equal(t, env.ID, got.ID)
	assert.Equal(t, []string{"record1", "record2"}, got.Records)
}

func TestHTTPSink_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewHTTPSink(srv.Client(), srv.URL, "")
	err := s.Send(context.Background(), testEnvelope(0, "a"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "overloaded")
}

type fakeChannel struct {
	published []amqp.Publishing
	keys      []string
	err       error
	closed    bool
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.keys = append(c.keys, exchange+"/"+key)
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestAMQPSink(t *testing.T) {
	ch := &fakeChannel{}
	s := &AMQPSink{ch: ch, queue: "batches"}
	env := testEnvelope(0, "a", "b")

	require.NoError(t, s.Send(context.Background(), env))
	require.Len(t, ch.published, 1)

	msg := ch.published[0]
	assert.Equal(t, "/batches", ch.keys[0])
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, env.ID, msg.MessageId)

	var got Envelope
	require.NoError(t, json.Unmarshal(msg.Body, &got))
	assert.Equal(t, env.Records, got.Records)

	require.NoError(t, s.Close())
	assert.True(t, ch.closed)
}

func TestAMQPSink_PublishError(t *testing.T) {
	boom := errors.New("channel closed")
	s := &AMQPSink{ch: &fakeChannel{err: boom}, queue: "batches"}

	assert.ErrorIs(t, s.Send(context.Background(), testEnvelope(0, "a")), boom)
}

func TestDeadLetterWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewDeadLetterWriter(&buf)

	require.NoError(t, w.Write(DeadLetter{Source: "in.txt", ByteLen: 5, Reason: ReasonRecordTooLarge, Record: "hello"}))
	require.NoError(t, w.Write(DeadLetter{Source: "in.txt", Line: 9, ByteLen: 1 << 30, Reason: ReasonRecordTooLarge, Truncated: true}))
	assert.Equal(t, 2, w.Count())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first DeadLetter
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "hello", first.Record)
	assert.False(t, first.At.IsZero())
	assert.NotContains(t, lines[1], `"record"`)
}
