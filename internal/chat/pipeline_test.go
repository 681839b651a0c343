package chat

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"shapechat/internal/domain"
	"shapechat/internal/media"
	"shapechat/internal/shapes"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

type fakeTransport struct {
	mu      sync.Mutex
	calls   int
	lastKey string
	lastReq shapes.ChatRequest

	reply string
	err   error

	// When set, Send blocks until released is closed.
	started  chan struct{}
	released chan struct{}
}

func (f *fakeTransport) Send(ctx context.Context, apiKey string, req shapes.ChatRequest) (string, error) {
	f.mu.Lock()
	f.calls++
	f.lastKey = apiKey
	f.lastReq = req
	started := f.started
	released := f.released
	f.mu.Unlock()

	if started != nil {
		close(started)
		<-released
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []string
	ctxErrs []error
}

func (n *recordingNotifier) Notify(ctx context.Context, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, text)
	n.ctxErrs = append(n.ctxErrs, ctx.Err())
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notices)
}

func testShape() domain.Shape {
	return domain.Shape{ID: uuid.New(), Name: "TestBot", ReferenceURL: "https://shapes.inc/testbot"}
}

func newTestPipeline(transport Transport) (*Pipeline, *Store, *Compose, *recordingNotifier) {
	store := NewStore()
	compose := NewCompose()
	notifier := &recordingNotifier{}
	return NewPipeline(store, compose, transport, notifier), store, compose, notifier
}

func TestSendValidationRejections(t *testing.T) {
	transport := &fakeTransport{reply: "hi"}
	p, store, _, _ := newTestPipeline(transport)
	shape := testShape()

	tests := []struct {
		name string
		in   SendInput
		want error
	}{
		{"empty text no attachment", SendInput{APIKey: "k", Shape: shape, Text: "   "}, domain.ErrEmptyMessage},
		{"no shape selected", SendInput{APIKey: "k", Text: "hi"}, domain.ErrNoShapeSelected},
		{"no api key", SendInput{Shape: shape, Text: "hi"}, domain.ErrNoAPIKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			err := p.Send(context.Background(), tt.in)
			req.ErrorIs(err, tt.want)
			req.Equal(0, store.Len(), "rejection must leave the log unchanged")
			req.Equal(0, transport.callCount())
		})
	}
}

func TestSendTextSuccess(t *testing.T) {
	req := require.New(t)
	transport := &fakeTransport{reply: "hello back"}
	p, store, _, _ := newTestPipeline(transport)
	shape := testShape()

	err := p.Send(context.Background(), SendInput{APIKey: "key", Shape: shape, Text: "hi there"})
	req.NoError(err)

	msgs := store.Messages()
	req.Len(msgs, 2)
	req.Equal(domain.SenderUser, msgs[0].Sender)
	req.Equal("hi there", msgs[0].Content)
	req.Equal(domain.SenderAgent, msgs[1].Sender)
	req.Equal("hello back", msgs[1].Content)
	req.True(msgs[1].Timestamp.Compare(msgs[0].Timestamp) >= 0)

	req.Equal(1, transport.callCount())
	req.Equal("key", transport.lastKey)
	req.Equal("shapesinc/testbot", transport.lastReq.Model)
	req.Equal("hi there", transport.lastReq.Messages[0].Content)
	req.False(p.Busy())
}

func TestSendTransportFailure(t *testing.T) {
	req := require.New(t)
	transport := &fakeTransport{err: &shapes.StatusError{Code: http.StatusUnauthorized, Status: "401 Unauthorized"}}
	p, store, _, notifier := newTestPipeline(transport)

	err := p.Send(context.Background(), SendInput{APIKey: "bad", Shape: testShape(), Text: "hi"})
	req.Error(err)

	msgs := store.Messages()
	req.Len(msgs, 2, "user message plus exactly one synthetic agent error message")
	req.Equal(domain.SenderUser, msgs[0].Sender)
	req.Equal(domain.SenderAgent, msgs[1].Sender)
	req.Contains(msgs[1].Content, "401 Unauthorized")
	req.Equal(1, transport.callCount(), "no retry on failure")
	req.Equal(1, notifier.count())
	req.False(p.Busy())
}

// expiredCtxTransport fails the way an HTTP client does when the request
// context's deadline fires mid-flight.
type expiredCtxTransport struct{}

func (expiredCtxTransport) Send(ctx context.Context, _ string, _ shapes.ChatRequest) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestSendFailureNoticeSurvivesExpiredContext(t *testing.T) {
	req := require.New(t)
	p, store, _, notifier := newTestPipeline(expiredCtxTransport{})

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	err := p.Send(ctx, SendInput{APIKey: "k", Shape: testShape(), Text: "hi"})
	req.Error(err)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	req.Len(notifier.ctxErrs, 1)
	req.NoError(notifier.ctxErrs[0], "notice must be issued on a live context even when the send context expired")
	req.Equal(2, store.Len(), "synthetic agent error message still settles the log")
}

func TestSendWithAttachment(t *testing.T) {
	req := require.New(t)
	m, err := media.NewManager(t.TempDir())
	req.NoError(err)

	transport := &fakeTransport{reply: "nice picture"}
	p, store, compose, _ := newTestPipeline(transport)

	handle, err := m.Acquire("photo.png", pngHeader)
	req.NoError(err)
	compose.Attach(&domain.PendingAttachment{FileName: "photo.png", Preview: handle})

	err = p.Send(context.Background(), SendInput{APIKey: "k", Shape: testShape(), Text: "hi"})
	req.NoError(err)

	// Wire format: text part first, then the embedded image.
	parts, ok := transport.lastReq.Messages[0].Content.([]any)
	req.True(ok)
	req.Len(parts, 2)
	text, ok := parts[0].(shapes.TextPart)
	req.True(ok)
	req.Equal("hi", text.Text)
	img, ok := parts[1].(shapes.ImagePart)
	req.True(ok)
	req.True(strings.HasPrefix(img.ImageURL.URL, "data:image/png;base64,"))

	// Compose was cleared; the transient handle was released on send but
	// the log's retained preview stays valid.
	req.False(compose.Pending())
	msgs := store.Messages()
	req.NotNil(msgs[0].LocalMedia)
	_, err = os.Stat(msgs[0].LocalMedia.Path())
	req.NoError(err)
	req.Equal(1, m.Live())

	store.Clear()
	req.Equal(0, m.Live())
}

func TestSendAttachmentOnly(t *testing.T) {
	req := require.New(t)
	m, err := media.NewManager(t.TempDir())
	req.NoError(err)

	transport := &fakeTransport{reply: "ok"}
	p, store, compose, _ := newTestPipeline(transport)

	handle, err := m.Acquire("photo.png", pngHeader)
	req.NoError(err)
	compose.Attach(&domain.PendingAttachment{FileName: "photo.png", Preview: handle})

	err = p.Send(context.Background(), SendInput{APIKey: "k", Shape: testShape(), Text: ""})
	req.NoError(err)

	parts, ok := transport.lastReq.Messages[0].Content.([]any)
	req.True(ok)
	req.Len(parts, 1, "blank text must not produce a text part")
	req.IsType(shapes.ImagePart{}, parts[0])
	req.Equal(2, store.Len())
}

func TestSendEncodeFailureAnnotatesUserMessage(t *testing.T) {
	req := require.New(t)
	m, err := media.NewManager(t.TempDir())
	req.NoError(err)

	transport := &fakeTransport{reply: "unreachable"}
	p, store, compose, notifier := newTestPipeline(transport)

	handle, err := m.Acquire("photo.png", pngHeader)
	req.NoError(err)
	compose.Attach(&domain.PendingAttachment{FileName: "photo.png", Preview: handle})

	// Make the spooled file unreadable before the pipeline encodes it.
	req.NoError(os.Remove(handle.Path()))

	err = p.Send(context.Background(), SendInput{APIKey: "k", Shape: testShape(), Text: "look"})
	req.Error(err)

	msgs := store.Messages()
	req.Len(msgs, 1, "encode failure patches the optimistic message, it does not append")
	req.Equal(domain.SenderUser, msgs[0].Sender)
	req.Contains(msgs[0].Content, "look")
	req.Contains(msgs[0].Content, "Not sent")
	req.Equal(0, transport.callCount(), "pipeline must stop before the network step")
	req.Equal(1, notifier.count())
	req.False(p.Busy())
}

func TestSendSerialization(t *testing.T) {
	req := require.New(t)
	transport := &fakeTransport{
		reply:    "done",
		started:  make(chan struct{}),
		released: make(chan struct{}),
	}
	p, store, _, _ := newTestPipeline(transport)
	shape := testShape()

	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Send(context.Background(), SendInput{APIKey: "k", Shape: shape, Text: "first"})
	}()

	<-transport.started
	req.True(p.Busy())

	// A second send while the first is awaiting its response is rejected
	// without touching the log or the transport.
	err := p.Send(context.Background(), SendInput{APIKey: "k", Shape: shape, Text: "second"})
	req.ErrorIs(err, domain.ErrBusy)

	close(transport.released)
	select {
	case err := <-errCh:
		req.NoError(err)
	case <-time.After(5 * time.Second):
		t.Fatal("first send did not settle")
	}

	req.False(p.Busy())
	req.Equal(1, transport.callCount())
	req.Equal(2, store.Len())
}
