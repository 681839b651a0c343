package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"shapechat/internal/domain"
	"shapechat/internal/shapes"
)

// Transport sends one chat-completion request and returns the reply
// text. Exactly one attempt per call; no retry.
type Transport interface {
	Send(ctx context.Context, apiKey string, req shapes.ChatRequest) (string, error)
}

// Notifier receives transient user-facing notices about failed sends.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, text string)

func (f NotifierFunc) Notify(ctx context.Context, text string) { f(ctx, text) }

// AttachmentFailedNote is appended in place to an optimistic user
// message whose attachment could not be encoded.
const AttachmentFailedNote = "\n⚠️ Not sent: the attached file could not be read."

// SendInput carries the per-invocation inputs. The pipeline never reads
// the key or the shape from ambient state; an in-flight send keeps the
// shape snapshot it was given even if the user switches shapes meanwhile.
type SendInput struct {
	APIKey string
	Shape  domain.Shape
	Text   string
}

// Pipeline runs one send attempt at a time for a single conversation:
// validate, optimistic append, optional attachment encode, one transport
// call, settle into the store.
type Pipeline struct {
	store     *Store
	compose   *Compose
	transport Transport
	notifier  Notifier
	busy      atomic.Bool
}

func NewPipeline(store *Store, compose *Compose, transport Transport, notifier Notifier) *Pipeline {
	return &Pipeline{store: store, compose: compose, transport: transport, notifier: notifier}
}

// Busy reports whether a send is awaiting its response. Callers use it
// to suppress further sends; Send also rejects concurrent attempts
// itself.
func (p *Pipeline) Busy() bool {
	return p.busy.Load()
}

// Send runs one complete send attempt. Validation rejections return a
// sentinel error and leave the log untouched. Every other failure is
// settled into the log before returning: an annotation on the user's own
// message when the attachment could not be encoded, or a synthetic agent
// error message when the transport failed.
func (p *Pipeline) Send(ctx context.Context, in SendInput) error {
	// 1. Validate preconditions. Rejections have no visible effect.
	if strings.TrimSpace(in.Text) == "" && !p.compose.Pending() {
		return domain.ErrEmptyMessage
	}
	if in.Shape.ID == uuid.Nil {
		return domain.ErrNoShapeSelected
	}
	if in.APIKey == "" {
		return domain.ErrNoAPIKey
	}

	// 2. One in-flight send per conversation.
	if !p.busy.CompareAndSwap(false, true) {
		return domain.ErrBusy
	}
	defer p.busy.Store(false)

	// 3. Optimistic append and synchronous compose clear: the user sees
	// their message and an empty composer before any suspension point.
	att := p.compose.Take()
	userMsg := domain.Message{
		ID:        uuid.NewString(),
		Content:   in.Text,
		Sender:    domain.SenderUser,
		Timestamp: time.Now(),
	}
	if att != nil {
		userMsg.LocalMedia = att.Preview.Retain()
	}
	p.store.Append(userMsg)

	// 4. Encode the attachment, if any. The compose session's transient
	// handle is revoked here; the log keeps its own retained handle.
	var imageDataURL string
	if att != nil {
		encoded, err := shapes.EncodeAttachment(att)
		att.Preview.Release()
		if err != nil {
			slog.Error("attachment encode failed", "error", err, "file", att.FileName)
			p.store.Patch(userMsg.ID, func(m *domain.Message) {
				m.Content += AttachmentFailedNote
			})
			p.notifier.Notify(context.WithoutCancel(ctx), "Couldn't read the attached file, so the message was not sent.")
			return fmt.Errorf("encode attachment: %w", err)
		}
		imageDataURL = encoded
	}

	// 5. Single transport attempt.
	req := shapes.BuildRequest(in.Shape, in.Text, imageDataURL)
	reply, err := p.transport.Send(ctx, in.APIKey, req)
	if err != nil {
		slog.Error("shapes send failed", "error", err, "shape", in.Shape.Name)
		p.store.Append(domain.Message{
			ID:        uuid.NewString(),
			Content:   errorReply(err),
			Sender:    domain.SenderAgent,
			Timestamp: time.Now(),
		})
		// The failure may be the request context expiring; the notice
		// must still reach the user.
		p.notifier.Notify(context.WithoutCancel(ctx), "Message failed to send.")
		return fmt.Errorf("send to shape: %w", err)
	}

	// 6. Settle success.
	p.store.Append(domain.Message{
		ID:        uuid.NewString(),
		Content:   reply,
		Sender:    domain.SenderAgent,
		Timestamp: time.Now(),
	})
	return nil
}

// errorReply renders a transport failure as the content of the synthetic
// agent message kept in the log.
func errorReply(err error) string {
	var statusErr *shapes.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("Sorry, I couldn't respond: the Shapes API returned %s.", statusErr.Status)
	}
	return "Sorry, I couldn't respond: the request failed."
}
