package shapes

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"shapechat/internal/domain"
)

// ModelNamespace prefixes every derived model identifier on the wire.
const ModelNamespace = "shapesinc"

// TextPart and ImagePart are the typed content parts of a multi-part
// user message. When both are present, text precedes image; the endpoint
// relies on this ordering.
type TextPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ImagePart struct {
	Type     string   `json:"type"`
	ImageURL ImageRef `json:"image_url"`
}

type ImageRef struct {
	URL string `json:"url"`
}

// ModelID derives the wire model identifier for a shape from the last
// path segment of its reference URL, falling back to the display name
// with whitespace collapsed to hyphens when the URL has no usable
// segment.
func ModelID(shape domain.Shape) string {
	slug := SlugFromURL(shape.ReferenceURL)
	if slug == "" {
		slug = strings.Join(strings.Fields(shape.Name), "-")
	}
	return ModelNamespace + "/" + slug
}

// SlugFromURL returns the last non-empty path segment of a reference
// URL, or "" when there is none.
func SlugFromURL(referenceURL string) string {
	u, err := url.Parse(referenceURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	return segments[len(segments)-1]
}

// EncodeAttachment reads the spooled attachment and produces a
// self-contained data URL for the image part. This can fail
// independently of the network transport and callers must treat the two
// failures differently.
func EncodeAttachment(att *domain.PendingAttachment) (string, error) {
	raw, err := os.ReadFile(att.Preview.Path())
	if err != nil {
		return "", fmt.Errorf("read attachment %q: %w", att.FileName, err)
	}
	mime := mimetype.Detect(raw)
	return "data:" + mime.String() + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}

// BuildRequest assembles the outbound chat-completion request. Content
// is the raw text string when there is no attachment; otherwise an
// ordered part slice with the text part included only when the trimmed
// text is non-empty.
func BuildRequest(shape domain.Shape, text string, imageDataURL string) ChatRequest {
	var content any = text
	if imageDataURL != "" {
		parts := make([]any, 0, 2)
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			parts = append(parts, TextPart{Type: "text", Text: trimmed})
		}
		parts = append(parts, ImagePart{Type: "image_url", ImageURL: ImageRef{URL: imageDataURL}})
		content = parts
	}
	return ChatRequest{
		Model:    ModelID(shape),
		Messages: []ChatMessage{{Role: "user", Content: content}},
	}
}
