package shapes

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"shapechat/internal/domain"
	"shapechat/internal/media"
)

// pngHeader is a valid PNG signature, enough for MIME sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestModelID(t *testing.T) {
	tests := []struct {
		name  string
		shape domain.Shape
		want  string
	}{
		{
			name:  "slug from reference url",
			shape: domain.Shape{Name: "Bella", ReferenceURL: "https://shapes.inc/bella-donna"},
			want:  "shapesinc/bella-donna",
		},
		{
			name:  "trailing slash ignored",
			shape: domain.Shape{Name: "Bella", ReferenceURL: "https://shapes.inc/bella-donna/"},
			want:  "shapesinc/bella-donna",
		},
		{
			name:  "deep path takes last segment",
			shape: domain.Shape{Name: "Bella", ReferenceURL: "https://shapes.inc/explore/bella-donna"},
			want:  "shapesinc/bella-donna",
		},
		{
			name:  "no path falls back to hyphenated name",
			shape: domain.Shape{Name: "Test Bot", ReferenceURL: "https://shapes.inc"},
			want:  "shapesinc/Test-Bot",
		},
		{
			name:  "whitespace runs collapse in fallback",
			shape: domain.Shape{Name: "  Test   Bot ", ReferenceURL: ""},
			want:  "shapesinc/Test-Bot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ModelID(tt.shape))
		})
	}
}

func TestBuildRequestTextOnly(t *testing.T) {
	req := require.New(t)
	shape := domain.Shape{Name: "TestBot", ReferenceURL: "https://shapes.inc/testbot"}

	chatReq := BuildRequest(shape, "hello there", "")
	req.Equal("shapesinc/testbot", chatReq.Model)
	req.Len(chatReq.Messages, 1)
	req.Equal("user", chatReq.Messages[0].Role)
	req.Equal("hello there", chatReq.Messages[0].Content)

	payload, err := json.Marshal(chatReq)
	req.NoError(err)
	req.JSONEq(`{
		"model": "shapesinc/testbot",
		"messages": [{"role": "user", "content": "hello there"}]
	}`, string(payload))
}

func TestBuildRequestWithAttachment(t *testing.T) {
	req := require.New(t)
	shape := domain.Shape{Name: "TestBot", ReferenceURL: "https://shapes.inc/testbot"}

	chatReq := BuildRequest(shape, "hi", "data:image/png;base64,AAAA")
	payload, err := json.Marshal(chatReq)
	req.NoError(err)
	req.JSONEq(`{
		"model": "shapesinc/testbot",
		"messages": [{"role": "user", "content": [
			{"type": "text", "text": "hi"},
			{"type": "image_url", "image_url": {"url": "data:image/png;base64,AAAA"}}
		]}]
	}`, string(payload))
}

func TestBuildRequestAttachmentOnly(t *testing.T) {
	req := require.New(t)
	shape := domain.Shape{Name: "TestBot", ReferenceURL: "https://shapes.inc/testbot"}

	for _, text := range []string{"", "   "} {
		chatReq := BuildRequest(shape, text, "data:image/png;base64,AAAA")
		parts, ok := chatReq.Messages[0].Content.([]any)
		req.True(ok)
		req.Len(parts, 1, "blank text must not produce a text part")
		req.IsType(ImagePart{}, parts[0])
	}
}

func TestEncodeAttachment(t *testing.T) {
	req := require.New(t)
	m, err := media.NewManager(t.TempDir())
	req.NoError(err)

	handle, err := m.Acquire("photo.png", pngHeader)
	req.NoError(err)
	defer handle.Release()

	att := &domain.PendingAttachment{FileName: "photo.png", Preview: handle}
	dataURL, err := EncodeAttachment(att)
	req.NoError(err)
	req.True(strings.HasPrefix(dataURL, "data:image/png;base64,"), dataURL)
}

func TestEncodeAttachmentMissingFile(t *testing.T) {
	req := require.New(t)
	m, err := media.NewManager(t.TempDir())
	req.NoError(err)

	handle, err := m.Acquire("photo.png", pngHeader)
	req.NoError(err)
	req.NoError(os.Remove(handle.Path()))

	att := &domain.PendingAttachment{FileName: "photo.png", Preview: handle}
	_, err = EncodeAttachment(att)
	req.Error(err)
}
