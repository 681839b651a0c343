package classify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"shapechat/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		kind      Kind
		url       string
		remainder string
	}{
		{
			name:      "png with surrounding text",
			input:     "Check this out: https://files.shapes.inc/photo.png",
			kind:      KindImage,
			url:       "https://files.shapes.inc/photo.png",
			remainder: "Check this out:",
		},
		{
			name:      "bare jpg",
			input:     "https://files.shapes.inc/photo.jpg",
			kind:      KindImage,
			url:       "https://files.shapes.inc/photo.jpg",
			remainder: "",
		},
		{
			name:      "jpeg",
			input:     "https://files.shapes.inc/a.jpeg",
			kind:      KindImage,
			url:       "https://files.shapes.inc/a.jpeg",
			remainder: "",
		},
		{
			name:      "gif with leading and trailing text",
			input:     "Look: https://files.shapes.inc/image.gif please",
			kind:      KindImage,
			url:       "https://files.shapes.inc/image.gif",
			remainder: "Look:  please",
		},
		{
			name:      "uppercase image extension matches",
			input:     "https://files.shapes.inc/IMAGE.PNG",
			kind:      KindImage,
			url:       "https://files.shapes.inc/IMAGE.PNG",
			remainder: "",
		},
		{
			name:      "mp3 audio",
			input:     "Listen: https://files.shapes.inc/sound.mp3",
			kind:      KindAudio,
			url:       "https://files.shapes.inc/sound.mp3",
			remainder: "Listen:",
		},
		{
			name:      "uppercase MP3 does not match audio",
			input:     "https://files.shapes.inc/sound.MP3",
			kind:      KindNone,
			remainder: "https://files.shapes.inc/sound.MP3",
		},
		{
			name:      "other host never matches",
			input:     "https://otherdomain.com/image.png",
			kind:      KindNone,
			remainder: "https://otherdomain.com/image.png",
		},
		{
			name:      "non-media extension",
			input:     "Just text https://files.shapes.inc/document.pdf",
			kind:      KindNone,
			remainder: "Just text https://files.shapes.inc/document.pdf",
		},
		{
			name:      "extension without dot",
			input:     "https://files.shapes.inc/imagepng",
			kind:      KindNone,
			remainder: "https://files.shapes.inc/imagepng",
		},
		{
			name:      "plain text",
			input:     "Hello world",
			kind:      KindNone,
			remainder: "Hello world",
		},
		{
			name:      "image wins over audio",
			input:     "https://files.shapes.inc/a.mp3 https://files.shapes.inc/b.png",
			kind:      KindImage,
			url:       "https://files.shapes.inc/b.png",
			remainder: "https://files.shapes.inc/a.mp3",
		},
		{
			name:      "first image match wins",
			input:     "https://files.shapes.inc/a.png https://files.shapes.inc/b.png",
			kind:      KindImage,
			url:       "https://files.shapes.inc/a.png",
			remainder: "https://files.shapes.inc/b.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			c := Classify(tt.input)
			req.Equal(tt.kind, c.Kind)
			req.Equal(tt.url, c.URL)
			req.Equal(tt.remainder, c.Remainder)
		})
	}
}

func TestForMessageSenderAsymmetry(t *testing.T) {
	req := require.New(t)
	content := "My image: https://files.shapes.inc/user.png"

	fromUser := ForMessage(domain.Message{Content: content, Sender: domain.SenderUser})
	req.Equal(KindNone, fromUser.Kind)
	req.Equal(content, fromUser.Remainder)

	fromAgent := ForMessage(domain.Message{Content: content, Sender: domain.SenderAgent})
	req.Equal(KindImage, fromAgent.Kind)
	req.Equal("https://files.shapes.inc/user.png", fromAgent.URL)
}
