// Package classify decides how a stored message should be presented by
// detecting embedded media URLs from the trusted files host. It never
// mutates stored content; classification happens at render time only.
package classify

import (
	"regexp"
	"strings"

	"shapechat/internal/domain"
)

// Kind is the media classification of a message body.
type Kind int

const (
	KindNone Kind = iota
	KindImage
	KindAudio
)

// MediaHost is the only host whose embedded URLs are rendered as media.
const MediaHost = "files.shapes.inc"

// Image extensions match case-insensitively while audio matches .mp3
// only, case-sensitively. The asymmetry is deliberate and pinned by
// tests; do not "fix" it.
var (
	imagePattern = regexp.MustCompile(`https://files\.shapes\.inc/\S+\.(?i:png|jpg|jpeg|gif)`)
	audioPattern = regexp.MustCompile(`https://files\.shapes\.inc/\S+\.mp3`)
)

// Classification is the tagged result of matching a message body against
// the media patterns.
type Classification struct {
	Kind Kind
	// URL is the matched media URL; empty when Kind is KindNone.
	URL string
	// Remainder is the text with the matched URL removed and surrounding
	// whitespace trimmed, or the full text when nothing matched.
	Remainder string
}

// Classify finds the first embedded media URL in text. The image matcher
// runs first; when it matches, audio is not evaluated.
func Classify(text string) Classification {
	if url := imagePattern.FindString(text); url != "" {
		return Classification{Kind: KindImage, URL: url, Remainder: strip(text, url)}
	}
	if url := audioPattern.FindString(text); url != "" {
		return Classification{Kind: KindAudio, URL: url, Remainder: strip(text, url)}
	}
	return Classification{Kind: KindNone, Remainder: text}
}

// ForMessage classifies a stored message for rendering. Only agent-sent
// content activates media rendering: the remote agent is trusted to emit
// media references, user-typed URLs stay plain text.
func ForMessage(msg domain.Message) Classification {
	if msg.Sender != domain.SenderAgent {
		return Classification{Kind: KindNone, Remainder: msg.Content}
	}
	return Classify(msg.Content)
}

func strip(text, url string) string {
	return strings.TrimSpace(strings.Replace(text, url, "", 1))
}
