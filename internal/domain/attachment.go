package domain

import "shapechat/internal/media"

// PendingAttachment is the single transient attachment of a compose
// session: the user-selected file spooled locally plus its preview
// handle. It is owned exclusively by the compose session until ownership
// transfers on send.
type PendingAttachment struct {
	FileName string
	Preview  *media.Handle
}
