package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/go-telegram/bot"
)

// ErrFileTooLarge is returned when a download exceeds the caller's limit.
var ErrFileTooLarge = errors.New("file too large")

// DownloadFile downloads a Telegram file by ID, refusing anything larger
// than maxBytes. Returns the file bytes and the base name Telegram stores
// it under.
func DownloadFile(ctx context.Context, b *bot.Bot, fileID string, maxBytes int64) ([]byte, string, error) {
	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, "", fmt.Errorf("get file: %w", err)
	}
	if file.FileSize > maxBytes {
		return nil, "", ErrFileTooLarge
	}

	fileURL := b.FileDownloadLink(file)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download file: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read file data: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, "", ErrFileTooLarge
	}

	return data, path.Base(file.FilePath), nil
}
