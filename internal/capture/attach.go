package capture

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/penguingram/messenger/internal/model"
)

// Attacher sends local files as media messages.
type Attacher struct {
	dispatch Dispatcher
	reporter Reporter
}

// NewAttacher creates an Attacher.
func NewAttacher(dispatch Dispatcher, r Reporter) *Attacher {
	return &Attacher{dispatch: dispatch, reporter: r}
}

// SendFile reads path whole, encodes it as a data URI and sends it with
// the file name as text.
func (a *Attacher) SendFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		a.reporter.Error("Could not read the file")
		return fmt.Errorf("read attachment: %w", err)
	}
	mimeType := DetectMime(path, data)
	draft := model.Draft{
		Text:      filepath.Base(path),
		MediaURL:  DataURI(mimeType, data),
		MediaType: Classify(mimeType),
	}
	return a.dispatch.SendDraft(ctx, draft)
}

// DetectMime guesses the MIME type from the extension, then the content.
func DetectMime(path string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		if mt, _, err := mime.ParseMediaType(t); err == nil {
			return mt
		}
		return t
	}
	t := http.DetectContentType(data)
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	return t
}

// Classify maps a MIME type to a message media type.
func Classify(mimeType string) model.MediaType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return model.MediaImage
	case strings.HasPrefix(mimeType, "video/"):
		return model.MediaVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return model.MediaAudio
	default:
		return model.MediaFile
	}
}
