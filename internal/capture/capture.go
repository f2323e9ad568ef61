package capture

import (
	"context"
	"encoding/base64"

	"github.com/penguingram/messenger/internal/model"
)

// Dispatcher sends a finished draft to the active channel.
type Dispatcher interface {
	SendDraft(ctx context.Context, draft model.Draft) error
}

// Reporter shows failures to the user.
type Reporter interface {
	Error(description string)
}

// Signaler forwards call lifecycle changes to the backend.
type Signaler interface {
	InitiateCall(ctx context.Context, peer model.User, callType model.CallType) (model.Call, error)
	AcceptCall(ctx context.Context, callID string) error
	EndCall(ctx context.Context, callID string) error
}

// DataURI encodes data as a base64 data URI.
func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
