package control

import (
	"context"
	"errors"
	"time"

	"github.com/penguingram/messenger/internal/client"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Core is the part of the messenger client exposed over the socket.
type Core interface {
	Snapshot() client.State
	SelectChannel(ctx context.Context, id string) error
	Send(ctx context.Context, text string) error
	Logout(ctx context.Context) error
}

// Targeter reports which channel is being polled.
type Targeter interface {
	Target() string
}

// Service implements ControlServer over a running client.
type Service struct {
	profile   string
	startedAt time.Time
	core      Core
	poller    Targeter
}

// NewService creates a control service. poller may be nil.
func NewService(profile string, core Core, poller Targeter) *Service {
	return &Service{profile: profile, startedAt: time.Now(), core: core, poller: poller}
}

var _ ControlServer = (*Service)(nil)

func (s *Service) Status(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st := s.core.Snapshot()
	fields := map[string]any{
		"profile":        s.profile,
		"state":          string(st.Status),
		"active_channel": st.Active,
		"chats":          len(st.Chats),
		"contacts":       len(st.Contacts),
		"messages":       len(st.Messages),
		"uptime_ms":      time.Since(s.startedAt).Milliseconds(),
	}
	if st.User != nil {
		fields["user_id"] = st.User.ID
		fields["user_name"] = st.User.Name
	}
	if s.poller != nil {
		fields["poll_target"] = s.poller.Target()
	}
	return newStruct(fields)
}

func (s *Service) ListChats(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st := s.core.Snapshot()
	chats := make([]any, 0, len(st.Chats))
	for _, ch := range st.Chats {
		chats = append(chats, map[string]any{
			"id":           ch.ID,
			"title":        ch.Title(),
			"is_group":     ch.IsGroup,
			"is_global":    ch.IsGlobal,
			"last_message": ch.LastMessage,
			"time":         ch.Time,
			"unread":       ch.Unread,
			"active":       ch.ID == st.Active,
		})
	}
	return newStruct(map[string]any{"chats": chats})
}

func (s *Service) SelectChannel(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := stringField(req, "id")
	if id == "" {
		return nil, grpcstatus.Error(codes.InvalidArgument, "id is required")
	}
	if err := s.core.SelectChannel(ctx, id); err != nil {
		return nil, toStatus(err)
	}
	st := s.core.Snapshot()
	return newStruct(map[string]any{"active_channel": st.Active, "messages": len(st.Messages)})
}

func (s *Service) Send(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.core.Send(ctx, stringField(req, "text")); err != nil {
		return nil, toStatus(err)
	}
	st := s.core.Snapshot()
	var id string
	if n := len(st.Messages); n > 0 {
		id = st.Messages[n-1].ID
	}
	return newStruct(map[string]any{"sent": true, "message_id": id})
}

func (s *Service) Logout(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.core.Logout(ctx); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, grpcstatus.Errorf(codes.Internal, "encode response: %v", err)
	}
	return st, nil
}

func stringField(st *structpb.Struct, key string) string {
	if st == nil {
		return ""
	}
	return st.GetFields()[key].GetStringValue()
}

func toStatus(err error) error {
	var verr *client.ValidationError
	if errors.As(err, &verr) {
		return grpcstatus.Error(codes.InvalidArgument, verr.Error())
	}
	var rerr *client.RemoteError
	if errors.As(err, &rerr) {
		return grpcstatus.Error(codes.FailedPrecondition, rerr.Error())
	}
	return grpcstatus.Error(codes.Unavailable, err.Error())
}
