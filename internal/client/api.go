package client

import (
	"context"

	"github.com/penguingram/messenger/internal/api"
	"github.com/penguingram/messenger/internal/model"
)

// API is the backend surface the client depends on. *api.Client
// implements it.
type API interface {
	Login(ctx context.Context, phone, name string) (*api.LoginResponse, error)
	LoginWithGoogle(ctx context.Context, googleToken string) (*api.LoginResponse, error)
	GetChats(ctx context.Context, userID string) (*api.ChatsResponse, error)
	CreateChat(ctx context.Context, userID, contactID string) (*api.CreateChatResponse, error)
	CreateGroup(ctx context.Context, userID, name string, memberIDs []string) (*api.CreateChatResponse, error)
	GetMessages(ctx context.Context, userID, chatID string) (*api.MessagesResponse, error)
	SendMessage(ctx context.Context, userID, chatID string, draft model.Draft) (*api.SendMessageResponse, error)
	GetContacts(ctx context.Context, userID string) (*api.ContactsResponse, error)
	GetFavorites(ctx context.Context, userID string) (*api.FavoritesResponse, error)
	AddFavorite(ctx context.Context, userID, messageID string) (*api.AckResponse, error)
	RemoveFavorite(ctx context.Context, userID, messageID string) (*api.AckResponse, error)
	InitiateCall(ctx context.Context, userID, targetUserID string, callType model.CallType) (*api.CallResponse, error)
	AcceptCall(ctx context.Context, userID, callID string) (*api.CallResponse, error)
	EndCall(ctx context.Context, userID, callID string) (*api.CallResponse, error)
}

var _ API = (*api.Client)(nil)
