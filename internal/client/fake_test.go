package client

import (
	"context"
	"sync"

	"github.com/penguingram/messenger/internal/api"
	"github.com/penguingram/messenger/internal/model"
)

// fakeAPI answers every call with an empty success unless the matching
// func field is set.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	login       func(phone, name string) (*api.LoginResponse, error)
	getChats    func(userID string) (*api.ChatsResponse, error)
	getMessages func(ctx context.Context, userID, chatID string) (*api.MessagesResponse, error)
	sendMessage func(userID, chatID string, d model.Draft) (*api.SendMessageResponse, error)
	createGroup func(userID, name string, memberIDs []string) (*api.CreateChatResponse, error)
	addFavorite func(userID, messageID string) (*api.AckResponse, error)
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) Login(_ context.Context, phone, name string) (*api.LoginResponse, error) {
	f.record("Login")
	if f.login != nil {
		return f.login(phone, name)
	}
	return &api.LoginResponse{Token: "t1", User: &model.User{ID: "5", Name: name}}, nil
}

func (f *fakeAPI) LoginWithGoogle(_ context.Context, _ string) (*api.LoginResponse, error) {
	f.record("LoginWithGoogle")
	return &api.LoginResponse{Token: "g1", User: &model.User{ID: "6", Name: "Google user"}}, nil
}

func (f *fakeAPI) GetChats(_ context.Context, userID string) (*api.ChatsResponse, error) {
	f.record("GetChats")
	if f.getChats != nil {
		return f.getChats(userID)
	}
	return &api.ChatsResponse{Chats: []model.Channel{}}, nil
}

func (f *fakeAPI) CreateChat(_ context.Context, _, contactID string) (*api.CreateChatResponse, error) {
	f.record("CreateChat")
	return &api.CreateChatResponse{ChatID: "chat-" + contactID}, nil
}

func (f *fakeAPI) CreateGroup(_ context.Context, userID, name string, memberIDs []string) (*api.CreateChatResponse, error) {
	f.record("CreateGroup")
	if f.createGroup != nil {
		return f.createGroup(userID, name, memberIDs)
	}
	return &api.CreateChatResponse{ChatID: "g1", GroupName: name}, nil
}

func (f *fakeAPI) GetMessages(ctx context.Context, userID, chatID string) (*api.MessagesResponse, error) {
	f.record("GetMessages")
	if f.getMessages != nil {
		return f.getMessages(ctx, userID, chatID)
	}
	return &api.MessagesResponse{Messages: []model.Message{}}, nil
}

func (f *fakeAPI) SendMessage(_ context.Context, userID, chatID string, d model.Draft) (*api.SendMessageResponse, error) {
	f.record("SendMessage")
	if f.sendMessage != nil {
		return f.sendMessage(userID, chatID, d)
	}
	return &api.SendMessageResponse{Message: &model.Message{ID: "100", SenderID: userID, Text: d.Text, IsOwn: true}}, nil
}

func (f *fakeAPI) GetContacts(context.Context, string) (*api.ContactsResponse, error) {
	f.record("GetContacts")
	return &api.ContactsResponse{Contacts: []model.User{{ID: "7", Name: "Kim", Online: true}}}, nil
}

func (f *fakeAPI) GetFavorites(context.Context, string) (*api.FavoritesResponse, error) {
	f.record("GetFavorites")
	return &api.FavoritesResponse{Favorites: []model.Favorite{{ID: "9"}}}, nil
}

func (f *fakeAPI) AddFavorite(_ context.Context, userID, messageID string) (*api.AckResponse, error) {
	f.record("AddFavorite")
	if f.addFavorite != nil {
		return f.addFavorite(userID, messageID)
	}
	return &api.AckResponse{Success: true}, nil
}

func (f *fakeAPI) RemoveFavorite(context.Context, string, string) (*api.AckResponse, error) {
	f.record("RemoveFavorite")
	return &api.AckResponse{Success: true}, nil
}

func (f *fakeAPI) InitiateCall(_ context.Context, _, target string, t model.CallType) (*api.CallResponse, error) {
	f.record("InitiateCall")
	return &api.CallResponse{Call: &model.Call{ID: "c1", Status: "ringing"}}, nil
}

func (f *fakeAPI) AcceptCall(context.Context, string, string) (*api.CallResponse, error) {
	f.record("AcceptCall")
	return &api.CallResponse{Call: &model.Call{ID: "c1"}}, nil
}

func (f *fakeAPI) EndCall(context.Context, string, string) (*api.CallResponse, error) {
	f.record("EndCall")
	return &api.CallResponse{Error: "call not found"}, nil
}
