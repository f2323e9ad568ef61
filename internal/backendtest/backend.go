// Package backendtest provides an in-memory messenger backend for tests.
// It serves the same HTTP contract as the production functions, including
// integer ids and the X-User-Id identity header.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// GlobalChatID is the id of the seeded broadcast channel.
const GlobalChatID = 1

// Request is one request observed by the backend.
type Request struct {
	Method  string
	Path    string
	Query   string
	UserIDs []string // every X-User-Id value sent
}

type user struct {
	ID     int    `json:"id"`
	Phone  string `json:"phone"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Online bool   `json:"online"`
}

type chat struct {
	id       int
	name     string
	isGroup  bool
	isGlobal bool
	members  map[int]bool
}

type message struct {
	ID            int    `json:"id"`
	ChatID        int    `json:"chatId"`
	SenderID      int    `json:"senderId"`
	SenderName    string `json:"senderName"`
	SenderAvatar  string `json:"senderAvatar"`
	Text          string `json:"text"`
	MediaURL      string `json:"mediaUrl,omitempty"`
	MediaType     string `json:"mediaType,omitempty"`
	IsVoice       bool   `json:"isVoice"`
	VoiceDuration int    `json:"voiceDuration,omitempty"`
	Time          string `json:"time"`
	IsOwn         bool   `json:"isOwn"`
}

// Backend is a fake messenger backend.
type Backend struct {
	mu        sync.Mutex
	users     map[int]*user
	chats     map[int]*chat
	messages  []message
	favorites map[int]map[int]time.Time // user -> message -> starred at
	calls     map[string]string         // call id -> status
	requests  []Request
	failing   map[string]string
	nextUser  int
	nextChat  int
	nextMsg   int
	now       func() time.Time
}

// New returns a backend seeded with the global channel.
func New() *Backend {
	return &Backend{
		users:     make(map[int]*user),
		chats:     map[int]*chat{GlobalChatID: {id: GlobalChatID, name: "Global", isGroup: true, isGlobal: true}},
		favorites: make(map[int]map[int]time.Time),
		calls:     make(map[string]string),
		failing:   make(map[string]string),
		nextUser:  1,
		nextChat:  GlobalChatID + 1,
		nextMsg:   1,
		now:       time.Now,
	}
}

// Start serves the backend on a local listener closed when t ends.
func (b *Backend) Start(t interface{ Cleanup(func()) }) *httptest.Server {
	srv := httptest.NewServer(b.Router())
	t.Cleanup(srv.Close)
	return srv
}

// Router returns the HTTP handler.
func (b *Backend) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)

	r.Post("/auth", b.login)
	r.Get("/chats", b.listChats)
	r.Post("/chats", b.createChat)
	r.Get("/messages", b.listMessages)
	r.Post("/messages", b.sendMessage)
	r.Get("/contacts", b.listContacts)
	r.Get("/favorites", b.listFavorites)
	r.Post("/favorites", b.addFavorite)
	r.Delete("/favorites", b.removeFavorite)
	r.Post("/calls", b.initiateCall)
	r.Post("/calls/accept", b.updateCall("accepted"))
	r.Post("/calls/end", b.updateCall("ended"))
	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.RawQuery,
			UserIDs: r.Header.Values("X-User-Id"),
		})
		msg, failing := b.failing[r.URL.Path]
		b.mu.Unlock()

		if failing {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Fail makes every request to path answer with {"error": msg}. An empty
// msg clears the failure.
func (b *Backend) Fail(path, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if msg == "" {
		delete(b.failing, path)
		return
	}
	b.failing[path] = msg
}

// Requests returns a copy of every observed request.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Count returns how many requests matched method and path.
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// AddUser registers a user and returns its id.
func (b *Backend) AddUser(phone, name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(phone, name).ID
}

func (b *Backend) addUserLocked(phone, name string) *user {
	u := &user{ID: b.nextUser, Phone: phone, Name: name, Avatar: "🐧", Online: true}
	b.nextUser++
	b.users[u.ID] = u
	return u
}

// AddChat creates a chat with the given members and returns its id.
func (b *Backend) AddChat(name string, isGroup bool, members ...int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addChatLocked(name, isGroup, members...)
}

func (b *Backend) addChatLocked(name string, isGroup bool, members ...int) int {
	c := &chat{id: b.nextChat, name: name, isGroup: isGroup, members: make(map[int]bool)}
	b.nextChat++
	for _, m := range members {
		c.members[m] = true
	}
	b.chats[c.id] = c
	return c.id
}

// AddMessage stores a message and returns its id.
func (b *Backend) AddMessage(chatID, senderID int, text string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addMessageLocked(message{ChatID: chatID, SenderID: senderID, Text: text}).ID
}

func (b *Backend) addMessageLocked(m message) message {
	m.ID = b.nextMsg
	b.nextMsg++
	if u, ok := b.users[m.SenderID]; ok {
		m.SenderName, m.SenderAvatar = u.Name, u.Avatar
	}
	m.Time = b.now().Format("15:04")
	b.messages = append(b.messages, m)
	return m
}

// Messages returns the ids of the messages stored for chatID.
func (b *Backend) Messages(chatID int) []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	var ids []int
	for _, m := range b.messages {
		if m.ChatID == chatID {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// CallStatus returns the status of a call, or "" when unknown.
func (b *Backend) CallStatus(id string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[id]
}

func (b *Backend) caller(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.Header.Get("X-User-Id"))
	if err != nil {
		return 0, false
	}
	_, ok := b.users[id]
	return id, ok
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone       string `json:"phone"`
		Name        string `json:"name"`
		GoogleToken string `json:"google_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if req.GoogleToken != "" {
		req.Phone, req.Name = "google:"+req.GoogleToken, "Google user"
	}
	if req.Phone == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phone required"})
		return
	}

	b.mu.Lock()
	var u *user
	for _, existing := range b.users {
		if existing.Phone == req.Phone {
			u = existing
			break
		}
	}
	if u == nil {
		u = b.addUserLocked(req.Phone, req.Name)
	}
	u.Online = true
	resp := map[string]any{"user": *u, "token": "user_" + strconv.Itoa(u.ID)}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (b *Backend) listChats(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	me, ok := b.caller(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown user"})
		return
	}

	chats := make([]map[string]any, 0, len(b.chats))
	for _, c := range b.sortedChats() {
		if !c.isGlobal && !c.members[me] {
			continue
		}
		entry := map[string]any{
			"id":       c.id,
			"isGroup":  c.isGroup,
			"isGlobal": c.isGlobal,
			"unread":   0,
		}
		if c.name != "" {
			entry["name"] = c.name
		}
		if !c.isGroup {
			for id := range c.members {
				if id == me {
					continue
				}
				if peer, ok := b.users[id]; ok {
					entry["other_user_name"] = peer.Name
					entry["user"] = peer
				}
			}
		}
		for i := len(b.messages) - 1; i >= 0; i-- {
			if b.messages[i].ChatID == c.id {
				entry["lastMessage"] = b.messages[i].Text
				entry["time"] = b.messages[i].Time
				break
			}
		}
		chats = append(chats, entry)
	}
	writeJSON(w, http.StatusOK, map[string]any{"chats": chats})
}

func (b *Backend) sortedChats() []*chat {
	out := make([]*chat, 0, len(b.chats))
	for _, c := range b.chats {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (b *Backend) createChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ContactID string `json:"contactId"`
		IsGroup   bool   `json:"isGroup"`
		GroupName string `json:"groupName"`
		MemberIDs []int  `json:"memberIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	me, ok := b.caller(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown user"})
		return
	}

	if req.IsGroup {
		id := b.addChatLocked(req.GroupName, true, append(req.MemberIDs, me)...)
		writeJSON(w, http.StatusOK, map[string]any{"chatId": id, "groupName": req.GroupName})
		return
	}

	contact, err := strconv.Atoi(req.ContactID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid contactId"})
		return
	}
	for _, c := range b.sortedChats() {
		if !c.isGroup && c.members[me] && c.members[contact] {
			writeJSON(w, http.StatusOK, map[string]any{"chatId": c.id})
			return
		}
	}
	id := b.addChatLocked("", false, me, contact)
	writeJSON(w, http.StatusOK, map[string]any{"chatId": id})
}

func (b *Backend) listMessages(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.Atoi(r.URL.Query().Get("chat_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "chat_id required"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	me, _ := b.caller(r)
	out := make([]message, 0)
	for _, m := range b.messages {
		if m.ChatID == chatID {
			m.IsOwn = m.SenderID == me
			out = append(out, m)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": out})
}

func (b *Backend) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChatID        string `json:"chatId"`
		Text          string `json:"text"`
		IsVoice       bool   `json:"isVoice"`
		VoiceDuration int    `json:"voiceDuration"`
		MediaURL      string `json:"mediaUrl"`
		MediaType     string `json:"mediaType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	chatID, err := strconv.Atoi(req.ChatID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid chatId"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	me, ok := b.caller(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown user"})
		return
	}
	if _, ok := b.chats[chatID]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "chat not found"})
		return
	}
	m := b.addMessageLocked(message{
		ChatID:        chatID,
		SenderID:      me,
		Text:          req.Text,
		IsVoice:       req.IsVoice,
		VoiceDuration: req.VoiceDuration,
		MediaURL:      req.MediaURL,
		MediaType:     req.MediaType,
	})
	m.IsOwn = true
	writeJSON(w, http.StatusOK, map[string]any{"message": m})
}

func (b *Backend) listContacts(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	me, _ := b.caller(r)
	contacts := make([]user, 0, len(b.users))
	for _, u := range b.users {
		if u.ID != me {
			contacts = append(contacts, *u)
		}
	}
	sort.Slice(contacts, func(i, j int) bool { return contacts[i].ID < contacts[j].ID })
	writeJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
}

func (b *Backend) listFavorites(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	me, ok := b.caller(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown user"})
		return
	}
	out := make([]map[string]any, 0)
	for _, m := range b.messages {
		at, starred := b.favorites[me][m.ID]
		if !starred {
			continue
		}
		out = append(out, map[string]any{
			"id":            m.ID,
			"chatId":        m.ChatID,
			"senderId":      m.SenderID,
			"senderName":    m.SenderName,
			"senderAvatar":  m.SenderAvatar,
			"text":          m.Text,
			"mediaUrl":      m.MediaURL,
			"mediaType":     m.MediaType,
			"isVoice":       m.IsVoice,
			"voiceDuration": m.VoiceDuration,
			"time":          m.Time,
			"favoritedAt":   at.Format("02.01.2006 15:04"),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"favorites": out})
}

func (b *Backend) addFavorite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MessageID string `json:"messageId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	id, err := strconv.Atoi(req.MessageID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid messageId"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	me, ok := b.caller(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown user"})
		return
	}
	if b.favorites[me] == nil {
		b.favorites[me] = make(map[int]time.Time)
	}
	if _, exists := b.favorites[me][id]; !exists {
		b.favorites[me][id] = b.now()
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (b *Backend) removeFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("message_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message_id required"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	me, ok := b.caller(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown user"})
		return
	}
	delete(b.favorites[me], id)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (b *Backend) initiateCall(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TargetUserID string `json:"targetUserId"`
		CallType     string `json:"callType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	target, err := strconv.Atoi(req.TargetUserID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid targetUserId"})
		return
	}
	peer, ok := b.users[target]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	id := uuid.NewString()
	b.calls[id] = "ringing"
	writeJSON(w, http.StatusOK, map[string]any{
		"callId":   id,
		"callType": req.CallType,
		"status":   "ringing",
		"peer":     *peer,
	})
}

func (b *Backend) updateCall(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CallID string `json:"callId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.calls[req.CallID]; !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "call not found"})
			return
		}
		b.calls[req.CallID] = status
		writeJSON(w, http.StatusOK, map[string]any{"callId": req.CallID, "status": status})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
