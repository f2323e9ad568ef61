package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/penguingram/messenger/internal/bus"
	"github.com/penguingram/messenger/internal/capture"
	"github.com/penguingram/messenger/internal/client"
	"github.com/penguingram/messenger/internal/logging"
	"github.com/penguingram/messenger/internal/model"
	"github.com/penguingram/messenger/internal/notify"
	"github.com/penguingram/messenger/internal/session"
	"github.com/penguingram/messenger/internal/status"
	"github.com/penguingram/messenger/internal/tui/keys"
	"github.com/penguingram/messenger/internal/tui/ui"
	"github.com/penguingram/messenger/internal/tui/views"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// Page names.
const (
	pageLogin     = "login"
	pageChats     = "chats"
	pageContacts  = "contacts"
	pageFavorites = "favorites"
	pageThread    = "thread"
	pageSettings  = "settings"
	pageAdmin     = "admin"
	pageProfile   = "profile"
	pageHelp      = "help"
	pageCall      = "call"
)

const promptHeight = 3

// Deps are the running client components the TUI drives.
type Deps struct {
	Profile         string
	GlobalChannelID string
	Client          *client.Client
	Recorder        *capture.Recorder
	Attacher        *capture.Attacher
	Caller          *capture.Caller
	Notifier        *notify.Notifier
	Bus             *bus.Bus
	Logger          *zap.Logger
}

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	deps     Deps
	log      *zap.Logger
	theme    *ui.Theme
	registry *keys.Registry

	body   *tview.Flex
	pages  *ui.Pages
	prompt *ui.Prompt
	info   *ui.SessionInfo
	menu   *ui.Menu
	logo   *ui.Logo
	crumbs *ui.Crumbs
	flash  *ui.FlashBar

	login     *views.LoginView
	chats     *views.ChatList
	contacts  *views.ContactList
	favorites *views.FavoriteList
	thread    *views.MessageThread
	settings  *views.SettingsView
	admin     *views.AdminView
	profile   *views.ProfileView
	help      *views.HelpView
	call      *views.CallView

	components map[string]ui.Component
	promptOpen bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI over d.
func NewApp(d Deps) *App {
	ctx, cancel := context.WithCancel(context.Background())
	st := d.Client.Settings()
	theme := ui.ThemeFor(st.DarkMode)

	a := &App{
		app:       tview.NewApplication(),
		deps:      d,
		log:       logging.OrNop(d.Logger).Named("tui"),
		theme:     theme,
		registry:  keys.NewRegistry(),
		pages:     ui.NewPages(),
		prompt:    ui.NewPrompt(theme),
		info:      ui.NewSessionInfo(theme),
		menu:      ui.NewMenu(theme),
		logo:      ui.NewLogo(theme),
		crumbs:    ui.NewCrumbs(theme),
		flash:     ui.NewFlashBar(theme),
		login:     views.NewLoginView(theme),
		chats:     views.NewChatList(theme),
		contacts:  views.NewContactList(theme),
		favorites: views.NewFavoriteList(theme),
		thread:    views.NewMessageThread(theme),
		settings:  views.NewSettingsView(theme),
		admin:     views.NewAdminView(theme),
		profile:   views.NewProfileView(theme),
		help:      views.NewHelpView(theme),
		call:      views.NewCallView(theme),
		ctx:       ctx,
		cancel:    cancel,
	}
	a.settings.Load(st)
	a.thread.SetCompact(st.Compact)

	a.setupLayout()
	a.setupBindings()
	a.setupCallbacks()
	return a
}

func (a *App) setupLayout() {
	a.components = map[string]ui.Component{
		pageLogin:     a.login,
		pageChats:     a.chats,
		pageContacts:  a.contacts,
		pageFavorites: a.favorites,
		pageThread:    a.thread,
		pageSettings:  a.settings,
		pageAdmin:     a.admin,
		pageProfile:   a.profile,
		pageHelp:      a.help,
		pageCall:      a.call,
	}
	for name, c := range a.components {
		a.pages.AddPage(name, c.(tview.Primitive), true, false)
	}

	header := tview.NewFlex().
		AddItem(a.info, 34, 0, false).
		AddItem(a.menu, 0, 1, false).
		AddItem(a.logo, 14, 0, false)

	a.body = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 7, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.flash, 1, 0, false)

	a.pages.SetOnChange(func(stack []string) {
		names := make([]string, 0, len(stack))
		for _, s := range stack {
			names = append(names, a.components[s].Name())
		}
		a.crumbs.Update(names)
		a.menu.Update(a.components[stack[len(stack)-1]].Hints())
	})

	a.app.SetRoot(a.body, true)
	a.app.SetInputCapture(a.capture)
}

func (a *App) setupBindings() {
	key := func(r rune, desc string, fn func()) *keys.Action {
		return &keys.Action{Key: tcell.KeyRune, Rune: r, Description: desc, Handler: fn}
	}

	a.registry.AddGlobal(key(':', "command", func() { a.openPrompt(ui.PromptCommand) }))
	a.registry.AddGlobal(key('?', "help", func() { a.push(pageHelp) }))
	a.registry.AddGlobal(key('p', "profile", func() { a.push(pageProfile) }))
	a.registry.AddGlobal(key('S', "settings", func() { a.push(pageSettings) }))
	a.registry.AddGlobal(&keys.Action{Key: tcell.KeyEscape, Description: "back", Handler: a.back})

	a.registry.AddView(pageChats, key('/', "filter", func() { a.openPrompt(ui.PromptFilter) }))
	a.registry.AddView(pageChats, key('c', "contacts", func() { a.push(pageContacts) }))
	a.registry.AddView(pageChats, key('f', "favorites", a.showFavorites))
	a.registry.AddView(pageChats, key('g', "global", func() { a.openChat(a.deps.GlobalChannelID) }))
	for n := '1'; n <= '9'; n++ {
		idx := int(n - '0')
		a.registry.AddView(pageChats, key(n, "jump", func() {
			if id := a.chats.ChatByIndex(idx); id != "" {
				a.openChat(id)
			}
		}))
	}

	a.registry.AddView(pageThread, key('i', "compose", func() { a.app.SetFocus(a.thread.Composer()) }))
	a.registry.AddView(pageThread, key('r', "record", a.toggleRecording))
	a.registry.AddView(pageThread, key('s', "star last", a.starLast))
	a.registry.AddView(pageThread, key('R', "retry", a.retry))

	a.registry.AddView(pageContacts, key('v', "voice call", func() { a.callSelected(model.VoiceCall) }))
	a.registry.AddView(pageContacts, key('V', "video call", func() { a.callSelected(model.VideoCall) }))

	a.registry.AddView(pageFavorites, key('x', "unstar", a.unstarSelected))
	a.registry.AddView(pageFavorites, key('r', "reload", a.showFavorites))
}

func (a *App) setupCallbacks() {
	a.login.SetOnLogin(func(phone, name string) {
		a.login.ShowMessage("Logging in...")
		a.run(func(ctx context.Context) error { return a.deps.Client.Login(ctx, phone, name) })
	})
	a.login.SetOnToken(func(token string) {
		a.login.ShowMessage("Logging in with Google...")
		a.run(func(ctx context.Context) error { return a.deps.Client.LoginWithGoogle(ctx, token) })
	})

	a.chats.SetSelectedFunc(func(int, int) {
		if id := a.chats.SelectedChat(); id != "" {
			a.openChat(id)
		}
	})
	a.contacts.SetSelectedFunc(func(int, int) {
		u, ok := a.contacts.Selected()
		if !ok {
			return
		}
		a.run(func(ctx context.Context) error {
			id, err := a.deps.Client.CreateChat(ctx, u.ID)
			if err == nil {
				a.app.QueueUpdateDraw(func() { a.showThread(id) })
			}
			return err
		})
	})
	a.favorites.SetSelectedFunc(func(int, int) {
		if f, ok := a.favorites.Selected(); ok && f.ChatID != "" {
			a.openChat(f.ChatID)
		}
	})

	a.thread.SetOnSend(func(text string) {
		if strings.HasPrefix(text, ":") {
			a.runCommand(ParseCommand(text))
			return
		}
		a.run(func(ctx context.Context) error { return a.deps.Client.Send(ctx, text) })
	})

	a.settings.SetOnChange(func(st session.Settings) {
		a.deps.Client.UpdateSettings(st)
		a.applySettings(st)
	})

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.closePrompt()
		switch mode {
		case ui.PromptFilter:
			a.chats.SetFilter(strings.TrimSpace(text))
		case ui.PromptCommand:
			if strings.TrimSpace(text) != "" {
				a.runCommand(ParseCommand(text))
			}
		}
	})
	a.prompt.SetOnCancel(a.closePrompt)

	a.call.SetOnEnd(func() {
		a.run(func(ctx context.Context) error {
			err := a.deps.Caller.End(ctx)
			if errors.Is(err, capture.ErrNoCall) {
				return nil
			}
			return err
		})
	})
	a.call.SetOnDismiss(func() {
		go a.deps.Caller.Dismiss()
	})
}

// capture routes key events: text inputs keep their keys, everything else
// goes through the registry.
func (a *App) capture(ev *tcell.EventKey) *tcell.EventKey {
	page := a.pages.Current()
	if a.promptOpen || page == pageLogin || page == pageCall {
		return ev
	}

	switch focused := a.app.GetFocus().(type) {
	case *tview.InputField:
		if ev.Key() == tcell.KeyEscape && focused == a.thread.Composer() {
			a.app.SetFocus(a.thread.Messages())
			return nil
		}
		return ev
	case *tview.Checkbox, *tview.Button:
		if ev.Key() != tcell.KeyEscape {
			return ev
		}
	}

	if a.registry.HandleEvent(page, ev) {
		return nil
	}
	return ev
}

// run executes fn off the UI goroutine. Failures are already reported to
// the user through the notifier.
func (a *App) run(fn func(ctx context.Context) error) {
	go func() {
		if err := fn(a.ctx); err != nil {
			a.log.Debug("action failed", zap.Error(err))
		}
	}()
}

func (a *App) push(page string) {
	a.pages.Push(page)
	a.focusPage(page)
	a.refresh()
}

func (a *App) back() {
	switch a.pages.Current() {
	case pageChats:
		if a.chats.Filter() != "" {
			a.chats.SetFilter("")
		}
		return
	case pageThread:
		if a.app.GetFocus() != a.thread.Messages() {
			a.app.SetFocus(a.thread.Messages())
			return
		}
	}
	if a.pages.Pop() != "" {
		a.focusPage(a.pages.Current())
	}
}

func (a *App) focusPage(page string) {
	switch page {
	case pageThread:
		a.app.SetFocus(a.thread.Messages())
	case pageLogin:
		a.app.SetFocus(a.login.Form())
	default:
		a.app.SetFocus(a.components[page].(tview.Primitive))
	}
}

func (a *App) openPrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	if mode == ui.PromptFilter {
		a.prompt.SetText(a.chats.Filter())
	}
	a.promptOpen = true
	a.body.ResizeItem(a.prompt, promptHeight, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) closePrompt() {
	a.promptOpen = false
	a.body.ResizeItem(a.prompt, 0, 0)
	a.focusPage(a.pages.Current())
}

// openChat selects id and shows its thread.
func (a *App) openChat(id string) {
	if id == "" {
		return
	}
	a.showThread(id)
	a.run(func(ctx context.Context) error { return a.deps.Client.SelectChannel(ctx, id) })
}

func (a *App) showThread(id string) {
	a.thread.SetChatName(a.channelTitle(id))
	if a.pages.Current() != pageChats {
		a.pages.Reset(pageChats)
	}
	a.push(pageThread)
}

func (a *App) channelTitle(id string) string {
	if id == a.deps.GlobalChannelID {
		return "Global"
	}
	for _, ch := range a.deps.Client.Snapshot().Chats {
		if ch.ID == id {
			return ch.Title()
		}
	}
	return "Chat"
}

func (a *App) showFavorites() {
	a.push(pageFavorites)
	a.run(a.deps.Client.LoadFavorites)
}

func (a *App) toggleRecording() {
	if a.deps.Recorder.Active() {
		a.run(a.deps.Recorder.Stop)
		return
	}
	a.run(a.deps.Recorder.Start)
}

func (a *App) starLast() {
	msgs := a.deps.Client.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if !msgs[i].Pending() {
			id := msgs[i].ID
			a.run(func(ctx context.Context) error { return a.deps.Client.AddFavorite(ctx, id) })
			return
		}
	}
	a.deps.Notifier.Info("Favorites", "No message to star")
}

func (a *App) retry() {
	id := a.deps.Client.LastFailed()
	if id == "" {
		a.deps.Notifier.Info("Retry", "No failed messages")
		return
	}
	a.run(func(ctx context.Context) error { return a.deps.Client.RetryFailed(ctx, id) })
}

func (a *App) unstarSelected() {
	f, ok := a.favorites.Selected()
	if !ok {
		return
	}
	a.run(func(ctx context.Context) error { return a.deps.Client.RemoveFavorite(ctx, f.ID) })
}

// closeCall removes the call dialog if it is showing.
func (a *App) closeCall() {
	if a.pages.Current() == pageCall {
		a.pages.Pop()
		a.focusPage(a.pages.Current())
	}
}

func (a *App) callSelected(t model.CallType) {
	if u, ok := a.contacts.Selected(); ok {
		a.startCall(u, t)
	}
}

func (a *App) startCall(peer model.User, t model.CallType) {
	a.run(func(ctx context.Context) error {
		err := a.deps.Caller.Start(ctx, peer, t)
		if errors.Is(err, capture.ErrCallInProgress) {
			a.deps.Notifier.Info("Call", "A call is already in progress")
		}
		return err
	})
}

// callPeer resolves the target of :call. An explicit id wins, then the
// other side of the open direct chat.
func (a *App) callPeer(arg string) (model.User, bool) {
	st := a.deps.Client.Snapshot()
	if arg != "" {
		for _, u := range st.Contacts {
			if u.ID == arg {
				return u, true
			}
		}
		return model.User{ID: arg}, true
	}
	for _, ch := range st.Chats {
		if ch.ID == st.Active && ch.User != nil {
			return *ch.User, true
		}
	}
	return model.User{}, false
}

func (a *App) runCommand(cmd Command) {
	if err := cmd.Validate(); err != nil {
		a.deps.Notifier.Error(err.Error())
		return
	}
	c := a.deps.Client

	switch cmd.Name {
	case "attach":
		a.run(func(ctx context.Context) error { return a.deps.Attacher.SendFile(ctx, cmd.Args) })
	case "voice":
		a.run(func(ctx context.Context) error {
			err := a.deps.Recorder.Start(ctx)
			if errors.Is(err, capture.ErrAlreadyRecording) {
				a.deps.Notifier.Info("Voice", "Already recording")
			}
			return err
		})
	case "stop":
		a.run(func(ctx context.Context) error {
			err := a.deps.Recorder.Stop(ctx)
			if errors.Is(err, capture.ErrNotRecording) {
				a.deps.Notifier.Info("Voice", "Not recording")
			}
			return err
		})
	case "cancel":
		a.deps.Recorder.Cancel()
	case "call", "video":
		t := model.VoiceCall
		if cmd.Name == "video" {
			t = model.VideoCall
		}
		peer, ok := a.callPeer(cmd.Args)
		if !ok {
			a.deps.Notifier.Error("Open a direct chat or pass a contact id")
			return
		}
		a.startCall(peer, t)
	case "accept":
		fields := strings.Fields(cmd.Args)
		t := model.VoiceCall
		if len(fields) > 1 && fields[1] == string(model.VideoCall) {
			t = model.VideoCall
		}
		a.run(func(ctx context.Context) error {
			err := a.deps.Caller.Accept(ctx, fields[0], model.User{}, t)
			if errors.Is(err, capture.ErrCallInProgress) {
				a.deps.Notifier.Info("Call", "A call is already in progress")
			}
			return err
		})
	case "end":
		a.run(func(ctx context.Context) error {
			err := a.deps.Caller.End(ctx)
			if errors.Is(err, capture.ErrNoCall) {
				a.deps.Notifier.Info("Call", "No active call")
			}
			return err
		})
	case "group":
		name, ids, err := cmd.GroupArgs()
		if err != nil {
			a.deps.Notifier.Error(err.Error())
			return
		}
		a.run(func(ctx context.Context) error {
			id, err := c.CreateGroup(ctx, name, ids)
			if err == nil {
				a.app.QueueUpdateDraw(func() { a.showThread(id) })
			}
			return err
		})
	case "chat":
		a.run(func(ctx context.Context) error {
			id, err := c.CreateChat(ctx, cmd.Args)
			if err == nil {
				a.app.QueueUpdateDraw(func() { a.showThread(id) })
			}
			return err
		})
	case "fav":
		a.run(func(ctx context.Context) error { return c.AddFavorite(ctx, cmd.Args) })
	case "unfav":
		a.run(func(ctx context.Context) error { return c.RemoveFavorite(ctx, cmd.Args) })
	case "retry":
		a.retry()
	case "logout":
		a.run(c.Logout)
	case "admin":
		if !c.UnlockAdmin(cmd.Args) {
			a.deps.Notifier.Error("Wrong phrase")
			return
		}
		a.push(pageAdmin)
	case "settings":
		a.push(pageSettings)
	case "profile":
		a.push(pageProfile)
	case "help":
		a.push(pageHelp)
	case "chats":
		a.pages.Reset(pageChats)
		a.focusPage(pageChats)
	case "contacts":
		a.push(pageContacts)
	case "favorites":
		a.showFavorites()
	case "global":
		a.openChat(a.deps.GlobalChannelID)
	case "quit":
		a.Stop()
	}
}

func (a *App) applySettings(st session.Settings) {
	a.thread.SetCompact(st.Compact)
	theme := ui.ThemeFor(st.DarkMode)
	if *theme == *a.theme {
		return
	}
	a.theme = theme
	for _, t := range []ui.Themed{a.prompt, a.info, a.menu, a.logo, a.crumbs, a.flash} {
		t.ApplyTheme(theme)
	}
	for _, c := range a.components {
		if t, ok := c.(ui.Themed); ok {
			t.ApplyTheme(theme)
		}
	}
}

// refresh redraws every view from a client snapshot. Must run on the UI
// goroutine.
func (a *App) refresh() {
	st := a.deps.Client.Snapshot()

	if st.Status != status.Authenticated {
		if a.pages.Current() != pageLogin {
			a.login.Reset()
			a.pages.Reset(pageLogin)
			a.focusPage(pageLogin)
		}
	} else if cur := a.pages.Current(); cur == pageLogin || cur == "" {
		a.pages.Reset(pageChats)
		a.focusPage(pageChats)
	}

	a.chats.Update(st.Chats, st.Active)
	a.contacts.Update(st.Contacts)
	a.favorites.Update(st.Favorites)
	a.thread.Update(st.Messages)
	a.profile.Update(st.User)
	if st.Admin {
		a.admin.Update(st)
	}

	data := ui.SessionData{
		Profile:   a.deps.Profile,
		Status:    string(st.Status),
		Chats:     len(st.Chats),
		Messages:  len(st.Messages),
		Recording: a.deps.Recorder.Elapsed(),
	}
	if st.User != nil {
		data.User = st.User.Name
	}
	if call, ok := a.deps.Caller.Current(); ok {
		data.Call = string(call.Type) + " call with " + call.Peer.Name
	}
	a.info.Update(data)
}

func (a *App) handle(evt bus.Event) {
	switch evt.Kind {
	case bus.NotificationRaised:
		if n, ok := evt.Payload.(notify.Notification); ok {
			a.flash.Show(n)
			if a.pages.Current() == pageLogin && n.Level == notify.LevelError {
				a.login.ShowMessage(n.Description)
			}
		}
		return
	case bus.CallStarted:
		if call, ok := evt.Payload.(model.Call); ok {
			a.call.Update(call)
			a.push(pageCall)
		}
	case bus.CallEnded:
		a.closeCall()
	case bus.SessionLoggedOut:
		a.chats.SetFilter("")
	}
	a.refresh()
}

// watch forwards bus events to the UI goroutine and ticks the flash bar
// and recording timer.
func (a *App) watch() {
	events, unsub := a.deps.Bus.Subscribe("", 64)
	ticker := time.NewTicker(time.Second)
	go func() {
		defer unsub()
		defer ticker.Stop()
		for {
			select {
			case evt := <-events:
				a.app.QueueUpdateDraw(func() { a.handle(evt) })
			case now := <-ticker.C:
				recording := a.deps.Recorder.Active()
				a.app.QueueUpdateDraw(func() {
					a.flash.Expire(now)
					if recording {
						a.refresh()
					}
				})
			case <-a.ctx.Done():
				return
			}
		}
	}()
}

// Run starts the TUI and blocks until it exits.
func (a *App) Run() error {
	defer a.cancel()
	a.watch()
	a.refresh()
	if n, ok := a.deps.Notifier.Current(); ok {
		a.flash.Show(n)
	}
	return a.app.Run()
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
