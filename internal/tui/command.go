package tui

import (
	"errors"
	"fmt"
	"strings"
)

// Command represents a parsed command.
type Command struct {
	Name string
	Args string
}

// aliases maps short command forms to their canonical name.
var aliases = map[string]string{
	"q":   "quit",
	"h":   "help",
	"rec": "voice",
	"a":   "attach",
	"dm":  "chat",
}

// ParseCommand parses a command string (without the leading ':').
func ParseCommand(input string) Command {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), ":"))
	parts := strings.SplitN(input, " ", 2)
	cmd := Command{Name: strings.ToLower(parts[0])}
	if canonical, ok := aliases[cmd.Name]; ok {
		cmd.Name = canonical
	}
	if len(parts) > 1 {
		cmd.Args = strings.TrimSpace(parts[1])
	}
	return cmd
}

// argsRequired lists commands that cannot run without arguments.
var argsRequired = map[string]string{
	"attach": "path",
	"accept": "call id",
	"group":  "name and member ids",
	"fav":    "message id",
	"unfav":  "message id",
	"chat":   "contact id",
	"admin":  "phrase",
}

// known lists every command the app handles.
var known = map[string]bool{
	"attach": true, "voice": true, "stop": true, "cancel": true,
	"call": true, "video": true, "accept": true, "end": true,
	"group": true, "chat": true, "fav": true, "unfav": true, "retry": true,
	"logout": true, "settings": true, "admin": true, "profile": true,
	"chats": true, "contacts": true, "favorites": true, "global": true,
	"help": true, "quit": true,
}

// Validate reports unknown commands and missing arguments.
func (c Command) Validate() error {
	if c.Name == "" {
		return errors.New("empty command")
	}
	if !known[c.Name] {
		return fmt.Errorf("unknown command %q", c.Name)
	}
	if what, ok := argsRequired[c.Name]; ok && c.Args == "" {
		return fmt.Errorf(":%s needs a %s", c.Name, what)
	}
	return nil
}

// GroupArgs splits ":group <name> <id,id,...>". The name may contain
// spaces; the last field is the comma-separated member list.
func (c Command) GroupArgs() (string, []string, error) {
	i := strings.LastIndex(c.Args, " ")
	if i < 0 {
		return "", nil, errors.New("usage: :group <name> <id,id,...>")
	}
	name := strings.TrimSpace(c.Args[:i])
	var ids []string
	for _, id := range strings.Split(c.Args[i+1:], ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if name == "" || len(ids) == 0 {
		return "", nil, errors.New("usage: :group <name> <id,id,...>")
	}
	return name, ids, nil
}
