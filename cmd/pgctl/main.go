package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/penguingram/messenger/internal/app"
	"github.com/penguingram/messenger/internal/control"
	"github.com/penguingram/messenger/internal/profile"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	cfg, err := app.LoadConfig()
	if err != nil {
		fatal(err)
	}
	name, err := app.ResolveProfile(*profileFlag, cfg)
	if err != nil {
		fatal(err)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	c, err := control.Dial(profile.SocketPath(name))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot connect to profile %q: %v\n", name, err)
		os.Exit(1)
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch args[0] {
	case "status":
		cmdStatus(ctx, c, *jsonFlag)
	case "chats":
		cmdChats(ctx, c, *jsonFlag)
	case "select":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: pgctl select <chat id>")
			os.Exit(1)
		}
		cmdSelect(ctx, c, args[1], *jsonFlag)
	case "send":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: pgctl send <text>")
			os.Exit(1)
		}
		cmdSend(ctx, c, strings.Join(args[1:], " "), *jsonFlag)
	case "logout":
		if err := c.Logout(ctx); err != nil {
			fatal(err)
		}
		fmt.Println("Logged out.")
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: pgctl [--profile <name>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  status           Show client status")
	fmt.Fprintln(os.Stderr, "  chats            List loaded chats")
	fmt.Fprintln(os.Stderr, "  select <id>      Open a chat")
	fmt.Fprintln(os.Stderr, "  send <text>      Send text to the open chat")
	fmt.Fprintln(os.Stderr, "  logout           End the session")
}

func cmdStatus(ctx context.Context, c *control.Client, jsonOut bool) {
	st, err := c.Status(ctx)
	if err != nil {
		fatal(err)
	}
	if jsonOut {
		outputJSON(st)
		return
	}
	fmt.Printf("Profile: %v\n", st["profile"])
	fmt.Printf("State:   %v\n", st["state"])
	if user, ok := st["user_name"]; ok {
		fmt.Printf("User:    %v (id %v)\n", user, st["user_id"])
	}
	fmt.Printf("Chat:    %v\n", st["active_channel"])
	fmt.Printf("Chats:   %v  Contacts: %v  Messages: %v\n", st["chats"], st["contacts"], st["messages"])
	fmt.Printf("Uptime:  %vms\n", st["uptime_ms"])
}

func cmdChats(ctx context.Context, c *control.Client, jsonOut bool) {
	chats, err := c.ListChats(ctx)
	if err != nil {
		fatal(err)
	}
	if jsonOut {
		outputJSON(chats)
		return
	}
	if len(chats) == 0 {
		fmt.Println("No chats loaded.")
		return
	}
	for _, ch := range chats {
		marker := " "
		if ch["active"] == true {
			marker = "*"
		}
		fmt.Printf("%s %-6v %-24v %v\n", marker, ch["id"], ch["title"], ch["last_message"])
	}
}

func cmdSelect(ctx context.Context, c *control.Client, id string, jsonOut bool) {
	resp, err := c.SelectChannel(ctx, id)
	if err != nil {
		fatal(err)
	}
	if jsonOut {
		outputJSON(resp)
		return
	}
	fmt.Printf("Opened chat %v (%v messages)\n", resp["active_channel"], resp["messages"])
}

func cmdSend(ctx context.Context, c *control.Client, text string, jsonOut bool) {
	resp, err := c.Send(ctx, text)
	if err != nil {
		fatal(err)
	}
	if jsonOut {
		outputJSON(resp)
		return
	}
	fmt.Printf("Sent (id %v)\n", resp["message_id"])
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
