// Command line client for the chat relay.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/Jesus-007-cmd/chat-backend/clients/go/chat"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("CHAT_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	client := chat.NewClient(baseURL)
	ctx := context.Background()
	cmd := os.Args[1]

	switch cmd {
	case "health":
		resp, err := client.Health(ctx)
		exitOnError(err)
		printJSON(resp)

	case "post":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: chat post <message> [username] [color]")
			os.Exit(1)
		}
		username, color := "", ""
		if len(os.Args) > 3 {
			username = os.Args[3]
		}
		if len(os.Args) > 4 {
			color = os.Args[4]
		}
		msg, err := client.Post(ctx, username, os.Args[2], color)
		exitOnError(err)
		printJSON(msg)

	case "history":
		all := len(os.Args) > 2 && os.Args[2] == "all"
		msgs, err := client.History(ctx, all)
		exitOnError(err)
		for _, m := range msgs {
			printMessage(m)
		}

	case "new":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: chat new <lastReadId>")
			os.Exit(1)
		}
		lastReadID, err := strconv.ParseInt(os.Args[2], 10, 64)
		exitOnError(err)
		msgs, err := client.NewMessages(ctx, lastReadID)
		exitOnError(err)
		for _, m := range msgs {
			printMessage(m)
		}

	case "listen":
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		err := client.Listen(ctx, printMessage)
		if err != nil && ctx.Err() == nil {
			exitOnError(err)
		}

	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, strings.TrimSpace(`
chat - chat relay client

commands:
  post <message> [username] [color]   publish a message
  history [all]                       recent (or full) message history
  new <lastReadId>                    messages newer than lastReadId
  listen                              stream live messages
  health                              relay health report

environment:
  CHAT_URL  relay base URL (default http://localhost:8080)
`))
}

func printMessage(m chat.Message) {
	fmt.Printf("[%d] %s <%s> %s\n", m.ID, m.Timestamp, m.Username, m.Body)
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
