// The chatcli binary is a small terminal chat client for exercising the
// realtime stack end to end: it connects to the chatserver websocket, joins a
// conversation and relays stdin lines as messages. A line-based terminal has
// no per-keystroke events, so the /typing command simulates a keystroke for
// the typing indicator instead.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"studyhub/internal/chatclient"
	"studyhub/internal/chattypes"
	"studyhub/internal/config"
)

func main() {
	var (
		wsURL        = flag.String("url", "ws://localhost:8080/ws/chat", "chat server websocket url")
		token        = flag.String("token", "", "JWT from /api/auth/login")
		conversation = flag.String("conversation", "", "conversation id to join")
	)
	flag.Parse()
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	if *token == "" || *conversation == "" {
		fmt.Fprintln(os.Stderr, "usage: chatcli -token <jwt> -conversation <id> [-url ws://...]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	client := chatclient.NewClient(*wsURL, *token, cfg.Realtime)
	client.OnStateChange(func(s chatclient.State) {
		fmt.Printf("* connection %s\n", s)
	})
	client.OnTyping(func(sig chattypes.TypingSignal, active bool) {
		if active {
			fmt.Printf("* user %s is typing...\n", sig.UserID)
		} else {
			fmt.Printf("* user %s stopped typing\n", sig.UserID)
		}
	})
	client.OnMessage(func(env chattypes.Envelope) {
		name := env.SenderName
		if name == "" {
			name = "user " + env.SenderID
		}
		fmt.Printf("[%s] %s: %s\n", env.CreatedAt.Format("15:04:05"), name, env.Content)
	})

	if err := client.Connect(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to connect")
	}
	defer client.Close()

	if _, err := client.JoinConversation(*conversation); err != nil {
		log.Fatal().Err(err).Msg("failed to join conversation")
	}
	fmt.Printf("joined conversation %s; type messages, /typing to signal typing, /quit to exit\n", *conversation)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case line == "/typing":
			client.Typer(*conversation).Keystroke()
		default:
			if _, err := client.Send(*conversation, line); err != nil {
				fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
			}
		}
	}
}
