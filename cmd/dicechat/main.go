// Command dicechat is a terminal client for a shared dice-chat room.
//
// It drives the session layer end to end: authenticate, join a room, chat,
// and exchange dice rolls embedded in chat messages.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tavernchat/dicechat/internal/core/domain"
	"github.com/tavernchat/dicechat/internal/core/service"
	"github.com/tavernchat/dicechat/internal/infrastructure/rest"
	"github.com/tavernchat/dicechat/internal/infrastructure/store"
	"github.com/tavernchat/dicechat/internal/pkg/config"
	"github.com/tavernchat/dicechat/pkg/logger"
)

func main() {
	cfg := config.LoadClient()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	tokenStore, err := store.Open(cfg.CredentialDB)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.CredentialDB).Msg("failed to open credential store")
	}
	defer tokenStore.Close()

	credential := &domain.Credential{}
	client := rest.NewClient(cfg.ServerURL, credential, log)

	auth := service.NewAuthSession(client, tokenStore, credential, log)
	room := service.NewRoomClient(client, auth, log)
	msgSync := service.NewMessageSync(client, service.TimerScheduler{}, cfg.PollInterval, log)

	display := newDisplay()
	controller := service.NewSessionController(auth, room, msgSync, client, client, service.Callbacks{
		OnAuthError: func(err error) {
			fmt.Printf("! %v\n", err)
		},
		OnJoinError: func(je *domain.JoinError) {
			if je.InvalidToken {
				fmt.Println("! your session expired, please log in again")
				return
			}
			fmt.Printf("! %v\n", je)
		},
		OnMessagesUpdated:       display.show,
		OnDiceRequestRecognized: display.prompt,
		OnRollComplete: func(r *domain.DiceRollResult) {
			fmt.Printf("* you rolled %d (%s)\n", r.Total, r.Breakdown)
		},
	}, log)

	ctx := context.Background()
	if err := controller.Startup(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to restore credential")
	}

	room.SetRoomID(cfg.Room)
	fmt.Printf("dicechat — server %s, room %s (state: %s)\n", cfg.ServerURL, cfg.Room, controller.State())
	fmt.Println(`commands: /login /register /identity /room /join /leave /request /roll /logout /quit`)

	repl(ctx, controller, room)
}

func repl(ctx context.Context, controller *service.SessionController, room *service.RoomClient) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			if err := controller.SendChat(ctx, line); err != nil {
				fmt.Printf("! %v\n", err)
			}
			continue
		}
		if line == "/quit" {
			controller.Disconnect()
			return
		}
		runCommand(ctx, controller, room, line)
	}
}

func runCommand(ctx context.Context, controller *service.SessionController, room *service.RoomClient, line string) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	var err error
	switch cmd {
	case "/login":
		if len(args) != 2 {
			err = fmt.Errorf("usage: /login <username> <password>")
			break
		}
		err = controller.Login(ctx, args[0], args[1])
	case "/register":
		if len(args) != 2 {
			err = fmt.Errorf("usage: /register <username> <password>")
			break
		}
		err = controller.Register(ctx, args[0], args[1])
	case "/identity":
		if len(args) != 2 {
			err = fmt.Errorf("usage: /identity <name> <dm|player>")
			break
		}
		err = room.SetIdentity(args[0], domain.Role(args[1]))
	case "/room":
		switch {
		case len(args) == 1 && args[0] == "new":
			id := room.GenerateRoomID()
			room.SetRoomID(id)
			fmt.Printf("* room id: %s\n", id)
		case len(args) == 1:
			room.SetRoomID(args[0])
		default:
			err = fmt.Errorf("usage: /room <id|new>")
		}
	case "/join":
		err = controller.Join(ctx)
	case "/leave":
		controller.Disconnect()
	case "/request":
		if len(args) < 1 {
			err = fmt.Errorf("usage: /request <expression> [description]")
			break
		}
		err = controller.RequestRoll(ctx, args[0], strings.Join(args[1:], " "))
	case "/roll":
		if len(args) < 1 {
			err = fmt.Errorf("usage: /roll <expression> [description]")
			break
		}
		_, err = controller.Roll(ctx, domain.DiceRollRequest{
			Expression:  args[0],
			Description: strings.Join(args[1:], " "),
		})
	case "/logout":
		err = controller.Logout(ctx)
	default:
		err = fmt.Errorf("unknown command %s", cmd)
	}

	if err != nil {
		fmt.Printf("! %v\n", err)
	} else {
		fmt.Printf("* ok (state: %s)\n", controller.State())
	}
}

// display prints only messages it has not shown yet, keyed by message id.
// Roll prompts repeat on every poll of the same window, so they are deduped
// by content.
type display struct {
	lastID      int64
	seenPrompts map[string]bool
}

func newDisplay() *display {
	return &display{seenPrompts: make(map[string]bool)}
}

func (d *display) show(msgs []domain.ChatMessage) {
	for _, m := range msgs {
		if m.ID <= d.lastID {
			continue
		}
		d.lastID = m.ID
		if m.IsSystem {
			fmt.Printf("-- %s\n", m.Content)
			continue
		}
		fmt.Printf("<%s> %s\n", m.Username, m.Content)
	}
}

func (d *display) prompt(p domain.RollRequestPrompt) {
	key := p.Requester + "\x00" + p.Expression + "\x00" + p.Description
	if d.seenPrompts[key] {
		return
	}
	d.seenPrompts[key] = true
	fmt.Printf("* %s asks you to roll %s (%s)\n", p.Requester, p.Expression, p.Description)
}
