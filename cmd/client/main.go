package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/coopmp/lobbysync/internal/admission"
	"github.com/coopmp/lobbysync/internal/config"
	"github.com/coopmp/lobbysync/internal/identity"
	"github.com/coopmp/lobbysync/internal/provider"
	"github.com/coopmp/lobbysync/internal/session"
	"github.com/coopmp/lobbysync/internal/types"
)

func main() {
	var (
		server  = flag.String("server", "http://localhost:8080", "lobby provider base URL")
		name    = flag.String("name", "", "display name (max 10 characters)")
		create  = flag.Bool("create", false, "host a new lobby")
		join    = flag.String("join", "", "join code of a lobby to enter")
		players = flag.Int("players", 4, "max players when hosting")
		private = flag.Bool("private", true, "make the hosted lobby private")
	)
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if *name == "" || len([]rune(*name)) > 10 {
		fmt.Fprintln(os.Stderr, "a -name of 1-10 characters is required")
		os.Exit(1)
	}
	if *create == (*join != "") {
		fmt.Fprintln(os.Stderr, "pass exactly one of -create or -join CODE")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := provider.NewHTTPClient(*server)
	ident := identity.NewService(client, log.Named("identity"))

	me, err := ident.EnsureSignedIn(ctx)
	if err != nil {
		log.Fatal("sign-in failed", zap.Error(err))
	}
	client.SetPlayerID(me.ID)

	// The lobby session for this process; every collaborator below shares
	// this one instance.
	cfg := config.Load()
	sess, err := session.New(client, ident, log.Named("session"),
		session.WithIntervals(cfg.HeartbeatInterval, cfg.PollInterval))
	if err != nil {
		log.Fatal("session construction failed", zap.Error(err))
	}
	defer sess.Shutdown()

	if *create {
		created, err := sess.Create(ctx, *name+"'s lobby", *players, *name, *private, "")
		if err != nil {
			log.Fatal("create failed", zap.Error(err))
		}
		fmt.Printf("hosting lobby %s, join code %s\n", created.ID, created.JoinCode)
	} else {
		joined, err := sess.Join(ctx, *join, *name)
		if err != nil {
			log.Fatal("join failed", zap.Error(err))
		}
		if !sess.NameUnique() {
			// Someone in the lobby already uses this name; back out and
			// let the user pick another.
			_ = sess.Leave(ctx)
			fmt.Fprintln(os.Stderr, "that name is already in use in this lobby, pick another")
			os.Exit(1)
		}
		fmt.Printf("joined lobby %s (%d members)\n", joined.ID, len(joined.Members))
	}

	// The lobby-level name check passed; now establish the network
	// connection. The server runs its own approval pass on it, so a name
	// that slipped past the lobby check can still be refused here.
	conn, err := dialApproval(ctx, *server, *name)
	if err != nil {
		_ = sess.Leave(ctx)
		var closeErr websocket.CloseError
		if errors.As(err, &closeErr) {
			switch admission.ParseReasonKind(closeErr.Reason) {
			case admission.ReasonNameTaken:
				fmt.Fprintln(os.Stderr, "that name is already taken on this session, pick another")
				os.Exit(1)
			case admission.ReasonCapacityReached:
				fmt.Fprintln(os.Stderr, "session is full")
				os.Exit(1)
			}
		}
		log.Fatal("connection approval failed", zap.Error(err))
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	runLoop(ctx, sess, log)

	// Graceful teardown: hosts delete the lobby, clients just leave.
	leaveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sess.Close(leaveCtx); err != nil {
		log.Warn("teardown failed", zap.Error(err))
	}
}

// dialApproval connects to the server's approval endpoint, submits the
// display name as the first frame and waits for the verdict. A rejection
// surfaces as a websocket.CloseError whose reason carries the tagged text.
func dialApproval(ctx context.Context, server, name string) (*websocket.Conn, error) {
	url := "ws" + strings.TrimPrefix(server, "http") + "/connect"

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	if err := conn.Write(dialCtx, websocket.MessageText, []byte(name)); err != nil {
		conn.Close(websocket.StatusNormalClosure, "")
		return nil, fmt.Errorf("submit name: %w", err)
	}

	_, data, err := conn.Read(dialCtx)
	if err != nil {
		conn.Close(websocket.StatusNormalClosure, "")
		return nil, err
	}

	var msg types.ApprovalMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		conn.Close(websocket.StatusProtocolError, "bad approval payload")
		return nil, fmt.Errorf("decode approval: %w", err)
	}

	fmt.Printf("connection approved, spawning at %v\n", msg.Position)
	return conn, nil
}

// runLoop is the driver: one tick every 100ms, events drained in between.
func runLoop(ctx context.Context, sess *session.LobbySession, log *zap.Logger) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			sess.Tick(ctx)

			for drained := false; !drained; {
				select {
				case e := <-sess.Events():
					if done := handleEvent(e, sess, log); done {
						return
					}
				default:
					drained = true
				}
			}
		}
	}
}

func handleEvent(e session.Event, sess *session.LobbySession, log *zap.Logger) bool {
	switch ev := e.(type) {
	case session.LobbyChanged:
		for _, m := range ev.Members {
			ready := " "
			if m.IsReady {
				ready = "*"
			}
			fmt.Printf("  [%s] %s\n", ready, m.DisplayName)
		}
		if ev.IsGameReady {
			fmt.Println("all players ready, game can start")
			sess.MarkGameStarted()
			return true
		}

	case session.ReturnToMenu:
		fmt.Printf("returned to menu: %s\n", ev.Reason)

	case session.PlayerLeftLobby:
		log.Info("no longer in a lobby")
		return true
	}

	return false
}
