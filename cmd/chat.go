package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"turnkit/pkg/adapter/console"
	"turnkit/pkg/bot"
	"turnkit/pkg/config"
	"turnkit/pkg/logger"
	"turnkit/pkg/schema"
	"turnkit/pkg/turn"
	"turnkit/pkg/ui/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run an interactive console chat",
	Long:  "Runs an echo bot over the loopback console adapter, one turn per typed line.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("failed to load config: %v\n", err)
			return
		}

		appLogger, err := logger.New(cfg.Logging)
		if err != nil {
			fmt.Printf("failed to initialize logger: %v\n", err)
			return
		}
		slog.SetDefault(appLogger)
		log := slog.Default().With("component", "cmd.chat")

		adapter := console.New(nil, log)
		dispatcher, err := bot.New(adapter, log)
		if err != nil {
			log.Error("Failed to initialize dispatcher", "error", err)
			return
		}

		dispatcher.Use(func(tc *turn.Context) {
			tc.RegisterSendInterceptor(func(ctx context.Context, tc *turn.Context, messages []*schema.Message, next turn.Next) error {
				log.Debug("Outbound batch", "count", len(messages))
				return next(ctx)
			})
		})

		runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		turnFn := buildTurnFunc(dispatcher, adapter, cfg.Chat)
		if err := chat.Run(runCtx, turnFn, cfg.Chat.BotName); err != nil {
			log.Error("Chat UI failed", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

// buildTurnFunc wraps the dispatcher as a chat.TurnFunc: each typed line
// becomes one inbound message and one turn, and the replies the turn
// delivered are drained from the adapter.
func buildTurnFunc(dispatcher *bot.Dispatcher, adapter *console.Adapter, cfg config.ChatConfig) chat.TurnFunc {
	return func(ctx context.Context, text string) ([]string, error) {
		inbound := &schema.Message{
			ID:           uuid.NewString(),
			Text:         text,
			ChannelID:    cfg.ChannelID,
			ServiceURL:   cfg.ServiceURL,
			From:         schema.Account{ID: cfg.UserID, Name: cfg.UserName},
			Recipient:    schema.Account{ID: cfg.BotID, Name: cfg.BotName},
			Conversation: schema.Conversation{ID: "console-session"},
		}

		err := dispatcher.Dispatch(ctx, inbound, echoHandler)
		if err != nil {
			return nil, err
		}

		outbound := adapter.TakeOutbound()
		replies := make([]string, 0, len(outbound))
		for _, message := range outbound {
			replies = append(replies, message.Text)
		}

		return replies, nil
	}
}

// echoHandler is the demo turn handler: it repeats the inbound text back.
func echoHandler(ctx context.Context, tc *turn.Context) error {
	_, err := tc.SendText(ctx, tc.Inbound().Text)

	return err
}
