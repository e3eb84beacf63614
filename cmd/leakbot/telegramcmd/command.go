// Package telegramcmd is the "leakbot telegram" subcommand: it wires the Bot
// API client, the LeakRadar client and the export components behind a single
// long-poll loop.
package telegramcmd

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Charile333/TGBOT/internal/dispatch"
	"github.com/Charile333/TGBOT/internal/export"
	"github.com/Charile333/TGBOT/internal/exportjob"
	"github.com/Charile333/TGBOT/internal/fsstore"
	"github.com/Charile333/TGBOT/internal/leakradar"
	"github.com/Charile333/TGBOT/internal/poller"
	"github.com/Charile333/TGBOT/internal/replyfmt"
	"github.com/Charile333/TGBOT/internal/telegram"
)

type Dependencies struct {
	LoggerFromViper    func() (*slog.Logger, io.Closer, error)
	LeakRadarFromViper func(logger *slog.Logger) (*leakradar.Client, error)
}

func New(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telegram",
		Short: "Run the Telegram bot (long polling)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, deps)
		},
	}

	cmd.Flags().String("telegram-bot-token", "", "Telegram bot token (or TELEGRAM_TOKEN).")
	cmd.Flags().StringArray("telegram-allowed-chat-id", nil, "Allowed chat id(s). Repeatable. Empty allows every chat.")
	cmd.Flags().Duration("telegram-poll-timeout", 0, "getUpdates long-poll timeout.")
	cmd.Flags().Bool("drop-pending-updates", false, "Discard the update backlog when the webhook is removed.")
	cmd.Flags().String("export-dir", "", "Directory for temporary CSV files.")

	_ = viper.BindPFlag("telegram.bot_token", cmd.Flags().Lookup("telegram-bot-token"))
	_ = viper.BindPFlag("telegram.allowed_chat_ids", cmd.Flags().Lookup("telegram-allowed-chat-id"))
	_ = viper.BindPFlag("telegram.poll_timeout", cmd.Flags().Lookup("telegram-poll-timeout"))
	_ = viper.BindPFlag("telegram.drop_pending_updates", cmd.Flags().Lookup("drop-pending-updates"))
	_ = viper.BindPFlag("export.dir", cmd.Flags().Lookup("export-dir"))

	return cmd
}

func run(cmd *cobra.Command, deps Dependencies) error {
	ctx := cmd.Context()

	logger, closer, err := deps.LoggerFromViper()
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	token := strings.TrimSpace(viper.GetString("telegram.bot_token"))
	if token == "" {
		return fmt.Errorf("missing telegram.bot_token (set via --telegram-bot-token, TELEGRAM_TOKEN or LEAKBOT_TELEGRAM_BOT_TOKEN)")
	}
	allowed, err := parseChatIDs(viper.GetStringSlice("telegram.allowed_chat_ids"))
	if err != nil {
		return err
	}

	lr, err := deps.LeakRadarFromViper(logger)
	if err != nil {
		return err
	}

	dir, err := fsstore.EnsureSecureDir(viper.GetString("export.dir"))
	if err != nil {
		return fmt.Errorf("export dir: %w", err)
	}

	tg := telegram.NewClient(&http.Client{}, viper.GetString("telegram.base_url"), token)

	if err := tg.DeleteWebhook(ctx, viper.GetBool("telegram.drop_pending_updates")); err != nil {
		logger.Warn("telegram_delete_webhook_error", "error", err.Error())
	}
	if me, err := tg.GetMe(ctx); err != nil {
		logger.Warn("telegram_get_me_error", "error", err.Error())
	} else {
		logger.Info("telegram_bot_identity", "bot_id", me.ID, "username", me.Username)
	}

	pipeline := export.NewPipeline(lr, tg, export.NewCSVWriter(dir), export.Options{
		MaxItems: viper.GetInt("export.max_items"),
		Caption:  dispatch.ExportCaption,
		Logger:   logger,
	})
	jobs := exportjob.New(lr, exportjob.Options{
		Dir:          dir,
		PollInterval: viper.GetDuration("export.job_poll_interval"),
		MaxWait:      viper.GetDuration("export.job_max_wait"),
		MaxBytes:     viper.GetInt64("export.job_max_bytes"),
		Logger:       logger,
	})
	d := dispatch.New(lr, tg, pipeline, jobs, logger)

	p := poller.New(tg, d, poller.Options{
		PollTimeout:      viper.GetDuration("telegram.poll_timeout"),
		ProbeTimeout:     viper.GetDuration("telegram.probe_timeout"),
		RetryDelay:       viper.GetDuration("telegram.retry_delay"),
		IdleDelay:        viper.GetDuration("telegram.idle_delay"),
		AllowedChats:     allowed,
		UnauthorizedText: replyfmt.Text("unauthorized", nil),
		Notifier:         tg,
		Logger:           logger,
	})
	if err := p.Probe(ctx); err != nil {
		logger.Error("telegram_probe_failed", "error", err.Error())
		return err
	}

	logger.Info("leakbot_start", "leakradar", lr.BaseURL(), "export_dir", dir, "allowed_chats", len(allowed))
	return p.Run(ctx)
}

func parseChatIDs(raw []string) ([]int64, error) {
	var out []int64
	for _, s := range raw {
		// Viper hands env values through as one comma separated string.
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid telegram.allowed_chat_ids entry %q: %w", part, err)
			}
			out = append(out, id)
		}
	}
	return out, nil
}
