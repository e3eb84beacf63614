package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Charile333/TGBOT/cmd/leakbot/telegramcmd"
	"github.com/Charile333/TGBOT/internal/logutil"
)

const envPrefix = "LEAKBOT"

// legacyEnv maps the unprefixed variable names older deployments use.
var legacyEnv = map[string]string{
	"telegram.bot_token": "TELEGRAM_TOKEN",
	"leakradar.api_key":  "LEAK_API_KEY",
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root := newRootCmd()
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "leakbot",
		Short:        "Telegram bot for LeakRadar leak lookups and CSV exports",
		SilenceUsage: true,
	}

	cobra.OnInitialize(initConfig)

	cmd.PersistentFlags().String("config", "", "Config file path (optional).")
	cmd.PersistentFlags().String("env-file", ".env", "Dotenv file loaded before reading the environment (optional).")
	_ = viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("env_file", cmd.PersistentFlags().Lookup("env-file"))

	cmd.PersistentFlags().String("log-level", "", "Logging level: debug|info|warn|error (defaults to info; debug if --trace).")
	cmd.PersistentFlags().String("log-format", "text", "Logging format: text|json.")
	cmd.PersistentFlags().Bool("log-add-source", false, "Include source file:line in logs.")
	cmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file.")
	cmd.PersistentFlags().Bool("trace", false, "Print extra debug info to stderr.")
	cmd.PersistentFlags().String("leakradar-api-key", "", "LeakRadar API key (or LEAK_API_KEY).")
	cmd.PersistentFlags().String("leakradar-base-url", "", "LeakRadar API base URL.")

	_ = viper.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", cmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("logging.add_source", cmd.PersistentFlags().Lookup("log-add-source"))
	_ = viper.BindPFlag("logging.file", cmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag("trace", cmd.PersistentFlags().Lookup("trace"))
	_ = viper.BindPFlag("leakradar.api_key", cmd.PersistentFlags().Lookup("leakradar-api-key"))
	_ = viper.BindPFlag("leakradar.base_url", cmd.PersistentFlags().Lookup("leakradar-base-url"))

	cmd.AddCommand(telegramcmd.New(telegramcmd.Dependencies{
		LoggerFromViper:    logutil.LoggerFromViper,
		LeakRadarFromViper: leakRadarFromViper,
	}))
	cmd.AddCommand(newLookupCmd())
	cmd.AddCommand(newExportsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func initConfig() {
	initViperDefaults()
	loadDotenv(strings.TrimSpace(viper.GetString("env_file")))

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
	for key, name := range legacyEnv {
		_ = viper.BindEnv(key, envPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), name)
	}

	cfgFile := strings.TrimSpace(viper.GetString("config"))
	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
	}
}

// loadDotenv fills the environment from path without overriding variables
// that are already set. A missing file is not an error.
func loadDotenv(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", path, err)
	}
}
