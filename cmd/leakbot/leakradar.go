package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spf13/viper"

	"github.com/Charile333/TGBOT/internal/leakradar"
)

func leakRadarFromViper(logger *slog.Logger) (*leakradar.Client, error) {
	apiKey := strings.TrimSpace(viper.GetString("leakradar.api_key"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing leakradar.api_key (set via --leakradar-api-key, LEAK_API_KEY or %s_LEAKRADAR_API_KEY)", envPrefix)
	}
	return leakradar.NewClient(&http.Client{}, leakradar.Options{
		BaseURL:         viper.GetString("leakradar.base_url"),
		APIKey:          apiKey,
		QueryTimeout:    viper.GetDuration("leakradar.query_timeout"),
		UnlockTimeout:   viper.GetDuration("leakradar.unlock_timeout"),
		DownloadTimeout: viper.GetDuration("leakradar.download_timeout"),
		PageDelay:       viper.GetDuration("export.page_delay"),
		Logger:          logger,
	}), nil
}

// quietLogger keeps client logs out of CLI output unless --trace is set.
func quietLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if viper.GetBool("trace") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
