package main

import (
	"time"

	"github.com/spf13/viper"
)

func initViperDefaults() {
	// Telegram
	viper.SetDefault("telegram.base_url", "https://api.telegram.org")
	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.poll_timeout", 5*time.Second)
	viper.SetDefault("telegram.probe_timeout", 1*time.Second)
	viper.SetDefault("telegram.retry_delay", 5*time.Second)
	viper.SetDefault("telegram.idle_delay", 500*time.Millisecond)
	viper.SetDefault("telegram.allowed_chat_ids", []string{})
	viper.SetDefault("telegram.drop_pending_updates", false)

	// LeakRadar
	viper.SetDefault("leakradar.base_url", "https://api.leakradar.io")
	viper.SetDefault("leakradar.api_key", "")
	viper.SetDefault("leakradar.query_timeout", 30*time.Second)
	viper.SetDefault("leakradar.unlock_timeout", 60*time.Second)
	viper.SetDefault("leakradar.download_timeout", 60*time.Second)

	// Exports
	viper.SetDefault("export.dir", "temp_exports")
	viper.SetDefault("export.max_items", 10000)
	viper.SetDefault("export.page_delay", 500*time.Millisecond)
	viper.SetDefault("export.job_max_wait", 300*time.Second)
	viper.SetDefault("export.job_poll_interval", 5*time.Second)
	viper.SetDefault("export.job_max_bytes", int64(50*1024*1024))

	// Logging
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.add_source", false)
	viper.SetDefault("logging.file", "")
	viper.SetDefault("trace", false)
}
