package config

import (
	"fmt"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfighcl"
)

type Config struct {
	TelegramBotToken    string        `hcl:"telegram_bot_token" env:"TELEGRAM_BOT_TOKEN" required:"true"`
	TelegramChannelID   int64         `hcl:"telegram_channel_id" env:"TELEGRAM_CHANNEL_ID" required:"true"`
	TelegramAdminChatID int64         `hcl:"telegram_admin_chat_id" env:"TELEGRAM_ADMIN_CHAT_ID"`
	SourceType          string        `hcl:"source_type" env:"SOURCE_TYPE" default:"html"`
	SourceURL           string        `hcl:"source_url" env:"SOURCE_URL" default:"http://nevarono.spb.ru"`
	SourcePath          string        `hcl:"source_path" env:"SOURCE_PATH" default:"/novosti.html"`
	StoragePath         string        `hcl:"storage_path" env:"STORAGE_PATH" default:"./data/posts.json"`
	PollInterval        time.Duration `hcl:"poll_interval" env:"POLL_INTERVAL" default:"30s"`
	SendDelay           time.Duration `hcl:"send_delay" env:"SEND_DELAY" default:"500ms"`
	MaxPostsCount       int           `hcl:"max_posts_count" env:"MAX_POSTS_COUNT" default:"100"`
	MaxPostAge          time.Duration `hcl:"max_post_age" env:"MAX_POST_AGE" default:"72h"`
	MaxStorageSizeMB    int64         `hcl:"max_storage_size_mb" env:"MAX_STORAGE_SIZE_MB" default:"10"`
	BackupMaxAge        time.Duration `hcl:"backup_max_age" env:"BACKUP_MAX_AGE" default:"168h"`
	MaxMessageLength    int           `hcl:"max_message_length" env:"MAX_MESSAGE_LENGTH" default:"4096"`
	AIType              string        `hcl:"ai_type" env:"AI_TYPE"`
	AIBaseURL           string        `hcl:"ai_base_url" env:"AI_BASE_URL"`
	AIKey               string        `hcl:"ai_key" env:"AI_KEY"`
	AIPrompt            string        `hcl:"ai_prompt" env:"AI_PROMPT" default:"Сократи текст новости до двух-трёх предложений, сохранив факты и даты."`
	AIModel             string        `hcl:"ai_model" env:"AI_MODEL" default:"llama3"`
	AITimeout           time.Duration `hcl:"ai_timeout" env:"AI_TIMEOUT" default:"5m"`
	AIMinChars          int           `hcl:"ai_min_chars" env:"AI_MIN_CHARS" default:"2000"`
}

// Load reads the configuration from HCL files and NEVA_-prefixed environment
// variables. The result is built once in main and passed around explicitly; there is
// no process-wide cached config.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{"./config.hcl", "./config.local.hcl", "$HOME/.config/neva-news/config.hcl"}
	}

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "NEVA",
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".hcl": aconfighcl.New(),
		},
	})

	if err := loader.Load(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}
