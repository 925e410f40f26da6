package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Farengier/usernotes-bot/internal/executor"
	"github.com/Farengier/usernotes-bot/internal/supervisor"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type YamlConfig struct {
	Log        LogConfig        `yaml:"log"`
	Server     ServerConfig     `yaml:"server"`
	Telegram   TBotConfig       `yaml:"telegram"`
	Reddit     RedditConfig     `yaml:"reddit"`
	Moderation ModerationConfig `yaml:"moderation"`
	DataBase   DBConfig         `yaml:"db"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

func (lc LogConfig) level() string {
	if lc.Level == "" {
		return "info"
	}
	return lc.Level
}

type TBotConfig struct {
	BotToken string `yaml:"token"`
	Chat     int64  `yaml:"error_chat"`
	Key      string `yaml:"operator_key"`
	TimeOut  struct {
		Sensitive string `yaml:"sensitive"`
		Low       string `yaml:"low"`
	} `yaml:"spam_timeout"`
}

func (tbc TBotConfig) Token() string {
	return tbc.BotToken
}
func (tbc TBotConfig) ErrorChat() int64 {
	return tbc.Chat
}
func (tbc TBotConfig) OperatorKey() string {
	return tbc.Key
}
func (tbc TBotConfig) SpamFilterDurationSensitive() time.Duration {
	return duration(tbc.TimeOut.Sensitive, time.Second*60, "tg spam filter sensitive")
}
func (tbc TBotConfig) SpamFilterDurationLow() time.Duration {
	return duration(tbc.TimeOut.Low, time.Second*1, "tg spam filter low")
}

type ServerConfig struct {
	Listen  string `yaml:"listen"`
	Port    int    `yaml:"port"`
	ReadTO  int    `yaml:"read_timeout"`
	WriteTO int    `yaml:"write_timeout"`
}

func (sc ServerConfig) Enabled() bool {
	return sc.Port != 0
}
func (sc ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", sc.Listen, sc.Port)
}
func (sc ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(sc.ReadTO) * time.Second
}
func (sc ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(sc.WriteTO) * time.Second
}

type RedditConfig struct {
	ID     string `yaml:"client_id"`
	Secret string `yaml:"client_secret"`
	User   string `yaml:"username"`
	Pass   string `yaml:"password"`
	Agent  string `yaml:"user_agent"`
	Poll   string `yaml:"poll"`
}

func (rc RedditConfig) ClientID() string {
	return rc.ID
}
func (rc RedditConfig) ClientSecret() string {
	return rc.Secret
}
func (rc RedditConfig) Username() string {
	return rc.User
}
func (rc RedditConfig) Password() string {
	return rc.Pass
}
func (rc RedditConfig) UserAgent() string {
	if rc.Agent == "" {
		return "server:usernotes-bot:v1 (by /u/" + rc.User + ")"
	}
	return rc.Agent
}
func (rc RedditConfig) PollInterval() time.Duration {
	return duration(rc.Poll, 10*time.Second, "reddit poll")
}

type ModerationConfig struct {
	Subreddits []string       `yaml:"subreddits"`
	DryRun     bool           `yaml:"dry_run"`
	Shared     *bool          `yaml:"shared_throttle"`
	Restart    string         `yaml:"restart_delay"`
	Throttle   ThrottleConfig `yaml:"throttle"`
}

// Communities returns the subreddit names, trimmed and without r/ prefix.
func (mc ModerationConfig) Communities() []string {
	out := make([]string, 0, len(mc.Subreddits))
	seen := map[string]bool{}
	for _, s := range mc.Subreddits {
		s = strings.TrimPrefix(strings.TrimSpace(s), "r/")
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		out = append(out, s)
	}
	return out
}
func (mc ModerationConfig) SharedThrottle() bool {
	return mc.Shared == nil || *mc.Shared
}
func (mc ModerationConfig) RestartDelay() time.Duration {
	return duration(mc.Restart, supervisor.DefaultRestartDelay, "worker restart delay")
}

type ThrottleConfig struct {
	Space      string `yaml:"spacing"`
	LightSpace string `yaml:"light_spacing"`
	Delay      string `yaml:"retry_delay"`
	Tries      int    `yaml:"attempts"`
}

func (tc ThrottleConfig) Spacing() time.Duration {
	return duration(tc.Space, executor.Defaults().Space, "throttle spacing")
}
func (tc ThrottleConfig) LightSpacing() time.Duration {
	return duration(tc.LightSpace, executor.Defaults().LightSpace, "throttle light spacing")
}
func (tc ThrottleConfig) RetryDelay() time.Duration {
	return duration(tc.Delay, executor.Defaults().Delay, "throttle retry delay")
}
func (tc ThrottleConfig) Attempts() int {
	if tc.Tries <= 0 {
		return executor.Defaults().Tries
	}
	return tc.Tries
}

type DBConfig struct {
	Keep  int    `yaml:"retention"`
	Prune string `yaml:"prune"`
}

func (dbc DBConfig) Retention() int {
	return dbc.Keep
}
func (dbc DBConfig) PruneInterval() time.Duration {
	return duration(dbc.Prune, time.Hour, "db prune interval")
}

// duration parses a config duration. Empty means the default, a bad value
// is logged and replaced by the default.
func duration(s string, def time.Duration, name string) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		log.Errorf("[Config] wrong %s interval format %q: %v", name, s, err)
		return def
	}
	return d
}

// loadEnv reads an optional dotenv file into the process environment.
// Variables already set win over the file.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s failed: %w", path, err)
	}
	return nil
}

// applyEnv overrides secrets and deploy specific settings from the environment.
func (cfg *YamlConfig) applyEnv() {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setString(&cfg.Reddit.ID, "REDDIT_CLIENT_ID")
	setString(&cfg.Reddit.Secret, "REDDIT_CLIENT_SECRET")
	setString(&cfg.Reddit.User, "REDDIT_USERNAME")
	setString(&cfg.Reddit.Pass, "REDDIT_PASSWORD")
	setString(&cfg.Telegram.BotToken, "TELEGRAM_TOKEN")
	setString(&cfg.Telegram.Key, "OPERATOR_KEY")

	if v, ok := os.LookupEnv("TELEGRAM_ERROR_CHAT"); ok {
		chat, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Errorf("[Config] wrong TELEGRAM_ERROR_CHAT %q: %s", v, err)
		} else {
			cfg.Telegram.Chat = chat
		}
	}
	if v, ok := os.LookupEnv("SUBREDDITS"); ok {
		cfg.Moderation.Subreddits = strings.Split(v, ",")
	}
	if v, ok := os.LookupEnv("DRY_RUN"); ok {
		dry, err := strconv.ParseBool(v)
		if err != nil {
			log.Errorf("[Config] wrong DRY_RUN %q: %s", v, err)
		} else {
			cfg.Moderation.DryRun = dry
		}
	}
}
