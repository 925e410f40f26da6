package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Farengier/usernotes-bot/internal/authz"
	"github.com/Farengier/usernotes-bot/internal/clock"
	"github.com/Farengier/usernotes-bot/internal/db"
	"github.com/Farengier/usernotes-bot/internal/dedupe"
	"github.com/Farengier/usernotes-bot/internal/executor"
	"github.com/Farengier/usernotes-bot/internal/moderation"
	"github.com/Farengier/usernotes-bot/internal/platform/reddit"
	"github.com/Farengier/usernotes-bot/internal/signal"
	"github.com/Farengier/usernotes-bot/internal/supervisor"
	"github.com/Farengier/usernotes-bot/internal/telegram"
	"github.com/Farengier/usernotes-bot/internal/web"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var (
	conf    *string
	envFile *string
)

func init() {
	conf = flag.String("config", "config.yml", "config file path")
	envFile = flag.String("env", ".env", "optional dotenv file with secrets")
}

func main() {
	flag.Parse()

	cfg, err := initConfig()
	if err != nil {
		fmt.Printf("Error reading config: %s\n", err)
		fmt.Println("Usage server --config=<file_path> [--env=<file_path>]")
		fmt.Println()
		os.Exit(1)
	}

	err = initLogging(cfg.Log)
	if err != nil {
		fmt.Printf("Error log init: %s\n", err)
		os.Exit(1)
	}

	signal.Init()
	if err := start(cfg); err != nil {
		log.Errorf("[Server] start failed: %s", err)
		signal.Shutdown()
	}
	signal.Wait()
	log.Info("[Server] Closing")
}

// logReporter stands in for the operator channel when telegram is not configured.
type logReporter struct{}

func (logReporter) ReportError(msg string) {
	log.Warnf("[Server] error report: %s", msg)
}

type reporter interface {
	ReportError(msg string)
}

func start(cfg *YamlConfig) error {
	communities := cfg.Moderation.Communities()
	if len(communities) == 0 {
		return fmt.Errorf("no subreddits configured")
	}

	journal, err := db.New(cfg.DataBase)
	if err != nil {
		return fmt.Errorf("journal init failed: %w", err)
	}

	var (
		rep reporter = logReporter{}
		bot interface{ Start(telegram.Deps) }
	)
	if cfg.Telegram.Token() != "" {
		tg, err := telegram.NewBot(cfg.Telegram)
		if err != nil {
			return err
		}
		rep, bot = tg, tg
	} else {
		log.Warn("[Server] telegram token is empty, errors are only logged")
	}

	clk := clock.Real()
	rehearsal := executor.NewRehearsal(cfg.Moderation.DryRun)
	api := reddit.New(cfg.Reddit)
	auth := authz.NewCache(api, clk)
	guard := dedupe.New(api)
	shared := executor.NewGate(clk)

	workers := make([]supervisor.Worker, 0, len(communities))
	for _, community := range communities {
		gate := shared
		if !cfg.Moderation.SharedThrottle() {
			gate = executor.NewGate(clk)
		}
		orch := moderation.New(moderation.Options{
			Community: community,
			API:       api,
			Executor:  executor.New(gate, rehearsal, cfg.Moderation.Throttle, clk, log.WithField("community", community)),
			Tracker:   auth.Tracker(community),
			Guard:     guard,
			Reporter:  rep,
			Journal:   journal,
		})
		workers = append(workers, moderation.NewWorker(community, api, orch))
	}
	log.Infof("[Server] watching %v, dry run %t, shared throttle %t",
		communities, rehearsal.Enabled(), cfg.Moderation.SharedThrottle())

	sup := supervisor.New(workers, rep, clk, cfg.Moderation.RestartDelay())
	signal.Run(func() { sup.Run(signal.Context()) })

	if bot != nil {
		bot.Start(telegram.Deps{Rehearsal: rehearsal, Workers: sup, Journal: journal})
	}
	if cfg.Server.Enabled() {
		signal.Run(func() { web.Start(cfg.Server, web.Deps{Workers: sup, Rehearsal: rehearsal, Journal: journal}) })
	}
	return nil
}

func initConfig() (*YamlConfig, error) {
	if conf == nil || *conf == "" {
		return nil, fmt.Errorf("config param is empty")
	}

	fmt.Printf("config is %s\n", *conf)

	f, err := os.Open(*conf)
	if err != nil {
		return nil, fmt.Errorf("open failed: %w", err)
	}
	defer f.Close()

	cfg, err := decodeConfig(f)
	if err != nil {
		return nil, err
	}
	if err := loadEnv(*envFile); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func decodeConfig(r io.Reader) (*YamlConfig, error) {
	dec := yaml.NewDecoder(r)
	cfg := &YamlConfig{}
	err := dec.Decode(cfg)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding failed: %w", err)
	}
	return cfg, nil
}

func initLogging(cfg LogConfig) error {
	var w io.Writer
	w = os.Stdout
	if cfg.Path != "" {
		f, err := os.Create(cfg.Path)
		if err != nil {
			return fmt.Errorf("creating log file failed: %w", err)
		}
		w = io.MultiWriter(w, f)
	}

	lvl, err := log.ParseLevel(cfg.level())
	if err != nil {
		return fmt.Errorf("level parse failed: %w", err)
	}

	log.SetOutput(w)
	log.SetLevel(lvl)
	return nil
}
