package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Farengier/usernotes-bot/internal/orm"
	"github.com/Farengier/usernotes-bot/internal/signal"
	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
	gormSqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultRetention = 500

type Config interface {
	Retention() int
	PruneInterval() time.Duration
}

// db keeps the action journal in an in-memory sqlite database. Nothing
// is written to disk; the journal is lost on restart.
type db struct {
	cfg    Config
	dbc    *sql.DB
	gormDB *gorm.DB
	ctx    context.Context

	t *time.Ticker
}

func New(cfg Config) (*db, error) {
	d := &db{
		cfg: cfg,
		t:   time.NewTicker(cfg.PruneInterval()),
	}

	ctx, cncl := context.WithCancel(context.Background())
	d.ctx = ctx
	signal.OnShutdown(func() error {
		cncl()
		d.t.Stop()
		return nil
	})

	dbc, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("db failed creating memory connection: %w", err)
	}
	// every new connection to :memory: would open a separate database
	dbc.SetMaxOpenConns(1)
	d.dbc = dbc

	gormLog := logger.New(
		log.StandardLogger(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)
	d.gormDB, err = gorm.Open(gormSqlite.Dialector{Conn: d.dbc}, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("db failed gorm-ing connection: %w", err)
	}

	if err = d.gormDB.AutoMigrate(&orm.Action{}); err != nil {
		return nil, fmt.Errorf("db migrate failed: %w", err)
	}

	signal.Run(d.janitor)
	return d, nil
}

func (d *db) GORM() *gorm.DB {
	return d.gormDB
}

func (d *db) Record(ctx context.Context, a *orm.Action) error {
	if err := d.gormDB.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("recording action failed: %w", err)
	}
	return nil
}

// Recent returns the newest actions first. An empty community means all.
func (d *db) Recent(ctx context.Context, community string, limit int) ([]orm.Action, error) {
	q := d.gormDB.WithContext(ctx).Order("id desc").Limit(limit)
	if community != "" {
		q = q.Where(&orm.Action{Community: community})
	}
	var out []orm.Action
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing actions failed: %w", err)
	}
	return out, nil
}

func (d *db) janitor() {
	log.Info("[DB] running janitor")
	for {
		select {
		case <-d.ctx.Done():
			log.Info("[DB] janitor stopped by closed context")
			_ = d.dbc.Close()
			return
		case <-d.t.C:
			if err := d.prune(); err != nil {
				log.Errorf("[DB] prune failed: %s", err)
			}
		}
	}
}

// prune keeps only the newest Retention() actions.
func (d *db) prune() error {
	keep := d.cfg.Retention()
	if keep <= 0 {
		keep = defaultRetention
	}

	var cutoff orm.Action
	res := d.gormDB.Unscoped().Order("id desc").Offset(keep).Limit(1).Find(&cutoff)
	if res.Error != nil {
		return fmt.Errorf("finding cutoff failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil
	}

	res = d.gormDB.Unscoped().Where("id <= ?", cutoff.ID).Delete(&orm.Action{})
	if res.Error != nil {
		return fmt.Errorf("deleting old actions failed: %w", res.Error)
	}
	log.Infof("[DB] pruned %d old actions", res.RowsAffected)
	return nil
}
