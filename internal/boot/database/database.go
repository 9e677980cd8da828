package database

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/qustavo/sqlhooks/v2"
	"modernc.org/sqlite"

	"github.com/x-thooh/geotech/pkg/log"
	"github.com/x-thooh/geotech/pkg/log/xslog"
	"github.com/x-thooh/geotech/pkg/util"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Config struct {
	Debug           bool
	Driver          string `yaml:"driver"`
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	Name            string `yaml:"name"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime string `yaml:"conn_max_idle_time"`
}

// sql.Register 重复注册会 panic，按驱动名只注册一次
var hooked = util.NewSafeMap[string, *Hooks]()

// InitSQLX 初始化数据库连接
func InitSQLX(m *xslog.Manager, cfg *Config) (*sqlx.DB, func(), error) {
	db, err := Open(cfg, m.GetLogger("geotech.store"))
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		_ = db.Close()
	}, nil
}

// Open connects to the configured database. With Debug set every statement
// is logged through lg.
func Open(cfg *Config, lg log.Logger) (*sqlx.DB, error) {
	var (
		drv driver.Driver
		dsn string
	)
	switch cfg.Driver {
	case DriverMySQL:
		drv = &mysql.MySQLDriver{}
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
	case DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Name), 0o755); err != nil {
			return nil, fmt.Errorf("database directory: %w", err)
		}
		drv = &sqlite.Driver{}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", cfg.Name)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	name := cfg.Driver
	if cfg.Debug {
		name = fmt.Sprintf("%sWithHooks", cfg.Driver)
		h, _ := hooked.GetOrSet(name, func() *Hooks {
			h := &Hooks{}
			sql.Register(name, sqlhooks.Wrap(drv, h))
			return h
		})
		h.SetLogger(lg)
	}

	db, err := sqlx.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlx 按驱动名选择占位符，两种驱动都用 ?
	sqlx.BindDriver(name, sqlx.QUESTION)

	// 连接池配置
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if d, pErr := time.ParseDuration(cfg.ConnMaxLifetime); pErr == nil {
		db.SetConnMaxLifetime(d)
	}

	if d, pErr := time.ParseDuration(cfg.ConnMaxIdleTime); pErr == nil {
		db.SetConnMaxIdleTime(d)
	}

	// 检测连接是否正常
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
