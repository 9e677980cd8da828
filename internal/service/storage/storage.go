package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jmoiron/sqlx"

	"github.com/x-thooh/geotech/internal/geotech/settlement"
	"github.com/x-thooh/geotech/pkg/log"
	"github.com/x-thooh/geotech/pkg/log/xslog"
	"github.com/x-thooh/geotech/pkg/trace"
)

var (
	ErrRunNotFound = errors.New("run not found")
	ErrInvalidSeed = errors.New("seed does not fit a signed 64-bit column")
)

type Config struct {
	// snowflake 节点号 0..1023
	Node int64 `yaml:"node"`
}

// Storage persists settlement runs.
type Storage struct {
	cfg *Config
	lg  log.Logger
	db  *sqlx.DB
	sn  *snowflake.Node
}

var schemas = map[string]string{
	"sqlite": `
		CREATE TABLE IF NOT EXISTS settlement_run (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_no     BIGINT NOT NULL UNIQUE,
			scenario   TEXT NOT NULL,
			iterations INTEGER NOT NULL,
			seed       BIGINT NOT NULL,
			mean       DOUBLE NOT NULL,
			std        DOUBLE NOT NULL,
			p5         DOUBLE NOT NULL,
			p50        DOUBLE NOT NULL,
			p95        DOUBLE NOT NULL,
			result     TEXT NOT NULL,
			extra      TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
	"mysql": `
		CREATE TABLE IF NOT EXISTS settlement_run (
			id         BIGINT PRIMARY KEY AUTO_INCREMENT,
			run_no     BIGINT NOT NULL UNIQUE,
			scenario   VARCHAR(255) NOT NULL,
			iterations INT NOT NULL,
			seed       BIGINT NOT NULL,
			mean       DOUBLE NOT NULL,
			std        DOUBLE NOT NULL,
			p5         DOUBLE NOT NULL,
			p50        DOUBLE NOT NULL,
			p95        DOUBLE NOT NULL,
			result     LONGTEXT NOT NULL,
			extra      JSON NOT NULL,
			created_at DATETIME(3) NOT NULL
		)`,
}

func New(
	cfg *Config,
	m *xslog.Manager,
	db *sqlx.DB,
) (*Storage, error) {
	sn, err := snowflake.NewNode(cfg.Node)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", cfg.Node, err)
	}
	s := &Storage{
		cfg: cfg,
		lg:  m.GetLogger("geotech.store"),
		db:  db,
		sn:  sn,
	}
	if err = s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (d *Storage) migrate(ctx context.Context) error {
	for prefix, schema := range schemas {
		if strings.HasPrefix(d.db.DriverName(), prefix) {
			if _, err := d.db.ExecContext(ctx, schema); err != nil {
				return fmt.Errorf("create settlement_run: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("no schema for driver %q", d.db.DriverName())
}

type RunEntity struct {
	Id         int64     `db:"id" json:"-"`
	RunNo      int64     `db:"run_no" json:"run_no,string"`
	Scenario   string    `db:"scenario" json:"scenario"`
	Iterations int       `db:"iterations" json:"iterations"`
	Seed       int64     `db:"seed" json:"seed"`
	Mean       float64   `db:"mean" json:"mean"`
	Std        float64   `db:"std" json:"std"`
	P5         float64   `db:"p5" json:"p5"`
	P50        float64   `db:"p50" json:"p50"`
	P95        float64   `db:"p95" json:"p95"`
	Result     *Outcome  `db:"result" json:"result,omitempty"`
	Extra      *Extra    `db:"extra" json:"extra"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

func (t *RunEntity) TraceId() string {
	if t.Extra == nil {
		return ""
	}
	return t.Extra.TraceId
}

// Outcome is the full calculation result stored as a JSON column.
type Outcome settlement.Result

func (j Outcome) Value() (driver.Value, error) {
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *Outcome) Scan(src interface{}) error {
	return scanJSON(src, j)
}

type Extra struct {
	TraceId string            `json:"trace_id"`
	Point   settlement.Point  `json:"point"`
	Labels  map[string]string `json:"labels,omitempty"`
}

func (j Extra) Value() (driver.Value, error) {
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *Extra) Scan(src interface{}) error {
	return scanJSON(src, j)
}

// mysql 返回 []byte，sqlite 返回 string
func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("type assertion to []byte or string failed: %T", src)
	}
}

// Save stores res as a new run and returns its run number.
func (d *Storage) Save(ctx context.Context, res *settlement.Result, opts ...Option) (int64, error) {
	o := &options{
		scenario: "default",
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.seed > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSeed, o.seed)
	}
	run := &RunEntity{
		RunNo:      d.sn.Generate().Int64(),
		Scenario:   o.scenario,
		Iterations: res.Iterations,
		Seed:       int64(o.seed),
		Mean:       res.Mean,
		Std:        res.Std,
		P5:         res.P5,
		P50:        res.P50,
		P95:        res.P95,
		Result:     (*Outcome)(res),
		Extra: &Extra{
			TraceId: trace.Get(ctx),
			Point:   o.point,
			Labels:  o.labels,
		},
		CreatedAt: time.Now().Truncate(time.Millisecond),
	}
	query := `
		INSERT INTO settlement_run
		(run_no, scenario, iterations, seed, mean, std, p5, p50, p95, result, extra, created_at)
		VALUES
		(:run_no,:scenario,:iterations,:seed,:mean,:std,:p5,:p50,:p95,:result,:extra,:created_at)
	`
	if _, err := d.db.NamedExecContext(ctx, query, run); err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	d.lg.Info(ctx, "run stored", "run_no", run.RunNo, "scenario", run.Scenario, "mean", run.Mean)
	return run.RunNo, nil
}

// Get loads one run with its full result.
func (d *Storage) Get(ctx context.Context, runNo int64) (*RunEntity, error) {
	var run RunEntity
	err := d.db.GetContext(ctx, &run, `SELECT * FROM settlement_run WHERE run_no = ?`, runNo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, runNo)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns the latest runs, newest first, without their per-iteration results.
func (d *Storage) List(ctx context.Context, limit int) ([]*RunEntity, error) {
	if limit <= 0 {
		limit = 20
	}
	runs := []*RunEntity{}
	err := d.db.SelectContext(ctx, &runs, `
		SELECT id, run_no, scenario, iterations, seed, mean, std, p5, p50, p95, extra, created_at
		FROM settlement_run
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	return runs, err
}
