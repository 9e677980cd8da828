package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/x-thooh/geotech/internal/boot/database"
)

var ErrInvalidConfig = errors.New("invalid config")

// LoadConfig 读取 <path>/configs.<env>.yaml，相对路径按配置目录解析
func LoadConfig(path string, env string) (*Entity, error) {
	file := filepath.Join(path, fmt.Sprintf("configs.%s.yaml", env))
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	cfg := &Entity{
		Base: &Base{
			Env: env,
			Dir: path,
		},
		Logging: &Logging{
			File: "logging.yaml",
		},
		Database: &database.Config{
			Debug: "dev" == env,
		},
		Simulation: &Simulation{
			Iterations: 1000,
			Seed:       42,
		},
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	// seed 以 BIGINT 入库
	if cfg.Simulation.Seed > math.MaxInt64 {
		return nil, fmt.Errorf("%s: %w: simulation.seed %d exceeds %d", file, ErrInvalidConfig, cfg.Simulation.Seed, int64(math.MaxInt64))
	}
	cfg.Logging.File = cfg.resolve(cfg.Logging.File)
	cfg.Logging.BaseDir = cfg.resolve(cfg.Logging.BaseDir)
	if cfg.Database.Driver == database.DriverSQLite {
		cfg.Database.Name = cfg.resolve(cfg.Database.Name)
	}
	if cfg.Simulation.Scenario != "" {
		cfg.Simulation.Scenario = cfg.resolve(cfg.Simulation.Scenario)
	}
	return cfg, nil
}

func (e *Entity) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(e.Dir, p)
}
