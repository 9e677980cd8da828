package config

import (
	"github.com/x-thooh/geotech/internal/boot/database"
	"github.com/x-thooh/geotech/internal/server/http"
	"github.com/x-thooh/geotech/internal/service/storage"
)

type Entity struct {
	*Base      `yaml:",inline"`
	Logging    *Logging         `yaml:"logging"`
	HTTP       *http.Config     `yaml:"http"`
	Database   *database.Config `yaml:"database"`
	Storage    *storage.Config  `yaml:"storage"`
	Simulation *Simulation      `yaml:"simulation"`
}

type Base struct {
	Env string `yaml:"env"`
	// 配置目录，不从文件读取
	Dir string `yaml:"-"`
}

// Logging locates the logging document. BaseDir anchors relative handler
// filenames; empty means the working directory.
type Logging struct {
	File    string `yaml:"file"`
	BaseDir string `yaml:"base_dir"`
	Watch   bool   `yaml:"watch"`
}

// Simulation drives the settlement run.
type Simulation struct {
	Iterations int     `yaml:"iterations"`
	Seed       uint64  `yaml:"seed"`
	PoolSize   int     `yaml:"pool_size"`
	ChunkSize  int     `yaml:"chunk_size"`
	Sublayers  int     `yaml:"sublayers"`
	Scenario   string  `yaml:"scenario"`
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
}

func RegisterLogging(entity *Entity) *Logging {
	return entity.Logging
}

func RegisterHTTP(entity *Entity) *http.Config {
	return entity.HTTP
}

func RegisterDatabase(entity *Entity) *database.Config {
	return entity.Database
}

func RegisterStorage(entity *Entity) *storage.Config {
	if entity.Storage == nil {
		return &storage.Config{}
	}
	return entity.Storage
}

func RegisterSimulation(entity *Entity) *Simulation {
	return entity.Simulation
}
