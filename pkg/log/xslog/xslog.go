package xslog

import (
	"log/slog"

	"github.com/x-thooh/geotech/pkg/log"
)

// New 按日志文档初始化日志体系，并把 slog 默认输出接到 root
func New(cfg *log.Config, opts ...Option) (*Manager, func(), error) {
	m, err := Configure(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(m.Root().Slog())
	return m, func() {
		_ = m.Close()
	}, nil
}
