package storage

import "github.com/x-thooh/geotech/internal/geotech/settlement"

type options struct {
	// 场景文件
	scenario string
	seed     uint64
	// 计算位置
	point  settlement.Point
	labels map[string]string
}

type Option func(*options)

func WithScenario(name string) Option {
	return func(o *options) {
		o.scenario = name
	}
}

func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

func WithPoint(p settlement.Point) Option {
	return func(o *options) {
		o.point = p
	}
}

func WithLabels(labels map[string]string) Option {
	return func(o *options) {
		o.labels = labels
	}
}
