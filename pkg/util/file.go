package util

import (
	"path"
	"path/filepath"
	"runtime"
)

// GetCurrentAbPathByCaller 获取调用方源文件所在目录（go run）
func GetCurrentAbPathByCaller(skip int) string {
	var abPath string
	_, filename, _, ok := runtime.Caller(skip)
	if ok {
		abPath = path.Dir(filename)
	}
	return abPath
}

// AbPath 相对路径按调用方源文件目录解析
func AbPath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(GetCurrentAbPathByCaller(2), file)
}
