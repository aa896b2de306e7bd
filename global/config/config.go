package config

import (
	"github.com/caiflower/http-utils/global/env"
	"github.com/caiflower/http-utils/pkg/emitter"
	"github.com/caiflower/http-utils/pkg/logger"
	"github.com/caiflower/http-utils/pkg/tools"
)

type DefaultConfig struct {
	LoggerConfig  logger.Config  `yaml:"logger"`
	EmitterConfig emitter.Config `yaml:"emitter"`
	ServerConfig  ServerConfig   `yaml:"server"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr" default:":8080"`
	Root        string `yaml:"root" default:"./public"`      // 静态文件目录
	MaxMemory   int64  `yaml:"maxMemory" default:"33554432"` // multipart 表单保存在内存中的最大字节数
	MetricsPath string `yaml:"metricsPath" default:"/metrics"`
}

func LoadDefaultConfig(v *DefaultConfig) (err error) {
	err = tools.LoadConfig(env.ConfigPath+"/default.yaml", v)
	return
}
