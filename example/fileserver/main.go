/*
 * Copyright 2024 caiflower Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"reflect"
	"time"

	"github.com/caiflower/http-utils/global"
	"github.com/caiflower/http-utils/global/config"
	"github.com/caiflower/http-utils/global/env"
	"github.com/caiflower/http-utils/pkg/emitter"
	"github.com/caiflower/http-utils/pkg/logger"
	"github.com/caiflower/http-utils/pkg/tools"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 配置文件默认为 $CONFIG_PATH/default.yaml，例如
//
//	server:
//	  addr: :8080
//	  root: ./public
//	emitter:
//	  bufferSize: 8192
func main() {
	defaultConfig := config.DefaultConfig{}
	if err := config.LoadDefaultConfig(&defaultConfig); err != nil {
		logger.Warn("load config from %s failed, using defaults. Error: %s", env.ConfigPath, err.Error())
		if err = tools.DoTagFunc(&defaultConfig, []func(reflect.StructField, reflect.Value) error{tools.SetDefaultValueIfNil}); err != nil {
			logger.Fatal("apply default config failed. Error: %s", err.Error())
			return
		}
	}
	logger.InitLogger(&defaultConfig.LoggerConfig)

	mux := http.NewServeMux()
	mux.Handle(defaultConfig.ServerConfig.MetricsPath, promhttp.Handler())
	mux.Handle("/", emitter.Middleware(&fileHandler{
		root:       defaultConfig.ServerConfig.Root,
		maxMemory:  defaultConfig.ServerConfig.MaxMemory,
		bufferSize: defaultConfig.EmitterConfig.BufferSize,
		metric:     emitter.NewMetric(nil),
	}))

	global.DefaultResourceManger.AddDaemon(&httpServer{server: &http.Server{Addr: defaultConfig.ServerConfig.Addr, Handler: mux}})
	global.DefaultResourceManger.Signal()
}

type httpServer struct {
	server *http.Server
}

func (s *httpServer) Name() string {
	return "fileserver"
}

func (s *httpServer) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("fileserver stopped. Error: %s", err.Error())
		}
	}()
	logger.Info("fileserver listening on %s", ln.Addr().String())
	return nil
}

func (s *httpServer) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		logger.Error("fileserver shutdown failed. Error: %s", err.Error())
	}
}
