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

package v1

import (
	"sync"

	"github.com/modern-go/gls"
)

const (
	RequestID = "X-Request-ID"
)

var localMap sync.Map

func getMapByGoID(goID int64) *sync.Map {
	value, _ := localMap.Load(goID)
	if value == nil {
		_tmp := &sync.Map{}
		localMap.Store(goID, _tmp)
		return _tmp
	}
	return value.(*sync.Map)
}

func PutTraceID(value string) {
	Put(RequestID, value)
}

func GetTraceID() string {
	if v, ok := Get(RequestID).(string); ok {
		return v
	}
	return ""
}

func Put(key string, value interface{}) {
	getMapByGoID(gls.GoID()).Store(key, value)
}

func Get(key string) interface{} {
	value, ok := localMap.Load(gls.GoID())
	if !ok {
		return nil
	}
	v, _ := value.(*sync.Map).Load(key)
	return v
}

// Clean 请求结束时调用，否则goroutine复用的map会一直保留
func Clean() {
	localMap.Delete(gls.GoID())
}
