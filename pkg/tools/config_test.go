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

package tools

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type TestConfig struct {
	Name    string       `yaml:"name" default:"test"`
	Age     int          `yaml:"age" default:"30"`
	Age2    int8         `yaml:"age2" default:"1"`
	Size    uint32       `yaml:"size" default:"65536"`
	Money   float64      `yaml:"money" default:"1.5"`
	Enable  bool         `yaml:"enable" default:"true"`
	Test    *TestConfig1 `yaml:"test1"`
	Test2   TestConfig1  `yaml:"test2"`
	PtrInt  *int         `yaml:"ptrInt" default:"1"`
	Str1    *string      `yaml:"str1" default:"test"`
	NoTag   int          `yaml:"noTag"`
	private string       `default:"test"`
}

type TestConfig1 struct {
	Name string `yaml:"name" default:"nested"`
	Num  int    `yaml:"num" default:"2"`
}

func TestSetDefaultValueIfNil(t *testing.T) {
	c := &TestConfig{Age: 18, Test: &TestConfig1{}}
	err := DoTagFunc(c, []func(reflect.StructField, reflect.Value) error{SetDefaultValueIfNil})
	assert.Nil(t, err)

	assert.Equal(t, "test", c.Name)
	assert.Equal(t, 18, c.Age)
	assert.EqualValues(t, 1, c.Age2)
	assert.EqualValues(t, 65536, c.Size)
	assert.Equal(t, 1.5, c.Money)
	assert.True(t, c.Enable)
	assert.Equal(t, "nested", c.Test.Name)
	assert.Equal(t, 2, c.Test2.Num)
	assert.Equal(t, 1, *c.PtrInt)
	assert.Equal(t, "test", *c.Str1)
	assert.Equal(t, 0, c.NoTag)
	assert.Equal(t, "", c.private)
}

func TestDoTagFuncInvalid(t *testing.T) {
	assert.Nil(t, DoTagFunc(nil, nil))
	assert.NotNil(t, DoTagFunc(TestConfig{}, nil))

	type bad struct {
		N int `default:"abc"`
	}
	assert.NotNil(t, DoTagFunc(&bad{}, []func(reflect.StructField, reflect.Value) error{SetDefaultValueIfNil}))
}

func TestLoadConfig(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.yaml")
	assert.Nil(t, os.WriteFile(filename, []byte("name: from-yaml\ntest2:\n  num: 7\n"), 0644))

	c := &TestConfig{}
	assert.Nil(t, LoadConfig(filename, c))
	assert.Equal(t, "from-yaml", c.Name)
	assert.Equal(t, 30, c.Age)
	assert.Equal(t, 7, c.Test2.Num)
	assert.Equal(t, "nested", c.Test2.Name)

	assert.NotNil(t, LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), c))
}
