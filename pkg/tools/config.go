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
	"fmt"
	"os"
	"reflect"
	"strconv"

	"github.com/modern-go/reflect2"
	"gopkg.in/yaml.v2"
)

// LoadConfig 读取yaml配置文件，并对零值字段填充 default tag
func LoadConfig(filename string, v interface{}) error {
	if err := UnmarshalFileYaml(filename, v); err != nil {
		return err
	}

	return DoTagFunc(v, []func(reflect.StructField, reflect.Value) error{SetDefaultValueIfNil})
}

func UnmarshalFileYaml(filename string, v interface{}) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(content, v)
}

// DoTagFunc 对结构体指针的每个字段依次执行fn
func DoTagFunc(v interface{}, fn []func(reflect.StructField, reflect.Value) error) error {
	if reflect2.IsNil(v) {
		return nil
	}

	vType := reflect2.TypeOf(v).Type1()
	if vType.Kind() != reflect.Ptr || vType.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("DoTagFunc expects a pointer to struct, got %s", vType.String())
	}

	indirect := reflect.Indirect(reflect.ValueOf(v))
	for i := 0; i < indirect.NumField(); i++ {
		field := indirect.Field(i)
		fieldStruct := vType.Elem().Field(i)

		for _, f := range fn {
			if err := f(fieldStruct, field); err != nil {
				return err
			}
		}
	}

	return nil
}

func SetDefaultValueIfNil(structField reflect.StructField, vValue reflect.Value) error {
	if !vValue.CanSet() {
		return nil
	}

	tag, hasTag := structField.Tag.Lookup("default")

	switch vValue.Kind() {
	case reflect.Struct:
		for i := 0; i < vValue.NumField(); i++ {
			if err := SetDefaultValueIfNil(structField.Type.Field(i), vValue.Field(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Ptr:
		elemKind := structField.Type.Elem().Kind()
		if vValue.IsNil() {
			if !hasTag || elemKind == reflect.Struct {
				return nil
			}
			vValue.Set(reflect.New(structField.Type.Elem()))
		}
		elemField := structField
		elemField.Type = structField.Type.Elem()
		return SetDefaultValueIfNil(elemField, vValue.Elem())
	}

	if !hasTag || !vValue.IsZero() {
		return nil
	}

	switch vValue.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(tag, 10, 64)
		if err != nil {
			return fmt.Errorf("field %s: invalid default %q: %w", structField.Name, tag, err)
		}
		vValue.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(tag, 10, 64)
		if err != nil {
			return fmt.Errorf("field %s: invalid default %q: %w", structField.Name, tag, err)
		}
		vValue.SetUint(v)
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(tag, 64)
		if err != nil {
			return fmt.Errorf("field %s: invalid default %q: %w", structField.Name, tag, err)
		}
		vValue.SetFloat(v)
	case reflect.String:
		vValue.SetString(tag)
	case reflect.Bool:
		v, err := strconv.ParseBool(tag)
		if err != nil {
			return fmt.Errorf("field %s: invalid default %q: %w", structField.Name, tag, err)
		}
		vValue.SetBool(v)
	}

	return nil
}
