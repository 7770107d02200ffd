/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements. See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"github.com/noctarius/pgtemporal/spi/sessionparams"
	"os"
	"reflect"
	"strings"
	"time"
)

type PostgreSQLConfig struct {
	Connection string `toml:"connection" yaml:"connection"`
	Password   string `toml:"password" yaml:"password"`
}

// SessionConfig describes the session parameters used when no live
// connection reports them. Unset values fall back to the server defaults.
type SessionConfig struct {
	DateStyle     string `toml:"datestyle" yaml:"datestyle"`
	IntervalStyle string `toml:"intervalstyle" yaml:"intervalstyle"`
}

type Config struct {
	PostgreSQL PostgreSQLConfig `toml:"postgresql" yaml:"postgresql"`
	Session    SessionConfig    `toml:"session" yaml:"session"`
	Logging    LoggerConfig     `toml:"logging" yaml:"logging"`
}

type LoggerConfig struct {
	Level   string                     `toml:"level" yaml:"level"`
	Outputs LoggerOutputConfig         `toml:"output" yaml:"output"`
	Loggers map[string]SubLoggerConfig `toml:"loggers" yaml:"loggers"`
}

type LoggerOutputConfig struct {
	Console LoggerConsoleConfig `toml:"console" yaml:"console"`
	File    LoggerFileConfig    `toml:"file" yaml:"file"`
}

type SubLoggerConfig struct {
	Level   *string            `toml:"level" yaml:"level"`
	Outputs LoggerOutputConfig `toml:"output" yaml:"output"`
}

type LoggerConsoleConfig struct {
	Enabled *bool `toml:"enabled" yaml:"enabled"`
}

type LoggerFileConfig struct {
	Enabled     *bool          `toml:"enabled" yaml:"enabled"`
	Path        string         `toml:"path" yaml:"path"`
	Rotate      *bool          `toml:"rotate" yaml:"rotate"`
	MaxSize     *string        `toml:"maxsize" yaml:"maxsize"`
	MaxDuration *time.Duration `toml:"maxduration" yaml:"maxduration"`
	Compress    bool           `toml:"compress" yaml:"compress"`
}

// GetOrDefault reads the property addressed by its dotted toml path. An
// environment variable named after the path (upper case, dots replaced
// by underscores, underscores doubled) takes precedence over the file.
func GetOrDefault[V any](
	config *Config, canonicalProperty string, defaultValue V,
) V {

	if env, found := findEnvProperty(canonicalProperty, defaultValue); found {
		return env
	}

	element := reflect.ValueOf(*config)
	for _, property := range strings.Split(canonicalProperty, ".") {
		e, ok := findProperty(element, property)
		if !ok {
			return defaultValue
		}
		element = e
	}

	if element.IsZero() {
		return defaultValue
	}
	if element.Kind() == reflect.Ptr {
		element = element.Elem()
	}
	return element.Convert(reflect.TypeOf(defaultValue)).Interface().(V)
}

// SessionParameters returns the configured session parameters keyed by
// their server names. Parameters without a value are left out.
func SessionParameters(
	config *Config,
) map[string]string {

	parameters := make(map[string]string)
	if dateStyle := GetOrDefault(config, PropertySessionDateStyle, ""); dateStyle != "" {
		parameters[sessionparams.DateStyle] = dateStyle
	}
	if intervalStyle := GetOrDefault(config, PropertySessionIntervalStyle, ""); intervalStyle != "" {
		parameters[sessionparams.IntervalStyle] = intervalStyle
	}
	return parameters
}

func envVarName(
	canonicalProperty string,
) string {

	name := strings.ToUpper(canonicalProperty)
	name = strings.ReplaceAll(name, "_", "__")
	return strings.ReplaceAll(name, ".", "_")
}

func findEnvProperty[V any](
	canonicalProperty string, defaultValue V,
) (V, bool) {

	val, ok := os.LookupEnv(envVarName(canonicalProperty))
	if !ok {
		return defaultValue, false
	}

	t := reflect.TypeOf(defaultValue)
	v := reflect.ValueOf(val)
	if !v.CanConvert(t) {
		return defaultValue, false
	}
	if cv := v.Convert(t); !cv.IsZero() {
		return cv.Interface().(V), true
	}
	return defaultValue, false
}

func findProperty(
	element reflect.Value, property string,
) (reflect.Value, bool) {

	t := element.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" && !f.Anonymous {
			continue
		}

		if f.Tag.Get("toml") == property {
			return element.Field(i), true
		}
	}
	return reflect.Value{}, false
}
