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
	"github.com/BurntSushi/toml"
	"github.com/go-errors/errors"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"strings"
)

type Format string

const (
	TOML Format = "toml"
	YAML Format = "yaml"
)

// FormatFromPath picks the file format by extension, everything but
// .toml is read as YAML.
func FormatFromPath(
	path string,
) Format {

	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		return TOML
	}
	return YAML
}

func Unmarshall(
	content []byte, config *Config, format Format,
) error {

	switch format {
	case TOML:
		return toml.Unmarshal(content, config)
	case YAML:
		return yaml.Unmarshal(content, config)
	}
	return errors.Errorf("unsupported configuration format: %s", format)
}

// Load reads and decodes the configuration file at path.
func Load(
	path string,
) (*Config, error) {

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	config := &Config{}
	if err := Unmarshall(content, config, FormatFromPath(path)); err != nil {
		return nil, errors.Wrap(err, 0)
	}
	return config, nil
}
