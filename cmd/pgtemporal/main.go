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

package main

import (
	"fmt"
	"github.com/noctarius/pgtemporal/internal/supporting"
	"github.com/noctarius/pgtemporal/internal/supporting/logging"
	"github.com/noctarius/pgtemporal/internal/version"
	spiconfig "github.com/noctarius/pgtemporal/spi/config"
	"github.com/urfave/cli"
	"log"
	"os"
)

var (
	configurationFile string
	connection        string
	dateStyle         string
	intervalStyle     string
	offline           bool
	verbose           bool
	withCaller        bool

	typeName string
)

var config = &spiconfig.Config{}

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	typeFlag := cli.StringFlag{
		Name:        "type,t",
		Usage:       "Temporal `TYPE` (date, time, timetz, timestamp, timestamptz, interval)",
		Destination: &typeName,
	}

	app := cli.NewApp()
	app.Name = version.BinName
	app.Usage = "DateStyle and IntervalStyle aware PostgreSQL temporal codecs"
	app.Version = fmt.Sprintf("%s (git revision %s; branch %s)", version.Version, version.CommitHash, version.Branch)
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:        "config,c",
			Usage:       "Load configuration from `FILE`",
			EnvVar:      "PGTEMPORAL_CONFIG",
			Destination: &configurationFile,
		},
		cli.StringFlag{
			Name:        "connection",
			Usage:       "PostgreSQL connection `URL`, overrides the configuration",
			Destination: &connection,
		},
		cli.StringFlag{
			Name:        "datestyle",
			Usage:       "DateStyle `VALUE` to use, set on the session when connected",
			Destination: &dateStyle,
		},
		cli.StringFlag{
			Name:        "intervalstyle",
			Usage:       "IntervalStyle `VALUE` to use, set on the session when connected",
			Destination: &intervalStyle,
		},
		cli.BoolFlag{
			Name:        "offline",
			Usage:       "Never connect, only use configured session parameters",
			Destination: &offline,
		},
		cli.BoolFlag{
			Name:        "verbose",
			Usage:       "Show verbose output",
			Destination: &verbose,
		},
		cli.BoolFlag{
			Name:        "caller",
			Usage:       "Collect caller information for log messages",
			Destination: &withCaller,
		},
	}
	app.Before = initialize
	app.Commands = []cli.Command{
		{
			Name:   "styles",
			Usage:  "Print the resolved DateStyle and IntervalStyle",
			Action: stylesCommand,
		},
		{
			Name:      "decode",
			Usage:     "Decode PostgreSQL text output of a temporal type",
			ArgsUsage: "TEXT",
			Flags:     []cli.Flag{typeFlag},
			Action:    decodeCommand,
		},
		{
			Name:      "encode",
			Usage:     "Encode a value into PostgreSQL text input",
			ArgsUsage: "VALUE",
			Flags:     []cli.Flag{typeFlag},
			Action:    encodeCommand,
		},
		{
			Name:   "probe",
			Usage:  "Select sample values on the server and decode its text output",
			Action: probeCommand,
		},
	}
	return app
}

func initialize(*cli.Context) error {
	logging.WithCaller = withCaller
	logging.WithVerbose = verbose

	if configurationFile != "" {
		c, err := spiconfig.Load(configurationFile)
		if err != nil {
			return supporting.AdaptErrorWithMessage(err, "Configuration file couldn't be loaded", 3)
		}
		config = c
	}

	if connection != "" {
		config.PostgreSQL.Connection = connection
	}
	if dateStyle != "" {
		config.Session.DateStyle = dateStyle
	}
	if intervalStyle != "" {
		config.Session.IntervalStyle = intervalStyle
	}

	// stdout carries the command output
	if err := logging.InitializeLogging(config, true); err != nil {
		return supporting.AdaptError(err, 4)
	}
	return nil
}
