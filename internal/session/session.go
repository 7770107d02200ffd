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

package session

import (
	"context"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-errors/errors"
	"github.com/jackc/pgx/v5"
	"github.com/noctarius/pgtemporal/internal/supporting/logging"
	spiconfig "github.com/noctarius/pgtemporal/spi/config"
	"github.com/noctarius/pgtemporal/spi/sessionparams"
	"github.com/samber/lo"
	"time"
)

const connectRetries = 3

type Options struct {
	Connection    string
	Password      string
	DateStyle     string
	IntervalStyle string
	// Offline ignores the connection string and only uses the
	// configured styles.
	Offline bool
}

func OptionsFromConfig(
	config *spiconfig.Config,
) Options {

	return Options{
		Connection:    spiconfig.GetOrDefault(config, spiconfig.PropertyPostgresqlConnection, ""),
		Password:      spiconfig.GetOrDefault(config, spiconfig.PropertyPostgresqlPassword, ""),
		DateStyle:     spiconfig.GetOrDefault(config, spiconfig.PropertySessionDateStyle, ""),
		IntervalStyle: spiconfig.GetOrDefault(config, spiconfig.PropertySessionIntervalStyle, ""),
	}
}

func (o Options) parameters() map[string]string {
	parameters := map[string]string{
		sessionparams.DateStyle:     o.DateStyle,
		sessionparams.IntervalStyle: o.IntervalStyle,
	}
	return lo.OmitByValues(parameters, []string{""})
}

// Session provides the session parameters adapters are built against,
// either from a live connection or from static configuration.
type Session struct {
	logger *logging.Logger
	conn   *pgx.Conn
	ctx    *sessionparams.Context
}

func Open(
	ctx context.Context, options Options,
) (*Session, error) {

	logger, err := logging.NewLogger("Session")
	if err != nil {
		return nil, err
	}

	if options.Offline || options.Connection == "" {
		logger.Verbosef("No connection configured, using static session parameters")
		return &Session{
			logger: logger,
			ctx:    sessionparams.NewContext(sessionparams.Static(options.parameters())),
		}, nil
	}

	connConfig, err := pgx.ParseConfig(options.Connection)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	if options.Password != "" {
		connConfig.Password = options.Password
	}

	conn, err := connect(ctx, logger, connConfig)
	if err != nil {
		return nil, err
	}

	s := &Session{
		logger: logger,
		conn:   conn,
		ctx:    sessionparams.NewContext(sessionparams.FromPgConn(conn.PgConn())),
	}

	for _, name := range []string{sessionparams.DateStyle, sessionparams.IntervalStyle} {
		if value, ok := options.parameters()[name]; ok {
			if err := s.Set(ctx, name, value); err != nil {
				_ = conn.Close(ctx)
				return nil, err
			}
		}
	}
	return s, nil
}

func connect(
	ctx context.Context, logger *logging.Logger, connConfig *pgx.ConnConfig,
) (*pgx.Conn, error) {

	var conn *pgx.Conn
	operation := func() error {
		c, err := pgx.ConnectConfig(ctx, connConfig)
		if err != nil {
			logger.Warnf("Connecting to %s:%d failed: %s", connConfig.Host, connConfig.Port, err)
			return err
		}
		conn = c
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, connectRetries), ctx)); err != nil {
		return nil, errors.Wrap(err, 0)
	}

	logger.Infof(
		"Connected to %s:%d, server version %s",
		connConfig.Host, connConfig.Port, conn.PgConn().ParameterStatus("server_version"),
	)
	return conn, nil
}

// Set changes a session parameter on the live connection. The server
// reports the new value back, adapters constructed afterwards see it.
func (s *Session) Set(
	ctx context.Context, name, value string,
) error {

	if s.conn == nil {
		return errors.Errorf("cannot set %s without a connection", name)
	}
	if _, err := s.conn.Exec(ctx, "SELECT set_config($1, $2, false)", name, value); err != nil {
		return errors.Wrap(err, 0)
	}
	s.logger.Debugf("Set %s to '%s', server reports '%s'", name, value, s.conn.PgConn().ParameterStatus(name))
	return nil
}

func (s *Session) Context() *sessionparams.Context {
	return s.ctx
}

func (s *Session) Connected() bool {
	return s.conn != nil
}

func (s *Session) Conn() *pgx.Conn {
	return s.conn
}

// Shutdown closes the connection, if any.
func (s *Session) Shutdown() error {
	if s.conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.conn.Close(ctx)
}
