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

package containers

import (
	"context"
	"fmt"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-errors/errors"
	"github.com/jackc/pgx/v5"
	"github.com/noctarius/pgtemporal/internal/supporting/logging"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"time"
)

const (
	databaseName = "pgtemporal"
	postgresUser = "postgres"
	postgresPass = "postgres"
)

// PostgresImage is the server image used by integration tests.
var PostgresImage = "postgres:16-alpine"

type PostgresContainer struct {
	testcontainers.Container
	ConnString string
}

func (c *PostgresContainer) Connect(
	ctx context.Context,
) (*pgx.Conn, error) {

	return pgx.Connect(ctx, c.ConnString)
}

func (c *PostgresContainer) Terminate() error {
	return c.Container.Terminate(context.Background())
}

// SetupPostgresContainer starts a PostgreSQL server and waits until it
// accepts connections.
func SetupPostgresContainer() (*PostgresContainer, error) {
	logger, err := logging.NewLogger("testcontainers")
	if err != nil {
		return nil, err
	}
	postgresLogger, err := logging.NewLogger("testcontainers-postgres")
	if err != nil {
		return nil, err
	}

	containerRequest := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Cmd:          []string{"-c", "fsync=off"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute),
		Env: map[string]string{
			"POSTGRES_DB":       databaseName,
			"POSTGRES_PASSWORD": postgresPass,
			"POSTGRES_USER":     postgresUser,
		},
		LogConsumerCfg: &testcontainers.LogConsumerConfig{
			Consumers: []testcontainers.LogConsumer{&logConsumer{logger: postgresLogger}},
		},
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: containerRequest,
		Started:          true,
		Logger:           logger,
	})
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, errors.Wrap(err, 0)
	}

	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, errors.Wrap(err, 0)
	}

	postgres := &PostgresContainer{
		Container: container,
		ConnString: fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s", postgresUser, postgresPass, host, port.Int(), databaseName,
		),
	}

	operation := func() error {
		conn, err := postgres.Connect(ctx)
		if err != nil {
			return err
		}
		return conn.Close(ctx)
	}
	if err := backoff.Retry(operation, backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), 10)); err != nil {
		_ = container.Terminate(ctx)
		return nil, errors.Wrap(err, 0)
	}

	logger.Infof("PostgreSQL container ready at %s:%d", host, port.Int())
	return postgres, nil
}
