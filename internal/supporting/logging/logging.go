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

package logging

import (
	"fmt"
	"github.com/go-errors/errors"
	"github.com/gookit/color"
	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
	"github.com/gookit/slog/rotatefile"
	"github.com/inhies/go-bytesize"
	spiconfig "github.com/noctarius/pgtemporal/spi/config"
	"os"
	"strings"
	"sync"
	"time"
)

var WithVerbose = false
var WithCaller = false

const (
	VerboseLevel slog.Level = 650

	defaultMaxFileSize bytesize.ByteSize = 5 * bytesize.MB
	fileBufferSize                       = 1024
)

var levelNames = map[string]slog.Level{
	"panic":   slog.PanicLevel,
	"fatal":   slog.FatalLevel,
	"err":     slog.ErrorLevel,
	"error":   slog.ErrorLevel,
	"warn":    slog.WarnLevel,
	"warning": slog.WarnLevel,
	"notice":  slog.NoticeLevel,
	"info":    slog.InfoLevel,
	"verbose": VerboseLevel,
	"debug":   slog.DebugLevel,
	"trace":   slog.TraceLevel,
}

// registry holds the handlers shared by all named loggers.
type registry struct {
	mutex          sync.Mutex
	initialized    bool
	config         spiconfig.LoggerConfig
	level          slog.Level
	console        slog.Handler
	consoleEnabled bool
	file           *handler.SyncCloseHandler
	files          map[string]*handler.SyncCloseHandler
}

var handlers = &registry{
	files: make(map[string]*handler.SyncCloseHandler),
}

// InitializeLogging sets up the console and file handlers from the
// logging section of the configuration. Loggers created before keep
// their handlers.
func InitializeLogging(
	config *spiconfig.Config, logToStdErr bool,
) error {

	handlers.mutex.Lock()
	defer handlers.mutex.Unlock()
	return handlers.initialize(config.Logging, logToStdErr)
}

func (r *registry) initialize(
	config spiconfig.LoggerConfig, logToStdErr bool,
) error {

	registerVerboseLevel()

	r.config = config
	r.level = ParseLevel(config.Level)
	r.console = newConsoleHandler(logToStdErr)
	r.consoleEnabled = enabledOrDefault(config.Outputs.Console.Enabled, true)

	_, file, err := r.fileHandler(config.Outputs.File)
	if err != nil {
		return err
	}
	r.file = file
	r.initialized = true
	return nil
}

func registerVerboseLevel() {
	if _, ok := slog.LevelNames[VerboseLevel]; ok {
		return
	}

	slog.LevelNames[VerboseLevel] = "VERBOSE"
	slog.AllLevels = slog.Levels{
		slog.PanicLevel,
		slog.FatalLevel,
		slog.ErrorLevel,
		slog.WarnLevel,
		slog.NoticeLevel,
		slog.InfoLevel,
		VerboseLevel,
		slog.DebugLevel,
		slog.TraceLevel,
	}
	slog.NormalLevels = slog.Levels{
		slog.InfoLevel,
		slog.NoticeLevel,
		slog.DebugLevel,
		slog.TraceLevel,
		VerboseLevel,
	}
	slog.ColorTheme[VerboseLevel] = color.FgLightGreen
}

func newConsoleHandler(
	logToStdErr bool,
) slog.Handler {

	template := "[{{datetime}}] [{{level}}] {{message}} {{data}} {{extra}}\n"
	if WithCaller {
		template = "[{{datetime}}] [{{level}}] [{{caller}}] {{message}} {{data}} {{extra}}\n"
	}

	consoleHandler := handler.NewConsoleHandler(slog.AllLevels)
	consoleHandler.TextFormatter().SetTemplate(template)
	if logToStdErr {
		consoleHandler.IOWriterHandler = *handler.NewIOWriterHandler(os.Stderr, slog.AllLevels)
	}
	return &syncConsoleHandler{ConsoleHandler: consoleHandler}
}

type syncConsoleHandler struct {
	*handler.ConsoleHandler
	mutex sync.Mutex
}

func (h *syncConsoleHandler) Handle(
	record *slog.Record,
) error {

	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.ConsoleHandler.Handle(record)
}

// Logger is a named logger. Messages are prefixed with the name and
// filtered by the level configured for it.
type Logger struct {
	slogger *slog.Logger
	level   slog.Level
	name    string
}

func NewLogger(
	name string,
) (*Logger, error) {

	handlers.mutex.Lock()
	defer handlers.mutex.Unlock()

	if !handlers.initialized {
		if err := handlers.initialize(spiconfig.LoggerConfig{}, false); err != nil {
			return nil, err
		}
	}

	level := handlers.level
	consoleEnabled := handlers.consoleEnabled
	file := handlers.file

	if config, found := handlers.config.Loggers[name]; found {
		if config.Level != nil {
			level = ParseLevel(*config.Level)
		}
		consoleEnabled = enabledOrDefault(config.Outputs.Console.Enabled, true)

		found, loggerFile, err := handlers.fileHandler(config.Outputs.File)
		if err != nil {
			return nil, err
		}
		if found {
			file = loggerFile
		}
	}

	attached := make([]slog.Handler, 0, 2)
	if consoleEnabled {
		attached = append(attached, handlers.console)
	}
	if file != nil {
		attached = append(attached, file)
	}

	slogger := slog.NewWithName(name, func(l *slog.Logger) {
		l.CallerSkip += 2
		l.ReportCaller = WithCaller
		l.AddHandlers(attached...)
	})

	return &Logger{
		slogger: slogger,
		level:   level,
		name:    name,
	}, nil
}

func (l *Logger) Name() string {
	return l.name
}

func (l *Logger) Tracef(format string, args ...any) {
	l.logf(slog.TraceLevel, format, args)
}

func (l *Logger) Debugf(format string, args ...any) {
	l.logf(slog.DebugLevel, format, args)
}

func (l *Logger) Verbosef(format string, args ...any) {
	l.logf(VerboseLevel, format, args)
}

func (l *Logger) Printf(format string, args ...any) {
	l.logf(slog.InfoLevel, format, args)
}

func (l *Logger) Infof(format string, args ...any) {
	l.logf(slog.InfoLevel, format, args)
}

func (l *Logger) Infoln(args ...any) {
	l.log(slog.InfoLevel, args)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.logf(slog.WarnLevel, format, args)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.logf(slog.ErrorLevel, format, args)
}

// Enabled reports whether messages of the given level are written.
func (l *Logger) Enabled(
	level slog.Level,
) bool {

	return l.level >= level || (level == VerboseLevel && WithVerbose)
}

func (l *Logger) logf(
	level slog.Level, format string, args []any,
) {

	if l.Enabled(level) {
		format = strings.TrimSuffix(format, "\n")
		l.slogger.Logf(level, fmt.Sprintf("[%s] %s", l.name, format), args...)
	}
}

func (l *Logger) log(
	level slog.Level, args []any,
) {

	if l.Enabled(level) {
		args = append([]any{fmt.Sprintf("[%s]", l.name)}, args...)
		l.slogger.Log(level, args...)
	}
}

// ParseLevel maps a level name to its slog level, unknown names map to
// info.
func ParseLevel(
	name string,
) slog.Level {

	if level, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return level
	}
	return slog.InfoLevel
}

func enabledOrDefault(
	enabled *bool, defaultValue bool,
) bool {

	if enabled == nil {
		return defaultValue
	}
	return *enabled
}

// fileHandler returns the handler for the file config, cached by path.
// The first return value is false if file output is disabled.
func (r *registry) fileHandler(
	config spiconfig.LoggerFileConfig,
) (bool, *handler.SyncCloseHandler, error) {

	if !enabledOrDefault(config.Enabled, false) {
		return false, nil, nil
	}

	if h, ok := r.files[config.Path]; ok {
		return true, h, nil
	}

	h, err := openFileHandler(config)
	if err != nil {
		return false, nil, err
	}
	r.files[config.Path] = h
	return true, h, nil
}

func openFileHandler(
	config spiconfig.LoggerFileConfig,
) (*handler.SyncCloseHandler, error) {

	configurator := func(c *handler.Config) {
		c.Levels = slog.AllLevels
		c.Level = slog.TraceLevel
		c.Compress = config.Compress
	}

	var h *handler.SyncCloseHandler
	var err error
	switch {
	case !enabledOrDefault(config.Rotate, false):
		h, err = handler.NewBuffFileHandler(config.Path, fileBufferSize, configurator)

	case config.MaxDuration != nil:
		seconds := rotatefile.RotateTime((time.Second * *config.MaxDuration).Seconds())
		h, err = handler.NewTimeRotateFileHandler(config.Path, seconds, configurator)

	default:
		maxSize := defaultMaxFileSize
		if config.MaxSize != nil {
			maxSize, err = bytesize.Parse(*config.MaxSize)
			if err != nil {
				return nil, errors.Errorf("failed to parse max size property '%s' => %s", *config.MaxSize, err)
			}
		}
		h, err = handler.NewSizeRotateFileHandler(config.Path, int(maxSize), configurator)
	}

	if err != nil {
		return nil, errors.Errorf("failed to initialize logfile handler for %s => %s", config.Path, err)
	}
	return h, nil
}
