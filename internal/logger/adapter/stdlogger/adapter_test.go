package stdlogger_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparti-cms/sparti-settings/internal/logger/adapter/stdlogger"

	"github.com/sparti-cms/sparti-settings/internal/logger"
)

func TestNew(t *testing.T) {
	err := logger.Init(logger.Log{
		LogLevel:    "info",
		AppName:     "test",
		ServiceName: "test",
		Console: logger.Console{
			Enabled:          true,
			UseConsoleWriter: true,
		},
	})
	require.NoError(t, err)

	testLogger := stdlogger.New()

	t.Log("zerolog stdlogger with InfoLevel was successfully created. No Debug should be shown")
	arch := runtime.GOARCH
	// this 3 log messages should be shown...
	testLogger.Infof("%s: this testLogger implements Infof()", arch)
	testLogger.Errorf("%v: this testLogger implements Errorf()", errors.New("this a generic error")) //nolint:goerr113
	testLogger.Warningf("%d: this testLogger implements Warningf()", runtime.NumCPU())

	// this one not
	testLogger.Debugf("%s: this testLogger implements Debugf()", runtime.GOOS)
}

func TestAdapter(t *testing.T) {
	testCases := []struct {
		name          string
		cfg           logger.Log
		logger        *stdlogger.Logger
		expectedParts []string
		missingParts  []string
	}{
		{
			name: "info level hides debug",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true},
			},
			logger:        stdlogger.New(),
			expectedParts: []string{"test info", "test warning", "test error", "test printf"},
			missingParts:  []string{"test debug"},
		},
		{
			name: "component is tagged",
			cfg: logger.Log{
				LogLevel:    "debug",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true},
			},
			logger:        stdlogger.NewComponent("gorm", zerolog.WarnLevel),
			expectedParts: []string{`"component":"gorm"`, "test debug", `"component":"gorm","message":"test printf"`},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := testLoggerConfig(t, tc.cfg, tc.logger)

			for _, part := range tc.expectedParts {
				assert.Contains(t, out, part)
			}

			for _, part := range tc.missingParts {
				assert.NotContains(t, out, part)
			}
		})
	}
}

func testLoggerConfig(t *testing.T, cfg logger.Log, testLogger *stdlogger.Logger) string {
	t.Helper()
	// keep default std out
	stdout := os.Stdout
	stderr := os.Stderr

	// capture stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	os.Stderr = w

	err := logger.Init(cfg)
	if err != nil {
		t.Error(err)
	}

	testLogger.Debugf("stdloggger %s", "test debug")
	testLogger.Infof("stdloggger %s", "test info")
	testLogger.Warningf("stdloggger %s", "test warning")
	testLogger.Errorf("stdloggger %s", "test error")
	testLogger.Printf("%s", "test printf")

	outC := make(chan string)
	// copy the output in a separate goroutine so printing can't block indefinitely
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	// back to normal state
	_ = w.Close()
	os.Stdout = stdout // restoring the real stdout
	os.Stderr = stderr // restoring the real stderr

	return <-outC
}
