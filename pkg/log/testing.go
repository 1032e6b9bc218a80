package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// lockedBuffer serialises writes from loggers shared across goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf *bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *lockedBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// TestLogger は出力をメモリに溜めるテスト用ロガー
//
// 本番と同じ zerolog の JSON 形式で書き出すので、フィールド名や
// エラーの展開方法はそのまま検証できる（タイムスタンプのみ省略）。
//
//	logger, _ := log.NewTestLogger(log.LevelDebug)
//	p, _ := pipeline.Train(pipeline.WithLogger(logger))
//	if !logger.ContainsField(log.OperationKey, log.OperationFit) { ... }
type TestLogger struct {
	Logger
	out *lockedBuffer
}

// NewTestLogger returns a logger capturing entries at or above level, and the
// buffer it writes to.
func NewTestLogger(level Level) (*TestLogger, *bytes.Buffer) {
	out := &lockedBuffer{buf: &bytes.Buffer{}}
	return newTestLogger(out, level), out.buf
}

func newTestLogger(out *lockedBuffer, level Level) *TestLogger {
	zl := zerolog.New(out).Level(toZerologLevel(level))
	return &TestLogger{Logger: NewZerologLogger(zl), out: out}
}

// GetBuffer returns the underlying buffer.
func (t *TestLogger) GetBuffer() *bytes.Buffer {
	return t.out.buf
}

// GetLogEntries decodes every captured line.
func (t *TestLogger) GetLogEntries() ([]map[string]interface{}, error) {
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(t.out.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ContainsMessage reports whether any captured output contains message.
func (t *TestLogger) ContainsMessage(message string) bool {
	return strings.Contains(t.out.String(), message)
}

// ContainsField reports whether some entry has key == value. JSON numbers
// decode to float64, so pass 42.0 rather than 42.
func (t *TestLogger) ContainsField(key string, value interface{}) bool {
	entries, err := t.GetLogEntries()
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if v, ok := entry[key]; ok && v == value {
			return true
		}
	}
	return false
}

// Clear drops everything captured so far.
func (t *TestLogger) Clear() {
	t.out.Reset()
}

// TestLoggerProvider implements LoggerProvider over one shared buffer.
type TestLoggerProvider struct {
	mu    sync.RWMutex
	out   *lockedBuffer
	level Level
}

// NewTestLoggerProvider returns a provider and the buffer all its loggers write to.
func NewTestLoggerProvider(level Level) (*TestLoggerProvider, *bytes.Buffer) {
	out := &lockedBuffer{buf: &bytes.Buffer{}}
	return &TestLoggerProvider{out: out, level: level}, out.buf
}

func (p *TestLoggerProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return newTestLogger(p.out, p.level)
}

func (p *TestLoggerProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

// SetLevel affects loggers obtained after the call.
func (p *TestLoggerProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
}

// GetBuffer returns the shared buffer.
func (p *TestLoggerProvider) GetBuffer() *bytes.Buffer {
	return p.out.buf
}
