package log

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

// TestLoggerInterface tests the TestLogger implementation of Logger
func TestLoggerInterface(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", "operation", "test")
	testLogger.Warn("warning message", "warning_code", "UNSEEN_CATEGORY")
	testLogger.Error("error message", fmt.Errorf("test error"), ErrorCodeKey, "INVALID_INPUT")

	if buffer.String() == "" {
		t.Fatal("Expected log output, got empty string")
	}

	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		if !testLogger.ContainsMessage(msg) {
			t.Errorf("%q not found in output", msg)
		}
	}

	if !testLogger.ContainsField("key1", "value1") {
		t.Error("Expected field key1=value1 not found")
	}
	if !testLogger.ContainsField("number", 42.0) { // JSON numbers decode to float64
		t.Error("Expected field number=42 not found")
	}
	if !testLogger.ContainsField(ErrorKey, "test error") {
		t.Error("Leading error should be recorded under the error key")
	}
}

// TestLoggerWith tests context-aware logging
func TestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(
		ModelNameKey, "LinearRegression",
		ComponentKey, "pipeline",
	)
	contextLogger.Info("contextual message", OperationKey, OperationFit)

	if !testLogger.ContainsField(ModelNameKey, "LinearRegression") {
		t.Error("Model name context not found")
	}
	if !testLogger.ContainsField(ComponentKey, "pipeline") {
		t.Error("Component context not found")
	}
	if !testLogger.ContainsField(OperationKey, OperationFit) {
		t.Error("Operation field not found")
	}
}

func TestLoggerEnabled(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelWarn)
	ctx := context.Background()

	if testLogger.Enabled(ctx, LevelDebug) {
		t.Error("Debug should be disabled at warn level")
	}
	if testLogger.Enabled(ctx, LevelInfo) {
		t.Error("Info should be disabled at warn level")
	}
	if !testLogger.Enabled(ctx, LevelWarn) || !testLogger.Enabled(ctx, LevelError) {
		t.Error("Warn and Error should be enabled at warn level")
	}

	testLogger.Info("suppressed")
	if testLogger.ContainsMessage("suppressed") {
		t.Error("Info message should not be captured at warn level")
	}
}

func TestMLAttributeKeys(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	testLogger.Info("Model evaluated",
		OperationKey, OperationScore,
		PhaseKey, PhaseValidation,
		SamplesKey, 1000,
		FeaturesKey, 11,
		ModelNameKey, "LinearRegression",
		R2ScoreKey, 0.62,
		RMSEKey, 1234567,
	)

	entries, err := testLogger.GetLogEntries()
	if err != nil {
		t.Fatalf("Failed to parse log entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(entries))
	}

	expected := map[string]interface{}{
		OperationKey: OperationScore,
		PhaseKey:     PhaseValidation,
		SamplesKey:   1000.0,
		FeaturesKey:  11.0,
		ModelNameKey: "LinearRegression",
		R2ScoreKey:   0.62,
		RMSEKey:      1234567.0,
	}
	for key, want := range expected {
		if got := entries[0][key]; got != want {
			t.Errorf("%s: expected %v, got %v", key, want, got)
		}
	}
}

func TestLoggerProviderIntegration(t *testing.T) {
	provider, _ := NewTestLoggerProvider(LevelInfo)

	logger := provider.GetLoggerWithName("encoder")
	logger.Info("Fitted", SamplesKey, 5000)

	testLogger := provider.GetLogger().(*TestLogger)
	if !testLogger.ContainsField(ComponentKey, "encoder") {
		t.Error("Named logger should carry the component field")
	}

	provider.SetLevel(LevelError)
	if provider.GetLogger().Enabled(context.Background(), LevelInfo) {
		t.Error("SetLevel should raise the minimum level")
	}
}

func TestGlobalProviderSwap(t *testing.T) {
	provider, _ := NewTestLoggerProvider(LevelDebug)
	SetProvider(provider)
	t.Cleanup(func() { SetProvider(mustDefaultProvider()) })

	GetLoggerWithName("server").Info("listening", "port", 8080)

	testLogger := provider.GetLogger().(*TestLogger)
	if !testLogger.ContainsMessage("listening") {
		t.Error("Global logger should write through the installed provider")
	}
	if !testLogger.ContainsField(ComponentKey, "server") {
		t.Error("Expected component=server")
	}
}

func TestConcurrentLogging(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			child := testLogger.With("goroutine", id)
			for i := 0; i < 10; i++ {
				child.Info("concurrent message", "iteration", i)
			}
		}(g)
	}
	wg.Wait()

	entries, err := testLogger.GetLogEntries()
	if err != nil {
		t.Fatalf("Failed to parse log entries: %v", err)
	}
	if len(entries) != 100 {
		t.Errorf("Expected 100 log entries, got %d", len(entries))
	}
}

func BenchmarkLogging(b *testing.B) {
	testLogger, _ := NewTestLogger(LevelInfo)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		testLogger.Info("benchmark message", OperationKey, OperationPredict, "iteration", i)
	}
}
