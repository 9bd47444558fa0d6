package editor

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func writeCSV(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0640); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

// TestWatcher_NotifiesOnExternalWrite verifies that a write to the
// watched file surfaces as a notification after the debounce window.
func TestWatcher_NotifiesOnExternalWrite(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "metadata.csv")
	writeCSV(t, csvPath, "id\n")

	notified := make(chan struct{}, 1)
	w, err := NewWatcher(csvPath, zap.NewNop(), func() {
		select {
		case notified <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()

	writeCSV(t, csvPath, "id\nrow\n")

	select {
	case <-notified:
	case <-time.After(3 * time.Second):
		t.Fatal("Expected a notification for the external write")
	}
}

// TestWatcher_StopCancelsPendingNotify verifies that a change arriving
// just before Stop never fires a notification afterwards.
func TestWatcher_StopCancelsPendingNotify(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "metadata.csv")
	writeCSV(t, csvPath, "id\n")

	var fired atomic.Int32
	w, err := NewWatcher(csvPath, zap.NewNop(), func() { fired.Add(1) })
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	writeCSV(t, csvPath, "id\nrow\n")
	w.Stop()
	w.Stop()

	// Longer than the debounce window, so a leaked timer would have fired
	time.Sleep(700 * time.Millisecond)
	if n := fired.Load(); n != 0 {
		t.Errorf("Expected no notification after Stop, got %d", n)
	}
}
