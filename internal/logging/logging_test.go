package logging

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSetupWritesToFile(t *testing.T) {
	defer func() {
		log.SetOutput(os.Stderr)
		gin.DefaultWriter = os.Stdout
		gin.DefaultErrorWriter = os.Stderr
	}()

	path := filepath.Join(t.TempDir(), "logs", "server.log")
	closer, err := Setup(path)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	log.Printf("link created code=%s", "abc123")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "link created code=abc123") {
		t.Errorf("log file missing entry, got %q", string(data))
	}
}

func TestSetupWithoutFile(t *testing.T) {
	closer, err := Setup("")
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
