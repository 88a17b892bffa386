package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogActionCreatesFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs.json")
	t.Setenv("ACTION_LOG_PATH", logPath)

	err := LogAction("admin@quickannonce.com", "moderate_ad", map[string]interface{}{
		"ad_id":  42,
		"action": "approve",
	})
	assert.NoError(t, err)

	data, err := os.ReadFile(logPath)
	assert.NoError(t, err)

	var entries []ActionLogEntry
	assert.NoError(t, json.Unmarshal(data, &entries))
	assert.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "admin@quickannonce.com", entry.User)
	assert.Equal(t, "moderate_ad", entry.Action)
	assert.Equal(t, "approve", entry.Details["action"])
	assert.WithinDuration(t, time.Now(), entry.Timestamp, 5*time.Second)
}

func TestLogActionAppendsEntries(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs.json")
	t.Setenv("ACTION_LOG_PATH", logPath)

	assert.NoError(t, LogAction("admin@quickannonce.com", "create_ad", map[string]interface{}{"ad_id": 1}))
	assert.NoError(t, LogAction("admin@quickannonce.com", "delete_ad", map[string]interface{}{"ad_id": 1}))

	data, err := os.ReadFile(logPath)
	assert.NoError(t, err)

	var entries []ActionLogEntry
	assert.NoError(t, json.Unmarshal(data, &entries))
	assert.Len(t, entries, 2)
	assert.Equal(t, "create_ad", entries[0].Action)
	assert.Equal(t, "delete_ad", entries[1].Action)
}

func TestLogActionRecoversFromCorruptFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs.json")
	t.Setenv("ACTION_LOG_PATH", logPath)

	assert.NoError(t, os.WriteFile(logPath, []byte("{pas du json"), 0644))

	assert.NoError(t, LogAction("admin@quickannonce.com", "update_user", map[string]interface{}{"user_id": 7}))

	data, err := os.ReadFile(logPath)
	assert.NoError(t, err)

	var entries []ActionLogEntry
	assert.NoError(t, json.Unmarshal(data, &entries))
	assert.Len(t, entries, 1)
}
