package services

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// ActionLogEntry représente une action d'administration consignée dans le journal.
type ActionLogEntry struct {
	User      string                 `json:"user"`
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details"`
	Timestamp time.Time              `json:"timestamp"`
}

var actionLogMu sync.Mutex

func actionLogPath() string {
	path := os.Getenv("ACTION_LOG_PATH")
	if path == "" {
		path = "logs.json"
	}
	return path
}

// LogAction ajoute une entrée au journal d'actions JSON. Le fichier contient un
// tableau JSON, relu puis réécrit en entier à chaque ajout.
func LogAction(user string, action string, details map[string]interface{}) error {
	actionLogMu.Lock()
	defer actionLogMu.Unlock()

	path := actionLogPath()

	var entries []ActionLogEntry
	data, err := os.ReadFile(path)
	if err == nil && len(data) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			// Fichier corrompu: on repart d'un journal vide plutôt que de bloquer l'action
			entries = nil
		}
	} else if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("lecture du journal d'actions: %v", err)
	}

	entries = append(entries, ActionLogEntry{
		User:      user,
		Action:    action,
		Details:   details,
		Timestamp: time.Now(),
	})

	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encodage du journal d'actions: %v", err)
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("écriture du journal d'actions: %v", err)
	}

	return nil
}
