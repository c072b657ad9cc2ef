package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	deepseek "github.com/hunjixin/deepseek-api"
)

const currentVersion = 1

// envelope is the v1 wire format for a persisted session.
type envelope struct {
	Version   int          `json:"version"`
	ID        string       `json:"id"`
	Model     string       `json:"model"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Usage     usageDTO     `json:"usage"`
	Messages  []messageDTO `json:"messages"`
}

// MarshalSession serializes a Session to JSON in v1 envelope format.
func MarshalSession(s deepseek.Session) ([]byte, error) {
	env := envelope{
		Version:   currentVersion,
		ID:        s.ID,
		Model:     string(s.Model),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Usage:     marshalUsage(s.Usage),
		Messages:  make([]messageDTO, len(s.Messages)),
	}
	for i, msg := range s.Messages {
		env.Messages[i] = marshalMessage(msg)
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalSession deserializes a Session from JSON in v1 envelope format.
func UnmarshalSession(data []byte) (deepseek.Session, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return deepseek.Session{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != currentVersion {
		return deepseek.Session{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	msgs := make([]deepseek.Message, len(env.Messages))
	for i, dto := range env.Messages {
		msg, err := unmarshalMessage(dto)
		if err != nil {
			return deepseek.Session{}, fmt.Errorf("message %d: %w", i, err)
		}
		msgs[i] = msg
	}
	return deepseek.Session{
		ID:        env.ID,
		Model:     deepseek.Model(env.Model),
		CreatedAt: env.CreatedAt,
		UpdatedAt: env.UpdatedAt,
		Usage:     unmarshalUsage(env.Usage),
		Messages:  msgs,
	}, nil
}

// Save writes a Session to a JSON file, creating parent directories as
// needed. The file is replaced atomically.
func Save(path string, s deepseek.Session) error {
	data, err := MarshalSession(s)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a Session from a JSON file.
func Load(path string) (deepseek.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return deepseek.Session{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalSession(data)
}
