package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// yamlFile is a whole-file YAML document. Writes go to a temp file in the
// same directory and are renamed over the target, so readers never see a
// partial file.
type yamlFile struct {
	mu   sync.Mutex
	path string
}

func (f *yamlFile) load(out any) error {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", f.path, err)
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("parse %s: %w", f.path, err)
	}
	return nil
}

func (f *yamlFile) save(v any) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return os.Rename(tmp.Name(), f.path)
}

type YAMLCredentials struct {
	file yamlFile
}

// NewYAMLCredentials stores username -> bcrypt hash pairs in a flat YAML map.
func NewYAMLCredentials(path string) *YAMLCredentials {
	return &YAMLCredentials{file: yamlFile{path: path}}
}

func (c *YAMLCredentials) PasswordHash(_ context.Context, username string) (string, error) {
	c.file.mu.Lock()
	defer c.file.mu.Unlock()

	creds := map[string]string{}
	if err := c.file.load(&creds); err != nil {
		return "", err
	}
	hash, ok := creds[username]
	if !ok {
		return "", ErrUserNotFound
	}
	return hash, nil
}

func (c *YAMLCredentials) Create(_ context.Context, username, passwordHash string) error {
	c.file.mu.Lock()
	defer c.file.mu.Unlock()

	creds := map[string]string{}
	if err := c.file.load(&creds); err != nil {
		return err
	}
	if _, ok := creds[username]; ok {
		return ErrUserExists
	}
	creds[username] = passwordHash
	return c.file.save(creds)
}

type YAMLChatHistory struct {
	file yamlFile
}

// NewYAMLChatHistory keeps every user's transcript in one YAML map keyed by username.
func NewYAMLChatHistory(path string) *YAMLChatHistory {
	return &YAMLChatHistory{file: yamlFile{path: path}}
}

func (h *YAMLChatHistory) Load(_ context.Context, username string) ([]ChatMessage, error) {
	h.file.mu.Lock()
	defer h.file.mu.Unlock()

	all := map[string][]ChatMessage{}
	if err := h.file.load(&all); err != nil {
		return nil, err
	}
	msgs := all[username]
	if msgs == nil {
		msgs = []ChatMessage{}
	}
	return msgs, nil
}

func (h *YAMLChatHistory) Save(_ context.Context, username string, messages []ChatMessage) error {
	h.file.mu.Lock()
	defer h.file.mu.Unlock()

	all := map[string][]ChatMessage{}
	if err := h.file.load(&all); err != nil {
		return err
	}
	if len(messages) == 0 {
		delete(all, username)
	} else {
		all[username] = messages
	}
	return h.file.save(all)
}
