package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	credentialsBucket = []byte("credentials")
	chatsBucket       = []byte("chats")
)

// Bolt keeps credentials and transcripts in a single bbolt file. Every
// operation is one transaction.
type Bolt struct {
	db *bolt.DB
}

func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{credentialsBucket, chatsBucket} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init bolt store: %w", err)
	}
	return &Bolt{db: db}, nil
}

func (b *Bolt) Close() error {
	return b.db.Close()
}

func (b *Bolt) PasswordHash(_ context.Context, username string) (string, error) {
	var hash string
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(credentialsBucket).Get([]byte(username))
		if v == nil {
			return ErrUserNotFound
		}
		hash = string(v)
		return nil
	})
	return hash, err
}

func (b *Bolt) Create(_ context.Context, username, passwordHash string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bk := tx.Bucket(credentialsBucket)
		if bk.Get([]byte(username)) != nil {
			return ErrUserExists
		}
		return bk.Put([]byte(username), []byte(passwordHash))
	})
}

func (b *Bolt) Load(_ context.Context, username string) ([]ChatMessage, error) {
	msgs := []ChatMessage{}
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(chatsBucket).Get([]byte(username))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &msgs)
	})
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	return msgs, nil
}

func (b *Bolt) Save(_ context.Context, username string, messages []ChatMessage) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bk := tx.Bucket(chatsBucket)
		if len(messages) == 0 {
			return bk.Delete([]byte(username))
		}
		v, err := json.Marshal(messages)
		if err != nil {
			return err
		}
		return bk.Put([]byte(username), v)
	})
}
