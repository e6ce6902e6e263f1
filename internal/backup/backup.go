// Package backup writes snapshot documents to object storage.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"zenledger/internal/snapshot"
)

// ErrNoBackups is returned by Latest when nothing was stored under a prefix.
var ErrNoBackups = errors.New("no backups found")

// ObjectStore is the blob storage the backups land in.
type ObjectStore interface {
	Put(ctx context.Context, object string, data []byte) error
	Get(ctx context.Context, object string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// ObjectName returns the object name of a backup taken at t:
// <prefix>/2006/01/02/zenledger_backup_<unix>.json, in UTC.
func ObjectName(prefix string, t time.Time) string {
	t = t.UTC()
	name := fmt.Sprintf("zenledger_backup_%d.json", t.Unix())
	return path.Join(strings.Trim(prefix, "/"), t.Format("2006/01/02"), name)
}

// Backuper uploads full snapshot documents.
type Backuper struct {
	store  ObjectStore
	prefix string
	now    func() time.Time
}

func New(store ObjectStore, prefix string) *Backuper {
	return &Backuper{store: store, prefix: prefix, now: time.Now}
}

// Backup encodes doc and uploads it, returning the object name.
func (b *Backuper) Backup(ctx context.Context, doc snapshot.Document) (string, error) {
	var buf bytes.Buffer
	if err := snapshot.Encode(&buf, doc); err != nil {
		return "", err
	}
	object := ObjectName(b.prefix, b.now())
	if err := b.store.Put(ctx, object, buf.Bytes()); err != nil {
		return "", fmt.Errorf("upload %s: %w", object, err)
	}
	return object, nil
}

// Fetch downloads and decodes one backup.
func (b *Backuper) Fetch(ctx context.Context, object string) (snapshot.Document, error) {
	raw, err := b.store.Get(ctx, object)
	if err != nil {
		return snapshot.Document{}, fmt.Errorf("download %s: %w", object, err)
	}
	return snapshot.Unmarshal(raw)
}

// Latest returns the name of the newest backup under the prefix. Object
// names sort chronologically within a day; across days the date path does.
func (b *Backuper) Latest(ctx context.Context) (string, error) {
	names, err := b.store.List(ctx, strings.Trim(b.prefix, "/"))
	if err != nil {
		return "", err
	}
	latest := ""
	for _, name := range names {
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		if name > latest {
			latest = name
		}
	}
	if latest == "" {
		return "", ErrNoBackups
	}
	return latest, nil
}

// MemoryStore is an in-process ObjectStore.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Put(_ context.Context, object string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[object] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, object string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[object]
	if !ok {
		return nil, fmt.Errorf("object %s not found", object)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for name := range m.objects {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out, nil
}
