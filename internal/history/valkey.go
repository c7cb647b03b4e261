package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

// ValkeyStore keeps history as a JSON-encoded Valkey list, newest at the head.
type ValkeyStore struct {
	client valkey.Client
	key    string
	now    func() time.Time
}

// NewValkeyStore creates a store over the list at key.
func NewValkeyStore(client valkey.Client, key string) *ValkeyStore {
	return &ValkeyStore{client: client, key: key, now: time.Now}
}

// Save pushes the entry and trims the list to MaxEntries in one round trip.
func (s *ValkeyStore) Save(ctx context.Context, e Entry) (Entry, error) {
	e.ID = uuid.New().String()
	e.Timestamp = s.now().UTC()

	data, err := json.Marshal(e)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal history entry: %w", err)
	}

	cmds := valkey.Commands{
		s.client.B().Lpush().Key(s.key).Element(string(data)).Build(),
		s.client.B().Ltrim().Key(s.key).Start(0).Stop(MaxEntries - 1).Build(),
	}
	for _, resp := range s.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return Entry{}, fmt.Errorf("save history entry: %w", err)
		}
	}
	return e, nil
}

func (s *ValkeyStore) Load(ctx context.Context) ([]Entry, error) {
	entries, _, err := s.load(ctx)
	return entries, err
}

// load returns the decoded entries alongside the raw list elements they came from.
// Elements that fail to decode are skipped.
func (s *ValkeyStore) load(ctx context.Context) ([]Entry, []string, error) {
	resp := s.client.Do(ctx, s.client.B().Lrange().Key(s.key).Start(0).Stop(MaxEntries-1).Build())
	raw, err := resp.AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return []Entry{}, nil, nil
		}
		return nil, nil, fmt.Errorf("load history: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	kept := make([]string, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue
		}
		entries = append(entries, e)
		kept = append(kept, item)
	}
	return entries, kept, nil
}

func (s *ValkeyStore) Get(ctx context.Context, id string) (Entry, error) {
	entries, _, err := s.load(ctx)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

// Delete removes the list element holding the entry with id.
func (s *ValkeyStore) Delete(ctx context.Context, id string) error {
	entries, raw, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i, e := range entries {
		if e.ID != id {
			continue
		}
		resp := s.client.Do(ctx, s.client.B().Lrem().Key(s.key).Count(1).Element(raw[i]).Build())
		if err := resp.Error(); err != nil {
			return fmt.Errorf("delete history entry %s: %w", id, err)
		}
		return nil
	}
	return ErrNotFound
}

func (s *ValkeyStore) Clear(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Del().Key(s.key).Build()).Error(); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (s *ValkeyStore) Search(ctx context.Context, query string) ([]Entry, error) {
	entries, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(entries, query), nil
}
