// Package archive keeps an append-only history of submitted change logs in a
// blob store. Each submission, acceptance, and discard is written once under
// a per-profile prefix and never overwritten.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"profilereview/pkg/domain"
)

// Driver identifies a concrete blob storage backend.
type Driver string

const (
	// DriverMemory keeps blobs in process memory.
	DriverMemory Driver = "memory"
	// DriverFS stores blobs as files under a local directory.
	DriverFS Driver = "fs"
	// DriverS3 stores blobs in an S3 or MinIO bucket.
	DriverS3 Driver = "s3"
)

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// SignedURLOptions holds options for generating a pre-signed URL.
type SignedURLOptions struct {
	Expiry time.Duration // default 15m
}

// Info describes a stored blob.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
}

// Store is the subset of S3 semantics the archive relies on. Put must fail
// when the key already exists; List returns keys in ascending order.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	PresignURL(ctx context.Context, key string, opts SignedURLOptions) (string, error)
	Driver() Driver
}

// ErrUnsupported is returned when an optional capability is not available.
var ErrUnsupported = errors.New("archive: unsupported operation")

// ErrExists is returned by Put when the key is already taken.
var ErrExists = errors.New("archive: blob already exists")

// Action names the archived backend operation.
type Action string

// Archived actions.
const (
	ActionSubmit  Action = "submit"
	ActionAccept  Action = "accept"
	ActionDiscard Action = "discard"
)

// Entry is one archived operation.
type Entry struct {
	Key        string                `json:"key"`
	Email      string                `json:"email"`
	Action     Action                `json:"action"`
	Records    []domain.ChangeRecord `json:"records"`
	ArchivedAt time.Time             `json:"archivedAt"`
	URL        string                `json:"url,omitempty"`
}

const maxSeqAttempts = 8

// Archiver writes and reads change-log history.
type Archiver struct {
	store Store
	now   func() time.Time
}

// New wraps store. now defaults to time.Now.
func New(store Store, now func() time.Time) *Archiver {
	if now == nil {
		now = time.Now
	}
	return &Archiver{store: store, now: now}
}

// Driver reports the backing store driver.
func (a *Archiver) Driver() Driver {
	return a.store.Driver()
}

func prefixFor(email string) string {
	return "changelogs/" + url.PathEscape(strings.ToLower(email)) + "/"
}

// Record archives records for email under action. Keys are
// <instant>-<seq>-<action>.json, where seq counts the entries already stored
// for the same instant, so History returns entries oldest first.
func (a *Archiver) Record(ctx context.Context, email string, action Action, records []domain.ChangeRecord) (Entry, error) {
	if records == nil {
		records = []domain.ChangeRecord{}
	}
	at := a.now().UTC()
	entry := Entry{Email: email, Action: action, Records: records, ArchivedAt: at}
	payload, err := json.Marshal(entry)
	if err != nil {
		return Entry{}, fmt.Errorf("encode archive entry: %w", err)
	}
	instant := prefixFor(email) + at.Format("20060102T150405.000000000Z") + "-"
	existing, err := a.store.List(ctx, instant)
	if err != nil {
		return Entry{}, fmt.Errorf("archive %s for %s: %w", action, email, err)
	}
	opts := PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"email": email, "action": string(action)},
	}
	var key string
	for seq := len(existing); seq < len(existing)+maxSeqAttempts; seq++ {
		key = fmt.Sprintf("%s%04d-%s.json", instant, seq, action)
		_, err = a.store.Put(ctx, key, bytes.NewReader(payload), opts)
		if !errors.Is(err, ErrExists) {
			break
		}
	}
	if err != nil {
		return Entry{}, fmt.Errorf("archive %s for %s: %w", action, email, err)
	}
	entry.Key = key
	return entry, nil
}

// History returns every archived entry for email, oldest first. When the store
// can presign, each entry carries a download URL.
func (a *Archiver) History(ctx context.Context, email string) ([]Entry, error) {
	infos, err := a.store.List(ctx, prefixFor(email))
	if err != nil {
		return nil, fmt.Errorf("list archive for %s: %w", email, err)
	}
	out := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entry, err := a.read(ctx, info.Key)
		if err != nil {
			return nil, err
		}
		if link, err := a.store.PresignURL(ctx, info.Key, SignedURLOptions{}); err == nil {
			entry.URL = link
		} else if !errors.Is(err, ErrUnsupported) {
			return nil, fmt.Errorf("presign %s: %w", info.Key, err)
		}
		out = append(out, entry)
	}
	return out, nil
}

func (a *Archiver) read(ctx context.Context, key string) (Entry, error) {
	_, body, err := a.store.Get(ctx, key)
	if err != nil {
		return Entry{}, fmt.Errorf("read %s: %w", key, err)
	}
	defer body.Close()
	var entry Entry
	if err := json.NewDecoder(body).Decode(&entry); err != nil {
		return Entry{}, fmt.Errorf("decode %s: %w", key, err)
	}
	entry.Key = key
	return entry, nil
}
