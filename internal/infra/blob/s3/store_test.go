package s3

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"profilereview/internal/archive"
)

// fakeS3 serves the path-style subset of the S3 API the store uses.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
}

type fakeObject struct {
	body        []byte
	contentType string
	metadata    map[string]string
}

type listResult struct {
	XMLName     xml.Name `xml:"ListBucketResult"`
	IsTruncated bool     `xml:"IsTruncated"`
	Contents    []struct {
		Key          string `xml:"Key"`
		Size         int    `xml:"Size"`
		LastModified string `xml:"LastModified"`
	} `xml:"Contents"`
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	switch {
	case r.Method == http.MethodGet && r.URL.Query().Get("list-type") == "2":
		prefix := r.URL.Query().Get("prefix")
		var keys []string
		for k := range f.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var res listResult
		for _, k := range keys {
			res.Contents = append(res.Contents, struct {
				Key          string `xml:"Key"`
				Size         int    `xml:"Size"`
				LastModified string `xml:"LastModified"`
			}{Key: k, Size: len(f.objects[k].body), LastModified: "2024-01-01T00:00:00Z"})
		}
		w.Header().Set("Content-Type", "application/xml")
		_ = xml.NewEncoder(w).Encode(res)
	case r.Method == http.MethodHead || r.Method == http.MethodGet:
		obj, ok := f.objects[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			if r.Method == http.MethodGet {
				_, _ = w.Write([]byte(`<Error><Code>NoSuchKey</Code></Error>`))
			}
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(obj.body)))
		w.Header().Set("Content-Type", obj.contentType)
		w.Header().Set("ETag", `"etag-1"`)
		w.Header().Set("Last-Modified", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Format(http.TimeFormat))
		for k, v := range obj.metadata {
			w.Header().Set("X-Amz-Meta-"+k, v)
		}
		if r.Method == http.MethodGet {
			_, _ = w.Write(obj.body)
		}
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(r.Header.Get("Content-Encoding"), "aws-chunked") {
			body = decodeChunked(body)
		}
		md := map[string]string{}
		for k, v := range r.Header {
			if strings.HasPrefix(strings.ToLower(k), "x-amz-meta-") {
				md[strings.ToLower(strings.TrimPrefix(strings.ToLower(k), "x-amz-meta-"))] = v[0]
			}
		}
		f.objects[key] = fakeObject{body: body, contentType: r.Header.Get("Content-Type"), metadata: md}
		w.Header().Set("ETag", `"etag-1"`)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

// decodeChunked unwraps a single aws-chunked data chunk followed by its trailer.
func decodeChunked(b []byte) []byte {
	header, rest, ok := bytes.Cut(b, []byte("\r\n"))
	if !ok {
		return b
	}
	sizeHex, _, _ := strings.Cut(string(header), ";")
	size, err := strconv.ParseInt(sizeHex, 16, 64)
	if err != nil || int64(len(rest)) < size {
		return b
	}
	return rest[:size]
}

func newTestStore(t *testing.T) (*Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string]fakeObject{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	store, err := New(context.Background(), Config{
		Bucket:          "archive",
		Prefix:          "/review/",
		Endpoint:        srv.URL,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		PathStyle:       true,
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store, fake
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket error")
	}
}

func TestPutGetListRoundTrip(t *testing.T) {
	store, fake := newTestStore(t)
	ctx := context.Background()

	info, err := store.Put(ctx, "changelogs/a/1.json", strings.NewReader(`[]`), archive.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"action": "submit"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "changelogs/a/1.json" || info.ETag != "etag-1" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, ok := fake.objects["review/changelogs/a/1.json"]; !ok {
		t.Fatalf("expected object stored under prefix, have %v", fake.objects)
	}

	if _, err := store.Put(ctx, "changelogs/a/1.json", strings.NewReader(`[]`), archive.PutOptions{}); !errors.Is(err, archive.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	_, body, err := store.Get(ctx, "changelogs/a/1.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(body)
	_ = body.Close()
	if string(data) != `[]` {
		t.Fatalf("unexpected body %q", data)
	}

	if _, err := store.Put(ctx, "changelogs/b/1.json", strings.NewReader(`{}`), archive.PutOptions{}); err != nil {
		t.Fatalf("put b: %v", err)
	}
	infos, err := store.List(ctx, "changelogs/a/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 || infos[0].Key != "changelogs/a/1.json" {
		t.Fatalf("unexpected listing %+v", infos)
	}
}

func TestPresignURL(t *testing.T) {
	store, _ := newTestStore(t)
	link, err := store.PresignURL(context.Background(), "changelogs/a/1.json", archive.SignedURLOptions{Expiry: time.Minute})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.Contains(link, "review/changelogs/a/1.json") || !strings.Contains(link, "X-Amz-Expires=60") {
		t.Fatalf("unexpected presigned url %s", link)
	}
	if store.Driver() != archive.DriverS3 {
		t.Fatalf("unexpected driver")
	}
}
