package grib1

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Response body size limits. A wgrib inventory of a full GFS file is well
// under 1 MB.
const (
	maxInventoryBytes = 10 << 20
	maxRecordBytes    = 256 << 20
)

// openEnded marks a byte range running to the end of the object.
const openEnded = math.MaxInt64

// Client opens GRIB1 files from local paths, HTTP(S) URLs and s3://
// buckets, and fetches single records through their wgrib inventory.
type Client struct {
	HTTPClient *http.Client
	S3         *minio.Client // nil until ConfigureS3
	Reporter   Reporter      // passed to Decode by FetchRecord; glog when nil
}

// NewClient returns a client with sensible defaults and no S3 access.
func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// ConfigureS3 enables s3:// locations against endpoint. Empty keys give
// anonymous access, which public weather buckets allow.
func (c *Client) ConfigureS3(endpoint, accessKey, secretKey string, secure bool) error {
	opts := &minio.Options{Secure: secure}
	if accessKey != "" {
		opts.Creds = credentials.NewStaticV4(accessKey, secretKey, "")
	} else {
		opts.Creds = credentials.NewStatic("", "", "", credentials.SignatureAnonymous)
	}
	s3, err := minio.New(endpoint, opts)
	if err != nil {
		return fmt.Errorf("s3 client for %s: %w", endpoint, err)
	}
	c.S3 = s3
	return nil
}

// Open returns a seekable stream over the whole file at location, with
// any gzip, zstd or bzip2 compression removed.
func (c *Client) Open(ctx context.Context, location string) (io.ReadSeeker, error) {
	rc, err := c.get(ctx, location, 0, openEnded)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return OpenContainer(rc)
}

// FetchRecord decodes the first record whose line in the wgrib short
// inventory <location>.inv contains match, e.g. ":TMP:850 mb:". Only the
// record's byte range is transferred.
func (c *Client) FetchRecord(ctx context.Context, location, match string) (*Record, error) {
	item, err := c.findByteRange(ctx, location+".inv", match)
	if err != nil {
		return nil, fmt.Errorf("inventory lookup %q: %w", match, err)
	}
	raw, err := c.fetchRange(ctx, location, item.start, item.end)
	if err != nil {
		return nil, fmt.Errorf("fetching record bytes: %w", err)
	}
	opts := []Option{WithID(item.number)}
	if c.Reporter != nil {
		opts = append(opts, WithReporter(c.Reporter))
	}
	return Decode(bytes.NewReader(raw), opts...)
}

// inventoryItem is the byte range of one record; end is inclusive.
type inventoryItem struct {
	number     int
	start, end int64
}

// findByteRange reads a wgrib short inventory
// ("n:offset:d=YYYYMMDDHH:PARAM:LEVEL:...") and returns the range of the
// first line containing match. The last record runs to the end of file.
func (c *Client) findByteRange(ctx context.Context, invLocation, match string) (inventoryItem, error) {
	rc, err := c.get(ctx, invLocation, 0, openEnded)
	if err != nil {
		return inventoryItem{}, err
	}
	defer rc.Close()
	body, err := io.ReadAll(io.LimitReader(rc, maxInventoryBytes))
	if err != nil {
		return inventoryItem{}, err
	}
	return parseInventory(string(body), match)
}

func parseInventory(body, match string) (inventoryItem, error) {
	lines := strings.Split(strings.TrimSpace(body), "\n")
	for i, line := range lines {
		if !strings.Contains(line, match) {
			continue
		}
		parts := strings.Split(line, ":")
		if len(parts) < 3 {
			continue
		}
		n, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		start, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			continue
		}
		item := inventoryItem{number: n, start: start, end: openEnded}
		if i+1 < len(lines) {
			next := strings.Split(lines[i+1], ":")
			if len(next) >= 2 {
				if ns, err := strconv.ParseInt(next[1], 10, 64); err == nil {
					item.end = ns - 1
				}
			}
		}
		return item, nil
	}
	return inventoryItem{}, fmt.Errorf("%q not found in inventory", match)
}

func (c *Client) fetchRange(ctx context.Context, location string, start, end int64) ([]byte, error) {
	rc, err := c.get(ctx, location, start, end)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxRecordBytes))
}

// get opens bytes start..end (inclusive, or to EOF when end is openEnded)
// of location.
func (c *Client) get(ctx context.Context, location string, start, end int64) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return c.getHTTP(ctx, location, start, end)
	case strings.HasPrefix(location, "s3://"):
		return c.getS3(ctx, location, start, end)
	}
	return getFile(location, start, end)
}

func (c *Client) getHTTP(ctx context.Context, url string, start, end int64) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	want := http.StatusOK
	switch {
	case end != openEnded:
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))
		want = http.StatusPartialContent
	case start > 0:
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", start))
		want = http.StatusPartialContent
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != want {
		resp.Body.Close()
		// A 200 to a ranged request is the whole file, not the record.
		return nil, fmt.Errorf("HTTP %d fetching %s, want %d", resp.StatusCode, url, want)
	}
	return resp.Body, nil
}

func (c *Client) getS3(ctx context.Context, location string, start, end int64) (io.ReadCloser, error) {
	if c.S3 == nil {
		return nil, fmt.Errorf("%s: s3 access not configured", location)
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(location, "s3://"), "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("%s: want s3://bucket/key", location)
	}
	var opts minio.GetObjectOptions
	switch {
	case end != openEnded:
		if err := opts.SetRange(start, end); err != nil {
			return nil, err
		}
	case start > 0:
		if err := opts.SetRange(start, 0); err != nil {
			return nil, err
		}
	}
	obj, err := c.S3.GetObject(ctx, bucket, key, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return obj, nil
}

type limitedFile struct {
	io.Reader
	f *os.File
}

func (l limitedFile) Close() error { return l.f.Close() }

func getFile(path string, start, end int64) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if start == 0 && end == openEnded {
		return f, nil
	}
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}
	var r io.Reader = f
	if end != openEnded {
		r = io.LimitReader(f, end-start+1)
	}
	return limitedFile{Reader: r, f: f}, nil
}
