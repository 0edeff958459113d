package storageutil

import (
	"context"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	gojson "github.com/goccy/go-json"
	"github.com/pierrec/lz4/v4"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	// bucket URL schemes accepted by OpenBucket
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
)

// ErrObjectNotFound indicates an object was not found.
var ErrObjectNotFound = errors.New("object not found")

type ReadSizeCloser interface {
	io.Reader
	io.Closer
	Size() int64
}

// ObjectHandler provides common interface for multiple storage providers.
type ObjectHandler interface {
	// Put writes a file to the storage provider with name being the path.
	Put(ctx context.Context, name string) (io.WriteCloser, error)
	// Get reads a file from the storage provider with name being the path.
	// If a key was not found, it will return ErrObjectNotFound.
	Get(ctx context.Context, name string) (ReadSizeCloser, error)
}

// BucketHandler is an ObjectHandler backed by a gocloud.dev bucket.
type BucketHandler struct {
	Bucket *blob.Bucket
}

// OpenBucket opens a bucket from a URL such as file:///var/lib/hprof,
// mem:// or gs://frames.
func OpenBucket(ctx context.Context, url string) (*BucketHandler, error) {
	b, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "opening bucket %q", url)
	}
	return &BucketHandler{Bucket: b}, nil
}

func (h *BucketHandler) Put(ctx context.Context, name string) (io.WriteCloser, error) {
	return h.Bucket.NewWriter(ctx, name, nil)
}

func (h *BucketHandler) Get(ctx context.Context, name string) (ReadSizeCloser, error) {
	r, err := h.Bucket.NewReader(ctx, name, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return r, nil
}

func (h *BucketHandler) Close() error {
	return h.Bucket.Close()
}

// CompressedWrite encodes d as JSON into an lz4 frame stored under
// objectName. The object is closed on every path; a close error is returned
// when nothing failed before it.
func CompressedWrite(ctx context.Context, b ObjectHandler, objectName string, d interface{}) (err error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ow, err := b.Put(ctx, objectName)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := ow.Close(); err == nil {
			err = cerr
		}
	}()

	zw := lz4.NewWriter(ow)
	_ = zw.Apply(lz4.CompressionLevelOption(lz4.Level9))
	if err := gojson.NewEncoder(zw).Encode(d); err != nil {
		return errors.Wrapf(err, "encoding %q", objectName)
	}
	return zw.Close()
}

// UnmarshalCompressed reads compressed JSON data and unmarshals it.
func UnmarshalCompressed(ctx context.Context, b ObjectHandler, objectName string, d interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	or, err := b.Get(ctx, objectName)
	if err != nil {
		return err
	}
	defer or.Close()
	zr := lz4.NewReader(or)
	return gojson.NewDecoder(zr).Decode(d)
}
