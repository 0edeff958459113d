package sink

import (
	"context"
	"path"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/getsentry/hprof/internal/storageutil"
)

// Blob stores frame records as lz4 compressed JSON objects.
type Blob struct {
	Handler storageutil.ObjectHandler
	Prefix  string
}

// ObjectName returns where r is stored: <prefix>/<profiler>/<frame>-<id>.json.lz4
func (s Blob) ObjectName(r FrameRecord) string {
	return path.Join(s.Prefix, r.Profiler, strconv.FormatUint(r.Frame, 10)+"-"+r.ID+".json.lz4")
}

func (s Blob) Publish(ctx context.Context, r FrameRecord) error {
	name := s.ObjectName(r)
	if err := storageutil.CompressedWrite(ctx, s.Handler, name, r); err != nil {
		return errors.Wrapf(err, "storing frame record %s", name)
	}
	return nil
}
