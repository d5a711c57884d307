package engine

import (
	"github.com/iamNilotpal/ignitekv/internal/codec"
	"github.com/iamNilotpal/ignitekv/internal/storage"
	kverrors "github.com/iamNilotpal/ignitekv/pkg/errors"
)

// compact implements spec.md §4.3.5's three-segment algorithm. Called with
// e.mu already held by Set/Remove, so it runs atomically with respect to
// every other operation: callers never observe a half-compacted store.
//
// Let A be the segment active when compaction starts. Every live key is
// rewritten, in index order, into a new segment C = A+1. Once every live
// record has been copied and flushed, every segment up to and including A
// is deleted, and a fresh empty segment N = A+2 becomes the new active
// segment. C is kept around as an ordinary (now closed-for-writing, but
// still readable) segment — it holds exactly the rewritten live data, so
// the store's uncompacted-byte counter resets to zero.
func (e *Engine) compact() error {
	oldActiveID := e.activeID
	compactedID := oldActiveID + 1
	newActiveID := oldActiveID + 2

	if err := e.writer.Close(); err != nil {
		return kverrors.NewStorageError(err, kverrors.ErrorCodeIO, "failed to close old active segment before compaction").
			WithSegmentID(int(oldActiveID))
	}

	compactedWriter, err := storage.NewWriter(e.dir, compactedID)
	if err != nil {
		return err
	}

	newIndex := make(map[string]Location, len(e.index))
	for key, loc := range e.index {
		reader, ok := e.readers[loc.SegmentID]
		if !ok {
			_ = compactedWriter.Close()
			return kverrors.NewCorruptLogError(loc.SegmentID, loc.Offset, "compaction source segment missing")
		}

		cmd, err := codec.DecodeAt(reader, loc.Offset, loc.Size)
		if err != nil {
			_ = compactedWriter.Close()
			return kverrors.NewCorruptLogError(loc.SegmentID, loc.Offset, "failed to read record during compaction").
				WithMessage(err.Error())
		}

		start := compactedWriter.Offset()
		enc := codec.NewEncoder(compactedWriter)
		if err := enc.Encode(cmd); err != nil {
			_ = compactedWriter.Close()
			return kverrors.NewStorageError(err, kverrors.ErrorCodeIO, "failed to write compacted record").
				WithSegmentID(int(compactedID))
		}

		newIndex[key] = Location{SegmentID: compactedID, Offset: start, Size: compactedWriter.Offset() - start}
	}

	if err := compactedWriter.Close(); err != nil {
		return kverrors.NewStorageError(err, kverrors.ErrorCodeIO, "failed to finalize compacted segment").
			WithSegmentID(int(compactedID))
	}

	compactedReader, err := storage.NewReader(e.dir, compactedID)
	if err != nil {
		return err
	}

	newWriter, err := storage.NewWriter(e.dir, newActiveID)
	if err != nil {
		_ = compactedReader.Close()
		return err
	}
	newReader, err := storage.NewReader(e.dir, newActiveID)
	if err != nil {
		_ = compactedReader.Close()
		_ = newWriter.Close()
		return err
	}

	for id, r := range e.readers {
		if id <= oldActiveID {
			_ = r.Close()
			delete(e.readers, id)
		}
	}
	for id := uint64(1); id <= oldActiveID; id++ {
		_ = storage.Remove(e.dir, id)
	}

	e.readers[compactedID] = compactedReader
	e.readers[newActiveID] = newReader
	e.writer = newWriter
	e.activeID = newActiveID
	e.index = newIndex
	e.uncompacted = 0

	e.log.Infow("compaction complete",
		"oldActive", oldActiveID, "compacted", compactedID, "newActive", newActiveID, "liveKeys", len(newIndex))
	return nil
}
