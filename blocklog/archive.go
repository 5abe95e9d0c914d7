package blocklog

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ArchivePointer records that the blocks in [Start, End] (inclusive) are
// held by an external archive. Pointers are contiguous, non overlapping and
// together cover every index below the first locally retained one.
type ArchivePointer struct {
	_         struct{} `cbor:",toarray"`
	ArchiveID string
	Start     uint64
	End       uint64
}

// Archiver is the external collaborator that takes custody of old blocks.
// HandOff must return only after the range is durably stored; the returned
// id identifies the archive holding it.
type Archiver interface {
	HandOff(start uint64, blocks [][]byte) (archiveID string, err error)
}

// appendPointer extends the pointer list, merging with the last pointer
// when the new range continues it within the same archive.
func appendPointer(archives []ArchivePointer, p ArchivePointer) []ArchivePointer {
	if n := len(archives); n > 0 {
		last := &archives[n-1]
		if last.ArchiveID == p.ArchiveID && last.End+1 == p.Start {
			out := append([]ArchivePointer(nil), archives...)
			out[n-1].End = p.End
			return out
		}
	}
	return append(append([]ArchivePointer(nil), archives...), p)
}

// Manager watches the log's retained length and hands its oldest blocks to
// the archiver, chunk at a time. Local blocks are deleted only after the
// archiver acknowledges receipt, so a failed hand off loses nothing.
type Manager struct {
	log       *Log
	archiver  Archiver
	threshold uint64
	chunk     uint64
	logger    logrus.FieldLogger
}

// NewManager returns a manager that archives once more than threshold
// blocks are retained locally, moving up to chunk blocks per hand off.
func NewManager(log *Log, archiver Archiver, threshold, chunk uint64, logger logrus.FieldLogger) *Manager {
	if chunk == 0 {
		chunk = 1
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Manager{log: log, archiver: archiver, threshold: threshold, chunk: chunk, logger: logger}
}

// ShouldArchive reports whether the retained length exceeds the threshold.
func (m *Manager) ShouldArchive() bool {
	return m.archiver != nil && m.log.length-m.log.first > m.threshold
}

// Chunk is a captured copy of the oldest retained blocks, pending hand off.
type Chunk struct {
	Start  uint64
	Blocks [][]byte
}

// NextChunk copies the oldest retained blocks for hand off. An empty chunk
// means nothing is retained. No log state changes.
func (m *Manager) NextChunk() (Chunk, error) {
	retained := m.log.length - m.log.first
	if retained == 0 || m.archiver == nil {
		return Chunk{}, nil
	}
	count := m.chunk
	if count > retained {
		count = retained
	}
	start := m.log.first
	blocks, err := m.log.rawRange(start, count)
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{Start: start, Blocks: blocks}, nil
}

// HandOff forwards the chunk to the archiver. The log is not touched; the
// caller may hold no lock over the log while this blocks on the archiver.
func (m *Manager) HandOff(c Chunk) (string, error) {
	archiveID, err := m.archiver.HandOff(c.Start, c.Blocks)
	if err != nil {
		m.logger.WithError(err).WithFields(logrus.Fields{
			"start": c.Start,
			"count": len(c.Blocks),
		}).Warn("archive hand off failed, keeping blocks local")
		return "", fmt.Errorf("archive hand off of [%d, %d]: %w", c.Start, c.Start+uint64(len(c.Blocks))-1, err)
	}
	return archiveID, nil
}

// Commit records the pointer for an acknowledged chunk and drops its blocks
// locally. The chunk must still be at the head of the retained range.
func (m *Manager) Commit(c Chunk, archiveID string) error {
	if c.Start != m.log.first {
		return fmt.Errorf("chunk at %d is no longer the retained head %d", c.Start, m.log.first)
	}
	if err := m.log.dropPrefix(uint64(len(c.Blocks)), archiveID); err != nil {
		return err
	}
	m.logger.WithFields(logrus.Fields{
		"archive": archiveID,
		"start":   c.Start,
		"end":     c.Start + uint64(len(c.Blocks)) - 1,
	}).Info("archived blocks")
	return nil
}

// ArchiveOldest hands the oldest retained blocks to the archiver and, on
// acknowledgment, records the pointer and drops them locally.
func (m *Manager) ArchiveOldest() error {
	c, err := m.NextChunk()
	if err != nil || len(c.Blocks) == 0 {
		return err
	}
	archiveID, err := m.HandOff(c)
	if err != nil {
		return err
	}
	return m.Commit(c, archiveID)
}

// Run archives until the retained length is back under the threshold or an
// error stops it.
func (m *Manager) Run() error {
	for m.ShouldArchive() {
		if err := m.ArchiveOldest(); err != nil {
			return err
		}
	}
	return nil
}
