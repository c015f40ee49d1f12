// Package segment persists the built index as a single snapshot file so
// later runs reload it instead of re-analyzing the corpus. The layout
// follows a fixed binary header, a postings region with one JSON blob per
// term, a JSON term dictionary, a JSON universe block (every document ID
// known at build time), and a CRC footer.
package segment

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/karthikrangan/irengine/internal/indexer/index"
)

const (
	// MagicBytes identifies a valid .irsx snapshot file.
	MagicBytes    uint32 = 0x49525358
	FormatVersion uint32 = 1
	HeaderSize    int    = 64
	FooterSize    int    = 16
)

// Header is the fixed-size block written at the start of every snapshot.
type Header struct {
	Magic      uint32
	Version    uint32
	TermCount  uint32
	DocCount   uint32
	PostOffset int64
	PostSize   int64
	DictOffset int64
	DictSize   int64
	UniOffset  int64
	UniSize    int64
}

// DictEntry maps a term to its postings blob inside the postings region.
type DictEntry struct {
	Term       string `json:"t"`
	PostOffset int64  `json:"o"`
	PostLen    int    `json:"l"`
	DocFreq    int    `json:"d"`
}

// Write atomically serialises the index to path, writing a .tmp file first
// and renaming on success.
func Write(path string, ix *index.Index) error {
	entries, universe := ix.Snapshot()
	if len(universe) == 0 {
		return fmt.Errorf("cannot snapshot an empty corpus")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp snapshot file: %w", err)
	}
	defer f.Close()

	headerBytes := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(headerBytes[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(headerBytes[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(headerBytes[8:12], uint32(len(entries)))
	binary.LittleEndian.PutUint32(headerBytes[12:16], uint32(len(universe)))
	if _, err := f.Write(headerBytes); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	postStart := int64(HeaderSize)
	offset := postStart
	dict := make([]DictEntry, 0, len(entries))
	for _, entry := range entries {
		blob, err := json.Marshal(entry.Postings)
		if err != nil {
			return fmt.Errorf("marshaling postings for term %q: %w", entry.Term, err)
		}
		if _, err := f.Write(blob); err != nil {
			return fmt.Errorf("writing postings for term %q: %w", entry.Term, err)
		}
		dict = append(dict, DictEntry{
			Term:       entry.Term,
			PostOffset: offset - postStart,
			PostLen:    len(blob),
			DocFreq:    len(entry.Postings),
		})
		offset += int64(len(blob))
	}
	postSize := offset - postStart

	dictData, err := json.Marshal(dict)
	if err != nil {
		return fmt.Errorf("marshaling dictionary: %w", err)
	}
	if _, err := f.Write(dictData); err != nil {
		return fmt.Errorf("writing dictionary: %w", err)
	}
	dictOffset := offset
	offset += int64(len(dictData))

	uniData, err := json.Marshal(universe)
	if err != nil {
		return fmt.Errorf("marshaling universe: %w", err)
	}
	if _, err := f.Write(uniData); err != nil {
		return fmt.Errorf("writing universe: %w", err)
	}
	uniOffset := offset
	offset += int64(len(uniData))

	footer := make([]byte, FooterSize)
	binary.LittleEndian.PutUint32(footer[0:4], crc32.ChecksumIEEE(dictData))
	binary.LittleEndian.PutUint32(footer[4:8], crc32.ChecksumIEEE(uniData))
	if _, err := f.Write(footer); err != nil {
		return fmt.Errorf("writing footer: %w", err)
	}

	binary.LittleEndian.PutUint64(headerBytes[16:24], uint64(postStart))
	binary.LittleEndian.PutUint64(headerBytes[24:32], uint64(postSize))
	binary.LittleEndian.PutUint64(headerBytes[32:40], uint64(dictOffset))
	binary.LittleEndian.PutUint64(headerBytes[40:48], uint64(len(dictData)))
	binary.LittleEndian.PutUint64(headerBytes[48:56], uint64(uniOffset))
	binary.LittleEndian.PutUint64(headerBytes[56:64], uint64(len(uniData)))
	if _, err := f.WriteAt(headerBytes, 0); err != nil {
		return fmt.Errorf("updating header: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing snapshot file: %w", err)
	}
	f.Close()
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming snapshot file: %w", err)
	}
	return nil
}
