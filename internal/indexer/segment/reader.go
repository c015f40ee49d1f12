package segment

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"

	"github.com/karthikrangan/irengine/internal/indexer/index"
)

// Load reads a snapshot written by Write and rebuilds the full in-memory
// index. Unlike a lazily-read segment, the whole file is materialised at
// once: queries need the index resident and immutable.
func Load(path string) (*index.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot file: %w", err)
	}
	defer f.Close()

	headerBytes := make([]byte, HeaderSize)
	if _, err := f.ReadAt(headerBytes, 0); err != nil {
		return nil, fmt.Errorf("reading snapshot header: %w", err)
	}
	header := Header{
		Magic:      binary.LittleEndian.Uint32(headerBytes[0:4]),
		Version:    binary.LittleEndian.Uint32(headerBytes[4:8]),
		TermCount:  binary.LittleEndian.Uint32(headerBytes[8:12]),
		DocCount:   binary.LittleEndian.Uint32(headerBytes[12:16]),
		PostOffset: int64(binary.LittleEndian.Uint64(headerBytes[16:24])),
		PostSize:   int64(binary.LittleEndian.Uint64(headerBytes[24:32])),
		DictOffset: int64(binary.LittleEndian.Uint64(headerBytes[32:40])),
		DictSize:   int64(binary.LittleEndian.Uint64(headerBytes[40:48])),
		UniOffset:  int64(binary.LittleEndian.Uint64(headerBytes[48:56])),
		UniSize:    int64(binary.LittleEndian.Uint64(headerBytes[56:64])),
	}
	if header.Magic != MagicBytes {
		return nil, fmt.Errorf("invalid snapshot file: bad magic bytes %x", header.Magic)
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", header.Version)
	}

	footer := make([]byte, FooterSize)
	if _, err := f.ReadAt(footer, header.UniOffset+header.UniSize); err != nil {
		return nil, fmt.Errorf("reading snapshot footer: %w", err)
	}

	dictData := make([]byte, header.DictSize)
	if _, err := f.ReadAt(dictData, header.DictOffset); err != nil {
		return nil, fmt.Errorf("reading dictionary: %w", err)
	}
	if crc := crc32.ChecksumIEEE(dictData); crc != binary.LittleEndian.Uint32(footer[0:4]) {
		return nil, fmt.Errorf("dictionary checksum mismatch")
	}
	var dict []DictEntry
	if err := json.Unmarshal(dictData, &dict); err != nil {
		return nil, fmt.Errorf("parsing dictionary: %w", err)
	}

	uniData := make([]byte, header.UniSize)
	if _, err := f.ReadAt(uniData, header.UniOffset); err != nil {
		return nil, fmt.Errorf("reading universe: %w", err)
	}
	if crc := crc32.ChecksumIEEE(uniData); crc != binary.LittleEndian.Uint32(footer[4:8]) {
		return nil, fmt.Errorf("universe checksum mismatch")
	}
	var universe []string
	if err := json.Unmarshal(uniData, &universe); err != nil {
		return nil, fmt.Errorf("parsing universe: %w", err)
	}

	entries := make([]index.TermEntry, 0, len(dict))
	for _, entry := range dict {
		blob := make([]byte, entry.PostLen)
		if _, err := f.ReadAt(blob, header.PostOffset+entry.PostOffset); err != nil {
			return nil, fmt.Errorf("reading postings for term %q: %w", entry.Term, err)
		}
		var postings index.PostingList
		if err := json.Unmarshal(blob, &postings); err != nil {
			return nil, fmt.Errorf("parsing postings for term %q: %w", entry.Term, err)
		}
		entries = append(entries, index.TermEntry{Term: entry.Term, Postings: postings})
	}
	return index.FromSnapshot(entries, universe), nil
}
