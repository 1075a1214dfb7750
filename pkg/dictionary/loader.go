package dictionary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bastiangx/swipeserve/internal/utils"
	"github.com/charmbracelet/log"
)

// ErrEmptyWordList is returned when a source holds no usable words.
var ErrEmptyWordList = errors.New("dictionary: word list is empty")

// ChunkInfo contains metadata about a chunk file
type ChunkInfo struct {
	ID        int
	Filename  string
	WordCount int
}

// LoadText reads one word per line, most frequent first.
func LoadText(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := utils.NormalizeWord(scanner.Text())
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	if len(words) == 0 {
		return nil, ErrEmptyWordList
	}
	return words, nil
}

// LoadTextFile reads a newline-delimited word list from path.
func LoadTextFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list %s: %w", path, err)
	}
	defer file.Close()
	return LoadText(file)
}

// chunkName returns the file name of chunk id (dict_0001.bin).
func chunkName(id int) string {
	return fmt.Sprintf("dict_%04d.bin", id)
}

// ReadChunk decodes one chunk: an int32 word count header followed by
// (uint16 length, word bytes, uint16 rank) records, all little-endian.
// Stored ranks are 1-based; returned entries are 0-based.
func ReadChunk(r io.Reader) ([]Entry, error) {
	reader := bufio.NewReader(r)

	var totalEntries int32
	if err := binary.Read(reader, binary.LittleEndian, &totalEntries); err != nil {
		return nil, fmt.Errorf("failed to read chunk header: %w", err)
	}
	if totalEntries < 0 {
		return nil, fmt.Errorf("invalid word count %d", totalEntries)
	}

	entries := make([]Entry, 0, totalEntries)
	for count := 0; count < int(totalEntries); count++ {
		var wordLen uint16
		if err := binary.Read(reader, binary.LittleEndian, &wordLen); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to read word length: %w", err)
		}

		wordBytes := make([]byte, wordLen)
		if _, err := io.ReadFull(reader, wordBytes); err != nil {
			return nil, fmt.Errorf("failed to read word: %w", err)
		}

		var rank uint16
		if err := binary.Read(reader, binary.LittleEndian, &rank); err != nil {
			return nil, fmt.Errorf("failed to read rank: %w", err)
		}
		if rank > 0 {
			rank--
		}
		entries = append(entries, Entry{Word: string(wordBytes), Rank: uint32(rank)})
	}
	return entries, nil
}

// WriteChunk encodes entries in the chunk format. Ranks above the uint16
// range saturate; readers fall back to file order for those.
func WriteChunk(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, int32(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if len(e.Word) > math.MaxUint16 {
			return fmt.Errorf("word too long: %d bytes", len(e.Word))
		}
		if err := binary.Write(bw, binary.LittleEndian, uint16(len(e.Word))); err != nil {
			return err
		}
		if _, err := bw.WriteString(e.Word); err != nil {
			return err
		}
		rank := uint16(math.MaxUint16)
		if e.Rank < math.MaxUint16 {
			rank = uint16(e.Rank + 1)
		}
		if err := binary.Write(bw, binary.LittleEndian, rank); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteChunks splits words into chunkSize-sized dict_NNNN.bin files under dir
// and returns how many files were written.
func WriteChunks(dir string, words []string, chunkSize int) (int, error) {
	if len(words) == 0 {
		return 0, ErrEmptyWordList
	}
	if chunkSize <= 0 {
		chunkSize = len(words)
	}
	if err := utils.EnsureDir(dir); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	written := 0
	for start := 0; start < len(words); start += chunkSize {
		end := min(start+chunkSize, len(words))
		entries := make([]Entry, 0, end-start)
		for i := start; i < end; i++ {
			entries = append(entries, Entry{Word: words[i], Rank: uint32(i)})
		}

		path := filepath.Join(dir, chunkName(written+1))
		file, err := os.Create(path)
		if err != nil {
			return written, fmt.Errorf("failed to create chunk %s: %w", path, err)
		}
		err = WriteChunk(file, entries)
		if cerr := file.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return written, fmt.Errorf("failed to write chunk %s: %w", path, err)
		}
		written++
		log.Debugf("Wrote chunk %s with %d words", path, len(entries))
	}
	return written, nil
}

// AvailableChunks scans dir for chunk files, ordered by ID.
func AvailableChunks(dir string) ([]ChunkInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "dict_*.bin"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan for chunk files: %w", err)
	}

	var chunks []ChunkInfo
	for _, file := range files {
		idStr := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(file), "dict_"), ".bin")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			continue
		}
		wordCount, err := chunkWordCount(file)
		if err != nil {
			log.Warnf("Failed to get word count for chunk %s: %v", file, err)
		}
		chunks = append(chunks, ChunkInfo{ID: id, Filename: file, WordCount: wordCount})
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ID < chunks[j].ID
	})
	return chunks, nil
}

// chunkWordCount reads the word count from a chunk file's header
func chunkWordCount(filename string) (int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var wordCount int32
	if err := binary.Read(file, binary.LittleEndian, &wordCount); err != nil {
		return 0, err
	}
	return int(wordCount), nil
}

// LoadChunks reads chunk files from dir in ID order until maxWords words are
// collected (0 loads everything) and returns the words in rank order.
func LoadChunks(dir string, maxWords int) ([]string, error) {
	chunks, err := AvailableChunks(dir)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunk files found in %s: %w", dir, ErrEmptyWordList)
	}

	var all []Entry
	for _, chunk := range chunks {
		if maxWords > 0 && len(all) >= maxWords {
			break
		}
		file, err := os.Open(chunk.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to open chunk file %s: %w", chunk.Filename, err)
		}
		entries, err := ReadChunk(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", chunk.ID, err)
		}
		all = append(all, entries...)
		log.Debugf("Loaded chunk %d: %d words", chunk.ID, len(entries))
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Rank < all[j].Rank
	})
	if maxWords > 0 && len(all) > maxWords {
		all = all[:maxWords]
	}

	words := make([]string, len(all))
	for i, e := range all {
		words[i] = e.Word
	}
	return words, nil
}

// Open loads an index from a text word list or a chunk directory. A data
// directory without chunks falls back to the words.txt inside it.
func Open(path string, maxWords int) (*Index, error) {
	if err := utils.CheckDictionaryPath(path); err != nil {
		return nil, err
	}
	if utils.IsValidDataDir(path) && len(utils.ListBinFiles(path)) == 0 {
		path = filepath.Join(path, utils.WordListName)
	}
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var words []string
	switch format {
	case FormatText:
		words, err = LoadTextFile(path)
		if err == nil && maxWords > 0 && len(words) > maxWords {
			words = words[:maxWords]
		}
	case FormatChunkDir:
		words, err = LoadChunks(path, maxWords)
	case FormatChunk:
		var file *os.File
		file, err = os.Open(path)
		if err != nil {
			return nil, err
		}
		var entries []Entry
		entries, err = ReadChunk(file)
		file.Close()
		for _, e := range entries {
			words = append(words, e.Word)
		}
	}
	if err != nil {
		return nil, err
	}

	log.Debugf("Loaded %d words from %s (%s)", len(words), path, format)
	return Build(words), nil
}
