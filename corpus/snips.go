package corpus

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// SnipsName is the registry name of the SNIPS spoken language understanding
// corpus.
const SnipsName = "snips"

// NewSnips reads one CSV manifest per entry, found at <root>/<entry>.csv.
//
// A manifest must have the columns file_path, length and label; other columns
// are ignored. file_path is relative to root unless absolute, length is the
// frame count used as the bucketing hint and label is the transcription with
// its slot annotations, passed to the tokenizer as-is.
func NewSnips(root string, entries []string, tok Tokenizer, groupSize int) (Backend, error) {
	if tok == nil {
		return nil, errors.New("snips: tokenizer is nil")
	}
	var items []Item
	var lengths []int64
	for _, entry := range entries {
		manifest := filepath.Join(root, entry+".csv")
		if err := readManifest(manifest, root, tok, &items, &lengths); err != nil {
			return nil, errors.Wrapf(err, "snips: manifest %s", manifest)
		}
	}

	g, err := newGrouped(SnipsName, items, lengths, groupSize)
	if err != nil {
		return nil, errors.Wrapf(err, "snips: %s %v", root, entries)
	}
	return g, nil
}

func readManifest(path, root string, tok Tokenizer, items *[]Item, lengths *[]int64) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	colIndex, err := readColumns(reader, "file_path", "length", "label")
	if err != nil {
		return err
	}

	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "failed to read row %d", row)
		}
		row++

		audioPath := record[colIndex["file_path"]]
		if !filepath.IsAbs(audioPath) {
			audioPath = filepath.Join(root, audioPath)
		}
		length, err := parseInt64(record[colIndex["length"]])
		if err != nil {
			return errors.Wrapf(err, "failed to parse length in row %d", row)
		}
		*items = append(*items, Item{Path: audioPath, Tokens: tok.Encode(record[colIndex["label"]])})
		*lengths = append(*lengths, length)
	}
	return nil
}
