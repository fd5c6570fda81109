package dataset

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tstafylakis/s3prl-correlation/collate"
)

// DefaultNumWorkers is the loader parallelism used when the config omits
// num_workers.
const DefaultNumWorkers = 12

// ErrMissingSplit is returned when the config has no entries for a split.
var ErrMissingSplit = errors.New("no corpus entries for split")

// Entries lists the corpus parts read for one split, e.g. LibriSpeech subsets
// or SNIPS manifest names. In YAML it is either a list or a single string.
type Entries []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Entries) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*e = Entries{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*e = list
		return nil
	default:
		return errors.Errorf("line %d: split entries must be a string or a list of strings", node.Line)
	}
}

// Config describes a corpus and how to batch it. It is a plain value: copy it
// freely, nothing in this package modifies the caller's copy.
type Config struct {
	// Name selects the corpus backend, case-insensitively.
	Name string `yaml:"name"`

	// Path is the corpus root directory.
	Path string `yaml:"path"`

	// Bucketing makes the training backend pre-group items by length.
	Bucketing bool `yaml:"bucketing"`

	// BatchSize is the number of items per batch before the memory guard.
	BatchSize int `yaml:"batch_size"`

	// NumWorkers is the number of goroutines collating batches. 0 collates on
	// the caller's goroutine.
	NumWorkers int `yaml:"num_workers"`

	// HalfBatchFrames is the memory-guard threshold used on the training split.
	HalfBatchFrames int `yaml:"half_batch_frames"`

	// Seed for the training shuffle. 0 picks a time-based seed.
	Seed int64 `yaml:"seed"`

	// Splits maps a split name ("train", "dev", "test", ...) to its entries.
	// Every key not listed above lands here.
	Splits map[string]Entries `yaml:",inline"`
}

// DefaultConfig returns a Config with every optional field at its default.
func DefaultConfig() Config {
	return Config{
		NumWorkers:      DefaultNumWorkers,
		HalfBatchFrames: collate.DefaultHalfBatchFrames,
	}
}

// ParseConfig decodes a YAML corpus config on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse corpus config")
	}
	return cfg, nil
}

// LoadConfig reads and decodes the YAML corpus config at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read corpus config")
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, errors.Wrap(err, path)
	}
	return cfg, nil
}

// Validate checks the fields every split needs.
func (c Config) Validate() error {
	switch {
	case c.Name == "":
		return errors.New("corpus config: name is empty")
	case c.Path == "":
		return errors.New("corpus config: path is empty")
	case c.BatchSize <= 0:
		return errors.Errorf("corpus config: batch_size must be positive, got %d", c.BatchSize)
	case c.NumWorkers < 0:
		return errors.Errorf("corpus config: num_workers must not be negative, got %d", c.NumWorkers)
	case c.HalfBatchFrames <= 0:
		return errors.Errorf("corpus config: half_batch_frames must be positive, got %d", c.HalfBatchFrames)
	}
	return nil
}

// Entries returns the corpus entries configured for split.
func (c Config) Entries(split collate.Split) (Entries, error) {
	entries := c.Splits[string(split)]
	if len(entries) == 0 {
		return nil, errors.Wrapf(ErrMissingSplit, "%q", split)
	}
	return append(Entries(nil), entries...), nil
}
