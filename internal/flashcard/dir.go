package flashcard

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DirSource loads one topic per YAML or JSON file found under a root
// directory. Topics are ordered by file path. The directory is re-read on
// every Load.
type DirSource struct {
	rootDir string
}

// NewDirSource creates a directory-backed source.
func NewDirSource(rootDir string) *DirSource {
	return &DirSource{rootDir: rootDir}
}

// Load walks the directory and returns the topics it finds.
func (s *DirSource) Load(ctx context.Context) (*Dataset, error) {
	ds := &Dataset{Topics: []Topic{}}
	seen := make(map[string]string)

	err := filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		format, ferr := FormatFromPath(path)
		if ferr != nil {
			return nil // Not a topic file
		}

		topic, ok, err := loadTopicFile(path, format)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if prev, dup := seen[topic.ID]; dup {
			slog.Warn("skipping duplicate topic id", "path", path, "id", topic.ID, "first", prev)
			return nil
		}
		seen[topic.ID] = path
		if topic.Cards == nil {
			topic.Cards = []Card{}
		}
		ds.Topics = append(ds.Topics, topic)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading topics from %s: %w", s.rootDir, err)
	}

	return ds, nil
}

// HealthCheck verifies the root directory exists.
func (s *DirSource) HealthCheck(_ context.Context) error {
	info, err := os.Stat(s.rootDir)
	if err != nil {
		return fmt.Errorf("dataset directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("dataset path %s is not a directory", s.rootDir)
	}
	return nil
}

func loadTopicFile(path string, format Format) (Topic, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Topic{}, false, err
	}

	var topic Topic
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &topic)
	default:
		err = json.Unmarshal(data, &topic)
	}
	if err != nil {
		slog.Warn("skipping invalid topic file", "path", path, "error", err)
		return Topic{}, false, nil
	}
	if topic.ID == "" {
		return Topic{}, false, nil // Not a topic file
	}
	return topic, true, nil
}
