package catalog

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/goccy/go-json"
	"github.com/kdimtricp/cinesuggest/internal/storage"
)

// LoadFiles reads the JSON catalog and similarity artifacts from st. A
// missing file yields an error wrapping ErrArtifactMissing.
func LoadFiles(st storage.Storage, moviesName, similarityName string) (*Store, error) {
	return LoadSplit(st, moviesName, st, similarityName)
}

// LoadSplit is LoadFiles for artifacts kept in two different storages.
func LoadSplit(moviesStorage storage.Storage, moviesName string, similarityStorage storage.Storage, similarityName string) (*Store, error) {
	var movies []Movie
	if err := decodeFile(moviesStorage, moviesName, &movies); err != nil {
		return nil, err
	}

	var similarity [][]float64
	if err := decodeFile(similarityStorage, similarityName, &similarity); err != nil {
		return nil, err
	}

	return NewStore(movies, similarity)
}

func decodeFile(st storage.Storage, name string, v interface{}) error {
	f, err := st.OpenFile(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrArtifactMissing, name)
		}
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}
