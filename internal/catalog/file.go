package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"historyScope/internal/model"
)

const (
	tokensFile = "tokens.json"
	poolsFile  = "pools.json"
)

// FileSource reads catalogs from <Dir>/<chainID>/{tokens,pools}.json.
// A missing file is an empty catalog.
type FileSource struct {
	Dir string
}

func (s FileSource) LoadTokens(ctx context.Context, chainID int64) ([]model.Token, error) {
	var tokens []model.Token
	if err := s.read(chainID, tokensFile, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (s FileSource) LoadPools(ctx context.Context, chainID int64) ([]model.PoolDescriptor, error) {
	var pools []model.PoolDescriptor
	if err := s.read(chainID, poolsFile, &pools); err != nil {
		return nil, err
	}
	return pools, nil
}

func (s FileSource) read(chainID int64, name string, out interface{}) error {
	path := filepath.Join(s.Dir, strconv.FormatInt(chainID, 10), name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
