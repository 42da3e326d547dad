package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"historyScope/internal/model"
)

// jsonlRecord is one exported line.
type jsonlRecord struct {
	Wallet string `json:"wallet"`
	model.ClassifiedActivity
}

// JSONLSink appends history records to a JSONL file.
type JSONLSink struct {
	path string
	mu   sync.Mutex
}

func NewJSONLSink(path string) *JSONLSink {
	return &JSONLSink{path: path}
}

// PutActivities appends one JSON line per record.
func (s *JSONLSink) PutActivities(wallet common.Address, records []model.ClassifiedActivity) error {
	if len(records) == 0 {
		return nil
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	owner := strings.ToLower(wallet.Hex())
	writer := bufio.NewWriter(file)
	enc := json.NewEncoder(writer)
	for _, record := range records {
		if err := enc.Encode(jsonlRecord{Wallet: owner, ClassifiedActivity: record}); err != nil {
			return fmt.Errorf("write activity %s: %w", record.TxHash, err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
