package history

import (
	"sort"

	"historyScope/internal/model"
)

// Sort orders records newest first. Equal timestamps order by chain ID,
// transaction hash and type so repeated queries return the same sequence.
func Sort(records []model.ClassifiedActivity) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Timestamp != b.Timestamp {
			return a.Timestamp > b.Timestamp
		}
		if a.ChainID != b.ChainID {
			return a.ChainID < b.ChainID
		}
		if a.TxHash != b.TxHash {
			return a.TxHash < b.TxHash
		}
		return a.Type < b.Type
	})
}

// Paginate slices sorted records with start = (page-1)*limit. Total is the
// pre-pagination count.
func Paginate(records []model.ClassifiedActivity, limit, page int) model.HistoryPage {
	out := model.HistoryPage{
		Transactions: []model.ClassifiedActivity{},
		Total:        len(records),
		Page:         page,
	}
	if limit <= 0 || page <= 0 {
		return out
	}
	start := (page - 1) * limit
	if start >= len(records) {
		return out
	}
	end := start + limit
	if end > len(records) {
		end = len(records)
	}
	out.Transactions = append(out.Transactions, records[start:end]...)
	return out
}
