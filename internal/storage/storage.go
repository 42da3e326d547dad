package storage

import (
	"github.com/ethereum/go-ethereum/common"

	"historyScope/internal/model"
)

// ActivitySink receives reconstructed history records for a wallet.
type ActivitySink interface {
	PutActivities(wallet common.Address, records []model.ClassifiedActivity) error
}
