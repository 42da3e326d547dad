package model

// TransactionType is the externally visible activity type.
type TransactionType string

const (
	TypeReceive TransactionType = "Receive"
	TypeSent    TransactionType = "Sent"
	TypeSwap    TransactionType = "Swap"
	TypeStake   TransactionType = "Stake"
	TypeUnstake TransactionType = "Unstake"
	TypeLock    TransactionType = "Lock"
	TypeUnlock  TransactionType = "Unlock"
	TypeVote    TransactionType = "Vote"
	TypePoke    TransactionType = "Poke"
	TypeReset   TransactionType = "Reset"
	TypeUnknown TransactionType = "Unknown"
)

// Side selects which leg total values a record.
type Side int

const (
	SideNone Side = iota
	SideOut
	SideIn
)

// ClassifiedActivity is one reconstructed history entry.
type ClassifiedActivity struct {
	Title       string          `json:"title"`
	TxHash      string          `json:"txHash"`
	Type        TransactionType `json:"type"`
	ActionTitle string          `json:"actionTitle,omitempty"`
	Symbol      string          `json:"symbol"`
	Amount      float64         `json:"amount"`
	AmountUSD   *float64        `json:"amountUsd,omitempty"`
	Timestamp   int64           `json:"timestamp"`
	ChainID     int64           `json:"chainId"`
	Side        Side            `json:"-"`
}

// HistoryQuery is the input of the history query operation.
type HistoryQuery struct {
	Wallet string  `json:"walletAddress"`
	Chains []int64 `json:"chains"`
	Limit  int     `json:"limit"`
	Page   int     `json:"page"`
}

// HistoryPage is one page of merged history.
type HistoryPage struct {
	Transactions []ClassifiedActivity `json:"transactions"`
	Total        int                  `json:"total"`
	Page         int                  `json:"page"`
}
