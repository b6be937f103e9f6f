package domain

// Airdrop is one entry of the alpha airdrop catalog. Only fields the
// monitor acts on are decoded; descriptive fields are passed through to
// notifications unmodified.
type Airdrop struct {
	ConfigID        string  `json:"configId"`
	ConfigName      string  `json:"configName"`
	ContractAddress string  `json:"contractAddress"`
	ChainID         string  `json:"binanceChainId"`
	TokenSymbol     string  `json:"tokenSymbol"`
	AirdropAmount   float64 `json:"airdropAmount"`
	ClaimStartTime  int64   `json:"claimStartTime"`
	ClaimEndTime    int64   `json:"claimEndTime"` // epoch milliseconds
	Status          string  `json:"status"`
}

// TokenInfo is the per-token enrichment used for notification content.
type TokenInfo struct {
	IconURL     string `json:"iconUrl"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

// ReminderStatus is the persisted tracking record for one airdrop. The
// claim end time is frozen at first observation and the sent flags are
// monotonic: once true they are never cleared.
type ReminderStatus struct {
	ContractAddress string `json:"contractAddress"`
	ChainID         string `json:"chainId"`
	ClaimEndTime    int64  `json:"claimEndTime"` // epoch milliseconds
	TenMinuteSent   bool   `json:"tenMinuteSent"`
	FiveMinuteSent  bool   `json:"fiveMinuteSent"`
	OneMinuteSent   bool   `json:"oneMinuteSent"`
}

// ReminderEvent is published to the broker for every dispatched reminder.
type ReminderEvent struct {
	ContractAddress  string `json:"contractAddress"`
	ChainID          string `json:"chainId"`
	TokenSymbol      string `json:"tokenSymbol"`
	ThresholdMinutes int    `json:"thresholdMinutes"`
	ClaimEndTime     int64  `json:"claimEndTime"`
	SentAt           int64  `json:"sentAt"`
}
