package queue

type EventType string

const (
	StatsEventType        EventType = "stats"
	BlocksStoredEventType EventType = "blocks_stored"
)

// StatsEvent is published after an aggregate record is persisted
type StatsEvent struct {
	EventType               EventType `json:"event_type"`
	StatsType               string    `json:"stats_type"`
	StatsTimestamp          int64     `json:"stats_timestamp"`
	TotalTransactionCount   uint64    `json:"total_transaction_count"`
	AvgGasPrice             string    `json:"avg_gas_price"`
	TotalGLMTransfersCount  uint64    `json:"total_glm_transfers_count"`
	TotalGLMTransfersAmount float64   `json:"total_glm_transfers_amount"`
	EntityKey               string    `json:"entity_key"`
}

// BlocksStoredEvent is published after a batch of blocks is written
type BlocksStoredEvent struct {
	EventType      EventType `json:"event_type"`
	Mode           string    `json:"mode"`
	Count          int       `json:"count"`
	FirstBlock     uint64    `json:"first_block"`
	LastBlock      uint64    `json:"last_block"`
	FirstTimestamp int64     `json:"first_timestamp"`
	LastTimestamp  int64     `json:"last_timestamp"`
}

func NewStatsEvent(statsType string, ts int64, txCount uint64, avgGasPrice string, glmCount uint64, glmAmount float64, key string) *StatsEvent {
	return &StatsEvent{
		EventType:               StatsEventType,
		StatsType:               statsType,
		StatsTimestamp:          ts,
		TotalTransactionCount:   txCount,
		AvgGasPrice:             avgGasPrice,
		TotalGLMTransfersCount:  glmCount,
		TotalGLMTransfersAmount: glmAmount,
		EntityKey:               key,
	}
}
