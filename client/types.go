package client

// BatchStatus values reported by the REST API.
const (
	StatusPending   = "PENDING"
	StatusCommitted = "COMMITTED"
	StatusInvalid   = "INVALID"
	StatusUnknown   = "UNKNOWN"
)

type InvalidTransaction struct {
	ID           string `json:"id"`
	Message      string `json:"message"`
	ExtendedData []byte `json:"extended_data,omitempty"`
}

type BatchStatus struct {
	ID                  string               `json:"id"`
	Status              string               `json:"status"`
	InvalidTransactions []InvalidTransaction `json:"invalid_transactions"`
}

type StateChange struct {
	Address string `json:"address"`
	Value   []byte `json:"value"`
	Type    string `json:"type"`
}

type EventAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Event struct {
	EventType  string           `json:"event_type"`
	Attributes []EventAttribute `json:"attributes"`
	Data       []byte           `json:"data"`
}

// Receipt is the validator's record of an applied transaction.
type Receipt struct {
	TransactionID string        `json:"transaction_id"`
	StateChanges  []StateChange `json:"state_changes"`
	Events        []Event       `json:"events"`
	Data          [][]byte      `json:"data"`
}

type submitResponse struct {
	Link string `json:"link"`
}

type batchStatusResponse struct {
	Data []BatchStatus `json:"data"`
	Link string        `json:"link"`
}

type receiptsResponse struct {
	Data []Receipt `json:"data"`
}

type stateResponse struct {
	Data []byte `json:"data"`
	Head string `json:"head"`
}

// errorResponse is the REST API's error envelope.
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Title   string `json:"title"`
		Message string `json:"message"`
	} `json:"error"`
}
