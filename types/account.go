package types

// Account is the record kept at an account's state address.
// Address is persisted alongside the name so records stay self-describing;
// older records without it still decode.
type Account struct {
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
	Address string `json:"address,omitempty"`
}

// AccountSnapshot is a client-side view of an account, as cached by the wallet.
type AccountSnapshot struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Balance   int64  `json:"balance"`
	UpdatedAt int64  `json:"updated_at"`
}
