package mirror

type AccountInfo struct {
	Account    string         `json:"account"`
	Alias      string         `json:"alias"`
	EVMAddress string         `json:"evm_address"`
	Deleted    bool           `json:"deleted"`
	Key        map[string]any `json:"key"`
	Memo       string         `json:"memo"`
	Balance    AccountBalance `json:"balance"`
}

type AccountBalance struct {
	Balance   int64          `json:"balance"`
	Timestamp string         `json:"timestamp"`
	Tokens    []TokenBalance `json:"tokens"`
}

type TokenBalance struct {
	TokenID string `json:"token_id"`
	Balance int64  `json:"balance"`
}

// TokenRelationship is one entry of /api/v1/accounts/{id}/tokens.
type TokenRelationship struct {
	TokenID              string `json:"token_id"`
	Balance              int64  `json:"balance"`
	Decimals             int    `json:"decimals"`
	AutomaticAssociation bool   `json:"automatic_association"`
	FreezeStatus         string `json:"freeze_status"`
	KYCStatus            string `json:"kyc_status"`
	CreatedTimestamp     string `json:"created_timestamp"`
}

type tokenRelationshipsResponse struct {
	Tokens []TokenRelationship `json:"tokens"`
	Links  struct {
		Next string `json:"next"`
	} `json:"links"`
}

type TopicInfo struct {
	TopicID          string         `json:"topic_id"`
	Memo             string         `json:"memo"`
	Deleted          bool           `json:"deleted"`
	CreatedTimestamp string         `json:"created_timestamp"`
	SubmitKey        map[string]any `json:"submit_key"`
}

type TopicMessage struct {
	ConsensusTimestamp string `json:"consensus_timestamp"`
	Message            string `json:"message"`
	PayerAccountID     string `json:"payer_account_id"`
	SequenceNumber     int64  `json:"sequence_number"`
	TopicID            string `json:"topic_id"`
}

type topicMessagesResponse struct {
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
	Messages []TopicMessage `json:"messages"`
}

type Transaction struct {
	ChargedTxFee       int64           `json:"charged_tx_fee"`
	ConsensusTimestamp string          `json:"consensus_timestamp"`
	EntityID           *string         `json:"entity_id"`
	MemoBase64         string          `json:"memo_base64"`
	Name               string          `json:"name"`
	Result             string          `json:"result"`
	TransactionID      string          `json:"transaction_id"`
	Transfers          []Transfer      `json:"transfers"`
	TokenTransfers     []TokenTransfer `json:"token_transfers"`
}

type Transfer struct {
	Account    string `json:"account"`
	Amount     int64  `json:"amount"`
	IsApproval bool   `json:"is_approval"`
}

type TokenTransfer struct {
	TokenID string `json:"token_id"`
	Account string `json:"account"`
	Amount  int64  `json:"amount"`
}

type transactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}
