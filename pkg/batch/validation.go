package batch

import (
	"errors"
	"fmt"
	"math"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/shopspring/decimal"

	"github.com/hashgraph-online/hedera-batch-go/pkg/keyseal"
	"github.com/hashgraph-online/hedera-batch-go/pkg/ledger"
	"github.com/hashgraph-online/hedera-batch-go/pkg/shared"
)

const (
	KeyTypeED25519 = "ed25519"
	KeyTypeECDSA   = "ecdsa"

	tinybarsPerHbar = 100_000_000
	maxMemoBytes    = 100
)

// ValidationError reports a request problem found before any ledger call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid request: " + e.Message
	}
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Message)
}

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

func invalid(field string, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// resolveCredentials fills in the default operator and network and parses
// everything the ledger needs.
func (s *Service) resolveCredentials(credentials Credentials) (ledger.Credentials, error) {
	accountAddress := strings.TrimSpace(credentials.AccountAddress)
	privateKey := strings.TrimSpace(credentials.PrivateKey)
	network := strings.TrimSpace(credentials.Network)

	if accountAddress == "" && privateKey == "" {
		if s.config.DefaultOperator.IsZero() {
			return ledger.Credentials{}, invalid("accountAddress", "is required when no default operator is configured")
		}
		accountAddress = strings.TrimSpace(s.config.DefaultOperator.AccountID)
		privateKey = strings.TrimSpace(s.config.DefaultOperator.PrivateKey)
		if network == "" {
			network = s.config.DefaultOperator.Network
		}
	}
	if accountAddress == "" {
		return ledger.Credentials{}, invalid("accountAddress", "is required")
	}
	if privateKey == "" {
		return ledger.Credentials{}, invalid("privateKey", "is required")
	}
	if network == "" {
		network = s.config.DefaultNetwork
	}

	normalized, err := shared.NormalizeNetwork(network)
	if err != nil {
		return ledger.Credentials{}, invalid("network", "%q is not supported", network)
	}
	accountID, err := shared.ParseAccountID(accountAddress)
	if err != nil {
		return ledger.Credentials{}, invalid("accountAddress", "%q is not a valid account ID", accountAddress)
	}
	key, err := shared.ParsePrivateKey(privateKey)
	if err != nil {
		return ledger.Credentials{}, invalid("privateKey", "cannot be parsed")
	}

	return ledger.Credentials{
		Network:    normalized,
		AccountID:  accountID,
		PrivateKey: key,
	}, nil
}

func (s *Service) checkSize(field string, count int) error {
	if count == 0 {
		return invalid(field, "must not be empty")
	}
	if count > s.config.MaxBatchSize {
		return invalid(field, "must contain at most %d items, got %d", s.config.MaxBatchSize, count)
	}
	return nil
}

func parseAccounts(field string, raw []string) ([]hedera.AccountID, error) {
	accounts := make([]hedera.AccountID, 0, len(raw))
	for index, value := range raw {
		accountID, err := shared.ParseAccountID(value)
		if err != nil {
			return nil, invalid(fmt.Sprintf("%s[%d]", field, index), "%q is not a valid account ID", value)
		}
		accounts = append(accounts, accountID)
	}
	return accounts, nil
}

func parseTokens(field string, raw []string) ([]hedera.TokenID, error) {
	tokens := make([]hedera.TokenID, 0, len(raw))
	for index, value := range raw {
		tokenID, err := shared.ParseTokenID(value)
		if err != nil {
			return nil, invalid(fmt.Sprintf("%s[%d]", field, index), "%q is not a valid token ID", value)
		}
		tokens = append(tokens, tokenID)
	}
	return tokens, nil
}

// hbarToTinybars converts a decimal HBAR amount. Amounts must be a whole
// number of tinybars and fit in an int64.
func hbarToTinybars(field string, amount decimal.Decimal, allowZero bool) (int64, error) {
	if amount.IsNegative() {
		return 0, invalid(field, "must not be negative")
	}
	if amount.IsZero() {
		if allowZero {
			return 0, nil
		}
		return 0, invalid(field, "must be positive")
	}

	tinybars := amount.Shift(8)
	if !tinybars.IsInteger() {
		return 0, invalid(field, "%s HBAR is not a whole number of tinybars", amount.String())
	}
	if tinybars.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, invalid(field, "%s HBAR is out of range", amount.String())
	}
	return tinybars.IntPart(), nil
}

func checkMemo(field string, memo string) error {
	if len(memo) > maxMemoBytes {
		return invalid(field, "must be at most %d bytes", maxMemoBytes)
	}
	return nil
}

type transferPlan struct {
	credentials ledger.Credentials
	receivers   []hedera.AccountID
	amount      hedera.Hbar
	memo        string
}

func (s *Service) validateTransfer(request TransferRequest) (transferPlan, error) {
	credentials, err := s.resolveCredentials(request.Credentials)
	if err != nil {
		return transferPlan{}, err
	}
	if err := s.checkSize("receivedAddresses", len(request.ReceivedAddresses)); err != nil {
		return transferPlan{}, err
	}
	tinybars, err := hbarToTinybars("amount", request.Amount, false)
	if err != nil {
		return transferPlan{}, err
	}
	if err := checkMemo("memo", request.Memo); err != nil {
		return transferPlan{}, err
	}
	receivers, err := parseAccounts("receivedAddresses", request.ReceivedAddresses)
	if err != nil {
		return transferPlan{}, err
	}
	for index, receiver := range receivers {
		if receiver.String() == credentials.AccountID.String() {
			return transferPlan{}, invalid(fmt.Sprintf("receivedAddresses[%d]", index), "must differ from the operator account")
		}
	}

	return transferPlan{
		credentials: credentials,
		receivers:   receivers,
		amount:      hedera.HbarFromTinybar(tinybars),
		memo:        request.Memo,
	}, nil
}

type associatePlan struct {
	credentials ledger.Credentials
	accounts    []hedera.AccountID
	tokens      []hedera.TokenID
	accountKeys map[string]hedera.PrivateKey
}

func (s *Service) validateAssociate(request AssociateRequest) (associatePlan, error) {
	credentials, err := s.resolveCredentials(request.Credentials)
	if err != nil {
		return associatePlan{}, err
	}
	if err := s.checkSize("associatedAddresses", len(request.AssociatedAddresses)); err != nil {
		return associatePlan{}, err
	}
	if err := s.checkSize("tokens", len(request.Tokens)); err != nil {
		return associatePlan{}, err
	}
	if pairs := len(request.AssociatedAddresses) * len(request.Tokens); pairs > s.config.MaxBatchSize {
		return associatePlan{}, invalid("tokens", "%d account/token pairs exceed the batch limit of %d", pairs, s.config.MaxBatchSize)
	}
	accounts, err := parseAccounts("associatedAddresses", request.AssociatedAddresses)
	if err != nil {
		return associatePlan{}, err
	}
	tokens, err := parseTokens("tokens", request.Tokens)
	if err != nil {
		return associatePlan{}, err
	}

	known := make(map[string]struct{}, len(accounts))
	for _, accountID := range accounts {
		known[accountID.String()] = struct{}{}
	}
	accountKeys := make(map[string]hedera.PrivateKey, len(request.AccountKeys))
	for rawAccount, rawKey := range request.AccountKeys {
		field := fmt.Sprintf("accountKeys[%s]", rawAccount)
		accountID, err := shared.ParseAccountID(rawAccount)
		if err != nil {
			return associatePlan{}, invalid(field, "is not a valid account ID")
		}
		if _, ok := known[accountID.String()]; !ok {
			return associatePlan{}, invalid(field, "is not one of the associated addresses")
		}
		key, err := shared.ParsePrivateKey(rawKey)
		if err != nil {
			return associatePlan{}, invalid(field, "cannot be parsed")
		}
		accountKeys[accountID.String()] = key
	}

	return associatePlan{
		credentials: credentials,
		accounts:    accounts,
		tokens:      tokens,
		accountKeys: accountKeys,
	}, nil
}

type createPlan struct {
	credentials        ledger.Credentials
	count              int
	initialBalance     hedera.Hbar
	keyType            string
	maxAutoAssociation *int32
	accountMemo        string
	recipientPublicKey string
}

func (s *Service) validateCreate(request CreateAccountsRequest) (createPlan, error) {
	credentials, err := s.resolveCredentials(request.Credentials)
	if err != nil {
		return createPlan{}, err
	}
	if request.NumberOfAccounts < 0 {
		return createPlan{}, invalid("numberOfAccounts", "must not be negative")
	}
	if err := s.checkSize("numberOfAccounts", request.NumberOfAccounts); err != nil {
		return createPlan{}, err
	}
	tinybars, err := hbarToTinybars("initialBalance", request.InitialBalance, true)
	if err != nil {
		return createPlan{}, err
	}

	keyType := strings.ToLower(strings.TrimSpace(request.KeyType))
	switch keyType {
	case "":
		keyType = KeyTypeED25519
	case KeyTypeED25519, KeyTypeECDSA:
	default:
		return createPlan{}, invalid("keyType", "must be %s or %s", KeyTypeED25519, KeyTypeECDSA)
	}

	if limit := request.MaxAutomaticTokenAssociations; limit != nil && *limit < -1 {
		return createPlan{}, invalid("maxAutomaticTokenAssociations", "must be -1 (unlimited) or greater")
	}
	if err := checkMemo("accountMemo", request.AccountMemo); err != nil {
		return createPlan{}, err
	}

	recipient := strings.TrimSpace(request.RecipientPublicKey)
	if recipient != "" {
		if _, err := keyseal.ParsePublicKey(recipient); err != nil {
			return createPlan{}, invalid("recipientPublicKey", "is not a valid secp256k1 public key")
		}
	}

	return createPlan{
		credentials:        credentials,
		count:              request.NumberOfAccounts,
		initialBalance:     hedera.HbarFromTinybar(tinybars),
		keyType:            keyType,
		maxAutoAssociation: request.MaxAutomaticTokenAssociations,
		accountMemo:        request.AccountMemo,
		recipientPublicKey: recipient,
	}, nil
}

type balancePlan struct {
	credentials ledger.Credentials
	accounts    []hedera.AccountID
	tokenID     *hedera.TokenID
}

func (s *Service) validateBalance(request BalanceRequest) (balancePlan, error) {
	credentials, err := s.resolveCredentials(request.Credentials)
	if err != nil {
		return balancePlan{}, err
	}
	if err := s.checkSize("accountAddresses", len(request.AccountAddresses)); err != nil {
		return balancePlan{}, err
	}
	accounts, err := parseAccounts("accountAddresses", request.AccountAddresses)
	if err != nil {
		return balancePlan{}, err
	}

	plan := balancePlan{credentials: credentials, accounts: accounts}
	if raw := strings.TrimSpace(request.TokenID); raw != "" {
		tokenID, err := shared.ParseTokenID(raw)
		if err != nil {
			return balancePlan{}, invalid("tokenId", "%q is not a valid token ID", raw)
		}
		plan.tokenID = &tokenID
	}
	return plan, nil
}
