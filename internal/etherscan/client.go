// Package etherscan provides an Etherscan API v2 client for transaction
// history queries.
package etherscan

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	apperr "unigate/pkg/errors"
)

const (
	// DefaultBaseURL is the Etherscan API v2 base URL.
	DefaultBaseURL = "https://api.etherscan.io/v2"

	// DefaultChainID is the Sepolia chain ID for the Etherscan v2 API.
	DefaultChainID = "11155111"

	// httpTimeout is the default HTTP request timeout.
	httpTimeout = 30 * time.Second

	// maxResponseBody is the maximum response body size to read (1 MB).
	maxResponseBody = 1 << 20
)

var (
	// ErrAPIKeyRequired indicates the Etherscan API key was not provided.
	ErrAPIKeyRequired = apperr.New("ETHERSCAN_API_KEY_REQUIRED", "Etherscan API key is required", 500)

	// ErrAPIError indicates the Etherscan API returned an error response.
	ErrAPIError = apperr.New("ETHERSCAN_API_ERROR", "Etherscan API returned an error", 502)

	// ErrRateLimited indicates the Etherscan API rate limit was exceeded.
	ErrRateLimited = apperr.New("ETHERSCAN_RATE_LIMITED", "Etherscan API rate limit exceeded", 502)
)

// Transaction is one entry of the account txlist action. Etherscan returns
// every field as a string.
type Transaction struct {
	BlockNumber       string `json:"blockNumber"`
	TimeStamp         string `json:"timeStamp"`
	Hash              string `json:"hash"`
	Nonce             string `json:"nonce"`
	BlockHash         string `json:"blockHash"`
	TransactionIndex  string `json:"transactionIndex"`
	From              string `json:"from"`
	To                string `json:"to"`
	Value             string `json:"value"`
	Gas               string `json:"gas"`
	GasPrice          string `json:"gasPrice"`
	IsError           string `json:"isError"`
	TxReceiptStatus   string `json:"txreceipt_status"`
	Input             string `json:"input"`
	ContractAddress   string `json:"contractAddress"`
	CumulativeGasUsed string `json:"cumulativeGasUsed"`
	GasUsed           string `json:"gasUsed"`
	Confirmations     string `json:"confirmations"`
	MethodID          string `json:"methodId"`
	FunctionName      string `json:"functionName"`
}

// apiResponse is the standard Etherscan envelope. Result is an array for
// txlist and a bare string for error responses.
type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// Client queries the Etherscan API. Requests are rate limited to the free
// tier allowance.
type Client struct {
	apiKey     string
	baseURL    string
	chainID    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOptions configures the Etherscan client.
type ClientOptions struct {
	// BaseURL overrides the default Etherscan API URL (useful for testing).
	BaseURL string
	// ChainID overrides the default chain ID.
	ChainID string
	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
}

// NewClient creates an Etherscan API client.
func NewClient(apiKey string, opts *ClientOptions) (*Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		chainID: DefaultChainID,
		httpClient: &http.Client{
			Timeout: httpTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		// 5 req/s, burst of 5 (Etherscan free tier)
		limiter: rate.NewLimiter(5, 5),
	}

	if opts != nil {
		if opts.BaseURL != "" {
			c.baseURL = opts.BaseURL
		}
		if opts.ChainID != "" {
			c.chainID = opts.ChainID
		}
		if opts.HTTPClient != nil {
			c.httpClient = opts.HTTPClient
		}
	}

	return c, nil
}

// Transactions lists transactions of an address, newest first. page and
// offset are optional; zero means the API default.
func (c *Client) Transactions(ctx context.Context, address string, page, offset int) ([]Transaction, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "txlist")
	params.Set("address", address)
	params.Set("startblock", "0")
	params.Set("endblock", "latest")
	params.Set("sort", "desc")
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	resp, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, err
	}

	var txs []Transaction
	if err := json.Unmarshal(resp.Result, &txs); err != nil {
		// "No transactions found" carries an empty array, but API errors
		// carry a bare string result.
		if resp.Status == "0" {
			return []Transaction{}, nil
		}
		return nil, apperr.Wrap(ErrAPIError, "decoding result")
	}
	return txs, nil
}

// doRequest performs a rate-limited GET against the API.
func (c *Client) doRequest(ctx context.Context, params url.Values) (*apiResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperr.Wrap(err, "rate limiter")
	}

	// The v2 API requires chainid on every request.
	params.Set("chainid", c.chainID)

	reqURL := fmt.Sprintf("%s/api?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperr.Wrap(err, "creating request")
	}

	// API key in a header rather than the query string keeps it out of
	// server and proxy logs.
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrLedgerUnavailable, "sending request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, apperr.Wrap(err, "reading response")
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.WithDetails(ErrAPIError, map[string]string{
			"status": strconv.Itoa(resp.StatusCode),
		})
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperr.Wrap(ErrAPIError, "decoding response")
	}
	return &parsed, nil
}
