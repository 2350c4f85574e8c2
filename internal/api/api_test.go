package api

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"unigate/internal/config"
	"unigate/internal/store"
	apperr "unigate/pkg/errors"
)

const (
	testPassword = "Secr3t!"
	testMnemonic = "test test test test test test test test test test test junk"
	testAddress  = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

	secondMnemonic = "legal winner thank year wave sausage worth useful legal winner thank yellow"

	testUniversityAddr = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	testPriceFeedAddr  = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
)

// Selector-compatible subset of the University ABI, used only to pack canned
// outputs and dispatch simulated calls by method id.
const testUniversityABI = `[
  {"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"campuses","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"id","type":"uint256"},{"name":"name","type":"string"}]},
  {"type":"function","name":"getUser","stateMutability":"view","inputs":[{"name":"wallet","type":"address"}],"outputs":[{"name":"user","type":"tuple","components":[{"name":"currentWallet","type":"address"},{"name":"previousWallets","type":"address[]"},{"name":"roles","type":"uint8[]"},{"name":"careerId","type":"uint256"}]}]},
  {"type":"function","name":"addCampus","stateMutability":"nonpayable","inputs":[{"name":"name","type":"string"}],"outputs":[]},
  {"type":"function","name":"registerSubjects","stateMutability":"nonpayable","inputs":[{"name":"subjectsId","type":"uint256[]"}],"outputs":[]},
  {"type":"function","name":"addUser","stateMutability":"nonpayable","inputs":[{"name":"wallet","type":"address"},{"name":"roles","type":"uint8[]"},{"name":"careerId","type":"uint256"}],"outputs":[]}
]`

type transferCall struct {
	from, to string
	value    *big.Int
}

// fakeLedger serves contract reads from canned outputs and records every
// submission so tests can assert exactly what reached the ledger.
type fakeLedger struct {
	t         *testing.T
	uniABI    abi.ABI
	outputs   map[string][]byte
	errs      map[string]error
	sent      []*types.Transaction
	transfers []transferCall
}

func newFakeLedger(t *testing.T) *fakeLedger {
	t.Helper()

	parsed, err := abi.JSON(strings.NewReader(testUniversityABI))
	require.NoError(t, err)
	return &fakeLedger{
		t:       t,
		uniABI:  parsed,
		outputs: make(map[string][]byte),
		errs:    make(map[string]error),
	}
}

func (f *fakeLedger) setOutput(method string, vals ...any) {
	f.t.Helper()

	m, ok := f.uniABI.Methods[method]
	require.True(f.t, ok, "unknown method %s", method)
	out, err := m.Outputs.Pack(vals...)
	require.NoError(f.t, err)
	f.outputs[method] = out
}

func (f *fakeLedger) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(31337), nil
}

func (f *fakeLedger) BalanceAt(context.Context, string) (*big.Int, error) {
	return big.NewInt(2_000_000_000_000_000_000), nil
}

func (f *fakeLedger) GasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeLedger) PendingNonceAt(context.Context, string) (uint64, error) {
	return 0, nil
}

func (f *fakeLedger) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 100_000, nil
}

func (f *fakeLedger) CallContract(_ context.Context, msg ethereum.CallMsg) ([]byte, error) {
	method, err := f.uniABI.MethodById(msg.Data[:4])
	if err != nil {
		f.t.Fatalf("unexpected selector %x", msg.Data[:4])
	}
	if err := f.errs[method.Name]; err != nil {
		return nil, err
	}
	if out, ok := f.outputs[method.Name]; ok {
		return out, nil
	}
	if len(method.Outputs) == 0 {
		return nil, nil
	}
	f.t.Fatalf("no canned output for %s", method.Name)
	return nil, nil
}

func (f *fakeLedger) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeLedger) Transfer(_ context.Context, _ *ecdsa.PrivateKey, from, to string, value *big.Int) (string, error) {
	f.transfers = append(f.transfers, transferCall{from: from, to: to, value: new(big.Int).Set(value)})
	return "0x88df016429689c079f3b2f6ad39fa052532c56795b733da78a91ebe6a713944b", nil
}

func newTestServer(t *testing.T) (*Server, *fakeLedger) {
	t.Helper()

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})

	cfg := config.Defaults()
	cfg.Eth.UniversityAddress = testUniversityAddr
	cfg.Eth.PriceFeedAddress = testPriceFeedAddr

	ledger := newFakeLedger(t)
	s, err := New(cfg, st, ledger, nil, zerolog.Nop())
	require.NoError(t, err)
	return s, ledger
}

// newSessionUser creates a credential user with an active session and
// returns the user plus a bearer token.
func newSessionUser(t *testing.T, st *store.Store, email, password string) (*store.User, string) {
	t.Helper()
	ctx := context.Background()

	u := &store.User{Name: "Test", Email: email}
	require.NoError(t, st.CreateUser(ctx, u))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, st.CreateAccount(ctx, &store.Account{
		AccountID:  u.ID,
		ProviderID: store.ProviderCredential,
		UserID:     u.ID,
		Password:   string(hash),
	}))

	token := uuid.NewString()
	require.NoError(t, st.CreateSession(ctx, &store.Session{
		Token:     token,
		ExpiresAt: time.Now().Add(time.Hour),
		UserID:    u.ID,
	}))
	return u, token
}

func doJSON(t *testing.T, s *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateWallet(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)
	_, token := newSessionUser(t, s.Store, "alice@university.edu", testPassword)

	rec := doJSON(t, s, http.MethodPost, "/api/wallets", token,
		`{"phrase":"`+testMnemonic+`","password":"`+testPassword+`"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, testAddress, body["address"])
}

func TestCreateWallet_Unauthenticated(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/wallets", "",
		`{"phrase":"`+testMnemonic+`","password":"`+testPassword+`"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", decodeBody(t, rec)["error"])
}

func TestListWallets(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)
	_, token := newSessionUser(t, s.Store, "bob@university.edu", testPassword)

	rec := doJSON(t, s, http.MethodPost, "/api/wallets", token,
		`{"phrase":"`+testMnemonic+`","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/wallets", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	w := data[0].(map[string]any)
	assert.Equal(t, testAddress, w["address"])
	assert.Equal(t, true, w["active"])
	assert.NotContains(t, w, "phrase")
}

// A user with an active wallet sends value with the correct confirmation
// password: the ledger receives exactly one submission from the stored
// wallet's address.
func TestSendValue_CorrectPassword(t *testing.T) {
	t.Parallel()
	s, ledger := newTestServer(t)
	_, token := newSessionUser(t, s.Store, "carol@university.edu", testPassword)

	rec := doJSON(t, s, http.MethodPost, "/api/wallets", token,
		`{"phrase":"`+testMnemonic+`","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	to := "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	rec = doJSON(t, s, http.MethodPost, "/api/transactions", token,
		`{"address":"`+to+`","amount":"1000","password":"`+testPassword+`"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, to, data["address"])
	assert.NotEmpty(t, data["hash"])

	require.Len(t, ledger.transfers, 1)
	assert.Equal(t, testAddress, ledger.transfers[0].from)
	assert.Equal(t, to, ledger.transfers[0].to)
	assert.Equal(t, int64(1000), ledger.transfers[0].value.Int64())
}

// A wrong confirmation password is rejected before anything reaches the
// ledger.
func TestSendValue_WrongPassword(t *testing.T) {
	t.Parallel()
	s, ledger := newTestServer(t)
	_, token := newSessionUser(t, s.Store, "dave@university.edu", testPassword)

	rec := doJSON(t, s, http.MethodPost, "/api/wallets", token,
		`{"phrase":"`+testMnemonic+`","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/transactions", token,
		`{"address":"0x70997970C51812dc3A010C7d01b50e0d17dc79C8","amount":"1000","password":"wrong"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid password", decodeBody(t, rec)["error"])
	assert.Empty(t, ledger.transfers)
	assert.Empty(t, ledger.sent)
}

// A wallet-gated endpoint with a correct password but no wallet record.
func TestSendValue_NoWallet(t *testing.T) {
	t.Parallel()
	s, ledger := newTestServer(t)
	_, token := newSessionUser(t, s.Store, "erin@university.edu", testPassword)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions", token,
		`{"address":"0x70997970C51812dc3A010C7d01b50e0d17dc79C8","amount":"1000","password":"`+testPassword+`"}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Wallet not found", decodeBody(t, rec)["error"])
	assert.Empty(t, ledger.transfers)
}

func TestSendValue_InvalidAmount(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)
	_, token := newSessionUser(t, s.Store, "frank@university.edu", testPassword)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions", token,
		`{"address":"0x70997970C51812dc3A010C7d01b50e0d17dc79C8","amount":"lots","password":"`+testPassword+`"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddCampus(t *testing.T) {
	t.Parallel()
	s, ledger := newTestServer(t)
	_, token := newSessionUser(t, s.Store, "grace@university.edu", testPassword)

	rec := doJSON(t, s, http.MethodPost, "/api/wallets", token,
		`{"phrase":"`+testMnemonic+`","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/campuses", token,
		`{"name":"Puerto Ordaz","password":"`+testPassword+`"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Campus created", decodeBody(t, rec)["message"])
	require.Len(t, ledger.sent, 1)
	assert.Equal(t, testUniversityAddr, ledger.sent[0].To().Hex())
}

// The ledger rejecting a write surfaces the revert reason, and nothing is
// submitted.
func TestAddCampus_LedgerRejects(t *testing.T) {
	t.Parallel()
	s, ledger := newTestServer(t)
	_, token := newSessionUser(t, s.Store, "heidi@university.edu", testPassword)

	rec := doJSON(t, s, http.MethodPost, "/api/wallets", token,
		`{"phrase":"`+testMnemonic+`","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	ledger.errs["addCampus"] = apperr.WithMessage(apperr.ErrLedgerRejected, "Campus name cannot be empty")

	rec = doJSON(t, s, http.MethodPost, "/api/campuses", token,
		`{"name":"","password":"`+testPassword+`"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Campus name cannot be empty", decodeBody(t, rec)["error"])
	assert.Empty(t, ledger.sent)
}

func TestGetCampus(t *testing.T) {
	t.Parallel()
	s, ledger := newTestServer(t)
	ledger.setOutput("campuses", big.NewInt(3), "Puerto Ordaz")

	rec := doJSON(t, s, http.MethodGet, "/api/campuses/3", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(3), data["id"])
	assert.Equal(t, "Puerto Ordaz", data["name"])
}

func TestGetCampus_NotFound(t *testing.T) {
	t.Parallel()
	s, ledger := newTestServer(t)
	ledger.setOutput("campuses", big.NewInt(0), "")

	rec := doJSON(t, s, http.MethodGet, "/api/campuses/99", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decodeBody(t, rec)["error"])
}

func TestUserRoles_OwnerIsAdministrator(t *testing.T) {
	t.Parallel()
	s, ledger := newTestServer(t)
	u, token := newSessionUser(t, s.Store, "ivan@university.edu", testPassword)

	rec := doJSON(t, s, http.MethodPost, "/api/wallets", token,
		`{"phrase":"`+testMnemonic+`","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	ledger.setOutput("owner", common.HexToAddress(testAddress))
	setEmptyUser(t, ledger)

	rec = doJSON(t, s, http.MethodGet, "/api/users/"+u.ID+"/roles", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := decodeBody(t, rec)["data"].(map[string]any)
	roles := data["roles"].([]any)
	require.Len(t, roles, 1)
	assert.Equal(t, float64(5), roles[0])
}

func TestUserRoles_NoWallet(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)
	u, _ := newSessionUser(t, s.Store, "judy@university.edu", testPassword)

	rec := doJSON(t, s, http.MethodGet, "/api/users/"+u.ID+"/roles", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Wallet not found", decodeBody(t, rec)["error"])
}

func TestUserWallets_Balances(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)
	u, token := newSessionUser(t, s.Store, "kim@university.edu", testPassword)

	rec := doJSON(t, s, http.MethodPost, "/api/wallets", token,
		`{"phrase":"`+testMnemonic+`","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/users/"+u.ID+"/wallets", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "2000000000000000000", data[0].(map[string]any)["balance"])
}

func TestSearchUsers(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)
	u, token := newSessionUser(t, s.Store, "lucy@university.edu", testPassword)

	rec := doJSON(t, s, http.MethodPost, "/api/wallets", token,
		`{"phrase":"`+testMnemonic+`","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// No filter yields an empty result, never a listing.
	rec = doJSON(t, s, http.MethodGet, "/api/users", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody(t, rec)["data"])

	rec = doJSON(t, s, http.MethodGet, "/api/users?email=lucy@university.edu", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, u.ID, data[0].(map[string]any)["id"])
	assert.Equal(t, testAddress, data[0].(map[string]any)["wallet"])

	rec = doJSON(t, s, http.MethodGet, "/api/users?wallet="+testAddress, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeBody(t, rec)["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, u.ID, data[0].(map[string]any)["id"])
}

const userInfoBody = `{
  "firstName":"Ana","lastName":"Pérez","sex":"F","phoneNumber":"+584141234567",
  "birthDate":"2001-04-12","birthCountry":"Venezuela","birthState":"Bolívar",
  "birthCity":"Puerto Ordaz","address":"Alta Vista","campusId":"1","careerId":"2"
}`

func TestUserInfoLifecycle(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)
	u, token := newSessionUser(t, s.Store, "mia@university.edu", testPassword)

	// Only the owner of the profile may create it.
	_, otherToken := newSessionUser(t, s.Store, "other@university.edu", testPassword)
	rec := doJSON(t, s, http.MethodPost, "/api/users/"+u.ID+"/info", otherToken, userInfoBody)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/users/"+u.ID+"/info", token, userInfoBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Ana", data["firstName"])
	assert.Equal(t, false, data["verified"])

	// Creating twice is rejected.
	rec = doJSON(t, s, http.MethodPost, "/api/users/"+u.ID+"/info", token, userInfoBody)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User info already exists", decodeBody(t, rec)["error"])

	// Updating resets verification.
	require.NoError(t, s.Store.SetUserInfoVerified(context.Background(), u.ID, true))
	rec = doJSON(t, s, http.MethodPut, "/api/users/"+u.ID+"/info", token, `{"firstName":"Anabel"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	info, err := s.Store.UserInfoByUserID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anabel", info.FirstName)
	assert.False(t, info.Verified)

	rec = doJSON(t, s, http.MethodGet, "/api/users/"+u.ID+"/info", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Anabel", decodeBody(t, rec)["data"].(map[string]any)["firstName"])
}

func TestUpdateUserInfo_Missing(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)
	u, token := newSessionUser(t, s.Store, "nina@university.edu", testPassword)

	rec := doJSON(t, s, http.MethodPut, "/api/users/"+u.ID+"/info", token, `{"firstName":"X"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User info does not exist", decodeBody(t, rec)["error"])
}

func TestValidateUser(t *testing.T) {
	t.Parallel()
	s, ledger := newTestServer(t)
	ctx := context.Background()

	_, adminToken := newSessionUser(t, s.Store, "admin@university.edu", testPassword)
	rec := doJSON(t, s, http.MethodPost, "/api/wallets", adminToken,
		`{"phrase":"`+testMnemonic+`","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	student, studentToken := newSessionUser(t, s.Store, "student@university.edu", testPassword)
	rec = doJSON(t, s, http.MethodPost, "/api/wallets", studentToken,
		`{"phrase":"`+secondMnemonic+`","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, s, http.MethodPost, "/api/users/"+student.ID+"/info", studentToken, userInfoBody)
	require.Equal(t, http.StatusOK, rec.Code)

	// The admin's wallet is the contract owner.
	ledger.setOutput("owner", common.HexToAddress(testAddress))
	setEmptyUser(t, ledger)

	rec = doJSON(t, s, http.MethodPost, "/api/users/"+student.ID+"/validate", adminToken,
		`{"roles":[0],"comments":"ok","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, ledger.sent, 1)
	assert.Equal(t, testUniversityAddr, ledger.sent[0].To().Hex())

	info, err := s.Store.UserInfoByUserID(ctx, student.ID)
	require.NoError(t, err)
	assert.True(t, info.Verified)

	reviews, err := s.Store.ReviewsByUser(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.True(t, reviews[0].Approved)
	assert.Equal(t, "ok", reviews[0].Comments)
}

func TestValidateUser_NotAdmin(t *testing.T) {
	t.Parallel()
	s, ledger := newTestServer(t)

	user, token := newSessionUser(t, s.Store, "plain@university.edu", testPassword)
	rec := doJSON(t, s, http.MethodPost, "/api/wallets", token,
		`{"phrase":"`+testMnemonic+`","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Someone else owns the contract; the caller has no on-chain roles.
	ledger.setOutput("owner", common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"))
	setEmptyUser(t, ledger)

	rec = doJSON(t, s, http.MethodPost, "/api/users/"+user.ID+"/validate", token,
		`{"roles":[0],"password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, ledger.sent)
}

func TestPendingValidations(t *testing.T) {
	t.Parallel()
	s, ledger := newTestServer(t)

	_, adminToken := newSessionUser(t, s.Store, "dean@university.edu", testPassword)
	rec := doJSON(t, s, http.MethodPost, "/api/wallets", adminToken,
		`{"phrase":"`+testMnemonic+`","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	student, studentToken := newSessionUser(t, s.Store, "pending@university.edu", testPassword)
	rec = doJSON(t, s, http.MethodPost, "/api/users/"+student.ID+"/info", studentToken, userInfoBody)
	require.Equal(t, http.StatusOK, rec.Code)

	ledger.setOutput("owner", common.HexToAddress(testAddress))
	setEmptyUser(t, ledger)

	rec = doJSON(t, s, http.MethodGet, "/api/admin/pending-validations", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := decodeBody(t, rec)["data"].([]any)
	require.Len(t, data, 1)
	entry := data[0].(map[string]any)
	assert.Equal(t, student.ID, entry["user"].(map[string]any)["id"])
	assert.Equal(t, "Ana", entry["userInfo"].(map[string]any)["firstName"])
}

func TestPrices(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/prices/gas", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1000000000", decodeBody(t, rec)["data"].(map[string]any)["price"])
}

func TestExpiredSessionIsAnonymous(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)
	ctx := context.Background()

	u := &store.User{Name: "Stale", Email: "stale@university.edu"}
	require.NoError(t, s.Store.CreateUser(ctx, u))
	token := uuid.NewString()
	require.NoError(t, s.Store.CreateSession(ctx, &store.Session{
		Token:     token,
		ExpiresAt: time.Now().Add(-time.Minute),
		UserID:    u.ID,
	}))

	rec := doJSON(t, s, http.MethodGet, "/api/wallets", token, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

// setEmptyUser cans a getUser answer with no on-chain roles.
func setEmptyUser(t *testing.T, ledger *fakeLedger) {
	t.Helper()

	ledger.setOutput("getUser", struct {
		CurrentWallet   common.Address
		PreviousWallets []common.Address
		Roles           []uint8
		CareerId        *big.Int
	}{
		PreviousWallets: []common.Address{},
		Roles:           []uint8{},
		CareerId:        big.NewInt(0),
	})
}
