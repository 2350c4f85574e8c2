// Package registry binds the on-chain University contract and its companion
// price feed: typed reads for campuses, careers, pensums, subjects and user
// roles, and owner-signed writes with revert reasons surfaced.
package registry

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	apperr "unigate/pkg/errors"
)

// Ledger is the node transport the registry runs on. *eth.Client satisfies
// it; tests substitute a fake.
type Ledger interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, address string) (*big.Int, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, address string) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Registry exposes the University contract surface.
type Registry struct {
	ledger     Ledger
	university common.Address
	priceFeed  common.Address
	uniABI     abi.ABI
	priceABI   abi.ABI
}

// New parses the contract ABIs and binds them to the given addresses.
func New(ledger Ledger, universityAddr, priceFeedAddr string) (*Registry, error) {
	uniABI, err := abi.JSON(strings.NewReader(universityABI))
	if err != nil {
		return nil, apperr.Wrap(err, "parsing university ABI")
	}
	priceABI, err := abi.JSON(strings.NewReader(priceConsumerABI))
	if err != nil {
		return nil, apperr.Wrap(err, "parsing price consumer ABI")
	}

	return &Registry{
		ledger:     ledger,
		university: common.HexToAddress(universityAddr),
		priceFeed:  common.HexToAddress(priceFeedAddr),
		uniABI:     uniABI,
		priceABI:   priceABI,
	}, nil
}

// Campus is a university campus record.
type Campus struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// Career belongs to a campus.
type Career struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	CampusID uint64 `json:"campusId"`
}

// Pensum is a curriculum version of a career.
type Pensum struct {
	ID       uint64    `json:"id"`
	CareerID uint64    `json:"careerId"`
	Subjects []Subject `json:"subjects,omitempty"`
}

// Subject is a course within a pensum.
type Subject struct {
	ID       uint64 `json:"id"`
	Credits  uint64 `json:"credits"`
	Semester uint64 `json:"semester"`
	Name     string `json:"name"`
}

// User is the on-chain identity of a wallet address.
type User struct {
	CurrentWallet   string   `json:"currentWallet"`
	PreviousWallets []string `json:"previousWallets"`
	Roles           []Role   `json:"roles"`
	CareerID        uint64   `json:"careerId"`
}

// call packs and executes a read against the University contract.
func (r *Registry) call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := r.uniABI.Pack(method, args...)
	if err != nil {
		return nil, apperr.Wrap(err, "packing %s", method)
	}

	out, err := r.ledger.CallContract(ctx, ethereum.CallMsg{To: &r.university, Data: data})
	if err != nil {
		return nil, err
	}

	vals, err := r.uniABI.Unpack(method, out)
	if err != nil {
		return nil, apperr.Wrap(err, "unpacking %s", method)
	}
	return vals, nil
}

// Campus fetches a campus by id. A zero record means the id was never
// assigned and surfaces as NotFound.
func (r *Registry) Campus(ctx context.Context, id uint64) (*Campus, error) {
	vals, err := r.call(ctx, "campuses", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}

	campusID := vals[0].(*big.Int).Uint64()
	if campusID == 0 {
		return nil, apperr.ErrNotFound
	}
	return &Campus{ID: campusID, Name: vals[1].(string)}, nil
}

// CampusCareers lists the careers offered at a campus.
func (r *Registry) CampusCareers(ctx context.Context, campusID uint64) ([]Career, error) {
	if _, err := r.Campus(ctx, campusID); err != nil {
		return nil, err
	}

	vals, err := r.call(ctx, "campusCareersCount", new(big.Int).SetUint64(campusID))
	if err != nil {
		return nil, err
	}
	count := vals[0].(*big.Int).Uint64()

	careers := make([]Career, 0, count)
	for i := uint64(0); i < count; i++ {
		idVals, err := r.call(ctx, "campusCareers",
			new(big.Int).SetUint64(campusID), new(big.Int).SetUint64(i))
		if err != nil {
			return nil, err
		}
		career, err := r.Career(ctx, idVals[0].(*big.Int).Uint64())
		if err != nil {
			return nil, err
		}
		careers = append(careers, *career)
	}
	return careers, nil
}

// Career fetches a career by id.
func (r *Registry) Career(ctx context.Context, id uint64) (*Career, error) {
	vals, err := r.call(ctx, "careers", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}

	careerID := vals[0].(*big.Int).Uint64()
	if careerID == 0 {
		return nil, apperr.ErrNotFound
	}
	return &Career{
		ID:       careerID,
		Name:     vals[1].(string),
		CampusID: vals[2].(*big.Int).Uint64(),
	}, nil
}

// CareerPensums lists the curriculum versions of a career.
func (r *Registry) CareerPensums(ctx context.Context, careerID uint64) ([]Pensum, error) {
	if _, err := r.Career(ctx, careerID); err != nil {
		return nil, err
	}

	vals, err := r.call(ctx, "careerPensumsCount", new(big.Int).SetUint64(careerID))
	if err != nil {
		return nil, err
	}
	count := vals[0].(*big.Int).Uint64()

	pensums := make([]Pensum, 0, count)
	for i := uint64(0); i < count; i++ {
		idVals, err := r.call(ctx, "careerPensums",
			new(big.Int).SetUint64(careerID), new(big.Int).SetUint64(i))
		if err != nil {
			return nil, err
		}
		pVals, err := r.call(ctx, "pensums", idVals[0])
		if err != nil {
			return nil, err
		}
		id := pVals[0].(*big.Int).Uint64()
		if id == 0 {
			continue
		}
		pensums = append(pensums, Pensum{ID: id, CareerID: pVals[1].(*big.Int).Uint64()})
	}
	return pensums, nil
}

// Pensum fetches a pensum by id, including its subjects.
func (r *Registry) Pensum(ctx context.Context, id uint64) (*Pensum, error) {
	vals, err := r.call(ctx, "pensums", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}

	pensumID := vals[0].(*big.Int).Uint64()
	if pensumID == 0 {
		return nil, apperr.ErrNotFound
	}

	p := &Pensum{ID: pensumID, CareerID: vals[1].(*big.Int).Uint64()}

	countVals, err := r.call(ctx, "pensumSubjectsCount", new(big.Int).SetUint64(pensumID))
	if err != nil {
		return nil, err
	}
	count := countVals[0].(*big.Int).Uint64()

	for i := uint64(0); i < count; i++ {
		idVals, err := r.call(ctx, "pensumSubjects",
			new(big.Int).SetUint64(pensumID), new(big.Int).SetUint64(i))
		if err != nil {
			return nil, err
		}
		subject, err := r.Subject(ctx, idVals[0].(*big.Int).Uint64())
		if err != nil {
			return nil, err
		}
		p.Subjects = append(p.Subjects, *subject)
	}
	return p, nil
}

// Subject fetches a subject by id.
func (r *Registry) Subject(ctx context.Context, id uint64) (*Subject, error) {
	vals, err := r.call(ctx, "subjects", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}

	subjectID := vals[0].(*big.Int).Uint64()
	if subjectID == 0 {
		return nil, apperr.ErrNotFound
	}
	return &Subject{
		ID:       subjectID,
		Credits:  vals[1].(*big.Int).Uint64(),
		Semester: vals[2].(*big.Int).Uint64(),
		Name:     vals[3].(string),
	}, nil
}

// Owner returns the contract owner address.
func (r *Registry) Owner(ctx context.Context) (string, error) {
	vals, err := r.call(ctx, "owner")
	if err != nil {
		return "", err
	}
	return vals[0].(common.Address).Hex(), nil
}

// User fetches the on-chain record of a wallet address.
func (r *Registry) User(ctx context.Context, wallet string) (*User, error) {
	vals, err := r.call(ctx, "getUser", common.HexToAddress(wallet))
	if err != nil {
		return nil, err
	}

	type rawUser struct {
		CurrentWallet   common.Address
		PreviousWallets []common.Address
		Roles           []uint8
		CareerId        *big.Int
	}
	raw := *abi.ConvertType(vals[0], new(rawUser)).(*rawUser)

	user := &User{
		CurrentWallet: raw.CurrentWallet.Hex(),
		CareerID:      raw.CareerId.Uint64(),
	}
	for _, w := range raw.PreviousWallets {
		user.PreviousWallets = append(user.PreviousWallets, w.Hex())
	}
	for _, role := range raw.Roles {
		user.Roles = append(user.Roles, Role(role))
	}
	return user, nil
}

// UserCurrentSubjects lists the subjects a wallet is enrolled in.
func (r *Registry) UserCurrentSubjects(ctx context.Context, wallet string) ([]Subject, error) {
	return r.subjectsOf(ctx, "getUserCurrentSubjects", wallet)
}

// UserSubjectsOptions lists the subjects a wallet may enroll in next.
func (r *Registry) UserSubjectsOptions(ctx context.Context, wallet string) ([]Subject, error) {
	return r.subjectsOf(ctx, "getUserSubjectsOptions", wallet)
}

func (r *Registry) subjectsOf(ctx context.Context, method, wallet string) ([]Subject, error) {
	vals, err := r.call(ctx, method, common.HexToAddress(wallet))
	if err != nil {
		return nil, err
	}

	ids := vals[0].([]*big.Int)
	subjects := make([]Subject, 0, len(ids))
	for _, id := range ids {
		subject, err := r.Subject(ctx, id.Uint64())
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, *subject)
	}
	return subjects, nil
}

// LatestPrice returns the price feed's latest answer.
func (r *Registry) LatestPrice(ctx context.Context) (*big.Int, error) {
	data, err := r.priceABI.Pack("getLatestPrice")
	if err != nil {
		return nil, apperr.Wrap(err, "packing getLatestPrice")
	}

	out, err := r.ledger.CallContract(ctx, ethereum.CallMsg{To: &r.priceFeed, Data: data})
	if err != nil {
		return nil, err
	}

	vals, err := r.priceABI.Unpack("getLatestPrice", out)
	if err != nil {
		return nil, apperr.Wrap(err, "unpacking getLatestPrice")
	}
	return vals[0].(*big.Int), nil
}

// GasPrice proxies the node's suggested gas price.
func (r *Registry) GasPrice(ctx context.Context) (*big.Int, error) {
	return r.ledger.GasPrice(ctx)
}

// Balance proxies the node's balance query.
func (r *Registry) Balance(ctx context.Context, address string) (*big.Int, error) {
	return r.ledger.BalanceAt(ctx, address)
}
