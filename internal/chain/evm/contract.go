package evm

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Pulse is a typed wrapper around the deployed Pulse contract.
type Pulse struct {
	abi      abi.ABI
	address  common.Address
	contract *bind.BoundContract
}

// NewPulse connects to an already-deployed Pulse contract.
func NewPulse(addr common.Address, backend bind.ContractBackend) (*Pulse, error) {
	parsed, err := abi.JSON(strings.NewReader(PulseABI))
	if err != nil {
		return nil, err
	}
	bound := bind.NewBoundContract(addr, parsed, backend, backend, backend)
	return &Pulse{abi: parsed, address: addr, contract: bound}, nil
}

// Address returns the contract address.
func (p *Pulse) Address() common.Address { return p.address }

// UserProfile mirrors the getUserProfile return tuple.
type UserProfile struct {
	TotalPoints    *big.Int
	CurrentStreak  *big.Int
	LongestStreak  *big.Int
	LastCheckinDay *big.Int
	QuestBitmap    *big.Int
	Level          *big.Int
	TotalCheckins  *big.Int
	Exists         bool
}

// GlobalStats mirrors the getGlobalStats return tuple.
type GlobalStats struct {
	TotalUsers    *big.Int
	TotalCheckins *big.Int
	TotalPoints   *big.Int
}

func (p *Pulse) GetUserProfile(opts *bind.CallOpts, user common.Address) (UserProfile, error) {
	var out []interface{}
	if err := p.contract.Call(opts, &out, "getUserProfile", user); err != nil {
		return UserProfile{}, err
	}
	return UserProfile{
		TotalPoints:    *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		CurrentStreak:  *abi.ConvertType(out[1], new(*big.Int)).(**big.Int),
		LongestStreak:  *abi.ConvertType(out[2], new(*big.Int)).(**big.Int),
		LastCheckinDay: *abi.ConvertType(out[3], new(*big.Int)).(**big.Int),
		QuestBitmap:    *abi.ConvertType(out[4], new(*big.Int)).(**big.Int),
		Level:          *abi.ConvertType(out[5], new(*big.Int)).(**big.Int),
		TotalCheckins:  *abi.ConvertType(out[6], new(*big.Int)).(**big.Int),
		Exists:         *abi.ConvertType(out[7], new(bool)).(*bool),
	}, nil
}

func (p *Pulse) GetGlobalStats(opts *bind.CallOpts) (GlobalStats, error) {
	var out []interface{}
	if err := p.contract.Call(opts, &out, "getGlobalStats"); err != nil {
		return GlobalStats{}, err
	}
	return GlobalStats{
		TotalUsers:    *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		TotalCheckins: *abi.ConvertType(out[1], new(*big.Int)).(**big.Int),
		TotalPoints:   *abi.ConvertType(out[2], new(*big.Int)).(**big.Int),
	}, nil
}

func (p *Pulse) CanClaimCombo(opts *bind.CallOpts, user common.Address) (bool, error) {
	var out []interface{}
	if err := p.contract.Call(opts, &out, "canClaimCombo", user); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (p *Pulse) DailyCheckin(opts *bind.TransactOpts) (*types.Transaction, error) {
	return p.contract.Transact(opts, "dailyCheckin")
}

func (p *Pulse) RelaySignal(opts *bind.TransactOpts) (*types.Transaction, error) {
	return p.contract.Transact(opts, "relaySignal")
}

func (p *Pulse) UpdateAtmosphere(opts *bind.TransactOpts, weatherCode *big.Int) (*types.Transaction, error) {
	return p.contract.Transact(opts, "updateAtmosphere", weatherCode)
}

func (p *Pulse) NudgeFriend(opts *bind.TransactOpts, recipient common.Address) (*types.Transaction, error) {
	return p.contract.Transact(opts, "nudgeFriend", recipient)
}

func (p *Pulse) CommitMessage(opts *bind.TransactOpts, message string) (*types.Transaction, error) {
	return p.contract.Transact(opts, "commitMessage", message)
}

func (p *Pulse) PredictPulse(opts *bind.TransactOpts, level *big.Int) (*types.Transaction, error) {
	return p.contract.Transact(opts, "predictPulse", level)
}

func (p *Pulse) ClaimDailyCombo(opts *bind.TransactOpts) (*types.Transaction, error) {
	return p.contract.Transact(opts, "claimDailyCombo")
}
