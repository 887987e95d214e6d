// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package examples

import (
	"math/big"

	"github.com/Fantom-foundation/Modular/go/core"
	"github.com/Fantom-foundation/Modular/go/interpreter/native"
	"github.com/Fantom-foundation/Modular/go/tosca"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

const (
	MintSignature           = "mint(address,uint256)"
	TransferSignature       = "transfer(address,uint256)"
	BalanceOfSignature      = "balanceOf(address)"
	TotalSupplySignature    = "totalSupply()"
	BeforeMintSignature     = "beforeMint(address,uint256)"
	BeforeTransferSignature = "beforeTransfer(address,address,uint256)"
)

var (
	BeforeMintSelector     = tosca.SelectorOf(BeforeMintSignature)
	BeforeTransferSelector = tosca.SelectorOf(BeforeTransferSignature)

	// TokenInterfaceID is the interface of the functions of tokens.
	TokenInterfaceID = tosca.InterfaceID(
		tosca.SelectorOf(MintSignature),
		tosca.SelectorOf(TransferSignature),
		tosca.SelectorOf(BalanceOfSignature),
		tosca.SelectorOf(TotalSupplySignature),
	)
)

// MinterRole permits accounts other than the owner to mint tokens.
var MinterRole = uint256.NewInt(1)

// ErrInsufficientBalance is raised by transfers exceeding the balance of the
// sender.
var ErrInsufficientBalance = core.NewCustomError("InsufficientBalance(uint256)")

var (
	addressUint256Arguments        = native.Arguments(native.MustType("address"), native.MustType("uint256"))
	addressAddressUint256Arguments = native.Arguments(native.MustType("address"), native.MustType("address"), native.MustType("uint256"))
	addressArguments               = native.Arguments(native.MustType("address"))
	uint256Arguments               = native.Arguments(native.MustType("uint256"))
)

var (
	balancesSlot    = slot("token.balances")
	totalSupplySlot = slot("token.totalSupply")
)

// NewToken creates a core keeping balances of a fungible token. Minting
// requires an extension implementing beforeMint, transfers invoke the
// optional beforeTransfer callback.
func NewToken(logger *zap.Logger) (*core.Core, error) {
	return core.New("token", core.Config{
		Callbacks: []core.SupportedCallback{
			{Selector: BeforeMintSelector, Mode: core.Required},
			{Selector: BeforeTransferSelector, Mode: core.Optional},
		},
		Interfaces: []tosca.Selector{TokenInterfaceID},
		Functions: []core.Function{
			{Signature: MintSignature, Run: mint},
			{Signature: TransferSignature, Run: transfer},
			{Signature: BalanceOfSignature, Run: balanceOf},
			{Signature: TotalSupplySignature, Run: totalSupply},
		},
		Logger: logger,
	})
}

func mint(inv *core.Invocation) (tosca.Data, error) {
	values, err := addressUint256Arguments.Unpack(inv.Input[4:])
	if err != nil {
		return nil, err
	}
	if !inv.IsAuthorized(MinterRole) {
		return nil, core.ErrUnauthorized
	}
	if _, _, err := inv.InvokeCallback(BeforeMintSelector, inv.Input[4:]); err != nil {
		return nil, err
	}

	to := tosca.Address(values[0].(common.Address))
	amount, _ := uint256.FromBig(values[1].(*big.Int))
	self, balance := inv.Self(), entry(balancesSlot, to)
	storeUint(inv.Context, self, balance, new(uint256.Int).Add(loadUint(inv.Context, self, balance), amount))
	storeUint(inv.Context, self, totalSupplySlot, new(uint256.Int).Add(loadUint(inv.Context, self, totalSupplySlot), amount))
	return nil, nil
}

func transfer(inv *core.Invocation) (tosca.Data, error) {
	values, err := addressUint256Arguments.Unpack(inv.Input[4:])
	if err != nil {
		return nil, err
	}
	to := tosca.Address(values[0].(common.Address))
	amount, _ := uint256.FromBig(values[1].(*big.Int))

	arguments, err := addressAddressUint256Arguments.Pack(common.Address(inv.Sender), common.Address(to), amount.ToBig())
	if err != nil {
		return nil, err
	}
	if _, _, err := inv.InvokeCallback(BeforeTransferSelector, arguments); err != nil {
		return nil, err
	}

	self := inv.Self()
	from := loadUint(inv.Context, self, entry(balancesSlot, inv.Sender))
	if from.Lt(amount) {
		return nil, ErrInsufficientBalance.With(from)
	}
	storeUint(inv.Context, self, entry(balancesSlot, inv.Sender), from.Sub(from, amount))
	target := entry(balancesSlot, to)
	storeUint(inv.Context, self, target, new(uint256.Int).Add(loadUint(inv.Context, self, target), amount))
	return nil, nil
}

func balanceOf(inv *core.Invocation) (tosca.Data, error) {
	values, err := addressArguments.Unpack(inv.Input[4:])
	if err != nil {
		return nil, err
	}
	account := tosca.Address(values[0].(common.Address))
	return uint256Arguments.Pack(loadUint(inv.Context, inv.Self(), entry(balancesSlot, account)).ToBig())
}

func totalSupply(inv *core.Invocation) (tosca.Data, error) {
	return uint256Arguments.Pack(loadUint(inv.Context, inv.Self(), totalSupplySlot).ToBig())
}

// MintCall builds the input of a call of mint.
func MintCall(to tosca.Address, amount uint64) tosca.Data {
	return call(MintSignature, addressUint256Arguments, common.Address(to), new(big.Int).SetUint64(amount))
}

// TransferCall builds the input of a call of transfer.
func TransferCall(to tosca.Address, amount uint64) tosca.Data {
	return call(TransferSignature, addressUint256Arguments, common.Address(to), new(big.Int).SetUint64(amount))
}

// BalanceOfCall builds the input of a call of balanceOf.
func BalanceOfCall(account tosca.Address) tosca.Data {
	return call(BalanceOfSignature, addressArguments, common.Address(account))
}

// TotalSupplyCall builds the input of a call of totalSupply.
func TotalSupplyCall() tosca.Data {
	return call(TotalSupplySignature, nil)
}
