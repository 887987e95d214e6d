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
	"fmt"

	"github.com/Fantom-foundation/Modular/go/core"
	"github.com/Fantom-foundation/Modular/go/interpreter/native"
	"github.com/Fantom-foundation/Modular/go/state"
	"github.com/Fantom-foundation/Modular/go/tosca"

	// registers the floria processor
	_ "github.com/Fantom-foundation/Modular/go/processor/floria"
)

// DefaultGasLimit is the gas limit of transactions issued by a Chain.
const DefaultGasLimit = 10_000_000

// Chain is an in-memory chain running native contracts. Each call is
// processed as a transaction of its own.
type Chain struct {
	State       *state.Context
	Interpreter *native.Interpreter
	Processor   tosca.Processor
	Block       tosca.BlockParameters
	GasLimit    tosca.Gas

	// OnReceipt, if set, is called with the receipt of every transaction.
	OnReceipt func(tosca.Transaction, tosca.Receipt)
}

func NewChain() (*Chain, error) {
	interpreter, err := native.NewInterpreter(nil)
	if err != nil {
		return nil, err
	}
	processor := tosca.GetProcessor("floria", interpreter)
	if processor == nil {
		return nil, fmt.Errorf("floria processor not registered")
	}
	return &Chain{
		State:       state.NewContext(nil),
		Interpreter: interpreter,
		Processor:   processor,
		Block:       tosca.BlockParameters{Revision: tosca.R13_Cancun},
		GasLimit:    DefaultGasLimit,
	}, nil
}

// DeployCore places the given core at the given address.
func (c *Chain) DeployCore(address tosca.Address, target *core.Core, owner tosca.Address) error {
	if err := target.Register(c.Interpreter); err != nil {
		return err
	}
	target.Deploy(c.State, address, owner)
	c.State.Commit()
	return nil
}

// Deploy places the given contract at the given address. Each contract
// needs a unique name, deploying a different contract at an address used
// before replaces the code of the address.
func (c *Chain) Deploy(address tosca.Address, name string, contract native.Contract) error {
	if err := c.Interpreter.Deploy(c.State, address, name, contract); err != nil {
		return err
	}
	c.State.Commit()
	return nil
}

// Fund adds the given amount to the balance of the given account.
func (c *Chain) Fund(account tosca.Address, amount tosca.Value) {
	c.State.SetBalance(account, tosca.Add(c.State.GetBalance(account), amount))
	c.State.Commit()
}

// Call runs a transaction of the given sender calling the given recipient.
// The result is an error if the call failed, decoded from the revert
// payload, see core.DecodeError.
func (c *Chain) Call(sender, recipient tosca.Address, input tosca.Data) (tosca.Receipt, error) {
	return c.Transfer(sender, recipient, tosca.Value{}, input)
}

// Transfer is like Call, transferring the given value to the recipient.
func (c *Chain) Transfer(sender, recipient tosca.Address, value tosca.Value, input tosca.Data) (tosca.Receipt, error) {
	transaction := tosca.Transaction{
		Sender:    sender,
		Recipient: &recipient,
		Nonce:     c.State.GetNonce(sender),
		Input:     input,
		Value:     value,
		GasLimit:  c.GasLimit,
	}
	receipt, err := c.Processor.Run(c.Block, transaction, c.State)
	c.State.Commit()
	if err != nil {
		return receipt, err
	}
	if c.OnReceipt != nil {
		c.OnReceipt(transaction, receipt)
	}
	if !receipt.Success {
		return receipt, core.DecodeError(receipt.Output, Errors...)
	}
	return receipt, nil
}
