// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package native implements an interpreter running contracts implemented in
// Go. The code deployed at an account is a marker selecting the contract;
// replacing the code of an account switches the contract it runs, and changes
// its code hash, just like a redeployment of EVM code.
package native

import (
	"fmt"
	"sync"

	"github.com/Fantom-foundation/Modular/go/tosca"
)

// FrameGas is the gas charged for entering a native contract.
const FrameGas = 700

const (
	ErrAlreadyRegistered = tosca.ConstError("code already registered")
	ErrEmptyCode         = tosca.ConstError("cannot register empty code")
	ErrOutOfGas          = tosca.ConstError("out of gas")
	ErrWriteProtection   = tosca.ConstError("write protection")
	ErrUnknownMethod     = tosca.ConstError("unknown method")
)

// Registers the native interpreter with an empty set of contracts. A
// Contracts value may be passed as configuration to start with a set of
// named contracts.
func init() {
	err := tosca.RegisterInterpreterFactory("native", func(config any) (tosca.Interpreter, error) {
		switch config := config.(type) {
		case nil:
			return NewInterpreter(nil)
		case Contracts:
			return NewInterpreter(config)
		default:
			return nil, fmt.Errorf("unsupported configuration type %T", config)
		}
	})
	if err != nil {
		panic(err)
	}
}

// Contract is a contract implemented in Go.
type Contract interface {
	Run(tosca.Parameters) (tosca.Result, error)
}

// ContractFunc adapts a function to the Contract interface.
type ContractFunc func(tosca.Parameters) (tosca.Result, error)

func (f ContractFunc) Run(params tosca.Parameters) (tosca.Result, error) {
	return f(params)
}

// Contracts maps contract names to their implementations. Each contract is
// registered for the code produced by CodeFor for its name.
type Contracts map[string]Contract

// CodeFor produces the marker code of the native contract with the given
// name. The code starts with the invalid instruction 0xFE, so it can never
// be mistaken for runnable EVM code.
func CodeFor(name string) tosca.Code {
	return append(tosca.Code{0xFE}, name...)
}

// Interpreter runs native contracts. It is safe for concurrent use.
type Interpreter struct {
	contracts map[tosca.Hash]Contract
	lock      sync.RWMutex
}

func NewInterpreter(contracts Contracts) (*Interpreter, error) {
	res := &Interpreter{contracts: map[tosca.Hash]Contract{}}
	for name, contract := range contracts {
		if err := res.Register(CodeFor(name), contract); err != nil {
			return nil, fmt.Errorf("failed to register %v: %w", name, err)
		}
	}
	return res, nil
}

// Register binds the given contract to the given code. Any account carrying
// this code runs the contract.
func (i *Interpreter) Register(code tosca.Code, contract Contract) error {
	if len(code) == 0 {
		return ErrEmptyCode
	}
	hash := tosca.Keccak256(code)
	i.lock.Lock()
	defer i.lock.Unlock()
	if _, found := i.contracts[hash]; found {
		return fmt.Errorf("%w: %x", ErrAlreadyRegistered, []byte(code))
	}
	i.contracts[hash] = contract
	return nil
}

// Deploy registers the contract under the given name and places its code at
// the given address.
func (i *Interpreter) Deploy(state tosca.WorldState, address tosca.Address, name string, contract Contract) error {
	code := CodeFor(name)
	if err := i.Register(code, contract); err != nil {
		return err
	}
	state.SetCode(address, code)
	return nil
}

func (i *Interpreter) lookup(hash tosca.Hash) (Contract, bool) {
	i.lock.RLock()
	defer i.lock.RUnlock()
	contract, found := i.contracts[hash]
	return contract, found
}

func (i *Interpreter) Run(params tosca.Parameters) (tosca.Result, error) {
	if len(params.Code) == 0 {
		return tosca.Result{Success: true, GasLeft: params.Gas}, nil
	}

	var hash tosca.Hash
	if params.CodeHash != nil {
		hash = *params.CodeHash
	} else {
		hash = tosca.Keccak256(params.Code)
	}
	contract, found := i.lookup(hash)
	if !found || params.Gas < FrameGas {
		return tosca.Result{}, nil
	}
	params.Gas -= FrameGas

	if !params.Static {
		return contract.Run(params)
	}

	context := &readOnlyContext{RunContext: params.Context}
	params.Context = context
	result, err := contract.Run(params)
	if err != nil {
		return result, err
	}
	if context.violated {
		return tosca.Result{}, nil
	}
	return result, nil
}
