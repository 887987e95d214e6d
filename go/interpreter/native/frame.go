// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package native

import (
	"github.com/Fantom-foundation/Modular/go/tosca"
)

// Frame is the state of a single invocation of a native contract.
type Frame struct {
	tosca.Parameters
}

// Self is the account whose storage the frame operates on.
func (f *Frame) Self() tosca.Address {
	return f.Recipient
}

// UseGas charges the given amount of gas.
func (f *Frame) UseGas(amount tosca.Gas) error {
	if amount < 0 || f.Gas < amount {
		f.Gas = 0
		return ErrOutOfGas
	}
	f.Gas -= amount
	return nil
}

// Call issues a nested call to the given target. All but one 64th of the
// remaining gas is forwarded, unused gas is returned to the frame.
//
// Calls and static calls are issued on behalf of this frame's account.
// Delegate calls run the code of the target on this frame's account,
// retaining the sender and the value of this frame; the given value is
// ignored for them.
func (f *Frame) Call(kind tosca.CallKind, target tosca.Address, value tosca.Value, input tosca.Data) (tosca.CallResult, error) {
	forwarded := f.Gas - f.Gas/64
	f.Gas -= forwarded

	params := tosca.CallParameters{
		Sender:      f.Recipient,
		Recipient:   target,
		Value:       value,
		Input:       input,
		Gas:         forwarded,
		CodeAddress: target,
	}
	switch kind {
	case tosca.StaticCall:
		params.Value = tosca.Value{}
	case tosca.DelegateCall:
		params.Sender = f.Sender
		params.Recipient = f.Recipient
		params.Value = f.Value
	}

	result, err := f.Context.Call(kind, params)
	if err != nil {
		return result, abortError{err}
	}
	f.Gas += result.GasLeft
	return result, nil
}

// abortError marks failures of the execution environment. They are not
// turned into reverts but abort the execution of the contract.
type abortError struct {
	error
}

func (e abortError) Unwrap() error {
	return e.error
}
