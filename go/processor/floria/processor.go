// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package floria

import (
	"fmt"

	"github.com/Fantom-foundation/Modular/go/tosca"
	"github.com/holiman/uint256"
)

const (
	TxGas                   = 21_000
	TxDataNonZeroGasEIP2028 = 16
	TxDataZeroGasEIP2028    = 4
)

// ErrContractCreation is returned for transactions without recipient.
const ErrContractCreation = tosca.ConstError("contract creation transactions are not supported")

func init() {
	tosca.RegisterProcessorFactory("floria", newProcessor)
}

func newProcessor(interpreter tosca.Interpreter) tosca.Processor {
	return &processor{
		interpreter: interpreter,
	}
}

type processor struct {
	interpreter tosca.Interpreter
}

func (p *processor) Run(
	blockParams tosca.BlockParameters,
	transaction tosca.Transaction,
	context tosca.TransactionContext,
) (tosca.Receipt, error) {
	if transaction.Recipient == nil {
		return tosca.Receipt{}, ErrContractCreation
	}

	errorReceipt := tosca.Receipt{
		Success: false,
		GasUsed: transaction.GasLimit,
	}
	gas := transaction.GasLimit

	if err := buyGas(transaction, context); err != nil {
		return errorReceipt, nil
	}

	intrinsicGas := setupGasBilling(transaction)
	if gas < intrinsicGas {
		return errorReceipt, nil
	}
	gas -= intrinsicGas

	if err := handleNonce(transaction, context); err != nil {
		return errorReceipt, nil
	}

	runContext := runContext{
		TransactionContext: context,
		interpreter:        p.interpreter,
		blockParameters:    blockParams,
		transactionParameters: tosca.TransactionParameters{
			Origin:   transaction.Sender,
			GasPrice: transaction.GasPrice,
		},
	}

	result, err := runContext.Call(tosca.Call, tosca.CallParameters{
		Sender:      transaction.Sender,
		Recipient:   *transaction.Recipient,
		Value:       transaction.Value,
		Input:       transaction.Input,
		Gas:         gas,
		CodeAddress: *transaction.Recipient,
	})
	if err != nil {
		return errorReceipt, err
	}

	gasUsed := gasUsed(transaction, result.GasLeft)
	refundGas(transaction, context, transaction.GasLimit-gasUsed)

	var logs []tosca.Log
	if result.Success {
		logs = context.GetLogs()
	}

	return tosca.Receipt{
		Success: result.Success,
		Output:  result.Output,
		GasUsed: gasUsed,
		Logs:    logs,
	}, nil
}

func gasUsed(transaction tosca.Transaction, gasLeft tosca.Gas) tosca.Gas {
	// 10% of remaining gas is charged for non-internal transactions
	if transaction.Sender != (tosca.Address{}) {
		gasLeft -= gasLeft / 10
	}

	return transaction.GasLimit - gasLeft
}

func setupGasBilling(transaction tosca.Transaction) tosca.Gas {
	gas := tosca.Gas(TxGas)

	if len(transaction.Input) > 0 {
		nonZeroBytes := tosca.Gas(0)
		for _, inputByte := range transaction.Input {
			if inputByte != 0 {
				nonZeroBytes++
			}
		}
		zeroBytes := tosca.Gas(len(transaction.Input)) - nonZeroBytes
		gas += zeroBytes * TxDataZeroGasEIP2028
		gas += nonZeroBytes * TxDataNonZeroGasEIP2028
	}

	return gas
}

func handleNonce(transaction tosca.Transaction, context tosca.TransactionContext) error {
	stateNonce := context.GetNonce(transaction.Sender)
	messageNonce := transaction.Nonce
	if messageNonce != stateNonce {
		return fmt.Errorf("nonce mismatch: %v != %v", messageNonce, stateNonce)
	}
	context.SetNonce(transaction.Sender, stateNonce+1)
	return nil
}

func buyGas(transaction tosca.Transaction, context tosca.TransactionContext) error {
	gas := gasPrice(transaction, transaction.GasLimit)

	senderBalance := context.GetBalance(transaction.Sender)
	if senderBalance.Cmp(gas) < 0 {
		return fmt.Errorf("insufficient balance: %v < %v", senderBalance, gas)
	}

	senderBalance = tosca.Sub(senderBalance, gas)
	context.SetBalance(transaction.Sender, senderBalance)

	return nil
}

func refundGas(transaction tosca.Transaction, context tosca.TransactionContext, gasLeft tosca.Gas) {
	if gasLeft <= 0 {
		return
	}
	refund := gasPrice(transaction, gasLeft)
	if refund == (tosca.Value{}) {
		return
	}
	context.SetBalance(transaction.Sender, tosca.Add(context.GetBalance(transaction.Sender), refund))
}

func gasPrice(transaction tosca.Transaction, gas tosca.Gas) tosca.Value {
	price := transaction.GasPrice.ToUint256()
	return tosca.ValueFromUint256(price.Mul(price, uint256.NewInt(uint64(gas))))
}
