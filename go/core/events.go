// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package core

import (
	"fmt"

	"github.com/Fantom-foundation/Modular/go/interpreter/native"
	"github.com/Fantom-foundation/Modular/go/tosca"
	"github.com/holiman/uint256"
)

// Topics identifying the events emitted by cores. All event arguments are
// indexed.
var (
	ExtensionInstalledTopic   = tosca.Keccak256([]byte("ExtensionInstalled(address,address)"))
	ExtensionUninstalledTopic = tosca.Keccak256([]byte("ExtensionUninstalled(address,address)"))
	OwnershipTransferredTopic = tosca.Keccak256([]byte("OwnershipTransferred(address,address)"))
	RolesUpdatedTopic         = tosca.Keccak256([]byte("RolesUpdated(address,uint256)"))
)

func addressTopic(address tosca.Address) (res tosca.Hash) {
	copy(res[12:], address[:])
	return
}

func topicAddress(topic tosca.Hash) (res tosca.Address) {
	copy(res[:], topic[12:])
	return
}

func emit(frame *native.Frame, topics ...tosca.Hash) {
	frame.Context.EmitLog(tosca.Log{
		Address: frame.Recipient,
		Topics:  topics,
	})
}

// DescribeLog renders logs emitted by cores in a human readable form. The
// second result is false for logs of other events.
func DescribeLog(log tosca.Log) (string, bool) {
	if len(log.Topics) != 3 {
		return "", false
	}
	first, second := log.Topics[1], log.Topics[2]
	switch log.Topics[0] {
	case ExtensionInstalledTopic:
		return fmt.Sprintf("ExtensionInstalled(caller: %v, extension: %v)", topicAddress(first), topicAddress(second)), true
	case ExtensionUninstalledTopic:
		return fmt.Sprintf("ExtensionUninstalled(caller: %v, extension: %v)", topicAddress(first), topicAddress(second)), true
	case OwnershipTransferredTopic:
		return fmt.Sprintf("OwnershipTransferred(from: %v, to: %v)", topicAddress(first), topicAddress(second)), true
	case RolesUpdatedTopic:
		roles := new(uint256.Int).SetBytes32(second[:])
		return fmt.Sprintf("RolesUpdated(account: %v, roles: %v)", topicAddress(first), roles.Hex()), true
	}
	return "", false
}
