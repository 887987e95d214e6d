// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package extension

import (
	"github.com/Fantom-foundation/Modular/go/tosca"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of decoded configurations retained by a
// Codec if no size is configured.
const DefaultCacheSize = 1 << 10

// Codec decodes extension configurations, retaining recently decoded
// configurations indexed by the hash of their encoding. A Codec is safe for
// concurrent use.
type Codec struct {
	cache *lru.Cache[tosca.Hash, Config]
}

// NewCodec creates a codec retaining up to cacheSize configurations. If set
// to 0, DefaultCacheSize is used. If negative, no cache is used.
func NewCodec(cacheSize int) (*Codec, error) {
	if cacheSize == 0 {
		cacheSize = DefaultCacheSize
	}
	var cache *lru.Cache[tosca.Hash, Config]
	if cacheSize > 0 {
		var err error
		cache, err = lru.New[tosca.Hash, Config](cacheSize)
		if err != nil {
			return nil, err
		}
	}
	return &Codec{cache: cache}, nil
}

// Decode parses the given configuration encoding, see DecodeConfig. The
// result is owned by the caller.
func (c *Codec) Decode(data tosca.Data) (Config, error) {
	if c.cache == nil {
		return DecodeConfig(data)
	}

	hash := tosca.Keccak256(data)
	if res, found := c.cache.Get(hash); found {
		return res.Clone(), nil
	}
	res, err := DecodeConfig(data)
	if err != nil {
		return Config{}, err
	}
	c.cache.Add(hash, res.Clone())
	return res, nil
}

// Encode produces the encoding of the given configuration, see EncodeConfig.
func (c *Codec) Encode(config Config) (tosca.Data, error) {
	return EncodeConfig(config)
}

// Len is the number of cached configurations.
func (c *Codec) Len() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}
