package hash

import (
	"crypto/hmac"

	"golang.org/x/crypto/sha3"
)

const Size = 32

// Zero256 is the digest of the empty log, i.e. the parent digest of the
// genesis block.
var Zero256 = make([]byte, Size)

// Sum256 returns the SHA3-256 checksum of the data. Empty or missing data
// hashes to the zero digest.
func Sum256(data []byte) []byte {
	if len(data) == 0 {
		return Zero256
	}
	hsh := sha3.Sum256(data)
	return hsh[:]
}

// Chain returns the running log digest for an entry: the SHA3-256 of the
// previous digest followed by the entry's canonical bytes.
func Chain(prev, entry []byte) []byte {
	hasher := sha3.New256()
	hasher.Write(prev)
	hasher.Write(entry)
	return hasher.Sum(nil)
}

// Mac256 returns the HMAC-SHA3-256 of the messages under key.
func Mac256(key []byte, messages ...[]byte) []byte {
	mac := hmac.New(sha3.New256, key)
	for _, m := range messages {
		mac.Write(m)
	}
	return mac.Sum(nil)
}

// MacEqual compares two MACs in constant time.
func MacEqual(a, b []byte) bool {
	return hmac.Equal(a, b)
}
