// ABOUTME: EncodeRevisionKey builds the composite (log_type, revision,
// ABOUTME: page_key) key the B+Tree orders entries by for one page family

package storage

import (
	"encoding/binary"

	"github.com/bark/sirix/pkg/page"
)

// EncodeRevisionKey encodes the composite key a PageStore entry is
// stored under: a 4-byte log-type prefix (separating independent page
// families sharing one store) followed by the revision and page key,
// both big-endian so the B+Tree's byte ordering also orders entries by
// revision within a page family.
func EncodeRevisionKey(logType uint32, revision page.RevisionNumber, pageKey page.PageKey) []byte {
	out := make([]byte, 20)
	binary.BigEndian.PutUint32(out[0:4], logType)
	binary.BigEndian.PutUint64(out[4:12], uint64(revision))
	binary.BigEndian.PutUint64(out[12:20], uint64(pageKey))
	return out
}

// DecodeRevisionKey reverses EncodeRevisionKey.
func DecodeRevisionKey(key []byte) (logType uint32, revision page.RevisionNumber, pageKey page.PageKey) {
	logType = binary.BigEndian.Uint32(key[0:4])
	revision = page.RevisionNumber(binary.BigEndian.Uint64(key[4:12]))
	pageKey = page.PageKey(binary.BigEndian.Uint64(key[12:20]))
	return
}
