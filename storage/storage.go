// Package storage declares the persistence contract the core consumes
// (§6): a write-batch the engine stages entity and index mutations onto,
// and an iterator for bootstrap restore. The core never imports a
// concrete database; every tree and the coordinator hold only these
// interfaces, matching §1's "persistent key-value storage layer" being
// out of scope for the core proper and §5's "no hidden global state".
package storage

// Batch is the atomic write-batch contract (§6 "Batch { put(key, value);
// write() }"). Put stages a key/value pair in the given bucket; nothing
// is visible to readers until Write succeeds. A Batch is single-use:
// callers build one per atomic unit of work (one Bootstrap, AcceptBlock or
// addPayloads call) and discard it after Write.
type Batch interface {
	Put(bucket string, key, value []byte)
	Delete(bucket string, key []byte)
	Write() error
}

// Iterator walks every key/value pair in one bucket for bootstrap
// restore (§6 "Iterator over (key, value)"). Callers must call Close
// when done, even after an error from Next.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Err() error
	Close() error
}

// KV is the persistent store an embedder supplies. The core emits
// mutations through NewBatch. Get and Iterate are the read side of the
// contract; AltTree does not call them and does not restore its state
// from a store. The core never manages transactions, file handles, or
// schema migration itself — that is the storage collaborator's job.
type KV interface {
	NewBatch() Batch
	Get(bucket string, key []byte) ([]byte, bool, error)
	Iterate(bucket string) (Iterator, error)
}

// Bucket names, one per entity kind the coordinator persists. The mutable
// tip pointer has no bucket; storage/bolt keeps it in MANIFEST.json.
const (
	BucketBTCHeaders      = "btc_headers"
	BucketVBKHeaders      = "vbk_headers"
	BucketALTHeaders      = "alt_headers"
	BucketVbkEndorsements = "vbk_endorsements"
	BucketAltEndorsements = "alt_endorsements"
	BucketPayloads        = "payloads"
)
