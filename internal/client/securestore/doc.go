// Package securestore is the on-device secure key-value store: a single
// global namespace of opaque blobs addressed by string keys.
//
// Each key is independently last-writer-wins; there are no multi-key
// transactions in the contract. SQLiteStore seals every value with AES-GCM
// under a per-device key kept next to the database, so the store file alone
// does not reveal cached credentials. MemoryStore backs tests.
//
// Get returns (nil, nil) for an absent key.
package securestore
