// Package btree provides an in-memory B-tree and a DataStore built on it.
//
// The tree follows the CLRS formulation with minimum degree Order/2:
// nodes are split on the way down during insertion, and underfull
// children are refilled (borrow or merge) on the way down during deletion,
// so neither operation ever has to walk back up.
//
// The LSM memtable reuses Tree with upsert semantics (Set); the DataStore
// adapter rejects duplicate keys (Insert).
package btree
