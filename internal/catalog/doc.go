// Package catalog persists artifact records in SQLite and owns every
// durable mutation of the cache: keyed lookups, the atomic
// insert-if-absent used to register acquisitions, access statistic
// updates, and retention deletes.
//
// The fuzzy tiers of the match cascade read the catalog through Scan, a
// lazy full-table iteration in newest-first order. At the target scale
// (tens of thousands of records) a linear scan with client-side scoring is
// the documented algorithm; the interface isolates it so an indexed
// similarity search could replace it without touching the cascade.
package catalog
