// Package journal keeps a SQLite log of builds.
//
// Every file transpiled by `cscript build` and `cscript watch` becomes one
// row: content hashes of the source and output, a fingerprint of the
// feature toggles, the lowering statistics and the error, if any. The log
// backs `cscript history` and makes it cheap to answer "did this output
// change when I switched a feature off?".
//
// Rows are append-only. Ids are UUIDv7 so they sort by creation time.
package journal
