// Package download implements the pipeline that turns a selected track into
// a delivered audio file. Each run owns a unique temp path stem, fetches
// through the catalog under a size cap and time budget, validates the
// artifact, hands it to a Deliverer and always removes every file under its
// stem afterwards. Fetch and delivery both run inside the shared worker pool.
package download
