// Package leadstore is the single access point to the remote lead table.
//
// Every view reads full snapshots through Store.ListAll and writes partial
// updates through Store.ApplyUpdate. Each call is one round trip: there is
// no retry, backoff or batching at this layer, and callers recover from a
// failure by reloading.
//
// Drivers live in subpackages: postgrest (the hosted REST API, default),
// postgres (direct SQL), dynamo, redisstore and memstore.
package leadstore
