// Package dev implements the routegen development loop.
//
// The loop watches the pages directory, recompiles the route table on every
// change, and serves a small HTTP surface for inspection:
//
//   - /healthz  liveness check
//   - /ws       WebSocket reload notifications
//   - /metrics  Prometheus metrics
//   - /routes   HTML route inspector (auto-refreshes via /ws)
//
// Generation passes are serialized through a Driver. Each pass works on a
// private snapshot; starting a new pass cancels the previous one, and a
// cancelled pass observes that at exactly one point, immediately before the
// output write. A failed pass leaves the previous table and output file
// untouched.
package dev
