// Package integrations provides HTTP clients for package registry APIs.
//
// # Overview
//
// Each supported registry has its own subpackage:
//
//   - [npm]: the npm registry (registry.npmjs.org)
//   - [crates]: the Rust crates.io API
//
// [registrytest] serves canned npm and crates.io responses for tests.
//
// # Client Pattern
//
// Registry clients embed the shared [Client] and take their base URL and
// cache backend from the caller:
//
//	client := crates.NewClient(crates.DefaultBaseURL, backend, time.Hour)
//	info, err := client.FetchCrate(ctx, "serde", false)  // false = use cache
//
// # Shared Infrastructure
//
// [Client] provides:
//   - response caching through any [cache.Cache] backend, namespaced by prefix
//   - retries with exponential backoff for network errors and 5xx responses
//   - one circuit breaker per host, tripped by consecutive retryable failures
//   - a DNS-caching transport shared by all clients in the process
//
// Errors are reported through the sentinels [ErrNotFound], [ErrNetwork],
// [ErrDecode] and [ErrCircuitOpen]; use errors.Is to test for them.
//
// [npm]: github.com/matzehuels/depman/pkg/integrations/npm
// [crates]: github.com/matzehuels/depman/pkg/integrations/crates
// [registrytest]: github.com/matzehuels/depman/pkg/integrations/registrytest
// [cache.Cache]: github.com/matzehuels/depman/pkg/cache.Cache
package integrations
