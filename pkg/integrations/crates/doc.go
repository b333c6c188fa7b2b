// Package crates provides an HTTP client for the crates.io API.
//
// # Overview
//
// This package fetches crate metadata and search results from crates.io
// (https://crates.io), the Rust community's package registry.
//
// # Usage
//
//	client := crates.NewClient(crates.DefaultBaseURL, backend, time.Hour)
//
//	crate, err := client.FetchCrate(ctx, "serde", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(crate.Name, crate.Versions)
//
// # CrateInfo
//
// [Client.FetchCrate] returns a [CrateInfo] built from a single
// /crates/{name} request: crate-level metadata plus every published version
// number, newest first as listed by the API. Yanked versions are included.
//
// crates.io has no author field. The user who published the newest version
// is reported instead, and the license falls back to that version's license
// when the crate-level field is empty.
//
// # User-Agent
//
// crates.io rejects anonymous clients; every request carries
// [integrations.DefaultUserAgent].
package crates
