// Package npm provides an HTTP client for the npm registry API.
//
// # Overview
//
// This package fetches package documents and search results from the npm
// registry (https://registry.npmjs.org) or any registry speaking the same
// protocol, such as a Verdaccio mirror.
//
// # Usage
//
//	client := npm.NewClient(npm.DefaultBaseURL, backend, time.Hour)
//
//	pkg, err := client.FetchPackage(ctx, "express", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(pkg.Name, pkg.Versions)
//
//	hits, err := client.Search(ctx, "http client", 20)
//
// # PackageInfo
//
// [Client.FetchPackage] returns a [PackageInfo] with the package's
// top-level metadata and the keys of its "versions" object. The registry
// returns author, license and repository in several shapes (string or
// object); they are flattened to strings here.
//
// # Caching
//
// Package documents are cached under the "npm:" prefix. Search results are
// never cached. Pass refresh=true to bypass the cache.
package npm
