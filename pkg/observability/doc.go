// Package observability lets the CLI watch what the libraries do without the
// libraries depending on a logging or metrics backend.
//
// Each event family has an interface and a no-op implementation. main (or a
// test) installs its own implementation once at startup:
//
//	observability.SetTreeHooks(myHooks)
//
// and library code reports through the registry:
//
//	start := time.Now()
//	observability.Resolver().OnResolveStart(ctx, name)
//	res, err := r.resolve(ctx, name)
//	observability.Resolver().OnResolveComplete(ctx, name, len(res.Packages), len(res.Skipped), time.Since(start), err)
//
// Embed a Noop type to implement only the events you care about.
package observability
