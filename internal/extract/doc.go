// Package extract resolves a normalized product record from a loaded page.
//
// Every attribute family (title, price, coupon, image, status, sizes,
// colors) is an ordered list of strategies evaluated by FirstAccepted: the
// first strategy whose value passes its own sanity rules wins and later
// ones are skipped, so fallbacks fill gaps and never override. The
// per-site data the strategies read lives in an immutable StrategySet.
package extract
