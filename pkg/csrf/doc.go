// Package csrf protects state-changing endpoints with a custom-header check.
//
// Browsers do not allow simple cross-origin form submissions or no-CORS
// fetches to set arbitrary request headers, so requiring
// X-Requested-With: XMLHttpRequest on unsafe methods blocks naive cross-site
// requests without per-session tokens. Safe methods (GET, HEAD, OPTIONS)
// always pass.
package csrf
