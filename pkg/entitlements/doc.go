// Package entitlements contains the plan-based usage rules: monthly
// conversion quotas, regeneration allowances, and free-tier watermarking.
//
// The plan table is static and loaded at compile time; tiers are never
// mutated at runtime. All decision functions are pure so that handlers can
// call them with values read from storage without extra coordination.
//
// The tie-break rule is strict less-than everywhere: being exactly at a
// limit denies the operation.
package entitlements
