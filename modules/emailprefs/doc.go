// Package emailprefs manages email consent: per-category preferences, the
// public HMAC-token unsubscribe link embedded in every marketing footer, and
// the consent-aware mailer that suppresses sends the user opted out of.
package emailprefs
