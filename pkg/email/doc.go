// Package email sends transactional email through Postmark. Local
// development uses the file-based sender so no real mail leaves the machine.
// Every marketing-category email the application composes must carry an
// unsubscribe link; see modules/emailprefs.
package email
