// Package core defines the HTTP response contract shared by every API route:
// a JSON envelope with either a data payload or a structured error carrying a
// stable machine-readable code and a localized message.
package core
