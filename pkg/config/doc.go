// Package config loads env-tagged configuration structs, parsing a .env file
// once at startup and caching each struct type so that every package sees the
// same values for the life of the process. Configuration is read once and
// treated as immutable afterwards.
package config
