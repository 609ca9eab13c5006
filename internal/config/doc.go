// Package config loads engine configuration. Profiles name the two
// supported presets, FromEnv layers FRAMELOCK_* environment variables
// on top of a profile, and Load pulls a dotenv file in first. The
// engine package owns the Config type itself; this package only
// builds and validates instances of it.
package config
