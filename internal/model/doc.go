package model

// Package model defines domain data structures shared across the bot: catalog
// tracks, download jobs, and job status enums. Tracks are plain values so they
// can be copied out of a session without aliasing it.
