package platform

// Package platform contains filesystem glue: directory setup, safe file
// names, and removal of job artifacts including yt-dlp partial files.
