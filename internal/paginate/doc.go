package paginate

// Package paginate slices an ordered result set into fixed-size pages and
// renders result lines. It holds no state; out-of-range pages are rejected
// rather than clamped so the caller decides how to react.
