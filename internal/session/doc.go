package session

// Package session keeps the latest search results and page cursor per user.
// Sessions live only in memory and are replaced wholesale by each new search.
