// Package weather orchestrates weather searches: it resolves a location,
// fetches current conditions, normalizes them into a snapshot, and owns the
// loading/snapshot state observed by presentation code.
package weather
