// Package sanitizer normalizes listing and account input before
// validation and storage.
//
// All functions are idempotent and handle invalid input by returning
// empty strings or slices rather than errors. Normalization includes:
//   - Free text: collapse whitespace, trim
//   - Cities: lowercase, strip non-letters - "Bad Homburg" becomes "badhomburg"
//   - Phones: accept E.164 only, strip separators first
//   - Image URLs: enforce scheme, lowercase host, drop tracking params
//   - Slices: drop empties and duplicates after normalization
package sanitizer
