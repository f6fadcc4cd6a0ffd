// Package fetch looks up profile metadata and avatar images for review
// items through the VK users.get API. Results are passed to the review
// engine untouched; images are never resized or re-encoded.
package fetch
