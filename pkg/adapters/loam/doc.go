// Package loam stores chain definitions as documents of a Loam repository.
package loam
