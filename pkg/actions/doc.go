// Package actions provides the built-in action types: copy, update, delete,
// filter, message and fail.
//
// They are deliberately small. Row changes go through the transaction handle
// the chain passes in, so they commit or roll back together with the rest of
// the chain.
package actions
