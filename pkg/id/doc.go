// Package id generates unique message identifiers.
//
// Identifiers combine a content hash of the message with a random unique
// value, so ids stay collision-free even when the platform random source
// is weak or unavailable.
package id
