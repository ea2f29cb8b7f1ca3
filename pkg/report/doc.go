// Package report computes comparison statistics for decision runs: how
// often the system decision matches the recorded manual decision, how many
// applications the profiles can decide without referral, and how often each
// profile decides and each rule fires.
package report
