// Package probe implements periodic reachability checks for mirror
// destinations. Probing is observational only: it drives log lines and
// the /metrics reachability flags, never which destinations race.
package probe
