// Package compute derives per-target metrics from raw raid history and
// scores targets relative to the currently tracked population. Everything
// here is a pure function of its inputs; the store decides when to call it.
package compute
