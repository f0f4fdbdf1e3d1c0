// Package report is the read-only aggregation layer over the target store:
// status counts, score-ranked target lists and windowed profit summaries
// for dashboards and the action-selection logic.
package report
