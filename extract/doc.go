// Package extract provides concurrent candidate extraction over stored
// contexts.
//
// A CandidateSpace enumerates the raw ngram spans a context offers (for
// example every contiguous span of up to MaxN words); an optional Matcher
// filters them. The Pipeline fans contexts out across a worker pool,
// collects the surviving spans in context order, and persists them as
// candidates of a target set.
//
// Contexts are immutable, so running a space over many contexts in parallel
// requires no coordination; results are collected per context slot to keep
// extraction order deterministic.
package extract
