// Package segment turns annotated recordings into laughter and non-laughter
// training clips.
//
// Extractor walks each recording's laughter intervals in order, writing the
// kept laughter spans and the gaps between them as separate clips. Short
// laughter intervals are counted and dropped; the discard policy decides
// whether their audio may still land in the surrounding non-laughter gap.
// Balancer then copies a seeded random selection of non-laughter clips into a
// subset directory until their duration matches the kept laughter duration.
// Accumulator carries the open manifests, counters, and candidate pool for a
// split between the two passes.
package segment
