// Package manifest owns the Kaldi-style manifest files a split produces: the
// shared label list, utt2spk, wav.scp, and spk2utt.
//
// Rows are appended while segments are extracted. Finalize then rewrites each
// file sorted by segment ID (write-then-rename) and derives spk2utt by running
// the configured external converter on the sorted utt2spk.
package manifest
