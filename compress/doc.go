// Package compress implements the page-level compression codecs used by the
// segment format (spec §4.2): identity and LZ4 block compression.
//
// A data page carries a single compression marker bit in its header, so
// exactly two codecs have a slot to occupy. Compress is always tried first;
// if the compressed output would not be smaller than the input, the writer
// falls back to identity and flips the marker bit accordingly (§4.2,
// "Decompressor dispatches on the marker").
package compress
