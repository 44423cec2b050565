// Package calculus compiles spelling-algebra formulas into rewrite rules.
//
// A formula is an operator name, a delimiter character, and delimiter-
// separated arguments, ending with the delimiter:
//
//	xlit|abc|xyz|          transliterate runes, replace the original
//	xform/^zh/z/           regex rewrite in place
//	derive/^([a-z]+)\d$/$1/  keep the original, add the derivation
//	erase/^x.*$/           drop syllables matching the whole pattern
//	fuzz/ang$/an/          derive a fuzzy equivalent (credibility penalty)
//	abbrev/^(.).+$/$1/     derive an abbreviation (credibility penalty)
//
// The delimiter is whatever punctuation character follows the operator
// name, so patterns containing '/' can pick another one.
//
// Each compiled rule carries its retention policy: xlit, xform and erase
// delete the original on change; derive, fuzz and abbrev keep it. fuzz and
// abbrev emit a non-normal kind and a ln(1/2) credibility penalty that the
// projection accumulates into every derived entry.
package calculus
