// Package schema loads projection definitions from CUE files.
//
// A schema directory contains CUE files of the shape:
//
//	schema: {
//		name:    "luna_pinyin"
//		version: "1.0"
//	}
//	projection: {
//		algebra: [
//			"xform/^zh/z/",
//			"derive/^([a-z]+)\\d$/$1/",
//		]
//	}
//
// The algebra list order is the pipeline order: formulas are compiled and
// applied exactly as written. This package only extracts the ordered list;
// compiling the formulas is the business of internal/calculus.
package schema
