package spelling

// Kind classifies how canonical a spelling is. Smaller is more canonical.
// The ordinal values index the dump code alphabet and participate in the
// min/max rules below, so the declaration order is load-bearing.
type Kind uint8

const (
	// KindNormal is an unmodified, canonical spelling.
	KindNormal Kind = iota

	// KindFuzzy is a fuzzy equivalent (e.g. zh/z confusion in pinyin).
	KindFuzzy

	// KindAbbreviation is a shortened form (e.g. first letter only).
	KindAbbreviation

	// KindCompletion is a prefix completed to a full spelling.
	KindCompletion

	// KindInvalid marks a spelling that must never match.
	KindInvalid
)

// kindCodes is the single-character dump alphabet, indexed by Kind.
const kindCodes = "-ac?!"

// Code returns the single-character dump code for the kind.
func (k Kind) Code() byte {
	if int(k) >= len(kindCodes) {
		return '!'
	}
	return kindCodes[k]
}

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindFuzzy:
		return "fuzzy"
	case KindAbbreviation:
		return "abbreviation"
	case KindCompletion:
		return "completion"
	case KindInvalid:
		return "invalid"
	default:
		return "invalid"
	}
}

// Annotation carries the provenance metadata of one spelling.
//
// Credibility is a log-probability style score: derivations add penalties,
// collisions keep the best. Tip is an optional display hint shown to the
// user when the spelling is matched.
type Annotation struct {
	Kind        Kind
	Credibility float64
	Tip         string
}

// Spelling is one way a syllable can be written or matched.
type Spelling struct {
	Text  string
	Props Annotation
}

// Accumulate combines an original annotation with the annotation a rule
// emitted for a derivation. Applied exactly once, at the moment the derived
// spelling is created:
//
//	kind        = max(orig, emitted)   // less canonical wins
//	credibility = orig + emitted       // penalties accumulate
//	tip         = emitted, falling back to orig
func Accumulate(orig, emitted Annotation) Annotation {
	out := orig
	if emitted.Kind > out.Kind {
		out.Kind = emitted.Kind
	}
	out.Credibility += emitted.Credibility
	if emitted.Tip != "" {
		out.Tip = emitted.Tip
	}
	return out
}

// Merge combines two independently produced annotations for the same
// (syllable, text) pair:
//
//	kind        = min(a, b)            // more canonical wins
//	credibility = max(a, b)
//	tip         = cleared              // ambiguous provenance once merged
//
// Merge is commutative and associative. It is NOT the same rule as
// Accumulate; see the package documentation.
func Merge(a, b Annotation) Annotation {
	out := a
	if b.Kind < out.Kind {
		out.Kind = b.Kind
	}
	if b.Credibility > out.Credibility {
		out.Credibility = b.Credibility
	}
	out.Tip = ""
	return out
}
