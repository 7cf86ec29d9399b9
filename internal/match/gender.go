package match

import "strings"

// Gender is the closed set the engine reasons about. Profile rows carry
// free-text gender strings in mixed English/Chinese; normalization happens
// at the boundary and everything past it works with this enum.
type Gender int

const (
	GenderUnknown Gender = iota
	GenderMale
	GenderFemale
)

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return "unknown"
	}
}

// genderTokens is the normalization table. Matching is by exact token after
// lowercasing and trimming, so "Male " and "男性" both resolve.
var genderTokens = map[string]Gender{
	"male":   GenderMale,
	"man":    GenderMale,
	"m":      GenderMale,
	"boy":    GenderMale,
	"男":      GenderMale,
	"男性":     GenderMale,
	"男生":     GenderMale,
	"female": GenderFemale,
	"woman":  GenderFemale,
	"f":      GenderFemale,
	"girl":   GenderFemale,
	"女":      GenderFemale,
	"女性":     GenderFemale,
	"女生":     GenderFemale,
}

// anyGenderTokens are preference values meaning "no gender filter".
var anyGenderTokens = map[string]struct{}{
	"everyone": {},
	"all":      {},
	"any":      {},
	"不限":       {},
}

// NormalizeGender maps a free-text gender string to the closed enum.
func NormalizeGender(s string) Gender {
	if g, ok := genderTokens[strings.ToLower(strings.TrimSpace(s))]; ok {
		return g
	}
	return GenderUnknown
}

// IsAnyGenderToken reports whether a stored preference value is the
// "everyone" sentinel.
func IsAnyGenderToken(s string) bool {
	_, ok := anyGenderTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// TokensFor returns every raw token that normalizes to g, for use in
// store-level IN filters over unnormalized gender columns.
func TokensFor(g Gender) []string {
	var out []string
	for tok, mapped := range genderTokens {
		if mapped == g {
			out = append(out, tok)
		}
	}
	return out
}

// Opposite returns the opposite recognizable gender, or Unknown.
func (g Gender) Opposite() Gender {
	switch g {
	case GenderMale:
		return GenderFemale
	case GenderFemale:
		return GenderMale
	default:
		return GenderUnknown
	}
}

// FilterKind tags the result of EffectiveGenderFilter.
type FilterKind int

const (
	// FilterForced pins candidates to a single gender, ignoring the
	// requester's stored preference.
	FilterForced FilterKind = iota
	// FilterFromPreference uses the requester's stored preference list.
	FilterFromPreference
	// FilterUnfiltered applies no gender constraint.
	FilterUnfiltered
)

// GenderFilter is the effective candidate-gender policy for one requester.
type GenderFilter struct {
	Kind      FilterKind
	Forced    Gender
	Preferred []string
}

// EffectiveGenderFilter decides which genders a requester is shown.
//
// If the requester's own gender is recognizable, the opposite gender is
// forced and the stored preference is ignored. Otherwise the stored
// preference applies; an empty list or any "everyone" entry disables the
// filter entirely.
func EffectiveGenderFilter(requesterGender string, stored []string) GenderFilter {
	if g := NormalizeGender(requesterGender); g != GenderUnknown {
		return GenderFilter{Kind: FilterForced, Forced: g.Opposite()}
	}

	if len(stored) == 0 {
		return GenderFilter{Kind: FilterUnfiltered}
	}
	for _, p := range stored {
		if IsAnyGenderToken(p) {
			return GenderFilter{Kind: FilterUnfiltered}
		}
	}
	return GenderFilter{Kind: FilterFromPreference, Preferred: stored}
}

// CandidateTokens expands the filter into raw gender tokens for the store
// query. A nil result means no gender constraint.
func (f GenderFilter) CandidateTokens() []string {
	switch f.Kind {
	case FilterForced:
		return TokensFor(f.Forced)
	case FilterFromPreference:
		seen := make(map[string]struct{})
		var out []string
		add := func(tok string) {
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				out = append(out, tok)
			}
		}
		for _, p := range f.Preferred {
			if g := NormalizeGender(p); g != GenderUnknown {
				for _, tok := range TokensFor(g) {
					add(tok)
				}
				continue
			}
			add(strings.ToLower(strings.TrimSpace(p)))
		}
		return out
	default:
		return nil
	}
}

// PreferenceAccepts reports whether a stored gender-preference list accepts
// the given gender. An empty list or an "everyone" entry accepts anyone;
// so does an unrecognizable subject gender, since there is nothing to
// exclude on.
func PreferenceAccepts(stored []string, subject Gender) bool {
	if len(stored) == 0 || subject == GenderUnknown {
		return true
	}
	for _, p := range stored {
		if IsAnyGenderToken(p) {
			return true
		}
		if NormalizeGender(p) == subject {
			return true
		}
	}
	return false
}
