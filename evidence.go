package skeptic

import "strings"

// ──────────────────────────────────────────────
// Evidence Classifier — canonical keys, aliases, tiers
// ──────────────────────────────────────────────

// Canonical evidence keys. Callers may send free-form spellings; the
// classifier maps them here via the alias table. Unknown keys pass
// through verbatim so a new artifact name never crashes a request.
const (
	EvDemandLetter        = "demand_letter"
	EvCoopContractPDF     = "coop_contract_pdf"
	EvCoopContractFull    = "coop_contract_full"
	EvPaymentReceipt      = "payment_receipt"
	EvSampleContract      = "sample_contract"
	EvBusinessCard        = "business_card"
	EvCompanyRegistration = "company_registration"
	EvCandidateCV         = "candidate_cv"
	EvWebsite             = "website"
	EvReviews             = "reviews"
	EvSocialProfile       = "social_profile"
	EvOfficePhoto         = "office_photo"
)

// Tier classifies how strongly an evidence key moves trust.
type Tier int

const (
	TierUnknown Tier = iota
	TierSupport
	TierMedium
	TierHard
)

var evidenceTiers = map[string]Tier{
	EvDemandLetter:        TierHard,
	EvCoopContractPDF:     TierHard,
	EvCoopContractFull:    TierHard,
	EvPaymentReceipt:      TierHard,
	EvSampleContract:      TierMedium,
	EvBusinessCard:        TierMedium,
	EvCompanyRegistration: TierMedium,
	EvCandidateCV:         TierMedium,
	EvWebsite:             TierSupport,
	EvReviews:             TierSupport,
	EvSocialProfile:       TierSupport,
	EvOfficePhoto:         TierSupport,
}

// evidenceAliases maps lower-cased raw spellings (Russian + English) to
// canonical keys. Keys already canonical are not listed.
var evidenceAliases = map[string]string{
	"demand":            EvDemandLetter,
	"demand letter":     EvDemandLetter,
	"заявка":            EvDemandLetter,
	"деманд":            EvDemandLetter,
	"demand_pdf":        EvDemandLetter,
	"contract":          EvCoopContractPDF,
	"договор":           EvCoopContractPDF,
	"coop contract":     EvCoopContractPDF,
	"cooperation":       EvCoopContractPDF,
	"полный договор":    EvCoopContractFull,
	"full contract":     EvCoopContractFull,
	"signed contract":   EvCoopContractFull,
	"sample":            EvSampleContract,
	"образец":           EvSampleContract,
	"образец договора":  EvSampleContract,
	"card":              EvBusinessCard,
	"визитка":           EvBusinessCard,
	"businesscard":      EvBusinessCard,
	"receipt":           EvPaymentReceipt,
	"чек":               EvPaymentReceipt,
	"квитанция":         EvPaymentReceipt,
	"регистрация":       EvCompanyRegistration,
	"registration":      EvCompanyRegistration,
	"выписка":           EvCompanyRegistration,
	"cv":                EvCandidateCV,
	"resume":            EvCandidateCV,
	"резюме":            EvCandidateCV,
	"сайт":              EvWebsite,
	"site":              EvWebsite,
	"отзывы":            EvReviews,
	"review":            EvReviews,
	"инстаграм":         EvSocialProfile,
	"instagram":         EvSocialProfile,
	"соцсети":           EvSocialProfile,
	"офис":              EvOfficePhoto,
	"фото офиса":        EvOfficePhoto,
}

// CanonicalEvidenceKey normalizes one raw identifier: trim, lower-case,
// alias-map. Unknown strings come back unchanged (lower-cased).
func CanonicalEvidenceKey(raw string) string {
	k := strings.ToLower(strings.TrimSpace(raw))
	if canon, ok := evidenceAliases[k]; ok {
		return canon
	}
	return k
}

// EvidenceTier returns the tier of a canonical key.
func EvidenceTier(key string) Tier {
	return evidenceTiers[key]
}

// EvidenceSet is the deduplicated view of evidence for one scoring pass.
type EvidenceSet struct {
	Keys    []string // canonical, insertion order, unique
	Hard    int
	Medium  int
	Support int
}

// Has reports whether a canonical key is present.
func (s EvidenceSet) Has(key string) bool {
	for _, k := range s.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Unique returns the number of distinct evidence kinds.
func (s EvidenceSet) Unique() int { return len(s.Keys) }

// HasFullContract reports the presence of any full cooperation contract
// variant.
func (s EvidenceSet) HasFullContract() bool {
	return s.Has(EvCoopContractFull)
}

// Classify normalizes and dedupes raw identifiers into an EvidenceSet
// with tier counts. Pure and order-independent: the same raw string
// repeated in one request yields a single counted instance.
func Classify(raw []string) EvidenceSet {
	var set EvidenceSet
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		key := CanonicalEvidenceKey(r)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		set.Keys = append(set.Keys, key)
		switch evidenceTiers[key] {
		case TierHard:
			set.Hard++
		case TierMedium:
			set.Medium++
		case TierSupport:
			set.Support++
		}
	}
	return set
}
