package skeptic

// ──────────────────────────────────────────────
// Suggested actions — fixed whitelist, fixed priority
// ──────────────────────────────────────────────

// Suggested actions the caller may surface to the trainee. The slice
// order is the priority order of the output.
const (
	ActionAskDemands        = "ask_demands"
	ActionAskSampleContract = "ask_sample_contract"
	ActionAskCoopContract   = "ask_coop_contract"
	ActionAskPriceBreakdown = "ask_price_breakdown"
	ActionTestOneCandidate  = "test_one_candidate"
	ActionInvoiceRequest    = "invoice_request"
	ActionGoodbye           = "goodbye"
)

var actionPriority = []string{
	ActionAskDemands,
	ActionAskSampleContract,
	ActionAskCoopContract,
	ActionAskPriceBreakdown,
	ActionTestOneCandidate,
	ActionInvoiceRequest,
	ActionGoodbye,
}

// orderActions dedupes the proposed actions and returns them in the
// fixed priority order, dropping anything outside the whitelist.
func orderActions(proposed map[string]bool) []string {
	out := make([]string, 0, len(proposed))
	for _, a := range actionPriority {
		if proposed[a] {
			out = append(out, a)
		}
	}
	return out
}

// suggestEvidenceActions proposes the next-document asks, skipping
// evidence the session has already satisfied.
func suggestEvidenceActions(state *SessionState, proposed map[string]bool) {
	if !state.HasEvidence(EvDemandLetter) {
		proposed[ActionAskDemands] = true
		return
	}
	if !state.HasEvidence(EvSampleContract) {
		proposed[ActionAskSampleContract] = true
	}
	if !state.HasEvidence(EvCoopContractPDF) && !state.HasEvidence(EvCoopContractFull) {
		proposed[ActionAskCoopContract] = true
	}
	if state.HasEvidence(EvSampleContract) &&
		(state.HasEvidence(EvCoopContractPDF) || state.HasEvidence(EvCoopContractFull)) &&
		!state.HasEvidence(EvCandidateCV) {
		proposed[ActionTestOneCandidate] = true
	}
}
