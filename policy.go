package skeptic

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// ──────────────────────────────────────────────
// Dialogue Policy Engine — post-rules orchestration
// ──────────────────────────────────────────────

// TurnRequest is the engine's consumed interface from the HTTP/LLM
// layer. History must not include the latest user message.
type TurnRequest struct {
	BaseTrust       int                               `json:"baseTrust"`
	Evidences       []string                          `json:"evidences"`
	History         []Turn                            `json:"history"`
	LastUserText    string                            `json:"lastUserText"`
	SessionID       string                            `json:"sessionId"`
	EvidenceDetails map[string]map[string]interface{} `json:"evidenceDetails,omitempty"`
	DraftReply      string                            `json:"draftReply,omitempty"`
	DraftStage      string                            `json:"draftStage,omitempty"`
}

// TurnResult is the engine's produced interface.
type TurnResult struct {
	Trust            int      `json:"trust"`
	EvidenceCount    int      `json:"evidenceCount"`
	Reply            string   `json:"reply"`
	Stage            Stage    `json:"stage"`
	Confidence       int      `json:"confidence"`
	NeedEvidence     bool     `json:"needEvidence"`
	SuggestedActions []string `json:"suggestedActions"`
}

// ErrEmptySessionID is returned when a request carries no session id.
var ErrEmptySessionID = errors.New("skeptic: empty session id")

// Engine orchestrates scorer, session store, objection generator,
// purchase model and repetition guard into one turn computation.
// Turns for the same session id are serialized with per-session locks,
// preserving idempotent ingestion and permanent commitment under
// concurrent callers.
type Engine struct {
	cfg        Config
	scorer     *Scorer
	store      SessionStore
	objections *ObjectionGenerator
	purchase   *PurchaseModel
	guard      *RepetitionGuard
	log        *zap.Logger

	locks sync.Map // sessionID → *sync.Mutex

	turnsProcessed  atomic.Int64
	commitmentsMade atomic.Int64
}

// EngineOptions configures an Engine. Zero-value fields fall back to
// defaults (in-memory store, hash draw source, nop logger).
type EngineOptions struct {
	Config Config
	Store  SessionStore
	Draws  DrawSource
	Logger *zap.Logger
}

// NewEngine creates an engine. Without arguments it runs entirely
// self-contained on an in-memory store.
func NewEngine(opts ...EngineOptions) *Engine {
	o := EngineOptions{}
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Config.Version == "" {
		o.Config = DefaultConfig()
	}
	if o.Store == nil {
		o.Store = NewMemorySessionStore()
	}
	if o.Draws == nil {
		o.Draws = NewHashDrawSource("")
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return &Engine{
		cfg:        o.Config,
		scorer:     NewScorer(o.Config),
		store:      o.Store,
		objections: NewObjectionGenerator(o.Draws),
		purchase:   NewPurchaseModel(o.Config, o.Draws),
		guard:      NewRepetitionGuard(o.Config),
		log:        o.Logger,
	}
}

// EngineStats is a snapshot of the engine's counters.
type EngineStats struct {
	TurnsProcessed  int64
	CommitmentsMade int64
}

// Stats returns the engine's counters.
func (e *Engine) Stats() EngineStats {
	return EngineStats{
		TurnsProcessed:  e.turnsProcessed.Load(),
		CommitmentsMade: e.commitmentsMade.Load(),
	}
}

// Process computes one dialogue turn. It never fails on malformed
// content; the only error condition is a missing session id or a
// store failure.
func (e *Engine) Process(req TurnRequest) (TurnResult, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return TurnResult{}, ErrEmptySessionID
	}

	mu := e.sessionLock(req.SessionID)
	mu.Lock()
	defer mu.Unlock()

	st, err := e.store.Load(req.SessionID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("load session %q: %w", req.SessionID, err)
	}

	turn := st.NextTurn()
	base := req.BaseTrust
	if base <= 0 || base > 100 {
		base = e.cfg.DefaultBaseTrust
	}

	// 1. Idempotent evidence ingestion: a key new to the session queues
	// exactly one acknowledgment; repeats bump counts silently.
	e.ingestEvidence(st, req)

	ev := st.AccumulatedSet()
	trust := e.scorer.Compute(base, ev, req.History, req.LastUserText)

	reply, stage, committed := e.composeReply(st, req, trust, ev)

	// 8. Anti-repetition guard runs last on the text.
	reply = e.guard.Apply(reply, st)
	st.LastReply = reply

	if err := e.store.Save(req.SessionID, st); err != nil {
		return TurnResult{}, fmt.Errorf("save session %q: %w", req.SessionID, err)
	}

	confidence := trust
	if committed {
		confidence = maxInt(trust, 90)
	}

	result := TurnResult{
		Trust:            clamp(trust, 0, 100),
		EvidenceCount:    st.UniqueEvidenceCount(),
		Reply:            reply,
		Stage:            stage,
		Confidence:       clamp(confidence, 0, 100),
		NeedEvidence:     !e.purchase.Ready(st),
		SuggestedActions: e.suggestActions(st, trust, committed),
	}

	e.turnsProcessed.Inc()
	e.log.Debug("turn processed",
		zap.String("session", req.SessionID),
		zap.Int("turn", turn),
		zap.Int("trust", result.Trust),
		zap.String("stage", string(result.Stage)),
		zap.Bool("committed", st.Committed),
	)
	return result, nil
}

func (e *Engine) sessionLock(sessionID string) *sync.Mutex {
	if mu, ok := e.locks.Load(sessionID); ok {
		return mu.(*sync.Mutex)
	}
	mu, _ := e.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// ingestEvidence dedupes and records this request's evidence, merging
// demand facts from the payload. Keys new to the session queue a
// one-time acknowledgment on the state.
func (e *Engine) ingestEvidence(st *SessionState, req TurnRequest) {
	seen := make(map[string]bool)
	for _, raw := range req.Evidences {
		key := CanonicalEvidenceKey(raw)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		details := req.EvidenceDetails[raw]
		if details == nil {
			details = req.EvidenceDetails[key]
		}
		if st.BumpEvidence(key, details) {
			st.PendingAcks = append(st.PendingAcks, key)
		}
		if key == EvDemandLetter && len(details) > 0 {
			facts := ParseDemandFacts(details)
			st.Facts.Merge(facts)
		}
	}
}

// composeReply runs the post-rules cascade over the draft and returns
// the reply text, the resolved stage and whether commitment happened
// this turn.
func (e *Engine) composeReply(st *SessionState, req TurnRequest, trust int, ev EvidenceSet) (string, Stage, bool) {
	latest := req.LastUserText
	draftStage := ParseStage(req.DraftStage)

	draft := strings.TrimSpace(req.DraftReply)
	if draft == "" || bannedDraftRe.MatchString(draft) {
		draft = fallbackDraft(st)
	}

	// 2. Deterministic fast paths override the draft entirely.
	if fast := fastPathReply(latest); fast != "" {
		return fast, MaxStage(draftStage, stageForGaps(st)), false
	}

	// 6. Purchase decision, evaluated before objections so a session
	// that clears every bar can actually close. Permanent once set.
	if !st.Committed {
		if com := e.purchase.Decide(req.SessionID, st, trust, latest); com != nil {
			st.Committed = true
			st.CommittedUnits = com.Units
			st.CommittedChannel = com.Channel
			e.commitmentsMade.Inc()
			e.log.Info("commitment made",
				zap.String("session", req.SessionID),
				zap.Int("units", com.Units),
				zap.String("channel", com.Channel),
			)
			return com.Reply, StagePayment, true
		}
	}

	// 5. Objections when trust is insufficient for the payment talk
	// the manager is steering toward.
	if trust < e.cfg.PurchaseTrustFloor || !e.purchase.Ready(st) {
		if obj := e.objections.Choose(req.SessionID, latest, draftStage, st); obj != nil {
			st.LastObjection = obj.Text
			stage := MaxStage(draftStage, obj.SuggestedStage)
			// Trust gates force payment talk back to Contract.
			if stage == StagePayment {
				stage = StageContract
			}
			return obj.Text, stage, false
		}
	}

	parts := make([]string, 0, 4)

	// 1b. One-time acknowledgments, including any deferred by override
	// replies on earlier turns.
	for _, key := range st.PendingAcks {
		if ack := evidenceAck(key, st); ack != "" {
			parts = append(parts, ack)
		}
	}
	st.PendingAcks = nil

	// 3. Reactive fact look-ups: answered only when asked, never
	// volunteered.
	if answer := factAnswer(st.Facts, latest); answer != "" {
		parts = append(parts, answer)
	}

	// 4+7. Channel policy and sanitization of the upstream draft.
	draft = sanitizeReply(draft)
	if draft != "" {
		parts = append(parts, draft)
	}

	reply := strings.Join(parts, " ")
	if strings.TrimSpace(reply) == "" {
		reply = fallbackDraft(st)
	}

	// 9. Stage: take the furthest-advanced suggestion, but gates pull
	// premature payment back to Contract.
	stage := MaxStage(draftStage, evidenceStage(st))
	if stage == StagePayment && !st.Committed && trust < e.cfg.PurchaseTrustFloor {
		stage = StageContract
	}
	return reply, stage, false
}

// evidenceStage reflects evidence-driven progress: the persona never
// regresses below what the documents already establish.
func evidenceStage(st *SessionState) Stage {
	switch {
	case st.Committed:
		return StagePayment
	case st.HasEvidence(EvCoopContractFull) && st.UniqueEvidenceCount() >= 2:
		return StageCandidate
	case st.HasEvidence(EvCoopContractPDF) || st.HasEvidence(EvCoopContractFull):
		return StageContract
	case st.HasEvidence(EvDemandLetter):
		return StageDemand
	default:
		return StageGreeting
	}
}

func (e *Engine) suggestActions(st *SessionState, trust int, committed bool) []string {
	proposed := make(map[string]bool)
	switch {
	case committed || st.Committed:
		proposed[ActionInvoiceRequest] = true
	case trust <= 5:
		proposed[ActionGoodbye] = true
	default:
		suggestEvidenceActions(st, proposed)
		if trust >= e.cfg.Gate2Cap && st.HasEvidence(EvDemandLetter) {
			proposed[ActionAskPriceBreakdown] = true
		}
	}
	return orderActions(proposed)
}

// ──────────────────────────────────────────────
// Canned texts, fast paths and sanitization
// ──────────────────────────────────────────────

var (
	identityQuestionRe = regexp.MustCompile(
		`(?i)(кто вы|как вас зовут|вы бот|вы робот|чем занимаетесь|who are you|what('s| is) your name|are you a bot)`)
	registrationQuestionRe = regexp.MustCompile(
		`(?i)(как (проходит|работает) (запись|регистраци)|где записаться|платн\w* очеред|how does registration work|how to book a slot)`)

	bannedDraftRe = regexp.MustCompile(
		`(?i)(как (ии|искусственный интеллект)|as an ai|language model|реквизиты для оплаты|send money to)`)

	priceEchoRe = regexp.MustCompile(
		`(?i)\d[\d\s]*(₽|руб|\$|€|usd|eur)?\s*(за кандидата|за человека|комисси|наша ставка|стоимост|per candidate|fee)`)

	roboticThanksRe = regexp.MustCompile(
		`(?i)спасибо за (предоставленн\w+|ваш\w*) [^.!?]*[.!?]?`)
)

var salesyPhrases = []string{
	"уникальное предложение", "только сегодня", "не упустите шанс",
	"эксклюзивные условия", "лучшее предложение на рынке",
	"limited time offer", "exclusive deal", "don't miss out",
}

// genderFixes repairs feminine agreement the upstream model sometimes
// forces onto the persona, who speaks in the masculine first person.
var genderFixes = [][2]string{
	{"я рада", "я рад"},
	{"я готова", "я готов"},
	{"я согласна", "я согласен"},
	{"я уверена", "я уверен"},
	{"я не уверена", "я не уверен"},
}

const (
	identityReply        = "Меня зовут Дмитрий, у меня строительная компания. Люди нужны постоянно, но деньги вперёд я никому не плачу."
	registrationReply    = "Насколько я знаю, запись идёт через официальный портал напрямую. Никаких платных очередей там нет."
	documentRequestReply = "Пришлите для начала документы: заявку и договор. Без бумаг разговор не двинется."
	tooEarlyPaymentReply = "Об оплате говорить рано. Сначала документы, потом деньги."
)

// fastPathReply answers identity and registration/slot questions with
// canned factual text, overriding any draft.
func fastPathReply(latest string) string {
	switch {
	case identityQuestionRe.MatchString(latest):
		return identityReply
	case registrationQuestionRe.MatchString(latest):
		return registrationReply
	default:
		return ""
	}
}

// fallbackDraft substitutes a safe canned line for an empty or banned
// draft.
func fallbackDraft(st *SessionState) string {
	if st.HasEvidence(EvDemandLetter) && (st.HasEvidence(EvCoopContractPDF) || st.HasEvidence(EvCoopContractFull)) {
		return tooEarlyPaymentReply
	}
	return documentRequestReply
}

// evidenceAck returns the one-time acknowledgment for a newly seen key.
func evidenceAck(key string, st *SessionState) string {
	switch key {
	case EvDemandLetter:
		return "Заявку получил, посмотрю. Пришлите теперь договор."
	case EvCoopContractPDF:
		return "Договор получил, дам почитать юристу."
	case EvCoopContractFull:
		return "Полный договор вижу. Это уже предметный разговор."
	case EvSampleContract:
		return "Образец договора получил."
	case EvBusinessCard:
		return "Визитку вижу."
	default:
		return ""
	}
}

var (
	salaryQuestionRe   = regexp.MustCompile(`(?i)(какая зарплата|какой оклад|сколько (вы )?плат|what salary|how much do you pay)`)
	housingQuestionRe  = regexp.MustCompile(`(?i)(есть ли жиль|(сколько стоит|какое) (жиль|общежити|проживани)|is housing|accommodation cost)`)
	hoursQuestionRe    = regexp.MustCompile(`(?i)(сколько часов|какой график|какие смены|working hours|what('s| is) the schedule)`)
	locationQuestionRe = regexp.MustCompile(`(?i)(в каком городе|где (находится |)объект|какая локация|what city|where is the (site|job))`)
	jobQuestionRe      = regexp.MustCompile(`(?i)(что за (ваканси|должност|работ)|какие обязанности|кого ищете|what('s| is) the (position|job)|job description)`)
)

// factAnswer answers one demand-facts question reactively. The persona
// never volunteers these, and stays silent on facts it does not have.
func factAnswer(f DemandFacts, latest string) string {
	switch {
	case salaryQuestionRe.MatchString(latest) && f.Salary != "":
		return fmt.Sprintf("По заявке зарплата — %s.", f.Salary)
	case housingQuestionRe.MatchString(latest) && f.AccommodationCost != "":
		return fmt.Sprintf("Проживание — %s.", f.AccommodationCost)
	case hoursQuestionRe.MatchString(latest) && f.Hours != "":
		return fmt.Sprintf("По часам: %s.", f.Hours)
	case locationQuestionRe.MatchString(latest) && f.Location != "":
		return fmt.Sprintf("Объект в городе %s.", f.Location)
	case jobQuestionRe.MatchString(latest) && f.Position != "":
		return fmt.Sprintf("Ищем людей на позицию: %s.", f.Position)
	default:
		return ""
	}
}

// sanitizeReply strips salesy language, robotic thank-yous, unsolicited
// crypto/wallet phrasing, echoed price figures and forced feminine
// agreement from the draft.
func sanitizeReply(text string) string {
	var kept []string
	for _, sent := range splitSentences(text) {
		trimmed := strings.TrimSpace(sent)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		if payChannelRe.MatchString(trimmed) && paymentMentionRe.MatchString(trimmed) {
			continue // unsolicited crypto/wallet/pay-first phrasing
		}
		if priceEchoRe.MatchString(trimmed) {
			continue
		}
		if containsAny(lower, salesyPhrases) {
			continue
		}
		trimmed = roboticThanksRe.ReplaceAllString(trimmed, "")
		trimmed = strings.TrimSpace(trimmed)
		if trimmed == "" {
			continue
		}
		kept = append(kept, trimmed)
	}
	out := strings.Join(kept, " ")
	for _, fix := range genderFixes {
		out = strings.ReplaceAll(out, fix[0], fix[1])
		out = strings.ReplaceAll(out, capitalizeFirst(fix[0]), capitalizeFirst(fix[1]))
	}
	return out
}

// capitalizeFirst upper-cases the first rune of a phrase.
func capitalizeFirst(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
