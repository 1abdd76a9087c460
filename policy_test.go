package skeptic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_RejectsEmptySessionID(t *testing.T) {
	e := NewEngine()
	_, err := e.Process(TurnRequest{SessionID: "   ", LastUserText: "Добрый день"})
	require.ErrorIs(t, err, ErrEmptySessionID)
}

func TestEngine_EvidenceIngestionIsIdempotent(t *testing.T) {
	e := NewEngine()

	// Duplicates within one request collapse to a single counted
	// instance with a single acknowledgment.
	res, err := e.Process(TurnRequest{
		SessionID:    "s-idem",
		BaseTrust:    20,
		Evidences:    []string{"заявка", EvDemandLetter, "demand letter"},
		LastUserText: "Отправил документ",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.EvidenceCount)
	assert.Contains(t, res.Reply, "Заявку получил")

	// Resubmitting the same key later never re-triggers the ack.
	res, err = e.Process(TurnRequest{
		SessionID:    "s-idem",
		BaseTrust:    20,
		Evidences:    []string{EvDemandLetter},
		LastUserText: "Продублировал документ",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.EvidenceCount)
	assert.NotContains(t, res.Reply, "Заявку получил")
}

func TestEngine_AckDeferredPastOverrideReply(t *testing.T) {
	e := NewEngine()

	// Evidence arrives together with an identity question: the fast
	// path overrides the reply, so the ack waits instead of vanishing.
	res, err := e.Process(TurnRequest{
		SessionID:    "s-deferred",
		BaseTrust:    20,
		Evidences:    []string{EvDemandLetter},
		LastUserText: "Кто вы такой?",
	})
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "Меня зовут Дмитрий")
	assert.NotContains(t, res.Reply, "Заявку получил")

	// The next regular turn delivers the deferred ack, exactly once.
	res, err = e.Process(TurnRequest{
		SessionID:    "s-deferred",
		BaseTrust:    20,
		LastUserText: "Посмотрели документ?",
	})
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "Заявку получил")

	res, err = e.Process(TurnRequest{
		SessionID:    "s-deferred",
		BaseTrust:    20,
		LastUserText: "Что скажете?",
	})
	require.NoError(t, err)
	assert.NotContains(t, res.Reply, "Заявку получил")
}

func TestEngine_FastPathIdentity(t *testing.T) {
	e := NewEngine()
	res, err := e.Process(TurnRequest{
		SessionID:    "s-fast",
		BaseTrust:    20,
		LastUserText: "А кто вы вообще?",
		DraftReply:   "Я рада помочь вам с любым вопросом!",
	})
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "Меня зовут Дмитрий")
	assert.NotContains(t, res.Reply, "рада")
}

func TestEngine_ReactiveFactLookup(t *testing.T) {
	e := NewEngine()
	_, err := e.Process(TurnRequest{
		SessionID: "s-facts",
		BaseTrust: 20,
		Evidences: []string{EvDemandLetter},
		EvidenceDetails: map[string]map[string]interface{}{
			EvDemandLetter: {"зарплата": "90000", "город": "Казань"},
		},
		LastUserText: "Отправил заявку",
	})
	require.NoError(t, err)

	res, err := e.Process(TurnRequest{
		SessionID:    "s-facts",
		BaseTrust:    20,
		LastUserText: "Какая зарплата по этой позиции?",
	})
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "90000")

	// Facts the session does not hold stay unanswered.
	res, err = e.Process(TurnRequest{
		SessionID:    "s-facts",
		BaseTrust:    20,
		LastUserText: "Сколько часов смена?",
	})
	require.NoError(t, err)
	assert.NotContains(t, res.Reply, "По часам")
}

func TestEngine_ObjectionBlocksPaymentTalk(t *testing.T) {
	e := NewEngine()
	res, err := e.Process(TurnRequest{
		SessionID:    "s-obj",
		BaseTrust:    20,
		LastUserText: "Сколько стоит один кандидат?",
		DraftStage:   string(StagePayment),
	})
	require.NoError(t, err)

	// Price talk without evidence draws an objection and the stage is
	// pulled back from Payment.
	assert.NotEmpty(t, res.Reply)
	assert.NotEqual(t, StagePayment, res.Stage)
	assert.True(t, res.NeedEvidence)
	assert.Contains(t, res.SuggestedActions, ActionAskDemands)
}

func TestEngine_BaseTrustFallbackAndGate(t *testing.T) {
	e := NewEngine()
	for _, base := range []int{-5, 0, 150} {
		res, err := e.Process(TurnRequest{
			SessionID:    "s-base",
			BaseTrust:    base,
			LastUserText: "Добрый день",
		})
		require.NoError(t, err)
		// Out-of-range base falls back to the default; without hard
		// evidence the first gate caps the score.
		assert.GreaterOrEqual(t, res.Trust, 15, "base=%d", base)
		assert.LessOrEqual(t, res.Trust, DefaultConfig().Gate1Cap, "base=%d", base)
	}
}

func TestEngine_HostileSessionSuggestsGoodbye(t *testing.T) {
	e := NewEngine()
	res, err := e.Process(TurnRequest{
		SessionID:    "s-hostile",
		BaseTrust:    1,
		LastUserText: "Ок",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{ActionGoodbye}, res.SuggestedActions)
}

func TestEngine_EvidenceActionsSkipSatisfied(t *testing.T) {
	e := NewEngine()
	res, err := e.Process(TurnRequest{
		SessionID:    "s-actions",
		BaseTrust:    40,
		Evidences:    []string{EvDemandLetter},
		LastUserText: "Вот заявка",
	})
	require.NoError(t, err)
	assert.NotContains(t, res.SuggestedActions, ActionAskDemands)
	assert.Contains(t, res.SuggestedActions, ActionAskSampleContract)
	assert.Contains(t, res.SuggestedActions, ActionAskCoopContract)
}

func TestEngine_CommitmentIsPermanent(t *testing.T) {
	e := NewEngine()

	first, err := e.Process(TurnRequest{
		SessionID: "session-lucky",
		BaseTrust: 100,
		Evidences: []string{EvBusinessCard, EvDemandLetter, EvSampleContract, EvCoopContractFull},
	})
	require.NoError(t, err)
	require.False(t, first.NeedEvidence)

	var committedAt int
	for turn := 2; turn <= 70 && committedAt == 0; turn++ {
		res, err := e.Process(TurnRequest{SessionID: "session-lucky", BaseTrust: 100})
		require.NoError(t, err)
		if e.Stats().CommitmentsMade == 1 {
			committedAt = turn
			assert.GreaterOrEqual(t, res.Confidence, 90)
			assert.Equal(t, StagePayment, res.Stage)
		}
	}
	require.NotZero(t, committedAt, "full trust never committed in 70 turns")

	// Once committed the decision never re-rolls and the only suggested
	// action is requesting an invoice.
	for turn := 0; turn < 10; turn++ {
		res, err := e.Process(TurnRequest{SessionID: "session-lucky", BaseTrust: 100})
		require.NoError(t, err)
		assert.Equal(t, []string{ActionInvoiceRequest}, res.SuggestedActions)
		assert.Equal(t, StagePayment, res.Stage)
		assert.False(t, strings.Contains(res.Reply, "убедили"), "commitment line repeated: %q", res.Reply)
	}
	assert.Equal(t, int64(1), e.Stats().CommitmentsMade)
}

func TestEngine_StatsCountTurns(t *testing.T) {
	e := NewEngine()
	for i := 0; i < 3; i++ {
		_, err := e.Process(TurnRequest{SessionID: "s-stats", BaseTrust: 20, LastUserText: "Ок"})
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), e.Stats().TurnsProcessed)
}

func TestEngine_SanitizesDraft(t *testing.T) {
	e := NewEngine()
	res, err := e.Process(TurnRequest{
		SessionID:    "s-sanitize",
		BaseTrust:    20,
		LastUserText: "Хорошо",
		DraftReply:   "Я рада помочь. Это уникальное предложение. Жду ваши документы.",
	})
	require.NoError(t, err)
	assert.NotContains(t, res.Reply, "уникальное предложение")
	assert.NotContains(t, res.Reply, "рада")
	assert.Contains(t, res.Reply, "Жду ваши документы")
}

func TestEngine_BannedDraftFallsBack(t *testing.T) {
	e := NewEngine()
	res, err := e.Process(TurnRequest{
		SessionID:    "s-banned",
		BaseTrust:    20,
		LastUserText: "Хорошо",
		DraftReply:   "Как ИИ, я не могу оценить договор.",
	})
	require.NoError(t, err)
	assert.NotContains(t, strings.ToLower(res.Reply), "как ии")
	assert.Contains(t, res.Reply, "Пришлите для начала документы")
}
