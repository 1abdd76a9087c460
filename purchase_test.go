package skeptic

import "testing"

func readySession() *SessionState {
	st := NewSessionState()
	st.BumpEvidence(EvBusinessCard, nil)
	st.BumpEvidence(EvDemandLetter, nil)
	st.BumpEvidence(EvSampleContract, nil)
	st.BumpEvidence(EvCoopContractFull, nil)
	return st
}

func TestPurchaseModel_PreconditionsGate(t *testing.T) {
	m := NewPurchaseModel(DefaultConfig(), NewHashDrawSource(""))

	// Missing any prerequisite: never fires, on any turn.
	st := NewSessionState()
	st.BumpEvidence(EvBusinessCard, nil)
	st.BumpEvidence(EvDemandLetter, nil)
	for turn := 1; turn <= 50; turn++ {
		st.Turn = turn
		if com := m.Decide("s1", st, 100, "Понимаю ваши сомнения"); com != nil {
			t.Fatalf("commitment without full evidence at turn %d", turn)
		}
	}

	// Full evidence but trust below the floor: never fires.
	st = readySession()
	for turn := 1; turn <= 50; turn++ {
		st.Turn = turn
		if com := m.Decide("s1", st, 69, ""); com != nil {
			t.Fatalf("commitment below trust floor at turn %d", turn)
		}
	}
}

func TestPurchaseModel_DeterministicPerTurn(t *testing.T) {
	m := NewPurchaseModel(DefaultConfig(), NewHashDrawSource(""))
	st := readySession()
	st.Turn = 7

	a := m.Decide("session-42", st, 100, "Не тороплю, решать вам")
	st2 := readySession()
	st2.Turn = 7
	b := m.Decide("session-42", st2, 100, "Не тороплю, решать вам")

	if (a == nil) != (b == nil) {
		t.Fatalf("same (session, turn) diverged: %v vs %v", a, b)
	}
	if a != nil && (a.Units != b.Units || a.Channel != b.Channel || a.Reply != b.Reply) {
		t.Fatalf("commitment details diverged: %+v vs %+v", a, b)
	}
}

func TestPurchaseModel_EventuallyCommitsAtFullTrust(t *testing.T) {
	m := NewPurchaseModel(DefaultConfig(), NewHashDrawSource(""))
	st := readySession()

	var com *Commitment
	for turn := 1; turn <= 60 && com == nil; turn++ {
		st.Turn = turn
		com = m.Decide("session-lucky", st, 100, "")
	}
	if com == nil {
		t.Fatal("trust 100 (p=0.50/turn) did not commit in 60 turns")
	}
	if com.Units < 1 || com.Units > DefaultConfig().MaxUnits {
		t.Fatalf("unit count out of range: %d", com.Units)
	}
	if com.Channel != ChannelBank {
		t.Fatalf("no channel pitch should settle by bank, got %s", com.Channel)
	}
	if com.Reply == "" {
		t.Fatal("commitment reply is empty")
	}
}

func TestPurchaseModel_CommittedFlagSuppresses(t *testing.T) {
	m := NewPurchaseModel(DefaultConfig(), NewHashDrawSource(""))
	st := readySession()
	st.Committed = true

	for turn := 1; turn <= 60; turn++ {
		st.Turn = turn
		if com := m.Decide("s1", st, 100, ""); com != nil {
			t.Fatalf("committed session re-evaluated at turn %d", turn)
		}
	}
}

func TestPurchaseModel_UnitsSkewSmall(t *testing.T) {
	m := NewPurchaseModel(DefaultConfig(), NewHashDrawSource(""))

	ones, total := 0, 0
	for turn := 1; turn <= 400; turn++ {
		st := readySession()
		st.Turn = turn
		if com := m.Decide("session-units", st, 100, ""); com != nil {
			total++
			if com.Units == 1 {
				ones++
			}
		}
	}
	if total < 50 {
		t.Fatalf("too few commitments to judge the distribution: %d", total)
	}
	// Roughly half the mass sits on a single unit.
	if ratio := float64(ones) / float64(total); ratio < 0.3 || ratio > 0.7 {
		t.Fatalf("single-unit ratio %0.2f outside [0.3, 0.7]", ratio)
	}
}
