package paycycle

// idSet is an immutable-by-convention membership set. The transition
// functions below never mutate a set in place; they copy on write and return
// the original map when nothing changed, so callers can use reference
// equality to skip recomputation.
type idSet map[string]struct{}

func (s idSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s idSet) with(id string) idSet {
	if s.has(id) {
		return s
	}
	next := make(idSet, len(s)+1)
	for k := range s {
		next[k] = struct{}{}
	}
	next[id] = struct{}{}
	return next
}

func (s idSet) without(id string) idSet {
	if !s.has(id) {
		return s
	}
	next := make(idSet, len(s))
	for k := range s {
		if k != id {
			next[k] = struct{}{}
		}
	}
	return next
}

// OptimisticState overlays client-side paid/unpaid intent on top of the
// authoritative seed list. Joint seeds track each payer independently so two
// household members toggling their own halves from different devices never
// stomp each other. The zero value is not usable; call NewOptimisticState.
type OptimisticState struct {
	Paid          idSet
	Unpaid        idSet
	PaidMe        idSet
	PaidPartner   idSet
	UnpaidMe      idSet
	UnpaidPartner idSet
}

// NewOptimisticState returns an empty overlay. Each owner (one per seed list
// view) gets its own value; the state is threaded through the pure
// transitions below, never shared mutable storage.
func NewOptimisticState() OptimisticState {
	return OptimisticState{
		Paid:          idSet{},
		Unpaid:        idSet{},
		PaidMe:        idSet{},
		PaidPartner:   idSet{},
		UnpaidMe:      idSet{},
		UnpaidPartner: idSet{},
	}
}

// IsEmpty reports whether no optimistic intent is pending.
func (st OptimisticState) IsEmpty() bool {
	return len(st.Paid) == 0 && len(st.Unpaid) == 0 &&
		len(st.PaidMe) == 0 && len(st.PaidPartner) == 0 &&
		len(st.UnpaidMe) == 0 && len(st.UnpaidPartner) == 0
}

// ApplyMarkPaid records an optimistic paid toggle before the mutation is
// confirmed. Applying the same toggle twice leaves the state unchanged.
func ApplyMarkPaid(st OptimisticState, seedID string, payer Payer, isJoint bool) OptimisticState {
	if isJoint && payer == PayerMe {
		st.PaidMe = st.PaidMe.with(seedID)
		st.UnpaidMe = st.UnpaidMe.without(seedID)
		return st
	}
	if isJoint && payer == PayerPartner {
		st.PaidPartner = st.PaidPartner.with(seedID)
		st.UnpaidPartner = st.UnpaidPartner.without(seedID)
		return st
	}
	st.Paid = st.Paid.with(seedID)
	st.Unpaid = st.Unpaid.without(seedID)
	return st
}

// RollbackMarkPaid reverts a failed paid toggle. Only the toggle's own
// (seed, payer) slice is touched; unrelated pending toggles survive.
func RollbackMarkPaid(st OptimisticState, seedID string, payer Payer, isJoint bool) OptimisticState {
	if isJoint && payer == PayerMe {
		st.PaidMe = st.PaidMe.without(seedID)
		return st
	}
	if isJoint && payer == PayerPartner {
		st.PaidPartner = st.PaidPartner.without(seedID)
		return st
	}
	st.Paid = st.Paid.without(seedID)
	return st
}

// ApplyUnmarkPaid records an optimistic unpaid toggle.
func ApplyUnmarkPaid(st OptimisticState, seedID string, payer Payer, isJoint bool) OptimisticState {
	if isJoint && payer == PayerMe {
		st.UnpaidMe = st.UnpaidMe.with(seedID)
		st.PaidMe = st.PaidMe.without(seedID)
		return st
	}
	if isJoint && payer == PayerPartner {
		st.UnpaidPartner = st.UnpaidPartner.with(seedID)
		st.PaidPartner = st.PaidPartner.without(seedID)
		return st
	}
	st.Unpaid = st.Unpaid.with(seedID)
	st.Paid = st.Paid.without(seedID)
	return st
}

// RollbackUnmarkPaid reverts a failed unpaid toggle.
func RollbackUnmarkPaid(st OptimisticState, seedID string, payer Payer, isJoint bool) OptimisticState {
	if isJoint && payer == PayerMe {
		st.UnpaidMe = st.UnpaidMe.without(seedID)
		return st
	}
	if isJoint && payer == PayerPartner {
		st.UnpaidPartner = st.UnpaidPartner.without(seedID)
		return st
	}
	st.Unpaid = st.Unpaid.without(seedID)
	return st
}

// OverlaySeeds applies the optimistic state to a server snapshot for display.
// For joint seeds each payer's flag is (server-paid OR optimistically paid)
// AND NOT optimistically unpaid; the seed is paid when both halves are.
// Non-joint seeds use the single paid/unpaid sets directly.
func OverlaySeeds(seeds []SeedLine, st OptimisticState, isCouple bool) []SeedLine {
	out := make([]SeedLine, len(seeds))
	for i, s := range seeds {
		if s.PaymentSource == SourceJoint && isCouple {
			paidMe := (s.IsPaidMe || st.PaidMe.has(s.ID)) && !st.UnpaidMe.has(s.ID)
			paidPartner := (s.IsPaidPartner || st.PaidPartner.has(s.ID)) && !st.UnpaidPartner.has(s.ID)
			s.IsPaidMe = paidMe
			s.IsPaidPartner = paidPartner
			s.IsPaid = paidMe && paidPartner
		} else if st.Unpaid.has(s.ID) {
			s.IsPaid = false
			s.IsPaidMe = false
			s.IsPaidPartner = false
		} else if st.Paid.has(s.ID) {
			s.IsPaid = true
			s.IsPaidMe = true
		}
		out[i] = s
	}
	return out
}

// Prune drops overlay entries the server snapshot already agrees with. When
// nothing changes the input state is returned as-is (same set references), so
// dependent computations can cheaply detect the no-op. Pruning is per seed
// id: an unrelated seed's update never clears a still-pending toggle.
func Prune(st OptimisticState, seeds []SeedLine) OptimisticState {
	for _, s := range seeds {
		if s.IsPaid {
			st.Paid = st.Paid.without(s.ID)
		} else {
			st.Unpaid = st.Unpaid.without(s.ID)
		}
		if s.PaymentSource == SourceJoint {
			if s.IsPaidMe {
				st.PaidMe = st.PaidMe.without(s.ID)
			} else {
				st.UnpaidMe = st.UnpaidMe.without(s.ID)
			}
			if s.IsPaidPartner {
				st.PaidPartner = st.PaidPartner.without(s.ID)
			} else {
				st.UnpaidPartner = st.UnpaidPartner.without(s.ID)
			}
		}
	}
	return st
}
