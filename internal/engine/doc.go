// Package engine contains the economy core: multiplier composition, the
// accrual loop, the prestige reset protocol, and the balance advisor.
//
// ARCHITECTURAL RULE: the Session is the only component allowed to mutate
// the ledger and registry. Everything else either reads views or registers
// as a multiplier source that the aggregator pulls from.
package engine
