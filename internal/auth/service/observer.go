package service

// Outcome labels reported to an Observer.
const (
	OutcomeSuccess     = "success"
	OutcomeMFARequired = "mfa_required"
)

// Observer receives the outcome of every security relevant decision. Failure
// outcomes are domain.Kind values.
type Observer interface {
	AccountRegistered(role string)
	LoginAttempt(outcome string)
	MFAVerification(outcome string)
	GuardDecision(outcome string)
}

type nopObserver struct{}

func (nopObserver) AccountRegistered(string) {}
func (nopObserver) LoginAttempt(string)      {}
func (nopObserver) MFAVerification(string)   {}
func (nopObserver) GuardDecision(string)     {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
