package lifecycle

import "fmt"

// Actor identifies who is driving a transition. The applicant may only
// complete their own code challenge; the owning employer drives every
// other transition.
type Actor string

const (
	ActorEmployer  Actor = "employer"
	ActorApplicant Actor = "applicant"
)

// Action is the requested move: advance to the next state, or reject.
type Action string

const (
	ActionProgress Action = "progress"
	ActionReject   Action = "reject"
)

// TransitionError reports a move the state machine refuses.
type TransitionError struct {
	From   Status
	Actor  Actor
	Action Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("no valid %s transition from %q for %s", e.Action, e.From, e.Actor)
}

// Next returns the state an application moves to when actor requests
// action from current. hasAssessments controls whether shortlisted feeds
// the code-challenge step or skips straight back to review.
func Next(current Status, actor Actor, action Action, hasAssessments bool) (Status, error) {
	fail := func() (Status, error) {
		return "", &TransitionError{From: current, Actor: actor, Action: action}
	}

	if IsTerminal(current) {
		return fail()
	}

	if action == ActionReject {
		// only the employer rejects, and never from the draft state
		if actor != ActorEmployer || current == StatusApplying {
			return fail()
		}
		return StatusRejected, nil
	}

	switch current {
	case StatusApplying:
		// submission is the applicant's own action, handled by the
		// submit operation rather than a status update
		return fail()
	case StatusSubmitted:
		if actor != ActorEmployer {
			return fail()
		}
		return StatusInReview, nil
	case StatusInReview:
		if actor != ActorEmployer {
			return fail()
		}
		return StatusShortlisted, nil
	case StatusShortlisted:
		if actor != ActorEmployer {
			return fail()
		}
		if hasAssessments {
			return StatusCodeChallenge, nil
		}
		return StatusInReview, nil
	case StatusCodeChallenge:
		// completing the challenge is the applicant's move
		if actor != ActorApplicant {
			return fail()
		}
		return StatusInReview, nil
	}
	return fail()
}

// Accept moves an in-review application to the terminal success state.
// Modeled separately from Next because "progress" from in_review means
// shortlisting, while acceptance is an explicit employer decision.
func Accept(current Status, actor Actor) (Status, error) {
	if actor != ActorEmployer || current != StatusInReview {
		return "", &TransitionError{From: current, Actor: actor, Action: "accept"}
	}
	return StatusAccepted, nil
}
