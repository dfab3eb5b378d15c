// Package lifecycle defines the interview and application state machines.
//
// Statuses are closed types and every transition goes through a table
// lookup, so an invalid status string or an out-of-order transition cannot
// be constructed by callers.
package lifecycle

import "fmt"

// InterviewStatus enumerates the states of an interview.
type InterviewStatus string

// Interview status values.
const (
	InterviewNotScheduled InterviewStatus = "NOT_SCHEDULED"
	InterviewScheduled    InterviewStatus = "SCHEDULED"
	InterviewInvited      InterviewStatus = "INVITED"
	InterviewConfirmed    InterviewStatus = "CONFIRMED"
	InterviewJoined       InterviewStatus = "JOINED"
	InterviewInProgress   InterviewStatus = "IN_PROGRESS"
	InterviewCompleted    InterviewStatus = "COMPLETED"
	InterviewRescheduled  InterviewStatus = "RESCHEDULED"
	InterviewCancelled    InterviewStatus = "CANCELLED"
)

// InterviewEvent enumerates the triggers that move an interview forward.
type InterviewEvent string

// Interview events.
const (
	EventSchedule   InterviewEvent = "schedule"
	EventInvite     InterviewEvent = "invite"
	EventConfirm    InterviewEvent = "confirm"
	EventJoin       InterviewEvent = "join"
	EventStart      InterviewEvent = "start"
	EventComplete   InterviewEvent = "complete"
	EventReschedule InterviewEvent = "reschedule"
	EventCancel     InterviewEvent = "cancel"
)

// ApplicationStatus enumerates the states of a hiring application.
type ApplicationStatus string

// Application status values.
const (
	ApplicationNew       ApplicationStatus = "NEW"
	ApplicationInvited   ApplicationStatus = "INVITED"
	ApplicationApplied   ApplicationStatus = "APPLIED"
	ApplicationScreening ApplicationStatus = "SCREENING"
	ApplicationInterview ApplicationStatus = "INTERVIEW"
	ApplicationOffer     ApplicationStatus = "OFFER"
	ApplicationHired     ApplicationStatus = "HIRED"
	ApplicationRejected  ApplicationStatus = "REJECTED"
)

// ApplicationEvent enumerates the triggers that move an application forward.
type ApplicationEvent string

// Application events.
const (
	EventAppInvite    ApplicationEvent = "invite"
	EventAppApply     ApplicationEvent = "apply"
	EventAppScreen    ApplicationEvent = "screen"
	EventAppInterview ApplicationEvent = "interview"
	EventAppOffer     ApplicationEvent = "offer"
	EventAppHire      ApplicationEvent = "hire"
	EventAppReject    ApplicationEvent = "reject"
)

// interviewTransitions maps (status, event) to the next interview status.
// Cancel and reschedule rows are filled in programmatically for every
// non-terminal status.
var interviewTransitions = map[InterviewStatus]map[InterviewEvent]InterviewStatus{
	InterviewNotScheduled: {
		EventSchedule: InterviewScheduled,
		EventInvite:   InterviewInvited,
	},
	InterviewScheduled: {
		EventInvite:  InterviewInvited,
		EventConfirm: InterviewConfirmed,
		EventJoin:    InterviewJoined,
	},
	InterviewInvited: {
		EventConfirm: InterviewConfirmed,
		EventJoin:    InterviewJoined,
	},
	InterviewConfirmed: {
		EventJoin: InterviewJoined,
	},
	InterviewJoined: {
		EventStart: InterviewInProgress,
	},
	InterviewInProgress: {
		EventComplete: InterviewCompleted,
	},
	InterviewRescheduled: {
		EventSchedule: InterviewScheduled,
		EventInvite:   InterviewInvited,
	},
	InterviewCompleted: {},
	InterviewCancelled: {},
}

var applicationTransitions = map[ApplicationStatus]map[ApplicationEvent]ApplicationStatus{
	ApplicationNew: {
		EventAppInvite: ApplicationInvited,
		EventAppApply:  ApplicationApplied,
	},
	ApplicationInvited: {
		EventAppApply: ApplicationApplied,
	},
	ApplicationApplied: {
		EventAppScreen:    ApplicationScreening,
		EventAppInterview: ApplicationInterview,
	},
	ApplicationScreening: {
		EventAppInterview: ApplicationInterview,
	},
	ApplicationInterview: {
		EventAppOffer: ApplicationOffer,
	},
	ApplicationOffer: {
		EventAppHire: ApplicationHired,
	},
	ApplicationHired:    {},
	ApplicationRejected: {},
}

func init() {
	// Side transitions reachable from any non-terminal state.
	for from, row := range interviewTransitions {
		if from.Terminal() {
			continue
		}
		row[EventCancel] = InterviewCancelled
		if from != InterviewNotScheduled && from != InterviewCompleted {
			row[EventReschedule] = InterviewRescheduled
		}
	}
	for from, row := range applicationTransitions {
		if from.Terminal() {
			continue
		}
		row[EventAppReject] = ApplicationRejected
	}
}

// Terminal reports whether no further transitions are possible.
func (s InterviewStatus) Terminal() bool {
	return s == InterviewCompleted || s == InterviewCancelled
}

// Terminal reports whether no further transitions are possible.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationHired || s == ApplicationRejected
}

// NextInterview resolves the transition for an interview event.
// Returns ErrIllegalTransition when the table has no entry; the caller's
// state is left untouched.
func NextInterview(from InterviewStatus, event InterviewEvent) (InterviewStatus, error) {
	row, ok := interviewTransitions[from]
	if !ok {
		return from, fmt.Errorf("unknown interview status %q: %w", from, ErrIllegalTransition)
	}
	next, ok := row[event]
	if !ok {
		return from, fmt.Errorf("interview %s -> %s: %w", from, event, ErrIllegalTransition)
	}
	return next, nil
}

// NextApplication resolves the transition for an application event.
func NextApplication(from ApplicationStatus, event ApplicationEvent) (ApplicationStatus, error) {
	row, ok := applicationTransitions[from]
	if !ok {
		return from, fmt.Errorf("unknown application status %q: %w", from, ErrIllegalTransition)
	}
	next, ok := row[event]
	if !ok {
		return from, fmt.Errorf("application %s -> %s: %w", from, event, ErrIllegalTransition)
	}
	return next, nil
}
