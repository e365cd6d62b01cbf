// Package funnel turns monthly activity rows into per-consultant sales funnels.
// Everything in this package is pure: no I/O, no clocks, no shared state.
package funnel

import "fmt"

// Status is the canonical candidate status. The zero value is StatusUnclassified.
type Status int

const (
	StatusUnclassified Status = iota
	StatusNew
	StatusNoContact
	StatusSelectingJobs
	StatusJobsProposed
	StatusDocumentScreening
	StatusInterviewScheduled
	StatusInterviewConfirmed
	StatusInterviewDone
	StatusOfferPending
	StatusClosedWon
	StatusOfferDeclined
	StatusLostContact
	StatusLongTermFollowUp
	StatusClosed
	StatusSiteVisitProposed
	StatusReHearing
	StatusFirstContactDone
)

// Statuses lists every canonical status in pipeline order, excluding StatusUnclassified.
func Statuses() []Status {
	return []Status{
		StatusNew,
		StatusNoContact,
		StatusSelectingJobs,
		StatusJobsProposed,
		StatusDocumentScreening,
		StatusInterviewScheduled,
		StatusInterviewConfirmed,
		StatusInterviewDone,
		StatusOfferPending,
		StatusClosedWon,
		StatusOfferDeclined,
		StatusLostContact,
		StatusLongTermFollowUp,
		StatusClosed,
		StatusSiteVisitProposed,
		StatusReHearing,
		StatusFirstContactDone,
	}
}

// String returns the wire slug.
func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusNoContact:
		return "no-contact"
	case StatusSelectingJobs:
		return "selecting-jobs"
	case StatusJobsProposed:
		return "jobs-proposed"
	case StatusDocumentScreening:
		return "document-screening"
	case StatusInterviewScheduled:
		return "interview-scheduled"
	case StatusInterviewConfirmed:
		return "interview-confirmed"
	case StatusInterviewDone:
		return "interview-done-awaiting-result"
	case StatusOfferPending:
		return "offer-pending-acceptance"
	case StatusClosedWon:
		return "closed-won"
	case StatusOfferDeclined:
		return "offer-declined"
	case StatusLostContact:
		return "lost-contact"
	case StatusLongTermFollowUp:
		return "long-term-follow-up"
	case StatusClosed:
		return "closed"
	case StatusSiteVisitProposed:
		return "site-visit-proposed"
	case StatusReHearing:
		return "re-hearing"
	case StatusFirstContactDone:
		return "first-contact-done"
	case StatusUnclassified:
		return "unclassified"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Label returns the display label used on the monthly sheets and in the UI.
func (s Status) Label() string {
	switch s {
	case StatusNew:
		return "初回連絡中"
	case StatusNoContact:
		return "連絡つかず（初回未接触）"
	case StatusSelectingJobs:
		return "提案求人選定中"
	case StatusJobsProposed:
		return "求人提案済（返信待ち）"
	case StatusDocumentScreening:
		return "書類選考中"
	case StatusInterviewScheduled:
		return "面接日程調整中"
	case StatusInterviewConfirmed:
		return "面接確定済"
	case StatusInterviewDone:
		return "面接実施済（結果待ち）"
	case StatusOfferPending:
		return "内定獲得（承諾確認中）"
	case StatusClosedWon:
		return "内定承諾（成約）"
	case StatusOfferDeclined:
		return "内定辞退"
	case StatusLostContact:
		return "音信不通"
	case StatusLongTermFollowUp:
		return "追客中（中長期フォロー）"
	case StatusClosed:
		return "クローズ（終了）"
	case StatusSiteVisitProposed:
		return "見学提案~設定"
	case StatusReHearing:
		return "再ヒアリング・条件変更あり"
	case StatusFirstContactDone:
		return "初回ヒアリング実施済"
	default:
		return ""
	}
}

// sheetLabel is the emoji-prefixed form written by the monthly merge sheet.
func (s Status) sheetLabel() string {
	switch s {
	case StatusNew, StatusDocumentScreening, StatusInterviewScheduled, StatusInterviewConfirmed,
		StatusClosedWon, StatusFirstContactDone:
		return "🟢 " + s.Label()
	case StatusNoContact, StatusLostContact, StatusLongTermFollowUp:
		return "⚪ " + s.Label()
	case StatusSelectingJobs, StatusOfferPending:
		return "🟣 " + s.Label()
	case StatusJobsProposed:
		return "🟤 " + s.Label()
	case StatusInterviewDone, StatusReHearing:
		return "🟠 " + s.Label()
	case StatusOfferDeclined:
		return "🔴 " + s.Label()
	case StatusClosed:
		return "⚫ " + s.Label()
	case StatusSiteVisitProposed:
		// The sheet writes this one without a separating space.
		return "🟡" + s.Label()
	default:
		return ""
	}
}

// MarshalText encodes the status as its wire slug.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts a wire slug. Anything else decodes to StatusUnclassified.
func (s *Status) UnmarshalText(text []byte) error {
	*s = statusFromSlug(string(text))
	return nil
}

// ParseStatusSlug resolves a wire slug. It reports false for unknown slugs,
// including "unclassified".
func ParseStatusSlug(slug string) (Status, bool) {
	st := statusFromSlug(slug)
	return st, st != StatusUnclassified
}

func statusFromSlug(slug string) Status {
	for _, st := range Statuses() {
		if st.String() == slug {
			return st
		}
	}
	return StatusUnclassified
}

// Stage names a funnel-stage membership set.
type Stage int

const (
	// StageFirstContactReached holds statuses implying the first hearing happened.
	StageFirstContactReached Stage = iota + 1
	// StageInterviewSet holds statuses implying an interview was arranged or passed.
	StageInterviewSet
)

// IsInStage reports whether st belongs to stage. StatusUnclassified never does.
func IsInStage(st Status, stage Stage) bool {
	switch stage {
	case StageFirstContactReached:
		return st.reachedFirstContact()
	case StageInterviewSet:
		return st.interviewSet()
	default:
		return false
	}
}

// reachedFirstContact covers candidates past the first hearing whose interview
// is not yet arranged. Candidates with an arranged interview are counted by
// the interview stage instead.
func (s Status) reachedFirstContact() bool {
	switch s {
	case StatusSelectingJobs, StatusJobsProposed, StatusDocumentScreening, StatusInterviewScheduled,
		StatusLostContact, StatusLongTermFollowUp, StatusClosed, StatusSiteVisitProposed,
		StatusReHearing, StatusFirstContactDone:
		return true
	case StatusInterviewConfirmed, StatusInterviewDone, StatusOfferPending, StatusClosedWon, StatusOfferDeclined:
		return false
	case StatusNew, StatusNoContact, StatusUnclassified:
		return false
	default:
		return false
	}
}

func (s Status) interviewSet() bool {
	switch s {
	case StatusInterviewConfirmed, StatusInterviewDone, StatusOfferPending, StatusClosedWon, StatusOfferDeclined:
		return true
	default:
		return false
	}
}

// IsClosedWon reports whether the status is the signed-placement terminal status.
func (s Status) IsClosedWon() bool {
	return s == StatusClosedWon
}

// InterviewCategory is the finer breakdown shown on the interview status card.
type InterviewCategory int

const (
	CategoryNone InterviewCategory = iota
	CategoryAdjusting
	CategoryBeforeInterview
	CategoryWaitingResult
	CategoryWaitingReply
)

// InterviewCategories lists the displayable categories in card order.
func InterviewCategories() []InterviewCategory {
	return []InterviewCategory{CategoryAdjusting, CategoryBeforeInterview, CategoryWaitingResult, CategoryWaitingReply}
}

func (c InterviewCategory) String() string {
	switch c {
	case CategoryAdjusting:
		return "adjusting"
	case CategoryBeforeInterview:
		return "before-interview"
	case CategoryWaitingResult:
		return "waiting-result"
	case CategoryWaitingReply:
		return "waiting-reply"
	default:
		return "none"
	}
}

// InterviewCategory classifies the status for the interview status card.
func (s Status) InterviewCategory() InterviewCategory {
	switch s {
	case StatusInterviewScheduled:
		return CategoryAdjusting
	case StatusInterviewConfirmed:
		return CategoryBeforeInterview
	case StatusInterviewDone:
		return CategoryWaitingResult
	case StatusOfferPending:
		return CategoryWaitingReply
	default:
		return CategoryNone
	}
}
