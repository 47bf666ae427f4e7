package domain

// Stage is a step of the ingestion pipeline.
//
//	received -> validated -> fetched | upload_accepted -> stored -> enqueued -> done
//
// failed is terminal and reachable from every non-terminal stage. A stored
// document whose publish fails skips enqueued and goes straight to done.
type Stage string

const (
	StageReceived       Stage = "received"
	StageValidated      Stage = "validated"
	StageFetched        Stage = "fetched"
	StageUploadAccepted Stage = "upload_accepted"
	StageStored         Stage = "stored"
	StageEnqueued       Stage = "enqueued"
	StageDone           Stage = "done"
	StageFailed         Stage = "failed"
)

var transitions = map[Stage][]Stage{
	StageReceived:       {StageValidated},
	StageValidated:      {StageFetched, StageUploadAccepted},
	StageFetched:        {StageStored},
	StageUploadAccepted: {StageStored},
	StageStored:         {StageEnqueued, StageDone},
	StageEnqueued:       {StageDone},
}

// CanTransitionTo reports whether the pipeline may move from s to next.
func (s Stage) CanTransitionTo(next Stage) bool {
	if next == StageFailed {
		return !s.IsTerminal()
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Stage) IsTerminal() bool {
	return s == StageDone || s == StageFailed
}
