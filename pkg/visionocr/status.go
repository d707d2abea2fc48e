package visionocr

// Status is the binary outcome of a boundary call. Details of a failure are
// only available through the handle's log.
type Status int

const (
	Success Status = 0
	Failure Status = 1
)

func (s Status) String() string {
	switch s {
	case Success:
		return "SUCCESS"
	case Failure:
		return "FAILURE"
	default:
		return "UNKNOWN"
	}
}
