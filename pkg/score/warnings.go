package score

// Warning identifies a condition that lowered the score.
type Warning string

const (
	WarnFaceNotDetected Warning = "face_not_detected"
	WarnEyesClosed      Warning = "eyes_closed"
	WarnHeadAway        Warning = "head_away"
	WarnGazeAway        Warning = "gaze_away"
	WarnYawning         Warning = "yawning"
	WarnRestless        Warning = "restless"
)

// Condition penalties, subtracted from a starting score of 100.
const (
	PenaltyEyesClosed = 40.0
	PenaltyHeadAway   = 30.0
	PenaltyGazeAway   = 25.0
	PenaltyYawning    = 20.0
	PenaltyRestless   = 15.0
)

// Strings converts warnings for wire encoding.
func Strings(ws []Warning) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = string(w)
	}
	return out
}
