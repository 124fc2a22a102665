package hermes

const (
	SubjectEvaluateRequest = "weigh.evaluate.request"

	StreamName   = "WEIGH_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

// StreamSubjects are captured by the WEIGH_EVENTS stream.
var StreamSubjects = []string{"weigh.decision.>", "weigh.evaluate.>"}

// Decision lifecycle subjects
func SubjectDecisionCreated(id string) string   { return "weigh.decision." + id + ".created" }
func SubjectDecisionUpdated(id string) string   { return "weigh.decision." + id + ".updated" }
func SubjectDecisionDeleted(id string) string   { return "weigh.decision." + id + ".deleted" }
func SubjectDecisionEvaluated(id string) string { return "weigh.decision." + id + ".evaluated" }

// Request/response subjects for evaluations submitted over NATS
func SubjectEvaluateCompleted(requestID string) string {
	return "weigh.evaluate." + requestID + ".completed"
}
func SubjectEvaluateFailed(requestID string) string { return "weigh.evaluate." + requestID + ".failed" }
